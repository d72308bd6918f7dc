// Package target describes the capabilities of the SPIR-V target an
// individual kernel module is lowered for.
package target

// Env is a target-capability descriptor. Each kernel module may carry
// its own; modules without one use Default.
type Env struct {
	// Version is the target IR version, e.g. "1.4".
	Version string
	// Capabilities lists declared target capabilities.
	Capabilities []string
	// AddressingBits selects the index width of the addressing model,
	// 32 or 64.
	AddressingBits uint8
	// VectorWidths is the allow-list of element counts directly
	// expressible by elementwise target ops. Width 1 means scalar.
	VectorWidths []uint32
}

// DefaultVectorWidths is the allow-list used when a descriptor does
// not override it.
var DefaultVectorWidths = []uint32{1, 2, 3, 4, 8, 16}

// Default returns the descriptor used for modules without an explicit
// target attribute.
func Default() *Env {
	return &Env{
		Version:        "1.4",
		Capabilities:   []string{"Kernel", "Addresses", "Int64"},
		AddressingBits: 64,
		VectorWidths:   append([]uint32(nil), DefaultVectorWidths...),
	}
}

// AllowsVectorWidth reports whether elementwise target ops accept the
// given vector width on this target.
func (e *Env) AllowsVectorWidth(w uint32) bool {
	widths := e.VectorWidths
	if len(widths) == 0 {
		widths = DefaultVectorWidths
	}
	for _, allowed := range widths {
		if allowed == w {
			return true
		}
	}
	return false
}

// HasCapability reports whether the descriptor declares cap.
func (e *Env) HasCapability(cap string) bool {
	for _, c := range e.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}
