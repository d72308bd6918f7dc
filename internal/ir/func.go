package ir

// Func is a function: named, typed parameters, a list of blocks with
// the entry first. Kernel functions live inside a KernelModule; host
// functions live directly in the Program.
type Func struct {
	Name       string
	Params     []*Value
	ResultType TypeID
	Blocks     []*Block

	// Kernel marks device entry points (callable from launch sites).
	Kernel bool
	// LocalSize is the workgroup size hint attached to kernel entry
	// points, zero when unspecified.
	LocalSize [3]uint32

	module *KernelModule
}

// NewFunc constructs an empty function with one entry block.
func NewFunc(name string, paramTypes []TypeID, resultType TypeID) *Func {
	f := &Func{Name: name, ResultType: resultType}
	for _, pt := range paramTypes {
		f.Params = append(f.Params, NewParam(f, pt))
	}
	f.AddBlock()
	return f
}

// Module returns the kernel module the function belongs to, or nil for
// host functions.
func (f *Func) Module() *KernelModule { return f.module }

// Entry returns the entry block.
func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// AddBlock appends a fresh empty block.
func (f *Func) AddBlock() *Block {
	b := &Block{fn: f}
	f.Blocks = append(f.Blocks, b)
	return b
}
