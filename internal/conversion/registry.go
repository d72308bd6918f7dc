package conversion

import (
	"fmt"

	"spvlower/internal/ir"
)

// SymbolRegistry generates names guaranteed absent from one module's
// symbol table. It holds no state beyond the table reference: probing
// has no side effect, and the caller inserts the symbol afterwards.
// Safe only because a module's table is never mutated concurrently
// with its own conversion.
type SymbolRegistry struct {
	mod *ir.KernelModule
}

// NewSymbolRegistry builds a registry over the module's symbol table.
func NewSymbolRegistry(mod *ir.KernelModule) *SymbolRegistry {
	return &SymbolRegistry{mod: mod}
}

// Fresh returns prefix with the smallest integer suffix, starting at
// 0, that is not yet taken in the module.
func (r *SymbolRegistry) Fresh(prefix string) string {
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		if !r.mod.HasSymbol(name) {
			return name
		}
	}
}
