package ir

// Value is the result of an operation or a function parameter. It has
// a single static type and an explicit list of consuming operations.
type Value struct {
	def  *Op   // nil for parameters
	fn   *Func // owner for parameters
	typ  TypeID
	uses []*Op // one entry per consuming operand slot
}

// NewParam constructs a parameter value. Used by function construction
// and tests; operation results are created by the builder.
func NewParam(fn *Func, typ TypeID) *Value {
	return &Value{fn: fn, typ: typ}
}

// Def returns the defining op, or nil for parameters.
func (v *Value) Def() *Op { return v.def }

// IsParam reports whether the value is a function parameter.
func (v *Value) IsParam() bool { return v.def == nil }

// Type returns the value's static type.
func (v *Value) Type() TypeID { return v.typ }

// SetType retypes the value. Only signature conversion may do this.
func (v *Value) SetType(t TypeID) { v.typ = t }

// NumUses returns the number of consuming operand slots.
func (v *Value) NumUses() int { return len(v.uses) }

// Users returns the consuming ops. The slice may contain an op more
// than once when it consumes the value through several operands.
func (v *Value) Users() []*Op {
	out := make([]*Op, len(v.uses))
	copy(out, v.uses)
	return out
}

// HasOneUse reports whether exactly one operand slot consumes v.
func (v *Value) HasOneUse() bool { return len(v.uses) == 1 }

// ReplaceAllUses atomically re-routes every use-edge of v to w. After
// it returns, v has no uses and its defining op is safe to erase.
func (v *Value) ReplaceAllUses(w *Value) {
	if v == w {
		return
	}
	for _, user := range v.uses {
		for i, operand := range user.Operands {
			if operand == v {
				user.Operands[i] = w
				w.addUse(user)
			}
		}
	}
	v.uses = v.uses[:0]
}

func (v *Value) addUse(op *Op) {
	v.uses = append(v.uses, op)
}

// removeUse drops exactly one use entry for op. Callers invoke it once
// per operand slot being released.
func (v *Value) removeUse(op *Op) {
	for i, u := range v.uses {
		if u == op {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
}
