package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	I8      TypeID
	I16     TypeID
	I32     TypeID
	I64     TypeID
	Index   TypeID
	F16     TypeID
	BF16    TypeID
	F32     TypeID
	F64     TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 64),
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.I8 = in.Intern(MakeInt(Width8))
	in.builtins.I16 = in.Intern(MakeInt(Width16))
	in.builtins.I32 = in.Intern(MakeInt(Width32))
	in.builtins.I64 = in.Intern(MakeInt(Width64))
	in.builtins.Index = in.Intern(Type{Kind: KindIndex})
	in.builtins.F16 = in.Intern(MakeFloat(Width16))
	in.builtins.BF16 = in.Intern(MakeBFloat())
	in.builtins.F32 = in.Intern(MakeFloat(Width32))
	in.builtins.F64 = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Len returns the number of interned descriptors, counting the invalid
// sentinel at id 0.
func (in *Interner) Len() int { return len(in.types) }

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("ir: invalid TypeID")
	}
	return tt
}

// Queries --------------------------------------------------------------------

// IsFloat reports whether id is an IEEE float of the given width.
func (in *Interner) IsFloat(id TypeID, width Width) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindFloat && t.Width == width
}

// IsBFloat reports whether id is the 16-bit brain-float format.
func (in *Interner) IsBFloat(id TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindBFloat
}

// IsInt reports whether id is an integer of the given width.
func (in *Interner) IsInt(id TypeID, width Width) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindInt && t.Width == width
}

// IsVector reports whether id is a vector type.
func (in *Interner) IsVector(id TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindVector
}

// Elem returns the element type of a vector/memref/pointer/array,
// or the type itself for scalars.
func (in *Interner) Elem(id TypeID) TypeID {
	t, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	switch t.Kind {
	case KindVector, KindMemRef, KindPointer, KindArray:
		return t.Elem
	default:
		return id
	}
}

// VectorWidth returns the element count of a vector type and 1 for any
// scalar type.
func (in *Interner) VectorWidth(id TypeID) uint32 {
	t, ok := in.Lookup(id)
	if !ok {
		return 0
	}
	if t.Kind == KindVector {
		return t.Count
	}
	return 1
}

// SameShape rebuilds id with a new element type, preserving the vector
// count when id is a vector. For scalars the new element type itself is
// returned.
func (in *Interner) SameShape(id, elem TypeID) TypeID {
	t, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	if t.Kind == KindVector {
		return in.Intern(MakeVector(elem, t.Count))
	}
	return elem
}

// TypeString renders a type for dumps and error messages.
func (in *Interner) TypeString(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<none>"
	}
	switch t.Kind {
	case KindBool, KindVoid, KindIndex:
		return t.Kind.String()
	case KindInt:
		return fmt.Sprintf("i%d", t.Width)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Width)
	case KindBFloat:
		return "bf16"
	case KindVector:
		return fmt.Sprintf("vector<%dx%s>", t.Count, in.TypeString(t.Elem))
	case KindMemRef:
		return fmt.Sprintf("memref<%dx%s, %d>", t.Count, in.TypeString(t.Elem), t.Space)
	case KindPointer:
		return fmt.Sprintf("ptr<%s, %s>", in.TypeString(t.Elem), StorageClass(t.Space))
	case KindArray:
		return fmt.Sprintf("array<%dx%s>", t.Count, in.TypeString(t.Elem))
	default:
		return t.Kind.String()
	}
}
