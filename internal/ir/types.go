package ir

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type (ops without results).
const NoTypeID TypeID = 0

// TypeKind enumerates all supported kinds of types.
type TypeKind uint8

const (
	KindInvalid TypeKind = iota
	KindVoid
	KindBool
	KindInt
	KindIndex
	KindFloat
	KindBFloat
	KindVector
	KindMemRef
	KindPointer
	KindArray
)

func (k TypeKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindIndex:
		return "index"
	case KindFloat:
		return "float"
	case KindBFloat:
		return "bfloat"
	case KindVector:
		return "vector"
	case KindMemRef:
		return "memref"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("TypeKind(%d)", k)
	}
}

// Width captures the precision of integers/floats in bits.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// StorageClass tags a pointer (or a remapped memref) with the target
// memory region it addresses. Values follow the OpenCL flavor of the
// target addressing model.
type StorageClass uint32

const (
	ClassFunction StorageClass = iota
	ClassCrossWorkgroup
	ClassWorkgroup
	ClassUniformConstant
	ClassInput
	ClassPrivate
)

func (c StorageClass) String() string {
	switch c {
	case ClassFunction:
		return "Function"
	case ClassCrossWorkgroup:
		return "CrossWorkgroup"
	case ClassWorkgroup:
		return "Workgroup"
	case ClassUniformConstant:
		return "UniformConstant"
	case ClassInput:
		return "Input"
	case ClassPrivate:
		return "Private"
	default:
		return fmt.Sprintf("StorageClass(%d)", uint32(c))
	}
}

// Memory spaces carried by memref types before remapping. The numbering
// mirrors the host dialect's address space attributes.
const (
	SpaceGlobal    uint32 = 0
	SpaceWorkgroup uint32 = 3
	SpacePrivate   uint32 = 5
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind  TypeKind
	Elem  TypeID // element type for vector/memref/pointer/array
	Count uint32 // element count for vector/array, memref static size
	Width Width  // bit width for int/float (bfloat is always 16)
	Space uint32 // memory space (memref) or StorageClass (pointer)
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeFloat describes an IEEE floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeBFloat describes the 16-bit brain-float format.
func MakeBFloat() Type {
	return Type{Kind: KindBFloat, Width: Width16}
}

// MakeVector describes a vector of count elements.
func MakeVector(elem TypeID, count uint32) Type {
	return Type{Kind: KindVector, Elem: elem, Count: count}
}

// MakeMemRef describes a memory reference with a static element count
// and a host memory space.
func MakeMemRef(elem TypeID, count uint32, space uint32) Type {
	return Type{Kind: KindMemRef, Elem: elem, Count: count, Space: space}
}

// MakePointer describes a target pointer in the given storage class.
func MakePointer(elem TypeID, class StorageClass) Type {
	return Type{Kind: KindPointer, Elem: elem, Space: uint32(class)}
}

// MakeArray describes a fixed-size array.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}
