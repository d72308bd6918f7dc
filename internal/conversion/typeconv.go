package conversion

import (
	"fmt"

	"spvlower/internal/ir"
	"spvlower/internal/target"
)

// TypeConverterOptions tune the host-to-target type mapping.
type TypeConverterOptions struct {
	// Use64BitIndex lowers index to i64 instead of i32.
	Use64BitIndex bool
}

// TypeConverter maps host scalar/vector/memref types to target types,
// parameterized by the module's target-capability descriptor.
type TypeConverter struct {
	types *ir.Interner
	env   *target.Env
	opts  TypeConverterOptions
}

// NewTypeConverter builds a converter for one kernel module's target.
func NewTypeConverter(types *ir.Interner, env *target.Env, opts TypeConverterOptions) *TypeConverter {
	if env == nil {
		env = target.Default()
	}
	return &TypeConverter{types: types, env: env, opts: opts}
}

// Env returns the target descriptor the converter was built for.
func (tc *TypeConverter) Env() *target.Env { return tc.env }

// IndexType returns the target integer type indices lower to.
func (tc *TypeConverter) IndexType() ir.TypeID {
	if tc.opts.Use64BitIndex {
		return tc.types.Builtins().I64
	}
	return tc.types.Builtins().I32
}

// Convert maps a host type to its target form. Scalars map to
// themselves, index maps per the addressing option, memrefs map to
// pointers in the storage class their memory space remaps to, vectors
// convert element-wise.
func (tc *TypeConverter) Convert(id ir.TypeID) (ir.TypeID, error) {
	t, ok := tc.types.Lookup(id)
	if !ok {
		return ir.NoTypeID, fmt.Errorf("conversion: unknown type id %d", id)
	}
	switch t.Kind {
	case ir.KindVoid, ir.KindBool, ir.KindInt, ir.KindFloat, ir.KindBFloat, ir.KindArray, ir.KindPointer:
		return id, nil
	case ir.KindIndex:
		return tc.IndexType(), nil
	case ir.KindVector:
		elem, err := tc.Convert(t.Elem)
		if err != nil {
			return ir.NoTypeID, err
		}
		return tc.types.Intern(ir.MakeVector(elem, t.Count)), nil
	case ir.KindMemRef:
		elem, err := tc.Convert(t.Elem)
		if err != nil {
			return ir.NoTypeID, err
		}
		class, err := StorageClassForMemorySpace(t.Space)
		if err != nil {
			return ir.NoTypeID, err
		}
		return tc.types.Intern(ir.MakePointer(elem, class)), nil
	default:
		return ir.NoTypeID, fmt.Errorf("conversion: no target equivalent for %s", tc.types.TypeString(id))
	}
}

// StorageClassForMemorySpace applies the OpenCL-flavor mapping from
// host memory spaces to target storage classes.
func StorageClassForMemorySpace(space uint32) (ir.StorageClass, error) {
	switch space {
	case ir.SpaceGlobal:
		return ir.ClassCrossWorkgroup, nil
	case ir.SpaceWorkgroup:
		return ir.ClassWorkgroup, nil
	case ir.SpacePrivate:
		return ir.ClassFunction, nil
	default:
		return 0, fmt.Errorf("conversion: no storage class for memory space %d", space)
	}
}
