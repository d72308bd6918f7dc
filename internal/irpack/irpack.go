// Package irpack serializes programs with msgpack for on-disk
// interchange between the front end and the lowering driver.
//
// The encoding is flat: types are the interner's records in id order,
// values inside a function are numbered parameters-first then results
// in block order, and operands/successors are stored as indices.
// Symbolic references stay strings so the symbol table replays exactly
// on decode.
package irpack

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"spvlower/internal/ir"
	"spvlower/internal/target"
)

// Current schema version - increment when the payload format changes.
const schemaVersion uint16 = 1

// ErrSchema reports a payload written by an incompatible version.
var ErrSchema = errors.New("irpack: unsupported schema version")

type typeRec struct {
	Kind  uint8
	Elem  uint32
	Count uint32
	Width uint8
	Space uint32
}

type opRec struct {
	Kind       uint16
	ResultType uint32
	Operands   []uint32
	Succs      []uint32
	Attrs      ir.Attrs
	Loc        ir.Loc
}

type blockRec struct {
	Ops []opRec
}

type funcRec struct {
	Name       string
	ParamTypes []uint32
	ResultType uint32
	Kernel     bool
	LocalSize  [3]uint32
	Blocks     []blockRec
}

type moduleRec struct {
	Name       string
	Env        *target.Env
	Globals    []opRec
	Funcs      []funcRec
	TargetForm bool
}

type payload struct {
	Schema  uint16
	Types   []typeRec
	Funcs   []funcRec
	Kernels []moduleRec
}

// Encode writes prog to w.
func Encode(w io.Writer, prog *ir.Program) error {
	if prog == nil {
		return fmt.Errorf("irpack: nil program")
	}
	p := payload{Schema: schemaVersion}

	// Record 0 is the invalid sentinel and is never written; record i
	// describes TypeID i+1.
	for id := 1; id < prog.Types.Len(); id++ {
		t := prog.Types.MustLookup(ir.TypeID(id))
		p.Types = append(p.Types, typeRec{
			Kind:  uint8(t.Kind),
			Elem:  uint32(t.Elem),
			Count: t.Count,
			Width: uint8(t.Width),
			Space: t.Space,
		})
	}

	for _, f := range prog.Funcs {
		fr, err := encodeFunc(f)
		if err != nil {
			return err
		}
		p.Funcs = append(p.Funcs, fr)
	}
	for _, m := range prog.Kernels {
		mr, err := encodeModule(m)
		if err != nil {
			return err
		}
		p.Kernels = append(p.Kernels, mr)
	}

	return msgpack.NewEncoder(w).Encode(&p)
}

func encodeModule(m *ir.KernelModule) (moduleRec, error) {
	mr := moduleRec{Name: m.Name, Env: m.Env, TargetForm: m.TargetForm}
	for _, g := range m.Globals {
		if len(g.Operands) != 0 {
			return mr, fmt.Errorf("irpack: module %s: global %s takes operands", m.Name, g.Kind)
		}
		mr.Globals = append(mr.Globals, opRec{
			Kind:       uint16(g.Kind),
			ResultType: resultType(g),
			Attrs:      g.Attrs,
			Loc:        g.Loc,
		})
	}
	for _, f := range m.Funcs {
		fr, err := encodeFunc(f)
		if err != nil {
			return mr, fmt.Errorf("irpack: module %s: %w", m.Name, err)
		}
		mr.Funcs = append(mr.Funcs, fr)
	}
	return mr, nil
}

func encodeFunc(f *ir.Func) (funcRec, error) {
	fr := funcRec{
		Name:       f.Name,
		ResultType: uint32(f.ResultType),
		Kernel:     f.Kernel,
		LocalSize:  f.LocalSize,
	}

	index := make(map[*ir.Value]uint32)
	for _, param := range f.Params {
		fr.ParamTypes = append(fr.ParamTypes, uint32(param.Type()))
		index[param] = uint32(len(index))
	}

	blockIdx := make(map[*ir.Block]uint32, len(f.Blocks))
	for i, bl := range f.Blocks {
		blockIdx[bl] = uint32(i)
	}

	for _, bl := range f.Blocks {
		var br blockRec
		for _, op := range bl.Ops {
			rec := opRec{
				Kind:       uint16(op.Kind),
				ResultType: resultType(op),
				Attrs:      op.Attrs,
				Loc:        op.Loc,
			}
			for _, operand := range op.Operands {
				vi, ok := index[operand]
				if !ok {
					return fr, fmt.Errorf("function %s: %s uses a value defined after it", f.Name, op.Kind)
				}
				rec.Operands = append(rec.Operands, vi)
			}
			for _, succ := range op.Succs {
				bi, ok := blockIdx[succ]
				if !ok {
					return fr, fmt.Errorf("function %s: %s targets a foreign block", f.Name, op.Kind)
				}
				rec.Succs = append(rec.Succs, bi)
			}
			if op.Result != nil {
				index[op.Result] = uint32(len(index))
			}
			br.Ops = append(br.Ops, rec)
		}
		fr.Blocks = append(fr.Blocks, br)
	}
	return fr, nil
}

func resultType(op *ir.Op) uint32 {
	if op.Result == nil {
		return uint32(ir.NoTypeID)
	}
	return uint32(op.Result.Type())
}

// decodeKind validates a wire op kind. The record is wider than the
// in-memory kind, so a narrowing cast alone would alias out-of-range
// values onto real kinds.
func decodeKind(raw uint16) (ir.OpKind, error) {
	k := ir.OpKind(raw)
	if uint16(k) != raw || !k.Valid() {
		return ir.OpInvalid, fmt.Errorf("op kind %d out of range", raw)
	}
	return k, nil
}

// Decode reads a program from r.
func Decode(r io.Reader) (*ir.Program, error) {
	var p payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("irpack: decode: %w", err)
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, p.Schema, schemaVersion)
	}

	prog := ir.NewProgram()

	// Replaying records in id order keeps every Elem reference behind
	// the record that uses it.
	idMap := make([]ir.TypeID, len(p.Types)+1)
	idMap[0] = ir.NoTypeID
	for i, tr := range p.Types {
		if int(tr.Elem) >= len(idMap) || int(tr.Elem) > i {
			return nil, fmt.Errorf("irpack: type record %d: element id %d out of range", i+1, tr.Elem)
		}
		idMap[i+1] = prog.Types.Intern(ir.Type{
			Kind:  ir.TypeKind(tr.Kind),
			Elem:  idMap[tr.Elem],
			Count: tr.Count,
			Width: ir.Width(tr.Width),
			Space: tr.Space,
		})
	}
	mapType := func(raw uint32) (ir.TypeID, error) {
		if int(raw) >= len(idMap) {
			return ir.NoTypeID, fmt.Errorf("irpack: type id %d out of range", raw)
		}
		return idMap[raw], nil
	}

	b := ir.NewBuilder(prog.Types)

	for _, fr := range p.Funcs {
		f, err := decodeFunc(b, fr, mapType)
		if err != nil {
			return nil, err
		}
		prog.Funcs = append(prog.Funcs, f)
	}

	for _, mr := range p.Kernels {
		m := ir.NewKernelModule(mr.Name)
		m.Env = mr.Env
		m.TargetForm = mr.TargetForm
		b.SetInsertionPointModuleEnd(m)
		for _, rec := range mr.Globals {
			kind, err := decodeKind(rec.Kind)
			if err != nil {
				return nil, fmt.Errorf("irpack: module %s: %w", mr.Name, err)
			}
			typ, err := mapType(rec.ResultType)
			if err != nil {
				return nil, fmt.Errorf("irpack: module %s: %w", mr.Name, err)
			}
			// The builder panics on symbol collisions; corrupt input must
			// surface as an error instead.
			if rec.Attrs.Name != "" && m.HasSymbol(rec.Attrs.Name) {
				return nil, fmt.Errorf("irpack: module %s: duplicate symbol %q", mr.Name, rec.Attrs.Name)
			}
			b.Create(rec.Loc, kind, typ, nil, rec.Attrs)
		}
		for _, fr := range mr.Funcs {
			f, err := decodeFunc(b, fr, mapType)
			if err != nil {
				return nil, fmt.Errorf("irpack: module %s: %w", mr.Name, err)
			}
			if err := m.AddFunc(f); err != nil {
				return nil, fmt.Errorf("irpack: %w", err)
			}
		}
		prog.AddKernel(m)
	}

	return prog, nil
}

func decodeFunc(b *ir.Builder, fr funcRec, mapType func(uint32) (ir.TypeID, error)) (*ir.Func, error) {
	paramTypes := make([]ir.TypeID, 0, len(fr.ParamTypes))
	for _, raw := range fr.ParamTypes {
		typ, err := mapType(raw)
		if err != nil {
			return nil, fmt.Errorf("irpack: function %s: %w", fr.Name, err)
		}
		paramTypes = append(paramTypes, typ)
	}
	resultTy, err := mapType(fr.ResultType)
	if err != nil {
		return nil, fmt.Errorf("irpack: function %s: %w", fr.Name, err)
	}

	f := ir.NewFunc(fr.Name, paramTypes, resultTy)
	f.Kernel = fr.Kernel
	f.LocalSize = fr.LocalSize

	// NewFunc creates the entry block; the rest are added up front so
	// terminators can reference forward blocks.
	for len(f.Blocks) < len(fr.Blocks) {
		f.AddBlock()
	}

	values := append([]*ir.Value(nil), f.Params...)
	for bi, br := range fr.Blocks {
		b.SetInsertionPointToEnd(f.Blocks[bi])
		for _, rec := range br.Ops {
			kind, err := decodeKind(rec.Kind)
			if err != nil {
				return nil, fmt.Errorf("irpack: function %s: %w", fr.Name, err)
			}
			typ, err := mapType(rec.ResultType)
			if err != nil {
				return nil, fmt.Errorf("irpack: function %s: %w", fr.Name, err)
			}
			operands := make([]*ir.Value, 0, len(rec.Operands))
			for _, vi := range rec.Operands {
				if int(vi) >= len(values) {
					return nil, fmt.Errorf("irpack: function %s: operand index %d out of range", fr.Name, vi)
				}
				operands = append(operands, values[vi])
			}
			var op *ir.Op
			if len(rec.Succs) > 0 {
				succs := make([]*ir.Block, 0, len(rec.Succs))
				for _, si := range rec.Succs {
					if int(si) >= len(f.Blocks) {
						return nil, fmt.Errorf("irpack: function %s: block index %d out of range", fr.Name, si)
					}
					succs = append(succs, f.Blocks[si])
				}
				op = b.CreateTerm(rec.Loc, kind, operands, succs, rec.Attrs)
			} else {
				op = b.Create(rec.Loc, kind, typ, operands, rec.Attrs)
			}
			if op.Result != nil {
				values = append(values, op.Result)
			}
		}
	}
	return f, nil
}
