package ir

import (
	"fmt"
	"io"
	"strings"
)

// DumpOptions configures module dumping.
type DumpOptions struct{}

// DumpProgram writes a human-readable representation of a program.
func DumpProgram(w io.Writer, p *Program, _ DumpOptions) error {
	if w == nil || p == nil {
		return nil
	}
	for _, f := range p.Funcs {
		if err := dumpFunc(w, p.Types, f, ""); err != nil {
			return err
		}
	}
	for _, m := range p.Kernels {
		if err := DumpModule(w, p.Types, m, DumpOptions{}); err != nil {
			return err
		}
	}
	return nil
}

// DumpModule writes a human-readable representation of a kernel module.
func DumpModule(w io.Writer, types *Interner, m *KernelModule, _ DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	form := "kernel"
	if m.TargetForm {
		form = "spirv"
	}
	fmt.Fprintf(w, "%s module @%s {\n", form, m.Name)
	for _, g := range m.Globals {
		fmt.Fprintf(w, "  %s\n", formatGlobal(types, g))
	}
	for _, f := range m.Funcs {
		if err := dumpFunc(w, types, f, "  "); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "}\n")
	return nil
}

func formatGlobal(types *Interner, g *Op) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s @%s", g.Kind, g.Attrs.Name)
	switch g.Kind {
	case SpvSpecConstant:
		fmt.Fprintf(&sb, " = %d", g.Attrs.IVal)
	case SpvSpecConstantComposite:
		fmt.Fprintf(&sb, " (%s)", strings.Join(g.Attrs.Syms, ", "))
	case SpvGlobalVariable:
		if g.Attrs.Sym != "" {
			fmt.Fprintf(&sb, " init(@%s)", g.Attrs.Sym)
		}
		if g.Attrs.Constant {
			sb.WriteString(" constant")
		}
		if g.Attrs.Builtin != "" {
			fmt.Fprintf(&sb, " builtin(%s)", g.Attrs.Builtin)
		}
	}
	if g.Result != nil {
		fmt.Fprintf(&sb, " : %s", types.TypeString(g.Result.Type()))
	}
	return sb.String()
}

func dumpFunc(w io.Writer, types *Interner, f *Func, indent string) error {
	names := make(map[*Value]string)
	next := 0
	name := func(v *Value) string {
		if v == nil {
			return "<nil>"
		}
		if n, ok := names[v]; ok {
			return n
		}
		n := fmt.Sprintf("%%%d", next)
		next++
		names[v] = n
		return n
	}

	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, fmt.Sprintf("%s: %s", name(p), types.TypeString(p.Type())))
	}
	marker := ""
	if f.Kernel {
		marker = " kernel"
	}
	fmt.Fprintf(w, "%sfunc @%s(%s)%s {\n", indent, f.Name, strings.Join(params, ", "), marker)

	for bi, bl := range f.Blocks {
		fmt.Fprintf(w, "%sbb%d:\n", indent, bi)
		for _, op := range bl.Ops {
			var sb strings.Builder
			if op.Result != nil {
				fmt.Fprintf(&sb, "%s = ", name(op.Result))
			}
			sb.WriteString(op.Kind.String())
			if op.Attrs.Format != "" {
				fmt.Fprintf(&sb, " %q", op.Attrs.Format)
			}
			if op.Attrs.Sym != "" {
				fmt.Fprintf(&sb, " @%s", op.Attrs.Sym)
			}
			if op.Attrs.Callee != "" {
				fmt.Fprintf(&sb, " @%s", op.Attrs.Callee)
			}
			if op.Kind == OpConstant || op.Kind == SpvConstant {
				t, _ := types.Lookup(resultType(op))
				if t.Kind == KindFloat || t.Kind == KindBFloat {
					fmt.Fprintf(&sb, " %g", op.Attrs.FVal)
				} else {
					fmt.Fprintf(&sb, " %d", op.Attrs.IVal)
				}
			}
			if len(op.Operands) > 0 {
				args := make([]string, 0, len(op.Operands))
				for _, v := range op.Operands {
					args = append(args, name(v))
				}
				fmt.Fprintf(&sb, " (%s)", strings.Join(args, ", "))
			}
			if len(op.Succs) > 0 {
				targets := make([]string, 0, len(op.Succs))
				for _, s := range op.Succs {
					targets = append(targets, fmt.Sprintf("bb%d", s.Index()))
				}
				fmt.Fprintf(&sb, " -> [%s]", strings.Join(targets, ", "))
			}
			if op.Result != nil {
				fmt.Fprintf(&sb, " : %s", types.TypeString(op.Result.Type()))
			}
			fmt.Fprintf(w, "%s  %s\n", indent, sb.String())
		}
	}
	fmt.Fprintf(w, "%s}\n", indent)
	return nil
}

func resultType(op *Op) TypeID {
	if op.Result == nil {
		return NoTypeID
	}
	return op.Result.Type()
}
