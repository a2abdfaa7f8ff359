// Package debugdump renders a MirModule to JSON: a debug-only side
// product (spec.md §1, "pretty printing of HIR/MIR... explicitly a
// debug-only side product, not part of the compiler's semantics") and,
// since the MIR-to-LLVM emitter itself is an out-of-scope external
// collaborator (§1), the practical stand-in for `ir_pipeline`'s "IR"
// stdout output.
//
// Built incrementally with tidwall/sjson rather than a single
// json.Marshal pass, matching how the teacher favors streaming/line-
// oriented output over building one large value up front; function and
// block keys are kept in declaration order, and the handful of values
// that originate from Go maps elsewhere in the pipeline are sorted with
// maruel/natural before being written here so two runs over identical
// source always produce byte-identical JSON.
package debugdump

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/mir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// HIR renders the top-level item shape of a validated program: enough to
// sanity-check skeleton registration and type finalization without
// reproducing the full AST-mirroring tree.
func HIR(ctx *types.Context, prog *hir.Program) (string, error) {
	doc := "{}"
	var err error
	set := func(path string, v interface{}) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, path, v)
	}

	for i, item := range prog.Items {
		base := fmt.Sprintf("items.%d", i)
		switch n := item.(type) {
		case *hir.FunctionDecl:
			set(base+".kind", "function")
			set(base+".name", n.Name)
			if n.RetType.IsResolved() {
				set(base+".returns", ctx.Display(n.RetType.ID))
			}
		case *hir.StructDecl:
			set(base+".kind", "struct")
			set(base+".name", n.Name)
			for j, f := range n.Fields {
				set(fmt.Sprintf("%s.fields.%d.name", base, j), f.Name)
				if f.Type.IsResolved() {
					set(fmt.Sprintf("%s.fields.%d.type", base, j), ctx.Display(f.Type.ID))
				}
			}
		case *hir.EnumDecl:
			set(base+".kind", "enum")
			set(base+".name", n.Name)
			for j, v := range n.Variants {
				set(fmt.Sprintf("%s.variants.%d", base, j), v.Name)
			}
		case *hir.ConstDecl:
			set(base+".kind", "const")
			set(base+".name", n.Name)
			if n.Evaluated {
				set(base+".value", n.EvalInt)
			}
		case *hir.TraitDecl:
			set(base+".kind", "trait")
			set(base+".name", n.Name)
		case *hir.ImplDecl:
			set(base+".kind", "impl")
			if n.TraitName != nil {
				set(base+".trait", *n.TraitName)
			}
		}
	}
	if err != nil {
		return "", err
	}
	return gjson.Get(doc, "@pretty").String(), nil
}

// MIR renders a whole module — lowered functions and the external/runtime
// helper declarations it calls into — as one indented JSON document.
func MIR(ctx *types.Context, mod *mir.MirModule) (string, error) {
	doc := "{}"
	var err error

	if doc, err = mergeExternalFunctions(doc, "externalFunctions", ctx, mod); err != nil {
		return "", err
	}
	if doc, err = mergeFunctions(doc, "functions", ctx, mod); err != nil {
		return "", err
	}

	return gjson.Get(doc, "@pretty").String(), nil
}

// MIRFunctions renders just the module's lowered function bodies — the
// part of the module the emitter actually turns into machine code,
// written to `ir_pipeline`'s primary output (spec.md §6).
func MIRFunctions(ctx *types.Context, mod *mir.MirModule) (string, error) {
	doc, err := mergeFunctions("{}", "functions", ctx, mod)
	if err != nil {
		return "", err
	}
	return gjson.Get(doc, "@pretty").String(), nil
}

// MIRExternalFunctions renders just the module's runtime-helper
// declarations (spec.md §6's builtin runtime surface) — written to
// `ir_pipeline`'s stderr when the module needs any.
func MIRExternalFunctions(ctx *types.Context, mod *mir.MirModule) (string, error) {
	doc, err := mergeExternalFunctions("{}", "externalFunctions", ctx, mod)
	if err != nil {
		return "", err
	}
	return gjson.Get(doc, "@pretty").String(), nil
}

func mergeExternalFunctions(doc, key string, ctx *types.Context, mod *mir.MirModule) (string, error) {
	var err error

	extNames := make([]string, len(mod.ExternalFunctions))
	for i, ef := range mod.ExternalFunctions {
		extNames[i] = ef.Name
	}
	order := make([]int, len(mod.ExternalFunctions))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return natural.Less(extNames[order[i]], extNames[order[j]]) })

	for rank, idx := range order {
		ef := mod.ExternalFunctions[idx]
		base := fmt.Sprintf("%s.%d", key, rank)
		if doc, err = sjson.Set(doc, base+".name", ef.Name); err != nil {
			return "", err
		}
		if doc, err = setSignature(doc, base+".signature", ctx, ef.Signature); err != nil {
			return "", err
		}
	}
	return doc, nil
}

func mergeFunctions(doc, key string, ctx *types.Context, mod *mir.MirModule) (string, error) {
	var err error
	for i, fn := range mod.Functions {
		dumped, derr := dumpFunction(ctx, fn)
		if derr != nil {
			return "", derr
		}
		if doc, err = sjson.SetRaw(doc, fmt.Sprintf("%s.%d", key, i), dumped); err != nil {
			return "", err
		}
	}
	return doc, nil
}

func dumpFunction(ctx *types.Context, fn *mir.MirFunction) (string, error) {
	doc := "{}"
	var err error

	set := func(path string, v interface{}) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, path, v)
	}

	set("id", int(fn.ID))
	set("name", fn.Name)
	if err != nil {
		return "", err
	}
	if doc, err = setSignature(doc, "signature", ctx, fn.Signature); err != nil {
		return "", err
	}

	for i, l := range fn.Locals {
		base := fmt.Sprintf("locals.%d", i)
		set(base+".name", l.Name)
		set(base+".type", ctx.Display(l.Type))
		set(base+".mutable", l.Mutable)
		set(base+".isSRet", l.IsSRet)
		set(base+".isParam", l.IsParam)
	}
	for i, t := range fn.TempTypes {
		set(fmt.Sprintf("tempTypes.%d", i), ctx.Display(t))
	}
	set("startBlock", int(fn.StartBlock))
	if err != nil {
		return "", err
	}

	for i, blk := range fn.Blocks {
		bdoc, berr := dumpBlock(ctx, blk)
		if berr != nil {
			return "", berr
		}
		if doc, err = sjson.SetRaw(doc, fmt.Sprintf("blocks.%d", i), bdoc); err != nil {
			return "", err
		}
	}

	return doc, nil
}

func dumpBlock(ctx *types.Context, b *mir.BasicBlock) (string, error) {
	doc := "{}"
	var err error
	set := func(path string, v interface{}) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, path, v)
	}
	set("id", int(b.ID))

	for i, phi := range b.Phis {
		base := fmt.Sprintf("phis.%d", i)
		set(base+".dest", int(phi.Dest))
		set(base+".type", ctx.Display(phi.Type))
		for j, inc := range phi.Incoming {
			set(fmt.Sprintf("%s.incoming.%d.block", base, j), int(inc.Block))
			set(fmt.Sprintf("%s.incoming.%d.temp", base, j), int(inc.Temp))
		}
	}
	if err != nil {
		return "", err
	}

	for i, st := range b.Statements {
		set(fmt.Sprintf("statements.%d", i), describeStatement(ctx, st))
	}
	set("terminator", describeTerminator(ctx, b.Terminator))
	if err != nil {
		return "", err
	}
	return doc, nil
}

func describeOperand(ctx *types.Context, op mir.Operand) string {
	if op.Kind == mir.OperandTemp {
		return fmt.Sprintf("t%d: %s", int(op.Temp), ctx.Display(op.Type))
	}
	c := op.Constant
	switch c.Kind {
	case mir.ConstInt:
		return fmt.Sprintf("%d: %s", c.Int, ctx.Display(c.Type))
	case mir.ConstBool:
		return fmt.Sprintf("%t: %s", c.Bool, ctx.Display(c.Type))
	case mir.ConstChar:
		return fmt.Sprintf("%q: %s", c.Char, ctx.Display(c.Type))
	case mir.ConstStr:
		return fmt.Sprintf("%q: %s", c.Str, ctx.Display(c.Type))
	default:
		return "(): " + ctx.Display(c.Type)
	}
}

func describePlace(ctx *types.Context, p mir.Place) string {
	s := fmt.Sprintf("local%d", int(p.Base))
	for _, proj := range p.Projections {
		switch proj.Kind {
		case mir.ProjField:
			s += fmt.Sprintf(".%d", proj.FieldIndex)
		case mir.ProjIndex:
			s += fmt.Sprintf("[%s]", describeOperand(ctx, proj.IndexOp))
		case mir.ProjDeref:
			s += ".*"
		}
	}
	return s + ": " + ctx.Display(p.Type)
}

func describeStatement(ctx *types.Context, st mir.Statement) string {
	switch st.Kind {
	case mir.StmtDefine:
		return fmt.Sprintf("t%d = %s", int(st.DefineTemp), describeRValue(ctx, st.RValue))
	case mir.StmtAssign:
		if st.AssignRValue != nil {
			return fmt.Sprintf("%s = %s", describePlace(ctx, st.AssignPlace), describeRValue(ctx, *st.AssignRValue))
		}
		return fmt.Sprintf("%s = <assign>", describePlace(ctx, st.AssignPlace))
	case mir.StmtLoad:
		return fmt.Sprintf("t%d = load %s", int(st.LoadTemp), describePlace(ctx, st.LoadPlace))
	case mir.StmtCall:
		args := make([]string, len(st.Args))
		for i, a := range st.Args {
			args[i] = describeOperand(ctx, a)
		}
		callee := st.CallTarget.Builtin
		if st.CallTarget.Kind == mir.CallFunction {
			callee = fmt.Sprintf("fn%d", int(st.CallTarget.Function))
		}
		dest := ""
		switch {
		case st.DestPlace != nil:
			dest = describePlace(ctx, *st.DestPlace) + " = "
		case st.DestTemp != nil:
			dest = fmt.Sprintf("t%d = ", int(*st.DestTemp))
		}
		return fmt.Sprintf("%scall %s(%v)", dest, callee, args)
	default:
		return "<unknown statement>"
	}
}

func describeRValue(ctx *types.Context, r mir.RValue) string {
	switch r.Kind {
	case mir.RValUse:
		return describeOperand(ctx, r.Use)
	case mir.RValBinary:
		return fmt.Sprintf("%s %v %s", describeOperand(ctx, r.Left), r.BinOp, describeOperand(ctx, r.Right))
	case mir.RValUnary:
		return fmt.Sprintf("%v %s", r.UnOp, describeOperand(ctx, r.Operand))
	case mir.RValCast:
		return fmt.Sprintf("%s as %s", describeOperand(ctx, r.Operand), ctx.Display(r.CastType))
	case mir.RValRef:
		if r.RefMut {
			return "&mut " + describePlace(ctx, r.RefPlace)
		}
		return "&" + describePlace(ctx, r.RefPlace)
	case mir.RValArrayRepeat:
		return fmt.Sprintf("[%s; %d]", describeOperand(ctx, r.RepeatVal), r.RepeatLen)
	case mir.RValAggregate:
		return "<aggregate>: " + ctx.Display(r.Type)
	case mir.RValCopy:
		return "copy " + describePlace(ctx, r.CopyFrom)
	default:
		return "<unknown rvalue>"
	}
}

func describeTerminator(ctx *types.Context, t mir.Terminator) string {
	switch t.Kind {
	case mir.TermGoto:
		return fmt.Sprintf("goto block%d", int(t.Goto))
	case mir.TermSwitchInt:
		arms := make([]string, len(t.Targets))
		for i, tg := range t.Targets {
			arms[i] = fmt.Sprintf("%d -> block%d", tg.Value, int(tg.Block))
		}
		return fmt.Sprintf("switch %s [%v] otherwise block%d", describeOperand(ctx, t.Discr), arms, int(t.Otherwise))
	case mir.TermReturn:
		if t.ReturnOp != nil {
			return "return " + describeOperand(ctx, *t.ReturnOp)
		}
		return "return"
	case mir.TermUnreachable:
		return "unreachable"
	default:
		return "<unknown terminator>"
	}
}

func setSignature(doc, path string, ctx *types.Context, sig mir.Signature) (string, error) {
	var err error
	set := func(p string, v interface{}) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, p, v)
	}
	set(path+".returnKind", fmt.Sprintf("%v", sig.Return.Kind))
	if sig.Return.Kind == mir.ReturnDirect || sig.Return.Kind == mir.ReturnIndirectSRet {
		set(path+".returnType", ctx.Display(sig.Return.Type))
	}
	for i, p := range sig.Params {
		set(fmt.Sprintf("%s.params.%d", path, i), ctx.Display(p))
	}
	for i, p := range sig.AbiParams {
		set(fmt.Sprintf("%s.abiParams.%d.type", path, i), ctx.Display(p.Type))
		set(fmt.Sprintf("%s.abiParams.%d.mode", path, i), fmt.Sprintf("%v", p.Mode))
	}
	return doc, err
}
