package sema

import (
	"fmt"

	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// CheckSemantics is pass 6 (spec.md §4.6), the largest single pass: it
// computes every expression's ExprInfo (resolved type, place-ness,
// mutability, control-flow endpoints), enforces mutability and
// const-context rules, performs auto-deref/auto-ref for field access,
// indexing and method-call receivers, and flags MissingReturn.
//
// It also resolves MethodCallExpr.Target: unlike a plain call, a method
// dispatch needs the receiver's resolved type, which only exists once
// this pass has typed the receiver expression — so it can't happen in
// pass 2 alongside plain-path calls.
func CheckSemantics(a *Analysis, prog *hir.Program) *diag.Bag {
	bag := diag.NewBag()
	for _, item := range prog.Items {
		checkItemSemantics(a, bag, types.Invalid, item)
	}
	return bag
}

func checkItemSemantics(a *Analysis, bag *diag.Bag, selfType types.TypeId, item hir.Item) {
	switch n := item.(type) {
	case *hir.FunctionDecl:
		checkFunctionSemantics(a, bag, selfType, n)
	case *hir.ImplDecl:
		for _, it := range n.Items {
			checkItemSemantics(a, bag, n.ForType.ID, it)
		}
	case *hir.TraitDecl:
		for _, it := range n.Items {
			checkItemSemantics(a, bag, selfType, it)
		}
	}
}

func checkFunctionSemantics(a *Analysis, bag *diag.Bag, selfType types.TypeId, fn *hir.FunctionDecl) {
	if fn.Body == nil {
		return
	}
	c := &checker{a: a, bag: bag, ret: fn.RetType.ID, selfType: selfType}
	bodyInfo := c.block(fn.Body)
	if bodyInfo.Endpoints.Normal && fn.RetType.ID != a.Ctx.Unit() {
		bag.Add(diag.MissingReturn, fn.Span(),
			"function %q can fall off the end without returning a value of type %s", fn.Name, a.Ctx.Display(fn.RetType.ID))
	}
	fn.EndpointsOK = true
}

// checker carries the per-function ambient state a semantic-check walk
// needs: the expected return type (for `return`/fallthrough) and the
// stack of loops currently being walked (for `break`'s type unification
// and the loop target of `break`/`continue` — pass 7 binds `return` to its
// function and re-checks every `break` independently, matching spec.md's
// pass separation).
type checker struct {
	a        *Analysis
	bag      *diag.Bag
	ret      types.TypeId
	selfType types.TypeId
	loops    []hir.LoopKey
}

func (c *checker) currentLoop() (hir.LoopKey, bool) {
	if len(c.loops) == 0 {
		return nil, false
	}
	return c.loops[len(c.loops)-1], true
}

// expect compares actual against wanted, tolerating types.Invalid (a
// downstream echo of an earlier error, already reported) and Never
// (unifies with anything, spec.md §4.6 property 2).
func (c *checker) expect(actual, wanted types.TypeId, span diag.Span, what string) bool {
	if actual == types.Invalid || wanted == types.Invalid {
		return true
	}
	if actual == c.a.Ctx.Never() {
		return true
	}
	if actual == wanted {
		return true
	}
	c.bag.Add(diag.TypeMismatch, span, "%s: expected %s, found %s", what, c.a.Ctx.Display(wanted), c.a.Ctx.Display(actual))
	return false
}

func info(t types.TypeId, isPlace, isMut bool, ep hir.EndpointSet) *hir.ExprInfo {
	return &hir.ExprInfo{Type: t, IsPlace: isPlace, IsMut: isMut, Endpoints: ep}
}

// block types and endpoint-checks a Block: statements fold sequentially
// (a diverging statement makes the rest unreachable for endpoint
// purposes, though they're still visited for their own diagnostics), and
// the tail expression (if reached) supplies the block's type.
func (c *checker) block(blk *hir.Block) *hir.ExprInfo {
	ep := hir.NewEndpointSet()
	ep.Normal = true
	reachable := true

	for _, st := range blk.Stmts {
		se := c.stmt(st)
		if !reachable {
			continue
		}
		ep.Return = ep.Return || se.Return
		for k := range se.Breaks {
			ep.Breaks[k] = true
		}
		for k := range se.Continues {
			ep.Continues[k] = true
		}
		ep.Normal = se.Normal
		if !se.Normal {
			reachable = false
		}
	}

	var blockType types.TypeId
	if reachable {
		if blk.Tail != nil {
			tailInfo := c.expr(blk.Tail, types.Invalid)
			ep.Return = ep.Return || tailInfo.Endpoints.Return
			for k := range tailInfo.Endpoints.Breaks {
				ep.Breaks[k] = true
			}
			for k := range tailInfo.Endpoints.Continues {
				ep.Continues[k] = true
			}
			ep.Normal = tailInfo.Endpoints.Normal
			blockType = tailInfo.Type
		} else {
			blockType = c.a.Ctx.Unit()
		}
	} else {
		if blk.Tail != nil {
			c.expr(blk.Tail, types.Invalid) // unreachable, but still checked
		}
		blockType = c.a.Ctx.Never()
	}

	return info(blockType, false, false, ep)
}

func (c *checker) stmt(st hir.Stmt) hir.EndpointSet {
	switch s := st.(type) {
	case *hir.LetStmt:
		if s.Value == nil {
			return hir.NormalOnly()
		}
		valInfo := c.expr(s.Value, s.Local.Type.ID)
		if s.Local.Type.ID == types.Invalid {
			s.Local.Type.ID = valInfo.Type
		} else {
			c.expect(valInfo.Type, s.Local.Type.ID, s.Value.Span(), "let binding")
		}
		return valInfo.Endpoints
	case *hir.ExprStmt:
		return c.expr(s.Expr, types.Invalid).Endpoints
	case *hir.ItemStmt:
		checkItemSemantics(c.a, c.bag, c.selfType, s.Item)
		return hir.NormalOnly()
	default:
		return hir.NormalOnly()
	}
}

// expr is the main dispatch: types e, populates its ExprInfo cache, and
// (for a LiteralExpr) uses wanted as a best-effort type expectation when
// the literal carries no explicit suffix.
func (c *checker) expr(e hir.Expr, wanted types.TypeId) *hir.ExprInfo {
	var out *hir.ExprInfo
	switch n := e.(type) {
	case *hir.LiteralExpr:
		out = c.literal(n, wanted)
		n.Info = out
	case *hir.PathExpr:
		out = c.path(n)
		n.Info = out
	case *hir.FieldExpr:
		out = c.field(n)
		n.Info = out
	case *hir.IndexExpr:
		out = c.index(n)
		n.Info = out
	case *hir.StructLitExpr:
		out = c.structLit(n)
		n.Info = out
	case *hir.ArrayLitExpr:
		out = c.arrayLit(n)
		n.Info = out
	case *hir.ArrayRepeatExpr:
		out = c.arrayRepeat(n)
		n.Info = out
	case *hir.CastExpr:
		out = c.cast(n)
		n.Info = out
	case *hir.BinaryExpr:
		out = c.binary(n)
		n.Info = out
	case *hir.UnaryExpr:
		out = c.unary(n)
		n.Info = out
	case *hir.RefExpr:
		out = c.ref(n)
		n.Info = out
	case *hir.DerefExpr:
		out = c.deref(n)
		n.Info = out
	case *hir.AssignExpr:
		out = c.assign(n)
		n.Info = out
	case *hir.BlockExpr:
		out = c.block(n.Block)
		n.Info = out
	case *hir.IfExpr:
		out = c.ifExpr(n)
		n.Info = out
	case *hir.LoopExpr:
		out = c.loopExpr(n)
		n.Info = out
	case *hir.WhileExpr:
		out = c.whileExpr(n)
		n.Info = out
	case *hir.CallExpr:
		out = c.call(n)
		n.Info = out
	case *hir.MethodCallExpr:
		out = c.methodCall(n)
		n.Info = out
	case *hir.BreakExpr:
		out = c.breakExpr(n)
		n.Info = out
	case *hir.ContinueExpr:
		ep := hir.NewEndpointSet()
		if loop, ok := c.currentLoop(); ok {
			ep.Continues[loop] = true
			n.Loop = loop
		} else {
			c.bag.Add(diag.InvalidControlFlow, n.Span(), "`continue` outside of a loop")
		}
		out = info(c.a.Ctx.Never(), false, false, ep)
		n.Info = out
	case *hir.ReturnExpr:
		out = c.returnExpr(n)
		n.Info = out
	default:
		out = info(types.Invalid, false, false, hir.NormalOnly())
	}
	return out
}

func (c *checker) literal(n *hir.LiteralExpr, wanted types.TypeId) *hir.ExprInfo {
	ctx := c.a.Ctx
	var t types.TypeId
	switch n.Kind {
	case ast.BoolLit:
		t, _ = ctx.Primitive("bool")
	case ast.CharLit:
		t, _ = ctx.Primitive("char")
	case ast.StringLit:
		t = ctx.Reference(ctx.Str(), false)
	case ast.UnitLit:
		t = ctx.Unit()
	case ast.IntLit:
		if n.Suffix != "" {
			t, _ = ctx.Primitive(n.Suffix)
		} else if wanted != types.Invalid {
			if wt := ctx.Type(wanted); wt.Kind == types.KindPrimitive {
				switch wt.Primitive {
				case types.I32, types.U32, types.Isize, types.Usize:
					t = wanted
				}
			}
		}
		if t == types.Invalid {
			t, _ = ctx.Primitive("i32")
		}
	}
	return info(t, false, false, hir.NormalOnly())
}

func (c *checker) path(n *hir.PathExpr) *hir.ExprInfo {
	switch n.Target.Kind {
	case hir.PathLocal:
		return info(n.Target.Local.Type.ID, true, n.Target.Local.Mutable, hir.NormalOnly())
	case hir.PathConst:
		return info(n.Target.Const.Type.ID, false, false, hir.NormalOnly())
	case hir.PathEnumVariant:
		t := c.a.Ctx.GetID(types.Type{Kind: types.KindEnum, Enum: n.Target.Enum.ID})
		return info(t, false, false, hir.NormalOnly())
	case hir.PathFunction, hir.PathBuiltin:
		c.bag.Add(diag.InvalidType, n.Span(), "functions are not first-class values in this language")
		return info(types.Invalid, false, false, hir.NormalOnly())
	default:
		return info(types.Invalid, false, false, hir.NormalOnly())
	}
}

// deref0 strips leading reference layers from t, returning the base type
// and whether every reference along the way was mutable (a single `&`
// anywhere in the chain makes the place behind it immutable).
func (c *checker) deref0(t types.TypeId) (base types.TypeId, throughMut bool, refLayers int) {
	base = t
	throughMut = true
	for {
		tv := c.a.Ctx.Type(base)
		if tv.Kind != types.KindReference {
			break
		}
		if refLayers == 0 {
			throughMut = tv.RefMut
		} else {
			throughMut = throughMut && tv.RefMut
		}
		base = tv.RefTarget
		refLayers++
	}
	return base, throughMut, refLayers
}

func (c *checker) field(n *hir.FieldExpr) *hir.ExprInfo {
	recv := c.expr(n.Receiver, types.Invalid)
	base, throughMut, refLayers := c.deref0(recv.Type)
	if base == types.Invalid {
		return info(types.Invalid, false, false, recv.Endpoints)
	}
	bt := c.a.Ctx.Type(base)
	if bt.Kind != types.KindStruct {
		c.bag.Add(diag.InvalidType, n.Span(), "field access on a non-struct type %s", c.a.Ctx.Display(recv.Type))
		return info(types.Invalid, false, false, recv.Endpoints)
	}
	sinfo := c.a.Ctx.Struct(bt.Struct)
	for i, fd := range sinfo.Fields {
		if fd.Name == n.Name {
			n.Target = hir.FieldAccessTarget{Resolved: true, Name: fd.Name, Index: i}
			mut := throughMut
			if refLayers == 0 {
				mut = recv.IsMut
			}
			return info(fd.Type, true, mut, recv.Endpoints)
		}
	}
	c.bag.Add(diag.InvalidType, n.Span(), "%s has no field %q", sinfo.Name, n.Name)
	return info(types.Invalid, false, false, recv.Endpoints)
}

func (c *checker) index(n *hir.IndexExpr) *hir.ExprInfo {
	recv := c.expr(n.Receiver, types.Invalid)
	idx := c.expr(n.Index, types.Invalid)
	usize, _ := c.a.Ctx.Primitive("usize")
	c.expect(idx.Type, usize, n.Index.Span(), "array index")

	base, throughMut, refLayers := c.deref0(recv.Type)
	if base == types.Invalid {
		return info(types.Invalid, false, false, recv.Endpoints.Union(idx.Endpoints))
	}
	bt := c.a.Ctx.Type(base)
	if bt.Kind != types.KindArray {
		c.bag.Add(diag.InvalidType, n.Span(), "indexing a non-array type %s", c.a.Ctx.Display(recv.Type))
		return info(types.Invalid, false, false, recv.Endpoints.Union(idx.Endpoints))
	}
	mut := throughMut
	if refLayers == 0 {
		mut = recv.IsMut
	}
	return info(bt.ElemType, true, mut, recv.Endpoints.Union(idx.Endpoints))
}

func (c *checker) structLit(n *hir.StructLitExpr) *hir.ExprInfo {
	ep := hir.NewEndpointSet()
	ep.Normal = true
	if !n.Resolved {
		for _, f := range n.Fields {
			fi := c.expr(f.Value, types.Invalid)
			ep = ep.Union(fi.Endpoints)
		}
		return info(types.Invalid, false, false, ep)
	}
	sinfo := c.a.Ctx.Struct(n.StructID)
	for _, f := range n.Fields {
		wanted := types.Invalid
		if f.FieldIndex >= 0 && f.FieldIndex < len(sinfo.Fields) {
			wanted = sinfo.Fields[f.FieldIndex].Type
		}
		fi := c.expr(f.Value, wanted)
		c.expect(fi.Type, wanted, f.Value.Span(), fmt.Sprintf("field %q initializer", f.Name))
		ep = ep.Union(fi.Endpoints)
	}
	t := c.a.Ctx.GetID(types.Type{Kind: types.KindStruct, Struct: n.StructID})
	return info(t, false, false, ep)
}

func (c *checker) arrayLit(n *hir.ArrayLitExpr) *hir.ExprInfo {
	ep := hir.NewEndpointSet()
	ep.Normal = true
	elemType := types.Invalid
	for i, el := range n.Elements {
		ei := c.expr(el, elemType)
		if i == 0 {
			elemType = ei.Type
		} else {
			c.expect(ei.Type, elemType, el.Span(), "array element")
		}
		ep = ep.Union(ei.Endpoints)
	}
	t := c.a.Ctx.Array(elemType, uint64(len(n.Elements)))
	return info(t, false, false, ep)
}

func (c *checker) arrayRepeat(n *hir.ArrayRepeatExpr) *hir.ExprInfo {
	vi := c.expr(n.Value, types.Invalid)
	t := c.a.Ctx.Array(vi.Type, n.ConstLen)
	return info(t, false, false, vi.Endpoints)
}

func (c *checker) cast(n *hir.CastExpr) *hir.ExprInfo {
	vi := c.expr(n.Value, types.Invalid)
	target := n.Type.ID
	if vi.Type != types.Invalid && target != types.Invalid {
		srcT := c.a.Ctx.Type(vi.Type)
		dstT := c.a.Ctx.Type(target)
		if srcT.Kind != types.KindPrimitive || dstT.Kind != types.KindPrimitive {
			c.bag.Add(diag.InvalidType, n.Span(), "cannot cast %s to %s", c.a.Ctx.Display(vi.Type), c.a.Ctx.Display(target))
		}
	}
	return info(target, false, false, vi.Endpoints)
}

var arithOps = map[ast.BinOp]bool{
	ast.Add: true, ast.Sub: true, ast.Mul: true, ast.Div: true, ast.Rem: true,
	ast.BitAnd: true, ast.BitOr: true, ast.BitXor: true, ast.Shl: true, ast.Shr: true,
}
var cmpOps = map[ast.BinOp]bool{
	ast.CmpEq: true, ast.CmpNe: true, ast.CmpLt: true, ast.CmpLe: true, ast.CmpGt: true, ast.CmpGe: true,
}

func (c *checker) binary(n *hir.BinaryExpr) *hir.ExprInfo {
	li := c.expr(n.Left, types.Invalid)
	ri := c.expr(n.Right, li.Type)
	ep := li.Endpoints.Union(ri.Endpoints)
	ctx := c.a.Ctx

	switch {
	case n.Op == ast.LogAnd || n.Op == ast.LogOr:
		boolT, _ := ctx.Primitive("bool")
		c.expect(li.Type, boolT, n.Left.Span(), "operand of logical operator")
		c.expect(ri.Type, boolT, n.Right.Span(), "operand of logical operator")
		return info(boolT, false, false, ep)
	case cmpOps[n.Op]:
		c.expect(ri.Type, li.Type, n.Right.Span(), "comparison operand")
		boolT, _ := ctx.Primitive("bool")
		return info(boolT, false, false, ep)
	case arithOps[n.Op]:
		c.expect(ri.Type, li.Type, n.Right.Span(), "arithmetic operand")
		return info(li.Type, false, false, ep)
	default:
		return info(li.Type, false, false, ep)
	}
}

func (c *checker) unary(n *hir.UnaryExpr) *hir.ExprInfo {
	oi := c.expr(n.Operand, types.Invalid)
	switch n.Op {
	case ast.Not:
		boolT, _ := c.a.Ctx.Primitive("bool")
		c.expect(oi.Type, boolT, n.Span(), "operand of `!`")
		return info(boolT, false, false, oi.Endpoints)
	default: // Neg, BitNot
		return info(oi.Type, false, false, oi.Endpoints)
	}
}

func (c *checker) ref(n *hir.RefExpr) *hir.ExprInfo {
	oi := c.expr(n.Operand, types.Invalid)
	if n.Mutable && (!oi.IsPlace || !oi.IsMut) {
		c.bag.Add(diag.ImmutableVariableMutated, n.Span(), "cannot take a mutable reference to an immutable place")
	}
	t := c.a.Ctx.Reference(oi.Type, n.Mutable)
	return info(t, false, false, oi.Endpoints)
}

func (c *checker) deref(n *hir.DerefExpr) *hir.ExprInfo {
	oi := c.expr(n.Operand, types.Invalid)
	if oi.Type == types.Invalid {
		return info(types.Invalid, true, false, oi.Endpoints)
	}
	t := c.a.Ctx.Type(oi.Type)
	if t.Kind != types.KindReference {
		c.bag.Add(diag.InvalidType, n.Span(), "cannot dereference non-reference type %s", c.a.Ctx.Display(oi.Type))
		return info(types.Invalid, true, false, oi.Endpoints)
	}
	return info(t.RefTarget, true, t.RefMut, oi.Endpoints)
}

func (c *checker) assign(n *hir.AssignExpr) *hir.ExprInfo {
	ti := c.expr(n.Target, types.Invalid)
	vi := c.expr(n.Value, ti.Type)
	if !ti.IsPlace {
		c.bag.Add(diag.InvalidType, n.Target.Span(), "left-hand side of an assignment must be a place expression")
	} else if !ti.IsMut {
		c.bag.Add(diag.ImmutableVariableMutated, n.Target.Span(), "cannot assign to an immutable binding")
	}
	c.expect(vi.Type, ti.Type, n.Value.Span(), "assignment")
	unit := c.a.Ctx.Unit()
	return info(unit, false, false, ti.Endpoints.Union(vi.Endpoints))
}

func (c *checker) ifExpr(n *hir.IfExpr) *hir.ExprInfo {
	boolT, _ := c.a.Ctx.Primitive("bool")
	ci := c.expr(n.Cond, boolT)
	c.expect(ci.Type, boolT, n.Cond.Span(), "if condition")

	thenInfo := c.block(n.Then)
	if n.Else == nil {
		unit := c.a.Ctx.Unit()
		c.expect(thenInfo.Type, unit, n.Then.Span(), "if without else")
		ep := ci.Endpoints
		ep.Normal = true // falling through the missing else is always possible
		ep = ep.Union(thenInfo.Endpoints)
		return info(unit, false, false, ep)
	}
	elseInfo := c.expr(n.Else, types.Invalid)
	resultType := unifyBranchTypes(c.a.Ctx, thenInfo.Type, elseInfo.Type)
	if resultType == types.Invalid && thenInfo.Type != types.Invalid && elseInfo.Type != types.Invalid {
		c.bag.Add(diag.TypeMismatch, n.Span(), "if/else branches have incompatible types: %s vs %s",
			c.a.Ctx.Display(thenInfo.Type), c.a.Ctx.Display(elseInfo.Type))
	}
	ep := ci.Endpoints.Union(thenInfo.Endpoints).Union(elseInfo.Endpoints)
	return info(resultType, false, false, ep)
}

// unifyBranchTypes implements Never-coercion: a Never-typed branch
// unifies with whatever the other branch produces (spec.md §4.6
// property 2).
func unifyBranchTypes(ctx *types.Context, a, b types.TypeId) types.TypeId {
	never := ctx.Never()
	switch {
	case a == types.Invalid || b == types.Invalid:
		return types.Invalid
	case a == never:
		return b
	case b == never:
		return a
	case a == b:
		return a
	default:
		return types.Invalid
	}
}

func (c *checker) loopExpr(n *hir.LoopExpr) *hir.ExprInfo {
	c.loops = append(c.loops, n)
	bodyInfo := c.block(n.Body)
	c.loops = c.loops[:len(c.loops)-1]

	ep := hir.NewEndpointSet()
	ep.Return = bodyInfo.Endpoints.Return
	for k, brk := range bodyInfo.Endpoints.Breaks {
		if k == hir.LoopKey(n) {
			continue
		}
		ep.Breaks[k] = brk
	}
	for k, cont := range bodyInfo.Endpoints.Continues {
		if k == hir.LoopKey(n) {
			continue
		}
		ep.Continues[k] = cont
	}
	// `loop` only falls through normally via a `break` targeting it
	// (spec.md §4.6); a body that always returns/continues/breaks out to
	// an outer loop leaves this loop diverging.
	ep.Normal = n.HasBreak && bodyInfo.Endpoints.Breaks[hir.LoopKey(n)]

	t := c.a.Ctx.Never()
	if n.HasBreak {
		t = n.BreakType
	}
	return info(t, false, false, ep)
}

func (c *checker) whileExpr(n *hir.WhileExpr) *hir.ExprInfo {
	boolT, _ := c.a.Ctx.Primitive("bool")
	ci := c.expr(n.Cond, boolT)
	c.expect(ci.Type, boolT, n.Cond.Span(), "while condition")

	c.loops = append(c.loops, n)
	bodyInfo := c.block(n.Body)
	c.loops = c.loops[:len(c.loops)-1]

	ep := hir.NewEndpointSet()
	ep.Normal = true // the condition can always be false immediately
	ep.Return = bodyInfo.Endpoints.Return
	for k, v := range bodyInfo.Endpoints.Breaks {
		if k == hir.LoopKey(n) {
			continue
		}
		ep.Breaks[k] = v
	}
	for k, v := range bodyInfo.Endpoints.Continues {
		if k == hir.LoopKey(n) {
			continue
		}
		ep.Continues[k] = v
	}
	return info(c.a.Ctx.Unit(), false, false, ci.Endpoints.Union(ep))
}

func (c *checker) call(n *hir.CallExpr) *hir.ExprInfo {
	// The callee is meaningful only in call position (Rx has no
	// first-class functions): skip generic expression typing of it and
	// just give it a harmless placeholder ExprInfo so downstream
	// consumers (debug dumps, MIR lowering) never see a nil Info.
	if path, ok := n.Callee.(*hir.PathExpr); ok {
		path.Info = info(types.Invalid, false, false, hir.NormalOnly())
		switch path.Target.Kind {
		case hir.PathFunction:
			n.Target = hir.CallTarget{Kind: hir.CallFunction, Function: path.Target.Function}
		case hir.PathBuiltin:
			n.Target = hir.CallTarget{Kind: hir.CallBuiltin, Builtin: path.Target.Builtin}
		}
	}

	ep := hir.NewEndpointSet()
	ep.Normal = true
	argInfos := make([]*hir.ExprInfo, len(n.Args))
	for i, arg := range n.Args {
		argInfos[i] = c.expr(arg, types.Invalid)
	}

	switch n.Target.Kind {
	case hir.CallFunction:
		fn := n.Target.Function
		c.checkArgs(n.Span(), fn.Params, argInfos, n.Args)
		for _, ai := range argInfos {
			ep = ep.Union(ai.Endpoints)
		}
		return info(fn.RetType.ID, false, false, ep)
	case hir.CallBuiltin:
		sig, ok := c.a.Ctx.Builtin(n.Target.Builtin)
		if !ok {
			return info(types.Invalid, false, false, ep)
		}
		for i, p := range sig.Params {
			if i < len(argInfos) {
				c.expect(argInfos[i].Type, p.Type, n.Args[i].Span(), "builtin argument")
			}
		}
		for _, ai := range argInfos {
			ep = ep.Union(ai.Endpoints)
		}
		if sig.Diverges {
			return info(c.a.Ctx.Never(), false, false, hir.NewEndpointSet())
		}
		return info(sig.Return, false, false, ep)
	default:
		c.bag.Add(diag.InvalidType, n.Span(), "expression is not callable")
		for _, ai := range argInfos {
			ep = ep.Union(ai.Endpoints)
		}
		return info(types.Invalid, false, false, ep)
	}
}

func (c *checker) checkArgs(span diag.Span, params []*hir.Local, args []*hir.ExprInfo, argExprs []hir.Expr) {
	if len(params) != len(args) {
		c.bag.Add(diag.TypeMismatch, span, "expected %d argument(s), found %d", len(params), len(args))
		return
	}
	for i, p := range params {
		c.expect(args[i].Type, p.Type.ID, argExprs[i].Span(), fmt.Sprintf("argument %d", i+1))
	}
}

// methodCall resolves the receiver's method/builtin dispatch (spec.md
// §4.6's auto-deref rule) and type-checks the call.
func (c *checker) methodCall(n *hir.MethodCallExpr) *hir.ExprInfo {
	recv := c.expr(n.Receiver, types.Invalid)
	ep := recv.Endpoints
	argInfos := make([]*hir.ExprInfo, len(n.Args))
	for i, arg := range n.Args {
		argInfos[i] = c.expr(arg, types.Invalid)
		ep = ep.Union(argInfos[i].Endpoints)
	}
	if recv.Type == types.Invalid {
		return info(types.Invalid, false, false, ep)
	}

	base, _, refLayers := c.deref0(recv.Type)

	if fn, ok := c.a.LookupMethod(base, n.Method); ok {
		if fn.Self == nil {
			c.bag.Add(diag.InvalidType, n.Span(), "%q is an associated function, not a method", n.Method)
			return info(types.Invalid, false, false, ep)
		}
		c.resolveAutoRef(n, recv, fn.SelfKind, refLayers)
		n.Target = hir.CallTarget{Kind: hir.CallMethod, Method: fn}
		c.checkArgs(n.Span(), fn.Params, argInfos, n.Args)
		return info(fn.RetType.ID, false, false, ep)
	}

	if sig, name, ok := c.lookupBuiltinMethod(recv.Type, base, n.Method); ok {
		n.Target = hir.CallTarget{Kind: hir.CallBuiltin, Builtin: name}
		for i, p := range sig.Params {
			if i < len(argInfos) {
				c.expect(argInfos[i].Type, p.Type, n.Args[i].Span(), "builtin argument")
			}
		}
		return info(sig.Return, false, false, ep)
	}

	if n.Method == "len" {
		bt := c.a.Ctx.Type(base)
		if bt.Kind == types.KindArray || base == c.a.Ctx.BuiltinString() || (bt.Kind == types.KindPrimitive && bt.Primitive == types.Str) {
			usize, _ := c.a.Ctx.Primitive("usize")
			n.Target = hir.CallTarget{Kind: hir.CallBuiltin, Builtin: "len"}
			return info(usize, false, false, ep)
		}
	}

	c.bag.Add(diag.InvalidType, n.Span(), "no method %q found on type %s", n.Method, c.a.Ctx.Display(recv.Type))
	return info(types.Invalid, false, false, ep)
}

func (c *checker) lookupBuiltinMethod(recvType, base types.TypeId, method string) (*types.BuiltinSignature, string, bool) {
	ctx := c.a.Ctx
	candidates := []string{
		"<" + ctx.Display(recvType) + ">::" + method,
		"<" + ctx.Display(base) + ">::" + method,
	}
	if base == ctx.BuiltinString() {
		candidates = append(candidates, "String::"+method)
	}
	for _, name := range candidates {
		if sig, ok := ctx.Builtin(name); ok {
			return sig, name, true
		}
	}
	return nil, "", false
}

// resolveAutoRef decides whether an implicit `&`/`&mut` must be inserted
// around the receiver to match the target method's declared self-kind,
// flagging an immutable-place error when a `&mut self` method is called
// through an immutable place or an existing `&T` reference.
func (c *checker) resolveAutoRef(n *hir.MethodCallExpr, recv *hir.ExprInfo, want ast.SelfKind, refLayers int) {
	switch want {
	case ast.SelfByValue:
		if refLayers > 0 {
			c.bag.Add(diag.InvalidType, n.Receiver.Span(), "cannot call a by-value method through a reference")
		}
	case ast.SelfByRef:
		if refLayers == 0 {
			n.InsertedRef = true
		}
	case ast.SelfByRefMut:
		if refLayers == 0 {
			if !recv.IsPlace || !recv.IsMut {
				c.bag.Add(diag.ImmutableVariableMutated, n.Receiver.Span(), "cannot call a `&mut self` method on an immutable place")
			}
			n.InsertedRef = true
			n.AutoRefMut = true
		} else {
			rt := c.a.Ctx.Type(recv.Type)
			if rt.Kind == types.KindReference && !rt.RefMut {
				c.bag.Add(diag.ImmutableVariableMutated, n.Receiver.Span(), "cannot call a `&mut self` method through a `&` reference")
			}
		}
	}
}

func (c *checker) breakExpr(n *hir.BreakExpr) *hir.ExprInfo {
	loop, ok := c.currentLoop()
	if !ok {
		c.bag.Add(diag.InvalidControlFlow, n.Span(), "`break` outside of a loop")
		if n.Value != nil {
			c.expr(n.Value, types.Invalid)
		}
		return info(c.a.Ctx.Never(), false, false, hir.NewEndpointSet())
	}
	n.Loop = loop

	var valType types.TypeId
	ep := hir.NewEndpointSet()
	if lp, isLoop := loop.(*hir.LoopExpr); isLoop {
		valType = lp.BreakType
		if n.Value != nil {
			vi := c.expr(n.Value, valType)
			ep = vi.Endpoints
			if !lp.HasBreak {
				lp.BreakType = vi.Type
				lp.HasBreak = true
			} else {
				c.expect(vi.Type, lp.BreakType, n.Value.Span(), "break value")
			}
		} else if !lp.HasBreak {
			lp.BreakType = c.a.Ctx.Unit()
			lp.HasBreak = true
		}
	} else if n.Value != nil {
		vi := c.expr(n.Value, types.Invalid)
		ep = vi.Endpoints
		unit := c.a.Ctx.Unit()
		c.expect(vi.Type, unit, n.Value.Span(), "`while` loops never produce a break value")
	}
	ep.Breaks[loop] = true
	return info(c.a.Ctx.Never(), false, false, ep)
}

func (c *checker) returnExpr(n *hir.ReturnExpr) *hir.ExprInfo {
	ep := hir.NewEndpointSet()
	ep.Return = true
	if n.Value != nil {
		vi := c.expr(n.Value, c.ret)
		c.expect(vi.Type, c.ret, n.Value.Span(), "return value")
	} else {
		c.expect(c.a.Ctx.Unit(), c.ret, n.Span(), "return with no value")
	}
	return info(c.a.Ctx.Never(), false, false, ep)
}
