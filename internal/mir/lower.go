package mir

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// Lower is pass 9 (spec.md §4.9): it walks a fully checked hir.Program and
// produces the SSA-form MirModule an external machine-IR emitter consumes.
// By this point every name, type, trait obligation and control-flow edge
// has already been resolved and cached onto the HIR by passes 1-8; this
// pass never re-derives them, it only re-expresses them as a block graph.
//
// Lowering is destination-passing style (DPS, spec.md §4.9): every
// sub-expression lowers against an optional `dest *Place`. A scalar
// expression with no destination returns an Operand; a place expression
// (a variable, a field, a deref) returns the Place itself without
// reading it; and an expression lowered against a caller-supplied dest
// writes its value there directly and returns Written, never
// materializing an aggregate as a temp. This is what lets struct/array
// literals, array-repeat, and NRVO'd returns lower straight into their
// final memory location instead of being built and then copied.
func Lower(ctx *types.Context, prog *hir.Program) *MirModule {
	m := &MirModule{}

	var fns []*hir.FunctionDecl
	seen := map[*hir.FunctionDecl]bool{}
	collectFunctions(ctx, prog.Items, "", &fns, seen)

	ids := make(map[*hir.FunctionDecl]FunctionId, len(fns))
	for i, fn := range fns {
		ids[fn] = FunctionId(i)
	}

	l := &lowering{ctx: ctx, funcIDs: ids}

	for _, fn := range fns {
		m.Functions = append(m.Functions, l.declareFunction(fn))
	}
	l.allFns = m.Functions
	for _, name := range sortedBuiltinNames(ctx) {
		sig, _ := ctx.Builtin(name)
		m.ExternalFunctions = append(m.ExternalFunctions, ExternalFunction{
			Name:      name,
			Signature: convertBuiltinSignature(sig),
		})
	}
	for i, fn := range fns {
		l.lowerFunctionBody(fn, m.Functions[i])
	}
	return m
}

// collectFunctions walks every top-level item, impl and trait for
// FunctionDecls with a body, in source order, assigning each the next
// FunctionId by first occurrence. A trait's default-bodied method is a
// single shared *hir.FunctionDecl node (spec.md §4.5's default-method
// rule, wired in by pass 2's inheritDefaultedTraitItems) — every impl
// that relies on the default reuses the same lowered MirFunction rather
// than getting its own copy.
func collectFunctions(ctx *types.Context, items []hir.Item, prefix string, out *[]*hir.FunctionDecl, seen map[*hir.FunctionDecl]bool) {
	for _, it := range items {
		switch n := it.(type) {
		case *hir.FunctionDecl:
			if n.Body == nil || seen[n] {
				continue
			}
			seen[n] = true
			if prefix != "" {
				n.MangledName = prefix + "::" + n.Name
			} else {
				n.MangledName = n.Name
			}
			*out = append(*out, n)
			// A function body may itself declare local items (spec.md §3.3
			// ItemStmt) nested arbitrarily deep inside its own blocks; those
			// need collecting (and a FunctionId) too.
			collectFunctionsInBlock(ctx, n.Body, "", out, seen)
		case *hir.ImplDecl:
			implPrefix := prefix
			if n.ForType.ID != types.Invalid {
				implPrefix = ctx.Display(n.ForType.ID)
			}
			collectFunctions(ctx, n.Items, implPrefix, out, seen)
		case *hir.TraitDecl:
			collectFunctions(ctx, n.Items, n.Name, out, seen)
		}
	}
}

// collectFunctionsInBlock walks a block for local hir.ItemStmt entries and
// recurses into every nested block reachable from it, mirroring pass 2's
// collectBlock/collectNestedBlocks symbol-hoisting walk.
func collectFunctionsInBlock(ctx *types.Context, blk *hir.Block, prefix string, out *[]*hir.FunctionDecl, seen map[*hir.FunctionDecl]bool) {
	if blk == nil {
		return
	}
	var items []hir.Item
	for _, st := range blk.Stmts {
		if is, ok := st.(*hir.ItemStmt); ok {
			items = append(items, is.Item)
		}
	}
	collectFunctions(ctx, items, prefix, out, seen)

	for _, st := range blk.Stmts {
		switch s := st.(type) {
		case *hir.LetStmt:
			collectFunctionsInExpr(ctx, s.Value, prefix, out, seen)
		case *hir.ExprStmt:
			collectFunctionsInExpr(ctx, s.Expr, prefix, out, seen)
		}
	}
	collectFunctionsInExpr(ctx, blk.Tail, prefix, out, seen)
}

func collectFunctionsInExpr(ctx *types.Context, e hir.Expr, prefix string, out *[]*hir.FunctionDecl, seen map[*hir.FunctionDecl]bool) {
	switch n := e.(type) {
	case nil:
		return
	case *hir.BlockExpr:
		collectFunctionsInBlock(ctx, n.Block, prefix, out, seen)
	case *hir.IfExpr:
		collectFunctionsInExpr(ctx, n.Cond, prefix, out, seen)
		collectFunctionsInBlock(ctx, n.Then, prefix, out, seen)
		collectFunctionsInExpr(ctx, n.Else, prefix, out, seen)
	case *hir.LoopExpr:
		collectFunctionsInBlock(ctx, n.Body, prefix, out, seen)
	case *hir.WhileExpr:
		collectFunctionsInExpr(ctx, n.Cond, prefix, out, seen)
		collectFunctionsInBlock(ctx, n.Body, prefix, out, seen)
	case *hir.BinaryExpr:
		collectFunctionsInExpr(ctx, n.Left, prefix, out, seen)
		collectFunctionsInExpr(ctx, n.Right, prefix, out, seen)
	case *hir.UnaryExpr:
		collectFunctionsInExpr(ctx, n.Operand, prefix, out, seen)
	case *hir.RefExpr:
		collectFunctionsInExpr(ctx, n.Operand, prefix, out, seen)
	case *hir.DerefExpr:
		collectFunctionsInExpr(ctx, n.Operand, prefix, out, seen)
	case *hir.AssignExpr:
		collectFunctionsInExpr(ctx, n.Target, prefix, out, seen)
		collectFunctionsInExpr(ctx, n.Value, prefix, out, seen)
	case *hir.CallExpr:
		collectFunctionsInExpr(ctx, n.Callee, prefix, out, seen)
		for _, arg := range n.Args {
			collectFunctionsInExpr(ctx, arg, prefix, out, seen)
		}
	case *hir.MethodCallExpr:
		collectFunctionsInExpr(ctx, n.Receiver, prefix, out, seen)
		for _, arg := range n.Args {
			collectFunctionsInExpr(ctx, arg, prefix, out, seen)
		}
	case *hir.FieldExpr:
		collectFunctionsInExpr(ctx, n.Receiver, prefix, out, seen)
	case *hir.IndexExpr:
		collectFunctionsInExpr(ctx, n.Receiver, prefix, out, seen)
		collectFunctionsInExpr(ctx, n.Index, prefix, out, seen)
	case *hir.CastExpr:
		collectFunctionsInExpr(ctx, n.Value, prefix, out, seen)
	case *hir.ArrayLitExpr:
		for _, el := range n.Elements {
			collectFunctionsInExpr(ctx, el, prefix, out, seen)
		}
	case *hir.ArrayRepeatExpr:
		collectFunctionsInExpr(ctx, n.Value, prefix, out, seen)
	case *hir.StructLitExpr:
		for _, f := range n.Fields {
			collectFunctionsInExpr(ctx, f.Value, prefix, out, seen)
		}
	case *hir.BreakExpr:
		collectFunctionsInExpr(ctx, n.Value, prefix, out, seen)
	case *hir.ReturnExpr:
		collectFunctionsInExpr(ctx, n.Value, prefix, out, seen)
	}
}

func sortedBuiltinNames(ctx *types.Context) []string {
	names := ctx.BuiltinNames()
	sort.Strings(names)
	return names
}

func convertBuiltinSignature(sig *types.BuiltinSignature) Signature {
	out := Signature{Return: builtinReturnDesc(sig)}
	if out.Return.Kind == ReturnIndirectSRet {
		out.AbiParams = append(out.AbiParams, AbiParam{Type: sig.Return, Mode: types.Ref})
	}
	if sig.Receiver != nil {
		out.AbiParams = append(out.AbiParams, AbiParam{Type: sig.Receiver.Type, Mode: sig.Receiver.Mode})
	}
	for _, p := range sig.Params {
		out.Params = append(out.Params, p.Type)
		out.AbiParams = append(out.AbiParams, AbiParam{Type: p.Type, Mode: p.Mode})
	}
	return out
}

func builtinReturnDesc(sig *types.BuiltinSignature) ReturnDesc {
	if sig.Diverges {
		return ReturnDesc{Kind: ReturnNever}
	}
	return ReturnDesc{Kind: ReturnDirect, Type: sig.Return}
}

// lowering holds the whole-module state shared across every function
// being lowered: the type context and the FunctionId assignment.
type lowering struct {
	ctx     *types.Context
	funcIDs map[*hir.FunctionDecl]FunctionId
	allFns  []*MirFunction
}

func (l *lowering) declareFunction(fn *hir.FunctionDecl) *MirFunction {
	var selfType types.TypeId = types.Invalid
	if fn.Self != nil {
		selfType = fn.Self.Type.ID
	}
	var paramTypes []types.TypeId
	for _, p := range fn.Params {
		paramTypes = append(paramTypes, p.Type.ID)
	}
	sig := buildSignature(l.ctx, selfType, paramTypes, fn.RetType.ID)
	return &MirFunction{ID: l.funcIDs[fn], Name: fn.MangledName, Signature: sig}
}

// funcLowerer is the per-function lowering driver: it owns the
// in-progress MirFunction, the current insertion block/reachability
// state, the HIR-local -> MIR-local map, and the loop-context stack.
type funcLowerer struct {
	*lowering
	fn  *hir.FunctionDecl
	mf  *MirFunction
	cur BasicBlockId
	// live is false once the current position is unreachable (the block
	// just terminated with a diverging edge); no further statements are
	// appended until a new block is entered.
	live bool

	locals map[*hir.Local]LocalId
	loops  []*loopFrame

	sretPlace *Place
}

type loopFrame struct {
	key         hir.LoopKey
	headerBlock BasicBlockId
	exitBlock   BasicBlockId
	// collector is where `break <value>` writes its value (spec.md §4.9:
	// "a collector for break values"). Nil for a `while` (never produces
	// a value) and for a `loop` with no break carrying a value.
	collector *Place
}

func (l *lowering) lowerFunctionBody(fn *hir.FunctionDecl, mf *MirFunction) {
	fl := &funcLowerer{lowering: l, fn: fn, mf: mf, locals: map[*hir.Local]LocalId{}}

	for _, p := range fn.Params {
		id := mf.NewLocal(LocalInfo{Name: p.Name, Type: p.Type.ID, Mutable: p.Mutable, IsParam: true})
		fl.locals[p] = id
	}
	if fn.Self != nil {
		id := mf.NewLocal(LocalInfo{Name: "self", Type: fn.Self.Type.ID, Mutable: fn.Self.Mutable, IsParam: true})
		fl.locals[fn.Self] = id
	}

	if mf.Signature.Return.Kind == ReturnIndirectSRet {
		sretLocal := mf.NewLocal(LocalInfo{Type: mf.Signature.Return.Type, Mutable: true, IsSRet: true})
		place := Place{Base: sretLocal, Type: mf.Signature.Return.Type}
		fl.sretPlace = &place

		// NRVO (spec.md §4.9): the first non-parameter local whose type
		// equals the sret return type is speculatively aliased to the
		// sret slot, so `return thatLocal` needs no copy at all — its
		// storage already *is* the return slot.
		if nrvo := firstNRVOCandidate(fn, mf.Signature.Return.Type); nrvo != nil {
			fl.locals[nrvo] = sretLocal
		}
	}

	mf.StartBlock = mf.NewBlock()
	fl.cur = mf.StartBlock
	fl.live = true

	// An sret function's tail value is written straight into the return
	// slot; fl.sretPlace is nil for every other return kind.
	result := fl.lowerBlock(fn.Body, fl.sretPlace)
	if fl.live {
		fl.finishImplicitReturn(result)
	}
}

// firstNRVOCandidate scans fn.Locals in declaration order for the first
// non-parameter, non-self local whose type matches the aggregate return
// type (spec.md §4.9).
func firstNRVOCandidate(fn *hir.FunctionDecl, retType types.TypeId) *hir.Local {
	isParam := map[*hir.Local]bool{}
	for _, p := range fn.Params {
		isParam[p] = true
	}
	for _, loc := range fn.Locals {
		if loc.IsSelf || isParam[loc] {
			continue
		}
		if loc.Type.ID == retType {
			return loc
		}
	}
	return nil
}

// finishImplicitReturn handles falling off the end of a function body
// whose control flow reached here normally (MissingReturn was already
// rejected by pass 6 unless the return type is unit).
func (fl *funcLowerer) finishImplicitReturn(result lowerResult) {
	switch fl.mf.Signature.Return.Kind {
	case ReturnVoid:
		fl.term(Terminator{Kind: TermReturn})
	case ReturnDirect:
		op := fl.toOperand(result, fl.mf.Signature.Return.Type)
		fl.term(Terminator{Kind: TermReturn, ReturnOp: &op})
	case ReturnIndirectSRet:
		// The tail expression was already lowered with fl.sretPlace as its
		// dest (lowerFunctionBody passes it to the body block), so the
		// value is already in place.
		fl.term(Terminator{Kind: TermReturn})
	case ReturnNever:
		fl.term(Terminator{Kind: TermUnreachable})
	}
}

func (fl *funcLowerer) block(id BasicBlockId) *BasicBlock { return fl.mf.Block(id) }

func (fl *funcLowerer) push(s Statement) {
	if !fl.live {
		return
	}
	fl.block(fl.cur).Push(s)
}

func (fl *funcLowerer) term(t Terminator) {
	if !fl.live {
		return
	}
	fl.block(fl.cur).Terminate(t)
	fl.live = false
}

func (fl *funcLowerer) newBlock() BasicBlockId { return fl.mf.NewBlock() }

func (fl *funcLowerer) enter(id BasicBlockId) {
	fl.cur = id
	fl.live = true
}

// lowerResult is the outcome of lowering one expression (spec.md §4.9's
// DPS result: "Operand | Place | Written").
type lrKind int

const (
	lrOperand lrKind = iota
	lrPlace
	lrWritten
)

type lowerResult struct {
	kind    lrKind
	operand Operand
	place   Place
}

func operandResult(op Operand) lowerResult { return lowerResult{kind: lrOperand, operand: op} }
func placeResult(p Place) lowerResult      { return lowerResult{kind: lrPlace, place: p} }
func writtenResult() lowerResult           { return lowerResult{kind: lrWritten} }

func (fl *funcLowerer) unitOperand() Operand {
	return ConstOperand(Constant{Kind: ConstUnit, Type: fl.ctx.Unit()})
}

// toOperand reads lr as a scalar Operand, loading through a Place if
// necessary. Only ever called on a result obtained by lowering with
// dest == nil, so lrWritten (which only arises when a dest was given)
// can never legitimately reach here.
func (fl *funcLowerer) toOperand(lr lowerResult, ty types.TypeId) Operand {
	switch lr.kind {
	case lrOperand:
		return lr.operand
	case lrPlace:
		if isAggregate(fl.ctx, ty) {
			panic("mir: attempted to read an aggregate place as a scalar operand")
		}
		t := fl.mf.NewTemp(ty)
		fl.push(Statement{Kind: StmtLoad, LoadTemp: t, LoadPlace: lr.place})
		return TempOperand(t, ty)
	default:
		panic("mir: toOperand called on a dest-written result")
	}
}

// refOperand produces a pointer-scalar Operand addressing p (spec.md
// §4.9's "RValue::Ref"), used both for explicit `&e` and for any ABI
// boundary that passes an aggregate by address.
func (fl *funcLowerer) refOperand(p Place, mut bool) Operand {
	refType := fl.ctx.Reference(p.Type, mut)
	t := fl.mf.NewTemp(refType)
	fl.push(Statement{Kind: StmtDefine, DefineTemp: t, RValue: RValue{Kind: RValRef, RefPlace: p, RefMut: mut, Type: refType}})
	return TempOperand(t, refType)
}

func exprInfo(e hir.Expr) *hir.ExprInfo {
	switch n := e.(type) {
	case *hir.LiteralExpr:
		return n.Info
	case *hir.PathExpr:
		return n.Info
	case *hir.FieldExpr:
		return n.Info
	case *hir.IndexExpr:
		return n.Info
	case *hir.StructLitExpr:
		return n.Info
	case *hir.ArrayLitExpr:
		return n.Info
	case *hir.ArrayRepeatExpr:
		return n.Info
	case *hir.CastExpr:
		return n.Info
	case *hir.BinaryExpr:
		return n.Info
	case *hir.UnaryExpr:
		return n.Info
	case *hir.RefExpr:
		return n.Info
	case *hir.DerefExpr:
		return n.Info
	case *hir.AssignExpr:
		return n.Info
	case *hir.BlockExpr:
		return n.Info
	case *hir.IfExpr:
		return n.Info
	case *hir.LoopExpr:
		return n.Info
	case *hir.WhileExpr:
		return n.Info
	case *hir.CallExpr:
		return n.Info
	case *hir.MethodCallExpr:
		return n.Info
	case *hir.BreakExpr:
		return n.Info
	case *hir.ContinueExpr:
		return n.Info
	case *hir.ReturnExpr:
		return n.Info
	default:
		panic(fmt.Sprintf("mir: unknown expr node %T", e))
	}
}

func exprType(e hir.Expr) types.TypeId { return exprInfo(e).Type }

// lowerBlock lowers a HIR block's statements, then its tail expression
// (if any) against dest. A block with no tail is always unit-typed.
func (fl *funcLowerer) lowerBlock(blk *hir.Block, dest *Place) lowerResult {
	for _, st := range blk.Stmts {
		if !fl.live {
			break
		}
		switch s := st.(type) {
		case *hir.LetStmt:
			fl.lowerLet(s)
		case *hir.ExprStmt:
			fl.lowerExpr(s.Expr, nil)
		case *hir.ItemStmt:
			// Nested item declarations (fn/struct/...) are hoisted and
			// collected independently by Lower's top-level walk; nothing
			// to emit at the use site.
		}
	}
	if !fl.live {
		return operandResult(Operand{Type: types.Invalid})
	}
	if blk.Tail != nil {
		return fl.lowerExpr(blk.Tail, dest)
	}
	return fl.writeScalar(fl.unitOperand(), dest)
}

func (fl *funcLowerer) lowerLet(s *hir.LetStmt) {
	id := fl.localFor(s.Local)
	if s.Value == nil {
		return
	}
	place := Place{Base: id, Type: s.Local.Type.ID}
	fl.lowerExpr(s.Value, &place)
}

func (fl *funcLowerer) localFor(local *hir.Local) LocalId {
	if id, ok := fl.locals[local]; ok {
		return id
	}
	id := fl.mf.NewLocal(LocalInfo{Name: local.Name, Type: local.Type.ID, Mutable: local.Mutable})
	fl.locals[local] = id
	return id
}

// lowerExpr is the central DPS dispatch (spec.md §4.9).
func (fl *funcLowerer) lowerExpr(e hir.Expr, dest *Place) lowerResult {
	if !fl.live {
		return operandResult(Operand{Type: types.Invalid})
	}
	switch n := e.(type) {
	case *hir.LiteralExpr:
		return fl.writeScalar(fl.lowerLiteral(n), dest)
	case *hir.PathExpr:
		return fl.lowerPathExpr(n, dest)
	case *hir.FieldExpr, *hir.IndexExpr, *hir.DerefExpr:
		p := fl.lowerPlace(e)
		if dest != nil {
			fl.copyPlaceToDest(p, *dest)
			return writtenResult()
		}
		return placeResult(p)
	case *hir.StructLitExpr:
		return fl.lowerStructLit(n, dest)
	case *hir.ArrayLitExpr:
		return fl.lowerArrayLit(n, dest)
	case *hir.ArrayRepeatExpr:
		return fl.lowerArrayRepeat(n, dest)
	case *hir.CastExpr:
		v := fl.toOperand(fl.lowerExpr(n.Value, nil), exprType(n.Value))
		t := fl.mf.NewTemp(n.Info.Type)
		fl.push(Statement{Kind: StmtDefine, DefineTemp: t, RValue: RValue{Kind: RValCast, Operand: v, CastType: n.Info.Type, Type: n.Info.Type}})
		return fl.writeScalar(TempOperand(t, n.Info.Type), dest)
	case *hir.BinaryExpr:
		return fl.lowerBinary(n, dest)
	case *hir.UnaryExpr:
		v := fl.toOperand(fl.lowerExpr(n.Operand, nil), exprType(n.Operand))
		t := fl.mf.NewTemp(n.Info.Type)
		fl.push(Statement{Kind: StmtDefine, DefineTemp: t, RValue: RValue{Kind: RValUnary, UnOp: astUnOp(n.Op), Operand: v, Type: n.Info.Type}})
		return fl.writeScalar(TempOperand(t, n.Info.Type), dest)
	case *hir.RefExpr:
		p := fl.lowerPlace(n.Operand)
		op := fl.refOperand(p, n.Mutable)
		return fl.writeScalar(op, dest)
	case *hir.AssignExpr:
		target := fl.lowerPlace(n.Target)
		fl.lowerExpr(n.Value, &target)
		return fl.writeScalar(fl.unitOperand(), dest)
	case *hir.BlockExpr:
		return fl.lowerBlock(n.Block, dest)
	case *hir.IfExpr:
		return fl.lowerIf(n, dest)
	case *hir.LoopExpr:
		return fl.lowerLoop(n, dest)
	case *hir.WhileExpr:
		return fl.lowerWhile(n)
	case *hir.CallExpr:
		return fl.lowerCall(n, dest)
	case *hir.MethodCallExpr:
		return fl.lowerMethodCall(n, dest)
	case *hir.BreakExpr:
		fl.lowerBreak(n)
		return operandResult(Operand{Type: fl.ctx.Never()})
	case *hir.ContinueExpr:
		fl.lowerContinue(n)
		return operandResult(Operand{Type: fl.ctx.Never()})
	case *hir.ReturnExpr:
		fl.lowerReturn(n)
		return operandResult(Operand{Type: fl.ctx.Never()})
	default:
		panic(fmt.Sprintf("mir: unhandled expr node %T", e))
	}
}

// writeScalar adapts a plain scalar Operand to the caller's DPS request:
// if dest is set, assign into it and report Written; otherwise hand the
// operand back directly.
func (fl *funcLowerer) writeScalar(op Operand, dest *Place) lowerResult {
	if dest == nil {
		return operandResult(op)
	}
	fl.push(Statement{Kind: StmtAssign, AssignPlace: *dest, Args: []Operand{op}})
	return writtenResult()
}

// copyPlaceToDest materializes a scalar read from src straight into dest;
// used when a place-shaped expression (a field, an index, a deref) is
// asked to write into a caller-supplied destination instead of being
// returned as a place.
func (fl *funcLowerer) copyPlaceToDest(src Place, dest Place) {
	if isAggregate(fl.ctx, src.Type) {
		fl.push(Statement{Kind: StmtAssign, AssignPlace: dest, AssignRValue: &RValue{Kind: RValCopy, CopyFrom: src, Type: src.Type}})
		return
	}
	t := fl.mf.NewTemp(src.Type)
	fl.push(Statement{Kind: StmtLoad, LoadTemp: t, LoadPlace: src})
	fl.push(Statement{Kind: StmtAssign, AssignPlace: dest, Args: []Operand{TempOperand(t, src.Type)}})
}

func (fl *funcLowerer) lowerLiteral(n *hir.LiteralExpr) Operand {
	ty := n.Info.Type
	switch n.Kind {
	case ast.BoolLit:
		return ConstOperand(Constant{Kind: ConstBool, Bool: n.Text == "true", Type: ty})
	case ast.CharLit:
		r := rune(0)
		if rs := []rune(n.Text); len(rs) > 0 {
			r = rs[0]
		}
		return ConstOperand(Constant{Kind: ConstChar, Char: r, Type: ty})
	case ast.StringLit:
		return ConstOperand(Constant{Kind: ConstStr, Str: n.Text, Type: ty})
	case ast.UnitLit:
		return ConstOperand(Constant{Kind: ConstUnit, Type: ty})
	case ast.IntLit:
		signed := true
		if fl.ctx.Type(ty).Kind == types.KindPrimitive {
			switch fl.ctx.Type(ty).Primitive {
			case types.U32, types.Usize:
				signed = false
			}
		}
		var v int64
		if signed {
			v, _ = strconv.ParseInt(n.Text, 10, 64)
		} else {
			u, _ := strconv.ParseUint(n.Text, 10, 64)
			v = int64(u)
		}
		return ConstOperand(Constant{Kind: ConstInt, Int: v, Type: ty})
	default:
		panic(fmt.Sprintf("mir: unknown literal kind %v", n.Kind))
	}
}

func (fl *funcLowerer) lowerPathExpr(n *hir.PathExpr, dest *Place) lowerResult {
	switch n.Target.Kind {
	case hir.PathLocal:
		p := Place{Base: fl.localFor(n.Target.Local), Type: n.Target.Local.Type.ID}
		if dest != nil {
			// A local written onto itself (the NRVO local returned into
			// its own sret slot) needs no copy.
			if dest.Base != p.Base || len(dest.Projections) > 0 {
				fl.copyPlaceToDest(p, *dest)
			}
			return writtenResult()
		}
		return placeResult(p)
	case hir.PathConst:
		return fl.writeScalar(fl.constOperand(n.Target.Const), dest)
	case hir.PathEnumVariant:
		t := fl.mf.NewTemp(n.Info.Type)
		fl.push(Statement{Kind: StmtDefine, DefineTemp: t, RValue: RValue{
			Kind: RValUse,
			Use:  ConstOperand(Constant{Kind: ConstInt, Int: int64(n.Target.VariantIndex), Type: n.Info.Type}),
			Type: n.Info.Type,
		}})
		return fl.writeScalar(TempOperand(t, n.Info.Type), dest)
	case hir.PathFunction, hir.PathBuiltin:
		panic("mir: bare function-valued path reached lowering (Rx has no first-class functions)")
	default:
		panic("mir: unresolved PathExpr reached lowering")
	}
}

// constOperand evaluates a `const` item's already-checked value (pass
// 4's restricted const evaluator only accepts integer-producing
// expressions, spec.md §4.4) into a scalar Operand.
func (fl *funcLowerer) constOperand(c *hir.ConstDecl) Operand {
	return ConstOperand(Constant{Kind: ConstInt, Int: c.EvalInt, Type: c.Type.ID})
}

func astUnOp(op ast.UnOp) UnOp {
	switch op {
	case ast.Neg:
		return Neg
	case ast.Not:
		return Not
	case ast.BitNot:
		return BitNot
	default:
		panic("mir: unknown unary operator")
	}
}

func astBinOp(op ast.BinOp) BinOp {
	switch op {
	case ast.Add:
		return Add
	case ast.Sub:
		return Sub
	case ast.Mul:
		return Mul
	case ast.Div:
		return Div
	case ast.Rem:
		return Rem
	case ast.BitAnd:
		return BitAnd
	case ast.BitOr:
		return BitOr
	case ast.BitXor:
		return BitXor
	case ast.Shl:
		return Shl
	case ast.Shr:
		return Shr
	case ast.CmpEq:
		return CmpEq
	case ast.CmpNe:
		return CmpNe
	case ast.CmpLt:
		return CmpLt
	case ast.CmpLe:
		return CmpLe
	case ast.CmpGt:
		return CmpGt
	case ast.CmpGe:
		return CmpGe
	default:
		panic("mir: logical && / || must be lowered as `if`, never reach lowerBinary")
	}
}

// lowerBinary lowers arithmetic/comparison operators directly; `&&`/`||`
// short-circuit and are lowered as an `if` instead (spec.md §4.9).
func (fl *funcLowerer) lowerBinary(n *hir.BinaryExpr, dest *Place) lowerResult {
	if n.Op == ast.LogAnd || n.Op == ast.LogOr {
		return fl.lowerShortCircuit(n, dest)
	}
	l := fl.toOperand(fl.lowerExpr(n.Left, nil), exprType(n.Left))
	r := fl.toOperand(fl.lowerExpr(n.Right, nil), exprType(n.Right))
	t := fl.mf.NewTemp(n.Info.Type)
	fl.push(Statement{Kind: StmtDefine, DefineTemp: t, RValue: RValue{
		Kind: RValBinary, BinOp: astBinOp(n.Op), Left: l, Right: r, Type: n.Info.Type,
	}})
	return fl.writeScalar(TempOperand(t, n.Info.Type), dest)
}

// lowerShortCircuit lowers `a && b` as `if a { b } else { false }` and
// `a || b` as `if a { true } else { b }` (spec.md §4.9).
func (fl *funcLowerer) lowerShortCircuit(n *hir.BinaryExpr, dest *Place) lowerResult {
	boolTy := n.Info.Type
	condOp := fl.toOperand(fl.lowerExpr(n.Left, nil), exprType(n.Left))

	thenBlk, elseBlk, joinBlk := fl.newBlock(), fl.newBlock(), fl.newBlock()
	fl.term(Terminator{Kind: TermSwitchInt, Discr: condOp, Targets: []SwitchTarget{{Value: 1, Block: thenBlk}}, Otherwise: elseBlk})

	var resultPlace *Place
	if dest != nil {
		resultPlace = dest
	} else {
		loc := fl.mf.NewLocal(LocalInfo{Type: boolTy})
		p := Place{Base: loc, Type: boolTy}
		resultPlace = &p
	}

	fl.enter(thenBlk)
	if n.Op == ast.LogAnd {
		fl.lowerExpr(n.Right, resultPlace)
	} else {
		fl.writeScalar(ConstOperand(Constant{Kind: ConstBool, Bool: true, Type: boolTy}), resultPlace)
	}
	if fl.live {
		fl.term(Terminator{Kind: TermGoto, Goto: joinBlk})
	}

	fl.enter(elseBlk)
	if n.Op == ast.LogAnd {
		fl.writeScalar(ConstOperand(Constant{Kind: ConstBool, Bool: false, Type: boolTy}), resultPlace)
	} else {
		fl.lowerExpr(n.Right, resultPlace)
	}
	if fl.live {
		fl.term(Terminator{Kind: TermGoto, Goto: joinBlk})
	}

	fl.enter(joinBlk)
	if dest != nil {
		return writtenResult()
	}
	return placeResult(*resultPlace)
}

// lowerPlace resolves e to an addressable Place, auto-dereferencing
// through reference types as needed (pass 6 already validated that the
// access is well-typed; this just re-walks the same shape at the
// memory-location level).
func (fl *funcLowerer) lowerPlace(e hir.Expr) Place {
	switch n := e.(type) {
	case *hir.PathExpr:
		if n.Target.Kind == hir.PathLocal {
			return Place{Base: fl.localFor(n.Target.Local), Type: n.Target.Local.Type.ID}
		}
	case *hir.DerefExpr:
		inner := fl.derefToReference(n.Operand)
		return inner.Deref(exprType(e))
	case *hir.FieldExpr:
		recv := fl.derefChain(n.Receiver)
		return recv.Field(n.Target.Index, exprType(e))
	case *hir.IndexExpr:
		recv := fl.derefChain(n.Receiver)
		idx := fl.toOperand(fl.lowerExpr(n.Index, nil), exprType(n.Index))
		return recv.Index(idx, exprType(e))
	}
	// Not a syntactic place: evaluate it and spill into a synthetic local
	// so later projections/references still have an address to work with.
	ty := exprType(e)
	loc := fl.mf.NewLocal(LocalInfo{Type: ty})
	p := Place{Base: loc, Type: ty}
	fl.lowerExpr(e, &p)
	return p
}

// derefToReference returns the place holding a reference value (used as
// the base of an explicit `*e`), without following the reference itself.
func (fl *funcLowerer) derefToReference(e hir.Expr) Place {
	return fl.lowerPlace(e)
}

// derefChain follows zero or more reference hops to reach the place an
// aggregate (struct or array) actually lives at — the receiver of a
// field access or index may itself be a reference (spec.md §4.9's
// auto-deref, already validated by pass 6).
func (fl *funcLowerer) derefChain(e hir.Expr) Place {
	p := fl.lowerPlace(e)
	for fl.ctx.Type(p.Type).Kind == types.KindReference {
		p = p.Deref(fl.ctx.Type(p.Type).RefTarget)
	}
	return p
}

// lowerStructLit lowers a struct literal field-by-field directly into
// dest (or a freshly materialized local if dest is nil) — struct values
// are never built off to the side and copied (spec.md §4.9).
func (fl *funcLowerer) lowerStructLit(n *hir.StructLitExpr, dest *Place) lowerResult {
	target := fl.destOrFreshLocal(n.Info.Type, dest)
	info := fl.ctx.Struct(n.StructID)
	for _, f := range n.Fields {
		fieldTy := info.Fields[f.FieldIndex].Type
		fieldPlace := target.Field(f.FieldIndex, fieldTy)
		fl.lowerExpr(f.Value, &fieldPlace)
	}
	if dest != nil {
		return writtenResult()
	}
	return placeResult(target)
}

func (fl *funcLowerer) lowerArrayLit(n *hir.ArrayLitExpr, dest *Place) lowerResult {
	target := fl.destOrFreshLocal(n.Info.Type, dest)
	elemTy := fl.ctx.Type(n.Info.Type).ElemType
	for i, el := range n.Elements {
		idxOp := ConstOperand(Constant{Kind: ConstInt, Int: int64(i), Type: fl.usizeType()})
		elemPlace := target.Index(idxOp, elemTy)
		fl.lowerExpr(el, &elemPlace)
	}
	if dest != nil {
		return writtenResult()
	}
	return placeResult(target)
}

func (fl *funcLowerer) lowerArrayRepeat(n *hir.ArrayRepeatExpr, dest *Place) lowerResult {
	target := fl.destOrFreshLocal(n.Info.Type, dest)
	elemTy := fl.ctx.Type(n.Info.Type).ElemType
	if isAggregate(fl.ctx, elemTy) {
		// Each slot needs its own independent initialization (re-lowering
		// the initializer expression once per index) since an aggregate
		// can't be copied as a scalar RValue::ArrayRepeat.
		for i := uint64(0); i < n.ConstLen; i++ {
			idxOp := ConstOperand(Constant{Kind: ConstInt, Int: int64(i), Type: fl.usizeType()})
			elemPlace := target.Index(idxOp, elemTy)
			fl.lowerExpr(n.Value, &elemPlace)
		}
	} else {
		v := fl.toOperand(fl.lowerExpr(n.Value, nil), elemTy)
		fl.push(Statement{Kind: StmtAssign, AssignPlace: target, AssignRValue: &RValue{
			Kind: RValArrayRepeat, RepeatVal: v, RepeatLen: n.ConstLen, Type: n.Info.Type,
		}})
	}
	if dest != nil {
		return writtenResult()
	}
	return placeResult(target)
}

func (fl *funcLowerer) usizeType() types.TypeId {
	id, _ := fl.ctx.Primitive("usize")
	return id
}

func (fl *funcLowerer) destOrFreshLocal(ty types.TypeId, dest *Place) Place {
	if dest != nil {
		return *dest
	}
	loc := fl.mf.NewLocal(LocalInfo{Type: ty})
	return Place{Base: loc, Type: ty}
}

// lowerIf lowers `if cond { then } [else else]` to a SwitchInt over two
// blocks joined at a third (spec.md §4.9). When a value is needed and no
// dest was supplied, the two arms' results are merged with a Phi at the
// join block — the one case this lowerer builds a real multi-incoming
// Phi for; loop break-values instead use an assign-based collector place
// (simpler, and still valid since only Temps are subject to SSA).
func (fl *funcLowerer) lowerIf(n *hir.IfExpr, dest *Place) lowerResult {
	resultTy := n.Info.Type
	condOp := fl.toOperand(fl.lowerExpr(n.Cond, nil), exprType(n.Cond))

	thenBlk := fl.newBlock()
	var elseBlk BasicBlockId
	hasElse := n.Else != nil
	joinBlk := fl.newBlock()
	if hasElse {
		elseBlk = fl.newBlock()
	} else {
		elseBlk = joinBlk
	}
	fl.term(Terminator{Kind: TermSwitchInt, Discr: condOp, Targets: []SwitchTarget{{Value: 1, Block: thenBlk}}, Otherwise: elseBlk})

	needsValue := dest == nil && resultTy != fl.ctx.Unit() && resultTy != fl.ctx.Never()

	fl.enter(thenBlk)
	var thenTemp TempId
	var thenLive bool
	if needsValue {
		r := fl.lowerBlock(n.Then, nil)
		thenLive = fl.live
		if thenLive {
			// Materialized here, while thenEnd is still the live insertion
			// block: once thenEnd is terminated below, it can never again
			// be pushed to, and a Phi's incoming Temp must be defined in
			// its source block.
			thenTemp = fl.materializeToTemp(fl.toOperand(r, resultTy))
		}
	} else {
		fl.lowerBlock(n.Then, dest)
		thenLive = fl.live
	}
	thenEnd := fl.cur
	if thenLive {
		fl.term(Terminator{Kind: TermGoto, Goto: joinBlk})
	}

	var elseTemp TempId
	var elseLive bool
	elseEnd := elseBlk
	if hasElse {
		fl.enter(elseBlk)
		if needsValue {
			r := fl.lowerExpr(n.Else, nil)
			elseLive = fl.live
			if elseLive {
				elseTemp = fl.materializeToTemp(fl.toOperand(r, resultTy))
			}
		} else {
			fl.lowerExpr(n.Else, dest)
			elseLive = fl.live
		}
		elseEnd = fl.cur
		if elseLive {
			fl.term(Terminator{Kind: TermGoto, Goto: joinBlk})
		}
	} else {
		elseLive = true // falling straight through the false edge to join
	}

	fl.enter(joinBlk)
	fl.live = thenLive || elseLive
	if !fl.live {
		fl.block(joinBlk).Terminate(Terminator{Kind: TermUnreachable})
		return operandResult(Operand{Type: fl.ctx.Never()})
	}
	if dest != nil {
		return writtenResult()
	}
	if !needsValue {
		return operandResult(fl.unitOperand())
	}

	var incoming []PhiIncoming
	if thenLive {
		incoming = append(incoming, PhiIncoming{Block: thenEnd, Temp: thenTemp})
	}
	if elseLive && hasElse {
		incoming = append(incoming, PhiIncoming{Block: elseEnd, Temp: elseTemp})
	}
	if len(incoming) == 1 {
		return operandResult(TempOperand(incoming[0].Temp, resultTy))
	}
	dst := fl.mf.NewTemp(resultTy)
	fl.block(joinBlk).Phis = append(fl.block(joinBlk).Phis, PhiNode{Dest: dst, Type: resultTy, Incoming: incoming})
	return operandResult(TempOperand(dst, resultTy))
}

// materializeToTemp ensures op is backed by a Temp (Phi incoming edges
// name a Temp, not an arbitrary Operand), defining one if op is a
// Constant.
func (fl *funcLowerer) materializeToTemp(op Operand) TempId {
	if op.Kind == OperandTemp {
		return op.Temp
	}
	t := fl.mf.NewTemp(op.Type)
	fl.push(Statement{Kind: StmtDefine, DefineTemp: t, RValue: RValue{Kind: RValUse, Use: op, Type: op.Type}})
	return t
}

// lowerWhile lowers `while cond { body }` (always unit-typed, no break
// value): header tests the condition, body always jumps back to header,
// exit is reached by the condition going false or by a `break`.
func (fl *funcLowerer) lowerWhile(n *hir.WhileExpr) lowerResult {
	headerBlk, bodyBlk, exitBlk := fl.newBlock(), fl.newBlock(), fl.newBlock()
	fl.term(Terminator{Kind: TermGoto, Goto: headerBlk})

	fl.enter(headerBlk)
	condOp := fl.toOperand(fl.lowerExpr(n.Cond, nil), exprType(n.Cond))
	fl.term(Terminator{Kind: TermSwitchInt, Discr: condOp, Targets: []SwitchTarget{{Value: 1, Block: bodyBlk}}, Otherwise: exitBlk})

	fl.loops = append(fl.loops, &loopFrame{key: n, headerBlock: headerBlk, exitBlock: exitBlk})
	fl.enter(bodyBlk)
	fl.lowerBlock(n.Body, nil)
	if fl.live {
		fl.term(Terminator{Kind: TermGoto, Goto: headerBlk})
	}
	fl.loops = fl.loops[:len(fl.loops)-1]

	fl.enter(exitBlk)
	return operandResult(fl.unitOperand())
}

// lowerLoop lowers `loop { body }` (spec.md §4.9). Its break-value
// collector is the caller's dest when one was supplied, otherwise a
// fresh local — either way `break v` writes straight into it, so no
// copy or Phi is needed once the exit block is reached.
func (fl *funcLowerer) lowerLoop(n *hir.LoopExpr, dest *Place) lowerResult {
	bodyBlk, exitBlk := fl.newBlock(), fl.newBlock()
	fl.term(Terminator{Kind: TermGoto, Goto: bodyBlk})

	var collector *Place
	if n.HasBreak && n.BreakType != fl.ctx.Unit() {
		if dest != nil {
			collector = dest
		} else {
			p := fl.destOrFreshLocal(n.BreakType, nil)
			collector = &p
		}
	}

	fl.loops = append(fl.loops, &loopFrame{key: n, headerBlock: bodyBlk, exitBlock: exitBlk, collector: collector})
	fl.enter(bodyBlk)
	fl.lowerBlock(n.Body, nil)
	if fl.live {
		fl.term(Terminator{Kind: TermGoto, Goto: bodyBlk})
	}
	fl.loops = fl.loops[:len(fl.loops)-1]

	if !n.HasBreak {
		fl.block(exitBlk).Terminate(Terminator{Kind: TermUnreachable})
		fl.cur = exitBlk
		fl.live = false
		return operandResult(Operand{Type: fl.ctx.Never()})
	}

	fl.enter(exitBlk)
	if collector == nil {
		if dest != nil {
			return writtenResult()
		}
		return operandResult(fl.unitOperand())
	}
	if dest != nil {
		return writtenResult()
	}
	return placeResult(*collector)
}

func (fl *funcLowerer) findLoop(key hir.LoopKey) *loopFrame {
	for i := len(fl.loops) - 1; i >= 0; i-- {
		if fl.loops[i].key == key {
			return fl.loops[i]
		}
	}
	panic("mir: break/continue with no enclosing loop (pass 7 should have rejected this)")
}

func (fl *funcLowerer) lowerBreak(n *hir.BreakExpr) {
	frame := fl.findLoop(n.Loop)
	if n.Value != nil && frame.collector != nil {
		fl.lowerExpr(n.Value, frame.collector)
	} else if n.Value != nil {
		fl.lowerExpr(n.Value, nil)
	}
	fl.term(Terminator{Kind: TermGoto, Goto: frame.exitBlock})
}

func (fl *funcLowerer) lowerContinue(n *hir.ContinueExpr) {
	frame := fl.findLoop(n.Loop)
	fl.term(Terminator{Kind: TermGoto, Goto: frame.headerBlock})
}

func (fl *funcLowerer) lowerReturn(n *hir.ReturnExpr) {
	switch fl.mf.Signature.Return.Kind {
	case ReturnVoid:
		fl.term(Terminator{Kind: TermReturn})
	case ReturnDirect:
		var op Operand
		if n.Value != nil {
			op = fl.toOperand(fl.lowerExpr(n.Value, nil), fl.mf.Signature.Return.Type)
		} else {
			op = fl.unitOperand()
		}
		fl.term(Terminator{Kind: TermReturn, ReturnOp: &op})
	case ReturnIndirectSRet:
		if n.Value != nil {
			fl.lowerExpr(n.Value, fl.sretPlace)
		}
		fl.term(Terminator{Kind: TermReturn})
	case ReturnNever:
		fl.term(Terminator{Kind: TermUnreachable})
	}
}

// lowerCall lowers a plain `callee(args...)` call (spec.md §4.9): the
// callee was already resolved to a concrete function or builtin by pass
// 2/6, so this is purely ABI plumbing.
func (fl *funcLowerer) lowerCall(n *hir.CallExpr, dest *Place) lowerResult {
	switch n.Target.Kind {
	case hir.CallFunction:
		return fl.lowerCallTo(fl.funcIDs[n.Target.Function], nil, n.Args, n.Info.Type, dest)
	case hir.CallBuiltin:
		return fl.lowerBuiltinCall(n.Target.Builtin, nil, n.Args, n.Info.Type, dest)
	default:
		panic("mir: unresolved CallExpr reached lowering")
	}
}

func (fl *funcLowerer) lowerMethodCall(n *hir.MethodCallExpr, dest *Place) lowerResult {
	switch n.Target.Kind {
	case hir.CallMethod:
		return fl.lowerCallTo(fl.funcIDs[n.Target.Method], n.Receiver, n.Args, n.Info.Type, dest)
	case hir.CallBuiltin:
		return fl.lowerBuiltinCall(n.Target.Builtin, n.Receiver, n.Args, n.Info.Type, dest)
	default:
		panic("mir: unresolved MethodCallExpr reached lowering")
	}
}

// lowerCallTo lowers a call to a user-defined function/method whose
// FunctionId (and therefore ABI signature) is already known.
func (fl *funcLowerer) lowerCallTo(target FunctionId, receiver hir.Expr, args []hir.Expr, retType types.TypeId, dest *Place) lowerResult {
	sig := fl.calleeSignature(target)
	return fl.emitCall(CallTarget{Kind: CallFunction, Function: target}, sig, receiver, args, retType, dest)
}

// calleeSignature looks up an already-declared function's Signature; all
// functions are declared (Lower's first pass over collectFunctions)
// before any body is lowered, so forward/recursive/mutually-recursive
// calls all resolve.
func (fl *funcLowerer) calleeSignature(id FunctionId) Signature {
	return fl.lowering.allFns[int(id)].Signature
}

func (fl *funcLowerer) lowerBuiltinCall(name string, receiver hir.Expr, args []hir.Expr, retType types.TypeId, dest *Place) lowerResult {
	sig, ok := fl.ctx.Builtin(name)
	if !ok {
		panic(fmt.Sprintf("mir: unknown builtin %q reached lowering", name))
	}
	mirSig := convertBuiltinSignature(sig)
	return fl.emitCall(CallTarget{Kind: CallBuiltin, Builtin: name}, mirSig, receiver, args, retType, dest)
}

// emitCall lowers receiver + args per sig's AbiParam modes, then emits
// the Call statement with a dest appropriate to the return kind.
func (fl *funcLowerer) emitCall(target CallTarget, sig Signature, receiver hir.Expr, args []hir.Expr, retType types.TypeId, dest *Place) lowerResult {
	var operands []Operand
	paramIdx := 0
	if sig.Return.Kind == ReturnIndirectSRet {
		// AbiParams[0] is the callee's sret pointer slot (buildSignature);
		// it's conveyed via DestPlace below, never as a call argument.
		paramIdx = 1
	}
	if receiver != nil {
		operands = append(operands, fl.lowerArg(receiver, sig.AbiParams[paramIdx]))
		paramIdx++
	}
	for _, a := range args {
		operands = append(operands, fl.lowerArg(a, sig.AbiParams[paramIdx]))
		paramIdx++
	}

	stmt := Statement{Kind: StmtCall, CallTarget: target, Args: operands}
	switch sig.Return.Kind {
	case ReturnVoid, ReturnNever:
		fl.push(stmt)
		if sig.Return.Kind == ReturnNever {
			fl.live = false
		}
		if dest != nil {
			return writtenResult()
		}
		return operandResult(fl.unitOperand())
	case ReturnIndirectSRet:
		destPlace := fl.destOrFreshLocal(retType, dest)
		stmt.DestPlace = &destPlace
		fl.push(stmt)
		if dest != nil {
			return writtenResult()
		}
		return placeResult(destPlace)
	default: // ReturnDirect
		t := fl.mf.NewTemp(retType)
		stmt.DestTemp = &t
		fl.push(stmt)
		return fl.writeScalar(TempOperand(t, retType), dest)
	}
}

// lowerArg lowers one call argument per its AbiParam mode (spec.md
// §4.9's ABI plan): a `Ref` argument whose own HIR type already is that
// reference type (the caller wrote an explicit `&`/`&mut`, or is passing
// along a variable that's already a reference) just needs its value read
// as a scalar operand; a `Ref` argument whose HIR type is still the bare
// referent (pass 6's auto-ref for a `&self`/`&mut self` method receiver
// never rewrites the HIR into an explicit Ref node — it only records
// MethodCallExpr.InsertedRef/AutoRefMut, spec.md §4.6) needs its address
// taken here instead, the same way an explicit `&e` would lower.
// ByValCallerCopy needs the caller to own an independent copy, so the
// argument is materialized into a fresh local first and its address
// passed instead.
func (fl *funcLowerer) lowerArg(arg hir.Expr, abi AbiParam) Operand {
	if abi.Mode == types.ByValCallerCopy {
		loc := fl.mf.NewLocal(LocalInfo{Type: abi.Type})
		p := Place{Base: loc, Type: abi.Type}
		fl.lowerExpr(arg, &p)
		return fl.refOperand(p, false)
	}
	if abi.Mode == types.Ref && exprType(arg) != abi.Type {
		mut := false
		if rt := fl.ctx.Type(abi.Type); rt.Kind == types.KindReference {
			mut = rt.RefMut
		}
		return fl.refOperand(fl.lowerPlace(arg), mut)
	}
	return fl.toOperand(fl.lowerExpr(arg, nil), abi.Type)
}
