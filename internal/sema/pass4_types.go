package sema

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// FinalizeTypes is pass 4 (spec.md §4.4): visit every remaining
// TypeAnnotation and constant-valued expression in the program and drive
// them through the Resolver so nothing is left Unresolved going into
// pass 5. Most of the actual resolution logic already lives in Resolver;
// this pass is the exhaustive visitor that guarantees every annotation
// site is reached at least once.
func FinalizeTypes(a *Analysis, rootScope *hir.Scope, prog *hir.Program) *diag.Bag {
	bag := diag.NewBag()
	t := &typeFinalizer{a: a, bag: bag}
	for _, item := range prog.Items {
		t.item(rootScope, item)
	}
	return bag
}

type typeFinalizer struct {
	a   *Analysis
	bag *diag.Bag
}

func (t *typeFinalizer) item(scope *hir.Scope, item hir.Item) {
	switch n := item.(type) {
	case *hir.FunctionDecl:
		t.function(scope, types.Invalid, n)
	case *hir.ConstDecl:
		rc := ResolveCtx{Scope: scope, SelfType: types.Invalid}
		t.a.Resolver.ResolveType(rc, &n.Type)
		t.a.Resolver.EvalConst(rc, n.Value)
	case *hir.ImplDecl:
		forType := t.a.Resolver.ResolveType(ResolveCtx{Scope: scope, SelfType: types.Invalid}, &n.ForType)
		for _, it := range n.Items {
			t.itemInImpl(n.Scope, forType, it)
		}
	case *hir.TraitDecl:
		for _, it := range n.Items {
			t.itemInImpl(n.Scope, types.Invalid, it)
		}
	}
}

func (t *typeFinalizer) itemInImpl(scope *hir.Scope, selfType types.TypeId, item hir.Item) {
	switch n := item.(type) {
	case *hir.FunctionDecl:
		t.function(scope, selfType, n)
	case *hir.ConstDecl:
		rc := ResolveCtx{Scope: scope, SelfType: selfType}
		t.a.Resolver.ResolveType(rc, &n.Type)
		t.a.Resolver.EvalConst(rc, n.Value)
	}
}

func (t *typeFinalizer) function(scope *hir.Scope, selfType types.TypeId, fn *hir.FunctionDecl) {
	rc := ResolveCtx{Scope: scope, SelfType: selfType}
	if fn.Self != nil {
		// A `self` receiver carries no TypeNode of its own in the grammar
		// (the self-parameter Kind implies it): derive &Self/&mut Self/Self
		// directly from the owning impl's resolved Self type instead of
		// going through Resolver.
		switch fn.SelfKind {
		case ast.SelfByValue:
			fn.Self.Type = hir.ResolvedType(selfType)
		case ast.SelfByRef:
			fn.Self.Type = hir.ResolvedType(t.a.Ctx.Reference(selfType, false))
		case ast.SelfByRefMut:
			fn.Self.Type = hir.ResolvedType(t.a.Ctx.Reference(selfType, true))
		}
	}
	for _, p := range fn.Params {
		t.a.Resolver.ResolveType(rc, &p.Type)
	}
	t.a.Resolver.ResolveType(rc, &fn.RetType)
	if fn.Body != nil {
		bodyRC := ResolveCtx{Scope: fn.Scope, SelfType: selfType}
		t.block(bodyRC, fn.Body)
	}
}

func (t *typeFinalizer) block(rc ResolveCtx, blk *hir.Block) {
	blockRC := ResolveCtx{Scope: blk.Scope, SelfType: rc.SelfType}
	for _, st := range blk.Stmts {
		switch s := st.(type) {
		case *hir.LetStmt:
			// A `let` with no explicit `: Type` has a nil Syntax *and* stays
			// Invalid here (not defaulted to unit, unlike a function's
			// implicit return type): pass 6 infers it from the initializer.
			if s.Local.Type.Syntax != nil {
				t.a.Resolver.ResolveType(blockRC, &s.Local.Type)
			}
			t.expr(blockRC, s.Value)
		case *hir.ExprStmt:
			t.expr(blockRC, s.Expr)
		case *hir.ItemStmt:
			t.item(blk.Scope, s.Item)
		}
	}
	t.expr(blockRC, blk.Tail)
}

func (t *typeFinalizer) expr(rc ResolveCtx, e hir.Expr) {
	switch n := e.(type) {
	case nil:
		return
	case *hir.CastExpr:
		t.expr(rc, n.Value)
		t.a.Resolver.ResolveType(rc, &n.Type)
	case *hir.ArrayRepeatExpr:
		t.expr(rc, n.Value)
		if length, ok := t.a.Resolver.EvalConstUsize(rc, n.Count); ok {
			n.ConstLen = length
		}
	case *hir.ArrayLitExpr:
		for _, el := range n.Elements {
			t.expr(rc, el)
		}
	case *hir.StructLitExpr:
		for _, f := range n.Fields {
			t.expr(rc, f.Value)
		}
	case *hir.FieldExpr:
		t.expr(rc, n.Receiver)
	case *hir.IndexExpr:
		t.expr(rc, n.Receiver)
		t.expr(rc, n.Index)
	case *hir.BinaryExpr:
		t.expr(rc, n.Left)
		t.expr(rc, n.Right)
	case *hir.UnaryExpr:
		t.expr(rc, n.Operand)
	case *hir.RefExpr:
		t.expr(rc, n.Operand)
	case *hir.DerefExpr:
		t.expr(rc, n.Operand)
	case *hir.AssignExpr:
		t.expr(rc, n.Target)
		t.expr(rc, n.Value)
	case *hir.BlockExpr:
		t.block(rc, n.Block)
	case *hir.IfExpr:
		t.expr(rc, n.Cond)
		t.block(rc, n.Then)
		t.expr(rc, n.Else)
	case *hir.LoopExpr:
		t.block(rc, n.Body)
	case *hir.WhileExpr:
		t.expr(rc, n.Cond)
		t.block(rc, n.Body)
	case *hir.CallExpr:
		t.expr(rc, n.Callee)
		for _, arg := range n.Args {
			t.expr(rc, arg)
		}
	case *hir.MethodCallExpr:
		t.expr(rc, n.Receiver)
		for _, arg := range n.Args {
			t.expr(rc, arg)
		}
	case *hir.BreakExpr:
		t.expr(rc, n.Value)
	case *hir.ReturnExpr:
		t.expr(rc, n.Value)
	}
}
