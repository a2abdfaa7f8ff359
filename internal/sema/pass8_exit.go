package sema

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
)

// CheckExit is pass 8 (spec.md §4.8): a call to the `exit` builtin is
// only permitted as the final statement of `main`'s body (syntactically:
// the block's tail expression, or its last statement if there is no
// tail). Anywhere else, a diverging call is semantically fine (pass 6
// already typed it as Never) but is specifically disallowed for `exit`
// by this rule.
func CheckExit(prog *hir.Program) *diag.Bag {
	bag := diag.NewBag()
	for _, item := range prog.Items {
		walkExitItem(bag, item)
	}
	return bag
}

func walkExitItem(bag *diag.Bag, item hir.Item) {
	switch n := item.(type) {
	case *hir.FunctionDecl:
		if n.Body == nil {
			return
		}
		walkExitBlock(bag, n.Body, n.Name == "main")
	case *hir.ImplDecl:
		for _, it := range n.Items {
			walkExitItem(bag, it)
		}
	case *hir.TraitDecl:
		for _, it := range n.Items {
			walkExitItem(bag, it)
		}
	}
}

// walkExitBlock forbids `exit()` everywhere except, when allowExitHere is
// true, the one terminal position of this block (its tail expression, or
// its last statement's expression if the block has no tail).
func walkExitBlock(bag *diag.Bag, blk *hir.Block, allowExitHere bool) {
	n := len(blk.Stmts)
	for i, st := range blk.Stmts {
		isLast := i == n-1 && blk.Tail == nil
		switch s := st.(type) {
		case *hir.LetStmt:
			walkExitExpr(bag, s.Value, false)
		case *hir.ExprStmt:
			walkExitExpr(bag, s.Expr, allowExitHere && isLast)
		case *hir.ItemStmt:
			walkExitItem(bag, s.Item)
		}
	}
	if blk.Tail != nil {
		walkExitExpr(bag, blk.Tail, allowExitHere)
	}
}

func walkExitExpr(bag *diag.Bag, e hir.Expr, allowExitHere bool) {
	switch n := e.(type) {
	case nil:
		return
	case *hir.CallExpr:
		if n.Target.Kind == hir.CallBuiltin && n.Target.Builtin == "exit" && !allowExitHere {
			bag.Add(diag.InvalidControlFlow, n.Span(), "`exit` may only be called as the final statement of `main`")
		}
		walkExitExpr(bag, n.Callee, false)
		for _, arg := range n.Args {
			walkExitExpr(bag, arg, false)
		}
	case *hir.BlockExpr:
		walkExitBlock(bag, n.Block, false)
	case *hir.IfExpr:
		walkExitExpr(bag, n.Cond, false)
		walkExitBlock(bag, n.Then, allowExitHere)
		walkExitExpr(bag, n.Else, allowExitHere)
	case *hir.LoopExpr:
		walkExitBlock(bag, n.Body, false)
	case *hir.WhileExpr:
		walkExitExpr(bag, n.Cond, false)
		walkExitBlock(bag, n.Body, false)
	case *hir.FieldExpr:
		walkExitExpr(bag, n.Receiver, false)
	case *hir.IndexExpr:
		walkExitExpr(bag, n.Receiver, false)
		walkExitExpr(bag, n.Index, false)
	case *hir.StructLitExpr:
		for _, f := range n.Fields {
			walkExitExpr(bag, f.Value, false)
		}
	case *hir.ArrayLitExpr:
		for _, el := range n.Elements {
			walkExitExpr(bag, el, false)
		}
	case *hir.ArrayRepeatExpr:
		walkExitExpr(bag, n.Value, false)
	case *hir.CastExpr:
		walkExitExpr(bag, n.Value, false)
	case *hir.BinaryExpr:
		walkExitExpr(bag, n.Left, false)
		walkExitExpr(bag, n.Right, false)
	case *hir.UnaryExpr:
		walkExitExpr(bag, n.Operand, false)
	case *hir.RefExpr:
		walkExitExpr(bag, n.Operand, false)
	case *hir.DerefExpr:
		walkExitExpr(bag, n.Operand, false)
	case *hir.AssignExpr:
		walkExitExpr(bag, n.Target, false)
		walkExitExpr(bag, n.Value, false)
	case *hir.MethodCallExpr:
		walkExitExpr(bag, n.Receiver, false)
		for _, arg := range n.Args {
			walkExitExpr(bag, arg, false)
		}
	case *hir.BreakExpr:
		walkExitExpr(bag, n.Value, false)
	case *hir.ReturnExpr:
		walkExitExpr(bag, n.Value, false)
	}
}
