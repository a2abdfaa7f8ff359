package sema

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
)

// LinkControlFlow is pass 7 (spec.md §4.7): bind every `return` to its
// owning function and confirm every `break` has already been bound to a
// loop by pass 6's loop stack (a `continue` is bound, or reported, by pass
// 6 alone). Pass 6 resolves BreakExpr.Loop
// eagerly (it needs the target loop to unify the break's value type), so
// this pass's own job is narrower than its name suggests: it exists as an
// independent walk so a function body's control-flow wiring doesn't
// silently depend on pass 6 having run first, matching spec.md's pass
// separation.
func LinkControlFlow(prog *hir.Program) *diag.Bag {
	bag := diag.NewBag()
	for _, item := range prog.Items {
		linkItem(bag, nil, item)
	}
	return bag
}

func linkItem(bag *diag.Bag, fn *hir.FunctionDecl, item hir.Item) {
	switch n := item.(type) {
	case *hir.FunctionDecl:
		if n.Body != nil {
			linkBlock(bag, n, n.Body)
		}
	case *hir.ImplDecl:
		for _, it := range n.Items {
			linkItem(bag, fn, it)
		}
	case *hir.TraitDecl:
		for _, it := range n.Items {
			linkItem(bag, fn, it)
		}
	}
}

func linkBlock(bag *diag.Bag, fn *hir.FunctionDecl, blk *hir.Block) {
	for _, st := range blk.Stmts {
		switch s := st.(type) {
		case *hir.LetStmt:
			linkExpr(bag, fn, s.Value)
		case *hir.ExprStmt:
			linkExpr(bag, fn, s.Expr)
		case *hir.ItemStmt:
			linkItem(bag, fn, s.Item)
		}
	}
	linkExpr(bag, fn, blk.Tail)
}

func linkExpr(bag *diag.Bag, fn *hir.FunctionDecl, e hir.Expr) {
	switch n := e.(type) {
	case nil:
		return
	case *hir.ReturnExpr:
		if fn == nil {
			bag.Add(diag.InvalidControlFlow, n.Span(), "`return` outside of a function")
			return
		}
		n.Function = fn
		linkExpr(bag, fn, n.Value)
	case *hir.BreakExpr:
		if n.Loop == nil {
			bag.Add(diag.InvalidControlFlow, n.Span(), "`break` outside of a loop")
		}
		linkExpr(bag, fn, n.Value)
	case *hir.ContinueExpr:
		// Loop binding (if any) was already recorded by pass 6's walk; an
		// absent binding was already reported there too.
	case *hir.FieldExpr:
		linkExpr(bag, fn, n.Receiver)
	case *hir.IndexExpr:
		linkExpr(bag, fn, n.Receiver)
		linkExpr(bag, fn, n.Index)
	case *hir.StructLitExpr:
		for _, f := range n.Fields {
			linkExpr(bag, fn, f.Value)
		}
	case *hir.ArrayLitExpr:
		for _, el := range n.Elements {
			linkExpr(bag, fn, el)
		}
	case *hir.ArrayRepeatExpr:
		linkExpr(bag, fn, n.Value)
	case *hir.CastExpr:
		linkExpr(bag, fn, n.Value)
	case *hir.BinaryExpr:
		linkExpr(bag, fn, n.Left)
		linkExpr(bag, fn, n.Right)
	case *hir.UnaryExpr:
		linkExpr(bag, fn, n.Operand)
	case *hir.RefExpr:
		linkExpr(bag, fn, n.Operand)
	case *hir.DerefExpr:
		linkExpr(bag, fn, n.Operand)
	case *hir.AssignExpr:
		linkExpr(bag, fn, n.Target)
		linkExpr(bag, fn, n.Value)
	case *hir.BlockExpr:
		linkBlock(bag, fn, n.Block)
	case *hir.IfExpr:
		linkExpr(bag, fn, n.Cond)
		linkBlock(bag, fn, n.Then)
		linkExpr(bag, fn, n.Else)
	case *hir.LoopExpr:
		linkBlock(bag, fn, n.Body)
	case *hir.WhileExpr:
		linkExpr(bag, fn, n.Cond)
		linkBlock(bag, fn, n.Body)
	case *hir.CallExpr:
		linkExpr(bag, fn, n.Callee)
		for _, arg := range n.Args {
			linkExpr(bag, fn, arg)
		}
	case *hir.MethodCallExpr:
		linkExpr(bag, fn, n.Receiver)
		for _, arg := range n.Args {
			linkExpr(bag, fn, arg)
		}
	}
}
