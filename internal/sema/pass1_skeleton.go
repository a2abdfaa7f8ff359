// Package sema implements passes 1-8 of the pipeline: skeleton
// registration, name resolution, struct/enum finalization, type/const
// finalization, trait check, semantic check, control-flow linking, and
// exit check. Grounded on internal/semantic/pass.go's Pass interface and
// PassManager and internal/semantic/analyze_*.go's one-struct-per-concern,
// one-file-per-construct layout (kept as an architectural pattern; the
// concrete per-construct logic is new, since DWScript has no HIR/MIR).
package sema

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// RegisterSkeletons is pass 1 (spec.md §4.1): allocate an empty
// StructId/EnumId for every StructDecl/EnumDecl reachable from prog,
// top-down, so later passes can resolve forward and mutually recursive
// references. Fatal (MultipleDefinition) if the same name is registered
// twice.
func RegisterSkeletons(ctx *types.Context, prog *hir.Program) *diag.Bag {
	bag := diag.NewBag()
	for _, item := range prog.Items {
		registerItemSkeleton(ctx, item, bag)
	}
	return bag
}

func registerItemSkeleton(ctx *types.Context, item hir.Item, bag *diag.Bag) {
	switch n := item.(type) {
	case *hir.StructDecl:
		id, ok := ctx.RegisterStruct(n.Name)
		if !ok {
			bag.Add(diag.MultipleDefinition, n.Span(), "struct %q is already defined", n.Name)
			return
		}
		n.ID = id
	case *hir.EnumDecl:
		id, ok := ctx.RegisterEnum(n.Name)
		if !ok {
			bag.Add(diag.MultipleDefinition, n.Span(), "enum %q is already defined", n.Name)
			return
		}
		n.ID = id
	case *hir.ImplDecl:
		for _, it := range n.Items {
			registerItemSkeleton(ctx, it, bag)
		}
	case *hir.TraitDecl:
		for _, it := range n.Items {
			registerItemSkeleton(ctx, it, bag)
		}
	case *hir.FunctionDecl:
		if n.Body != nil {
			registerBlockSkeletons(ctx, n.Body, bag)
		}
	}
}

// registerBlockSkeletons recurses into nested blocks so structs/enums
// declared inside a function body are registered too (spec.md §3.3: items
// inside a Block are order-independent and first-class).
func registerBlockSkeletons(ctx *types.Context, blk *hir.Block, bag *diag.Bag) {
	for _, st := range blk.Stmts {
		switch s := st.(type) {
		case *hir.ItemStmt:
			registerItemSkeleton(ctx, s.Item, bag)
		case *hir.LetStmt:
			registerExprSkeletons(ctx, s.Value, bag)
		case *hir.ExprStmt:
			registerExprSkeletons(ctx, s.Expr, bag)
		}
	}
	registerExprSkeletons(ctx, blk.Tail, bag)
}

func registerExprSkeletons(ctx *types.Context, e hir.Expr, bag *diag.Bag) {
	switch n := e.(type) {
	case nil:
		return
	case *hir.BlockExpr:
		registerBlockSkeletons(ctx, n.Block, bag)
	case *hir.IfExpr:
		registerExprSkeletons(ctx, n.Cond, bag)
		registerBlockSkeletons(ctx, n.Then, bag)
		registerExprSkeletons(ctx, n.Else, bag)
	case *hir.LoopExpr:
		registerBlockSkeletons(ctx, n.Body, bag)
	case *hir.WhileExpr:
		registerExprSkeletons(ctx, n.Cond, bag)
		registerBlockSkeletons(ctx, n.Body, bag)
	}
}
