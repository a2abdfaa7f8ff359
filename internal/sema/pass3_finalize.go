package sema

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// structEnumColor tracks colored-DFS state for the field/variant cycle
// check (spec.md §4.3): white (unvisited), grey (on the current DFS
// path), black (finished).
type structEnumColor int

const (
	white structEnumColor = iota
	grey
	black
)

// FinalizeStructsAndEnums is pass 3: resolve every struct field's and
// (trivially, since Rx enum variants carry no payload) every enum's
// declared shape, rejecting a field-type cycle that doesn't pass through
// a reference (an unboxed struct directly or indirectly containing
// itself has no finite size).
func FinalizeStructsAndEnums(a *Analysis, rootScope *hir.Scope, prog *hir.Program) *diag.Bag {
	bag := diag.NewBag()
	f := &finalizer{a: a, bag: bag, color: map[types.StructId]structEnumColor{}}
	for _, item := range prog.Items {
		f.finalizeItem(rootScope, item)
	}
	return bag
}

type finalizer struct {
	a     *Analysis
	bag   *diag.Bag
	color map[types.StructId]structEnumColor
}

func (f *finalizer) finalizeItem(scope *hir.Scope, item hir.Item) {
	switch n := item.(type) {
	case *hir.StructDecl:
		f.finalizeStruct(scope, n)
	case *hir.EnumDecl:
		f.finalizeEnum(n)
	case *hir.ImplDecl:
		for _, it := range n.Items {
			f.finalizeItem(n.Scope, it)
		}
	case *hir.TraitDecl:
		for _, it := range n.Items {
			f.finalizeItem(n.Scope, it)
		}
	case *hir.FunctionDecl:
		if n.Body != nil {
			f.finalizeBlock(n.Body)
		}
	}
}

// finalizeBlock recurses only to find block-local struct/enum items; it
// does not otherwise touch expressions (that's pass 6's job).
func (f *finalizer) finalizeBlock(blk *hir.Block) {
	for _, st := range blk.Stmts {
		if is, ok := st.(*hir.ItemStmt); ok {
			f.finalizeItem(blk.Scope, is.Item)
		}
	}
}

func (f *finalizer) finalizeStruct(scope *hir.Scope, n *hir.StructDecl) {
	switch f.color[n.ID] {
	case black:
		return
	case grey:
		f.bag.Add(diag.InvalidType, n.Span(), "struct %q has infinite size (cyclic field without an intervening reference)", n.Name)
		return
	}
	f.color[n.ID] = grey
	defer func() { f.color[n.ID] = black }()

	rc := ResolveCtx{Scope: scope, SelfType: types.Invalid}
	fields := make([]types.FieldInfo, 0, len(n.Fields))
	for _, fd := range n.Fields {
		if fd.Type.Syntax != nil {
			f.walkFieldType(scope, *fd.Type.Syntax)
		}
		id := f.a.Resolver.ResolveType(rc, &fd.Type)
		fields = append(fields, types.FieldInfo{Name: fd.Name, Type: id})
	}
	f.a.Ctx.SetStructFields(n.ID, fields)
}

// walkFieldType looks for a direct (non-reference) use of a struct inside
// a field's declared type and finalizes that struct first, so the
// colored-DFS cycle check (spec.md §4.3) catches it while it's still on
// the current path. A RefType boundary breaks the cycle (a reference has
// a fixed size regardless of what it points to) and isn't recursed past.
func (f *finalizer) walkFieldType(scope *hir.Scope, tn ast.TypeNode) {
	switch n := tn.(type) {
	case *ast.ArrayType:
		if n.Element != nil {
			f.walkFieldType(scope, *n.Element)
		}
	case *ast.NamedType:
		if len(n.Segments) != 1 {
			return
		}
		te, ok := scope.LookupType(n.Segments[0])
		if !ok || te.Struct == nil {
			return
		}
		f.finalizeStruct(scope, te.Struct)
	}
}

// finalizeEnum writes an enum's variant list back to the type table.
// Rx enum variants carry no payload (spec.md §2's Non-goals exclude
// data-carrying enums), so there is no field type to resolve and no
// cycle to check.
func (f *finalizer) finalizeEnum(n *hir.EnumDecl) {
	variants := make([]types.VariantInfo, 0, len(n.Variants))
	for _, v := range n.Variants {
		variants = append(variants, types.VariantInfo{Name: v.Name})
	}
	f.a.Ctx.SetEnumVariants(n.ID, variants)
}
