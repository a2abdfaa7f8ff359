package sema

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// ImplEntry is one registered `impl [Trait for] Type` block, keyed by its
// target type and optional trait name (spec.md §4.2's impl table).
type ImplEntry struct {
	Impl      *hir.ImplDecl
	ForType   types.TypeId
	TraitName string // "" for an inherent impl
}

// Analysis is the shared state threaded through passes 2-8: the type
// context, the impl table every method/associated-item lookup consults,
// and the demand-driven resolver. One Analysis is built per compilation
// and lives for the lifetime of the HIR tree (spec.md §5).
type Analysis struct {
	Ctx      *types.Context
	Resolver *Resolver
	Impls    map[types.TypeId][]*ImplEntry

	// enumDecls is a reverse index from the type table's dense EnumId back
	// to the owning HIR node, populated during pass 2's symbol collection.
	// types.Context only stores the name/variant-name vector; pass 6's
	// path/variant resolution needs the HIR node itself.
	enumDecls map[types.EnumId]*hir.EnumDecl
}

func NewAnalysis(ctx *types.Context, bag *diag.Bag) *Analysis {
	return &Analysis{
		Ctx:       ctx,
		Resolver:  NewResolver(ctx, bag),
		Impls:     make(map[types.TypeId][]*ImplEntry),
		enumDecls: make(map[types.EnumId]*hir.EnumDecl),
	}
}

func (a *Analysis) enumDeclByID(id types.EnumId) (*hir.EnumDecl, bool) {
	d, ok := a.enumDecls[id]
	return d, ok
}

// LookupMethod finds an inherent or trait method named name on forType's
// impls. Prefers an inherent impl if one defines the method.
func (a *Analysis) LookupMethod(forType types.TypeId, name string) (*hir.FunctionDecl, bool) {
	var traitMatch *hir.FunctionDecl
	for _, entry := range a.Impls[forType] {
		if entry.Impl.Scope == nil {
			continue
		}
		if v, ok := entry.Impl.Scope.LookupAssocLocal(name); ok && v.Kind == hir.ValueFunction {
			if entry.TraitName == "" {
				return v.Function, true
			}
			traitMatch = v.Function
		}
	}
	if traitMatch != nil {
		return traitMatch, true
	}
	return nil, false
}

// LookupAssocConst finds an associated const named name on forType's impls.
func (a *Analysis) LookupAssocConst(forType types.TypeId, name string) (*hir.ConstDecl, bool) {
	for _, entry := range a.Impls[forType] {
		if entry.Impl.Scope == nil {
			continue
		}
		if v, ok := entry.Impl.Scope.LookupAssocLocal(name); ok && v.Kind == hir.ValueConst {
			return v.Const, true
		}
	}
	return nil, false
}
