package sema

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
)

// CheckTraits is pass 5 (spec.md §4.5): every trait impl must provide (or
// inherit a default body for) each of the trait's required items, and
// every item it does provide must match the trait's declared signature
// exactly (by resolved TypeId, including receiver shape).
func CheckTraits(a *Analysis, prog *hir.Program) *diag.Bag {
	bag := diag.NewBag()
	for _, item := range prog.Items {
		checkTraitItem(a, item, bag)
	}
	return bag
}

func checkTraitItem(a *Analysis, item hir.Item, bag *diag.Bag) {
	switch n := item.(type) {
	case *hir.ImplDecl:
		if n.TraitRef != nil {
			checkImplAgainstTrait(a, n, bag)
		}
		for _, it := range n.Items {
			if fn, ok := it.(*hir.FunctionDecl); ok && fn.Body != nil {
				checkNestedItems(a, fn.Body, bag)
			}
		}
	case *hir.FunctionDecl:
		if n.Body != nil {
			checkNestedItems(a, n.Body, bag)
		}
	}
}

func checkNestedItems(a *Analysis, blk *hir.Block, bag *diag.Bag) {
	for _, st := range blk.Stmts {
		if is, ok := st.(*hir.ItemStmt); ok {
			checkTraitItem(a, is.Item, bag)
		}
	}
}

func checkImplAgainstTrait(a *Analysis, impl *hir.ImplDecl, bag *diag.Bag) {
	trait := impl.TraitRef
	provided := make(map[string]*hir.FunctionDecl, len(impl.Items))
	providedConsts := make(map[string]*hir.ConstDecl, len(impl.Items))
	for _, it := range impl.Items {
		switch n := it.(type) {
		case *hir.FunctionDecl:
			provided[n.Name] = n
		case *hir.ConstDecl:
			providedConsts[n.Name] = n
		}
	}

	for _, it := range trait.Items {
		switch req := it.(type) {
		case *hir.FunctionDecl:
			impled, ok := provided[req.Name]
			if !ok {
				if req.Body != nil {
					continue // default-bodied trait method, not overridden
				}
				bag.Add(diag.TraitItemUnimplemented, impl.Span(), "missing implementation of %q required by trait %q", req.Name, trait.Name)
				continue
			}
			checkSignatureMatch(impl, req, impled, bag)
		case *hir.ConstDecl:
			if _, ok := providedConsts[req.Name]; !ok {
				bag.Add(diag.TraitItemUnimplemented, impl.Span(), "missing associated const %q required by trait %q", req.Name, trait.Name)
			}
		}
	}
}

func checkSignatureMatch(impl *hir.ImplDecl, req, got *hir.FunctionDecl, bag *diag.Bag) {
	if (req.Self == nil) != (got.Self == nil) {
		bag.Add(diag.TraitItemUnimplemented, got.Span(), "method %q's receiver does not match the trait's declaration", got.Name)
		return
	}
	if req.Self != nil && got.Self != nil {
		if req.SelfKind != got.SelfKind {
			bag.Add(diag.TraitItemUnimplemented, got.Span(), "method %q's receiver kind (&self/&mut self/self) does not match the trait's declaration", got.Name)
		}
	}
	if len(req.Params) != len(got.Params) {
		bag.Add(diag.TraitItemUnimplemented, got.Span(), "method %q has %d parameters, trait declares %d", got.Name, len(got.Params), len(req.Params))
		return
	}
	for i := range req.Params {
		if req.Params[i].Type.ID != got.Params[i].Type.ID {
			bag.Add(diag.TraitItemUnimplemented, got.Params[i].Span(), "parameter %d of %q does not match the trait's declared type", i, got.Name)
		}
	}
	if req.RetType.ID != got.RetType.ID {
		bag.Add(diag.TraitItemUnimplemented, got.Span(), "return type of %q does not match the trait's declared type", got.Name)
	}
}
