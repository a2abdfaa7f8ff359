package sema

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// ResolveNames is pass 2 (spec.md §4.2): symbol collection (every item in
// a scope introduced before any statement is visited) followed by a
// resolution walk over statements/expressions in source order. Also
// registers the impl table and normalizes struct-literal field order.
func ResolveNames(a *Analysis, prog *hir.Program) *diag.Bag {
	bag := diag.NewBag()
	collectItems(a, prog.Scope, prog.Items, bag)
	for _, item := range prog.Items {
		resolveItem(a, ResolveCtx{Scope: prog.Scope, SelfType: types.Invalid}, item, bag)
	}
	return bag
}

// collectItems performs sub-phase 1 (symbol collection) for one scope's
// item list: struct/enum/trait/function/const names first, impls second
// (impls need the rest of the scope's type names already visible to
// resolve their `for_type`).
func collectItems(a *Analysis, scope *hir.Scope, items []hir.Item, bag *diag.Bag) {
	var impls []*hir.ImplDecl
	for _, item := range items {
		switch n := item.(type) {
		case *hir.StructDecl:
			if !scope.DefineType(n.Name, &hir.TypeEntry{Struct: n}) {
				bag.Add(diag.MultipleDefinition, n.Span(), "struct %q is already defined in this scope", n.Name)
			}
		case *hir.EnumDecl:
			if !scope.DefineType(n.Name, &hir.TypeEntry{Enum: n}) {
				bag.Add(diag.MultipleDefinition, n.Span(), "enum %q is already defined in this scope", n.Name)
			}
			a.enumDecls[n.ID] = n
		case *hir.TraitDecl:
			if !scope.DefineTrait(n.Name, n) {
				bag.Add(diag.MultipleDefinition, n.Span(), "trait %q is already defined in this scope", n.Name)
			}
			collectAssocItems(a, n.Scope, n.Items, bag)
		case *hir.FunctionDecl:
			if !scope.DefineValue(n.Name, &hir.ValueEntry{Kind: hir.ValueFunction, Function: n}) {
				bag.Add(diag.MultipleDefinition, n.Span(), "function %q is already defined in this scope", n.Name)
			}
			collectFunctionBody(a, n, bag)
		case *hir.ConstDecl:
			if !scope.DefineValue(n.Name, &hir.ValueEntry{Kind: hir.ValueConst, Const: n}) {
				bag.Add(diag.MultipleDefinition, n.Span(), "const %q is already defined in this scope", n.Name)
			}
		case *hir.ImplDecl:
			impls = append(impls, n)
		}
	}
	for _, impl := range impls {
		registerImpl(a, scope, impl, bag)
	}
}

// collectAssocItems registers a trait/impl block's own items into its
// associated-item namespace, a namespace never reached by ordinary
// (unqualified) value lookup — spec.md §3.4.
func collectAssocItems(a *Analysis, assocScope *hir.Scope, items []hir.Item, bag *diag.Bag) {
	for _, item := range items {
		switch n := item.(type) {
		case *hir.FunctionDecl:
			if !assocScope.DefineAssoc(n.Name, &hir.ValueEntry{Kind: hir.ValueFunction, Function: n}) {
				bag.Add(diag.MultipleDefinition, n.Span(), "associated item %q is already defined", n.Name)
			}
			collectFunctionBody(a, n, bag)
		case *hir.ConstDecl:
			if !assocScope.DefineAssoc(n.Name, &hir.ValueEntry{Kind: hir.ValueConst, Const: n}) {
				bag.Add(diag.MultipleDefinition, n.Span(), "associated item %q is already defined", n.Name)
			}
		}
	}
}

// collectFunctionBody registers a function/method's own parameters and
// `self` into its body scope, then recurses into the body for nested
// item hoisting.
func collectFunctionBody(a *Analysis, fn *hir.FunctionDecl, bag *diag.Bag) {
	if fn.Scope == nil {
		return
	}
	if fn.Self != nil {
		fn.Scope.DefineValue("self", &hir.ValueEntry{Kind: hir.ValueLocal, Local: fn.Self})
	}
	for _, p := range fn.Params {
		if !fn.Scope.DefineValue(p.Name, &hir.ValueEntry{Kind: hir.ValueLocal, Local: p}) {
			bag.Add(diag.MultipleDefinition, p.Span(), "parameter %q is already defined", p.Name)
		}
	}
	collectBlock(a, fn.Body, bag)
}

// collectBlock hoists a block's own ItemStmt entries into its scope, then
// recurses into every nested block reachable from this one.
func collectBlock(a *Analysis, blk *hir.Block, bag *diag.Bag) {
	if blk == nil {
		return
	}
	var items []hir.Item
	for _, st := range blk.Stmts {
		if is, ok := st.(*hir.ItemStmt); ok {
			items = append(items, is.Item)
		}
	}
	collectItems(a, blk.Scope, items, bag)

	for _, st := range blk.Stmts {
		switch s := st.(type) {
		case *hir.LetStmt:
			collectNestedBlocks(a, s.Value, bag)
		case *hir.ExprStmt:
			collectNestedBlocks(a, s.Expr, bag)
		}
	}
	collectNestedBlocks(a, blk.Tail, bag)
}

func collectNestedBlocks(a *Analysis, e hir.Expr, bag *diag.Bag) {
	switch n := e.(type) {
	case nil:
		return
	case *hir.BlockExpr:
		collectBlock(a, n.Block, bag)
	case *hir.IfExpr:
		collectNestedBlocks(a, n.Cond, bag)
		collectBlock(a, n.Then, bag)
		collectNestedBlocks(a, n.Else, bag)
	case *hir.LoopExpr:
		collectBlock(a, n.Body, bag)
	case *hir.WhileExpr:
		collectNestedBlocks(a, n.Cond, bag)
		collectBlock(a, n.Body, bag)
	case *hir.BinaryExpr:
		collectNestedBlocks(a, n.Left, bag)
		collectNestedBlocks(a, n.Right, bag)
	case *hir.UnaryExpr:
		collectNestedBlocks(a, n.Operand, bag)
	case *hir.RefExpr:
		collectNestedBlocks(a, n.Operand, bag)
	case *hir.DerefExpr:
		collectNestedBlocks(a, n.Operand, bag)
	case *hir.AssignExpr:
		collectNestedBlocks(a, n.Target, bag)
		collectNestedBlocks(a, n.Value, bag)
	case *hir.CallExpr:
		collectNestedBlocks(a, n.Callee, bag)
		for _, arg := range n.Args {
			collectNestedBlocks(a, arg, bag)
		}
	case *hir.MethodCallExpr:
		collectNestedBlocks(a, n.Receiver, bag)
		for _, arg := range n.Args {
			collectNestedBlocks(a, arg, bag)
		}
	case *hir.FieldExpr:
		collectNestedBlocks(a, n.Receiver, bag)
	case *hir.IndexExpr:
		collectNestedBlocks(a, n.Receiver, bag)
		collectNestedBlocks(a, n.Index, bag)
	case *hir.CastExpr:
		collectNestedBlocks(a, n.Value, bag)
	case *hir.ArrayLitExpr:
		for _, el := range n.Elements {
			collectNestedBlocks(a, el, bag)
		}
	case *hir.ArrayRepeatExpr:
		collectNestedBlocks(a, n.Value, bag)
	case *hir.StructLitExpr:
		for _, f := range n.Fields {
			collectNestedBlocks(a, f.Value, bag)
		}
	case *hir.BreakExpr:
		collectNestedBlocks(a, n.Value, bag)
	case *hir.ReturnExpr:
		collectNestedBlocks(a, n.Value, bag)
	}
}

func registerImpl(a *Analysis, scope *hir.Scope, impl *hir.ImplDecl, bag *diag.Bag) {
	rc := ResolveCtx{Scope: scope, SelfType: types.Invalid}
	forType := a.Resolver.ResolveType(rc, &impl.ForType)

	traitName := ""
	if impl.TraitName != nil {
		traitName = *impl.TraitName
		if td, ok := scope.LookupTrait(traitName); ok {
			impl.TraitRef = td
		} else {
			bag.Add(diag.UndefinedName, impl.Span(), "undefined trait %q", traitName)
		}
	}

	a.Impls[forType] = append(a.Impls[forType], &ImplEntry{Impl: impl, ForType: forType, TraitName: traitName})
	collectAssocItems(a, impl.Scope, impl.Items, bag)
	if impl.TraitRef != nil {
		inheritDefaultedTraitItems(impl.Scope, impl.TraitRef)
	}
}

// inheritDefaultedTraitItems fills in the impl's associated namespace with
// the trait's default-bodied items that this impl did not override, so
// pass 5's requirement check and pass 6/9's method dispatch see one
// concrete FunctionDecl regardless of whether the impl restated the
// method (spec.md §4.5 allows omitting a default-bodied trait item).
func inheritDefaultedTraitItems(implScope *hir.Scope, trait *hir.TraitDecl) {
	for _, item := range trait.Items {
		fn, ok := item.(*hir.FunctionDecl)
		if !ok || fn.Body == nil {
			continue
		}
		if _, exists := implScope.LookupAssocLocal(fn.Name); exists {
			continue
		}
		implScope.DefineAssoc(fn.Name, &hir.ValueEntry{Kind: hir.ValueFunction, Function: fn})
	}
}

// resolveItem performs the resolution walk's per-item dispatch.
func resolveItem(a *Analysis, rc ResolveCtx, item hir.Item, bag *diag.Bag) {
	switch n := item.(type) {
	case *hir.FunctionDecl:
		resolveFunction(a, rc, n, bag)
	case *hir.ImplDecl:
		implRC := ResolveCtx{Scope: n.Scope, SelfType: n.ForType.ID}
		for _, it := range n.Items {
			resolveItem(a, implRC, it, bag)
		}
	case *hir.TraitDecl:
		traitRC := ResolveCtx{Scope: n.Scope, SelfType: rc.SelfType}
		for _, it := range n.Items {
			resolveItem(a, traitRC, it, bag)
		}
	case *hir.ConstDecl:
		resolveExpr(a, rc, n.Value, bag)
	}
}

func resolveFunction(a *Analysis, rc ResolveCtx, fn *hir.FunctionDecl, bag *diag.Bag) {
	if fn.Body == nil {
		return
	}
	bodyRC := ResolveCtx{Scope: fn.Scope, SelfType: rc.SelfType}
	resolveBlock(a, bodyRC, fn.Body, bag)
}

func resolveBlock(a *Analysis, rc ResolveCtx, blk *hir.Block, bag *diag.Bag) {
	blockRC := ResolveCtx{Scope: blk.Scope, SelfType: rc.SelfType}
	for _, st := range blk.Stmts {
		switch s := st.(type) {
		case *hir.LetStmt:
			if s.Value != nil {
				resolveExpr(a, blockRC, s.Value, bag)
			}
			blk.Scope.DefineValue(s.Local.Name, &hir.ValueEntry{Kind: hir.ValueLocal, Local: s.Local})
		case *hir.ExprStmt:
			resolveExpr(a, blockRC, s.Expr, bag)
		case *hir.ItemStmt:
			resolveItem(a, blockRC, s.Item, bag)
		}
	}
	if blk.Tail != nil {
		resolveExpr(a, blockRC, blk.Tail, bag)
	}
}

// resolveExpr performs plain-name resolution on every PathExpr/CallExpr
// it finds, recursing into every sub-expression. Field access, method
// calls, and index targets are resolved later (pass 6) since they need
// the receiver's type.
func resolveExpr(a *Analysis, rc ResolveCtx, e hir.Expr, bag *diag.Bag) {
	switch n := e.(type) {
	case nil:
		return
	case *hir.PathExpr:
		resolvePathExpr(a, rc, n, bag)
	case *hir.FieldExpr:
		resolveExpr(a, rc, n.Receiver, bag)
	case *hir.IndexExpr:
		resolveExpr(a, rc, n.Receiver, bag)
		resolveExpr(a, rc, n.Index, bag)
	case *hir.StructLitExpr:
		resolveStructLit(a, rc, n, bag)
	case *hir.ArrayLitExpr:
		for _, el := range n.Elements {
			resolveExpr(a, rc, el, bag)
		}
	case *hir.ArrayRepeatExpr:
		resolveExpr(a, rc, n.Value, bag)
		resolveExpr(a, rc, n.Count, bag)
	case *hir.CastExpr:
		resolveExpr(a, rc, n.Value, bag)
		a.Resolver.ResolveType(rc, &n.Type)
	case *hir.BinaryExpr:
		resolveExpr(a, rc, n.Left, bag)
		resolveExpr(a, rc, n.Right, bag)
	case *hir.UnaryExpr:
		resolveExpr(a, rc, n.Operand, bag)
	case *hir.RefExpr:
		resolveExpr(a, rc, n.Operand, bag)
	case *hir.DerefExpr:
		resolveExpr(a, rc, n.Operand, bag)
	case *hir.AssignExpr:
		resolveExpr(a, rc, n.Target, bag)
		resolveExpr(a, rc, n.Value, bag)
	case *hir.BlockExpr:
		resolveBlock(a, rc, n.Block, bag)
	case *hir.IfExpr:
		resolveExpr(a, rc, n.Cond, bag)
		resolveBlock(a, rc, n.Then, bag)
		if n.Else != nil {
			resolveExpr(a, rc, n.Else, bag)
		}
	case *hir.LoopExpr:
		resolveBlock(a, rc, n.Body, bag)
	case *hir.WhileExpr:
		resolveExpr(a, rc, n.Cond, bag)
		resolveBlock(a, rc, n.Body, bag)
	case *hir.CallExpr:
		resolveExpr(a, rc, n.Callee, bag)
		for _, arg := range n.Args {
			resolveExpr(a, rc, arg, bag)
		}
		resolveCallTarget(a, rc, n, bag)
	case *hir.MethodCallExpr:
		resolveExpr(a, rc, n.Receiver, bag)
		for _, arg := range n.Args {
			resolveExpr(a, rc, arg, bag)
		}
	case *hir.BreakExpr:
		if n.Value != nil {
			resolveExpr(a, rc, n.Value, bag)
		}
	case *hir.ReturnExpr:
		if n.Value != nil {
			resolveExpr(a, rc, n.Value, bag)
		}
	}
}

func resolvePathExpr(a *Analysis, rc ResolveCtx, n *hir.PathExpr, bag *diag.Bag) {
	if len(n.Segments) == 1 {
		name := n.Segments[0]
		if rc.Scope != nil {
			if entry, ok := rc.Scope.LookupValue(name); ok {
				n.Target = valueEntryToPathTarget(entry)
				return
			}
		}
		bag.Add(diag.UndefinedName, n.Span(), "undefined name %q", name)
		return
	}

	head, tail := n.Segments[0], n.Segments[len(n.Segments)-1]
	headType, ok := resolvePathHeadType(a, rc, head, n.Span())
	if !ok {
		bag.Add(diag.UndefinedName, n.Span(), "undefined type %q", head)
		return
	}

	if sig, ok := a.Ctx.Builtin(head + "::" + tail); ok {
		n.Target = hir.PathTarget{Kind: hir.PathBuiltin, Builtin: sig.Name}
		return
	}
	if et, isEnum := enumOf(a, headType); isEnum {
		for i, v := range et.Variants {
			if v.Name == tail {
				n.Target = hir.PathTarget{Kind: hir.PathEnumVariant, Enum: et, VariantIndex: i}
				return
			}
		}
		bag.Add(diag.UndefinedName, n.Span(), "enum %q has no variant %q", et.Name, tail)
		return
	}
	if cd, ok := a.LookupAssocConst(headType, tail); ok {
		n.Target = hir.PathTarget{Kind: hir.PathConst, Const: cd}
		return
	}
	if fn, ok := a.LookupMethod(headType, tail); ok {
		n.Target = hir.PathTarget{Kind: hir.PathFunction, Function: fn}
		return
	}
	bag.Add(diag.UndefinedName, n.Span(), "no associated item %q on %s", tail, a.Ctx.Display(headType))
}

// resolvePathHeadType resolves a multi-segment path's first segment as a
// type: `Self`, `String`, or a struct/enum name in scope.
func resolvePathHeadType(a *Analysis, rc ResolveCtx, head string, span diag.Span) (types.TypeId, bool) {
	if head == "Self" {
		return rc.SelfType, rc.SelfType != types.Invalid
	}
	if head == "String" {
		return a.Ctx.BuiltinString(), true
	}
	if rc.Scope == nil {
		return types.Invalid, false
	}
	te, ok := rc.Scope.LookupType(head)
	if !ok {
		return types.Invalid, false
	}
	switch {
	case te.Struct != nil:
		return a.Ctx.GetID(types.Type{Kind: types.KindStruct, Struct: te.Struct.ID}), true
	case te.Enum != nil:
		return a.Ctx.GetID(types.Type{Kind: types.KindEnum, Enum: te.Enum.ID}), true
	}
	return types.Invalid, false
}

func enumOf(a *Analysis, id types.TypeId) (*hir.EnumDecl, bool) {
	if id == types.Invalid {
		return nil, false
	}
	t := a.Ctx.Type(id)
	if t.Kind != types.KindEnum {
		return nil, false
	}
	return a.enumDeclByID(t.Enum)
}

func valueEntryToPathTarget(e *hir.ValueEntry) hir.PathTarget {
	switch e.Kind {
	case hir.ValueLocal:
		return hir.PathTarget{Kind: hir.PathLocal, Local: e.Local}
	case hir.ValueConst:
		return hir.PathTarget{Kind: hir.PathConst, Const: e.Const}
	case hir.ValueFunction:
		return hir.PathTarget{Kind: hir.PathFunction, Function: e.Function}
	case hir.ValueBuiltin:
		return hir.PathTarget{Kind: hir.PathBuiltin, Builtin: e.Builtin}
	}
	return hir.PathTarget{}
}

func resolveCallTarget(a *Analysis, rc ResolveCtx, call *hir.CallExpr, bag *diag.Bag) {
	path, ok := call.Callee.(*hir.PathExpr)
	if !ok {
		return
	}
	switch path.Target.Kind {
	case hir.PathFunction:
		call.Target = hir.CallTarget{Kind: hir.CallFunction, Function: path.Target.Function}
	case hir.PathBuiltin:
		call.Target = hir.CallTarget{Kind: hir.CallBuiltin, Builtin: path.Target.Builtin}
	}
}

func resolveStructLit(a *Analysis, rc ResolveCtx, lit *hir.StructLitExpr, bag *diag.Bag) {
	for _, f := range lit.Fields {
		resolveExpr(a, rc, f.Value, bag)
	}
	head := lit.Path[0]
	if head == "Self" {
		if rc.SelfType == types.Invalid {
			bag.Add(diag.InvalidType, lit.Span(), "`Self` is only valid inside an impl or trait")
			return
		}
		t := a.Ctx.Type(rc.SelfType)
		if t.Kind != types.KindStruct {
			bag.Add(diag.InvalidType, lit.Span(), "`Self` does not name a struct here")
			return
		}
		te, ok := rc.Scope.LookupType(a.Ctx.Struct(t.Struct).Name)
		if !ok || te.Struct == nil || te.Struct.ID != t.Struct {
			bag.Add(diag.InvalidType, lit.Span(), "`Self` does not name a struct here")
			return
		}
		lit.StructID = t.Struct
		lit.Resolved = true
		normalizeStructLitFields(te.Struct, lit, bag)
		return
	}
	if rc.Scope == nil {
		bag.Add(diag.UndefinedName, lit.Span(), "undefined struct %q", head)
		return
	}
	te, ok := rc.Scope.LookupType(head)
	if !ok || te.Struct == nil {
		bag.Add(diag.UndefinedName, lit.Span(), "undefined struct %q", head)
		return
	}
	lit.StructID = te.Struct.ID
	lit.Resolved = true
	normalizeStructLitFields(te.Struct, lit, bag)
}

// normalizeStructLitFields reorders a struct literal's field-init list
// into the struct's declared field order (spec.md §4.2), erroring on
// unrecognized or missing fields. Field names come from the HIR
// declaration, since the type table's field list is only filled by pass 3.
func normalizeStructLitFields(sd *hir.StructDecl, lit *hir.StructLitExpr, bag *diag.Bag) {
	info := types.StructInfo{Name: sd.Name}
	for _, fd := range sd.Fields {
		info.Fields = append(info.Fields, types.FieldInfo{Name: fd.Name})
	}
	seen := make(map[string]*hir.FieldInit, len(lit.Fields))
	for _, f := range lit.Fields {
		seen[f.Name] = f
	}
	ordered := make([]*hir.FieldInit, 0, len(info.Fields))
	for i, decl := range info.Fields {
		f, ok := seen[decl.Name]
		if !ok {
			bag.Add(diag.TypeMismatch, lit.Span(), "missing field %q in initializer for %s", decl.Name, info.Name)
			continue
		}
		f.FieldIndex = i
		ordered = append(ordered, f)
		delete(seen, decl.Name)
	}
	for name, f := range seen {
		bag.Add(diag.TypeMismatch, f.Span(), "struct %s has no field %q", info.Name, name)
	}
	lit.Fields = ordered
}
