package hir

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// Builder performs pass 0: mechanical AST → HIR translation (spec.md
// §4.0). It installs back-pointers, seeds every TypeAnnotation as
// Unresolved, leaves FieldAccessTarget/CallTarget/PathTarget unresolved,
// and builds the scope *tree* shape (one Scope per Block/function
// body/impl/trait) without populating any namespace — that's pass 1/2's
// job. Grounded on the AST→HIR transformer shape of
// other_examples/…SeleniaProject-Orizon…ast_to_hir.go, adapted to Rx's
// smaller grammar and to building scope nodes rather than a flat symbol
// table alongside the lowering.
type Builder struct {
	ctx    *types.Context
	errors *diag.Bag
}

// NewBuilder constructs a Builder over ctx's (already primitive-seeded)
// type table.
func NewBuilder(ctx *types.Context) *Builder {
	return &Builder{ctx: ctx, errors: diag.NewBag()}
}

func (b *Builder) Errors() *diag.Bag { return b.errors }

// Build translates an entire AST program into a HIR program whose root
// scope is a child of the builtin root scope.
func (b *Builder) Build(prog *ast.Program) *Program {
	root := NewScope(BuiltinRootScope(b.ctx), false)
	root.ModuleRoot = root
	items := make([]Item, 0, len(prog.Items))
	for _, it := range prog.Items {
		items = append(items, b.buildItem(it, root))
	}
	return &Program{Base: Base{Ast: prog}, Items: items, Scope: root}
}

func (b *Builder) buildItem(item ast.Item, scope *Scope) Item {
	switch n := item.(type) {
	case *ast.FunctionDecl:
		return b.buildFunction(n, scope)
	case *ast.StructDecl:
		return b.buildStruct(n)
	case *ast.EnumDecl:
		return b.buildEnum(n)
	case *ast.ConstDecl:
		return b.buildConst(n, scope)
	case *ast.TraitDecl:
		return b.buildTrait(n, scope)
	case *ast.ImplDecl:
		return b.buildImpl(n, scope)
	default:
		b.errors.Add(diag.SyntaxError, item.Span(), "internal: unknown item node %T", item)
		return nil
	}
}

func (b *Builder) buildFunction(n *ast.FunctionDecl, parent *Scope) *FunctionDecl {
	fn := &FunctionDecl{Base: Base{Ast: n}, Name: n.Name}

	if n.Self != nil {
		fn.SelfKind = n.Self.Kind
		fn.Self = &Local{Base: Base{Ast: n.Self}, Name: "self", IsSelf: true,
			Mutable: n.Self.Kind == ast.SelfByRefMut}
	}

	if n.RetType != nil {
		fn.RetType = UnresolvedType(n.RetType)
	} else {
		// Default return type is unit (spec.md §4.4); no syntax node to
		// point a diagnostic at, so Syntax stays nil and the resolver
		// special-cases it as unit.
		fn.RetType = TypeAnnotation{ID: types.Invalid}
	}

	bodyScope := NewScope(parent, true)
	for _, p := range n.Params {
		local := &Local{Base: Base{Ast: &p}, Name: p.Name, Type: UnresolvedType(p.Type)}
		fn.Params = append(fn.Params, local)
		fn.Locals = append(fn.Locals, local)
	}
	if fn.Self != nil {
		fn.Locals = append(fn.Locals, fn.Self)
	}

	if n.Body != nil {
		fn.Scope = bodyScope
		fn.Body = b.buildBlock(n.Body, bodyScope, fn)
	}
	return fn
}

func (b *Builder) buildStruct(n *ast.StructDecl) *StructDecl {
	s := &StructDecl{Base: Base{Ast: n}, Name: n.Name, ID: -1}
	for _, f := range n.Fields {
		s.Fields = append(s.Fields, &FieldDecl{Base: Base{Ast: &f}, Name: f.Name, Type: UnresolvedType(f.Type)})
	}
	return s
}

func (b *Builder) buildEnum(n *ast.EnumDecl) *EnumDecl {
	e := &EnumDecl{Base: Base{Ast: n}, Name: n.Name, ID: -1}
	for _, v := range n.Variants {
		e.Variants = append(e.Variants, &VariantDecl{Base: Base{Ast: &v}, Name: v.Name})
	}
	return e
}

func (b *Builder) buildConst(n *ast.ConstDecl, scope *Scope) *ConstDecl {
	return &ConstDecl{
		Base:  Base{Ast: n},
		Name:  n.Name,
		Type:  UnresolvedType(n.Type),
		Value: b.buildExpr(n.Value, scope, nil),
	}
}

func (b *Builder) buildTrait(n *ast.TraitDecl, parent *Scope) *TraitDecl {
	t := &TraitDecl{Base: Base{Ast: n}, Name: n.Name, Scope: NewScope(parent, false)}
	for _, it := range n.Items {
		t.Items = append(t.Items, b.buildItem(it, t.Scope))
	}
	return t
}

func (b *Builder) buildImpl(n *ast.ImplDecl, parent *Scope) *ImplDecl {
	impl := &ImplDecl{
		Base:      Base{Ast: n},
		TraitName: n.TraitName,
		ForType:   UnresolvedType(n.ForType),
		Scope:     NewScope(parent, false),
	}
	for _, it := range n.Items {
		impl.Items = append(impl.Items, b.buildItem(it, impl.Scope))
	}
	return impl
}

func (b *Builder) buildBlock(n *ast.Block, scope *Scope, fn *FunctionDecl) *Block {
	blk := &Block{Base: Base{Ast: n}, Scope: scope}
	for _, st := range n.Stmts {
		blk.Stmts = append(blk.Stmts, b.buildStmt(st, scope, fn))
	}
	if n.Tail != nil {
		blk.Tail = b.buildExpr(n.Tail, scope, fn)
	}
	return blk
}

func (b *Builder) buildStmt(st ast.Stmt, scope *Scope, fn *FunctionDecl) Stmt {
	switch n := st.(type) {
	case *ast.LetStmt:
		local := &Local{Base: Base{Ast: n}, Name: n.Name, Mutable: n.Mutable}
		if n.Type != nil {
			local.Type = UnresolvedType(n.Type)
		} else {
			local.Type = TypeAnnotation{ID: types.Invalid}
		}
		if fn != nil {
			fn.Locals = append(fn.Locals, local)
		}
		var value Expr
		if n.Value != nil {
			value = b.buildExpr(n.Value, scope, fn)
		}
		return &LetStmt{Base: Base{Ast: n}, Local: local, Value: value}
	case *ast.ExprStmt:
		return &ExprStmt{Base: Base{Ast: n}, Expr: b.buildExpr(n.Expr, scope, fn)}
	case *ast.ItemStmt:
		return &ItemStmt{Base: Base{Ast: n}, Item: b.buildItem(n.Item, scope)}
	case *ast.EmptyStmt:
		return &EmptyStmt{Base: Base{Ast: n}}
	default:
		b.errors.Add(diag.SyntaxError, st.Span(), "internal: unknown stmt node %T", st)
		return &EmptyStmt{Base: Base{Ast: st}}
	}
}

func (b *Builder) buildExpr(e ast.Expr, scope *Scope, fn *FunctionDecl) Expr {
	eb := func(n ast.Node) ExprBase { return ExprBase{Base: Base{Ast: n}} }

	switch n := e.(type) {
	case *ast.LiteralExpr:
		return &LiteralExpr{ExprBase: eb(n), Kind: n.Kind, Text: n.Text, Suffix: n.Suffix}
	case *ast.PathExpr:
		return &PathExpr{ExprBase: eb(n), Segments: n.Segments}
	case *ast.FieldExpr:
		return &FieldExpr{ExprBase: eb(n), Receiver: b.buildExpr(n.Receiver, scope, fn), Name: n.Name}
	case *ast.IndexExpr:
		return &IndexExpr{ExprBase: eb(n), Receiver: b.buildExpr(n.Receiver, scope, fn), Index: b.buildExpr(n.Index, scope, fn)}
	case *ast.StructLitExpr:
		lit := &StructLitExpr{ExprBase: eb(n), Path: n.Path, StructID: -1}
		for _, f := range n.Fields {
			lit.Fields = append(lit.Fields, &FieldInit{Base: Base{Ast: &f}, Name: f.Name, Value: b.buildExpr(f.Value, scope, fn)})
		}
		return lit
	case *ast.ArrayLitExpr:
		lit := &ArrayLitExpr{ExprBase: eb(n)}
		for _, el := range n.Elements {
			lit.Elements = append(lit.Elements, b.buildExpr(el, scope, fn))
		}
		return lit
	case *ast.ArrayRepeatExpr:
		return &ArrayRepeatExpr{ExprBase: eb(n), Value: b.buildExpr(n.Value, scope, fn), Count: b.buildExpr(n.Count, scope, fn)}
	case *ast.CastExpr:
		return &CastExpr{ExprBase: eb(n), Value: b.buildExpr(n.Value, scope, fn), Type: UnresolvedType(n.Type)}
	case *ast.BinaryExpr:
		return &BinaryExpr{ExprBase: eb(n), Op: n.Op, Left: b.buildExpr(n.Left, scope, fn), Right: b.buildExpr(n.Right, scope, fn)}
	case *ast.UnaryExpr:
		return &UnaryExpr{ExprBase: eb(n), Op: n.Op, Operand: b.buildExpr(n.Operand, scope, fn)}
	case *ast.RefExpr:
		return &RefExpr{ExprBase: eb(n), Mutable: n.Mutable, Operand: b.buildExpr(n.Operand, scope, fn)}
	case *ast.DerefExpr:
		return &DerefExpr{ExprBase: eb(n), Operand: b.buildExpr(n.Operand, scope, fn)}
	case *ast.AssignExpr:
		return &AssignExpr{ExprBase: eb(n), Target: b.buildExpr(n.Target, scope, fn), Value: b.buildExpr(n.Value, scope, fn)}
	case *ast.BlockExpr:
		inner := NewScope(scope, false)
		return &BlockExpr{ExprBase: eb(n), Block: b.buildBlock(n.Block, inner, fn)}
	case *ast.IfExpr:
		thenScope := NewScope(scope, false)
		ifExpr := &IfExpr{ExprBase: eb(n), Cond: b.buildExpr(n.Cond, scope, fn), Then: b.buildBlock(n.Then, thenScope, fn)}
		if n.Else != nil {
			ifExpr.Else = b.buildExpr(n.Else, scope, fn)
		}
		return ifExpr
	case *ast.LoopExpr:
		bodyScope := NewScope(scope, false)
		return &LoopExpr{ExprBase: eb(n), Body: b.buildBlock(n.Body, bodyScope, fn), BreakType: types.Invalid}
	case *ast.WhileExpr:
		bodyScope := NewScope(scope, false)
		return &WhileExpr{ExprBase: eb(n), Cond: b.buildExpr(n.Cond, scope, fn), Body: b.buildBlock(n.Body, bodyScope, fn)}
	case *ast.CallExpr:
		call := &CallExpr{ExprBase: eb(n), Callee: b.buildExpr(n.Callee, scope, fn)}
		for _, a := range n.Args {
			call.Args = append(call.Args, b.buildExpr(a, scope, fn))
		}
		return call
	case *ast.MethodCallExpr:
		mc := &MethodCallExpr{ExprBase: eb(n), Receiver: b.buildExpr(n.Receiver, scope, fn), Method: n.Method}
		for _, a := range n.Args {
			mc.Args = append(mc.Args, b.buildExpr(a, scope, fn))
		}
		return mc
	case *ast.BreakExpr:
		brk := &BreakExpr{ExprBase: eb(n)}
		if n.Value != nil {
			brk.Value = b.buildExpr(n.Value, scope, fn)
		}
		return brk
	case *ast.ContinueExpr:
		return &ContinueExpr{ExprBase: eb(n)}
	case *ast.ReturnExpr:
		ret := &ReturnExpr{ExprBase: eb(n)}
		if n.Value != nil {
			ret.Value = b.buildExpr(n.Value, scope, fn)
		}
		return ret
	default:
		b.errors.Add(diag.SyntaxError, e.Span(), "internal: unknown expr node %T", e)
		return &LiteralExpr{ExprBase: eb(e), Kind: ast.UnitLit}
	}
}
