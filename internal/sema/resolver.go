package sema

import (
	"strconv"

	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/hir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// ResolveCtx carries the ambient state a demand-driven type/const
// resolution needs beyond the syntax node itself: the scope to resolve
// names in, and (inside an impl/trait) the concrete type `Self` stands
// for.
type ResolveCtx struct {
	Scope    *hir.Scope
	SelfType types.TypeId
}

// Resolver is the pass 4 "demand-driven resolver service" (spec.md §4.4):
// it turns TypeAnnotation from Unresolved to Resolved and evaluates
// constant expressions appearing in a type position. It is invoked early
// (from pass 2's impl-table registration, pass 3's field finalization)
// as well as during pass 4 proper — mutation of TypeAnnotation.ID is its
// own cache, so re-invocation on an already-resolved annotation is free.
type Resolver struct {
	ctx      *types.Context
	bag      *diag.Bag
	visiting map[*hir.ConstDecl]bool
}

func NewResolver(ctx *types.Context, bag *diag.Bag) *Resolver {
	return &Resolver{ctx: ctx, bag: bag, visiting: map[*hir.ConstDecl]bool{}}
}

// ResolveType resolves ann in place and returns its TypeId. A nil Syntax
// with no prior resolution means "default unit" (spec.md §4.4).
func (r *Resolver) ResolveType(rc ResolveCtx, ann *hir.TypeAnnotation) types.TypeId {
	if ann.IsResolved() {
		return ann.ID
	}
	if ann.Syntax == nil {
		ann.ID = r.ctx.Unit()
		return ann.ID
	}
	id := r.resolveTypeNode(rc, *ann.Syntax)
	ann.ID = id
	return id
}

func (r *Resolver) resolveTypeNode(rc ResolveCtx, tn ast.TypeNode) types.TypeId {
	switch n := tn.(type) {
	case *ast.UnitType:
		return r.ctx.Unit()

	case *ast.RefType:
		target := r.resolveTypeNode(rc, *n.Target)
		return r.ctx.Reference(target, n.Mutable)

	case *ast.ArrayType:
		elem := r.resolveTypeNode(rc, *n.Element)
		length, ok := r.EvalConstUsize(rc, n.Length)
		if !ok {
			return types.Invalid
		}
		return r.ctx.Array(elem, length)

	case *ast.NamedType:
		return r.resolveNamedType(rc, n)

	default:
		r.bag.Add(diag.InvalidType, tn.Span(), "unrecognized type syntax")
		return types.Invalid
	}
}

func (r *Resolver) resolveNamedType(rc ResolveCtx, n *ast.NamedType) types.TypeId {
	if len(n.Segments) == 1 {
		name := n.Segments[0]
		switch name {
		case "Self":
			if rc.SelfType == types.Invalid {
				r.bag.Add(diag.InvalidType, n.Span(), "`Self` is only valid inside an impl or trait")
				return types.Invalid
			}
			return rc.SelfType
		case "String":
			return r.ctx.BuiltinString()
		}
		if id, ok := r.ctx.Primitive(name); ok {
			return id
		}
		if rc.Scope != nil {
			if te, ok := rc.Scope.LookupType(name); ok {
				switch {
				case te.Struct != nil:
					return r.ctx.GetID(types.Type{Kind: types.KindStruct, Struct: te.Struct.ID})
				case te.Enum != nil:
					return r.ctx.GetID(types.Type{Kind: types.KindEnum, Enum: te.Enum.ID})
				case te.Builtin:
					return r.ctx.BuiltinString()
				}
			}
		}
	}
	r.bag.Add(diag.UndefinedName, n.Span(), "undefined type %q", joinSegments(n.Segments))
	return types.Invalid
}

func joinSegments(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "::"
		}
		out += s
	}
	return out
}

// EvalConstUsize evaluates e as a const expression and requires the
// result to be a non-negative usize-representable value (array lengths,
// spec.md §4.4).
func (r *Resolver) EvalConstUsize(rc ResolveCtx, e hir.Expr) (uint64, bool) {
	v, ok := r.EvalConst(rc, e)
	if !ok {
		return 0, false
	}
	if v < 0 {
		r.bag.Add(diag.InvalidType, e.Span(), "array length must not be negative")
		return 0, false
	}
	return uint64(v), true
}

// EvalConst evaluates e over the restricted const sub-language (spec.md
// §4.4): literals, a path to another const, unary -/!/~, and binary
// arithmetic/bitwise operators. Anything else (blocks, field/struct
// exprs, references, casts, boolean short-circuit, comparisons, calls,
// indexing) is rejected with InvalidType.
func (r *Resolver) EvalConst(rc ResolveCtx, e hir.Expr) (int64, bool) {
	switch n := e.(type) {
	case *hir.LiteralExpr:
		if n.Kind != ast.IntLit {
			r.bag.Add(diag.InvalidType, n.Span(), "only integer literals are allowed in a constant expression")
			return 0, false
		}
		v, err := strconv.ParseInt(n.Text, 10, 64)
		if err != nil {
			r.bag.Add(diag.InvalidType, n.Span(), "integer literal %q overflows", n.Text)
			return 0, false
		}
		return v, true

	case *hir.PathExpr:
		if len(n.Segments) != 1 {
			break
		}
		if rc.Scope == nil {
			break
		}
		entry, ok := rc.Scope.LookupValue(n.Segments[0])
		if !ok || entry.Kind != hir.ValueConst {
			break
		}
		return r.evalConstDecl(rc, entry.Const)

	case *hir.UnaryExpr:
		v, ok := r.EvalConst(rc, n.Operand)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case ast.Neg:
			return -v, true
		case ast.BitNot:
			return ^v, true
		case ast.Not:
			if v == 0 {
				return 1, true
			}
			return 0, true
		}

	case *hir.BinaryExpr:
		l, ok := r.EvalConst(rc, n.Left)
		if !ok {
			return 0, false
		}
		rv, ok := r.EvalConst(rc, n.Right)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case ast.Add:
			return l + rv, true
		case ast.Sub:
			return l - rv, true
		case ast.Mul:
			return l * rv, true
		case ast.Div:
			if rv == 0 {
				r.bag.Add(diag.InvalidType, n.Span(), "division by zero in constant expression")
				return 0, false
			}
			return l / rv, true
		case ast.Rem:
			if rv == 0 {
				r.bag.Add(diag.InvalidType, n.Span(), "division by zero in constant expression")
				return 0, false
			}
			return l % rv, true
		case ast.BitAnd:
			return l & rv, true
		case ast.BitOr:
			return l | rv, true
		case ast.BitXor:
			return l ^ rv, true
		case ast.Shl:
			if rv < 0 {
				r.bag.Add(diag.InvalidType, n.Span(), "negative shift count in constant expression")
				return 0, false
			}
			return l << uint64(rv), true
		case ast.Shr:
			if rv < 0 {
				r.bag.Add(diag.InvalidType, n.Span(), "negative shift count in constant expression")
				return 0, false
			}
			return l >> uint64(rv), true
		default:
			r.bag.Add(diag.InvalidType, n.Span(), "operator not allowed in a constant expression")
			return 0, false
		}
	}

	r.bag.Add(diag.InvalidType, e.Span(), "expression not allowed in a constant context")
	return 0, false
}

func (r *Resolver) evalConstDecl(rc ResolveCtx, cd *hir.ConstDecl) (int64, bool) {
	if cd.Evaluated {
		return cd.EvalInt, true
	}
	if r.visiting[cd] {
		r.bag.Add(diag.InvalidType, cd.Span(), "constant %q depends on itself", cd.Name)
		return 0, false
	}
	r.visiting[cd] = true
	defer delete(r.visiting, cd)

	v, ok := r.EvalConst(rc, cd.Value)
	if !ok {
		return 0, false
	}
	cd.EvalInt = v
	cd.Evaluated = true
	return v, true
}
