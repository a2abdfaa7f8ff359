// Package hir is the shared mutable tree every pass after pass 0 operates
// on: spec.md §3.3 describes it as structurally mirroring the AST but with
// stateful "refinement fields" (TypeAnnotation, FieldAccessTarget,
// CallTarget) that start unresolved and are overwritten in place by the
// pass that owns them. Grounded on the teacher's pkg/ast annotation-on-node
// idea (kept as a pattern — DWScript attaches SemanticInfo out-of-band,
// Rx's HIR carries it inline per spec.md §3.3) and
// internal/semantic/pass_context.go's Scope/ScopeStack, generalized to the
// four-namespace scope spec.md §3.4 requires.
package hir

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// Node is any HIR node: it carries a non-owning back-pointer to the AST
// node it was built from, used solely for diagnostics (spec.md §3.3).
type Node interface {
	Span() diag.Span
}

// Base is embedded by every concrete HIR node for its AST back-pointer.
type Base struct {
	Ast ast.Node
}

func (b Base) Span() diag.Span {
	if b.Ast == nil {
		return diag.NoSpan
	}
	return b.Ast.Span()
}

// TypeAnnotation is the canonical "Unresolved(TypeNode) | Resolved(TypeId)"
// tagged union (spec.md §3.3): Syntax holds the original AST type (nil for
// a synthesized default-unit annotation), ID is types.Invalid until pass 4
// resolves it. Mutation of ID is the annotation's own cache — a second
// visit that finds ID already resolved short-circuits (spec.md §4.4).
type TypeAnnotation struct {
	Syntax *ast.TypeNode
	ID     types.TypeId
}

func UnresolvedType(syntax *ast.TypeNode) TypeAnnotation {
	return TypeAnnotation{Syntax: syntax, ID: types.Invalid}
}

func ResolvedType(id types.TypeId) TypeAnnotation {
	return TypeAnnotation{ID: id}
}

func (t TypeAnnotation) IsResolved() bool { return t.ID != types.Invalid }

// FieldAccessTarget is `Name(Identifier) | Index(usize)`, resolved by
// pass 6 once the receiver's struct type is known (spec.md §3.3).
type FieldAccessTarget struct {
	Resolved bool
	Name     string
	Index    int
}

// CallTargetKind distinguishes the resolved shape of a CallTarget.
type CallTargetKind int

const (
	CallUnresolved CallTargetKind = iota
	CallFunction
	CallMethod
	CallBuiltin
)

// CallTarget is `Name(Path) | Func(FunctionRef) | Method(MethodRef)`
// (spec.md §3.3): Name/path form is what pass 0 produces (a bare
// PathExpr/MethodCallExpr callee), resolved into Func/Method/Builtin by
// pass 2 (for plain calls whose callee is unambiguous) or pass 6 (method
// calls, which need the receiver's resolved type).
type CallTarget struct {
	Kind     CallTargetKind
	Function *FunctionDecl
	Method   *FunctionDecl // the matched impl method, when Kind == CallMethod
	Builtin  string        // builtin name, when Kind == CallBuiltin
}

// PathTargetKind distinguishes what a bare PathExpr resolves to.
type PathTargetKind int

const (
	PathUnresolved PathTargetKind = iota
	PathLocal
	PathConst
	PathFunction
	PathBuiltin
	PathEnumVariant
)

// PathTarget is the resolved referent of a value-position PathExpr,
// resolved by pass 2 (spec.md §4.2's name-resolution walk).
type PathTarget struct {
	Kind         PathTargetKind
	Local        *Local
	Const        *ConstDecl
	Function     *FunctionDecl
	Builtin      string
	Enum         *EnumDecl
	VariantIndex int
}

// LoopKey identifies the loop a `break`/`continue` targets: pointer
// identity of the owning LoopExpr/WhileExpr HIR node, per spec.md §3.3's
// `Break(LoopKey, Type)`/`Continue(LoopKey)` endpoints.
type LoopKey interface {
	loopKey()
}

// EndpointSet is the lightweight control-flow-exit abstraction of
// spec.md §4.6: which of {Normal, Return, Break(loop), Continue(loop)}
// evaluating an expression may produce. `Normal` is present iff control
// can fall through to the next statement.
type EndpointSet struct {
	Normal    bool
	Return    bool
	Breaks    map[LoopKey]bool
	Continues map[LoopKey]bool
}

// NewEndpointSet returns the empty set (used as the identity element for
// Union and as the starting point before a node's rule is applied).
func NewEndpointSet() EndpointSet {
	return EndpointSet{Breaks: map[LoopKey]bool{}, Continues: map[LoopKey]bool{}}
}

// NormalOnly is the EndpointSet of any expression whose evaluation always
// falls through (the common case: literals, arithmetic, field access...).
func NormalOnly() EndpointSet {
	e := NewEndpointSet()
	e.Normal = true
	return e
}

// Union merges two endpoint sets, as required when joining sibling
// branches (e.g. an if/else's two arms) into the expression's overall
// endpoint set.
func (e EndpointSet) Union(o EndpointSet) EndpointSet {
	out := NewEndpointSet()
	out.Normal = e.Normal || o.Normal
	out.Return = e.Return || o.Return
	for k := range e.Breaks {
		out.Breaks[k] = true
	}
	for k := range o.Breaks {
		out.Breaks[k] = true
	}
	for k := range e.Continues {
		out.Continues[k] = true
	}
	for k := range o.Continues {
		out.Continues[k] = true
	}
	return out
}

// Diverges reports whether the set contains no Normal endpoint — the
// expression's static type must then be Never (spec.md property 2).
func (e EndpointSet) Diverges() bool { return !e.Normal }

// ExprInfo is pass 6's per-expression result record (spec.md §4.6):
// resolved type, place-ness, mutability of the place (if any), and the
// endpoint set. Cached directly on the expression node once computed.
type ExprInfo struct {
	Type      types.TypeId
	IsPlace   bool
	IsMut     bool
	Endpoints EndpointSet
}

// ExprBase is embedded by every Expr node: it supplies the AST
// back-pointer and the pass-6 result cache.
type ExprBase struct {
	Base
	Info *ExprInfo
}

func (ExprBase) exprNode() {}

// Expr is any HIR expression (spec.md §3.3's Expr sum).
type Expr interface {
	Node
	exprNode()
}

// Stmt is any HIR statement.
type Stmt interface {
	Node
	stmtNode()
}

// Item is any HIR top-level or block-hoisted item.
type Item interface {
	Node
	itemNode()
}

// Local is a named binding owned by its enclosing function/method body
// (spec.md §3.3): a parameter, a `let`-bound variable, or a `self`.
type Local struct {
	Base
	Name    string
	Mutable bool
	Type    TypeAnnotation
	IsSelf  bool
}

// Program is the HIR root: an ordered list of top-level items plus the
// root scope they were registered into.
type Program struct {
	Base
	Items []Item
	Scope *Scope
}

func (p *Program) Span() diag.Span { return p.Base.Span() }
