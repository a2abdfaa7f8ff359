package ast

// TypeNode is the syntactic type expression the parser produces. Pass 4
// (spec.md §4.4) consumes it and replaces the owning TypeAnnotation with
// a resolved TypeId; TypeNode itself never mutates.
type TypeNode interface {
	Node
	typeNode()
}

// NamedType is a (possibly multi-segment) path used in type position:
// a primitive name, "()"-less unit is its own node, a struct/enum name,
// "Self", or a qualifying path like "String".
type NamedType struct {
	NodeSpan
	Segments []string
}

func (*NamedType) typeNode() {}

// UnitType is the `()` type.
type UnitType struct {
	NodeSpan
}

func (*UnitType) typeNode() {}

// RefType is `&T` or `&mut T`.
type RefType struct {
	NodeSpan
	Mutable bool
	Target  *TypeNode
}

func (*RefType) typeNode() {}

// ArrayType is `[T; N]`, where N is a const expression evaluated by
// pass 4's restricted const evaluator.
type ArrayType struct {
	NodeSpan
	Element *TypeNode
	Length  Expr
}

func (*ArrayType) typeNode() {}
