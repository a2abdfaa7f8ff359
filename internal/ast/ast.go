// Package ast defines the Abstract Syntax Tree produced by internal/parser.
// The AST is the second external collaborator spec.md §1 treats as a
// black box: the core only relies on the shape defined here, never on how
// internal/parser built it. Every node carries a diag.Span so HIR builder
// (pass 0) can attach a usable back-pointer for diagnostics (spec.md §3.3).
package ast

import "github.com/rogerflowey/rust-compiler-sub004/internal/diag"

// Node is the common capability of every AST node: a source span.
type Node interface {
	Span() diag.Span
}

type NodeSpan struct {
	Sp diag.Span
}

func (n NodeSpan) Span() diag.Span { return n.Sp }

// Program is the root of a single compilation unit (spec.md §1: "One
// file = one compilation unit = one crate").
type Program struct {
	NodeSpan
	Items []Item
}

// Item is a top-level (or, via ItemStmt, block-local) declaration.
type Item interface {
	Node
	itemNode()
}

// Param is a function/method value parameter.
type Param struct {
	NodeSpan
	Name string
	Type *TypeNode
}

// SelfKind distinguishes the three receiver shapes spec.md §4.5 requires
// trait/impl signatures to match on.
type SelfKind int

const (
	NoSelf SelfKind = iota
	SelfByValue
	SelfByRef
	SelfByRefMut
)

// SelfParam is the optional receiver of a Method.
type SelfParam struct {
	NodeSpan
	Kind SelfKind
}

// FieldInit is one `name: value` entry of a struct literal.
type FieldInit struct {
	NodeSpan
	Name  string
	Value Expr
}
