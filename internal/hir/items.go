package hir

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// FunctionDecl is a free function or a method found inside an ImplDecl's
// item list (spec.md §3.3: "Function / Method" share one HIR shape).
type FunctionDecl struct {
	Base
	Name     string
	Self     *Local // nil unless this is a method with a `self` receiver
	SelfKind ast.SelfKind
	Params   []*Local
	RetType TypeAnnotation
	Body    *Block // nil for a trait item with no default body
	Locals  []*Local
	Scope   *Scope // the function body's top scope (nil if Body == nil)

	// EndpointsOK is set true by pass 6 once every path through Body has
	// been checked against RetType (MissingReturn detection, spec.md §4.6).
	EndpointsOK bool

	// MangledName is assigned by pass 9's function-collection walk
	// ("Type::method" for an impl method, "Trait::method" for a shared
	// default body, the bare name for a free function) — cosmetic, used
	// only to name the lowered MirFunction for debug output.
	MangledName string
}

func (*FunctionDecl) itemNode() {}

// StructDecl is a struct definition; ID is allocated empty by pass 1
// (skeleton registration), and pass 3 resolves the types of Fields and
// records them in the type table.
type StructDecl struct {
	Base
	Name   string
	ID     types.StructId
	Fields []*FieldDecl
}

func (*StructDecl) itemNode() {}

type FieldDecl struct {
	Base
	Name string
	Type TypeAnnotation
}

// EnumDecl is an enum definition; ID is allocated empty by pass 1 and
// pass 3 records Variants in the type table.
type EnumDecl struct {
	Base
	Name     string
	ID       types.EnumId
	Variants []*VariantDecl
}

func (*EnumDecl) itemNode() {}

type VariantDecl struct {
	Base
	Name string
}

// ConstDecl is a `const` item; Value's constant evaluation (pass 4) fills
// in EvalInt once the restricted const evaluator accepts the expression.
type ConstDecl struct {
	Base
	Name    string
	Type    TypeAnnotation
	Value   Expr
	Evaluated bool
	EvalInt int64
}

func (*ConstDecl) itemNode() {}

// TraitDecl is a trait definition: its Items are FunctionDecls (signature
// only, or with a default Body) and ConstDecls.
type TraitDecl struct {
	Base
	Name  string
	Items []Item
	Scope *Scope // associated-item namespace for this trait
}

func (*TraitDecl) itemNode() {}

// ImplDecl is `impl [Trait for] Type { items }`. TraitName/TraitRef are
// nil for an inherent impl.
type ImplDecl struct {
	Base
	TraitName *string
	TraitRef  *TraitDecl // resolved by pass 2
	ForType   TypeAnnotation
	Items     []Item
	Scope     *Scope // associated-item namespace for this impl
}

func (*ImplDecl) itemNode() {}
