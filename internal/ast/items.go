package ast

// FunctionDecl is a free function, a trait item signature (Body nil), or
// — when Self is non-nil — a method. spec.md §3.3 models Function and
// Method as one entity differing only in whether a receiver is present.
type FunctionDecl struct {
	NodeSpan
	Name    string
	Self    *SelfParam
	Params  []Param
	RetType *TypeNode // nil means the default unit return (spec.md §4.4)
	Body    *Block    // nil for a trait item with no default body
}

func (*FunctionDecl) itemNode() {}

// FieldDecl is one `name: Type` entry of a StructDecl.
type FieldDecl struct {
	NodeSpan
	Name string
	Type *TypeNode
}

// StructDecl is `struct Name { fields... }`.
type StructDecl struct {
	NodeSpan
	Name   string
	Fields []FieldDecl
}

func (*StructDecl) itemNode() {}

// VariantDecl is one unit-only enum variant (no payload — spec.md §3.2's
// EnumInfo carries only a name per variant).
type VariantDecl struct {
	NodeSpan
	Name string
}

// EnumDecl is `enum Name { Variant, ... }`.
type EnumDecl struct {
	NodeSpan
	Name     string
	Variants []VariantDecl
}

func (*EnumDecl) itemNode() {}

// ConstDecl is `const NAME: Type = expr;`.
type ConstDecl struct {
	NodeSpan
	Name  string
	Type  *TypeNode
	Value Expr
}

func (*ConstDecl) itemNode() {}

// TraitDecl is `trait Name { items... }`; each item is a FunctionDecl
// (Body nil for a required item, non-nil for one with a default body).
type TraitDecl struct {
	NodeSpan
	Name  string
	Items []Item
}

func (*TraitDecl) itemNode() {}

// ImplDecl is `impl [Trait for] Type { items... }`. TraitName is nil for
// an inherent impl.
type ImplDecl struct {
	NodeSpan
	TraitName *string
	ForType   *TypeNode
	Items     []Item
}

func (*ImplDecl) itemNode() {}
