// Package types is the hash-consed type system shared by every later pass:
// the TypeContext interns Type values into cheap-to-copy TypeIds, and owns
// the struct/enum registries those IDs index into. It mirrors the role the
// teacher's internal/interp/types.TypeSystem plays as a centralized
// type/class/record registry, generalized here from named-string lookup to
// a canonical hash-consed table (spec.md §3.1).
package types

import "fmt"

// TypeId is an opaque, cheap-to-copy handle into a TypeContext. Two types
// are identical iff their TypeIds are equal.
type TypeId int

// Invalid is the sentinel for "no type yet" (e.g. a TypeAnnotation that has
// not reached pass 4).
const Invalid TypeId = -1

func (id TypeId) String() string {
	if id == Invalid {
		return "<invalid>"
	}
	return fmt.Sprintf("#%d", int(id))
}

// StructId and EnumId are dense indices into the TypeContext's struct/enum
// tables, assigned during skeleton registration (pass 1) before any field
// or variant type is resolved — this is what makes mutually recursive
// struct/enum definitions representable at all.
type StructId int
type EnumId int

// Kind distinguishes the shape of a Type value.
type Kind int

const (
	KindPrimitive Kind = iota
	KindUnit
	KindNever
	KindReference
	KindArray
	KindStruct
	KindEnum
	KindUnderscore
	// KindBuiltinString is the opaque, heap-backed `String` type exported
	// by the root scope (spec.md §3.4, §6) — distinct from the `str`
	// primitive, which is always accessed through a reference.
	KindBuiltinString
)

// Primitive enumerates Rx's fixed scalar type set (spec.md §3.2/§6).
type Primitive int

const (
	I32 Primitive = iota
	U32
	Isize
	Usize
	Bool
	Char
	Str
)

var primitiveNames = map[Primitive]string{
	I32: "i32", U32: "u32", Isize: "isize", Usize: "usize",
	Bool: "bool", Char: "char", Str: "str",
}

func (p Primitive) String() string { return primitiveNames[p] }

// Type is the canonical, hash-consable description of a Rx type. Only the
// fields relevant to Kind are populated; the rest are left zero. Underscore
// and Never may appear in HIR intermediates only — spec.md §3.1's
// invariant that every TypeId reaching MIR is fully resolved is enforced
// by pass 4 and pass 9, not by this type.
type Type struct {
	Kind      Kind
	Primitive Primitive // KindPrimitive
	RefTarget TypeId    // KindReference
	RefMut    bool      // KindReference
	ElemType  TypeId    // KindArray
	ArrayLen  uint64    // KindArray (compile-time constant length)
	Struct    StructId  // KindStruct
	Enum      EnumId    // KindEnum
}

// key is the hash-cons lookup key: Type with all fields, used as a map key
// since Type contains no slices/pointers.
type key = Type

// StructInfo is the registered shape of one struct definition. Fields is
// empty until pass 3 (struct/enum finalization) resolves it; its presence
// with StructId assigned earlier is exactly what lets struct A contain a
// field of type B while B contains a field of type (reference to) A.
type StructInfo struct {
	Name   string
	Fields []FieldInfo
}

type FieldInfo struct {
	Name string
	Type TypeId
}

// EnumInfo is the registered shape of one enum definition.
type EnumInfo struct {
	Name     string
	Variants []VariantInfo
}

type VariantInfo struct {
	Name string
}
