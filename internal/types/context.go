package types

import (
	"fmt"
	"strings"
)

// Context is the process-wide type table: spec.md §5 describes it as the
// one piece of module-level state every pass shares. Its struct/enum
// registries are written only by registration (pass 1) and finalization
// (pass 3); any pass may still intern further derived types (references,
// arrays) through GetID and its helpers.
// It generalizes the teacher's TypeSystem registry-of-registries
// (classes/records/interfaces keyed by lowercase name) into a single
// canonical hash-cons table keyed by structural Type value, plus dense
// StructId/EnumId-indexed vectors.
type Context struct {
	table  map[key]TypeId
	types  []Type
	structs []StructInfo
	enums   []EnumInfo

	// structNames/enumNames let skeleton registration (pass 1) reject a
	// duplicate definition in the same scope before any field is resolved.
	structNames map[string]StructId
	enumNames   map[string]EnumId

	builtins map[string]*BuiltinSignature

	// singleton TypeIds for the types that appear often enough to be
	// worth caching outside the hash-cons map lookup.
	unitID  TypeId
	neverID TypeId
	strID   TypeId
}

// NewContext builds an empty Context with the primitive types pre-interned
// and the builtin runtime surface loaded from the embedded table.
func NewContext() *Context {
	c := &Context{
		table:       make(map[key]TypeId),
		structNames: make(map[string]StructId),
		enumNames:   make(map[string]EnumId),
	}
	for p := I32; p <= Str; p++ {
		c.intern(Type{Kind: KindPrimitive, Primitive: p})
	}
	c.unitID = c.intern(Type{Kind: KindUnit})
	c.neverID = c.intern(Type{Kind: KindNever})
	c.strID, _ = c.Lookup(Type{Kind: KindPrimitive, Primitive: Str})
	c.builtins = loadBuiltinTable(c)
	return c
}

func (c *Context) intern(t Type) TypeId {
	if id, ok := c.table[t]; ok {
		return id
	}
	id := TypeId(len(c.types))
	c.types = append(c.types, t)
	c.table[t] = id
	return id
}

// GetID interns t if necessary and returns its canonical TypeId. This is
// the only way a new Type value enters the table after construction.
func (c *Context) GetID(t Type) TypeId {
	return c.intern(t)
}

// Lookup returns t's TypeId without interning; ok is false if t was never
// interned.
func (c *Context) Lookup(t Type) (TypeId, bool) {
	id, ok := c.table[t]
	return id, ok
}

// Type returns the Type value behind id. Panics on an invalid/out-of-range
// id — every live TypeId in HIR/MIR is expected to have come from this
// same Context.
func (c *Context) Type(id TypeId) Type {
	return c.types[int(id)]
}

func (c *Context) Unit() TypeId  { return c.unitID }
func (c *Context) Never() TypeId { return c.neverID }
func (c *Context) Str() TypeId   { return c.strID }

// Primitive returns the TypeId for a named primitive ("i32", "bool", ...).
func (c *Context) Primitive(name string) (TypeId, bool) {
	for p, n := range primitiveNames {
		if n == name {
			return c.intern(Type{Kind: KindPrimitive, Primitive: p}), true
		}
	}
	return Invalid, false
}

// Reference returns the TypeId for `&target` / `&mut target`.
func (c *Context) Reference(target TypeId, mutable bool) TypeId {
	return c.intern(Type{Kind: KindReference, RefTarget: target, RefMut: mutable})
}

// Array returns the TypeId for `[elem; length]`.
func (c *Context) Array(elem TypeId, length uint64) TypeId {
	return c.intern(Type{Kind: KindArray, ElemType: elem, ArrayLen: length})
}

// BuiltinString returns the TypeId for the opaque `String` type.
func (c *Context) BuiltinString() TypeId {
	return c.intern(Type{Kind: KindBuiltinString})
}

// RegisterStruct allocates a fresh StructId with an empty field list
// (pass 1, spec.md §4.1). ok is false if name is already registered.
func (c *Context) RegisterStruct(name string) (StructId, bool) {
	if _, exists := c.structNames[name]; exists {
		return 0, false
	}
	id := StructId(len(c.structs))
	c.structs = append(c.structs, StructInfo{Name: name})
	c.structNames[name] = id
	return id, true
}

// RegisterEnum allocates a fresh EnumId with an empty variant list.
func (c *Context) RegisterEnum(name string) (EnumId, bool) {
	if _, exists := c.enumNames[name]; exists {
		return 0, false
	}
	id := EnumId(len(c.enums))
	c.enums = append(c.enums, EnumInfo{Name: name})
	c.enumNames[name] = id
	return id, true
}

// SetStructFields writes the resolved field list back for a struct
// previously registered with RegisterStruct (pass 3).
func (c *Context) SetStructFields(id StructId, fields []FieldInfo) {
	c.structs[int(id)].Fields = fields
}

// SetEnumVariants writes the resolved variant list back for an enum.
func (c *Context) SetEnumVariants(id EnumId, variants []VariantInfo) {
	c.enums[int(id)].Variants = variants
}

func (c *Context) Struct(id StructId) *StructInfo { return &c.structs[int(id)] }
func (c *Context) Enum(id EnumId) *EnumInfo       { return &c.enums[int(id)] }

// LookupStructName returns the StructId registered under name, if any.
func (c *Context) LookupStructName(name string) (StructId, bool) {
	id, ok := c.structNames[name]
	return id, ok
}

// LookupEnumName returns the EnumId registered under name, if any.
func (c *Context) LookupEnumName(name string) (EnumId, bool) {
	id, ok := c.enumNames[name]
	return id, ok
}

// Builtin looks up a builtin function/method signature by its fully
// qualified name ("print", "String::from", "String::append", ...).
func (c *Context) Builtin(name string) (*BuiltinSignature, bool) {
	sig, ok := c.builtins[name]
	return sig, ok
}

// BuiltinNames returns every registered builtin name, used by pass 2 to
// seed the root scope's value namespace.
func (c *Context) BuiltinNames() []string {
	names := make([]string, 0, len(c.builtins))
	for name := range c.builtins {
		names = append(names, name)
	}
	return names
}

// Display renders id back to Rx surface syntax, used in diagnostic
// messages (e.g. TypeMismatch's "expected i32, found bool").
func (c *Context) Display(id TypeId) string {
	if id == Invalid {
		return "<unknown>"
	}
	t := c.Type(id)
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive.String()
	case KindUnit:
		return "()"
	case KindNever:
		return "!"
	case KindBuiltinString:
		return "String"
	case KindReference:
		if t.RefMut {
			return "&mut " + c.Display(t.RefTarget)
		}
		return "&" + c.Display(t.RefTarget)
	case KindArray:
		return fmt.Sprintf("[%s; %d]", c.Display(t.ElemType), t.ArrayLen)
	case KindStruct:
		return c.structs[int(t.Struct)].Name
	case KindEnum:
		return c.enums[int(t.Enum)].Name
	case KindUnderscore:
		return "_"
	default:
		return "<?>"
	}
}

// parsePrimitiveName is used by the builtin table loader to turn a YAML
// type string ("i32", "&str", "String", "()") into a TypeId.
func parsePrimitiveName(c *Context, name string) (TypeId, error) {
	name = strings.TrimSpace(name)
	mutable := false
	for strings.HasPrefix(name, "&") {
		name = strings.TrimPrefix(name, "&")
		name = strings.TrimSpace(name)
		if strings.HasPrefix(name, "mut ") {
			mutable = true
			name = strings.TrimPrefix(name, "mut ")
		}
		inner, err := parsePrimitiveName(c, name)
		if err != nil {
			return Invalid, err
		}
		return c.Reference(inner, mutable), nil
	}
	switch name {
	case "()":
		return c.Unit(), nil
	case "!":
		return c.Never(), nil
	case "String":
		return c.BuiltinString(), nil
	}
	if id, ok := c.Primitive(name); ok {
		return id, nil
	}
	return Invalid, fmt.Errorf("unknown builtin type name %q", name)
}
