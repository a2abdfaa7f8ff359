package hir

import (
	"strings"

	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

// ValueKind distinguishes what a value-namespace entry actually is.
type ValueKind int

const (
	ValueLocal ValueKind = iota
	ValueConst
	ValueFunction
	ValueBuiltin
)

// ValueEntry is one binding in a Scope's value namespace.
type ValueEntry struct {
	Kind     ValueKind
	Local    *Local
	Const    *ConstDecl
	Function *FunctionDecl
	Builtin  string // builtin name, when Kind == ValueBuiltin
}

// TypeEntry is one binding in a Scope's type namespace.
type TypeEntry struct {
	Struct  *StructDecl
	Enum    *EnumDecl
	Builtin bool // true for the predefined `String` type
}

// Scope holds the four independent namespaces spec.md §3.4 describes:
// values (locals/consts/functions), types (structs/enums), traits, and
// associated items (on an impl scope). Grounded on the teacher's
// Scope/ScopeStack in internal/semantic/pass_context.go, generalized from
// one map to four and from a parent *chain walk* to an explicit tree so
// HIR nodes can own their introducing scope directly (spec.md §3.4).
type Scope struct {
	Parent *Scope

	// FunctionWall is true for a function/method body's top scope: value
	// lookup must not continue past it into an enclosing function's
	// locals (no captures, spec.md §3.4), though type/trait lookup still
	// does.
	FunctionWall bool

	// ModuleRoot is the Program's top-level scope, inherited down from
	// whichever ancestor scope set it (the Program root sets its own
	// ModuleRoot to itself; every descendant copies its parent's). A
	// value lookup that stops at a FunctionWall jumps straight here
	// instead of dead-ending: module-level items (functions, consts,
	// builtins) are visible inside any function body regardless of
	// nesting depth, while an *enclosing* function's own locals — the
	// scopes strictly between the wall and ModuleRoot — stay invisible,
	// which is what "no captures" actually means.
	ModuleRoot *Scope

	values map[string]*ValueEntry
	types_ map[string]*TypeEntry
	traits map[string]*TraitDecl
	assocs map[string]*ValueEntry // associated items, keyed by name, on an impl/trait scope
}

// NewScope creates a child scope of parent (nil for the root scope).
func NewScope(parent *Scope, functionWall bool) *Scope {
	s := &Scope{
		Parent:       parent,
		FunctionWall: functionWall,
		values:       make(map[string]*ValueEntry),
		types_:       make(map[string]*TypeEntry),
		traits:       make(map[string]*TraitDecl),
		assocs:       make(map[string]*ValueEntry),
	}
	if parent != nil {
		s.ModuleRoot = parent.ModuleRoot
	}
	return s
}

// DefineValue adds name to this scope's value namespace. Returns false if
// name is already bound in this exact scope (caller raises
// MultipleDefinition).
func (s *Scope) DefineValue(name string, entry *ValueEntry) bool {
	if _, exists := s.values[name]; exists {
		return false
	}
	s.values[name] = entry
	return true
}

// LookupValue walks parent links looking for name in the value namespace.
// On reaching a function wall it checks that scope itself (the current
// function's own params/self), then, if still not found, jumps straight
// to ModuleRoot rather than continuing through the scopes in between —
// those belong to an enclosing function and must stay invisible, while
// module-level items must stay visible regardless of nesting depth.
func (s *Scope) LookupValue(name string) (*ValueEntry, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if e, ok := sc.values[name]; ok {
			return e, true
		}
		if sc.FunctionWall {
			if sc.ModuleRoot != nil && sc.ModuleRoot != sc {
				return sc.ModuleRoot.LookupValue(name)
			}
			break
		}
	}
	return nil, false
}

// DefineType adds name to this scope's type namespace.
func (s *Scope) DefineType(name string, entry *TypeEntry) bool {
	if _, exists := s.types_[name]; exists {
		return false
	}
	s.types_[name] = entry
	return true
}

// LookupType walks parent links looking for name in the type namespace.
// Types are visible across function walls (no shadowing rule for them).
func (s *Scope) LookupType(name string) (*TypeEntry, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if e, ok := sc.types_[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// DefineTrait adds name to this scope's trait namespace.
func (s *Scope) DefineTrait(name string, decl *TraitDecl) bool {
	if _, exists := s.traits[name]; exists {
		return false
	}
	s.traits[name] = decl
	return true
}

// LookupTrait walks parent links looking for name in the trait namespace.
func (s *Scope) LookupTrait(name string) (*TraitDecl, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if d, ok := sc.traits[name]; ok {
			return d, true
		}
	}
	return nil, false
}

// DefineAssoc adds name to this scope's associated-item namespace (methods
// and associated consts/functions declared inside an impl/trait block).
// This namespace is never walked through parent links by LookupAssocLocal: a
// caller always looks it up directly on the impl/trait scope it belongs
// to, found via the struct/enum's registered impl table (internal/sema).
func (s *Scope) DefineAssoc(name string, entry *ValueEntry) bool {
	if _, exists := s.assocs[name]; exists {
		return false
	}
	s.assocs[name] = entry
	return true
}

func (s *Scope) LookupAssocLocal(name string) (*ValueEntry, bool) {
	e, ok := s.assocs[name]
	return e, ok
}

// BuiltinRootScope builds the predefined root scope exporting every
// builtin function/method and the `String` type (spec.md §3.4).
func BuiltinRootScope(ctx *types.Context) *Scope {
	root := NewScope(nil, false)
	for _, name := range ctx.BuiltinNames() {
		if strings.Contains(name, "::") || strings.HasPrefix(name, "<") {
			// Associated items (`String::from`, `<u32>::to_string`, ...) are
			// resolved via ctx.Builtin by full path, not through the scope's
			// plain-identifier value namespace.
			continue
		}
		root.DefineValue(name, &ValueEntry{Kind: ValueBuiltin, Builtin: name})
	}
	root.DefineType("String", &TypeEntry{Builtin: true})
	return root
}
