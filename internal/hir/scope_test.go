package hir

import (
	"testing"

	"github.com/rogerflowey/rust-compiler-sub004/internal/types"
)

func TestScopeValueLookupStopsAtFunctionWall(t *testing.T) {
	outer := NewScope(nil, false)
	outer.DefineValue("x", &ValueEntry{Kind: ValueLocal})

	wall := NewScope(outer, true)
	if _, ok := wall.LookupValue("x"); ok {
		t.Fatalf("expected lookup of an enclosing local to stop at a function wall")
	}

	nonWall := NewScope(outer, false)
	if _, ok := nonWall.LookupValue("x"); !ok {
		t.Fatalf("expected lookup to see an enclosing local through a non-wall scope")
	}
}

func TestScopeValueLookupReachesModuleRootThroughAFunctionWall(t *testing.T) {
	root := NewScope(nil, false)
	root.ModuleRoot = root
	root.DefineValue("helper", &ValueEntry{Kind: ValueFunction})

	fnBody := NewScope(root, true)
	fnBody.DefineValue("x", &ValueEntry{Kind: ValueLocal})

	if _, ok := fnBody.LookupValue("helper"); !ok {
		t.Fatalf("expected a function body to see a module-level item through its own wall")
	}
	if _, ok := fnBody.LookupValue("x"); !ok {
		t.Fatalf("expected a function body to see its own local")
	}
}

func TestScopeValueLookupSkipsEnclosingFunctionLocalsForNestedFunctions(t *testing.T) {
	root := NewScope(nil, false)
	root.ModuleRoot = root
	root.DefineValue("helper", &ValueEntry{Kind: ValueFunction})

	outerBody := NewScope(root, true)
	outerBody.DefineValue("outerLocal", &ValueEntry{Kind: ValueLocal})

	outerBlock := NewScope(outerBody, false)

	nestedBody := NewScope(outerBlock, true)
	if _, ok := nestedBody.LookupValue("outerLocal"); ok {
		t.Fatalf("expected a nested function to never see an enclosing function's locals")
	}
	if _, ok := nestedBody.LookupValue("helper"); !ok {
		t.Fatalf("expected a nested function to still see module-level items")
	}
}

func TestScopeTypeLookupCrossesFunctionWalls(t *testing.T) {
	outer := NewScope(nil, false)
	outer.DefineType("Point", &TypeEntry{Struct: &StructDecl{Name: "Point"}})

	wall := NewScope(outer, true)
	if _, ok := wall.LookupType("Point"); !ok {
		t.Fatalf("expected type lookup to cross a function wall, unlike value lookup")
	}
}

func TestScopeDefineValueRejectsRedefinitionInSameScope(t *testing.T) {
	s := NewScope(nil, false)
	if !s.DefineValue("x", &ValueEntry{Kind: ValueLocal}) {
		t.Fatalf("expected first definition of x to succeed")
	}
	if s.DefineValue("x", &ValueEntry{Kind: ValueLocal}) {
		t.Fatalf("expected redefinition of x in the same scope to fail")
	}

	child := NewScope(s, false)
	if !child.DefineValue("x", &ValueEntry{Kind: ValueLocal}) {
		t.Fatalf("expected a child scope to be allowed to shadow the same name")
	}
}

func TestScopeAssocLookupIsNotWalkedThroughParent(t *testing.T) {
	parent := NewScope(nil, false)
	parent.DefineAssoc("get", &ValueEntry{Kind: ValueFunction})

	child := NewScope(parent, false)
	if _, ok := child.LookupAssocLocal("get"); ok {
		t.Fatalf("expected LookupAssocLocal to never walk parent links")
	}
	if _, ok := parent.LookupAssocLocal("get"); !ok {
		t.Fatalf("expected LookupAssocLocal to find an assoc item defined directly on the scope")
	}
}

func TestBuiltinRootScopeExportsPlainNamesOnly(t *testing.T) {
	ctx := types.NewContext()
	root := BuiltinRootScope(ctx)

	if _, ok := root.LookupValue("printlnInt"); !ok {
		t.Fatalf("expected printlnInt to be exported as a plain value-namespace builtin")
	}
	if _, ok := root.LookupValue("String::from"); ok {
		t.Fatalf("expected path-qualified builtins like String::from to be excluded from the value namespace")
	}
	if _, ok := root.LookupType("String"); !ok {
		t.Fatalf("expected the builtin String type to be registered in the type namespace")
	}
}
