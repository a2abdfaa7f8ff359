package types

import "testing"

func TestHashConsDeduplicatesStructurallyEqualTypes(t *testing.T) {
	ctx := NewContext()
	i32, _ := ctx.Primitive("i32")

	a := ctx.Reference(i32, false)
	b := ctx.Reference(i32, false)
	if a != b {
		t.Fatalf("expected two &i32 references to intern to the same TypeId, got %d and %d", a, b)
	}

	mut := ctx.Reference(i32, true)
	if mut == a {
		t.Fatalf("expected &i32 and &mut i32 to be distinct TypeIds")
	}
}

func TestArrayInterningKeysOnElementAndLength(t *testing.T) {
	ctx := NewContext()
	i32, _ := ctx.Primitive("i32")
	u32, _ := ctx.Primitive("u32")

	a3 := ctx.Array(i32, 3)
	a3Again := ctx.Array(i32, 3)
	a4 := ctx.Array(i32, 4)
	b3 := ctx.Array(u32, 3)

	if a3 != a3Again {
		t.Fatalf("expected [i32; 3] to intern identically across calls")
	}
	if a3 == a4 {
		t.Fatalf("expected [i32; 3] and [i32; 4] to be distinct TypeIds")
	}
	if a3 == b3 {
		t.Fatalf("expected [i32; 3] and [u32; 3] to be distinct TypeIds")
	}
}

func TestRegisterStructRejectsDuplicateName(t *testing.T) {
	ctx := NewContext()
	if _, ok := ctx.RegisterStruct("Point"); !ok {
		t.Fatalf("expected first registration of Point to succeed")
	}
	if _, ok := ctx.RegisterStruct("Point"); ok {
		t.Fatalf("expected second registration of Point to fail")
	}
}

func TestDisplayRendersSurfaceSyntax(t *testing.T) {
	ctx := NewContext()
	i32, _ := ctx.Primitive("i32")
	boolTy, _ := ctx.Primitive("bool")

	cases := []struct {
		id   TypeId
		want string
	}{
		{i32, "i32"},
		{ctx.Reference(i32, false), "&i32"},
		{ctx.Reference(i32, true), "&mut i32"},
		{ctx.Array(boolTy, 5), "[bool; 5]"},
		{ctx.Unit(), "()"},
		{ctx.Never(), "!"},
		{ctx.BuiltinString(), "String"},
		{Invalid, "<unknown>"},
	}
	for _, c := range cases {
		if got := ctx.Display(c.id); got != c.want {
			t.Errorf("Display(%v) = %q, want %q", c.id, got, c.want)
		}
	}
}

func TestBuiltinTableLoadsCoreRuntimeSurface(t *testing.T) {
	ctx := NewContext()
	for _, name := range []string{"printlnInt", "getInt", "exit"} {
		if _, ok := ctx.Builtin(name); !ok {
			t.Errorf("expected builtin %q to be registered", name)
		}
	}
	if _, ok := ctx.Builtin("notARealBuiltin"); ok {
		t.Errorf("expected unregistered name to report not-found")
	}
}
