package sema_test

import (
	"strings"
	"testing"

	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/pipeline"
)

func run(t *testing.T, source string) *diag.Bag {
	t.Helper()
	_, bag := pipeline.RunSemantic("<test>", source, pipeline.Options{})
	return bag
}

func hasKind(bag *diag.Bag, k diag.Kind) bool {
	if bag == nil {
		return false
	}
	for _, d := range bag.All() {
		if d.Kind == k {
			return true
		}
	}
	return false
}

func TestConstSelfReferenceIsRejected(t *testing.T) {
	bag := run(t, `
		const N: usize = N + 1;
		fn main() { exit(0); }
	`)
	if bag == nil {
		t.Fatalf("expected a self-referential const to fail")
	}
	found := false
	for _, d := range bag.All() {
		if strings.Contains(d.Message, "depends on itself") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a self-reference diagnostic, got %v", bag.All())
	}
}

func TestConstDivisionByZeroIsRejected(t *testing.T) {
	bag := run(t, `
		const N: usize = 1 / 0;
		fn main() { exit(0); }
	`)
	if bag == nil {
		t.Fatalf("expected division by zero in a const expression to fail")
	}
	found := false
	for _, d := range bag.All() {
		if strings.Contains(d.Message, "division by zero") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a division-by-zero diagnostic, got %v", bag.All())
	}
}

func TestConstUsedAsArrayLengthSucceeds(t *testing.T) {
	bag := run(t, `
		const N: usize = 3;
		fn main() {
			let xs: [i32; N] = [0; N];
			exit(0);
		}
	`)
	if bag != nil {
		t.Fatalf("expected a const-sized array declaration to succeed, got %v", bag.All())
	}
}

func TestBlockScopedShadowingIsAllowed(t *testing.T) {
	bag := run(t, `
		fn main() {
			let x: i32 = 1;
			{
				let x: i32 = 2;
				printlnInt(x);
			}
			printlnInt(x);
			exit(0);
		}
	`)
	if bag != nil {
		t.Fatalf("expected shadowing in a nested block to succeed, got %v", bag.All())
	}
}

func TestAssigningToImmutableBindingIsRejected(t *testing.T) {
	bag := run(t, `
		fn main() {
			let x: i32 = 1;
			x = 2;
			exit(0);
		}
	`)
	if !hasKind(bag, diag.ImmutableVariableMutated) {
		t.Fatalf("expected ImmutableVariableMutated, got %v", bag)
	}
}

func TestMutBindingCanBeReassigned(t *testing.T) {
	bag := run(t, `
		fn main() {
			let mut x: i32 = 1;
			x = 2;
			printlnInt(x);
			exit(0);
		}
	`)
	if bag != nil {
		t.Fatalf("expected reassignment of a mut binding to succeed, got %v", bag.All())
	}
}

func TestTraitDefaultBodyIsInheritedWhenNotOverridden(t *testing.T) {
	bag := run(t, `
		trait Greet {
			fn greeting(&self) -> i32 { 0 }
		}
		struct S {}
		impl Greet for S {}
		fn main() {
			let s: S = S {};
			printlnInt(s.greeting());
			exit(0);
		}
	`)
	if bag != nil {
		t.Fatalf("expected the default trait body to satisfy the impl, got %v", bag.All())
	}
}

func TestTraitMethodParamCountMismatchIsRejected(t *testing.T) {
	bag := run(t, `
		trait T { fn f(&self, x: i32) -> i32; }
		struct S {}
		impl T for S { fn f(&self) -> i32 { 0 } }
		fn main() { exit(0); }
	`)
	if !hasKind(bag, diag.TraitItemUnimplemented) {
		t.Fatalf("expected TraitItemUnimplemented for a parameter-count mismatch, got %v", bag)
	}
}
