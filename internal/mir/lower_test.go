package mir_test

import (
	"testing"

	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/mir"
	"github.com/rogerflowey/rust-compiler-sub004/internal/pipeline"
)

func lower(t *testing.T, source string) *mir.MirModule {
	t.Helper()
	_, mod, bag := pipeline.RunIR("<test>", source, pipeline.Options{})
	if bag != nil {
		t.Fatalf("expected no diagnostics, got:\n%s", diag.FormatAll(bag.All()))
	}
	return mod
}

func findFunction(mod *mir.MirModule, name string) *mir.MirFunction {
	for _, fn := range mod.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// A locally declared `fn` nested inside an if-block must still be
// collected and lowered to its own MirFunction, not silently fall back to
// whatever function happened to be collected first.
func TestNestedLocalFunctionIsLowered(t *testing.T) {
	source := `fn main() {
    let cond: bool = true;
    if cond {
        fn helper() -> i32 { 5 }
        printlnInt(helper());
    }
    exit(0);
}`
	mod := lower(t, source)
	if findFunction(mod, "helper") == nil {
		names := make([]string, len(mod.Functions))
		for i, fn := range mod.Functions {
			names[i] = fn.Name
		}
		t.Fatalf("expected a lowered function named helper, got functions: %v", names)
	}
}

// An `if` used as a value with no destination to write into (here a call
// argument) builds a real two-incoming-edge Phi at the join block, with
// every incoming Temp defined in the block it's attributed to.
func TestIfExpressionBuildsWellFormedPhi(t *testing.T) {
	source := `fn main() {
    let cond: bool = true;
    printlnInt(if cond { 1 } else { 2 });
    exit(0);
}`
	mod := lower(t, source)
	main := findFunction(mod, "main")
	if main == nil {
		t.Fatalf("expected a lowered main function")
	}

	var found bool
	for _, blk := range main.Blocks {
		for _, phi := range blk.Phis {
			found = true
			if len(phi.Incoming) != 2 {
				t.Errorf("expected 2 incoming edges, got %d", len(phi.Incoming))
			}
			for _, inc := range phi.Incoming {
				src := main.Block(inc.Block)
				if !src.Terminated() {
					t.Errorf("phi incoming block %d is not terminated", inc.Block)
				}
				if int(inc.Temp) < 0 || int(inc.Temp) >= len(main.TempTypes) {
					t.Errorf("phi incoming temp %d is out of range", inc.Temp)
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected at least one Phi node in main")
	}
}

// A method on a type whose return is sret-indirect must not have its
// receiver matched against the sret pointer slot's ABI mode.
func TestMethodCallOnSRetReturningTypeKeepsReceiverAligned(t *testing.T) {
	source := `struct Pair { a: i32, b: i32 }
impl Pair {
    fn swapped(&self) -> Pair { Pair { a: self.b, b: self.a } }
    fn first(&self) -> i32 { self.a }
}
fn main() {
    let p: Pair = Pair { a: 1, b: 2 };
    let q: Pair = p.swapped();
    printlnInt(q.first());
    exit(0);
}`
	mod := lower(t, source)
	if findFunction(mod, "Pair::swapped") == nil || findFunction(mod, "Pair::first") == nil {
		t.Fatalf("expected both Pair methods to be lowered")
	}
}

// A `&self`/`&mut self` method call whose receiver the caller never wrote
// an explicit `&`/`&mut` for (pass 6's auto-ref) must still pass the
// receiver's address, not load the struct's bytes into a pointer-typed
// temp: the receiver's Call argument operand has to trace back to a
// RValRef definition over a Place of the receiver's own (non-reference)
// type, never a Load.
func TestMethodCallReceiverAutoRefTakesAddress(t *testing.T) {
	source := `struct A { x: i32 }
impl A {
    fn get(&self) -> i32 { self.x }
}
fn main() {
    let a: A = A { x: 7 };
    printlnInt(a.get());
    exit(0);
}`
	mod := lower(t, source)
	main := findFunction(mod, "main")
	if main == nil {
		t.Fatalf("expected a lowered main function")
	}
	getFn := findFunction(mod, "A::get")
	if getFn == nil {
		t.Fatalf("expected A::get to be lowered")
	}

	var call *mir.Statement
	var callBlock *mir.BasicBlock
	for _, blk := range main.Blocks {
		for i := range blk.Statements {
			st := &blk.Statements[i]
			if st.Kind == mir.StmtCall && st.CallTarget.Kind == mir.CallFunction && st.CallTarget.Function == getFn.ID {
				call = st
				callBlock = blk
			}
		}
	}
	if call == nil {
		t.Fatalf("expected a Call statement targeting A::get")
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 call argument (the receiver), got %d", len(call.Args))
	}
	recv := call.Args[0]
	if recv.Kind != mir.OperandTemp {
		t.Fatalf("expected the receiver to be a temp operand, got %#v", recv)
	}

	var def *mir.Statement
	for i := range callBlock.Statements {
		st := &callBlock.Statements[i]
		if st.Kind == mir.StmtDefine && st.DefineTemp == recv.Temp {
			def = st
		}
	}
	if def == nil {
		t.Fatalf("expected a Define statement for the receiver's temp %d", recv.Temp)
	}
	if def.RValue.Kind != mir.RValRef {
		t.Fatalf("expected the receiver to be defined via RValRef (address-of), got kind %v", def.RValue.Kind)
	}
	if def.RValue.RefMut {
		t.Fatalf("expected an immutable reference for a `&self` receiver")
	}
	if def.RValue.RefPlace.Type == recv.Type {
		t.Fatalf("expected the referenced place's type to be the bare struct, not already a reference")
	}
}
