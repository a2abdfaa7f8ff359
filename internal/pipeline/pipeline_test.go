package pipeline

import (
	"strings"
	"testing"

	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/mir"
)

type mainFnStats struct {
	getIntCalls     int
	printlnIntCalls int
	exitCalls       int
	adds            int
}

func collectMainStats(fn *mir.MirFunction) *mainFnStats {
	s := &mainFnStats{}
	for _, blk := range fn.Blocks {
		for _, st := range blk.Statements {
			switch st.Kind {
			case mir.StmtCall:
				if st.CallTarget.Kind == mir.CallBuiltin {
					switch st.CallTarget.Builtin {
					case "getInt":
						s.getIntCalls++
					case "printlnInt":
						s.printlnIntCalls++
					case "exit":
						s.exitCalls++
					}
				}
			case mir.StmtDefine:
				if st.RValue.Kind == mir.RValBinary && st.RValue.BinOp == mir.Add {
					s.adds++
				}
			}
		}
	}
	return s
}

func mustSucceed(t *testing.T, source string) *Result {
	t.Helper()
	res, bag := RunSemantic("<test>", source, Options{})
	if bag != nil {
		t.Fatalf("expected no diagnostics, got:\n%s", diag.FormatAll(bag.All()))
	}
	return res
}

func mustFail(t *testing.T, source string) []*diag.Diagnostic {
	t.Helper()
	res, bag := RunSemantic("<test>", source, Options{})
	if bag == nil {
		t.Fatalf("expected diagnostics, pipeline succeeded")
	}
	if res != nil {
		t.Fatalf("expected a nil Result alongside a failing bag")
	}
	return bag.All()
}

func hasKind(diags []*diag.Diagnostic, kind diag.Kind) bool {
	for _, d := range diags {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Scenario 1 (spec.md §8): arithmetic end-to-end, passes 0-9 all succeed
// and the lowered main contains the expected calls/binary op.
func TestArithmeticEndToEnd(t *testing.T) {
	source := `fn main() { let a: i32 = getInt(); let b: i32 = getInt(); printlnInt(a + b); exit(0); }`

	res, mod, bag := RunIR("<test>", source, Options{})
	if bag != nil {
		t.Fatalf("expected no diagnostics, got:\n%s", diag.FormatAll(bag.All()))
	}
	if res == nil || mod == nil {
		t.Fatalf("expected a Result and MirModule")
	}

	var mainFn *mainFnStats
	for _, fn := range mod.Functions {
		if fn.Name == "main" {
			mainFn = collectMainStats(fn)
			break
		}
	}
	if mainFn == nil {
		t.Fatalf("expected a lowered main function")
	}
	if mainFn.getIntCalls != 2 {
		t.Errorf("expected 2 calls to getInt, got %d", mainFn.getIntCalls)
	}
	if mainFn.adds != 1 {
		t.Errorf("expected 1 Add, got %d", mainFn.adds)
	}
	if mainFn.printlnIntCalls != 1 {
		t.Errorf("expected 1 call to printlnInt, got %d", mainFn.printlnIntCalls)
	}
	if mainFn.exitCalls != 1 {
		t.Errorf("expected 1 call to exit, got %d", mainFn.exitCalls)
	}
}

// Scenario 2: `let a: i32 = true;` is a TypeMismatch on `true`.
func TestTypeMismatch(t *testing.T) {
	source := `fn main() { let a: i32 = true; exit(0); }`
	diags := mustFail(t, source)
	if !hasKind(diags, diag.TypeMismatch) {
		t.Fatalf("expected a TypeMismatch diagnostic, got:\n%s", diag.FormatAll(diags))
	}
}

// Scenario 3: a function declared to return i32 with no path returning a
// value is a MissingReturn on the function.
func TestMissingReturn(t *testing.T) {
	source := `fn f() -> i32 { let x: i32 = 1; } fn main() { exit(0); }`
	diags := mustFail(t, source)
	if !hasKind(diags, diag.MissingReturn) {
		t.Fatalf("expected a MissingReturn diagnostic, got:\n%s", diag.FormatAll(diags))
	}
}

// Scenario 4: a method call on an owned value whose method takes &self
// gets an implicit auto-borrow inserted rather than failing to typecheck.
func TestAutoBorrowMethodCall(t *testing.T) {
	source := `struct A { x: i32 }
impl A { fn get(&self) -> i32 { self.x } }
fn main() { let a: A = A { x: 7 }; printlnInt(a.get()); exit(0); }`
	mustSucceed(t, source)
}

// Scenario 5: a `loop` used as an expression unifies its break values and
// the never-typed infinite-loop fallthrough coerces away.
func TestLoopAsExpressionNeverCoercion(t *testing.T) {
	source := `fn main() { let x: i32 = loop { break 3; }; printlnInt(x); exit(0); }`
	mustSucceed(t, source)
}

// Scenario 6: an impl item whose signature doesn't match its trait's
// declared signature is a TraitItemUnimplemented, not a silent accept.
func TestTraitImplSignatureMismatch(t *testing.T) {
	source := `trait T { fn f(&self) -> i32; }
struct S {}
impl T for S { fn f(&self) -> bool { true } }
fn main() { exit(0); }`
	diags := mustFail(t, source)
	if !hasKind(diags, diag.TraitItemUnimplemented) {
		t.Fatalf("expected a TraitItemUnimplemented diagnostic, got:\n%s", diag.FormatAll(diags))
	}
}

func TestParseErrorHalts(t *testing.T) {
	diags := mustFail(t, `fn main( { exit(0); }`)
	if len(diags) == 0 {
		t.Fatalf("expected parser diagnostics")
	}
}

func TestVerboseLogsOneLinePerStage(t *testing.T) {
	var log strings.Builder
	source := `fn main() { exit(0); }`
	_, bag := RunSemantic("<test>", source, Options{Verbose: true, Log: &log})
	if bag != nil {
		t.Fatalf("expected no diagnostics, got:\n%s", diag.FormatAll(bag.All()))
	}
	out := log.String()
	for _, want := range []string{"parse", "pass 0", "pass 1", "pass 8"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected verbose log to mention %q, got:\n%s", want, out)
		}
	}
}
