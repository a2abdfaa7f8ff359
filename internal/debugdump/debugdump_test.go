package debugdump_test

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/rogerflowey/rust-compiler-sub004/internal/debugdump"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/pipeline"
)

func TestMIRRenderingIsStableAcrossRuns(t *testing.T) {
	source := `fn main() { let a: i32 = getInt(); printlnInt(a); exit(0); }`

	res1, mod1, bag1 := pipeline.RunIR("<test>", source, pipeline.Options{})
	if bag1 != nil {
		t.Fatalf("expected no diagnostics, got:\n%s", diag.FormatAll(bag1.All()))
	}
	res2, mod2, bag2 := pipeline.RunIR("<test>", source, pipeline.Options{})
	if bag2 != nil {
		t.Fatalf("expected no diagnostics, got:\n%s", diag.FormatAll(bag2.All()))
	}

	out1, err := debugdump.MIR(res1.Ctx, mod1)
	if err != nil {
		t.Fatalf("dumping first run: %v", err)
	}
	out2, err := debugdump.MIR(res2.Ctx, mod2)
	if err != nil {
		t.Fatalf("dumping second run: %v", err)
	}
	if out1 != out2 {
		t.Fatalf("expected identical MIR dumps across runs, got:\n%s\n---\n%s", out1, out2)
	}
	if !strings.Contains(out1, "\"name\": \"main\"") {
		t.Fatalf("expected dump to name the main function, got:\n%s", out1)
	}

	funcsOnly, err := debugdump.MIRFunctions(res1.Ctx, mod1)
	if err != nil {
		t.Fatalf("dumping functions only: %v", err)
	}
	if strings.Contains(funcsOnly, "externalFunctions") {
		t.Fatalf("expected MIRFunctions to omit externalFunctions, got:\n%s", funcsOnly)
	}

	helpers, err := debugdump.MIRExternalFunctions(res1.Ctx, mod1)
	if err != nil {
		t.Fatalf("dumping external functions only: %v", err)
	}
	if !strings.Contains(helpers, "getInt") {
		t.Fatalf("expected external-functions dump to mention getInt, got:\n%s", helpers)
	}
}

func TestHIRRendersTopLevelItems(t *testing.T) {
	source := `struct Point { x: i32, y: i32 }
fn main() { exit(0); }`

	res, bag := pipeline.RunSemantic("<test>", source, pipeline.Options{})
	if bag != nil {
		t.Fatalf("expected no diagnostics, got:\n%s", diag.FormatAll(bag.All()))
	}

	out, err := debugdump.HIR(res.Ctx, res.Program)
	if err != nil {
		t.Fatalf("dumping HIR: %v", err)
	}
	if !strings.Contains(out, "\"Point\"") {
		t.Fatalf("expected dump to mention struct Point, got:\n%s", out)
	}
}

// TestMIRDumpMatchesSnapshot freezes the exact JSON shape MIRFunctions
// renders for a small function exercising calls, a binary op and a
// `&self` method on a struct, the same golden-file style the teacher's
// fixture_test.go uses (snaps.MatchSnapshot) for its interpreter output.
func TestMIRDumpMatchesSnapshot(t *testing.T) {
	source := `struct Point { x: i32, y: i32 }
impl Point {
    fn sum(&self) -> i32 { self.x + self.y }
}
fn main() {
    let p: Point = Point { x: 1, y: 2 };
    printlnInt(p.sum());
    exit(0);
}`
	res, mod, bag := pipeline.RunIR("<test>", source, pipeline.Options{})
	if bag != nil {
		t.Fatalf("expected no diagnostics, got:\n%s", diag.FormatAll(bag.All()))
	}
	rendered, err := debugdump.MIRFunctions(res.Ctx, mod)
	if err != nil {
		t.Fatalf("dumping MIR: %v", err)
	}
	snaps.MatchSnapshot(t, "point_sum_mir", rendered)
}
