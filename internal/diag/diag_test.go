package diag

import (
	"strings"
	"testing"
)

func TestBagMergePreservesOrderAndHasErrors(t *testing.T) {
	empty := NewBag()
	if empty.HasErrors() {
		t.Fatalf("expected a fresh bag to report no errors")
	}

	a := NewBag()
	a.Add(UndefinedName, NoSpan, "undefined: %s", "foo")
	b := NewBag()
	b.Add(TypeMismatch, NoSpan, "expected %s, found %s", "i32", "bool")

	a.Merge(b)
	if !a.HasErrors() || a.Count() != 2 {
		t.Fatalf("expected 2 diagnostics after merge, got %d", a.Count())
	}
	if a.All()[0].Kind != UndefinedName || a.All()[1].Kind != TypeMismatch {
		t.Fatalf("expected merge to preserve recording order, got %v", a.All())
	}

	// Merging a nil bag (no sub-walk diagnostics collected) is a no-op.
	a.Merge(nil)
	if a.Count() != 2 {
		t.Fatalf("expected Merge(nil) to be a no-op, got count %d", a.Count())
	}
}

func TestSpanJoinCoversBothRanges(t *testing.T) {
	file := NewSourceFile("<test>", "let x = 1;")
	s1 := Span{File: file, Start: 4, End: 5}
	s2 := Span{File: file, Start: 8, End: 9}

	joined := s1.Join(s2)
	if joined.Start != 4 || joined.End != 9 {
		t.Fatalf("expected joined span [4,9), got [%d,%d)", joined.Start, joined.End)
	}

	if NoSpan.Join(s1) != s1 {
		t.Fatalf("expected joining with an invalid span to return the other span unchanged")
	}
}

func TestDiagnosticFormatIncludesPositionAndCaret(t *testing.T) {
	source := "fn main() {\n    let a: i32 = true;\n}\n"
	file := NewSourceFile("<test>", source)
	start := strings.Index(source, "true")
	span := Span{File: file, Start: start, End: start + 4}

	d := New(TypeMismatch, span, "expected %s, found %s", "i32", "bool")
	out := d.Format()

	if !strings.HasPrefix(out, "<test>:2:") {
		t.Fatalf("expected format to start with file:line, got %q", out)
	}
	if !strings.Contains(out, "TypeMismatch: expected i32, found bool") {
		t.Fatalf("expected format to include kind and message, got %q", out)
	}
	if !strings.Contains(out, "let a: i32 = true;") {
		t.Fatalf("expected format to include the source line, got %q", out)
	}
}

func TestFormatAllSeparatesDiagnosticsWithBlankLine(t *testing.T) {
	file := NewSourceFile("<test>", "x\ny\n")
	d1 := New(UndefinedName, Span{File: file, Start: 0, End: 1}, "undefined: x")
	d2 := New(UndefinedName, Span{File: file, Start: 2, End: 3}, "undefined: y")

	out := FormatAll([]*Diagnostic{d1, d2})
	if !strings.Contains(out, "\n\n") {
		t.Fatalf("expected FormatAll to separate diagnostics with a blank line, got %q", out)
	}
}
