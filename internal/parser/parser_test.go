package parser

import (
	"testing"

	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(diag.NewSourceFile("<test>", src))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors().All())
	}
	return prog
}

func TestParseFunctionWithParamsAndReturnType(t *testing.T) {
	prog := parseProgram(t, "fn add(a: i32, b: i32) -> i32 { a }")
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(prog.Items))
	}
	fn, ok := prog.Items[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", prog.Items[0])
	}
	if fn.Name != "add" {
		t.Fatalf("expected function name %q, got %q", "add", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.RetType == nil {
		t.Fatalf("expected a non-nil return type")
	}
}

func TestParseFunctionWithImplicitUnitReturn(t *testing.T) {
	prog := parseProgram(t, "fn f() { }")
	fn := prog.Items[0].(*ast.FunctionDecl)
	if fn.RetType != nil {
		t.Fatalf("expected a nil RetType for an implicit unit return, got %v", fn.RetType)
	}
}

func TestParseStructWithFields(t *testing.T) {
	prog := parseProgram(t, "struct Point { x: i32, y: i32 }")
	s, ok := prog.Items[0].(*ast.StructDecl)
	if !ok {
		t.Fatalf("expected *ast.StructDecl, got %T", prog.Items[0])
	}
	if s.Name != "Point" || len(s.Fields) != 2 {
		t.Fatalf("expected struct Point with 2 fields, got %q with %d fields", s.Name, len(s.Fields))
	}
}

func TestParseMethodWithSelfReceiver(t *testing.T) {
	prog := parseProgram(t, "impl Point { fn get(&self) -> i32 { self.x } }")
	impl, ok := prog.Items[0].(*ast.ImplDecl)
	if !ok {
		t.Fatalf("expected *ast.ImplDecl, got %T", prog.Items[0])
	}
	if len(impl.Items) != 1 {
		t.Fatalf("expected 1 item in the impl block, got %d", len(impl.Items))
	}
	method, ok := impl.Items[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", impl.Items[0])
	}
	if method.Self == nil {
		t.Fatalf("expected the method to have a self receiver")
	}
}

func TestParseBinaryExpressionPrecedence(t *testing.T) {
	prog := parseProgram(t, "fn f() -> i32 { 1 + 2 * 3 }")
	fn := prog.Items[0].(*ast.FunctionDecl)
	tail := fn.Body.Tail
	bin, ok := tail.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected top-level *ast.BinaryExpr, got %T", tail)
	}
	if bin.Op != ast.Add {
		t.Fatalf("expected top-level op to be Add (lowest precedence wins at the root), got %v", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != ast.Mul {
		t.Fatalf("expected the right-hand side to be a nested Mul, got %T", bin.Right)
	}
}

func TestParseReportsSyntaxErrorAndRecoversToNextItem(t *testing.T) {
	p := New(diag.NewSourceFile("<test>", "@ fn ok() { }"))
	prog := p.ParseProgram()
	if !p.Errors().HasErrors() {
		t.Fatalf("expected a syntax error for the stray leading token")
	}
	found := false
	for _, item := range prog.Items {
		if fn, ok := item.(*ast.FunctionDecl); ok && fn.Name == "ok" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected parser to recover past the stray token and still parse the later well-formed function")
	}
}
