package lexer

import (
	"testing"

	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	l := New(diag.NewSourceFile("<test>", src))
	toks := l.Tokenize()
	if l.Errors().HasErrors() {
		t.Fatalf("unexpected lex errors for %q: %v", src, l.Errors().All())
	}
	return toks
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, toks []Token, want ...Kind) {
	t.Helper()
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	toks := tokenize(t, "fn main")
	assertKinds(t, toks, KwFn, Ident, EOF)
	if toks[1].Text != "main" {
		t.Fatalf("expected identifier text %q, got %q", "main", toks[1].Text)
	}
}

func TestTokenizeMaximalMunchOnMultiCharOperators(t *testing.T) {
	toks := tokenize(t, "a && b || c == d != e <= f >= g << h >> i")
	assertKinds(t, toks,
		Ident, AmpAmp, Ident, PipePipe, Ident, EqEq, Ident, NotEq, Ident,
		Le, Ident, Ge, Ident, Shl, Ident, Shr, Ident, EOF)
}

func TestTokenizeIntAndStringAndCharLiterals(t *testing.T) {
	toks := tokenize(t, `42 "hi" 'x'`)
	assertKinds(t, toks, IntLiteral, StringLiteral, CharLiteral, EOF)
	if toks[0].Text != "42" {
		t.Fatalf("expected int literal text %q, got %q", "42", toks[0].Text)
	}
}

func TestTokenizeSkipsLineComments(t *testing.T) {
	toks := tokenize(t, "let x // a trailing comment\n= 1;")
	assertKinds(t, toks, KwLet, Ident, Eq, IntLiteral, Semi, EOF)
}

func TestTokenizeSpansCoverExactSourceText(t *testing.T) {
	src := "let count"
	toks := tokenize(t, src)
	ident := toks[1]
	if ident.Kind != Ident {
		t.Fatalf("expected second token to be an identifier, got %s", ident.Kind)
	}
	if src[ident.Start:ident.End] != "count" {
		t.Fatalf("expected span [%d:%d) to cover %q, got %q", ident.Start, ident.End, "count", src[ident.Start:ident.End])
	}
}

func TestLexerReportsIllegalCharacter(t *testing.T) {
	l := New(diag.NewSourceFile("<test>", "let x = 1 ` 2;"))
	l.Tokenize()
	if !l.Errors().HasErrors() {
		t.Fatalf("expected an illegal-character diagnostic for a backtick")
	}
}
