// Package parser implements a recursive-descent, precedence-climbing
// parser from the Rx token stream (internal/lexer) to the AST
// (internal/ast). Like the lexer, it is an external collaborator per
// spec.md §1: the core only depends on the AST shape it produces.
package parser

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/lexer"
)

// Parser holds a fully materialized token slice and a cursor into it.
// Materializing up front (rather than pulling from the lexer lazily)
// keeps lookahead trivial, matching the teacher's cursor.go approach.
type Parser struct {
	file   *diag.SourceFile
	toks   []lexer.Token
	pos    int
	errors *diag.Bag
}

// New constructs a Parser over file's token stream. Lexer syntax errors
// are merged into the parser's own error bag so a caller sees one
// combined SyntaxError list.
func New(file *diag.SourceFile) *Parser {
	lx := lexer.New(file)
	toks := lx.Tokenize()
	p := &Parser{file: file, toks: toks, errors: diag.NewBag()}
	p.errors.Merge(lx.Errors())
	return p
}

// Errors returns every SyntaxError diagnostic collected while parsing.
func (p *Parser) Errors() *diag.Bag { return p.errors }

func (p *Parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) at(k lexer.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// expect consumes the current token if it matches k, else records a
// SyntaxError and returns the current token unconsumed (so the caller's
// enclosing recovery can decide how far to skip).
func (p *Parser) expect(k lexer.Kind) lexer.Token {
	if p.at(k) {
		return p.advance()
	}
	t := p.cur()
	p.errors.Add(diag.SyntaxError, p.span(t), "expected %s, found %s", k, t.Kind)
	return t
}

func (p *Parser) span(t lexer.Token) diag.Span {
	return diag.Span{File: p.file, Start: t.Start, End: t.End}
}

// spanFrom joins the span of a start token with the end of the
// just-consumed token, used to cover a whole construct.
func (p *Parser) spanFrom(start lexer.Token) diag.Span {
	end := p.toks[p.pos]
	if p.pos > 0 {
		end = p.toks[p.pos-1]
	}
	return diag.Span{File: p.file, Start: start.Start, End: end.End}
}

// syncTo skips tokens until one of the given kinds (or EOF) is current,
// a simple panic-mode recovery used between top-level items and
// statements so one syntax error doesn't cascade into unrelated ones.
func (p *Parser) syncTo(kinds ...lexer.Kind) {
	for !p.at(lexer.EOF) {
		for _, k := range kinds {
			if p.at(k) {
				return
			}
		}
		p.advance()
	}
}
