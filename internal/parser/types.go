package parser

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/lexer"
)

func (p *Parser) nspan(start lexer.Token) ast.NodeSpan {
	return ast.NodeSpan{Sp: p.spanFrom(start)}
}

// parseType parses a TypeNode: primitives/Self/struct-or-enum names,
// `()`, `&T`/`&mut T`, `[T; N]`.
func (p *Parser) parseType() *ast.TypeNode {
	start := p.cur()

	switch {
	case p.at(lexer.LParen):
		p.advance()
		p.expect(lexer.RParen)
		var n ast.TypeNode = &ast.UnitType{NodeSpan: p.nspan(start)}
		return &n

	case p.at(lexer.Amp):
		p.advance()
		mutable := false
		if p.at(lexer.KwMut) {
			p.advance()
			mutable = true
		}
		target := p.parseType()
		var n ast.TypeNode = &ast.RefType{NodeSpan: p.nspan(start), Mutable: mutable, Target: target}
		return &n

	case p.at(lexer.LBracket):
		p.advance()
		elem := p.parseType()
		p.expect(lexer.Semi)
		length := p.parseExpr()
		p.expect(lexer.RBracket)
		var n ast.TypeNode = &ast.ArrayType{NodeSpan: p.nspan(start), Element: elem, Length: length}
		return &n

	case p.at(lexer.KwSelfType):
		p.advance()
		var n ast.TypeNode = &ast.NamedType{NodeSpan: p.nspan(start), Segments: []string{"Self"}}
		return &n

	case p.at(lexer.Ident):
		segs := []string{p.advance().Text}
		for p.at(lexer.ColonColon) {
			p.advance()
			segs = append(segs, p.expect(lexer.Ident).Text)
		}
		var n ast.TypeNode = &ast.NamedType{NodeSpan: p.nspan(start), Segments: segs}
		return &n

	default:
		p.errors.Add(diag.SyntaxError, p.span(p.cur()), "expected a type, found %s", p.cur().Kind)
		var n ast.TypeNode = &ast.NamedType{NodeSpan: p.nspan(start), Segments: []string{"<error>"}}
		return &n
	}
}
