package parser

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/lexer"
)

// ParseProgram parses an entire compilation unit.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.cur()
	var items []ast.Item
	for !p.at(lexer.EOF) {
		item := p.parseItem()
		if item != nil {
			items = append(items, item)
		}
	}
	return &ast.Program{NodeSpan: p.nspan(start), Items: items}
}

var itemStarts = []lexer.Kind{
	lexer.KwFn, lexer.KwStruct, lexer.KwEnum, lexer.KwConst, lexer.KwTrait, lexer.KwImpl,
}

func (p *Parser) parseItem() ast.Item {
	switch p.cur().Kind {
	case lexer.KwFn:
		return p.parseFunction()
	case lexer.KwStruct:
		return p.parseStruct()
	case lexer.KwEnum:
		return p.parseEnum()
	case lexer.KwConst:
		return p.parseConst()
	case lexer.KwTrait:
		return p.parseTrait()
	case lexer.KwImpl:
		return p.parseImpl()
	default:
		t := p.cur()
		p.errors.Add(diag.SyntaxError, p.span(t), "expected an item, found %s", t.Kind)
		p.advance()
		p.syncTo(itemStarts...)
		return nil
	}
}

func (p *Parser) parseFunction() *ast.FunctionDecl {
	start := p.cur()
	p.expect(lexer.KwFn)
	name := p.expect(lexer.Ident).Text
	p.expect(lexer.LParen)

	var self *ast.SelfParam
	var params []ast.Param
	first := true
	for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
		if !first {
			p.expect(lexer.Comma)
			if p.at(lexer.RParen) {
				break
			}
		}
		first = false

		if self == nil && len(params) == 0 && p.isSelfParam() {
			self = p.parseSelfParam()
			continue
		}

		if !p.at(lexer.Ident) {
			t := p.cur()
			p.errors.Add(diag.SyntaxError, p.span(t), "expected a parameter name, found %s", t.Kind)
			break
		}

		pstart := p.cur()
		pname := p.expect(lexer.Ident).Text
		p.expect(lexer.Colon)
		ptype := p.parseType()
		params = append(params, ast.Param{NodeSpan: p.nspan(pstart), Name: pname, Type: ptype})
	}
	p.expect(lexer.RParen)

	var ret *ast.TypeNode
	if p.at(lexer.Arrow) {
		p.advance()
		ret = p.parseType()
	}

	var body *ast.Block
	if p.at(lexer.LBrace) {
		body = p.parseBlock()
	} else {
		p.expect(lexer.Semi)
	}

	return &ast.FunctionDecl{
		NodeSpan: p.nspan(start), Name: name, Self: self, Params: params, RetType: ret, Body: body,
	}
}

func (p *Parser) isSelfParam() bool {
	if p.at(lexer.KwSelfValue) {
		return true
	}
	if p.at(lexer.Amp) {
		if p.peekAt(1).Kind == lexer.KwSelfValue {
			return true
		}
		if p.peekAt(1).Kind == lexer.KwMut && p.peekAt(2).Kind == lexer.KwSelfValue {
			return true
		}
	}
	return false
}

func (p *Parser) parseSelfParam() *ast.SelfParam {
	start := p.cur()
	if p.at(lexer.KwSelfValue) {
		p.advance()
		return &ast.SelfParam{NodeSpan: p.nspan(start), Kind: ast.SelfByValue}
	}
	p.expect(lexer.Amp)
	if p.at(lexer.KwMut) {
		p.advance()
		p.expect(lexer.KwSelfValue)
		return &ast.SelfParam{NodeSpan: p.nspan(start), Kind: ast.SelfByRefMut}
	}
	p.expect(lexer.KwSelfValue)
	return &ast.SelfParam{NodeSpan: p.nspan(start), Kind: ast.SelfByRef}
}

func (p *Parser) parseStruct() *ast.StructDecl {
	start := p.cur()
	p.expect(lexer.KwStruct)
	name := p.expect(lexer.Ident).Text
	p.expect(lexer.LBrace)
	var fields []ast.FieldDecl
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		fstart := p.cur()
		fname := p.expect(lexer.Ident).Text
		p.expect(lexer.Colon)
		ftype := p.parseType()
		fields = append(fields, ast.FieldDecl{NodeSpan: p.nspan(fstart), Name: fname, Type: ftype})
		if p.at(lexer.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBrace)
	return &ast.StructDecl{NodeSpan: p.nspan(start), Name: name, Fields: fields}
}

func (p *Parser) parseEnum() *ast.EnumDecl {
	start := p.cur()
	p.expect(lexer.KwEnum)
	name := p.expect(lexer.Ident).Text
	p.expect(lexer.LBrace)
	var variants []ast.VariantDecl
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		vstart := p.cur()
		vname := p.expect(lexer.Ident).Text
		variants = append(variants, ast.VariantDecl{NodeSpan: p.nspan(vstart), Name: vname})
		if p.at(lexer.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBrace)
	return &ast.EnumDecl{NodeSpan: p.nspan(start), Name: name, Variants: variants}
}

func (p *Parser) parseConst() *ast.ConstDecl {
	start := p.cur()
	p.expect(lexer.KwConst)
	name := p.expect(lexer.Ident).Text
	p.expect(lexer.Colon)
	typ := p.parseType()
	p.expect(lexer.Eq)
	value := p.parseExpr()
	p.expect(lexer.Semi)
	return &ast.ConstDecl{NodeSpan: p.nspan(start), Name: name, Type: typ, Value: value}
}

func (p *Parser) parseTrait() *ast.TraitDecl {
	start := p.cur()
	p.expect(lexer.KwTrait)
	name := p.expect(lexer.Ident).Text
	p.expect(lexer.LBrace)
	var items []ast.Item
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		switch p.cur().Kind {
		case lexer.KwFn:
			items = append(items, p.parseFunction())
		case lexer.KwConst:
			items = append(items, p.parseConst())
		default:
			p.errors.Add(diag.SyntaxError, p.span(p.cur()), "expected a trait item, found %s", p.cur().Kind)
			p.advance()
		}
	}
	p.expect(lexer.RBrace)
	return &ast.TraitDecl{NodeSpan: p.nspan(start), Name: name, Items: items}
}

func (p *Parser) parseImpl() *ast.ImplDecl {
	start := p.cur()
	p.expect(lexer.KwImpl)
	first := p.parseType()

	var traitName *string
	forType := first
	if p.at(lexer.KwFor) {
		p.advance()
		named, ok := (*first).(*ast.NamedType)
		if ok && len(named.Segments) >= 1 {
			name := named.Segments[len(named.Segments)-1]
			traitName = &name
		}
		forType = p.parseType()
	}

	p.expect(lexer.LBrace)
	var items []ast.Item
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		switch p.cur().Kind {
		case lexer.KwFn:
			items = append(items, p.parseFunction())
		case lexer.KwConst:
			items = append(items, p.parseConst())
		default:
			p.errors.Add(diag.SyntaxError, p.span(p.cur()), "expected an impl item, found %s", p.cur().Kind)
			p.advance()
		}
	}
	p.expect(lexer.RBrace)
	return &ast.ImplDecl{NodeSpan: p.nspan(start), TraitName: traitName, ForType: forType, Items: items}
}
