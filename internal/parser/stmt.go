package parser

import (
	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/lexer"
)

// exprEndsStatement reports whether expr's form never needs a trailing
// `;` to act as a full statement when followed directly by another
// statement or `}` (if/loop/while/block), matching ordinary Rust syntax.
func exprEndsStatement(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IfExpr, *ast.LoopExpr, *ast.WhileExpr, *ast.BlockExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.cur()
	p.expect(lexer.LBrace)

	var stmts []ast.Stmt
	var tail ast.Expr

	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		switch p.cur().Kind {
		case lexer.Semi:
			estart := p.cur()
			p.advance()
			stmts = append(stmts, &ast.EmptyStmt{NodeSpan: p.nspan(estart)})
			continue
		case lexer.KwLet:
			stmts = append(stmts, p.parseLetStmt())
			continue
		case lexer.KwFn, lexer.KwStruct, lexer.KwEnum, lexer.KwConst, lexer.KwTrait, lexer.KwImpl:
			istart := p.cur()
			item := p.parseItem()
			if item != nil {
				stmts = append(stmts, &ast.ItemStmt{NodeSpan: p.nspan(istart), Item: item})
			}
			continue
		}

		estart := p.cur()
		expr := p.parseExpr()

		if p.at(lexer.RBrace) {
			tail = expr
			break
		}
		if p.at(lexer.Semi) {
			p.advance()
			stmts = append(stmts, &ast.ExprStmt{NodeSpan: p.nspan(estart), Expr: expr})
			continue
		}
		if exprEndsStatement(expr) {
			stmts = append(stmts, &ast.ExprStmt{NodeSpan: p.nspan(estart), Expr: expr})
			continue
		}
		// Missing `;` and not block-like: treat as the tail expression and
		// let the closing-brace expectation below surface the real error.
		tail = expr
		break
	}

	p.expect(lexer.RBrace)
	return &ast.Block{NodeSpan: p.nspan(start), Stmts: stmts, Tail: tail}
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	start := p.cur()
	p.expect(lexer.KwLet)
	mutable := false
	if p.at(lexer.KwMut) {
		p.advance()
		mutable = true
	}
	name := p.expect(lexer.Ident).Text

	var typ *ast.TypeNode
	if p.at(lexer.Colon) {
		p.advance()
		typ = p.parseType()
	}

	var value ast.Expr
	if p.at(lexer.Eq) {
		p.advance()
		value = p.parseExpr()
	}
	p.expect(lexer.Semi)
	return &ast.LetStmt{NodeSpan: p.nspan(start), Name: name, Mutable: mutable, Type: typ, Value: value}
}
