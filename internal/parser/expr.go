package parser

import (
	"strings"

	"github.com/rogerflowey/rust-compiler-sub004/internal/ast"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/lexer"
)

// binOps maps a token kind to its BinOp and binding precedence (higher
// binds tighter). Rx follows ordinary Rust precedence.
var binOps = map[lexer.Kind]struct {
	op   ast.BinOp
	prec int
}{
	lexer.PipePipe: {ast.LogOr, 1},
	lexer.AmpAmp:   {ast.LogAnd, 2},
	lexer.EqEq:     {ast.CmpEq, 3},
	lexer.NotEq:    {ast.CmpNe, 3},
	lexer.Lt:       {ast.CmpLt, 3},
	lexer.Le:       {ast.CmpLe, 3},
	lexer.Gt:       {ast.CmpGt, 3},
	lexer.Ge:       {ast.CmpGe, 3},
	lexer.Pipe:     {ast.BitOr, 4},
	lexer.Caret:    {ast.BitXor, 5},
	lexer.Amp:      {ast.BitAnd, 6},
	lexer.Shl:      {ast.Shl, 7},
	lexer.Shr:      {ast.Shr, 7},
	lexer.Plus:     {ast.Add, 8},
	lexer.Minus:    {ast.Sub, 8},
	lexer.Star:     {ast.Mul, 9},
	lexer.Slash:    {ast.Div, 9},
	lexer.Percent:  {ast.Rem, 9},
}

const castPrec = 10
const assignPrec = 0

// parseExpr parses a full expression, including trailing assignment
// (lowest precedence, right-associative in ordinary Rust; Rx only ever
// needs the single `=` form per spec.md §3.3).
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssign(false)
}

// parseExprNoStruct is used for if/while conditions, where a bare
// `Path { ... }` would otherwise be ambiguous with the following block
// (the same restriction ordinary Rust applies).
func (p *Parser) parseExprNoStruct() ast.Expr {
	return p.parseAssign(true)
}

func (p *Parser) parseAssign(noStruct bool) ast.Expr {
	start := p.cur()
	left := p.parseBinary(0, noStruct)
	if p.at(lexer.Eq) {
		p.advance()
		value := p.parseAssign(noStruct)
		return &ast.AssignExpr{NodeSpan: p.nspan(start), Target: left, Value: value}
	}
	return left
}

func (p *Parser) parseBinary(minPrec int, noStruct bool) ast.Expr {
	start := p.cur()
	left := p.parseCast(noStruct)

	for {
		info, ok := binOps[p.cur().Kind]
		if !ok || info.prec < minPrec {
			return left
		}
		p.advance()
		right := p.parseBinary(info.prec+1, noStruct)
		left = &ast.BinaryExpr{NodeSpan: p.nspan(start), Op: info.op, Left: left, Right: right}
	}
}

func (p *Parser) parseCast(noStruct bool) ast.Expr {
	start := p.cur()
	e := p.parseUnary(noStruct)
	for p.at(lexer.KwAs) {
		p.advance()
		typ := p.parseType()
		e = &ast.CastExpr{NodeSpan: p.nspan(start), Value: e, Type: typ}
	}
	return e
}

func (p *Parser) parseUnary(noStruct bool) ast.Expr {
	start := p.cur()
	switch p.cur().Kind {
	case lexer.Minus:
		p.advance()
		return &ast.UnaryExpr{NodeSpan: p.nspan(start), Op: ast.Neg, Operand: p.parseUnary(noStruct)}
	case lexer.Bang:
		p.advance()
		return &ast.UnaryExpr{NodeSpan: p.nspan(start), Op: ast.Not, Operand: p.parseUnary(noStruct)}
	case lexer.Tilde:
		p.advance()
		return &ast.UnaryExpr{NodeSpan: p.nspan(start), Op: ast.BitNot, Operand: p.parseUnary(noStruct)}
	case lexer.Star:
		p.advance()
		return &ast.DerefExpr{NodeSpan: p.nspan(start), Operand: p.parseUnary(noStruct)}
	case lexer.Amp:
		p.advance()
		mutable := false
		if p.at(lexer.KwMut) {
			p.advance()
			mutable = true
		}
		return &ast.RefExpr{NodeSpan: p.nspan(start), Mutable: mutable, Operand: p.parseUnary(noStruct)}
	default:
		return p.parsePostfix(noStruct)
	}
}

func (p *Parser) parsePostfix(noStruct bool) ast.Expr {
	start := p.cur()
	e := p.parsePrimary(noStruct)

	for {
		switch p.cur().Kind {
		case lexer.Dot:
			p.advance()
			name := p.expect(lexer.Ident).Text
			if p.at(lexer.LParen) {
				args := p.parseArgList()
				e = &ast.MethodCallExpr{NodeSpan: p.nspan(start), Receiver: e, Method: name, Args: args}
			} else {
				e = &ast.FieldExpr{NodeSpan: p.nspan(start), Receiver: e, Name: name}
			}
		case lexer.LBracket:
			p.advance()
			idx := p.parseExpr()
			p.expect(lexer.RBracket)
			e = &ast.IndexExpr{NodeSpan: p.nspan(start), Receiver: e, Index: idx}
		case lexer.LParen:
			args := p.parseArgList()
			e = &ast.CallExpr{NodeSpan: p.nspan(start), Callee: e, Args: args}
		default:
			return e
		}
	}
}

func (p *Parser) parseArgList() []ast.Expr {
	p.expect(lexer.LParen)
	var args []ast.Expr
	first := true
	for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
		if !first {
			p.expect(lexer.Comma)
			if p.at(lexer.RParen) {
				break
			}
		}
		first = false
		args = append(args, p.parseExpr())
	}
	p.expect(lexer.RParen)
	return args
}

func (p *Parser) parsePrimary(noStruct bool) ast.Expr {
	start := p.cur()
	switch p.cur().Kind {
	case lexer.IntLiteral:
		p.advance()
		digits, suffix := splitIntSuffix(start.Text)
		return &ast.LiteralExpr{NodeSpan: p.nspan(start), Kind: ast.IntLit, Text: digits, Suffix: suffix}
	case lexer.CharLiteral:
		p.advance()
		return &ast.LiteralExpr{NodeSpan: p.nspan(start), Kind: ast.CharLit, Text: start.Text}
	case lexer.StringLiteral:
		p.advance()
		return &ast.LiteralExpr{NodeSpan: p.nspan(start), Kind: ast.StringLit, Text: start.Text}
	case lexer.KwTrue:
		p.advance()
		return &ast.LiteralExpr{NodeSpan: p.nspan(start), Kind: ast.BoolLit, Text: "true"}
	case lexer.KwFalse:
		p.advance()
		return &ast.LiteralExpr{NodeSpan: p.nspan(start), Kind: ast.BoolLit, Text: "false"}

	case lexer.LParen:
		p.advance()
		if p.at(lexer.RParen) {
			p.advance()
			return &ast.LiteralExpr{NodeSpan: p.nspan(start), Kind: ast.UnitLit}
		}
		inner := p.parseExpr()
		p.expect(lexer.RParen)
		return inner

	case lexer.LBrace:
		block := p.parseBlock()
		return &ast.BlockExpr{NodeSpan: ast.NodeSpan{Sp: block.Span()}, Block: block}

	case lexer.LBracket:
		return p.parseArrayExpr()

	case lexer.KwIf:
		return p.parseIf()

	case lexer.KwLoop:
		p.advance()
		body := p.parseBlock()
		return &ast.LoopExpr{NodeSpan: p.nspan(start), Body: body}

	case lexer.KwWhile:
		p.advance()
		cond := p.parseExprNoStruct()
		body := p.parseBlock()
		return &ast.WhileExpr{NodeSpan: p.nspan(start), Cond: cond, Body: body}

	case lexer.KwBreak:
		p.advance()
		var value ast.Expr
		if !p.atStmtEnd() {
			value = p.parseExpr()
		}
		return &ast.BreakExpr{NodeSpan: p.nspan(start), Value: value}

	case lexer.KwContinue:
		p.advance()
		return &ast.ContinueExpr{NodeSpan: p.nspan(start)}

	case lexer.KwReturn:
		p.advance()
		var value ast.Expr
		if !p.atStmtEnd() {
			value = p.parseExpr()
		}
		return &ast.ReturnExpr{NodeSpan: p.nspan(start), Value: value}

	case lexer.KwSelfValue:
		p.advance()
		return &ast.PathExpr{NodeSpan: p.nspan(start), Segments: []string{"self"}}

	case lexer.KwSelfType, lexer.Ident:
		return p.parsePathOrStructLit(noStruct)

	default:
		p.errors.Add(diag.SyntaxError, p.span(p.cur()), "expected an expression, found %s", p.cur().Kind)
		p.advance()
		return &ast.LiteralExpr{NodeSpan: p.nspan(start), Kind: ast.UnitLit}
	}
}

// atStmtEnd reports whether the current token can legally follow a
// value-less `break`/`return` (i.e. no operand was written).
func (p *Parser) atStmtEnd() bool {
	switch p.cur().Kind {
	case lexer.Semi, lexer.RBrace, lexer.Comma, lexer.RParen, lexer.RBracket, lexer.EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parsePathOrStructLit(noStruct bool) ast.Expr {
	start := p.cur()
	first := p.advance().Text
	segs := []string{first}
	for p.at(lexer.ColonColon) {
		p.advance()
		segs = append(segs, p.expect(lexer.Ident).Text)
	}

	if !noStruct && p.at(lexer.LBrace) {
		return p.parseStructLitFields(start, segs)
	}
	return &ast.PathExpr{NodeSpan: p.nspan(start), Segments: segs}
}

func (p *Parser) parseStructLitFields(start lexer.Token, path []string) ast.Expr {
	p.expect(lexer.LBrace)
	var fields []ast.FieldInit
	first := true
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		if !first {
			p.expect(lexer.Comma)
			if p.at(lexer.RBrace) {
				break
			}
		}
		first = false
		fstart := p.cur()
		name := p.expect(lexer.Ident).Text
		p.expect(lexer.Colon)
		value := p.parseExpr()
		fields = append(fields, ast.FieldInit{NodeSpan: p.nspan(fstart), Name: name, Value: value})
	}
	p.expect(lexer.RBrace)
	return &ast.StructLitExpr{NodeSpan: p.nspan(start), Path: path, Fields: fields}
}

func (p *Parser) parseArrayExpr() ast.Expr {
	start := p.cur()
	p.expect(lexer.LBracket)
	if p.at(lexer.RBracket) {
		p.advance()
		return &ast.ArrayLitExpr{NodeSpan: p.nspan(start)}
	}
	first := p.parseExpr()
	if p.at(lexer.Semi) {
		p.advance()
		count := p.parseExpr()
		p.expect(lexer.RBracket)
		return &ast.ArrayRepeatExpr{NodeSpan: p.nspan(start), Value: first, Count: count}
	}
	elems := []ast.Expr{first}
	for p.at(lexer.Comma) {
		p.advance()
		if p.at(lexer.RBracket) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(lexer.RBracket)
	return &ast.ArrayLitExpr{NodeSpan: p.nspan(start), Elements: elems}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.cur()
	p.expect(lexer.KwIf)
	cond := p.parseExprNoStruct()
	then := p.parseBlock()
	var elseExpr ast.Expr
	if p.at(lexer.KwElse) {
		p.advance()
		if p.at(lexer.KwIf) {
			elseExpr = p.parseIf()
		} else {
			block := p.parseBlock()
			elseExpr = &ast.BlockExpr{NodeSpan: ast.NodeSpan{Sp: block.Span()}, Block: block}
		}
	}
	return &ast.IfExpr{NodeSpan: p.nspan(start), Cond: cond, Then: then, Else: elseExpr}
}

// splitIntSuffix separates an integer literal's digits from its optional
// type suffix ("i32", "u32", "isize", "usize" — spec.md §3.2).
func splitIntSuffix(text string) (digits, suffix string) {
	for _, s := range []string{"isize", "usize", "i32", "u32"} {
		if strings.HasSuffix(text, s) {
			return text[:len(text)-len(s)], s
		}
	}
	return text, ""
}
