package parser

import (
	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/token"
)

// parseExpr parses a full expression, loosest productions first: raise and
// the keyword forms, then handle, orelse, andalso, type constraints, and
// finally flat application sequences.
func (p *Parser) parseExpr() (ast.Expr, *diagnostics.Diagnostic) {
	if d := p.enter(); d != nil {
		return ast.Expr{}, d
	}
	defer p.leave()

	start := p.curToken.Span
	switch p.curToken.Kind {
	case token.RAISE:
		p.nextToken()
		inner, d := p.parseExpr()
		if d != nil {
			return ast.Expr{}, d
		}
		return ast.NewExpr(ast.Raise{Expr: inner}, start.Plus(inner.Span)), nil

	case token.FN:
		p.nextToken()
		rules, d := p.parseMatch()
		if d != nil {
			return ast.Expr{}, d
		}
		return ast.NewExpr(ast.Fn{Rules: rules}, start.Plus(rules[len(rules)-1].Span)), nil

	case token.CASE:
		p.nextToken()
		scrut, d := p.parseExpr()
		if d != nil {
			return ast.Expr{}, d
		}
		if _, d := p.expect(token.OF); d != nil {
			return ast.Expr{}, d
		}
		rules, d := p.parseMatch()
		if d != nil {
			return ast.Expr{}, d
		}
		return ast.NewExpr(ast.CaseExpr{Scrutinee: scrut, Rules: rules},
			start.Plus(rules[len(rules)-1].Span)), nil

	case token.IF:
		p.nextToken()
		cond, d := p.parseExpr()
		if d != nil {
			return ast.Expr{}, d
		}
		if _, d := p.expect(token.THEN); d != nil {
			return ast.Expr{}, d
		}
		then, d := p.parseExpr()
		if d != nil {
			return ast.Expr{}, d
		}
		if _, d := p.expect(token.ELSE); d != nil {
			return ast.Expr{}, d
		}
		els, d := p.parseExpr()
		if d != nil {
			return ast.Expr{}, d
		}
		return ast.NewExpr(ast.If{Cond: cond, Then: then, Else: els}, start.Plus(els.Span)), nil

	case token.WHILE:
		p.nextToken()
		cond, d := p.parseExpr()
		if d != nil {
			return ast.Expr{}, d
		}
		if _, d := p.expect(token.DO); d != nil {
			return ast.Expr{}, d
		}
		body, d := p.parseExpr()
		if d != nil {
			return ast.Expr{}, d
		}
		return ast.NewExpr(ast.While{Cond: cond, Body: body}, start.Plus(body.Span)), nil
	}
	return p.parseHandleLevel()
}

func (p *Parser) parseHandleLevel() (ast.Expr, *diagnostics.Diagnostic) {
	e, d := p.parseOrelseLevel()
	if d != nil {
		return ast.Expr{}, d
	}
	if !p.curTokenIs(token.HANDLE) {
		return e, nil
	}
	p.nextToken()
	rules, d := p.parseMatch()
	if d != nil {
		return ast.Expr{}, d
	}
	return ast.NewExpr(ast.Handle{Expr: e, Rules: rules},
		e.Span.Plus(rules[len(rules)-1].Span)), nil
}

func (p *Parser) parseOrelseLevel() (ast.Expr, *diagnostics.Diagnostic) {
	left, d := p.parseAndalsoLevel()
	if d != nil {
		return ast.Expr{}, d
	}
	for p.curTokenIs(token.ORELSE) {
		p.nextToken()
		right, d := p.parseAndalsoLevel()
		if d != nil {
			return ast.Expr{}, d
		}
		left = ast.NewExpr(ast.Orelse{Left: left, Right: right}, left.Span.Plus(right.Span))
	}
	return left, nil
}

func (p *Parser) parseAndalsoLevel() (ast.Expr, *diagnostics.Diagnostic) {
	left, d := p.parseConstraintLevel()
	if d != nil {
		return ast.Expr{}, d
	}
	for p.curTokenIs(token.ANDALSO) {
		p.nextToken()
		right, d := p.parseConstraintLevel()
		if d != nil {
			return ast.Expr{}, d
		}
		left = ast.NewExpr(ast.Andalso{Left: left, Right: right}, left.Span.Plus(right.Span))
	}
	return left, nil
}

func (p *Parser) parseConstraintLevel() (ast.Expr, *diagnostics.Diagnostic) {
	e, d := p.parseFlatApp()
	if d != nil {
		return ast.Expr{}, d
	}
	for p.curTokenIs(token.COLON) {
		p.nextToken()
		ty, d := p.parseType()
		if d != nil {
			return ast.Expr{}, d
		}
		e = ast.NewExpr(ast.Constraint{Expr: e, Ty: ty}, e.Span.Plus(ty.Span))
	}
	return e, nil
}

// parseFlatApp collects a run of atomic expressions into a FlatApp for the
// elaborator's fixity resolver; a single atom passes through unchanged.
func (p *Parser) parseFlatApp() (ast.Expr, *diagnostics.Diagnostic) {
	var atoms []ast.Expr
	for p.isExprAtomStart() {
		a, d := p.parseExprAtom()
		if d != nil {
			return ast.Expr{}, d
		}
		atoms = append(atoms, a)
	}
	switch len(atoms) {
	case 0:
		return ast.Expr{}, p.errf("expected an expression, found %q", p.describe(p.curToken))
	case 1:
		return atoms[0], nil
	}
	sp := atoms[0].Span.Plus(atoms[len(atoms)-1].Span)
	return ast.NewExpr(ast.FlatApp{Exprs: atoms}, sp), nil
}

func (p *Parser) isExprAtomStart() bool {
	switch p.curToken.Kind {
	case token.IDENT, token.IDENTSYM, token.EQUALS, token.OP,
		token.INT, token.STRING, token.CHAR,
		token.LPAREN, token.LBRACE, token.LBRACKET,
		token.LET, token.SELECTOR:
		return true
	}
	return false
}

func (p *Parser) parseExprAtom() (ast.Expr, *diagnostics.Diagnostic) {
	if d := p.enter(); d != nil {
		return ast.Expr{}, d
	}
	defer p.leave()

	start := p.curToken.Span
	switch p.curToken.Kind {
	case token.IDENT, token.IDENTSYM, token.EQUALS:
		e := ast.NewExpr(ast.Var{Name: p.intern(p.curToken)}, start)
		p.nextToken()
		return e, nil

	case token.OP:
		// `op id` strips id's operator status. The resolver only treats
		// bare Var atoms as infix candidates, so a one-element FlatApp
		// wrapper hides the Var from it while elaborating identically.
		p.nextToken()
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.IDENTSYM) && !p.curTokenIs(token.EQUALS) {
			return ast.Expr{}, p.errf("expected an identifier after op")
		}
		v := ast.NewExpr(ast.Var{Name: p.intern(p.curToken)}, start.Plus(p.curToken.Span))
		p.nextToken()
		return ast.NewExpr(ast.FlatApp{Exprs: []ast.Expr{v}}, v.Span), nil

	case token.INT:
		v, d := parseInt(p.curToken)
		if d != nil {
			return ast.Expr{}, d
		}
		e := ast.NewExpr(ast.ConstExpr{Value: ast.Const{Kind: ast.ConstInt, Int: v}}, start)
		p.nextToken()
		return e, nil

	case token.STRING:
		e := ast.NewExpr(ast.ConstExpr{Value: ast.Const{Kind: ast.ConstString, Str: p.curToken.Text}}, start)
		p.nextToken()
		return e, nil

	case token.CHAR:
		r := rune(0)
		for _, ch := range p.curToken.Text {
			r = ch
			break
		}
		e := ast.NewExpr(ast.ConstExpr{Value: ast.Const{Kind: ast.ConstChar, Chr: r}}, start)
		p.nextToken()
		return e, nil

	case token.SELECTOR:
		p.nextToken()
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.INT) {
			return ast.Expr{}, p.errf("expected a record label after #")
		}
		e := ast.NewExpr(ast.Selector{Label: p.intern(p.curToken)}, start.Plus(p.curToken.Span))
		p.nextToken()
		return e, nil

	case token.LET:
		p.nextToken()
		decls, d := p.parseDeclSeq(token.IN)
		if d != nil {
			return ast.Expr{}, d
		}
		if _, d := p.expect(token.IN); d != nil {
			return ast.Expr{}, d
		}
		body, d := p.parseExprSeq()
		if d != nil {
			return ast.Expr{}, d
		}
		end, d := p.expect(token.END)
		if d != nil {
			return ast.Expr{}, d
		}
		return ast.NewExpr(ast.LetExpr{Decls: decls, Body: body}, start.Plus(end.Span)), nil

	case token.LPAREN:
		return p.parseParenExpr()

	case token.LBRACKET:
		p.nextToken()
		var elems []ast.Expr
		if !p.curTokenIs(token.RBRACKET) {
			for {
				e, d := p.parseExpr()
				if d != nil {
					return ast.Expr{}, d
				}
				elems = append(elems, e)
				if !p.curTokenIs(token.COMMA) {
					break
				}
				p.nextToken()
			}
		}
		end, d := p.expect(token.RBRACKET)
		if d != nil {
			return ast.Expr{}, d
		}
		return ast.NewExpr(ast.ListExpr{Elems: elems}, start.Plus(end.Span)), nil

	case token.LBRACE:
		return p.parseRecordExpr()
	}
	return ast.Expr{}, p.errf("expected an expression, found %q", p.describe(p.curToken))
}

// parseParenExpr handles every parenthesized form: `()` unit, `(e)`
// grouping, `(e1, e2, ...)` tuples, and `(e1; e2; ...)` sequences.
func (p *Parser) parseParenExpr() (ast.Expr, *diagnostics.Diagnostic) {
	start := p.curToken.Span
	p.nextToken()
	if p.curTokenIs(token.RPAREN) {
		end := p.curToken.Span
		p.nextToken()
		return ast.NewExpr(ast.ConstExpr{Value: ast.Const{Kind: ast.ConstUnit}}, start.Plus(end)), nil
	}
	first, d := p.parseExpr()
	if d != nil {
		return ast.Expr{}, d
	}
	switch p.curToken.Kind {
	case token.COMMA:
		elems := []ast.Expr{first}
		for p.curTokenIs(token.COMMA) {
			p.nextToken()
			e, d := p.parseExpr()
			if d != nil {
				return ast.Expr{}, d
			}
			elems = append(elems, e)
		}
		end, d := p.expect(token.RPAREN)
		if d != nil {
			return ast.Expr{}, d
		}
		rows := make([]ast.Row[ast.Expr], len(elems))
		for i, e := range elems {
			rows[i] = ast.Row[ast.Expr]{Label: p.tbl.TupleLabel(uint32(i + 1)), Data: e, Span: e.Span}
		}
		return ast.NewExpr(ast.RecordExpr{Rows: rows}, start.Plus(end.Span)), nil

	case token.SEMI:
		exprs := []ast.Expr{first}
		for p.curTokenIs(token.SEMI) {
			p.nextToken()
			e, d := p.parseExpr()
			if d != nil {
				return ast.Expr{}, d
			}
			exprs = append(exprs, e)
		}
		end, d := p.expect(token.RPAREN)
		if d != nil {
			return ast.Expr{}, d
		}
		return ast.NewExpr(ast.SeqExpr{Exprs: exprs}, start.Plus(end.Span)), nil
	}
	end, d := p.expect(token.RPAREN)
	if d != nil {
		return ast.Expr{}, d
	}
	first.Span = start.Plus(end.Span)
	return first, nil
}

// parseRecordExpr parses `{label = expr, ...}`; bare `{}` is sugar for the
// unit constant.
func (p *Parser) parseRecordExpr() (ast.Expr, *diagnostics.Diagnostic) {
	start := p.curToken.Span
	p.nextToken()
	if p.curTokenIs(token.RBRACE) {
		end := p.curToken.Span
		p.nextToken()
		return ast.NewExpr(ast.ConstExpr{Value: ast.Const{Kind: ast.ConstUnit}}, start.Plus(end)), nil
	}
	var rows []ast.Row[ast.Expr]
	for {
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.INT) {
			return ast.Expr{}, p.errf("expected a record label, found %q", p.describe(p.curToken))
		}
		label := p.curToken
		p.nextToken()
		if _, d := p.expect(token.EQUALS); d != nil {
			return ast.Expr{}, d
		}
		e, d := p.parseExpr()
		if d != nil {
			return ast.Expr{}, d
		}
		rows = append(rows, ast.Row[ast.Expr]{Label: p.intern(label), Data: e, Span: label.Span.Plus(e.Span)})
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	end, d := p.expect(token.RBRACE)
	if d != nil {
		return ast.Expr{}, d
	}
	return ast.NewExpr(ast.RecordExpr{Rows: rows}, start.Plus(end.Span)), nil
}

// parseExprSeq parses the body of a let: one or more expressions separated
// by semicolons, folded into a SeqExpr when there are several.
func (p *Parser) parseExprSeq() (ast.Expr, *diagnostics.Diagnostic) {
	first, d := p.parseExpr()
	if d != nil {
		return ast.Expr{}, d
	}
	if !p.curTokenIs(token.SEMI) {
		return first, nil
	}
	exprs := []ast.Expr{first}
	for p.curTokenIs(token.SEMI) {
		p.nextToken()
		e, d := p.parseExpr()
		if d != nil {
			return ast.Expr{}, d
		}
		exprs = append(exprs, e)
	}
	return ast.NewExpr(ast.SeqExpr{Exprs: exprs}, first.Span.Plus(exprs[len(exprs)-1].Span)), nil
}

// parseMatch parses `pat => expr | pat => expr | ...`.
func (p *Parser) parseMatch() ([]ast.Rule, *diagnostics.Diagnostic) {
	var rules []ast.Rule
	for {
		pat, d := p.parsePat()
		if d != nil {
			return nil, d
		}
		if _, d := p.expect(token.DARROW); d != nil {
			return nil, d
		}
		expr, d := p.parseExpr()
		if d != nil {
			return nil, d
		}
		rules = append(rules, ast.Rule{Pat: pat, Expr: expr, Span: pat.Span.Plus(expr.Span)})
		if !p.curTokenIs(token.BAR) {
			return rules, nil
		}
		p.nextToken()
	}
}
