package parser

import (
	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/token"
)

// parsePat parses a full pattern: a flat application sequence, optionally
// constrained by `: ty`.
func (p *Parser) parsePat() (ast.Pat, *diagnostics.Diagnostic) {
	if d := p.enter(); d != nil {
		return ast.Pat{}, d
	}
	defer p.leave()

	pat, d := p.parseFlatPat()
	if d != nil {
		return ast.Pat{}, d
	}
	for p.curTokenIs(token.COLON) {
		p.nextToken()
		ty, d := p.parseType()
		if d != nil {
			return ast.Pat{}, d
		}
		pat = ast.NewPat(ast.ConstraintPat{Pat: pat, Ty: ty}, pat.Span.Plus(ty.Span))
	}
	return pat, nil
}

func (p *Parser) parseFlatPat() (ast.Pat, *diagnostics.Diagnostic) {
	var atoms []ast.Pat
	for p.isPatAtomStart() {
		a, d := p.parsePatAtom()
		if d != nil {
			return ast.Pat{}, d
		}
		atoms = append(atoms, a)
	}
	switch len(atoms) {
	case 0:
		return ast.Pat{}, p.errf("expected a pattern, found %q", p.describe(p.curToken))
	case 1:
		return atoms[0], nil
	}
	sp := atoms[0].Span.Plus(atoms[len(atoms)-1].Span)
	return ast.NewPat(ast.FlatAppPat{Pats: atoms}, sp), nil
}

func (p *Parser) isPatAtomStart() bool {
	switch p.curToken.Kind {
	case token.IDENT, token.IDENTSYM, token.OP, token.WILD,
		token.INT, token.STRING, token.CHAR,
		token.LPAREN, token.LBRACE, token.LBRACKET:
		return true
	}
	return false
}

func (p *Parser) parsePatAtom() (ast.Pat, *diagnostics.Diagnostic) {
	if d := p.enter(); d != nil {
		return ast.Pat{}, d
	}
	defer p.leave()

	start := p.curToken.Span
	switch p.curToken.Kind {
	case token.WILD:
		p.nextToken()
		return ast.NewPat(ast.WildPat{}, start), nil

	case token.IDENT, token.IDENTSYM:
		pat := ast.NewPat(ast.VarPat{Name: p.intern(p.curToken)}, start)
		p.nextToken()
		return pat, nil

	case token.OP:
		p.nextToken()
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.IDENTSYM) {
			return ast.Pat{}, p.errf("expected an identifier after op")
		}
		pat := ast.NewPat(ast.VarPat{Name: p.intern(p.curToken)}, start.Plus(p.curToken.Span))
		p.nextToken()
		return pat, nil

	case token.INT:
		v, d := parseInt(p.curToken)
		if d != nil {
			return ast.Pat{}, d
		}
		pat := ast.NewPat(ast.ConstPat{Value: ast.Const{Kind: ast.ConstInt, Int: v}}, start)
		p.nextToken()
		return pat, nil

	case token.STRING:
		pat := ast.NewPat(ast.ConstPat{Value: ast.Const{Kind: ast.ConstString, Str: p.curToken.Text}}, start)
		p.nextToken()
		return pat, nil

	case token.CHAR:
		r := rune(0)
		for _, ch := range p.curToken.Text {
			r = ch
			break
		}
		pat := ast.NewPat(ast.ConstPat{Value: ast.Const{Kind: ast.ConstChar, Chr: r}}, start)
		p.nextToken()
		return pat, nil

	case token.LPAREN:
		return p.parseParenPat()

	case token.LBRACKET:
		p.nextToken()
		var elems []ast.Pat
		if !p.curTokenIs(token.RBRACKET) {
			for {
				e, d := p.parsePat()
				if d != nil {
					return ast.Pat{}, d
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
			return ast.Pat{}, d
		}
		return ast.NewPat(ast.ListPat{Elems: elems}, start.Plus(end.Span)), nil

	case token.LBRACE:
		return p.parseRecordPat()
	}
	return ast.Pat{}, p.errf("expected a pattern, found %q", p.describe(p.curToken))
}

// parseParenPat handles `()` (the unit constant), `(p)` grouping, and
// `(p1, p2, ...)` tuples.
func (p *Parser) parseParenPat() (ast.Pat, *diagnostics.Diagnostic) {
	start := p.curToken.Span
	p.nextToken()
	if p.curTokenIs(token.RPAREN) {
		end := p.curToken.Span
		p.nextToken()
		return ast.NewPat(ast.ConstPat{Value: ast.Const{Kind: ast.ConstUnit}}, start.Plus(end)), nil
	}
	first, d := p.parsePat()
	if d != nil {
		return ast.Pat{}, d
	}
	if p.curTokenIs(token.COMMA) {
		elems := []ast.Pat{first}
		for p.curTokenIs(token.COMMA) {
			p.nextToken()
			e, d := p.parsePat()
			if d != nil {
				return ast.Pat{}, d
			}
			elems = append(elems, e)
		}
		end, d := p.expect(token.RPAREN)
		if d != nil {
			return ast.Pat{}, d
		}
		rows := make([]ast.Row[ast.Pat], len(elems))
		for i, e := range elems {
			rows[i] = ast.Row[ast.Pat]{Label: p.tbl.TupleLabel(uint32(i + 1)), Data: e, Span: e.Span}
		}
		return ast.NewPat(ast.RecordPat{Rows: rows}, start.Plus(end.Span)), nil
	}
	end, d := p.expect(token.RPAREN)
	if d != nil {
		return ast.Pat{}, d
	}
	first.Span = start.Plus(end.Span)
	return first, nil
}

// parseRecordPat parses `{label = pat, ...}`; a bare label is punning for
// `label = label`.
func (p *Parser) parseRecordPat() (ast.Pat, *diagnostics.Diagnostic) {
	start := p.curToken.Span
	p.nextToken()
	if p.curTokenIs(token.RBRACE) {
		end := p.curToken.Span
		p.nextToken()
		return ast.NewPat(ast.ConstPat{Value: ast.Const{Kind: ast.ConstUnit}}, start.Plus(end)), nil
	}
	var rows []ast.Row[ast.Pat]
	for {
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.INT) {
			return ast.Pat{}, p.errf("expected a record label, found %q", p.describe(p.curToken))
		}
		label := p.curToken
		p.nextToken()
		var pat ast.Pat
		if p.curTokenIs(token.EQUALS) {
			p.nextToken()
			var d *diagnostics.Diagnostic
			pat, d = p.parsePat()
			if d != nil {
				return ast.Pat{}, d
			}
		} else {
			pat = ast.NewPat(ast.VarPat{Name: p.intern(label)}, label.Span)
		}
		rows = append(rows, ast.Row[ast.Pat]{Label: p.intern(label), Data: pat, Span: label.Span.Plus(pat.Span)})
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	end, d := p.expect(token.RBRACE)
	if d != nil {
		return ast.Pat{}, d
	}
	return ast.NewPat(ast.RecordPat{Rows: rows}, start.Plus(end.Span)), nil
}
