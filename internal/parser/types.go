package parser

import (
	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/token"
)

// parseType parses a surface type expression. Arrows associate to the
// right and bind loosest; `*` products next; postfix type-constructor
// application (`int list`) binds tightest.
func (p *Parser) parseType() (ast.Type, *diagnostics.Diagnostic) {
	if d := p.enter(); d != nil {
		return ast.Type{}, d
	}
	defer p.leave()

	left, d := p.parseProductType()
	if d != nil {
		return ast.Type{}, d
	}
	if !p.curTokenIs(token.ARROW) {
		return left, nil
	}
	p.nextToken()
	right, d := p.parseType()
	if d != nil {
		return ast.Type{}, d
	}
	return ast.Type{
		Data: ast.TyCon{Name: p.tbl.Intern("->"), Args: []ast.Type{left, right}},
		Span: left.Span.Plus(right.Span),
	}, nil
}

func (p *Parser) parseProductType() (ast.Type, *diagnostics.Diagnostic) {
	first, d := p.parseAppType()
	if d != nil {
		return ast.Type{}, d
	}
	if !p.isStarToken() {
		return first, nil
	}
	elems := []ast.Type{first}
	for p.isStarToken() {
		p.nextToken()
		next, d := p.parseAppType()
		if d != nil {
			return ast.Type{}, d
		}
		elems = append(elems, next)
	}
	rows := make([]ast.Row[ast.Type], len(elems))
	for i, t := range elems {
		rows[i] = ast.Row[ast.Type]{Label: p.tbl.TupleLabel(uint32(i + 1)), Data: t, Span: t.Span}
	}
	return ast.Type{
		Data: ast.TyRecord{Rows: rows},
		Span: elems[0].Span.Plus(elems[len(elems)-1].Span),
	}, nil
}

func (p *Parser) isStarToken() bool {
	return p.curTokenIs(token.IDENTSYM) && p.curToken.Text == "*"
}

// parseAppType parses an atomic type followed by any number of postfix
// type constructors, e.g. `int list list`.
func (p *Parser) parseAppType() (ast.Type, *diagnostics.Diagnostic) {
	atom, d := p.parseTypeAtom()
	if d != nil {
		return ast.Type{}, d
	}
	for p.curTokenIs(token.IDENT) {
		atom = ast.Type{
			Data: ast.TyCon{Name: p.intern(p.curToken), Args: []ast.Type{atom}},
			Span: atom.Span.Plus(p.curToken.Span),
		}
		p.nextToken()
	}
	return atom, nil
}

func (p *Parser) parseTypeAtom() (ast.Type, *diagnostics.Diagnostic) {
	start := p.curToken.Span
	switch p.curToken.Kind {
	case token.TYVAR:
		t := ast.Type{Data: ast.TyVar{Name: p.intern(p.curToken)}, Span: start}
		p.nextToken()
		return t, nil

	case token.IDENT:
		t := ast.Type{Data: ast.TyCon{Name: p.intern(p.curToken)}, Span: start}
		p.nextToken()
		return t, nil

	case token.LBRACE:
		p.nextToken()
		var rows []ast.Row[ast.Type]
		if !p.curTokenIs(token.RBRACE) {
			for {
				if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.INT) {
					return ast.Type{}, p.errf("expected a record label, found %q", p.describe(p.curToken))
				}
				label := p.curToken
				p.nextToken()
				if _, d := p.expect(token.COLON); d != nil {
					return ast.Type{}, d
				}
				ty, d := p.parseType()
				if d != nil {
					return ast.Type{}, d
				}
				rows = append(rows, ast.Row[ast.Type]{Label: p.intern(label), Data: ty, Span: label.Span.Plus(ty.Span)})
				if !p.curTokenIs(token.COMMA) {
					break
				}
				p.nextToken()
			}
		}
		end, d := p.expect(token.RBRACE)
		if d != nil {
			return ast.Type{}, d
		}
		return ast.Type{Data: ast.TyRecord{Rows: rows}, Span: start.Plus(end.Span)}, nil

	case token.LPAREN:
		p.nextToken()
		first, d := p.parseType()
		if d != nil {
			return ast.Type{}, d
		}
		if p.curTokenIs(token.COMMA) {
			// `(ty1, ty2) tycon`, a multi-argument constructor application.
			args := []ast.Type{first}
			for p.curTokenIs(token.COMMA) {
				p.nextToken()
				t, d := p.parseType()
				if d != nil {
					return ast.Type{}, d
				}
				args = append(args, t)
			}
			if _, d := p.expect(token.RPAREN); d != nil {
				return ast.Type{}, d
			}
			name, d := p.expect(token.IDENT)
			if d != nil {
				return ast.Type{}, d
			}
			return ast.Type{
				Data: ast.TyCon{Name: p.intern(name), Args: args},
				Span: start.Plus(name.Span),
			}, nil
		}
		end, d := p.expect(token.RPAREN)
		if d != nil {
			return ast.Type{}, d
		}
		first.Span = start.Plus(end.Span)
		return first, nil
	}
	return ast.Type{}, p.errf("expected a type, found %q", p.describe(p.curToken))
}
