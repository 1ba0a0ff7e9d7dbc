package parser

import (
	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

func (p *Parser) parseDecl() (ast.Decl, *diagnostics.Diagnostic) {
	if d := p.enter(); d != nil {
		return ast.Decl{}, d
	}
	defer p.leave()

	start := p.curToken.Span
	switch p.curToken.Kind {
	case token.VAL:
		p.nextToken()
		pat, d := p.parsePat()
		if d != nil {
			return ast.Decl{}, d
		}
		if _, d := p.expect(token.EQUALS); d != nil {
			return ast.Decl{}, d
		}
		expr, d := p.parseExpr()
		if d != nil {
			return ast.Decl{}, d
		}
		return ast.NewDecl(ast.ValDecl{Pat: pat, Expr: expr}, start.Plus(expr.Span)), nil

	case token.TYPE:
		p.nextToken()
		binds, sp, d := p.parseTypebinds(start)
		if d != nil {
			return ast.Decl{}, d
		}
		return ast.NewDecl(ast.TypeDecl{Binds: binds}, sp), nil

	case token.DATATYPE:
		p.nextToken()
		binds, sp, d := p.parseDatbinds(start)
		if d != nil {
			return ast.Decl{}, d
		}
		return ast.NewDecl(ast.DatatypeDecl{Binds: binds}, sp), nil

	case token.EXCEPTION:
		p.nextToken()
		var variants []ast.Variant
		for {
			v, d := p.parseVariant()
			if d != nil {
				return ast.Decl{}, d
			}
			variants = append(variants, v)
			if !p.curTokenIs(token.AND) {
				break
			}
			p.nextToken()
		}
		sp := start.Plus(variants[len(variants)-1].Span)
		return ast.NewDecl(ast.ExceptionDecl{Variants: variants}, sp), nil

	case token.INFIX, token.INFIXR, token.NONFIX:
		return p.parseFixityDecl()

	case token.LOCAL:
		p.nextToken()
		inner, d := p.parseDeclSeq(token.IN)
		if d != nil {
			return ast.Decl{}, d
		}
		if _, d := p.expect(token.IN); d != nil {
			return ast.Decl{}, d
		}
		body, d := p.parseDeclSeq(token.END)
		if d != nil {
			return ast.Decl{}, d
		}
		end, d := p.expect(token.END)
		if d != nil {
			return ast.Decl{}, d
		}
		return ast.NewDecl(ast.LocalDecl{Decls: inner, Body: body}, start.Plus(end.Span)), nil

	case token.FUN:
		return p.parseFunDecl()

	case token.DO:
		p.nextToken()
		expr, d := p.parseExpr()
		if d != nil {
			return ast.Decl{}, d
		}
		return ast.NewDecl(ast.DoDecl{Expr: expr}, start.Plus(expr.Span)), nil
	}
	return ast.Decl{}, p.errf("expected a declaration, found %q", p.describe(p.curToken))
}

// parseDeclSeq parses declarations until the terminator keyword (or EOF),
// returning them as a slice in source order; the terminator itself is not
// consumed.
func (p *Parser) parseDeclSeq(terminator token.Kind) ([]ast.Decl, *diagnostics.Diagnostic) {
	var decls []ast.Decl
	for {
		for p.curTokenIs(token.SEMI) {
			p.nextToken()
		}
		if p.curTokenIs(terminator) || p.curTokenIs(token.EOF) {
			return decls, nil
		}
		d, diag := p.parseDecl()
		if diag != nil {
			return nil, diag
		}
		decls = append(decls, d)
	}
}

// parseTyvarSeq parses the optional type-variable prefix of a type or
// datatype binding: nothing, 'a, or ('a, 'b).
func (p *Parser) parseTyvarSeq() ([]symbols.Symbol, *diagnostics.Diagnostic) {
	if p.curTokenIs(token.TYVAR) {
		tv := p.intern(p.curToken)
		p.nextToken()
		return []symbols.Symbol{tv}, nil
	}
	if p.curTokenIs(token.LPAREN) && p.peekTokenIs(token.TYVAR) {
		p.nextToken()
		var tvs []symbols.Symbol
		for {
			t, d := p.expect(token.TYVAR)
			if d != nil {
				return nil, d
			}
			tvs = append(tvs, p.intern(t))
			if !p.curTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if _, d := p.expect(token.RPAREN); d != nil {
			return nil, d
		}
		return tvs, nil
	}
	return nil, nil
}

func (p *Parser) parseTypebinds(start token.Span) ([]ast.Typebind, token.Span, *diagnostics.Diagnostic) {
	var binds []ast.Typebind
	sp := start
	for {
		bindStart := p.curToken.Span
		tyvars, d := p.parseTyvarSeq()
		if d != nil {
			return nil, sp, d
		}
		name, d := p.expect(token.IDENT)
		if d != nil {
			return nil, sp, d
		}
		if _, d := p.expect(token.EQUALS); d != nil {
			return nil, sp, d
		}
		ty, d := p.parseType()
		if d != nil {
			return nil, sp, d
		}
		sp = sp.Plus(ty.Span)
		binds = append(binds, ast.Typebind{
			Tycon:  p.intern(name),
			Tyvars: tyvars,
			Ty:     ty,
			Span:   bindStart.Plus(ty.Span),
		})
		if !p.curTokenIs(token.AND) {
			return binds, sp, nil
		}
		p.nextToken()
	}
}

func (p *Parser) parseDatbinds(start token.Span) ([]ast.Datatype, token.Span, *diagnostics.Diagnostic) {
	var binds []ast.Datatype
	sp := start
	for {
		bindStart := p.curToken.Span
		tyvars, d := p.parseTyvarSeq()
		if d != nil {
			return nil, sp, d
		}
		name, d := p.expect(token.IDENT)
		if d != nil {
			return nil, sp, d
		}
		if _, d := p.expect(token.EQUALS); d != nil {
			return nil, sp, d
		}
		var variants []ast.Variant
		for {
			v, vd := p.parseVariant()
			if vd != nil {
				return nil, sp, vd
			}
			variants = append(variants, v)
			if !p.curTokenIs(token.BAR) {
				break
			}
			p.nextToken()
		}
		bindSpan := bindStart.Plus(variants[len(variants)-1].Span)
		sp = sp.Plus(bindSpan)
		binds = append(binds, ast.Datatype{
			Tycon:        p.intern(name),
			Tyvars:       tyvars,
			Constructors: variants,
			Span:         bindSpan,
		})
		if !p.curTokenIs(token.AND) {
			return binds, sp, nil
		}
		p.nextToken()
	}
}

// parseVariant parses one constructor binding: `Con` or `Con of ty`.
func (p *Parser) parseVariant() (ast.Variant, *diagnostics.Diagnostic) {
	var name token.Token
	switch p.curToken.Kind {
	case token.IDENT, token.IDENTSYM:
		name = p.curToken
		p.nextToken()
	default:
		return ast.Variant{}, p.errf("expected a constructor name, found %q", p.describe(p.curToken))
	}
	v := ast.Variant{Label: p.intern(name), Span: name.Span}
	if p.curTokenIs(token.OF) {
		p.nextToken()
		ty, d := p.parseType()
		if d != nil {
			return ast.Variant{}, d
		}
		v.Data = &ty
		v.Span = name.Span.Plus(ty.Span)
	}
	return v, nil
}

// parseFixityDecl parses `infix [d] id...`, `infixr [d] id...` and
// `nonfix id...`. More than one identifier yields a SeqDecl of one
// FixityDecl per name, preserving surface order.
func (p *Parser) parseFixityDecl() (ast.Decl, *diagnostics.Diagnostic) {
	start := p.curToken.Span
	fix := ast.FixInfix
	switch p.curToken.Kind {
	case token.INFIXR:
		fix = ast.FixInfixr
	case token.NONFIX:
		fix = ast.FixNonfix
	}
	p.nextToken()

	var bp uint8
	if fix != ast.FixNonfix && p.curTokenIs(token.INT) {
		v, d := parseInt(p.curToken)
		if d != nil {
			return ast.Decl{}, d
		}
		if v < 0 || v > 9 {
			return ast.Decl{}, p.errf("fixity precedence must be between 0 and 9")
		}
		bp = uint8(v)
		p.nextToken()
	}

	var decls []ast.Decl
	sp := start
	for p.curTokenIs(token.IDENT) || p.curTokenIs(token.IDENTSYM) || p.curTokenIs(token.EQUALS) {
		sp = sp.Plus(p.curToken.Span)
		decls = append(decls, ast.NewDecl(ast.FixityDecl{
			Fix:  fix,
			BP:   bp,
			Name: p.intern(p.curToken),
		}, start.Plus(p.curToken.Span)))
		p.nextToken()
	}
	if len(decls) == 0 {
		return ast.Decl{}, p.errf("expected an identifier after fixity declaration")
	}
	if len(decls) == 1 {
		return decls[0], nil
	}
	return ast.NewDecl(ast.SeqDecl{Decls: decls}, sp), nil
}

// parseFunDecl parses a `fun` clause group far enough to recover its shape,
// then surfaces it as a FunctionDecl for the elaborator to reject with an
// Unsupported diagnostic. The clause bodies are parsed, not
// skipped, so later declarations still see a well-formed token boundary.
func (p *Parser) parseFunDecl() (ast.Decl, *diagnostics.Diagnostic) {
	start := p.curToken.Span
	p.nextToken()
	tyvars, d := p.parseTyvarSeq()
	if d != nil {
		return ast.Decl{}, d
	}
	var name token.Token
	if p.curTokenIs(token.IDENT) || p.curTokenIs(token.IDENTSYM) {
		name = p.curToken
	} else {
		return ast.Decl{}, p.errf("expected a function name after fun")
	}

	sp := start
	for {
		// One clause: name atomic-pats = expr.
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.IDENTSYM) {
			return ast.Decl{}, p.errf("expected a function name, found %q", p.describe(p.curToken))
		}
		p.nextToken()
		for p.isPatAtomStart() {
			if _, d := p.parsePatAtom(); d != nil {
				return ast.Decl{}, d
			}
		}
		if p.curTokenIs(token.COLON) {
			p.nextToken()
			if _, d := p.parseType(); d != nil {
				return ast.Decl{}, d
			}
		}
		if _, d := p.expect(token.EQUALS); d != nil {
			return ast.Decl{}, d
		}
		body, d := p.parseExpr()
		if d != nil {
			return ast.Decl{}, d
		}
		sp = sp.Plus(body.Span)
		if p.curTokenIs(token.BAR) || p.curTokenIs(token.AND) {
			p.nextToken()
			continue
		}
		return ast.NewDecl(ast.FunctionDecl{Tyvars: tyvars, Name: p.intern(name)}, sp), nil
	}
}
