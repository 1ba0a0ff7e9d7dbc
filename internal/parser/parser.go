// Package parser is a recursive-descent parser from token streams to the
// surface AST of internal/ast. It resolves no operator precedence beyond
// the fixed keyword grammar: runs of juxtaposed atoms become FlatApp /
// FlatAppPat nodes, which internal/core reshapes against the fixity
// environment in force at elaboration time.
package parser

import (
	"strconv"

	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// MaxRecursionDepth bounds nesting so a pathological input degrades into a
// diagnostic rather than a stack overflow.
const MaxRecursionDepth = 500

// Parser walks a pre-lexed token slice with one token of lookahead.
type Parser struct {
	toks []token.Token
	pos  int

	curToken  token.Token
	peekToken token.Token

	tbl   *symbols.Table
	depth int
}

// New builds a Parser over toks, interning identifiers into tbl. Sharing
// the elaborating Context's table makes symbols compare equal across the
// two phases.
func New(toks []token.Token, tbl *symbols.Table) *Parser {
	p := &Parser{toks: toks, tbl: tbl}
	p.curToken = p.at(0)
	p.peekToken = p.at(1)
	p.pos = 0
	return p
}

func (p *Parser) at(i int) token.Token {
	if i < len(p.toks) {
		return p.toks[i]
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) nextToken() {
	p.pos++
	p.curToken = p.at(p.pos)
	p.peekToken = p.at(p.pos + 1)
}

func (p *Parser) curTokenIs(k token.Kind) bool  { return p.curToken.Kind == k }
func (p *Parser) peekTokenIs(k token.Kind) bool { return p.peekToken.Kind == k }

// expect consumes the current token if it has kind k, or reports a parse
// error naming what stood in its place.
func (p *Parser) expect(k token.Kind) (token.Token, *diagnostics.Diagnostic) {
	if !p.curTokenIs(k) {
		return token.Token{}, p.errf("expected %q, found %q", string(k), p.describe(p.curToken))
	}
	t := p.curToken
	p.nextToken()
	return t, nil
}

func (p *Parser) describe(t token.Token) string {
	if t.Kind == token.EOF {
		return "end of input"
	}
	if t.Text != "" {
		return t.Text
	}
	return string(t.Kind)
}

func (p *Parser) errf(format string, args ...interface{}) *diagnostics.Diagnostic {
	return diagnostics.New(diagnostics.ParseError, p.curToken.Span, format, args...)
}

// enter guards recursive productions against runaway nesting; callers pair
// it with leave via defer.
func (p *Parser) enter() *diagnostics.Diagnostic {
	p.depth++
	if p.depth > MaxRecursionDepth {
		return p.errf("input too deeply nested")
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// intern maps the current identifier-like token to a Symbol.
func (p *Parser) intern(t token.Token) symbols.Symbol {
	return p.tbl.Intern(t.Text)
}

// ParseProgram parses a whole compilation unit: declarations separated by
// optional semicolons, until EOF.
func (p *Parser) ParseProgram() ([]ast.Decl, *diagnostics.Diagnostic) {
	var decls []ast.Decl
	for {
		for p.curTokenIs(token.SEMI) {
			p.nextToken()
		}
		if p.curTokenIs(token.EOF) {
			return decls, nil
		}
		d, diag := p.parseDecl()
		if diag != nil {
			return decls, diag
		}
		decls = append(decls, d)
	}
}

// parseInt parses the text of an INT token. The lexer has already mapped
// SML's ~ negation onto a leading minus.
func parseInt(t token.Token) (int64, *diagnostics.Diagnostic) {
	v, err := strconv.ParseInt(t.Text, 10, 64)
	if err != nil {
		return 0, diagnostics.New(diagnostics.ParseError, t.Span, "integer literal %q out of range", t.Text)
	}
	return v, nil
}
