// Package lexer scans SML surface syntax into a stream of tokens: a
// single rune-at-a-time reader with one-character lookahead, switched on
// the current rune.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/token"
)

// symbolicRunes are the characters SML lets an identifier be built from
// when it isn't alphanumeric.
const symbolicRunes = "!%&$#+-/:<=>?@\\~`^|*"

// Lexer scans one source string into tokens on demand via Next.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	l := &Lexer{input: src, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespaceAndComments() *diagnostics.Diagnostic {
	for {
		for unicode.IsSpace(l.ch) {
			l.readChar()
		}
		if l.ch == '(' && l.peekChar() == '*' {
			if d := l.skipBlockComment(); d != nil {
				return d
			}
			continue
		}
		return nil
	}
}

func (l *Lexer) skipBlockComment() *diagnostics.Diagnostic {
	start := l.position
	l.readChar()
	l.readChar()
	depth := 1
	for depth > 0 {
		if l.ch == 0 {
			return diagnostics.New(diagnostics.LexError, token.Span{Lo: start, Hi: l.position},
				"unterminated comment")
		}
		if l.ch == '(' && l.peekChar() == '*' {
			depth++
			l.readChar()
			l.readChar()
			continue
		}
		if l.ch == '*' && l.peekChar() == ')' {
			depth--
			l.readChar()
			l.readChar()
			continue
		}
		l.readChar()
	}
	return nil
}

// Next scans and returns the next token, or a lex error diagnostic.
func (l *Lexer) Next() (token.Token, *diagnostics.Diagnostic) {
	if d := l.skipWhitespaceAndComments(); d != nil {
		return token.Token{}, d
	}

	lo := l.position
	line, col := l.line, l.column

	mk := func(kind token.Kind, text string) token.Token {
		return token.Token{Kind: kind, Text: text, Line: line, Column: col, Span: token.Span{Lo: lo, Hi: l.position}}
	}

	switch {
	case l.ch == 0:
		return mk(token.EOF, ""), nil

	case l.ch == '(':
		l.readChar()
		return mk(token.LPAREN, "("), nil
	case l.ch == ')':
		l.readChar()
		return mk(token.RPAREN, ")"), nil
	case l.ch == '{':
		l.readChar()
		return mk(token.LBRACE, "{"), nil
	case l.ch == '}':
		l.readChar()
		return mk(token.RBRACE, "}"), nil
	case l.ch == '[':
		l.readChar()
		return mk(token.LBRACKET, "["), nil
	case l.ch == ']':
		l.readChar()
		return mk(token.RBRACKET, "]"), nil
	case l.ch == ',':
		l.readChar()
		return mk(token.COMMA, ","), nil
	case l.ch == ';':
		l.readChar()
		return mk(token.SEMI, ";"), nil

	case l.ch == '"':
		return l.scanString(lo, line, col)
	case l.ch == '#' && l.peekChar() == '"':
		l.readChar()
		return l.scanChar(lo, line, col)
	case l.ch == '#':
		l.readChar()
		return mk(token.SELECTOR, "#"), nil

	case l.ch == '\'':
		return l.scanTyvar(lo, line, col)

	case unicode.IsDigit(l.ch) || (l.ch == '~' && unicode.IsDigit(l.peekChar())):
		return l.scanNumber(lo, line, col)

	case l.ch == '_' && !unicode.IsLetter(l.peekChar()) && !unicode.IsDigit(l.peekChar()):
		l.readChar()
		return mk(token.WILD, "_"), nil

	case unicode.IsLetter(l.ch) || l.ch == '_':
		return l.scanIdent(lo, line, col)

	case strings.ContainsRune(symbolicRunes, l.ch):
		return l.scanSymbolic(lo, line, col)
	}

	bad := string(l.ch)
	l.readChar()
	return token.Token{}, diagnostics.New(diagnostics.LexError, token.Span{Lo: lo, Hi: l.position},
		"unexpected character %q", bad)
}

func (l *Lexer) scanIdent(lo, line, col int) (token.Token, *diagnostics.Diagnostic) {
	var b strings.Builder
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' || l.ch == '\'' {
		b.WriteRune(l.ch)
		l.readChar()
	}
	text := b.String()
	return token.Token{Kind: token.LookupIdent(text), Text: text, Line: line, Column: col,
		Span: token.Span{Lo: lo, Hi: l.position}}, nil
}

func (l *Lexer) scanTyvar(lo, line, col int) (token.Token, *diagnostics.Diagnostic) {
	var b strings.Builder
	b.WriteRune(l.ch)
	l.readChar()
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '\'' || l.ch == '_' {
		b.WriteRune(l.ch)
		l.readChar()
	}
	return token.Token{Kind: token.TYVAR, Text: b.String(), Line: line, Column: col,
		Span: token.Span{Lo: lo, Hi: l.position}}, nil
}

func (l *Lexer) scanSymbolic(lo, line, col int) (token.Token, *diagnostics.Diagnostic) {
	var b strings.Builder
	for strings.ContainsRune(symbolicRunes, l.ch) {
		b.WriteRune(l.ch)
		l.readChar()
	}
	text := b.String()
	mk := func(kind token.Kind) token.Token {
		return token.Token{Kind: kind, Text: text, Line: line, Column: col, Span: token.Span{Lo: lo, Hi: l.position}}
	}
	switch text {
	case "=":
		return mk(token.EQUALS), nil
	case "=>":
		return mk(token.DARROW), nil
	case "->":
		return mk(token.ARROW), nil
	case ":":
		return mk(token.COLON), nil
	case "|":
		return mk(token.BAR), nil
	}
	return mk(token.IDENTSYM), nil
}

func (l *Lexer) scanNumber(lo, line, col int) (token.Token, *diagnostics.Diagnostic) {
	var b strings.Builder
	if l.ch == '~' {
		b.WriteRune('-')
		l.readChar()
	}
	for unicode.IsDigit(l.ch) {
		b.WriteRune(l.ch)
		l.readChar()
	}
	return token.Token{Kind: token.INT, Text: b.String(), Line: line, Column: col,
		Span: token.Span{Lo: lo, Hi: l.position}}, nil
}

func (l *Lexer) scanString(lo, line, col int) (token.Token, *diagnostics.Diagnostic) {
	l.readChar()
	var b strings.Builder
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return token.Token{}, diagnostics.New(diagnostics.LexError, token.Span{Lo: lo, Hi: l.position},
				"unterminated string literal")
		}
		if l.ch == '\\' {
			l.readChar()
			esc, d := l.escapeRune()
			if d != nil {
				return token.Token{}, d
			}
			b.WriteRune(esc)
			continue
		}
		b.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar()
	return token.Token{Kind: token.STRING, Text: b.String(), Line: line, Column: col,
		Span: token.Span{Lo: lo, Hi: l.position}}, nil
}

func (l *Lexer) scanChar(lo, line, col int) (token.Token, *diagnostics.Diagnostic) {
	l.readChar()
	var r rune
	if l.ch == '\\' {
		l.readChar()
		esc, d := l.escapeRune()
		if d != nil {
			return token.Token{}, d
		}
		r = esc
	} else {
		r = l.ch
		l.readChar()
	}
	if l.ch != '"' {
		return token.Token{}, diagnostics.New(diagnostics.LexError, token.Span{Lo: lo, Hi: l.position},
			"character literal must contain exactly one character")
	}
	l.readChar()
	return token.Token{Kind: token.CHAR, Text: string(r), Line: line, Column: col,
		Span: token.Span{Lo: lo, Hi: l.position}}, nil
}

func (l *Lexer) escapeRune() (rune, *diagnostics.Diagnostic) {
	ch := l.ch
	sp := token.Span{Lo: l.position, Hi: l.position}
	l.readChar()
	switch ch {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case '\\':
		return '\\', nil
	case '"':
		return '"', nil
	case 'a':
		return '\a', nil
	default:
		return 0, diagnostics.New(diagnostics.LexError, sp, "unknown escape sequence %q", fmt.Sprintf("\\%c", ch))
	}
}

// All scans the full input into a token slice, stopping at EOF or the
// first lex error.
func All(src string) ([]token.Token, *diagnostics.Diagnostic) {
	l := New(src)
	var toks []token.Token
	for {
		tok, d := l.Next()
		if d != nil {
			return nil, d
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}
