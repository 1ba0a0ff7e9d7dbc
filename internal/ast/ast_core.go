// Package ast is the surface-syntax tree produced by internal/parser and
// consumed by internal/core's elaborator. It is intentionally close to the
// concrete grammar: FlatApp sequences are left unresolved here and reshaped
// by internal/fixity during elaboration.
package ast

import (
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// Row is a labeled field, shared by record types, expressions and patterns.
// Tuple rows use labels "1","2",... with no gaps.
type Row[T any] struct {
	Label symbols.Symbol
	Data  T
	Span  token.Span
}

// Fmap maps f over the row's data, preserving label and span.
func (r Row[T]) Fmap(f func(T) T) Row[T] {
	return Row[T]{Label: r.Label, Data: f(r.Data), Span: r.Span}
}

// Const is a literal constant. The elaborator maps each variant to its
// built-in type.
type Const struct {
	Kind ConstKind
	Int  int64
	Str  string
	Chr  rune
}

type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstString
	ConstChar
	ConstUnit
)

// Fixity is the surface spelling of an infix declaration's associativity.
type Fixity uint8

const (
	FixInfix Fixity = iota
	FixInfixr
	FixNonfix
)
