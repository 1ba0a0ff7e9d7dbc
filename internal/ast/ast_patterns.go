package ast

import (
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// Pat is a surface pattern: a tagged node plus its source span.
type Pat struct {
	Data PatKind
	Span token.Span
}

func NewPat(k PatKind, sp token.Span) Pat { return Pat{Data: k, Span: sp} }

// PatKind is one of the surface pattern shapes.
type PatKind interface{ patNode() }

type (
	WildPat   struct{}
	VarPat    struct{ Name symbols.Symbol }
	ConstPat  struct{ Value Const }
	AppPat    struct {
		Con symbols.Symbol
		Arg *Pat // nil for a nullary constructor application
	}
	FlatAppPat      struct{ Pats []Pat }
	RecordPat       struct{ Rows []Row[Pat] }
	ListPat         struct{ Elems []Pat }
	ConstraintPat   struct {
		Pat Pat
		Ty  Type
	}
)

func (WildPat) patNode()       {}
func (VarPat) patNode()        {}
func (ConstPat) patNode()      {}
func (AppPat) patNode()        {}
func (FlatAppPat) patNode()    {}
func (RecordPat) patNode()     {}
func (ListPat) patNode()       {}
func (ConstraintPat) patNode() {}
