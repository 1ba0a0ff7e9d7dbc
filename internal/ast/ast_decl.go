package ast

import (
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// Decl is a surface declaration: a tagged node plus its source span.
type Decl struct {
	Data DeclKind
	Span token.Span
}

func NewDecl(k DeclKind, sp token.Span) Decl { return Decl{Data: k, Span: sp} }

// DeclKind is one of the surface declaration shapes.
type DeclKind interface{ declNode() }

type (
	ValDecl struct {
		Pat  Pat
		Expr Expr
	}
	TypeDecl      struct{ Binds []Typebind }
	DatatypeDecl  struct{ Binds []Datatype }
	ExceptionDecl struct{ Variants []Variant }
	FixityDecl    struct {
		Fix  Fixity
		BP   uint8
		Name symbols.Symbol
	}
	LocalDecl struct{ Decls, Body []Decl }
	SeqDecl   struct{ Decls []Decl }
	// FunctionDecl represents a surface `fun` clause group (mutually
	// recursive functions). Parsed, but rejected by the elaborator with an
	// Unsupported diagnostic.
	FunctionDecl struct {
		Tyvars []symbols.Symbol
		Name   symbols.Symbol
	}
	// DoDecl represents a surface `do expr` statement declaration. Parsed,
	// but rejected by the elaborator with an Unsupported diagnostic.
	DoDecl struct{ Expr Expr }
)

func (ValDecl) declNode()       {}
func (TypeDecl) declNode()      {}
func (DatatypeDecl) declNode()  {}
func (ExceptionDecl) declNode() {}
func (FixityDecl) declNode()    {}
func (LocalDecl) declNode()     {}
func (SeqDecl) declNode()       {}
func (FunctionDecl) declNode()  {}
func (DoDecl) declNode()        {}
