package ast

import (
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// Type is a surface type expression, as written by the programmer in a
// `: ty` constraint, a `type` binding's right-hand side, or a constructor's
// argument type.
type Type struct {
	Data TypeKind
	Span token.Span
}

// TypeKind is one of the surface type-expression shapes.
type TypeKind interface{ typeNode() }

// TyVar is a reference to a quantified type variable, e.g. 'a.
type TyVar struct{ Name symbols.Symbol }

// TyCon is a (possibly applied) type constructor, e.g. int, 'a list,
// (int, bool) pair.
type TyCon struct {
	Name symbols.Symbol
	Args []Type
}

// TyRecord is a record type, e.g. {x: int, y: int}; a tuple type is a
// TyRecord whose rows are labeled "1","2",....
type TyRecord struct{ Rows []Row[Type] }

func (TyVar) typeNode()    {}
func (TyCon) typeNode()    {}
func (TyRecord) typeNode() {}

// Typebind is one arm of a `type` declaration: `type 'a t = ty`.
type Typebind struct {
	Tycon  symbols.Symbol
	Tyvars []symbols.Symbol
	Ty     Type
	Span   token.Span
}

// Variant is one constructor of a datatype, or one exception declaration:
// `Con of ty` or bare `Con`.
type Variant struct {
	Label symbols.Symbol
	Data  *Type // nil for a nullary constructor
	Span  token.Span
}

// Datatype is one arm of a (possibly mutually recursive) `datatype` block.
type Datatype struct {
	Tycon        symbols.Symbol
	Tyvars       []symbols.Symbol
	Constructors []Variant
	Span         token.Span
}
