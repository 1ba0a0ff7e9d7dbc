// Package core is the elaborator: Hindley-Milner type inference with
// let-generalization, data-constructor resolution and fixity-aware
// operator resolution, transforming internal/ast into a typed IR. This
// file is the arena subsystem: bulk allocation of IR nodes with stable
// interior references, plus the six cached built-in nullary types.
package core

import (
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// TypeArena owns every Type and TypeVar allocated during one compilation
// unit, and the fresh-variable counter. The garbage collector reclaims
// nodes on its own; the arena's job is to be the single place fresh ids
// and the cached built-in types come from, keeping one owner and many
// immutable borrowers.
type TypeArena struct {
	fresh uint64
	tc    *BuiltinTycons

	builtinInt    *Type
	builtinChar   *Type
	builtinString *Type
	builtinBool   *Type
	builtinUnit   *Type
	builtinExn    *Type
}

// NewTypeArena pre-allocates the six nullary built-in types, so later
// equality checks against them can short-circuit on pointer identity.
func NewTypeArena(tc *BuiltinTycons) *TypeArena {
	a := &TypeArena{tc: tc}
	a.builtinInt = a.Alloc(Type{Kind: TCon, Con: tc.Int})
	a.builtinChar = a.Alloc(Type{Kind: TCon, Con: tc.Char})
	a.builtinString = a.Alloc(Type{Kind: TCon, Con: tc.String})
	a.builtinBool = a.Alloc(Type{Kind: TCon, Con: tc.Bool})
	a.builtinUnit = a.Alloc(Type{Kind: TCon, Con: tc.Unit})
	a.builtinExn = a.Alloc(Type{Kind: TCon, Con: tc.Exn})
	return a
}

// Alloc hands back a stable pointer to ty.
func (a *TypeArena) Alloc(ty Type) *Type {
	t := new(Type)
	*t = ty
	return t
}

// FreshTypeVar allocates a new inference variable at the given rank.
func (a *TypeArena) FreshTypeVar(rank int) *TypeVar {
	id := a.fresh
	a.fresh++
	return &TypeVar{ID: id, Rank: rank}
}

// FreshVar allocates a new Type wrapping a fresh inference variable.
func (a *TypeArena) FreshVar(rank int) *Type {
	return a.Alloc(Type{Kind: TVar, Var: a.FreshTypeVar(rank)})
}

func (a *TypeArena) Int() *Type    { return a.builtinInt }
func (a *TypeArena) Char() *Type   { return a.builtinChar }
func (a *TypeArena) String() *Type { return a.builtinString }
func (a *TypeArena) Bool() *Type   { return a.builtinBool }
func (a *TypeArena) Unit() *Type   { return a.builtinUnit }
func (a *TypeArena) Exn() *Type    { return a.builtinExn }

// Arrow builds a function type dom -> rng.
func (a *TypeArena) Arrow(dom, rng *Type) *Type {
	return a.Alloc(Type{Kind: TCon, Con: a.tc.Arrow, Args: []*Type{dom, rng}})
}

// List builds 'elem list.
func (a *TypeArena) List(elem *Type) *Type {
	return a.Alloc(Type{Kind: TCon, Con: a.tc.List, Args: []*Type{elem}})
}

// Ref builds 'elem ref.
func (a *TypeArena) Ref(elem *Type) *Type {
	return a.Alloc(Type{Kind: TCon, Con: a.tc.Ref, Args: []*Type{elem}})
}

// Tuple builds the record type {1: t1, ..., n: tn} for an n-tuple.
func (a *TypeArena) Tuple(tys []*Type, tbl *symbols.Table) *Type {
	rows := make([]Row[*Type], len(tys))
	for i, t := range tys {
		rows[i] = Row[*Type]{Label: tbl.TupleLabel(uint32(i + 1)), Data: t}
	}
	return a.Alloc(Type{Kind: TRecord, Rows: rows})
}

// ExprArena owns every IR expression node and mints the Gensyms used for
// the Lambda/Case desugaring of `fn`.
type ExprArena struct {
	tbl *symbols.Table
}

func NewExprArena(tbl *symbols.Table) *ExprArena { return &ExprArena{tbl: tbl} }

func (a *ExprArena) Alloc(e Expr) *Expr {
	p := new(Expr)
	*p = e
	return p
}

// FreshVar mints a Gensym for use as a Lambda parameter.
func (a *ExprArena) FreshVar() symbols.Symbol { return a.tbl.Fresh() }

// Tuple builds the Record expr node {1: e1, ..., n: en}. The caller
// supplies ty, the already-computed record type of the tuple.
func (a *ExprArena) Tuple(es []*Expr, ty *Type, sp token.Span) *Expr {
	rows := make([]Row[*Expr], len(es))
	for i, e := range es {
		rows[i] = Row[*Expr]{Label: a.tbl.TupleLabel(uint32(i + 1)), Data: e}
	}
	return a.Alloc(Expr{Kind: RecordIRExpr{Rows: rows}, Type: ty, Span: sp})
}

// PatArena owns every IR pattern node.
type PatArena struct {
	tbl  *symbols.Table
	wild Pat
}

func NewPatArena(tbl *symbols.Table) *PatArena {
	return &PatArena{tbl: tbl, wild: Pat{Kind: WildPat{}}}
}

func (a *PatArena) Wild() Pat { return a.wild }

// Tuple builds the Record pattern {1: p1, ..., n: pn}.
func (a *PatArena) Tuple(ps []Pat) Pat {
	rows := make([]Row[Pat], len(ps))
	for i, p := range ps {
		rows[i] = Row[Pat]{Label: a.tbl.TupleLabel(uint32(i + 1)), Data: p}
	}
	return Pat{Kind: RecordPat{Rows: rows}}
}
