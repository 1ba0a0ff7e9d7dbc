package core

import "github.com/smlkit/smlc/internal/symbols"

// Tycon is a type constructor: a name and the number of type arguments it
// expects. Two Tycons denote the same constructor iff their
// Name symbols are equal.
type Tycon struct {
	Name  symbols.Symbol
	Arity int
}

// BuiltinTycons is the built-in constructor table:
// int, char, string, bool, unit, exn, ref, list, ->.
type BuiltinTycons struct {
	Int, Char, String, Bool, Unit, Exn Tycon
	Ref, List                          Tycon
	Arrow                              Tycon
}

// NewBuiltinTycons interns the nine built-in type-constructor names into
// tbl and returns their Tycon values.
func NewBuiltinTycons(tbl *symbols.Table) *BuiltinTycons {
	return &BuiltinTycons{
		Int:    Tycon{Name: tbl.Intern("int"), Arity: 0},
		Char:   Tycon{Name: tbl.Intern("char"), Arity: 0},
		String: Tycon{Name: tbl.Intern("string"), Arity: 0},
		Bool:   Tycon{Name: tbl.Intern("bool"), Arity: 0},
		Unit:   Tycon{Name: tbl.Intern("unit"), Arity: 0},
		Exn:    Tycon{Name: tbl.Intern("exn"), Arity: 0},
		Ref:    Tycon{Name: tbl.Intern("ref"), Arity: 1},
		List:   Tycon{Name: tbl.Intern("list"), Arity: 1},
		Arrow:  Tycon{Name: tbl.Intern("->"), Arity: 2},
	}
}

// All returns the nine built-ins in declaration order, for installing into
// a fresh Namespace.
func (b *BuiltinTycons) All() []Tycon {
	return []Tycon{b.Int, b.Char, b.String, b.Bool, b.Unit, b.Exn, b.Ref, b.List, b.Arrow}
}
