package core

import "github.com/smlkit/smlc/internal/symbols"

// Row is a labeled field shared by record types, expressions and
// patterns. Tuple rows use labels "1","2",... with no gaps.
type Row[T any] struct {
	Label symbols.Symbol
	Data  T
}

// TypeTag discriminates the three Type shapes.
type TypeTag uint8

const (
	TVar TypeTag = iota
	TCon
	TRecord
)

// Type is a tagged node allocated in the type arena: Var(TypeVar),
// Con(Tycon, [Type]) or Record([Row<Type>]).
type Type struct {
	Kind TypeTag
	Var  *TypeVar
	Con  Tycon
	Args []*Type
	Rows []Row[*Type]
}

// TypeVar is a unique inference variable: an id, the rank (let-nesting
// depth) at which it was created, and a mutable binding. The binding is
// monotonic: None -> Some(t), never reassigned or unbound.
type TypeVar struct {
	ID      uint64
	Rank    int
	Binding *Type
}

// Walk follows t's binding chain to its current end, path-compressing
// along the way so repeated lookups are O(1) amortized.
func Walk(t *Type) *Type {
	if t.Kind != TVar || t.Var.Binding == nil {
		return t
	}
	end := t.Var.Binding
	for end.Kind == TVar && end.Var.Binding != nil {
		end = end.Var.Binding
	}
	// Path compression: repoint every variable on the chain directly at end.
	cur := t
	for cur.Kind == TVar && cur.Var.Binding != nil && cur.Var.Binding != end {
		next := cur.Var.Binding
		cur.Var.Binding = end
		cur = next
	}
	return end
}

// DeArrow splits a type that walks to a two-argument constructor into
// (Args[0], Args[1]), or reports false otherwise. It does not check that
// the constructor is `->`. Used after elaborating match rules, whose types
// are always built as arrows.
func DeArrow(ty *Type) (*Type, *Type, bool) {
	w := Walk(ty)
	if w.Kind == TCon && len(w.Args) == 2 && w.Con.Arity == 2 {
		return w.Args[0], w.Args[1], true
	}
	return nil, nil, false
}

// FreeTypeVars collects the distinct free (walked, still-unbound)
// TypeVars reachable from ty, in first-encountered order.
func FreeTypeVars(ty *Type, out *[]*TypeVar, seen map[uint64]bool) {
	w := Walk(ty)
	switch w.Kind {
	case TVar:
		if !seen[w.Var.ID] {
			seen[w.Var.ID] = true
			*out = append(*out, w.Var)
		}
	case TCon:
		for _, a := range w.Args {
			FreeTypeVars(a, out, seen)
		}
	case TRecord:
		for _, r := range w.Rows {
			FreeTypeVars(r.Data, out, seen)
		}
	}
}

// Scheme is a (possibly empty) universal quantification over a
// monomorphic type body.
type Scheme struct {
	// Quantified holds the ids of the quantified TypeVars; nil/empty means
	// Mono.
	Quantified []uint64
	Body       *Type
}

func MonoScheme(t *Type) Scheme { return Scheme{Body: t} }

func PolyScheme(ids []uint64, t *Type) Scheme { return Scheme{Quantified: ids, Body: t} }

func (s Scheme) IsMono() bool { return len(s.Quantified) == 0 }
