package core

import (
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// unify is first-order unification with occurs check and label-set record
// unification. Unlike a substitution-returning unifier, it
// mutates TypeVar.Binding in place: the only mutation any IR node ever
// undergoes, and it is monotonic (None -> Some(t), never reassigned).
func (c *Context) unify(sp token.Span, a, b *Type) *diagnostics.Diagnostic {
	a, b = Walk(a), Walk(b)

	if a.Kind == TVar && b.Kind == TVar && a.Var.ID == b.Var.ID {
		return nil
	}
	if a.Kind == TVar {
		return c.bindVar(sp, a.Var, b)
	}
	if b.Kind == TVar {
		return c.bindVar(sp, b.Var, a)
	}
	if a.Kind == TCon && b.Kind == TCon {
		if a.Con.Name != b.Con.Name || len(a.Args) != len(b.Args) {
			return c.mismatch(sp, a, b)
		}
		for i := range a.Args {
			if d := c.unify(sp, a.Args[i], b.Args[i]); d != nil {
				return d
			}
		}
		return nil
	}
	if a.Kind == TRecord && b.Kind == TRecord {
		if len(a.Rows) != len(b.Rows) {
			return c.mismatch(sp, a, b)
		}
		byLabel := make(map[symbols.Symbol]*Type, len(b.Rows))
		for _, r := range b.Rows {
			byLabel[r.Label] = r.Data
		}
		for _, r := range a.Rows {
			other, ok := byLabel[r.Label]
			if !ok {
				return c.mismatch(sp, a, b)
			}
			if d := c.unify(sp, r.Data, other); d != nil {
				return d
			}
		}
		return nil
	}
	return c.mismatch(sp, a, b)
}

func (c *Context) mismatch(sp token.Span, a, b *Type) *diagnostics.Diagnostic {
	return diagnostics.New(diagnostics.UnificationFail, sp,
		"cannot unify %s with %s", c.TypeString(a), c.TypeString(b))
}

// bindVar performs the occurs check and, on success, binds v to ty,
// lowering v's rank to the minimum of the two if ty carries a lower one.
func (c *Context) bindVar(sp token.Span, v *TypeVar, ty *Type) *diagnostics.Diagnostic {
	w := Walk(ty)
	if w.Kind == TVar && w.Var.ID == v.ID {
		return nil
	}
	if occurs(v, w) {
		return diagnostics.New(diagnostics.OccursCheck, sp,
			"type variable occurs in the type it would be bound to: %s", c.TypeString(w))
	}
	if w.Kind == TVar && w.Var.Rank < v.Rank {
		v.Rank = w.Var.Rank
	}
	v.Binding = w
	return nil
}

func occurs(v *TypeVar, ty *Type) bool {
	w := Walk(ty)
	switch w.Kind {
	case TVar:
		return w.Var.ID == v.ID
	case TCon:
		for _, a := range w.Args {
			if occurs(v, a) {
				return true
			}
		}
	case TRecord:
		for _, r := range w.Rows {
			if occurs(v, r.Data) {
				return true
			}
		}
	}
	return false
}

// unifyList unifies every pair (t1, ti) for i>1, as needed for case/fn
// rules and list elements.
func (c *Context) unifyList(sp token.Span, tys []*Type) *diagnostics.Diagnostic {
	for i := 1; i < len(tys); i++ {
		if d := c.unify(sp, tys[0], tys[i]); d != nil {
			return d
		}
	}
	return nil
}
