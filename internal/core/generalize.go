package core

// Generalization and instantiation of type schemes. A scheme's body is
// copied, replacing each quantified variable with a fresh one at the
// caller's rank, while free (non-quantified) variables pass through
// untouched.

// Generalize closes ty over every free TypeVar whose rank exceeds
// currentRank, yielding a Poly scheme; ty is left monomorphic otherwise.
func Generalize(ty *Type, currentRank int) Scheme {
	var free []*TypeVar
	FreeTypeVars(ty, &free, map[uint64]bool{})

	var ids []uint64
	for _, tv := range free {
		if tv.Rank > currentRank {
			ids = append(ids, tv.ID)
		}
	}
	if len(ids) == 0 {
		return MonoScheme(ty)
	}
	return PolyScheme(ids, ty)
}

// Instantiate replaces a scheme's quantified variables with freshly
// allocated ones at rank, copying only the nodes that need it.
func Instantiate(arena *TypeArena, s Scheme, rank int) *Type {
	if s.IsMono() {
		return s.Body
	}
	subst := make(map[uint64]*Type, len(s.Quantified))
	for _, id := range s.Quantified {
		subst[id] = arena.FreshVar(rank)
	}
	return instantiateWalk(arena, s.Body, subst)
}

func instantiateWalk(arena *TypeArena, ty *Type, subst map[uint64]*Type) *Type {
	w := Walk(ty)
	switch w.Kind {
	case TVar:
		if repl, ok := subst[w.Var.ID]; ok {
			return repl
		}
		return w
	case TCon:
		if len(w.Args) == 0 {
			return w
		}
		args := make([]*Type, len(w.Args))
		for i, a := range w.Args {
			args[i] = instantiateWalk(arena, a, subst)
		}
		return arena.Alloc(Type{Kind: TCon, Con: w.Con, Args: args})
	case TRecord:
		rows := make([]Row[*Type], len(w.Rows))
		for i, r := range w.Rows {
			rows[i] = Row[*Type]{Label: r.Label, Data: instantiateWalk(arena, r.Data, subst)}
		}
		return arena.Alloc(Type{Kind: TRecord, Rows: rows})
	}
	return w
}
