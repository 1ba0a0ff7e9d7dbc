package core

import (
	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/fixity"
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// elaboratePat elaborates a surface pattern, returning the IR pattern and
// the fresh monomorphic bindings its variable patterns introduced.
// bindings accumulates across the whole call tree of one pattern so the
// caller sees every Binding in left-to-right order.
func (c *Context) elaboratePat(p ast.Pat, bindings *[]Binding) (Pat, *diagnostics.Diagnostic) {
	switch n := p.Data.(type) {
	case ast.WildPat:
		return Pat{Kind: WildPat{}, Type: c.Types.FreshVar(c.rank), Span: p.Span}, nil

	case ast.VarPat:
		if sch, status, ok := c.lookupValue(n.Name); ok && status.Kind != IdVar && c.constructorIsNullary(status.Con) {
			ty := Instantiate(c.Types, sch, c.rank)
			return Pat{Kind: AppPat{Con: status.Con}, Type: ty, Span: p.Span}, nil
		}
		tv := c.Types.FreshTypeVar(c.rank)
		*bindings = append(*bindings, Binding{Var: n.Name, Tv: tv})
		return Pat{Kind: VarPat{Name: n.Name}, Type: &Type{Kind: TVar, Var: tv}, Span: p.Span}, nil

	case ast.ConstPat:
		cv, ty := c.elaborateConst(n.Value)
		return Pat{Kind: ConstPat{Value: cv}, Type: ty, Span: p.Span}, nil

	case ast.AppPat:
		sch, status, ok := c.lookupValue(n.Con)
		if !ok || status.Kind == IdVar {
			return Pat{}, diagnostics.New(diagnostics.NonConstructorInPattern, p.Span,
				"%q is not a constructor", c.Symbols.Name(n.Con))
		}
		ty := Instantiate(c.Types, sch, c.rank)
		dom, rng, isArrow := DeArrow(ty)
		if n.Arg == nil {
			if isArrow {
				return Pat{}, diagnostics.New(diagnostics.ArityMismatch, p.Span,
					"constructor %q expects an argument", c.Symbols.Name(n.Con))
			}
			return Pat{Kind: AppPat{Con: status.Con}, Type: ty, Span: p.Span}, nil
		}
		if !isArrow {
			return Pat{}, diagnostics.New(diagnostics.ArityMismatch, p.Span,
				"constructor %q takes no argument", c.Symbols.Name(n.Con))
		}
		argPat, d := c.elaboratePat(*n.Arg, bindings)
		if d != nil {
			return Pat{}, d
		}
		if d := c.unify(p.Span, argPat.Type, dom); d != nil {
			return Pat{}, d
		}
		return Pat{Kind: AppPat{Con: status.Con, Arg: &argPat}, Type: rng, Span: p.Span}, nil

	case ast.RecordPat:
		seen := map[string]bool{}
		rows := make([]Row[Pat], len(n.Rows))
		tyRows := make([]Row[*Type], len(n.Rows))
		for i, r := range n.Rows {
			name := c.Symbols.Name(r.Label)
			if seen[name] {
				return Pat{}, diagnostics.New(diagnostics.DuplicateLabel, r.Span,
					"duplicate field %q in pattern", name)
			}
			seen[name] = true
			fp, d := c.elaboratePat(r.Data, bindings)
			if d != nil {
				return Pat{}, d
			}
			rows[i] = Row[Pat]{Label: r.Label, Data: fp}
			tyRows[i] = Row[*Type]{Label: r.Label, Data: fp.Type}
		}
		return Pat{Kind: RecordPat{Rows: rows}, Type: c.Types.Alloc(Type{Kind: TRecord, Rows: tyRows}), Span: p.Span}, nil

	case ast.ListPat:
		elemTy := c.Types.FreshVar(c.rank)
		pats := make([]Pat, len(n.Elems))
		for i, e := range n.Elems {
			ep, d := c.elaboratePat(e, bindings)
			if d != nil {
				return Pat{}, d
			}
			if d := c.unify(e.Span, ep.Type, elemTy); d != nil {
				return Pat{}, d
			}
			pats[i] = ep
		}
		return Pat{Kind: ListPat{Elems: pats}, Type: c.Types.List(elemTy), Span: p.Span}, nil

	case ast.ConstraintPat:
		inner, d := c.elaboratePat(n.Pat, bindings)
		if d != nil {
			return Pat{}, d
		}
		declared, d := c.elaborateType(n.Ty)
		if d != nil {
			return Pat{}, d
		}
		if d := c.unify(p.Span, inner.Type, declared); d != nil {
			return Pat{}, d
		}
		return inner, nil

	case ast.FlatAppPat:
		return c.elaborateFlatAppPat(n, bindings)
	}
	return Pat{}, diagnostics.BugAt(p.Span, "unhandled pattern node")
}

func (c *Context) elaborateFlatAppPat(n ast.FlatAppPat, bindings *[]Binding) (Pat, *diagnostics.Diagnostic) {
	if d := c.checkConstructorRuns(n.Pats); d != nil {
		return Pat{}, d
	}
	atoms := make([]fixity.Atom[ast.Pat], len(n.Pats))
	for i, sub := range n.Pats {
		sym, isOperator := patSymbol(sub)
		atoms[i] = fixity.Atom[ast.Pat]{Val: sub, Sym: sym, Operator: isOperator}
	}
	// checkConstructorRuns guarantees fn is the named head of a two-atom
	// run, so this never folds over an already-applied constructor.
	apply := func(fn, arg ast.Pat) ast.Pat {
		name, _ := patSymbol(fn)
		return ast.NewPat(ast.AppPat{Con: name, Arg: &arg}, fn.Span.Plus(arg.Span))
	}
	combine := func(op symbols.Symbol, l, r ast.Pat) ast.Pat {
		tuple := ast.NewPat(ast.RecordPat{Rows: []ast.Row[ast.Pat]{
			{Label: c.Symbols.TupleLabel(1), Data: l, Span: l.Span},
			{Label: c.Symbols.TupleLabel(2), Data: r, Span: r.Span},
		}}, l.Span.Plus(r.Span))
		return ast.NewPat(ast.AppPat{Con: op, Arg: &tuple}, l.Span.Plus(r.Span))
	}
	sp := token.Dummy()
	if len(n.Pats) > 0 {
		sp = n.Pats[0].Span.Plus(n.Pats[len(n.Pats)-1].Span)
	}
	resolved, err := fixity.Resolve(atoms, c, apply, combine)
	if err != nil {
		return Pat{}, fixityDiag(err, sp)
	}
	return c.elaboratePat(resolved, bindings)
}

// checkConstructorRuns rejects juxtaposition runs no pattern can reduce
// to: constructors take exactly one argument, so a run of three or more
// operand atoms is an arity error, and a two-atom run must be headed by a
// constructor-shaped name (not a wildcard, literal or compound pattern).
// A run is a maximal stretch of atoms none of which is bound infix in the
// current scope.
func (c *Context) checkConstructorRuns(pats []ast.Pat) *diagnostics.Diagnostic {
	runStart := -1
	flush := func(end int) *diagnostics.Diagnostic {
		if runStart < 0 {
			return nil
		}
		sp := pats[runStart].Span.Plus(pats[end-1].Span)
		if end-runStart > 2 {
			return diagnostics.New(diagnostics.ArityMismatch, sp,
				"constructor pattern applied to more than one argument")
		}
		if end-runStart == 2 {
			if _, ok := patSymbol(pats[runStart]); !ok {
				return diagnostics.New(diagnostics.NonConstructorInPattern, sp,
					"pattern application head is not a constructor name")
			}
		}
		return nil
	}
	for i, p := range pats {
		if sym, ok := patSymbol(p); ok {
			if _, infix := c.LookupInfix(sym); infix {
				if d := flush(i); d != nil {
					return d
				}
				runStart = -1
				continue
			}
		}
		if runStart < 0 {
			runStart = i
		}
	}
	return flush(len(pats))
}

// patSymbol reports the constructor/operator symbol a FlatAppPat element
// denotes, if any: a bare VarPat may name an infix operator.
func patSymbol(p ast.Pat) (symbols.Symbol, bool) {
	switch n := p.Data.(type) {
	case ast.VarPat:
		return n.Name, true
	case ast.AppPat:
		return n.Con, true
	}
	return symbols.Symbol{}, false
}

func (c *Context) constructorIsNullary(ct Constructor) bool {
	sch, _, ok := c.lookupValue(ct.Name)
	if !ok {
		return true
	}
	_, _, isArrow := DeArrow(sch.Body)
	return !isArrow
}
