package core

import (
	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/fixity"
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// elaborateExpr elaborates a surface expression into IR.
// Each case computes (ExprKind, Type); this wrapper attaches the span and
// allocates the node.
func (c *Context) elaborateExpr(e ast.Expr) (*Expr, *diagnostics.Diagnostic) {
	switch n := e.Data.(type) {
	case ast.ConstExpr:
		cv, ty := c.elaborateConst(n.Value)
		return c.Exprs.Alloc(Expr{Kind: ConstExpr{Value: cv}, Type: ty, Span: e.Span}), nil

	case ast.Var:
		sch, status, ok := c.lookupValue(n.Name)
		if !ok {
			return nil, diagnostics.New(diagnostics.UnboundVariable, e.Span,
				"unbound variable %q", c.Symbols.Name(n.Name))
		}
		ty := Instantiate(c.Types, sch, c.rank)
		if status.Kind != IdVar {
			return c.Exprs.Alloc(Expr{Kind: ConExpr{Con: status.Con}, Type: ty, Span: e.Span}), nil
		}
		return c.Exprs.Alloc(Expr{Kind: VarExpr{Name: n.Name}, Type: ty, Span: e.Span}), nil

	case ast.App:
		fn, d := c.elaborateExpr(n.Fn)
		if d != nil {
			return nil, d
		}
		arg, d := c.elaborateExpr(n.Arg)
		if d != nil {
			return nil, d
		}
		beta := c.Types.FreshVar(c.rank)
		if d := c.unify(e.Span, fn.Type, c.Types.Arrow(arg.Type, beta)); d != nil {
			return nil, d
		}
		return c.Exprs.Alloc(Expr{Kind: AppExpr{Fn: fn, Arg: arg}, Type: beta, Span: e.Span}), nil

	case ast.Fn:
		return c.elaborateFn(n.Rules, e.Span)

	case ast.CaseExpr:
		scrut, d := c.elaborateExpr(n.Scrutinee)
		if d != nil {
			return nil, d
		}
		rules, arrow, d := c.elaborateRules(n.Rules)
		if d != nil {
			return nil, d
		}
		dom, rng, ok := DeArrow(arrow)
		if !ok {
			return nil, diagnostics.BugAt(e.Span, "case rule type is not an arrow")
		}
		if d := c.unify(e.Span, scrut.Type, dom); d != nil {
			return nil, d
		}
		return c.Exprs.Alloc(Expr{Kind: CaseIRExpr{Scrutinee: scrut, Rules: rules}, Type: rng, Span: e.Span}), nil

	case ast.If:
		return c.elaborateExpr(c.desugarIf(n.Cond, n.Then, n.Else, e.Span))

	case ast.Andalso:
		return c.elaborateExpr(c.desugarIf(n.Left, n.Right, c.falseLit(e.Span), e.Span))

	case ast.Orelse:
		return c.elaborateExpr(c.desugarIf(n.Left, c.trueLit(e.Span), n.Right, e.Span))

	case ast.Raise:
		inner, d := c.elaborateExpr(n.Expr)
		if d != nil {
			return nil, d
		}
		if d := c.unify(e.Span, inner.Type, c.Types.Exn()); d != nil {
			return nil, d
		}
		return c.Exprs.Alloc(Expr{Kind: RaiseExpr{Expr: inner}, Type: c.Types.FreshVar(c.rank), Span: e.Span}), nil

	case ast.Handle:
		body, d := c.elaborateExpr(n.Expr)
		if d != nil {
			return nil, d
		}
		rules, arrow, d := c.elaborateRules(n.Rules)
		if d != nil {
			return nil, d
		}
		dom, rng, ok := DeArrow(arrow)
		if !ok {
			return nil, diagnostics.BugAt(e.Span, "handle rule type is not an arrow")
		}
		if d := c.unify(e.Span, dom, c.Types.Exn()); d != nil {
			return nil, d
		}
		if d := c.unify(e.Span, body.Type, rng); d != nil {
			return nil, d
		}
		return c.Exprs.Alloc(Expr{Kind: HandleExpr{Body: body, Rules: rules}, Type: rng, Span: e.Span}), nil

	case ast.LetExpr:
		var body *Expr
		var decls []Decl
		d := c.withScope(func() error {
			for _, sd := range n.Decls {
				ds, dd := c.elaborateDecl(sd)
				if dd != nil {
					return dd
				}
				decls = append(decls, ds...)
			}
			var dd *diagnostics.Diagnostic
			body, dd = c.elaborateExpr(n.Body)
			if dd != nil {
				return dd
			}
			return nil
		})
		if d != nil {
			return nil, d.(*diagnostics.Diagnostic)
		}
		return c.Exprs.Alloc(Expr{Kind: LetIRExpr{Decls: decls, Body: body}, Type: body.Type, Span: e.Span}), nil

	case ast.ListExpr:
		elemTy := c.Types.FreshVar(c.rank)
		elems := make([]*Expr, len(n.Elems))
		for i, el := range n.Elems {
			ee, d := c.elaborateExpr(el)
			if d != nil {
				return nil, d
			}
			if d := c.unify(el.Span, ee.Type, elemTy); d != nil {
				return nil, d
			}
			elems[i] = ee
		}
		return c.Exprs.Alloc(Expr{Kind: ListIRExpr{Elems: elems}, Type: c.Types.List(elemTy), Span: e.Span}), nil

	case ast.RecordExpr:
		seen := map[string]bool{}
		rows := make([]Row[*Expr], len(n.Rows))
		tyRows := make([]Row[*Type], len(n.Rows))
		for i, r := range n.Rows {
			name := c.Symbols.Name(r.Label)
			if seen[name] {
				return nil, diagnostics.New(diagnostics.DuplicateLabel, r.Span,
					"duplicate field %q in record", name)
			}
			seen[name] = true
			fe, d := c.elaborateExpr(r.Data)
			if d != nil {
				return nil, d
			}
			rows[i] = Row[*Expr]{Label: r.Label, Data: fe}
			tyRows[i] = Row[*Type]{Label: r.Label, Data: fe.Type}
		}
		return c.Exprs.Alloc(Expr{Kind: RecordIRExpr{Rows: rows}, Type: c.Types.Alloc(Type{Kind: TRecord, Rows: tyRows}), Span: e.Span}), nil

	case ast.SeqExpr:
		if len(n.Exprs) == 0 {
			return nil, diagnostics.BugAt(e.Span, "empty sequence expression")
		}
		exprs := make([]*Expr, len(n.Exprs))
		for i, se := range n.Exprs {
			ee, d := c.elaborateExpr(se)
			if d != nil {
				return nil, d
			}
			if i < len(n.Exprs)-1 {
				if d := c.unify(se.Span, ee.Type, c.Types.Unit()); d != nil {
					return nil, d
				}
			}
			exprs[i] = ee
		}
		last := exprs[len(exprs)-1]
		return c.Exprs.Alloc(Expr{Kind: SeqIRExpr{Exprs: exprs}, Type: last.Type, Span: e.Span}), nil

	case ast.Constraint:
		inner, d := c.elaborateExpr(n.Expr)
		if d != nil {
			return nil, d
		}
		declared, d := c.elaborateType(n.Ty)
		if d != nil {
			return nil, d
		}
		if d := c.unify(e.Span, inner.Type, declared); d != nil {
			return nil, d
		}
		return inner, nil

	case ast.FlatApp:
		return c.elaborateFlatApp(n, e.Span)

	case ast.Selector:
		return nil, diagnostics.New(diagnostics.Unsupported, e.Span,
			"record selector expressions are not supported")

	case ast.While:
		return nil, diagnostics.New(diagnostics.Unsupported, e.Span,
			"while loops are not supported")
	}
	return nil, diagnostics.BugAt(e.Span, "unhandled expression node")
}

// elaborateFn wraps rules in a fresh Lambda(g, Case(Var(g), rules)).
func (c *Context) elaborateFn(astRules []ast.Rule, sp token.Span) (*Expr, *diagnostics.Diagnostic) {
	rules, arrow, d := c.elaborateRules(astRules)
	if d != nil {
		return nil, d
	}
	dom, rng, ok := DeArrow(arrow)
	if !ok {
		return nil, diagnostics.BugAt(sp, "fn rule type is not an arrow")
	}
	g := c.Exprs.FreshVar()
	scrut := c.Exprs.Alloc(Expr{Kind: VarExpr{Name: g}, Type: dom, Span: sp})
	caseE := c.Exprs.Alloc(Expr{Kind: CaseIRExpr{Scrutinee: scrut, Rules: rules}, Type: rng, Span: sp})
	return c.Exprs.Alloc(Expr{Kind: LambdaExpr{Param: g, Body: caseE}, Type: arrow, Span: sp}), nil
}

// elaborateRules elaborates every rule of a fn/case/handle, unifying all
// rule types to a single arrow(alpha, rho).
func (c *Context) elaborateRules(astRules []ast.Rule) ([]Rule, *Type, *diagnostics.Diagnostic) {
	rules := make([]Rule, len(astRules))
	tys := make([]*Type, len(astRules))
	for i, r := range astRules {
		var bindings []Binding
		pat, d := c.elaboratePat(r.Pat, &bindings)
		if d != nil {
			return nil, nil, d
		}
		var body *Expr
		derr := c.withScope(func() error {
			for _, b := range bindings {
				c.defineValue(b.Var, MonoScheme(&Type{Kind: TVar, Var: b.Tv}), IdStatus{Kind: IdVar})
			}
			var dd *diagnostics.Diagnostic
			body, dd = c.elaborateExpr(r.Expr)
			if dd != nil {
				return dd
			}
			return nil
		})
		if derr != nil {
			return nil, nil, derr.(*diagnostics.Diagnostic)
		}
		arrow := c.Types.Arrow(pat.Type, body.Type)
		rules[i] = Rule{Pat: pat, Expr: body, Span: r.Span}
		tys[i] = arrow
	}
	if d := c.unifyList(astRules[0].Span, tys); d != nil {
		return nil, nil, d
	}
	return rules, tys[0], nil
}

func (c *Context) elaborateFlatApp(n ast.FlatApp, sp token.Span) (*Expr, *diagnostics.Diagnostic) {
	atoms := make([]fixity.Atom[ast.Expr], len(n.Exprs))
	for i, sub := range n.Exprs {
		sym, isOperator := exprSymbol(sub)
		atoms[i] = fixity.Atom[ast.Expr]{Val: sub, Sym: sym, Operator: isOperator}
	}
	apply := func(fn, arg ast.Expr) ast.Expr {
		return ast.NewExpr(ast.App{Fn: fn, Arg: arg}, fn.Span.Plus(arg.Span))
	}
	combine := func(op symbols.Symbol, l, r ast.Expr) ast.Expr {
		tuple := ast.NewExpr(ast.RecordExpr{Rows: []ast.Row[ast.Expr]{
			{Label: c.Symbols.TupleLabel(1), Data: l, Span: l.Span},
			{Label: c.Symbols.TupleLabel(2), Data: r, Span: r.Span},
		}}, l.Span.Plus(r.Span))
		opExpr := ast.NewExpr(ast.Var{Name: op}, l.Span.Plus(r.Span))
		return ast.NewExpr(ast.App{Fn: opExpr, Arg: tuple}, l.Span.Plus(r.Span))
	}
	resolved, err := fixity.Resolve(atoms, c, apply, combine)
	if err != nil {
		return nil, fixityDiag(err, sp)
	}
	return c.elaborateExpr(resolved)
}

// exprSymbol reports the symbol a FlatApp element denotes, if any: a bare
// Var may name an infix operator.
func exprSymbol(e ast.Expr) (symbols.Symbol, bool) {
	if v, ok := e.Data.(ast.Var); ok {
		return v.Name, true
	}
	return symbols.Symbol{}, false
}

func (c *Context) elaborateConst(v ast.Const) (ConstValue, *Type) {
	switch v.Kind {
	case ast.ConstInt:
		return ConstValue{Kind: ConstInt, Int: v.Int}, c.Types.Int()
	case ast.ConstString:
		return ConstValue{Kind: ConstString, Str: v.Str}, c.Types.String()
	case ast.ConstChar:
		return ConstValue{Kind: ConstChar, Chr: v.Chr}, c.Types.Char()
	default:
		return ConstValue{Kind: ConstUnit}, c.Types.Unit()
	}
}

// desugarIf rewrites If(c,a,b) as Case(c, [true=>a, false=>b]).
func (c *Context) desugarIf(cond, then, els ast.Expr, sp token.Span) ast.Expr {
	return ast.NewExpr(ast.CaseExpr{
		Scrutinee: cond,
		Rules: []ast.Rule{
			{Pat: c.boolPat(true, sp), Expr: then, Span: sp},
			{Pat: c.boolPat(false, sp), Expr: els, Span: sp},
		},
	}, sp)
}

func (c *Context) boolPat(v bool, sp token.Span) ast.Pat {
	name := c.Builtins.False
	if v {
		name = c.Builtins.True
	}
	return ast.NewPat(ast.VarPat{Name: name}, sp)
}

func (c *Context) trueLit(sp token.Span) ast.Expr {
	return ast.NewExpr(ast.Var{Name: c.Builtins.True}, sp)
}

func (c *Context) falseLit(sp token.Span) ast.Expr {
	return ast.NewExpr(ast.Var{Name: c.Builtins.False}, sp)
}
