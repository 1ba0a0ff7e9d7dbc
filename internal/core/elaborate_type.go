package core

import (
	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/fixity"
	"github.com/smlkit/smlc/internal/token"
)

// elaborateType turns a surface type expression into an IR Type, resolving
// tyvar references against the current binder stack (with allow_unbound
// governed by the caller already having bound every tyvar it declares) and
// type-constructor names against the current scope.
func (c *Context) elaborateType(t ast.Type) (*Type, *diagnostics.Diagnostic) {
	switch n := t.Data.(type) {
	case ast.TyVar:
		if tv, ok := c.lookupTyvar(n.Name); ok {
			return &Type{Kind: TVar, Var: tv}, nil
		}
		return nil, diagnostics.New(diagnostics.UnboundTyvar, t.Span,
			"unbound type variable %q", c.Symbols.Name(n.Name))

	case ast.TyCon:
		ts, ok := c.lookupType(n.Name)
		if !ok {
			return nil, diagnostics.New(diagnostics.UnboundTycon, t.Span,
				"unbound type constructor %q", c.Symbols.Name(n.Name))
		}
		args := make([]*Type, len(n.Args))
		for i, a := range n.Args {
			at, d := c.elaborateType(a)
			if d != nil {
				return nil, d
			}
			args[i] = at
		}
		switch ts.Kind {
		case TSTycon, TSDatatype:
			if ts.Con.Arity != len(args) {
				return nil, diagnostics.New(diagnostics.ArityMismatch, t.Span,
					"%q expects %d type argument(s), got %d", c.Symbols.Name(n.Name), ts.Con.Arity, len(args))
			}
			return c.Types.Alloc(Type{Kind: TCon, Con: ts.Con, Args: args}), nil
		case TSScheme:
			if len(ts.Sch.Quantified) != len(args) {
				return nil, diagnostics.New(diagnostics.ArityMismatch, t.Span,
					"%q expects %d type argument(s), got %d", c.Symbols.Name(n.Name), len(ts.Sch.Quantified), len(args))
			}
			subst := make(map[uint64]*Type, len(args))
			for i, id := range ts.Sch.Quantified {
				subst[id] = args[i]
			}
			return instantiateWalk(c.Types, ts.Sch.Body, subst), nil
		}
	case ast.TyRecord:
		rows := make([]Row[*Type], len(n.Rows))
		seen := map[string]bool{}
		for i, r := range n.Rows {
			name := c.Symbols.Name(r.Label)
			if seen[name] {
				return nil, diagnostics.New(diagnostics.DuplicateLabel, r.Span,
					"duplicate field %q in type", name)
			}
			seen[name] = true
			rt, d := c.elaborateType(r.Data)
			if d != nil {
				return nil, d
			}
			rows[i] = Row[*Type]{Label: r.Label, Data: rt}
		}
		return c.Types.Alloc(Type{Kind: TRecord, Rows: rows}), nil
	}
	return nil, diagnostics.BugAt(t.Span, "unhandled type node")
}

// fixityDiag maps a fixity.Error into the Diagnostic currency shared by the
// rest of the elaborator.
func fixityDiag(err error, sp token.Span) *diagnostics.Diagnostic {
	fe, ok := err.(*fixity.Error)
	if !ok {
		return diagnostics.BugAt(sp, "unexpected fixity error: %v", err)
	}
	return diagnostics.New(diagnostics.FixityResolution, sp, "%s", fe.Error())
}
