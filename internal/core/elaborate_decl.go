package core

import (
	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/fixity"
	"github.com/smlkit/smlc/internal/symbols"
	"github.com/smlkit/smlc/internal/token"
)

// ElaborateDecl is the public entry point of the elaborator: it
// elaborates one surface declaration and appends every IR declaration it
// produces to the context's exported decls.
func (c *Context) ElaborateDecl(d ast.Decl) *diagnostics.Diagnostic {
	ds, diag := c.elaborateDecl(d)
	if diag != nil {
		return diag
	}
	c.decls = append(c.decls, ds...)
	return nil
}

// elaborateDecl elaborates one surface declaration, returning the IR
// declarations it produces without touching c.decls; callers decide
// whether those belong at top level (ElaborateDecl) or inside a Let
// (elaborateExpr's LetExpr case).
func (c *Context) elaborateDecl(d ast.Decl) ([]Decl, *diagnostics.Diagnostic) {
	switch n := d.Data.(type) {
	case ast.ValDecl:
		return c.elaborateVal(n, d.Span)
	case ast.TypeDecl:
		return nil, c.elaborateTypebinds(n.Binds)
	case ast.DatatypeDecl:
		return c.elaborateDatatypes(n.Binds, d.Span)
	case ast.ExceptionDecl:
		return c.elaborateExceptions(n.Variants, d.Span)
	case ast.FixityDecl:
		assoc := fixity.Infix
		switch n.Fix {
		case ast.FixInfixr:
			assoc = fixity.Infixr
		case ast.FixNonfix:
			assoc = fixity.Nonfix
		}
		if assoc == fixity.Nonfix {
			c.defineNonfix(n.Name)
		} else {
			c.defineInfix(n.Name, fixity.FromDecl(assoc, n.BP))
		}
		return nil, nil
	case ast.LocalDecl:
		var result []Decl
		err := c.withScope(func() error {
			for _, ld := range n.Decls {
				if _, dd := c.elaborateDecl(ld); dd != nil {
					return dd
				}
			}
			for _, bd := range n.Body {
				ds, dd := c.elaborateDecl(bd)
				if dd != nil {
					return dd
				}
				result = append(result, ds...)
			}
			return nil
		})
		if err != nil {
			return nil, err.(*diagnostics.Diagnostic)
		}
		return result, nil
	case ast.SeqDecl:
		var result []Decl
		for _, sd := range n.Decls {
			ds, dd := c.elaborateDecl(sd)
			if dd != nil {
				return result, dd
			}
			result = append(result, ds...)
		}
		return result, nil
	case ast.FunctionDecl:
		return nil, diagnostics.New(diagnostics.Unsupported, d.Span,
			"mutually recursive fun bindings are not supported")
	case ast.DoDecl:
		return nil, diagnostics.New(diagnostics.Unsupported, d.Span,
			"do declarations are not supported")
	}
	return nil, diagnostics.BugAt(d.Span, "unhandled declaration node")
}

// elaborateVal elaborates `val pat = expr`: the expression first, then the
// pattern with binding collection on, unifying the two; each collected
// binding is generalized under the value restriction.
func (c *Context) elaborateVal(n ast.ValDecl, sp token.Span) ([]Decl, *diagnostics.Diagnostic) {
	var expr *Expr
	var diag *diagnostics.Diagnostic
	rankErr := c.withRank(func() error {
		expr, diag = c.elaborateExpr(n.Expr)
		if diag != nil {
			return diag
		}
		return nil
	})
	if rankErr != nil {
		return nil, rankErr.(*diagnostics.Diagnostic)
	}

	var bindings []Binding
	pat, diag := c.elaboratePat(n.Pat, &bindings)
	if diag != nil {
		return nil, diag
	}
	if diag := c.unify(sp, pat.Type, expr.Type); diag != nil {
		return nil, diag
	}

	isValue := c.isSyntacticValue(n.Expr)
	var generalized []uint64
	for _, b := range bindings {
		var sch Scheme
		if isValue {
			sch = Generalize(&Type{Kind: TVar, Var: b.Tv}, c.rank)
			generalized = append(generalized, sch.Quantified...)
		} else {
			sch = MonoScheme(&Type{Kind: TVar, Var: b.Tv})
		}
		c.defineValue(b.Var, sch, IdStatus{Kind: IdVar})
	}
	return []Decl{{Kind: ValIR{Pat: pat, Expr: expr, Generalized: generalized}, Span: sp}}, nil
}

// isSyntacticValue reports whether e is a syntactic value:
// lambdas, constants, variables, constructors (other than ref) applied to
// values, and tuples/lists of values may be generalized; everything else
// (notably ordinary function applications and ref cells) is left
// monomorphic. A FlatApp is judged after fixity resolution would only make
// it an application, so it is conservatively non-expansive only when it is
// a constructor juxtaposition.
func (c *Context) isSyntacticValue(e ast.Expr) bool {
	switch n := e.Data.(type) {
	case ast.Fn:
		return true
	case ast.ConstExpr:
		return true
	case ast.Var:
		return true
	case ast.RecordExpr:
		for _, r := range n.Rows {
			if !c.isSyntacticValue(r.Data) {
				return false
			}
		}
		return true
	case ast.ListExpr:
		for _, el := range n.Elems {
			if !c.isSyntacticValue(el) {
				return false
			}
		}
		return true
	case ast.App:
		return c.isConstructorExpr(n.Fn) && c.isSyntacticValue(n.Arg)
	case ast.FlatApp:
		if len(n.Exprs) == 1 {
			return c.isSyntacticValue(n.Exprs[0])
		}
		if len(n.Exprs) == 2 && c.isConstructorExpr(n.Exprs[0]) {
			return c.isSyntacticValue(n.Exprs[1])
		}
		return false
	case ast.Constraint:
		return c.isSyntacticValue(n.Expr)
	}
	return false
}

// isConstructorExpr reports whether e names a data or exception
// constructor other than ref; applying ref is expansive, which is the
// whole point of the value restriction.
func (c *Context) isConstructorExpr(e ast.Expr) bool {
	v, ok := e.Data.(ast.Var)
	if !ok || v.Name == c.Builtins.Ref {
		return false
	}
	_, status, found := c.lookupValue(v.Name)
	return found && status.Kind != IdVar
}

// elaborateTypebinds installs each `type 'a... t = ty` as a TSScheme.
func (c *Context) elaborateTypebinds(binds []ast.Typebind) *diagnostics.Diagnostic {
	for _, tb := range binds {
		var ty *Type
		var diag *diagnostics.Diagnostic
		var ids []uint64
		err := c.withTyvars(func() error {
			for _, tv := range tb.Tyvars {
				ids = append(ids, c.bindTyvar(tv).ID)
			}
			ty, diag = c.elaborateType(tb.Ty)
			if diag != nil {
				return diag
			}
			return nil
		})
		if err != nil {
			return err.(*diagnostics.Diagnostic)
		}
		var sch Scheme
		if len(ids) == 0 {
			sch = MonoScheme(ty)
		} else {
			sch = PolyScheme(ids, ty)
		}
		c.defineType(tb.Tycon, TypeStructure{Kind: TSScheme, Sch: sch})
	}
	return nil
}

// elaborateDatatypes installs a (possibly mutually recursive) datatype
// block in two passes: tycons first so constructors can reference sibling
// datatypes, then constructor schemes.
func (c *Context) elaborateDatatypes(dbs []ast.Datatype, _ token.Span) ([]Decl, *diagnostics.Diagnostic) {
	typeIDs := make([]TypeId, len(dbs))
	tycons := make([]Tycon, len(dbs))
	for i, db := range dbs {
		tc := Tycon{Name: db.Tycon, Arity: len(db.Tyvars)}
		tycons[i] = tc
		typeIDs[i] = c.defineType(db.Tycon, TypeStructure{Kind: TSTycon, Con: tc})
	}

	var decls []Decl
	for i, db := range dbs {
		cons, diag := c.elaborateDatatypeConstructors(db, tycons[i], int(typeIDs[i]))
		if diag != nil {
			return nil, diag
		}
		c.types[typeIDs[i]] = TypeStructure{Kind: TSDatatype, Con: tycons[i], Cons: cons}
		decls = append(decls, Decl{Kind: DatatypeIR{Tycon: tycons[i], Cons: cons}, Span: db.Span})
	}
	return decls, nil
}

func (c *Context) elaborateDatatypeConstructors(db ast.Datatype, tc Tycon, typeID int) ([]Constructor, *diagnostics.Diagnostic) {
	seen := map[symbols.Symbol]bool{}
	cons := make([]Constructor, len(db.Constructors))
	var diag *diagnostics.Diagnostic
	err := c.withTyvars(func() error {
		tyArgs := make([]*Type, len(db.Tyvars))
		for i, tv := range db.Tyvars {
			tyArgs[i] = &Type{Kind: TVar, Var: c.bindTyvar(tv)}
		}
		datatypeTy := c.Types.Alloc(Type{Kind: TCon, Con: tc, Args: tyArgs})
		ids := make([]uint64, len(tyArgs))
		for i, a := range tyArgs {
			ids[i] = a.Var.ID
		}

		for i, variant := range db.Constructors {
			if seen[variant.Label] || c.existingConstructorConflicts(variant.Label) {
				diag = diagnostics.New(diagnostics.DuplicateConstructor, variant.Span,
					"constructor %q declared twice", c.Symbols.Name(variant.Label))
				return diag
			}
			seen[variant.Label] = true

			ctor := Constructor{Name: variant.Label, TypeID: typeID, Tag: uint32(i)}
			var body *Type
			if variant.Data == nil {
				body = datatypeTy
			} else {
				argTy, d := c.elaborateType(*variant.Data)
				if d != nil {
					diag = d
					return d
				}
				body = c.Types.Arrow(argTy, datatypeTy)
			}
			var sch Scheme
			if len(ids) == 0 {
				sch = MonoScheme(body)
			} else {
				sch = PolyScheme(ids, body)
			}
			c.defineValue(variant.Label, sch, IdStatus{Kind: IdCon, Con: ctor})
			cons[i] = ctor
		}
		return nil
	})
	if err != nil {
		return nil, diag
	}
	return cons, nil
}

// existingConstructorConflicts reports whether name currently resolves to
// a constructor, in the current scope or any enclosing one, so a later
// datatype cannot silently re-bind it.
func (c *Context) existingConstructorConflicts(name symbols.Symbol) bool {
	id, ok := c.lookupValueId(name)
	if !ok {
		return false
	}
	return c.values[id].Status.Kind != IdVar
}

// elaborateExceptions installs exception constructors: identical shape to
// datatype constructors but with IdStatus::Exn and codomain exn.
func (c *Context) elaborateExceptions(variants []ast.Variant, sp token.Span) ([]Decl, *diagnostics.Diagnostic) {
	exnID, _ := c.lookupTypeId(c.Tycons.Exn.Name)
	cons := make([]Constructor, len(variants))
	for i, variant := range variants {
		if c.existingConstructorConflicts(variant.Label) {
			return nil, diagnostics.New(diagnostics.DuplicateConstructor, variant.Span,
				"exception %q declared twice", c.Symbols.Name(variant.Label))
		}
		ctor := Constructor{Name: variant.Label, TypeID: int(exnID), Tag: c.exnTag}
		c.exnTag++
		var body *Type
		if variant.Data == nil {
			body = c.Types.Exn()
		} else {
			argTy, d := c.elaborateType(*variant.Data)
			if d != nil {
				return nil, d
			}
			body = c.Types.Arrow(argTy, c.Types.Exn())
		}
		c.defineValue(variant.Label, MonoScheme(body), IdStatus{Kind: IdExn, Con: ctor})
		cons[i] = ctor
	}
	return []Decl{{Kind: ExnIR{Cons: cons}, Span: sp}}, nil
}
