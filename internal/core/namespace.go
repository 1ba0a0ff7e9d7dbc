package core

import (
	"github.com/google/uuid"

	"github.com/smlkit/smlc/internal/fixity"
	"github.com/smlkit/smlc/internal/symbols"
)

// ScopeId indexes into Context.scopes; stable across scope exit.
type ScopeId int

// TypeId indexes into Context.types.
type TypeId int

// ExprId indexes into Context.values.
type ExprId int

// Namespace is one scope frame.
type Namespace struct {
	parent ScopeId
	hasParent bool
	types  map[symbols.Symbol]TypeId
	values map[symbols.Symbol]ExprId
	infix  map[symbols.Symbol]infixEntry
}

// infixEntry is one scope's answer for an identifier in operator position:
// either a binding-power pair, or an explicit `nonfix` that shadows any
// outer infix declaration of the same name.
type infixEntry struct {
	fix    fixity.Fixity
	nonfix bool
}

func newNamespace(parent ScopeId, hasParent bool) *Namespace {
	return &Namespace{
		parent:    parent,
		hasParent: hasParent,
		types:     make(map[symbols.Symbol]TypeId),
		values:    make(map[symbols.Symbol]ExprId),
		infix:     make(map[symbols.Symbol]infixEntry),
	}
}

// tyvarBinding is one entry of the tyvar binder LIFO stack.
type tyvarBinding struct {
	name symbols.Symbol
	tv   *TypeVar
}

// Context owns every arena, global table and scope frame for one
// compilation unit.
type Context struct {
	// UnitID distinguishes this compilation unit's elaborated artifacts
	// from any other unit's when several Contexts coexist downstream.
	UnitID uuid.UUID

	Symbols  *symbols.Table
	Builtins symbols.Builtins
	Tycons   *BuiltinTycons

	Types *TypeArena
	Exprs *ExprArena
	Pats  *PatArena

	scopes  []*Namespace
	current ScopeId

	types  []TypeStructure
	values []valueEntry

	tyvars []tyvarBinding

	rank int

	// exnTag numbers exception constructors across the whole unit, so the
	// extensible exn sum never reuses a tag the way per-datatype tags may.
	exnTag uint32

	decls []Decl
}

type valueEntry struct {
	Scheme Scheme
	Status IdStatus
}

// New builds a Context with the nine built-in type constructors and the
// prelude value bindings (nil, ::, true, false, ref) installed into a root
// scope.
func New() *Context {
	tbl := symbols.NewTable()
	builtins := symbols.NewBuiltins(tbl)
	tycons := NewBuiltinTycons(tbl)

	c := &Context{
		UnitID:   uuid.New(),
		Symbols:  tbl,
		Builtins: builtins,
		Tycons:   tycons,
		Types:    NewTypeArena(tycons),
		Exprs:    NewExprArena(tbl),
		Pats:     NewPatArena(tbl),
	}
	root := newNamespace(0, false)
	c.scopes = append(c.scopes, root)
	c.current = 0

	for _, tc := range tycons.All() {
		c.defineType(tc.Name, TypeStructure{Kind: TSTycon, Con: tc})
	}
	c.installPrelude()
	return c
}

func (c *Context) installPrelude() {
	listID, _ := c.lookupTypeId(c.Tycons.List.Name)
	boolID, _ := c.lookupTypeId(c.Tycons.Bool.Name)
	refID, _ := c.lookupTypeId(c.Tycons.Ref.Name)

	a := c.Types.FreshVar(0)
	listA := c.Types.List(a)

	nilCtor := Constructor{Name: c.Builtins.Nil, TypeID: int(listID), Tag: 0}
	c.defineValue(c.Builtins.Nil, PolyScheme([]uint64{a.Var.ID}, listA), IdStatus{Kind: IdCon, Con: nilCtor})

	a2 := c.Types.FreshVar(0)
	listA2 := c.Types.List(a2)
	consArg := c.Types.Tuple([]*Type{a2, listA2}, c.Symbols)
	consTy := c.Types.Arrow(consArg, listA2)
	consCtor := Constructor{Name: c.Builtins.Cons, TypeID: int(listID), Tag: 1}
	c.defineValue(c.Builtins.Cons, PolyScheme([]uint64{a2.Var.ID}, consTy), IdStatus{Kind: IdCon, Con: consCtor})
	c.defineInfix(c.Builtins.Cons, fixity.FromDecl(fixity.Infixr, 5))

	trueCtor := Constructor{Name: c.Builtins.True, TypeID: int(boolID), Tag: 0}
	c.defineValue(c.Builtins.True, MonoScheme(c.Types.Bool()), IdStatus{Kind: IdCon, Con: trueCtor})
	falseCtor := Constructor{Name: c.Builtins.False, TypeID: int(boolID), Tag: 1}
	c.defineValue(c.Builtins.False, MonoScheme(c.Types.Bool()), IdStatus{Kind: IdCon, Con: falseCtor})

	r := c.Types.FreshVar(0)
	refTy := c.Types.Arrow(r, c.Types.Ref(r))
	refCtor := Constructor{Name: c.Builtins.Ref, TypeID: int(refID), Tag: 0}
	c.defineValue(c.Builtins.Ref, PolyScheme([]uint64{r.Var.ID}, refTy), IdStatus{Kind: IdCon, Con: refCtor})
}

// Decls returns every top-level declaration elaborated so far.
func (c *Context) Decls() []Decl { return c.decls }

// Rank returns the current let-nesting depth, used when allocating fresh
// type variables that should be generalizable at this level.
func (c *Context) Rank() int { return c.rank }

// withScope pushes a fresh child frame of the current scope, runs body, and
// restores current on every exit path.
func (c *Context) withScope(body func() error) error {
	parent := c.current
	c.scopes = append(c.scopes, newNamespace(parent, true))
	c.current = ScopeId(len(c.scopes) - 1)
	defer func() { c.current = parent }()
	return body()
}

// withRank runs body with the rank incremented by one, restoring it on
// exit; elaborateVal runs each right-hand side under it, so the free
// variables created there can be told apart from the enclosing scope's.
func (c *Context) withRank(body func() error) error {
	c.rank++
	defer func() { c.rank-- }()
	return body()
}

// withTyvars records the tyvar binder stack's height, runs body, then
// truncates back to that height on exit.
func (c *Context) withTyvars(body func() error) error {
	height := len(c.tyvars)
	defer func() { c.tyvars = c.tyvars[:height] }()
	return body()
}

// bindTyvar pushes a surface tyvar name bound to a fresh inference
// variable at the current rank, returning it.
func (c *Context) bindTyvar(name symbols.Symbol) *TypeVar {
	tv := c.Types.FreshTypeVar(c.rank)
	c.tyvars = append(c.tyvars, tyvarBinding{name: name, tv: tv})
	return tv
}

// lookupTyvar searches the binder stack from the top down, so an inner
// `'a` shadows an outer one of the same name.
func (c *Context) lookupTyvar(name symbols.Symbol) (*TypeVar, bool) {
	for i := len(c.tyvars) - 1; i >= 0; i-- {
		if c.tyvars[i].name == name {
			return c.tyvars[i].tv, true
		}
	}
	return nil, false
}

// defineType installs a TypeStructure into the global table and binds name
// to it in the current scope.
func (c *Context) defineType(name symbols.Symbol, ts TypeStructure) TypeId {
	id := TypeId(len(c.types))
	c.types = append(c.types, ts)
	c.scopes[c.current].types[name] = id
	return id
}

// defineValue installs a (Scheme, IdStatus) into the global table and binds
// name to it in the current scope.
func (c *Context) defineValue(name symbols.Symbol, sch Scheme, status IdStatus) ExprId {
	id := ExprId(len(c.values))
	c.values = append(c.values, valueEntry{Scheme: sch, Status: status})
	c.scopes[c.current].values[name] = id
	return id
}

// defineInfix records a fixity declaration in the current scope.
func (c *Context) defineInfix(name symbols.Symbol, f fixity.Fixity) {
	c.scopes[c.current].infix[name] = infixEntry{fix: f}
}

// defineNonfix shadows any outer infix declaration of name, returning it
// to ordinary (prefix application) position.
func (c *Context) defineNonfix(name symbols.Symbol) {
	c.scopes[c.current].infix[name] = infixEntry{nonfix: true}
}

// lookupType walks current -> parent -> ... for a type binding.
func (c *Context) lookupType(name symbols.Symbol) (TypeStructure, bool) {
	id, ok := c.lookupTypeId(name)
	if !ok {
		return TypeStructure{}, false
	}
	return c.types[id], true
}

func (c *Context) lookupTypeId(name symbols.Symbol) (TypeId, bool) {
	for scope := c.scopes[c.current]; ; {
		if id, ok := scope.types[name]; ok {
			return id, true
		}
		if !scope.hasParent {
			return 0, false
		}
		scope = c.scopes[scope.parent]
	}
}

// lookupValue walks current -> parent -> ... for a value binding.
func (c *Context) lookupValue(name symbols.Symbol) (Scheme, IdStatus, bool) {
	id, ok := c.lookupValueId(name)
	if !ok {
		return Scheme{}, IdStatus{}, false
	}
	entry := c.values[id]
	return entry.Scheme, entry.Status, true
}

func (c *Context) lookupValueId(name symbols.Symbol) (ExprId, bool) {
	for scope := c.scopes[c.current]; ; {
		if id, ok := scope.values[name]; ok {
			return id, true
		}
		if !scope.hasParent {
			return 0, false
		}
		scope = c.scopes[scope.parent]
	}
}

// LookupInfix walks current -> parent -> ... for a fixity declaration,
// implementing fixity.Query so internal/fixity.Resolve can call it
// directly without a core -> fixity adapter type.
func (c *Context) LookupInfix(name symbols.Symbol) (fixity.Fixity, bool) {
	for scope := c.scopes[c.current]; ; {
		if e, ok := scope.infix[name]; ok {
			if e.nonfix {
				return fixity.Fixity{}, false
			}
			return e.fix, true
		}
		if !scope.hasParent {
			return fixity.Fixity{}, false
		}
		scope = c.scopes[scope.parent]
	}
}

// TypeStructureAt returns the global table entry id refers to.
func (c *Context) TypeStructureAt(id TypeId) (TypeStructure, bool) {
	if int(id) < 0 || int(id) >= len(c.types) {
		return TypeStructure{}, false
	}
	return c.types[id], true
}

// ValueAt returns the scheme and status of the global value entry id
// refers to.
func (c *Context) ValueAt(id ExprId) (Scheme, IdStatus, bool) {
	if int(id) < 0 || int(id) >= len(c.values) {
		return Scheme{}, IdStatus{}, false
	}
	e := c.values[id]
	return e.Scheme, e.Status, true
}
