package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/token"
)

func sp() token.Span { return token.Dummy() }

func TestUnifyVarWithCon(t *testing.T) {
	c := New()
	v := c.Types.FreshVar(0)
	require.Nil(t, c.unify(sp(), v, c.Types.Int()))
	assert.Same(t, c.Types.Int(), Walk(v))
}

func TestUnifySymmetry(t *testing.T) {
	build := func(c *Context) (*Type, *Type) {
		a := c.Types.FreshVar(0)
		left := c.Types.Arrow(a, c.Types.Bool())
		right := c.Types.Arrow(c.Types.Int(), c.Types.FreshVar(0))
		return left, right
	}

	c1 := New()
	l1, r1 := build(c1)
	require.Nil(t, c1.unify(sp(), l1, r1))

	c2 := New()
	l2, r2 := build(c2)
	require.Nil(t, c2.unify(sp(), r2, l2))

	// Both orders must resolve the operands to the same shape.
	assert.Equal(t, "int -> bool", c1.TypeString(l1))
	assert.Equal(t, "int -> bool", c1.TypeString(r1))
	assert.Equal(t, "int -> bool", c2.TypeString(l2))
	assert.Equal(t, "int -> bool", c2.TypeString(r2))
}

func TestUnifyIdempotence(t *testing.T) {
	c := New()
	a := c.Types.FreshVar(0)
	b := c.Types.FreshVar(0)
	left := c.Types.Arrow(a, b)
	right := c.Types.Arrow(c.Types.Int(), c.Types.String())

	require.Nil(t, c.unify(sp(), left, right))
	firstA, firstB := Walk(a), Walk(b)
	require.Nil(t, c.unify(sp(), left, right))
	assert.Same(t, firstA, Walk(a), "second unify must not re-bind")
	assert.Same(t, firstB, Walk(b))
}

func TestUnifySameVarSucceeds(t *testing.T) {
	c := New()
	v := c.Types.FreshVar(0)
	require.Nil(t, c.unify(sp(), v, v))
	assert.Nil(t, v.Var.Binding, "self-unification binds nothing")
}

func TestOccursCheckRejectsCycles(t *testing.T) {
	c := New()
	v := c.Types.FreshVar(0)
	arrow := c.Types.Arrow(v, c.Types.Int())
	diag := c.unify(sp(), v, arrow)
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.OccursCheck, diag.Kind)
	assert.Nil(t, v.Var.Binding, "failed unification must not bind")
}

func TestUnifyConMismatch(t *testing.T) {
	c := New()
	diag := c.unify(sp(), c.Types.Int(), c.Types.Bool())
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.UnificationFail, diag.Kind)
}

func TestUnifyRecordsLabelSetInsensitiveToOrder(t *testing.T) {
	c := New()
	la := c.Symbols.Intern("a")
	lb := c.Symbols.Intern("b")
	r1 := c.Types.Alloc(Type{Kind: TRecord, Rows: []Row[*Type]{
		{Label: la, Data: c.Types.Int()},
		{Label: lb, Data: c.Types.FreshVar(0)},
	}})
	r2 := c.Types.Alloc(Type{Kind: TRecord, Rows: []Row[*Type]{
		{Label: lb, Data: c.Types.Bool()},
		{Label: la, Data: c.Types.Int()},
	}})
	require.Nil(t, c.unify(sp(), r1, r2))
	assert.Same(t, c.Types.Bool(), Walk(r1.Rows[1].Data))
}

func TestUnifyRecordsLabelSetMismatch(t *testing.T) {
	c := New()
	la := c.Symbols.Intern("a")
	lb := c.Symbols.Intern("b")
	r1 := c.Types.Alloc(Type{Kind: TRecord, Rows: []Row[*Type]{{Label: la, Data: c.Types.Int()}}})
	r2 := c.Types.Alloc(Type{Kind: TRecord, Rows: []Row[*Type]{{Label: lb, Data: c.Types.Int()}}})
	diag := c.unify(sp(), r1, r2)
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.UnificationFail, diag.Kind)
}

func TestUnifyRecordVsCon(t *testing.T) {
	c := New()
	rec := c.Types.Tuple([]*Type{c.Types.Int(), c.Types.Int()}, c.Symbols)
	diag := c.unify(sp(), rec, c.Types.Int())
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.UnificationFail, diag.Kind)
}

func TestUnifyVarVarTakesMinRank(t *testing.T) {
	c := New()
	outer := c.Types.FreshVar(1)
	inner := c.Types.FreshVar(3)
	require.Nil(t, c.unify(sp(), inner, outer))
	assert.Equal(t, 1, inner.Var.Rank, "rank lowers to the shallower side")
}

func TestUnifyListPairsAgainstFirst(t *testing.T) {
	c := New()
	v1 := c.Types.FreshVar(0)
	v2 := c.Types.FreshVar(0)
	require.Nil(t, c.unifyList(sp(), []*Type{c.Types.Int(), v1, v2}))
	assert.Same(t, c.Types.Int(), Walk(v1))
	assert.Same(t, c.Types.Int(), Walk(v2))

	diag := c.unifyList(sp(), []*Type{c.Types.Int(), c.Types.Bool()})
	require.NotNil(t, diag)
}

func TestWalkPathCompresses(t *testing.T) {
	c := New()
	v1 := c.Types.FreshVar(0)
	v2 := c.Types.FreshVar(0)
	v3 := c.Types.FreshVar(0)
	require.Nil(t, c.unify(sp(), v1, v2))
	require.Nil(t, c.unify(sp(), v2, v3))
	require.Nil(t, c.unify(sp(), v3, c.Types.Int()))

	assert.Same(t, c.Types.Int(), Walk(v1))
	// After walking, every link on the chain points directly at the end.
	assert.Same(t, c.Types.Int(), v1.Var.Binding)
}

func TestGeneralizeRespectsRank(t *testing.T) {
	c := New()
	deep := c.Types.FreshVar(2)
	shallow := c.Types.FreshVar(0)
	ty := c.Types.Arrow(deep, shallow)

	sch := Generalize(ty, 0)
	require.Len(t, sch.Quantified, 1)
	assert.Equal(t, deep.Var.ID, sch.Quantified[0], "only vars deeper than the binding rank generalize")
}

func TestInstantiateSharesOnlyQuantified(t *testing.T) {
	c := New()
	q := c.Types.FreshVar(1)
	free := c.Types.FreshVar(0)
	body := c.Types.Arrow(q, free)
	sch := PolyScheme([]uint64{q.Var.ID}, body)

	inst := Instantiate(c.Types, sch, 0)
	dom, rng, ok := DeArrow(inst)
	require.True(t, ok)
	assert.NotEqual(t, q.Var.ID, Walk(dom).Var.ID, "quantified var is replaced")
	assert.Equal(t, free.Var.ID, Walk(rng).Var.ID, "free var passes through")
}

func TestInstantiateMonoReturnsBody(t *testing.T) {
	c := New()
	body := c.Types.Int()
	assert.Same(t, body, Instantiate(c.Types, MonoScheme(body), 0))
}
