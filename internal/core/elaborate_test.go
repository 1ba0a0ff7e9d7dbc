package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/lexer"
	"github.com/smlkit/smlc/internal/parser"
)

// elabInto lexes, parses and elaborates src into c, returning the first
// diagnostic, if any.
func elabInto(t *testing.T, c *Context, src string) *diagnostics.Diagnostic {
	t.Helper()
	toks, diag := lexer.All(src)
	require.Nil(t, diag, "lex error: %v", diag)
	prog, diag := parser.New(toks, c.Symbols).ParseProgram()
	require.Nil(t, diag, "parse error: %v", diag)
	for _, d := range prog {
		if diag := c.ElaborateDecl(d); diag != nil {
			return diag
		}
	}
	return nil
}

func elab(t *testing.T, src string) (*Context, *diagnostics.Diagnostic) {
	t.Helper()
	c := New()
	return c, elabInto(t, c, src)
}

// mustElab asserts src elaborates without diagnostics.
func mustElab(t *testing.T, src string) *Context {
	t.Helper()
	c, diag := elab(t, src)
	require.Nil(t, diag, "unexpected diagnostic: %v", diag)
	return c
}

// expectKind asserts src fails with the given diagnostic kind.
func expectKind(t *testing.T, src string, kind diagnostics.Kind) *diagnostics.Diagnostic {
	t.Helper()
	_, diag := elab(t, src)
	require.NotNil(t, diag, "expected %s, elaboration succeeded\ninput: %s", kind, src)
	require.Equal(t, kind, diag.Kind, "wrong diagnostic: %v", diag)
	return diag
}

// schemeOf looks up name's scheme in c's current scope.
func schemeOf(t *testing.T, c *Context, name string) Scheme {
	t.Helper()
	sch, _, ok := c.lookupValue(c.Symbols.Intern(name))
	require.True(t, ok, "no binding for %s", name)
	return sch
}

func TestValConstant(t *testing.T) {
	c := mustElab(t, "val x = 1")
	require.Len(t, c.Decls(), 1)
	val, ok := c.Decls()[0].Kind.(ValIR)
	require.True(t, ok)
	assert.Empty(t, val.Generalized)

	sch := schemeOf(t, c, "x")
	assert.True(t, sch.IsMono())
	assert.Equal(t, "int", c.TypeString(sch.Body))
}

func TestValStringAndChar(t *testing.T) {
	c := mustElab(t, `val s = "hi" val c = #"a"`)
	assert.Equal(t, "string", c.TypeString(schemeOf(t, c, "s").Body))
	assert.Equal(t, "char", c.TypeString(schemeOf(t, c, "c").Body))
}

func TestIdentityIsPolymorphic(t *testing.T) {
	c := mustElab(t, "val id = fn x => x")
	sch := schemeOf(t, c, "id")
	require.Len(t, sch.Quantified, 1)

	// Two instantiations must not share inference variables.
	t1 := Instantiate(c.Types, sch, c.Rank())
	t2 := Instantiate(c.Types, sch, c.Rank())
	d1, r1, ok := DeArrow(t1)
	require.True(t, ok)
	d2, _, ok := DeArrow(t2)
	require.True(t, ok)
	assert.Same(t, Walk(d1), Walk(r1), "identity's domain and range are one variable")
	assert.NotSame(t, Walk(d1), Walk(d2), "instantiations must be independent")
}

func TestDatatypeConstructorsAndUse(t *testing.T) {
	c := mustElab(t, `
		datatype 'a seq = Empty | More of 'a * 'a seq
		val ones = More (1, Empty)
	`)
	sch := schemeOf(t, c, "ones")
	assert.Equal(t, "int seq", c.TypeString(sch.Body))

	empty := schemeOf(t, c, "Empty")
	require.Len(t, empty.Quantified, 1, "Empty is polymorphic in its element")

	_, status, ok := c.lookupValue(c.Symbols.Intern("More"))
	require.True(t, ok)
	assert.Equal(t, IdCon, status.Kind)
	assert.Equal(t, uint32(1), status.Con.Tag)
}

func TestValueRestrictionOnRef(t *testing.T) {
	c := mustElab(t, "val r = ref (fn x => x)")
	sch := schemeOf(t, c, "r")
	assert.True(t, sch.IsMono(), "ref cells must not be generalized")
}

func TestLambdaIsGeneralizedButApplicationIsNot(t *testing.T) {
	c := mustElab(t, `
		val id = fn x => x
		val applied = id id
	`)
	assert.False(t, schemeOf(t, c, "id").IsMono())
	assert.True(t, schemeOf(t, c, "applied").IsMono(), "id id is expansive")
}

func TestConstructorApplicationIsAValue(t *testing.T) {
	c := mustElab(t, `
		datatype 'a opt = None | Some of 'a
		val s = Some (fn x => x)
	`)
	sch := schemeOf(t, c, "s")
	assert.False(t, sch.IsMono(), "Some (fn x => x) is a syntactic value")
}

func TestSelfApplicationFailsOccursCheck(t *testing.T) {
	expectKind(t, "val f = fn x => x x", diagnostics.OccursCheck)
}

func TestArithmeticUnificationFailure(t *testing.T) {
	c := New()
	intTy := c.Types.Int()
	plusTy := c.Types.Arrow(c.Types.Tuple([]*Type{intTy, intTy}, c.Symbols), intTy)
	c.defineValue(c.Symbols.Intern("+"), MonoScheme(plusTy), IdStatus{Kind: IdVar})

	require.Nil(t, elabInto(t, c, "infix 6 +"))
	diag := elabInto(t, c, "val x = 1 + true")
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.UnificationFail, diag.Kind)
}

func TestIfDesugarsToCase(t *testing.T) {
	c := mustElab(t, "val y = if true then 1 else 2")
	val := c.Decls()[0].Kind.(ValIR)
	caseE, ok := val.Expr.Kind.(CaseIRExpr)
	require.True(t, ok, "if must elaborate to a case")
	require.Len(t, caseE.Rules, 2)

	first, ok := caseE.Rules[0].Pat.Kind.(AppPat)
	require.True(t, ok)
	assert.Equal(t, c.Builtins.True, first.Con.Name)
	second, ok := caseE.Rules[1].Pat.Kind.(AppPat)
	require.True(t, ok)
	assert.Equal(t, c.Builtins.False, second.Con.Name)
	assert.Equal(t, "bool", c.TypeString(caseE.Scrutinee.Type))
	assert.Equal(t, "int", c.TypeString(val.Expr.Type))
}

func TestIfConditionMustBeBool(t *testing.T) {
	expectKind(t, "val y = if 1 then 2 else 3", diagnostics.UnificationFail)
}

func TestAndalsoOrelseDesugar(t *testing.T) {
	c := mustElab(t, "val a = true andalso false val b = true orelse false")
	for _, d := range c.Decls() {
		val := d.Kind.(ValIR)
		_, ok := val.Expr.Kind.(CaseIRExpr)
		assert.True(t, ok, "andalso/orelse elaborate to case")
		assert.Equal(t, "bool", c.TypeString(val.Expr.Type))
	}
}

func TestFnDesugarsToLambdaOverCase(t *testing.T) {
	c := mustElab(t, "val f = fn 0 => true | _ => false")
	val := c.Decls()[0].Kind.(ValIR)
	lam, ok := val.Expr.Kind.(LambdaExpr)
	require.True(t, ok)
	assert.True(t, lam.Param.IsGensym(), "fn parameter is compiler-introduced")
	caseE, ok := lam.Body.Kind.(CaseIRExpr)
	require.True(t, ok)
	scrut, ok := caseE.Scrutinee.Kind.(VarExpr)
	require.True(t, ok)
	assert.Equal(t, lam.Param, scrut.Name)
	assert.Equal(t, "int -> bool", c.TypeString(val.Expr.Type))
}

func TestSeqUnifiesAllButLast(t *testing.T) {
	c := mustElab(t, "val s = ((); (); 3)")
	assert.Equal(t, "int", c.TypeString(schemeOf(t, c, "s").Body))

	// A non-unit in any position but the last is an error; in particular
	// the second-to-last position must not be skipped.
	expectKind(t, "val s = ((); 2; 3)", diagnostics.UnificationFail)
	expectKind(t, "val s = (1; 2)", diagnostics.UnificationFail)
}

func TestRaiseAndHandle(t *testing.T) {
	c := mustElab(t, `
		exception Overflow
		exception Bad of string
		val x = (raise Overflow) handle Overflow => 1 | Bad s => 2
	`)
	assert.Equal(t, "int", c.TypeString(schemeOf(t, c, "x").Body))

	_, status, ok := c.lookupValue(c.Symbols.Intern("Overflow"))
	require.True(t, ok)
	assert.Equal(t, IdExn, status.Kind)
	_, bad, ok := c.lookupValue(c.Symbols.Intern("Bad"))
	require.True(t, ok)
	assert.Equal(t, IdExn, bad.Kind)
	assert.NotEqual(t, status.Con.Tag, bad.Con.Tag, "exception tags are unit-wide unique")
}

func TestRaiseRequiresExn(t *testing.T) {
	expectKind(t, "val x = raise 1", diagnostics.UnificationFail)
}

func TestRaiseResultIsUnconstrained(t *testing.T) {
	c := mustElab(t, `
		exception E
		val f = fn true => 1 | false => raise E
	`)
	assert.Equal(t, "bool -> int", c.TypeString(schemeOf(t, c, "f").Body))
}

func TestLetScopeHygiene(t *testing.T) {
	c := mustElab(t, "val x = let val y = 1 in y end")
	assert.Equal(t, "int", c.TypeString(schemeOf(t, c, "x").Body))
	_, _, ok := c.lookupValue(c.Symbols.Intern("y"))
	assert.False(t, ok, "let-bound name must not escape")
}

func TestLetPolymorphism(t *testing.T) {
	c := mustElab(t, "val p = let val id = fn x => x in (id 1, id true) end")
	assert.Equal(t, "int * bool", c.TypeString(schemeOf(t, c, "p").Body))
}

func TestInfixDoesNotLeakFromLet(t *testing.T) {
	c := New()
	intTy := c.Types.Int()
	plusTy := c.Types.Arrow(c.Types.Tuple([]*Type{intTy, intTy}, c.Symbols), intTy)
	c.defineValue(c.Symbols.Intern("++"), MonoScheme(plusTy), IdStatus{Kind: IdVar})

	require.Nil(t, elabInto(t, c, "val a = let infix 6 ++ in 1 ++ 2 end"))
	assert.Equal(t, "int", c.TypeString(schemeOf(t, c, "a").Body))

	// Outside the let, ++ is back to ordinary application position, so the
	// sequence parses as ((1 ++) 2) and fails to unify int as a function.
	diag := elabInto(t, c, "val b = 1 ++ 2")
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.UnificationFail, diag.Kind)
}

func TestFixityPrecedence(t *testing.T) {
	c := New()
	intTy := c.Types.Int()
	binTy := c.Types.Arrow(c.Types.Tuple([]*Type{intTy, intTy}, c.Symbols), intTy)
	c.defineValue(c.Symbols.Intern("+"), MonoScheme(binTy), IdStatus{Kind: IdVar})
	c.defineValue(c.Symbols.Intern("*"), MonoScheme(binTy), IdStatus{Kind: IdVar})

	require.Nil(t, elabInto(t, c, "infix 6 + infix 7 *\nval r = 1 + 2 * 3"))

	val := c.Decls()[0].Kind.(ValIR)
	top, ok := val.Expr.Kind.(AppExpr)
	require.True(t, ok)
	fn, ok := top.Fn.Kind.(VarExpr)
	require.True(t, ok)
	assert.Equal(t, "+", c.Symbols.Name(fn.Name), "+ binds loosest: a + (b * c)")

	arg := top.Arg.Kind.(RecordIRExpr)
	require.Len(t, arg.Rows, 2)
	rhs, ok := arg.Rows[1].Data.Kind.(AppExpr)
	require.True(t, ok)
	rhsFn := rhs.Fn.Kind.(VarExpr)
	assert.Equal(t, "*", c.Symbols.Name(rhsFn.Name))
}

func TestConsIsRightAssociative(t *testing.T) {
	c := mustElab(t, "val l = 1 :: 2 :: nil")
	assert.Equal(t, "int list", c.TypeString(schemeOf(t, c, "l").Body))

	val := c.Decls()[0].Kind.(ValIR)
	top, ok := val.Expr.Kind.(AppExpr)
	require.True(t, ok)
	cons, ok := top.Fn.Kind.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, c.Builtins.Cons, cons.Con.Name)

	// 1 :: (2 :: nil): the right element of the outer pair is another cons.
	pair := top.Arg.Kind.(RecordIRExpr)
	inner, ok := pair.Rows[1].Data.Kind.(AppExpr)
	require.True(t, ok)
	innerCons, ok := inner.Fn.Kind.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, c.Builtins.Cons, innerCons.Con.Name)
}

func TestSamePrecedenceMixedAssociativity(t *testing.T) {
	c := New()
	intTy := c.Types.Int()
	binTy := c.Types.Arrow(c.Types.Tuple([]*Type{intTy, intTy}, c.Symbols), intTy)
	c.defineValue(c.Symbols.Intern("<+"), MonoScheme(binTy), IdStatus{Kind: IdVar})
	c.defineValue(c.Symbols.Intern("+>"), MonoScheme(binTy), IdStatus{Kind: IdVar})

	require.Nil(t, elabInto(t, c, "infix 5 <+ infixr 5 +>"))
	diag := elabInto(t, c, "val x = 1 <+ 2 +> 3")
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.FixityResolution, diag.Kind)
}

func TestListLiteral(t *testing.T) {
	c := mustElab(t, "val l = [1, 2, 3]")
	assert.Equal(t, "int list", c.TypeString(schemeOf(t, c, "l").Body))

	c2 := mustElab(t, "val e = []")
	sch := schemeOf(t, c2, "e")
	assert.False(t, sch.IsMono(), "the empty list is polymorphic")
}

func TestListElementMismatch(t *testing.T) {
	expectKind(t, `val l = [1, "two"]`, diagnostics.UnificationFail)
}

func TestRecordAndTuple(t *testing.T) {
	c := mustElab(t, `val r = {name = "sml", year = 1997} val t = (1, true)`)
	assert.Equal(t, "{name: string, year: int}", c.TypeString(schemeOf(t, c, "r").Body))
	assert.Equal(t, "int * bool", c.TypeString(schemeOf(t, c, "t").Body))
}

func TestRecordPatternBinds(t *testing.T) {
	c := mustElab(t, "val f = fn {a, b} => a")
	dom, rng, ok := DeArrow(schemeOf(t, c, "f").Body)
	require.True(t, ok)
	w := Walk(dom)
	require.Equal(t, TRecord, w.Kind)
	require.Len(t, w.Rows, 2)
	aField, rngW := Walk(w.Rows[0].Data), Walk(rng)
	require.Equal(t, TVar, aField.Kind)
	require.Equal(t, TVar, rngW.Kind)
	assert.Equal(t, aField.Var.ID, rngW.Var.ID, "f returns its a field")
}

func TestDuplicateRecordLabel(t *testing.T) {
	expectKind(t, "val r = {a = 1, a = 2}", diagnostics.DuplicateLabel)
	expectKind(t, "val f = fn {a = x, a = y} => x", diagnostics.DuplicateLabel)
}

func TestDuplicateConstructor(t *testing.T) {
	expectKind(t, "datatype t = A | A", diagnostics.DuplicateConstructor)
	expectKind(t, "datatype t = A datatype u = A", diagnostics.DuplicateConstructor)
	expectKind(t, "exception E exception E", diagnostics.DuplicateConstructor)
}

func TestUnboundNames(t *testing.T) {
	expectKind(t, "val x = y", diagnostics.UnboundVariable)
	expectKind(t, "val x = 1 : foo", diagnostics.UnboundTycon)
	expectKind(t, "type t = 'a list", diagnostics.UnboundTyvar)
}

func TestTyconArityMismatch(t *testing.T) {
	expectKind(t, "val x = nil : list", diagnostics.ArityMismatch)
	expectKind(t, "type 'a t = 'a val x = 1 : (int, bool) t", diagnostics.ArityMismatch)
}

func TestNonConstructorInPattern(t *testing.T) {
	expectKind(t, `
		val y = 1
		val f = fn x => case x of y z => 1
	`, diagnostics.NonConstructorInPattern)
}

func TestConstructorArityInPattern(t *testing.T) {
	expectKind(t, `
		datatype t = B
		val f = fn B x => 1
	`, diagnostics.ArityMismatch)

	// A non-nullary constructor name in variable position does not desugar
	// to a constructor pattern; it binds an ordinary variable.
	c := mustElab(t, `
		datatype t = A of int
		val f = fn A => A
	`)
	dom, rng, ok := DeArrow(schemeOf(t, c, "f").Body)
	require.True(t, ok)
	assert.Equal(t, Walk(dom), Walk(rng))
}

func TestConstructorPatternKeepsItsArgument(t *testing.T) {
	c := mustElab(t, `
		datatype t = C of int * int
		val g = fn C (a, b) => a
	`)
	assert.Equal(t, "t -> int", c.TypeString(schemeOf(t, c, "g").Body))
}

func TestConstructorPatternRunTooLong(t *testing.T) {
	// `C x y` never means anything: constructors are unary, and silently
	// dropping x's binding would be far worse than rejecting.
	expectKind(t, `
		datatype t = C of int * int
		val f = fn C x y => 1
	`, diagnostics.ArityMismatch)
}

func TestPatternApplicationHeadMustBeAName(t *testing.T) {
	expectKind(t, "val f = fn _ x => 1", diagnostics.NonConstructorInPattern)
	expectKind(t, "val f = fn 1 x => 2", diagnostics.NonConstructorInPattern)
}

func TestInfixConstructorPattern(t *testing.T) {
	c := mustElab(t, `
		val f = fn x :: rest => x | nil => 0
	`)
	assert.Equal(t, "int list -> int", c.TypeString(schemeOf(t, c, "f").Body))
}

func TestInfixPatternAroundConstructorRun(t *testing.T) {
	c := mustElab(t, `
		datatype 'a opt = None | Some of 'a
		val f = fn Some x :: _ => x | _ => 0
	`)
	assert.Equal(t, "int opt list -> int", c.TypeString(schemeOf(t, c, "f").Body))
}

func TestTypeAbbreviation(t *testing.T) {
	c := mustElab(t, `
		type 'a pair = 'a * 'a
		val p = (1, 2) : int pair
	`)
	assert.Equal(t, "int * int", c.TypeString(schemeOf(t, c, "p").Body))
}

func TestMutuallyRecursiveDatatypes(t *testing.T) {
	c := mustElab(t, `
		datatype tree = Leaf | Node of forest
		and forest = Nil2 | Cons2 of tree * forest
		val t = Node (Cons2 (Leaf, Nil2))
	`)
	assert.Equal(t, "tree", c.TypeString(schemeOf(t, c, "t").Body))
}

func TestCaseBranchMismatch(t *testing.T) {
	expectKind(t, `val c = case 1 of 1 => 2 | _ => "x"`, diagnostics.UnificationFail)
}

func TestCaseScrutineeMismatch(t *testing.T) {
	expectKind(t, `val c = case 1 of true => 2 | false => 3`, diagnostics.UnificationFail)
}

func TestLocalBindingsStayLocal(t *testing.T) {
	c := mustElab(t, "local val helper = 1 in val result = helper end")
	_, _, ok := c.lookupValue(c.Symbols.Intern("helper"))
	assert.False(t, ok)
	// One Val decl reaches the top level: the body's.
	require.Len(t, c.Decls(), 1)
}

func TestUnsupportedConstructs(t *testing.T) {
	expectKind(t, "val u = while true do ()", diagnostics.Unsupported)
	expectKind(t, "fun f x = x", diagnostics.Unsupported)
	expectKind(t, "val g = #name", diagnostics.Unsupported)
}

func TestNonfixRestoresApplication(t *testing.T) {
	c := mustElab(t, `
		val f = fn x => fn y => x
		infix 6 f
		nonfix f
		val r = f 1 2
	`)
	assert.Equal(t, "int", c.TypeString(schemeOf(t, c, "r").Body))
}

func TestShadowing(t *testing.T) {
	c := mustElab(t, `
		val x = 1
		val x = "now a string"
	`)
	assert.Equal(t, "string", c.TypeString(schemeOf(t, c, "x").Body))
}

func TestConstraintInPattern(t *testing.T) {
	c := mustElab(t, "val f = fn (x : int) => x")
	assert.Equal(t, "int -> int", c.TypeString(schemeOf(t, c, "f").Body))
}

func TestHandleRulesMustTakeExn(t *testing.T) {
	expectKind(t, "val x = 1 handle 2 => 3", diagnostics.UnificationFail)
}
