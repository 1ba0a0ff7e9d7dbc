package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/lexer"
	"github.com/smlkit/smlc/internal/symbols"
)

func parse(t *testing.T, src string) ([]ast.Decl, *symbols.Table, *diagnostics.Diagnostic) {
	t.Helper()
	toks, diag := lexer.All(src)
	require.Nil(t, diag, "lex error: %v", diag)
	tbl := symbols.NewTable()
	decls, diag := New(toks, tbl).ParseProgram()
	return decls, tbl, diag
}

func mustParse(t *testing.T, src string) ([]ast.Decl, *symbols.Table) {
	t.Helper()
	decls, tbl, diag := parse(t, src)
	require.Nil(t, diag, "parse error: %v", diag)
	return decls, tbl
}

func TestValDecl(t *testing.T) {
	decls, tbl := mustParse(t, "val x = 1")
	require.Len(t, decls, 1)
	val, ok := decls[0].Data.(ast.ValDecl)
	require.True(t, ok)
	pat, ok := val.Pat.Data.(ast.VarPat)
	require.True(t, ok)
	assert.Equal(t, tbl.Intern("x"), pat.Name)
	c, ok := val.Expr.Data.(ast.ConstExpr)
	require.True(t, ok)
	assert.Equal(t, int64(1), c.Value.Int)
}

func TestApplicationStaysFlat(t *testing.T) {
	decls, _ := mustParse(t, "val r = a + b * c")
	val := decls[0].Data.(ast.ValDecl)
	flat, ok := val.Expr.Data.(ast.FlatApp)
	require.True(t, ok, "operator runs must reach the elaborator unresolved")
	assert.Len(t, flat.Exprs, 5)
}

func TestTupleAndUnit(t *testing.T) {
	decls, tbl := mustParse(t, "val t = (1, true) val u = ()")
	tup := decls[0].Data.(ast.ValDecl).Expr.Data.(ast.RecordExpr)
	require.Len(t, tup.Rows, 2)
	assert.Equal(t, tbl.TupleLabel(1), tup.Rows[0].Label)
	assert.Equal(t, tbl.TupleLabel(2), tup.Rows[1].Label)

	unit := decls[1].Data.(ast.ValDecl).Expr.Data.(ast.ConstExpr)
	assert.Equal(t, ast.ConstUnit, unit.Value.Kind)
}

func TestParenSequence(t *testing.T) {
	decls, _ := mustParse(t, "val s = (a; b; c)")
	seq, ok := decls[0].Data.(ast.ValDecl).Expr.Data.(ast.SeqExpr)
	require.True(t, ok)
	assert.Len(t, seq.Exprs, 3)
}

func TestIfAndLogicalOperators(t *testing.T) {
	decls, _ := mustParse(t, "val x = if a andalso b then 1 else 2")
	ifE, ok := decls[0].Data.(ast.ValDecl).Expr.Data.(ast.If)
	require.True(t, ok)
	_, ok = ifE.Cond.Data.(ast.Andalso)
	assert.True(t, ok)
}

func TestFnMatchRules(t *testing.T) {
	decls, _ := mustParse(t, "val f = fn 0 => true | _ => false")
	fn, ok := decls[0].Data.(ast.ValDecl).Expr.Data.(ast.Fn)
	require.True(t, ok)
	require.Len(t, fn.Rules, 2)
	_, ok = fn.Rules[0].Pat.Data.(ast.ConstPat)
	assert.True(t, ok)
	_, ok = fn.Rules[1].Pat.Data.(ast.WildPat)
	assert.True(t, ok)
}

func TestCaseHandleRaise(t *testing.T) {
	decls, _ := mustParse(t, `
		val a = case x of 1 => 2 | _ => 3
		val b = e handle E => 1
		val c = raise E
	`)
	_, ok := decls[0].Data.(ast.ValDecl).Expr.Data.(ast.CaseExpr)
	assert.True(t, ok)
	_, ok = decls[1].Data.(ast.ValDecl).Expr.Data.(ast.Handle)
	assert.True(t, ok)
	_, ok = decls[2].Data.(ast.ValDecl).Expr.Data.(ast.Raise)
	assert.True(t, ok)
}

func TestLetWithSequencedBody(t *testing.T) {
	decls, _ := mustParse(t, "val x = let val y = 1 in y; y end")
	let, ok := decls[0].Data.(ast.ValDecl).Expr.Data.(ast.LetExpr)
	require.True(t, ok)
	require.Len(t, let.Decls, 1)
	_, ok = let.Body.Data.(ast.SeqExpr)
	assert.True(t, ok)
}

func TestDatatypeDecl(t *testing.T) {
	decls, tbl := mustParse(t, "datatype 'a opt = None | Some of 'a")
	dt, ok := decls[0].Data.(ast.DatatypeDecl)
	require.True(t, ok)
	require.Len(t, dt.Binds, 1)
	bind := dt.Binds[0]
	assert.Equal(t, tbl.Intern("opt"), bind.Tycon)
	require.Len(t, bind.Tyvars, 1)
	require.Len(t, bind.Constructors, 2)
	assert.Nil(t, bind.Constructors[0].Data)
	require.NotNil(t, bind.Constructors[1].Data)
	_, ok = bind.Constructors[1].Data.Data.(ast.TyVar)
	assert.True(t, ok)
}

func TestMutuallyRecursiveDatatypes(t *testing.T) {
	decls, _ := mustParse(t, "datatype a = A of b and b = B")
	dt := decls[0].Data.(ast.DatatypeDecl)
	assert.Len(t, dt.Binds, 2)
}

func TestTypeDeclWithArrowAndProduct(t *testing.T) {
	decls, tbl := mustParse(t, "type t = int * bool -> int list")
	td := decls[0].Data.(ast.TypeDecl)
	arrow, ok := td.Binds[0].Ty.Data.(ast.TyCon)
	require.True(t, ok)
	assert.Equal(t, tbl.Intern("->"), arrow.Name)
	_, ok = arrow.Args[0].Data.(ast.TyRecord)
	assert.True(t, ok, "product binds tighter than arrow")
	list, ok := arrow.Args[1].Data.(ast.TyCon)
	require.True(t, ok)
	assert.Equal(t, tbl.Intern("list"), list.Name)
	require.Len(t, list.Args, 1)
}

func TestMultiArgTycon(t *testing.T) {
	decls, tbl := mustParse(t, "type t = (int, bool) pair")
	tc := decls[0].Data.(ast.TypeDecl).Binds[0].Ty.Data.(ast.TyCon)
	assert.Equal(t, tbl.Intern("pair"), tc.Name)
	assert.Len(t, tc.Args, 2)
}

func TestArrowIsRightAssociative(t *testing.T) {
	decls, tbl := mustParse(t, "type t = int -> int -> int")
	outer := decls[0].Data.(ast.TypeDecl).Binds[0].Ty.Data.(ast.TyCon)
	require.Equal(t, tbl.Intern("->"), outer.Name)
	inner, ok := outer.Args[1].Data.(ast.TyCon)
	require.True(t, ok)
	assert.Equal(t, tbl.Intern("->"), inner.Name)
}

func TestFixityDecls(t *testing.T) {
	decls, tbl := mustParse(t, "infix 6 + - infixr 5 :: nonfix *")
	require.Len(t, decls, 3)
	seq, ok := decls[0].Data.(ast.SeqDecl)
	require.True(t, ok, "two names yield one FixityDecl each")
	require.Len(t, seq.Decls, 2)
	plus := seq.Decls[0].Data.(ast.FixityDecl)
	assert.Equal(t, ast.FixInfix, plus.Fix)
	assert.Equal(t, uint8(6), plus.BP)
	assert.Equal(t, tbl.Intern("+"), plus.Name)

	cons := decls[1].Data.(ast.FixityDecl)
	assert.Equal(t, ast.FixInfixr, cons.Fix)
	assert.Equal(t, uint8(5), cons.BP)

	non := decls[2].Data.(ast.FixityDecl)
	assert.Equal(t, ast.FixNonfix, non.Fix)
}

func TestLocalDecl(t *testing.T) {
	decls, _ := mustParse(t, "local val x = 1 in val y = x end")
	local, ok := decls[0].Data.(ast.LocalDecl)
	require.True(t, ok)
	assert.Len(t, local.Decls, 1)
	assert.Len(t, local.Body, 1)
}

func TestExceptionDecl(t *testing.T) {
	decls, _ := mustParse(t, "exception E and Bad of string")
	exn := decls[0].Data.(ast.ExceptionDecl)
	require.Len(t, exn.Variants, 2)
	assert.Nil(t, exn.Variants[0].Data)
	assert.NotNil(t, exn.Variants[1].Data)
}

func TestFunParsesButKeepsOnlyShape(t *testing.T) {
	decls, tbl := mustParse(t, "fun fact 0 = 1 | fact n = n * fact (n - 1)")
	fd, ok := decls[0].Data.(ast.FunctionDecl)
	require.True(t, ok)
	assert.Equal(t, tbl.Intern("fact"), fd.Name)
}

func TestListAndRecordPatterns(t *testing.T) {
	decls, tbl := mustParse(t, "val f = fn [x, y] => 1 | {a = 1, b} => 2")
	fn := decls[0].Data.(ast.ValDecl).Expr.Data.(ast.Fn)
	lst, ok := fn.Rules[0].Pat.Data.(ast.ListPat)
	require.True(t, ok)
	assert.Len(t, lst.Elems, 2)

	rec, ok := fn.Rules[1].Pat.Data.(ast.RecordPat)
	require.True(t, ok)
	require.Len(t, rec.Rows, 2)
	// Punning: bare b stands for b = b.
	pun, ok := rec.Rows[1].Data.Data.(ast.VarPat)
	require.True(t, ok)
	assert.Equal(t, tbl.Intern("b"), pun.Name)
}

func TestConstraintExprAndPat(t *testing.T) {
	decls, _ := mustParse(t, "val x = 1 : int val f = fn (y : int) => y")
	_, ok := decls[0].Data.(ast.ValDecl).Expr.Data.(ast.Constraint)
	assert.True(t, ok)
	fn := decls[1].Data.(ast.ValDecl).Expr.Data.(ast.Fn)
	_, ok = fn.Rules[0].Pat.Data.(ast.ConstraintPat)
	assert.True(t, ok)
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"val",
		"val x",
		"val x = ",
		"if x then 1",
		"case x of",
		"datatype t =",
		"let val x = 1 in x",
		"val r = {a 1}",
	}
	for _, src := range cases {
		_, _, diag := parse(t, src)
		require.NotNil(t, diag, "expected parse error for %q", src)
		assert.Equal(t, diagnostics.ParseError, diag.Kind, "input %q", src)
	}
}

func TestDeepNestingIsRejectedGracefully(t *testing.T) {
	src := "val x = "
	for i := 0; i < MaxRecursionDepth+10; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < MaxRecursionDepth+10; i++ {
		src += ")"
	}
	_, _, diag := parse(t, src)
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.ParseError, diag.Kind)
}
