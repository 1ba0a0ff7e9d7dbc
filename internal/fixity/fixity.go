// Package fixity resolves a flat sequence of atoms, interleaved with
// user-declared infix identifiers, into a correctly associated application
// tree. The algorithm is a precedence-climbing pass over an
// lbp/rbp encoding: `infix n` becomes (lbp=n, rbp=n+1), `infixr n` becomes
// (lbp=n+1, rbp=n), so a single pass handles both associativities.
//
// The package is deliberately generic over the atom type T: internal/core
// instantiates it once for ast.Expr and once for ast.Pat, supplying the
// symbol-extraction and combination callbacks.
package fixity

import "github.com/smlkit/smlc/internal/symbols"

// Assoc is the associativity a surface `infix`/`infixr` declaration
// requests; `Nonfix` removes an identifier from operator position.
type Assoc uint8

const (
	Infix Assoc = iota
	Infixr
	Nonfix
)

// Fixity is the binding-power pair an operator symbol resolves to.
type Fixity struct {
	LBP, RBP uint8
}

// FromDecl builds the Fixity for a surface `infix bp sym` / `infixr bp sym`
// declaration.
func FromDecl(assoc Assoc, bp uint8) Fixity {
	if assoc == Infixr {
		return Fixity{LBP: bp + 1, RBP: bp}
	}
	return Fixity{LBP: bp, RBP: bp + 1}
}

// basePrec and assocKind invert FromDecl: since it always sets one of
// LBP/RBP to bp and the other to bp+1, the smaller of the two is the
// declared precedence and their ordering is the declared associativity.
func (f Fixity) basePrec() uint8 {
	if f.LBP < f.RBP {
		return f.LBP
	}
	return f.RBP
}

func (f Fixity) assocKind() Assoc {
	if f.LBP < f.RBP {
		return Infix
	}
	return Infixr
}

// Query answers "is symbol s a currently-declared infix operator, and with
// what binding power". The elaborating Context implements it directly.
type Query interface {
	LookupInfix(s symbols.Symbol) (Fixity, bool)
}

// ErrorKind is one of the four precedence-resolution failures.
type ErrorKind uint8

const (
	EndsInfix ErrorKind = iota
	InfixInPrefix
	SamePrecedence
	InvalidOperator
)

type Error struct {
	Kind ErrorKind
	// Sym is the offending operator symbol, when applicable.
	Sym symbols.Symbol
}

func (e *Error) Error() string {
	switch e.Kind {
	case EndsInfix:
		return "application sequence ends with an infix operator"
	case InfixInPrefix:
		return "application sequence starts with an infix operator"
	case SamePrecedence:
		return "adjacent operators of equal precedence but incompatible associativity"
	default:
		return "precedence resolution invoked on a sequence with no operator"
	}
}

// Atom is one element of the flat sequence fed to Resolve: either an
// ordinary operand, or an operand that also denotes a possibly-infix
// identifier (Sym, Operator=true). Resolve itself decides, via Query,
// whether an Operator atom is actually currently bound as infix; an
// Operator atom that isn't bound behaves as a plain operand (ordinary
// application, e.g. using a function by name that happens to share a
// symbol with a shadowed operator).
type Atom[T any] struct {
	Val      T
	Sym      symbols.Symbol
	Operator bool
}

type opTok struct {
	sym symbols.Symbol
	fix Fixity
}

// Resolve reshapes a flat sequence of atoms into a single value of type T,
// by combining adjacent non-operator atoms via `apply` (ordinary
// application/juxtaposition, left-associative, tightest binding) and
// combining operator runs via `combine` according to each operator's
// declared Fixity from q.
func Resolve[T any](atoms []Atom[T], q Query, apply func(fn, arg T) T, combine func(op symbols.Symbol, l, r T) T) (T, error) {
	var zero T
	if len(atoms) == 0 {
		return zero, &Error{Kind: InvalidOperator}
	}
	if len(atoms) == 1 {
		return atoms[0].Val, nil
	}

	isInfix := func(a Atom[T]) (Fixity, bool) {
		if !a.Operator {
			return Fixity{}, false
		}
		return q.LookupInfix(a.Sym)
	}

	// Phase 1: reduce maximal runs of non-operator atoms (and operator
	// atoms not currently bound infix) via ordinary application, producing
	// an alternating values/operators sequence.
	var values []T
	var ops []opTok

	i, n := 0, len(atoms)
	for i < n {
		if fix, ok := isInfix(atoms[i]); ok {
			if len(values) == 0 {
				return zero, &Error{Kind: InfixInPrefix, Sym: atoms[i].Sym}
			}
			ops = append(ops, opTok{sym: atoms[i].Sym, fix: fix})
			i++
			continue
		}
		run := atoms[i].Val
		i++
		for i < n {
			if _, ok := isInfix(atoms[i]); ok {
				break
			}
			run = apply(run, atoms[i].Val)
			i++
		}
		values = append(values, run)
	}
	if len(ops) == 0 {
		return values[0], nil
	}
	if len(values) != len(ops)+1 {
		return zero, &Error{Kind: EndsInfix, Sym: ops[len(ops)-1].sym}
	}

	// Reject adjacent operators that share a precedence but disagree on
	// associativity: the Definition treats this as a static ambiguity
	// rather than picking a direction.
	for i := 0; i+1 < len(ops); i++ {
		a, b := ops[i].fix, ops[i+1].fix
		if a.basePrec() == b.basePrec() && a.assocKind() != b.assocKind() {
			return zero, &Error{Kind: SamePrecedence, Sym: ops[i+1].sym}
		}
	}

	// Phase 2: precedence-climb the alternating values/ops sequence.
	pos := 0
	var climb func(minBP uint8) T
	climb = func(minBP uint8) T {
		left := values[pos]
		pos++
		for pos-1 < len(ops) {
			op := ops[pos-1]
			if op.fix.LBP < minBP {
				break
			}
			right := climb(op.fix.RBP)
			left = combine(op.sym, left, right)
		}
		return left
	}
	return climb(0), nil
}
