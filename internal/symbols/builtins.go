package symbols

// Builtins collects the handful of Symbols the elaborator must be able to
// recognize by identity rather than by looking up a name in scope: the
// prelude constructors and the built-in cons operator. A change to any of
// these ids would invalidate the prelude.
type Builtins struct {
	Nil   Symbol
	Cons  Symbol
	True  Symbol
	False Symbol
	Ref   Symbol
}

// NewBuiltins interns the fixed prelude names into t, in a stable order, and
// returns their Symbols. Call this once per Table, before interning any
// source text, so the ids are deterministic across compilations.
func NewBuiltins(t *Table) Builtins {
	return Builtins{
		Nil:   t.Intern("nil"),
		Cons:  t.Intern("::"),
		True:  t.Intern("true"),
		False: t.Intern("false"),
		Ref:   t.Intern("ref"),
	}
}
