// Package symbols gives every named entity in a compilation unit an opaque,
// comparable identity, interned from source text or freshly generated by
// the compiler (a "Gensym"): Interned symbols are stable across the unit,
// Gensyms are unique within it.
package symbols

import "fmt"

// kind distinguishes the two Symbol variants without exposing a public
// struct tag the caller could forge.
type kind uint8

const (
	interned kind = iota
	gensym
)

// Symbol is a small value type: comparable, hashable, copyable. It never
// borrows the interner it came from.
type Symbol struct {
	k  kind
	id uint32
}

// IsGensym reports whether s was produced by a Table's Fresh, rather than
// interned from source text.
func (s Symbol) IsGensym() bool { return s.k == gensym }

func (s Symbol) String() string {
	if s.k == gensym {
		return fmt.Sprintf("$%d", s.id)
	}
	return fmt.Sprintf("#%d", s.id)
}

// Table interns source identifiers into Symbols and mints fresh Gensyms.
// One Table is shared by the whole compilation unit; it is never mutated
// concurrently.
type Table struct {
	names     []string
	index     map[string]Symbol
	nextGen   uint32
	tupleTags []Symbol // labels "1","2",... memoized by TupleLabel
}

// NewTable creates an empty interner.
func NewTable() *Table {
	return &Table{index: make(map[string]Symbol, 256)}
}

// Intern returns the stable Symbol for name, allocating one on first sight.
func (t *Table) Intern(name string) Symbol {
	if s, ok := t.index[name]; ok {
		return s
	}
	s := Symbol{k: interned, id: uint32(len(t.names))}
	t.names = append(t.names, name)
	t.index[name] = s
	return s
}

// Fresh mints a new Gensym, guaranteed distinct from every Symbol returned
// so far (interned or gensym) by this Table.
func (t *Table) Fresh() Symbol {
	s := Symbol{k: gensym, id: t.nextGen}
	t.nextGen++
	return s
}

// Name renders s back to text: the interned spelling, or a synthetic
// "$<n>" for a Gensym (never collides with real source identifiers: a
// symbolic identifier such as `$` cannot contain digits).
func (t *Table) Name(s Symbol) string {
	if s.k == gensym {
		return fmt.Sprintf("$%d", s.id)
	}
	if int(s.id) < len(t.names) {
		return t.names[s.id]
	}
	return "<?>"
}

// TupleLabel returns the interned Symbol for the 1-based tuple field index
// n, i.e. the label used for tuple-as-record rows ("1", "2", ...).
func (t *Table) TupleLabel(n uint32) Symbol {
	for uint32(len(t.tupleTags)) < n {
		t.tupleTags = append(t.tupleTags, t.Intern(fmt.Sprintf("%d", len(t.tupleTags)+1)))
	}
	return t.tupleTags[n-1]
}
