package core

import (
	"fmt"
	"sort"
	"strings"
)

// TypeString renders ty for diagnostics, using source spellings for type
// constructors and a stable "'t<n>" spelling for still-free variables. It
// never panics on malformed input; it is a best-effort rendering for error
// messages, not a parser round-trip.
func (c *Context) TypeString(ty *Type) string {
	var b strings.Builder
	c.writeType(&b, ty, false)
	return b.String()
}

func (c *Context) writeType(b *strings.Builder, ty *Type, paren bool) {
	w := Walk(ty)
	switch w.Kind {
	case TVar:
		fmt.Fprintf(b, "'t%d", w.Var.ID)
	case TCon:
		switch {
		case w.Con.Name == c.Tycons.Arrow.Name && len(w.Args) == 2:
			if paren {
				b.WriteByte('(')
			}
			c.writeType(b, w.Args[0], true)
			b.WriteString(" -> ")
			c.writeType(b, w.Args[1], false)
			if paren {
				b.WriteByte(')')
			}
		case len(w.Args) == 0:
			b.WriteString(c.Symbols.Name(w.Con.Name))
		case len(w.Args) == 1:
			c.writeType(b, w.Args[0], true)
			b.WriteByte(' ')
			b.WriteString(c.Symbols.Name(w.Con.Name))
		default:
			b.WriteByte('(')
			for i, a := range w.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				c.writeType(b, a, false)
			}
			b.WriteByte(')')
			b.WriteByte(' ')
			b.WriteString(c.Symbols.Name(w.Con.Name))
		}
	case TRecord:
		if isTupleRecord(w.Rows, c) {
			for i, r := range w.Rows {
				if i > 0 {
					b.WriteString(" * ")
				}
				c.writeType(b, r.Data, true)
			}
			return
		}
		rows := append([]Row[*Type]{}, w.Rows...)
		sort.Slice(rows, func(i, j int) bool {
			return c.Symbols.Name(rows[i].Label) < c.Symbols.Name(rows[j].Label)
		})
		b.WriteByte('{')
		for i, r := range rows {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.Symbols.Name(r.Label))
			b.WriteString(": ")
			c.writeType(b, r.Data, false)
		}
		b.WriteByte('}')
	}
}

// isTupleRecord reports whether rows is exactly the label set "1".."n"
// with no gaps, i.e. a tuple.
func isTupleRecord(rows []Row[*Type], c *Context) bool {
	if len(rows) == 0 {
		return false
	}
	for i, r := range rows {
		if r.Label != c.Symbols.TupleLabel(uint32(i+1)) {
			return false
		}
	}
	return true
}
