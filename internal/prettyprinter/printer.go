// Package prettyprinter renders elaborated declarations for CLI output:
// one line per top-level declaration, with inferred types spelled the way
// diagnostics spell them.
package prettyprinter

import (
	"fmt"
	"strings"

	"github.com/smlkit/smlc/internal/core"
)

// Printer renders against one elaborated Context, which supplies symbol
// spellings and type rendering.
type Printer struct {
	ctx *core.Context
}

func New(ctx *core.Context) *Printer { return &Printer{ctx: ctx} }

// Program renders every top-level declaration of the context, one per line.
func (p *Printer) Program() string {
	var b strings.Builder
	for _, d := range p.ctx.Decls() {
		p.writeDecl(&b, d)
		b.WriteByte('\n')
	}
	return b.String()
}

func (p *Printer) writeDecl(b *strings.Builder, d core.Decl) {
	switch n := d.Kind.(type) {
	case core.ValIR:
		b.WriteString("val ")
		p.writePat(b, n.Pat)
		b.WriteString(" : ")
		b.WriteString(p.ctx.TypeString(n.Pat.Type))
	case core.DatatypeIR:
		fmt.Fprintf(b, "datatype %s", p.ctx.Symbols.Name(n.Tycon.Name))
		sep := " = "
		for _, c := range n.Cons {
			b.WriteString(sep)
			b.WriteString(p.ctx.Symbols.Name(c.Name))
			sep = " | "
		}
	case core.ExnIR:
		sep := "exception "
		for _, c := range n.Cons {
			b.WriteString(sep)
			b.WriteString(p.ctx.Symbols.Name(c.Name))
			sep = " and "
		}
	}
}

func (p *Printer) writePat(b *strings.Builder, pat core.Pat) {
	switch n := pat.Kind.(type) {
	case core.WildPat:
		b.WriteByte('_')
	case core.VarPat:
		b.WriteString(p.ctx.Symbols.Name(n.Name))
	case core.ConstPat:
		writeConst(b, n.Value)
	case core.AppPat:
		b.WriteString(p.ctx.Symbols.Name(n.Con.Name))
		if n.Arg != nil {
			b.WriteByte(' ')
			p.writePat(b, *n.Arg)
		}
	case core.RecordPat:
		b.WriteByte('(')
		for i, r := range n.Rows {
			if i > 0 {
				b.WriteString(", ")
			}
			p.writePat(b, r.Data)
		}
		b.WriteByte(')')
	case core.ListPat:
		b.WriteByte('[')
		for i, e := range n.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			p.writePat(b, e)
		}
		b.WriteByte(']')
	}
}

func writeConst(b *strings.Builder, v core.ConstValue) {
	switch v.Kind {
	case core.ConstInt:
		fmt.Fprintf(b, "%d", v.Int)
	case core.ConstString:
		fmt.Fprintf(b, "%q", v.Str)
	case core.ConstChar:
		fmt.Fprintf(b, "#%q", string(v.Chr))
	default:
		b.WriteString("()")
	}
}
