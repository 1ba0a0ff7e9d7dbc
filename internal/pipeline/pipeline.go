// Package pipeline wires lexer -> parser -> elaborator into a sequence of
// processing stages sharing one Context per source file.
package pipeline

import (
	"log"

	"github.com/smlkit/smlc/internal/ast"
	"github.com/smlkit/smlc/internal/core"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/token"
)

// Context carries one source file through the stages. Each stage fills in
// its output fields and appends any diagnostics; later stages skip
// themselves when an earlier stage already failed.
type Context struct {
	FilePath string
	Source   string

	Tokens  []token.Token
	Program []ast.Decl
	Elab    *core.Context

	Diags []*diagnostics.Diagnostic

	// Verbose logs stage transitions with the standard log package.
	Verbose bool
}

// Failed reports whether any stage so far produced an error or bug
// severity diagnostic.
func (ctx *Context) Failed() bool {
	for _, d := range ctx.Diags {
		if d.Severity != diagnostics.Warning {
			return true
		}
	}
	return false
}

func (ctx *Context) logf(format string, args ...interface{}) {
	if ctx.Verbose {
		log.Printf(format, args...)
	}
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages run unconditionally so each can decide
// for itself whether a prior failure blocks it; diagnostic collection is
// cumulative across stages.
func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}

// Default is the standard front-end pipeline: lex, parse, elaborate.
func Default() *Pipeline {
	return New(&LexProcessor{}, &ParseProcessor{}, &ElaborateProcessor{})
}

// RunSource runs the default pipeline over one in-memory source string.
func RunSource(path, src string, verbose bool) *Context {
	return Default().Run(&Context{FilePath: path, Source: src, Verbose: verbose})
}
