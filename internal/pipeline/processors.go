package pipeline

import (
	"github.com/smlkit/smlc/internal/core"
	"github.com/smlkit/smlc/internal/lexer"
	"github.com/smlkit/smlc/internal/parser"
)

// LexProcessor scans ctx.Source into ctx.Tokens.
type LexProcessor struct{}

func (*LexProcessor) Process(ctx *Context) *Context {
	ctx.logf("lex %s", ctx.FilePath)
	toks, diag := lexer.All(ctx.Source)
	if diag != nil {
		ctx.Diags = append(ctx.Diags, diag)
		return ctx
	}
	ctx.Tokens = toks
	return ctx
}

// ParseProcessor parses ctx.Tokens into ctx.Program. The elaborating
// Context is created here so the parser and elaborator share one symbol
// table.
type ParseProcessor struct{}

func (*ParseProcessor) Process(ctx *Context) *Context {
	if ctx.Failed() || ctx.Tokens == nil {
		return ctx
	}
	ctx.logf("parse %s", ctx.FilePath)
	ctx.Elab = core.New()
	program, diag := parser.New(ctx.Tokens, ctx.Elab.Symbols).ParseProgram()
	ctx.Program = program
	if diag != nil {
		ctx.Diags = append(ctx.Diags, diag)
	}
	return ctx
}

// ElaborateProcessor elaborates each top-level declaration in order,
// stopping at the first diagnostic.
type ElaborateProcessor struct{}

func (*ElaborateProcessor) Process(ctx *Context) *Context {
	if ctx.Failed() || ctx.Elab == nil {
		return ctx
	}
	ctx.logf("elaborate %s (%d decls)", ctx.FilePath, len(ctx.Program))
	for _, d := range ctx.Program {
		if diag := ctx.Elab.ElaborateDecl(d); diag != nil {
			ctx.Diags = append(ctx.Diags, diag)
			return ctx
		}
	}
	return ctx
}
