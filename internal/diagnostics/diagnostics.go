// Package diagnostics is the single error currency threaded through the
// lexer, parser and elaborator: every fallible path returns a *Diagnostic
// rather than panicking.
package diagnostics

import (
	"fmt"

	"github.com/smlkit/smlc/internal/token"
)

// Severity distinguishes a hard error from a warning or an internal
// invariant violation.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Bug     Severity = "bug"
)

// Kind enumerates the error kinds of the elaborator.
type Kind string

const (
	UnboundVariable         Kind = "UnboundVariable"
	UnboundTyvar            Kind = "UnboundTyvar"
	UnboundTycon            Kind = "UnboundTycon"
	ArityMismatch           Kind = "ArityMismatch"
	UnificationFail         Kind = "UnificationFail"
	OccursCheck             Kind = "OccursCheck"
	DuplicateLabel          Kind = "DuplicateLabel"
	DuplicateConstructor    Kind = "DuplicateConstructor"
	NonConstructorInPattern Kind = "NonConstructorInPattern"
	FixityResolution        Kind = "FixityResolution"
	InternalBug             Kind = "InternalBug"

	// Lexer/parser kinds, outside the elaborator proper but sharing the
	// same Diagnostic currency so the pipeline can collect one slice.
	LexError    Kind = "LexError"
	ParseError  Kind = "ParseError"
	Unsupported Kind = "Unsupported"
)

// Diagnostic is a {kind, span, message} triple, surfaced unchanged to
// the driver.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Span     token.Span
	Message  string
}

func (d *Diagnostic) Error() string {
	if d.Span.IsDummy() {
		return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Kind, d.Message)
	}
	return fmt.Sprintf("[%s] %d..%d %s: %s", d.Severity, d.Span.Lo, d.Span.Hi, d.Kind, d.Message)
}

// New builds an Error-severity diagnostic.
func New(kind Kind, sp token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Severity: Error, Kind: kind, Span: sp, Message: fmt.Sprintf(format, args...)}
}

// BugAt builds a Bug-severity diagnostic for invariant violations that should
// never occur on accepted programs, e.g. a rule type that isn't an arrow.
func BugAt(sp token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Severity: Bug, Kind: InternalBug, Span: sp, Message: fmt.Sprintf(format, args...)}
}

// Warn builds a Warning-severity diagnostic.
func Warn(kind Kind, sp token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Severity: Warning, Kind: kind, Span: sp, Message: fmt.Sprintf(format, args...)}
}
