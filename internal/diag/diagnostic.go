// Package diag defines the diagnostic model shared by every phase of the
// converter. Conversion is single-shot: the first error-severity diagnostic
// aborts the run, so diagnostics travel as ordinary Go errors.
package diag

import (
	"fmt"

	"sv2v/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// Error makes *Diagnostic usable as a Go error value.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s [%s]: %s", d.Severity, d.Code, d.Message)
}

// New builds an error-severity diagnostic with a formatted message.
func New(code Code, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

// NewAt is New with a primary span attached.
func NewAt(code Code, span source.Span, format string, args ...any) *Diagnostic {
	d := New(code, format, args...)
	d.Primary = span
	return d
}

// WithNote appends a secondary note and returns the diagnostic.
func (d *Diagnostic) WithNote(span source.Span, format string, args ...any) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: span, Msg: fmt.Sprintf(format, args...)})
	return d
}
