package stache

import (
	"fmt"
	"io"
	"strings"
)

// ErrorKind names the specific failure a diagnostic reports: lexer
// failures, parser structural failures, and emitter/assembler failures.
type ErrorKind string

const (
	ErrUnclosedTag          ErrorKind = "unclosed-tag"
	ErrInvalidSetDelimiters ErrorKind = "invalid-set-delimiters"
	ErrInvalidTagBody       ErrorKind = "invalid-tag-body"
	ErrUnclosedSection      ErrorKind = "unclosed-section"
	ErrUnexpectedClose      ErrorKind = "unexpected-close"
	ErrEmptyKey             ErrorKind = "empty-key"
	ErrInvalidKey           ErrorKind = "invalid-key"
	ErrUnresolvedPartial    ErrorKind = "unresolved-partial"
)

// Error is a single compiler diagnostic. Its Error() string matches the
// driver's "path:line:col: kind: message" output format.
type Error struct {
	Template  string
	Line, Col int
	Kind      ErrorKind
	Message   string
}

func (e *Error) Error() string {
	name := e.Template
	if name == "" {
		name = "<unknown>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", name, e.Line, e.Col, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", name, e.Kind, e.Message)
}

// MultiError aggregates every diagnostic collected across a batch of
// templates. The driver never stops at the first failing template: every
// template is compiled and every failure reported before the process
// exits non-zero.
type MultiError struct {
	Errors []*Error
}

func (m *MultiError) Error() string {
	lines := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// ReportDiagnostics writes every diagnostic carried by err to w, one per
// line, whether err is a single *Error, a *MultiError, or some other
// error reaching the driver (e.g. a wrapped I/O failure).
func ReportDiagnostics(w io.Writer, err error) {
	switch e := err.(type) {
	case *MultiError:
		for _, d := range e.Errors {
			fmt.Fprintln(w, d.Error())
		}
	case *Error:
		fmt.Fprintln(w, e.Error())
	default:
		fmt.Fprintln(w, err.Error())
	}
}
