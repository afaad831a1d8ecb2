package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/upstat-io/sigil-lang-sub006/internal/token"
)

// DiagnosticError is a single user-facing diagnostic with a stable code
// and a source position. It implements error so it can flow through
// ordinary error returns.
type DiagnosticError struct {
	Code    ErrorCode
	Line    int
	Column  int
	Message string
}

func (d *DiagnosticError) Error() string {
	return fmt.Sprintf("[%s] %d:%d: %s", d.Code, d.Line, d.Column, d.Message)
}

// IsWarning reports whether the diagnostic is advisory.
func (d *DiagnosticError) IsWarning() bool {
	return SeverityFor(d.Code) == SeverityWarning
}

// NewError builds a diagnostic at the token's position. Extra details are
// appended to the code's base message, separated by ": ".
func NewError(code ErrorCode, tok token.Token, details ...string) *DiagnosticError {
	msg := MessageFor(code)
	if len(details) > 0 {
		msg = msg + ": " + strings.Join(details, ": ")
	}
	return &DiagnosticError{
		Code:    code,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: msg,
	}
}

// NewMatchError builds a diagnostic whose message fully replaces the base
// message. Used when the caller has already rendered the full text, for
// example a non-exhaustive report carrying a witness.
func NewMatchError(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: msg,
	}
}

// SortStable orders diagnostics by line, then column, then code. Workers
// report per site concurrently, so the driver sorts before presenting.
func SortStable(diags []*DiagnosticError) {
	sort.SliceStable(diags, func(i, j int) bool {
		return less(diags[i], diags[j])
	})
}

func less(a, b *DiagnosticError) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	if a.Column != b.Column {
		return a.Column < b.Column
	}
	return a.Code < b.Code
}
