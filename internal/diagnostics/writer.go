package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// Writer renders diagnostics for humans. Severity labels are colorized
// when the destination is a terminal.
type Writer struct {
	out   io.Writer
	color bool
}

// NewWriter builds a writer for an arbitrary destination (no color).
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// NewStderrWriter builds a writer on stderr, enabling color when stderr
// is a terminal.
func NewStderrWriter() *Writer {
	return &Writer{
		out:   os.Stderr,
		color: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// Write renders one diagnostic as a single line.
func (w *Writer) Write(d *DiagnosticError) {
	label := "error"
	color := colorRed
	if d.IsWarning() {
		label = "warning"
		color = colorYellow
	}
	if w.color {
		fmt.Fprintf(w.out, "%s%s[%s]%s %d:%d: %s\n", color, label, d.Code, colorReset, d.Line, d.Column, d.Message)
		return
	}
	fmt.Fprintf(w.out, "%s[%s] %d:%d: %s\n", label, d.Code, d.Line, d.Column, d.Message)
}

// WriteAll renders diagnostics in stable order and reports whether any
// was a hard error.
func (w *Writer) WriteAll(diags []*DiagnosticError) bool {
	SortStable(diags)
	hadError := false
	for _, d := range diags {
		w.Write(d)
		if !d.IsWarning() {
			hadError = true
		}
	}
	return hadError
}
