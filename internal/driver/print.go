package driver

import (
	"io"
	"strings"

	"github.com/rill-lang/rillc/diag"
)

// Printer renders a diagnostic batch to an output sink. It is a
// trimmed descendant of the teacher's termutil.Printer: that
// interface paginates arbitrarily long interactive query output
// (WriteTable, Ok()/"continue y/n?", pipe-to-less redirection) for a
// REPL this repo does not have. All this front end ever renders is a
// short, finite list of compiler diagnostics, so Printer keeps only
// the one operation that shape of output actually needs.
type Printer interface {
	// PrintDiagnostics writes every diagnostic in diags, sorted by
	// source location, one per line.
	PrintDiagnostics(diags *diag.Sink) error
}

// writerPrinter is the batch (non-interactive, non-paginating)
// Printer: the direct descendant of termutil's batchPrinter, since a
// compiler driver never needs termutil's pagination prompt — it either
// emits every diagnostic or it doesn't run at all.
type writerPrinter struct {
	out io.Writer
}

// NewPrinter creates a Printer that writes to out, e.g. os.Stderr in
// a godoc example or a bytes.Buffer in a test asserting on rendered
// output.
func NewPrinter(out io.Writer) Printer {
	return &writerPrinter{out: out}
}

func (p *writerPrinter) PrintDiagnostics(diags *diag.Sink) error {
	var b strings.Builder
	for _, d := range diags.Sorted() {
		b.WriteString(d.String())
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}
