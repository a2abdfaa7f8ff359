package diag

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

// Diagnostic is a single user-visible compiler failure. Kind, Span, and
// Message are the three pieces every pass needs to report an error;
// formatting to the §6 wire format is Format's job, kept separate so a
// pass can test the Go value directly without string-matching a report.
type Diagnostic struct {
	Kind    Kind
	Span    Span
	Message string
}

// New constructs a Diagnostic. Helpers on Bag are the usual call site;
// New is exported for passes that build a Diagnostic before deciding
// whether to collect it (e.g. never-type suppression in pass 6).
func New(kind Kind, span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Error satisfies the error interface so a Diagnostic can be returned or
// wrapped like any other Go error from a fatal internal-invariant failure.
func (d *Diagnostic) Error() string {
	return d.Format()
}

// Format renders the one-line "<file>:<line>:<col>: <kind>: <message>"
// report followed by an indented source snippet with a caret underline,
// exactly as spec.md §6 specifies. Caret placement accounts for
// wide/fullwidth runes (CJK, emoji) so the caret lands under the right
// source column even when the line contains multi-cell characters —
// char/str are Unicode scalar values per spec.md §6's builtin surface,
// so a diagnostic inside a non-ASCII string literal is not a corner case.
func (d *Diagnostic) Format() string {
	var sb strings.Builder

	file := "<unknown>"
	line, col := 1, 1
	var sourceLine string
	if d.Span.Valid() {
		file = d.Span.File.Name
		line, col = d.Span.File.Position(d.Span.Start)
		sourceLine = d.Span.File.Line(line)
	}

	fmt.Fprintf(&sb, "%s:%d:%d: %s: %s\n", file, line, col, d.Kind, d.Message)

	if sourceLine != "" {
		sb.WriteString("    ")
		sb.WriteString(sourceLine)
		sb.WriteString("\n")
		sb.WriteString("    ")
		sb.WriteString(caretPrefix(sourceLine, col))
		sb.WriteString("^")
	}

	return sb.String()
}

// caretPrefix returns the whitespace needed to align a caret under byte
// column col (1-based), expanding tabs and widening for double-cell runes.
func caretPrefix(line string, col int) string {
	var sb strings.Builder
	for i, r := range line {
		if i >= col-1 {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		if runeCellWidth(r) == 2 {
			sb.WriteString("  ")
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func runeCellWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// FormatAll joins a slice of diagnostics with blank-line separation, the
// shape the CLI writes to stderr.
func FormatAll(diags []*Diagnostic) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.Format()
	}
	return strings.Join(parts, "\n\n")
}
