package diag

// Bag collects every diagnostic a single pass discovers during its one
// walk over the HIR before the driver decides whether to halt the
// pipeline. This is the granularity the teacher's PassContext uses
// (collect everything the pass can find, then let PassManager.RunAll stop
// *between* passes) — see SPEC_FULL.md "SUPPLEMENTED FEATURES" item 1 for
// why this is preferred over a literal first-diagnostic-aborts-the-pass
// reading of spec.md §7.
type Bag struct {
	diagnostics []*Diagnostic
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add records a diagnostic without interrupting the caller's walk.
func (b *Bag) Add(kind Kind, span Span, format string, args ...any) *Diagnostic {
	d := New(kind, span, format, args...)
	b.diagnostics = append(b.diagnostics, d)
	return d
}

// AddDiagnostic records an already-constructed Diagnostic.
func (b *Bag) AddDiagnostic(d *Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
}

// Merge appends another bag's diagnostics into b, preserving order. Used
// when a sub-walk (e.g. const evaluation) collects into its own bag that
// the caller then folds into the pass-wide bag.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.diagnostics = append(b.diagnostics, other.diagnostics...)
}

// HasErrors reports whether any diagnostic was recorded. Every kind in
// the taxonomy is fatal (spec.md §7 — "Non-fatal warnings are not
// emitted"), so any entry means the pipeline halts before the next pass.
func (b *Bag) HasErrors() bool {
	return len(b.diagnostics) > 0
}

// All returns the collected diagnostics in recording order.
func (b *Bag) All() []*Diagnostic {
	return b.diagnostics
}

// Count returns the number of diagnostics recorded so far.
func (b *Bag) Count() int {
	return len(b.diagnostics)
}
