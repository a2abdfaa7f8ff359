package diag

// Span is a half-open byte range [Start,End) into a SourceFile. Every AST,
// HIR, and MIR node carries one for diagnostics (spec.md §3.1). Synthetic
// nodes reuse the span of the construct they were synthesized from.
type Span struct {
	File  *SourceFile
	Start int
	End   int
}

// NoSpan is the zero value, used only for process-level diagnostics that
// have no source location (none currently exist, but kept for symmetry
// with the "invalid handle" sentinels elsewhere in the data model).
var NoSpan = Span{}

// Valid reports whether the span refers to a real source file.
func (s Span) Valid() bool {
	return s.File != nil
}

// Join returns the smallest span covering both s and other. Panics if the
// spans belong to different files — callers never join cross-file spans
// in a single-compilation-unit pipeline (spec.md §1).
func (s Span) Join(other Span) Span {
	if !s.Valid() {
		return other
	}
	if !other.Valid() {
		return s
	}
	if s.File != other.File {
		panic("diag: cannot join spans from different files")
	}
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Span{File: s.File, Start: start, End: end}
}
