// Package diag implements the diagnostic taxonomy, source spans, and
// formatted error reporting shared by every pass of the pipeline.
package diag

import "strings"

// SourceFile is a single compilation unit's text together with a
// precomputed line-start index, used to turn a byte offset into a
// line/column pair for diagnostic formatting.
type SourceFile struct {
	Name        string
	Text        string
	lineOffsets []int
}

// NewSourceFile indexes text's line starts once so Position lookups are
// O(log n) instead of re-scanning the file per diagnostic.
func NewSourceFile(name, text string) *SourceFile {
	f := &SourceFile{Name: name, Text: text}
	f.lineOffsets = []int{0}
	for i, r := range text {
		if r == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// Position converts a byte offset into a 1-based (line, column) pair.
// Column counts bytes from the start of the line; terminal-width-aware
// alignment is done by caretPrefix in diagnostic.go.
func (f *SourceFile) Position(offset int) (line, col int) {
	if f == nil {
		return 1, 1
	}
	lo, hi := 0, len(f.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line = lo + 1
	col = offset - f.lineOffsets[lo] + 1
	return line, col
}

// Line returns the 1-indexed source line's text without its trailing
// newline. Returns "" for an out-of-range line number.
func (f *SourceFile) Line(n int) string {
	if f == nil || n < 1 || n > len(f.lineOffsets) {
		return ""
	}
	start := f.lineOffsets[n-1]
	end := len(f.Text)
	if n < len(f.lineOffsets) {
		end = f.lineOffsets[n] - 1
	}
	if end < start {
		end = start
	}
	return strings.TrimRight(f.Text[start:end], "\r")
}
