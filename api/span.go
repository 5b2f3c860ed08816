// Package api
// Author: momentics
//
// Zero-copy span types for direct access to ring buffer storage.
//
// A span is a contiguous window into a ring's data pool. A logical write or
// read of S bytes is covered by one span, or by two spans when the region
// crosses the physical end of the pool (a wrap). Spans from successive
// acquisitions within one transaction are logically concatenated in call
// order. All span access must be zero-copy unless a copy is explicitly
// requested.

package api

// Span is a contiguous byte window into a ring's data pool. The caller reads
// or writes it in place; the span stays valid until the owning transaction is
// committed or cancelled.
type Span []byte

// Spans holds the at-most-two spans covering one contiguous acquisition.
// Only the first n entries returned alongside it are valid.
type Spans [2]Span

// Total returns the combined length of the first n valid spans.
func (s Spans) Total(n int) int {
	total := 0
	for i := 0; i < n && i < len(s); i++ {
		total += len(s[i])
	}
	return total
}
