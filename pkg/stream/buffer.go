package stream

import "strings"

// Buffer converts a raw text-generation fragment stream into sentence- or
// paragraph-aligned emissions. A boundary is any of '.', '!', '?' followed by
// a whitespace character, or a run of one-or-two newlines. Write returns
// everything up to and including the LAST boundary currently held; the
// remainder stays buffered until a later fragment completes the next
// boundary, so no boundary is ever split across two emissions.
//
// The scan is incremental: each Write only inspects the appended fragment
// plus one character of lookback (boundaries span at most two characters),
// which keeps long generations linear instead of re-scanning the whole
// buffer per fragment.
type Buffer struct {
	buf strings.Builder
}

// Write appends fragment and returns the chunk ready for emission, or ""
// when no boundary has been completed yet. Empty fragments are a no-op.
func (b *Buffer) Write(fragment string) string {
	if fragment == "" {
		return ""
	}

	prevLen := b.buf.Len()
	b.buf.WriteString(fragment)
	s := b.buf.String()

	// One character of lookback: a '.' or '\n' that arrived at the tail of
	// the previous fragment may only now be completed (or extended) by the
	// first character of this one.
	start := prevLen - 1
	if start < 0 {
		start = 0
	}

	emitEnd := -1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 < len(s) && isSpace(s[i+1]) {
				emitEnd = i + 2
			}
		case '\n':
			end := i + 1
			if i+1 < len(s) && s[i+1] == '\n' {
				end = i + 2
			}
			emitEnd = end
		}
	}

	if emitEnd == -1 {
		return ""
	}

	out := s[:emitEnd]
	b.buf.Reset()
	b.buf.WriteString(s[emitEnd:])
	return out
}

// Flush returns whatever is still buffered and resets the buffer. Callers
// should emit the residue only when it contains non-whitespace content.
func (b *Buffer) Flush() string {
	out := b.buf.String()
	b.buf.Reset()
	return out
}

// Len reports the number of buffered bytes not yet emitted.
func (b *Buffer) Len() int {
	return b.buf.Len()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
