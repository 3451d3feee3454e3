package stream

import "testing"

func TestBufferSingleWrite(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
		wantLen  int
	}{
		{"no boundary", "Hello", "", 5},
		{"sentence boundary", "Hello. ", "Hello. ", 0},
		{"exclamation boundary", "Wow! Next", "Wow! ", 4},
		{"question boundary", "Why? Because", "Why? ", 7},
		{"period at tail held back", "Hello.", "", 6},
		{"decimal point is not a boundary", "Pi is 3.14 roughly", "", 18},
		{"single newline", "line one\n", "line one\n", 0},
		{"double newline", "para\n\nnext", "para\n\n", 4},
		{"emits up to last boundary", "One. Two! Three", "One. Two! ", 5},
		{"empty fragment", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Buffer
			got := b.Write(tt.fragment)
			if got != tt.want {
				t.Errorf("Write(%q) = %q, want %q", tt.fragment, got, tt.want)
			}
			if b.Len() != tt.wantLen {
				t.Errorf("Len() after Write(%q) = %d, want %d", tt.fragment, b.Len(), tt.wantLen)
			}
		})
	}
}

func TestBufferBoundarySplitAcrossFragments(t *testing.T) {
	var b Buffer

	if got := b.Write("Hello."); got != "" {
		t.Fatalf("Write(%q) = %q, want empty", "Hello.", got)
	}
	// The space completing the boundary arrives in the next fragment; the
	// one-character lookback must still catch it.
	if got := b.Write(" World"); got != "Hello. " {
		t.Fatalf("Write(%q) = %q, want %q", " World", got, "Hello. ")
	}
	if b.Len() != len("World") {
		t.Errorf("Len() = %d, want %d", b.Len(), len("World"))
	}
}

func TestBufferNewlineRunSplitAcrossFragments(t *testing.T) {
	var b Buffer

	if got := b.Write("para\n"); got != "para\n" {
		t.Fatalf("Write(%q) = %q, want %q", "para\n", got, "para\n")
	}
	if got := b.Write("\nnext"); got != "\n" {
		t.Fatalf("Write(%q) = %q, want %q", "\nnext", got, "\n")
	}
	if got := b.Flush(); got != "next" {
		t.Errorf("Flush() = %q, want %q", got, "next")
	}
}

func TestBufferTokenStream(t *testing.T) {
	// Tokens arrive in model-sized fragments; emissions must concatenate to
	// the full text with every boundary intact.
	fragments := []string{"The ", "quick", " fox.", " It", " ran", "! Done"}

	var b Buffer
	var emitted []string
	for _, f := range fragments {
		if chunk := b.Write(f); chunk != "" {
			emitted = append(emitted, chunk)
		}
	}
	if residue := b.Flush(); residue != "" {
		emitted = append(emitted, residue)
	}

	wantEmitted := []string{"The quick fox. ", "It ran! ", "Done"}
	if len(emitted) != len(wantEmitted) {
		t.Fatalf("emitted %d chunks %v, want %d", len(emitted), emitted, len(wantEmitted))
	}
	for i := range emitted {
		if emitted[i] != wantEmitted[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, emitted[i], wantEmitted[i])
		}
	}
}

func TestBufferFlushResets(t *testing.T) {
	var b Buffer
	b.Write("partial")

	if got := b.Flush(); got != "partial" {
		t.Errorf("Flush() = %q, want %q", got, "partial")
	}
	if b.Len() != 0 {
		t.Errorf("Len() after Flush = %d, want 0", b.Len())
	}
	if got := b.Flush(); got != "" {
		t.Errorf("second Flush() = %q, want empty", got)
	}
}
