package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInput(t *testing.T) {
	got := SplitText("short text", 100, 20)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("SplitText() = %v, want single unmodified chunk", got)
	}
}

func TestSplitTextChunkingAndOverlap(t *testing.T) {
	text := "abcdefghijklmnopqrst" // 20 chars
	got := SplitText(text, 10, 2)

	want := []string{"abcdefghij", "ijklmnopqr", "qrst"}
	if len(got) != len(want) {
		t.Fatalf("SplitText() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitTextNoTextDropped(t *testing.T) {
	text := strings.Repeat("proposal text ", 200)
	chunkSize, overlap := 1000, 200

	chunks := SplitText(text, chunkSize, overlap)

	// Reassembling with the overlap stripped must reproduce the input.
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c)
			continue
		}
		if len(c) > overlap {
			sb.WriteString(c[overlap:])
		}
	}
	if sb.String() != text {
		t.Error("reassembled chunks do not reproduce the input text")
	}

	for i, c := range chunks {
		if len(c) > chunkSize {
			t.Errorf("chunk[%d] is %d chars, exceeds %d", i, len(c), chunkSize)
		}
	}
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("x", 25)

	// Degenerate overlap must not loop forever; it falls back to disjoint
	// chunks.
	got := SplitText(text, 10, 10)
	want := []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}
	if len(got) != len(want) {
		t.Fatalf("SplitText() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("é", 15)
	got := SplitText(text, 10, 2)

	for i, c := range got {
		if !strings.HasPrefix(c, "é") {
			t.Errorf("chunk[%d] split a multibyte rune: %q", i, c)
		}
	}
	if got[0] != strings.Repeat("é", 10) {
		t.Errorf("chunk[0] = %q, want 10 runes", got[0])
	}
}
