package notifier

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func TestChunkSplitsAtLineBreak(t *testing.T) {
	text := strings.Repeat("a", 1800) + "\n" + strings.Repeat("b", 699)
	if len(text) != 2500 {
		t.Fatalf("fixture has %d chars", len(text))
	}

	chunks := Chunk(text, 2000)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1800 || strings.Contains(chunks[0], "b") {
		t.Errorf("first chunk has %d chars", len(chunks[0]))
	}
	if chunks[1] != strings.Repeat("b", 699) {
		t.Errorf("second chunk is not the remainder: %d chars", len(chunks[1]))
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "fits", text: "one\ntwo", limit: 10, want: []string{"one\ntwo"}},
		{name: "exact limit", text: "abcde", limit: 5, want: []string{"abcde"}},
		{name: "break at limit", text: "abcde\nfg", limit: 5, want: []string{"abcde", "fg"}},
		{name: "several lines", text: "aa\nbb\ncc\ndd", limit: 5, want: []string{"aa\nbb", "cc\ndd"}},
		{name: "long line hard split", text: "abcdefghij\nk", limit: 4, want: []string{"abcd", "efgh", "ij\nk"}},
		{name: "leading newline", text: "\n\nabcdef", limit: 3, want: []string{"abc", "def"}},
		{name: "empty", text: "", limit: 5, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.limit)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChunkKeepsOrderAndLines(t *testing.T) {
	var lines []string
	for i := 0; i < 300; i++ {
		lines = append(lines, strings.Repeat("x", i%40)+"é line")
	}
	text := strings.Join(lines, "\n")

	chunks := Chunk(text, 200)
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 200 {
			t.Errorf("chunk %d has %d characters", i, n)
		}
	}
	if got := strings.Join(chunks, "\n"); got != text {
		t.Error("joining chunks does not restore the original text")
	}
}
