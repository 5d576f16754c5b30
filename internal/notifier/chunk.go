package notifier

import "strings"

// Chunk splits text into pieces of at most limit characters, cutting at the
// last line break at or before the limit. The line break itself is dropped.
// Only a single line longer than limit is cut mid-line.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		return []string{text}
	}

	rest := []rune(text)
	var chunks []string
	for len(rest) > limit {
		cut := lastNewline(rest[:limit+1])
		switch {
		case cut > 0:
			chunks = appendChunk(chunks, string(rest[:cut]))
			rest = rest[cut+1:]
		case cut == 0:
			rest = rest[1:]
		default:
			chunks = appendChunk(chunks, string(rest[:limit]))
			rest = rest[limit:]
		}
	}
	return appendChunk(chunks, string(rest))
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

// appendChunk skips blank pieces; webhooks reject empty content.
func appendChunk(chunks []string, s string) []string {
	if strings.TrimSpace(s) == "" {
		return chunks
	}
	return append(chunks, s)
}
