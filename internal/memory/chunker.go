package memory

import "unicode/utf8"

const (
	// DefaultChunkSize is the sliding-window length in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how many characters consecutive chunks share.
	DefaultChunkOverlap = 200

	// sentenceSearchWindow is how far back from the window end we look for a
	// period to cut on.
	sentenceSearchWindow = 100
)

// ChunkText splits content into overlapping windows. Sizes and offsets are
// counted in characters, not bytes, so multibyte content never splits
// mid-rune. Non-terminal windows prefer to end at the last period within the
// final 100 characters of the window so chunks do not cut sentences mid-way.
// Content at or under the chunk size yields exactly one chunk equal to the
// full text.
func ChunkText(content string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	if utf8.RuneCountInString(content) <= size {
		return []string{content}
	}

	runes := []rune(content)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		for i := end - 1; i >= start && i >= end-sentenceSearchWindow; i-- {
			if runes[i] == '.' {
				end = i + 1
				break
			}
		}

		chunks = append(chunks, string(runes[start:end]))
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}
