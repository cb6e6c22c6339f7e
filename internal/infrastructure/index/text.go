package index

import (
	"strings"
	"unicode"
)

// splitText cuts text into windows of at most size runes that overlap by overlap
// runes. Window ends are pulled back to the last whitespace when one exists in the
// second half of the window.
func splitText(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if size <= 0 {
		return []string{string(runes)}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}

		for cut := end; cut > start+size/2; cut-- {
			if unicode.IsSpace(runes[cut-1]) {
				end = cut
				break
			}
		}

		chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}
