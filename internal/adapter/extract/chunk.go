package extract

import (
	"strings"
	"unicode"
)

// ChunkText splits text into pieces of at most size runes. A chunk is cut at the
// last whitespace in its second half when there is one, so words stay whole.
func ChunkText(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" || size <= 0 {
		return nil
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			for cut := end; cut > start+size/2; cut-- {
				if unicode.IsSpace(runes[cut]) {
					end = cut
					break
				}
			}
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = end
	}
	return chunks
}
