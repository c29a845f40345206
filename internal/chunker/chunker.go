// Package chunker splits proposal text into overlapping, boundary-aware
// segments sized for embedding.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// boundaryWindow is how far back from a candidate end position the
	// chunker looks for a natural break.
	boundaryWindow = 100
)

var multiNewline = regexp.MustCompile(`\n{3,}`)

// Clean normalizes line endings to LF, collapses runs of three or more
// newlines to exactly two, and trims surrounding whitespace.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Chunk splits text into ordered chunks of at most maxSize characters with
// up to overlap characters shared between consecutive chunks. Chunk ends
// prefer a sentence boundary, then a paragraph break, then a line break,
// within the last boundaryWindow characters of the candidate position.
// The union of chunks covers the entire cleaned input.
func Chunk(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= maxSize {
		overlap = 0
	}
	cleaned := Clean(text)
	if cleaned == "" {
		return nil
	}
	runes := []rune(cleaned)
	if len(runes) <= maxSize {
		return []string{cleaned}
	}

	var chunks []string
	pos := 0
	for pos < len(runes) {
		end := pos + maxSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = findBreak(runes, pos, end)
		}
		piece := strings.TrimSpace(string(runes[pos:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		next := end - overlap
		if next <= pos {
			// boundary search moved end too far back to make progress
			next = end
		}
		pos = next
		if pos >= len(runes)-overlap {
			break
		}
	}
	return chunks
}

// findBreak searches the last boundaryWindow runes before candidate for,
// in order of preference: a sentence boundary (terminal punctuation,
// whitespace, capital letter), a paragraph break, a single newline.
// Falls back to candidate itself.
func findBreak(runes []rune, start, candidate int) int {
	windowStart := candidate - boundaryWindow
	if windowStart < start {
		windowStart = start
	}

	for i := candidate - 1; i > windowStart; i-- {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		if j >= candidate || !unicode.IsSpace(runes[j]) {
			continue
		}
		for j < candidate && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < candidate && unicode.IsUpper(runes[j]) {
			return i + 1
		}
	}
	for i := candidate - 2; i >= windowStart; i-- {
		if runes[i] == '\n' && runes[i+1] == '\n' {
			return i + 2
		}
	}
	for i := candidate - 1; i >= windowStart; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	return candidate
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
