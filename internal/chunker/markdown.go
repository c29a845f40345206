package chunker

import (
	"regexp"
	"strings"
)

// Proposal descriptions arrive as markdown. Embeddings work better on the
// visible text, so markers are stripped rather than rendered.
var (
	fenceMarker   = regexp.MustCompile("```[a-zA-Z0-9]*")
	inlineCode    = regexp.MustCompile("`([^`]*)`")
	image         = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	link          = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	boldAsterisk  = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnder     = regexp.MustCompile(`__([^_]+)__`)
	emphAsterisk  = regexp.MustCompile(`\*([^*\n]+)\*`)
	emphUnder     = regexp.MustCompile(`_([^_\n]+)_`)
	heading       = regexp.MustCompile(`(?m)^#{1,6}[ \t]*`)
	bulletMarker  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	orderedMarker = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
)

// StripMarkdown reduces markdown to its visible text: heading markers,
// bold/italic markers, code spans and fences, and list markers are removed;
// links and images collapse to their text.
func StripMarkdown(text string) string {
	text = fenceMarker.ReplaceAllString(text, "")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = image.ReplaceAllString(text, "$1")
	text = link.ReplaceAllString(text, "$1")
	text = boldAsterisk.ReplaceAllString(text, "$1")
	text = boldUnder.ReplaceAllString(text, "$1")
	text = emphAsterisk.ReplaceAllString(text, "$1")
	text = emphUnder.ReplaceAllString(text, "$1")
	text = heading.ReplaceAllString(text, "")
	text = bulletMarker.ReplaceAllString(text, "")
	text = orderedMarker.ReplaceAllString(text, "")
	return text
}

// PrepareProposalText builds the single string handed to Chunk before
// embedding: stripped title and description joined by a blank line.
func PrepareProposalText(title, description string) string {
	title = strings.TrimSpace(StripMarkdown(title))
	description = strings.TrimSpace(StripMarkdown(description))
	switch {
	case title == "":
		return description
	case description == "":
		return title
	}
	return title + "\n\n" + description
}
