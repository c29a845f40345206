package chunker_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/govscout/gov-index/internal/chunker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	in := "a\r\nb\rc\n\n\n\n\nd  "
	assert.Equal(t, "a\nb\nc\n\nd", chunker.Clean(in))
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	text := "  A short governance proposal. Nothing to split here.\n"
	chunks := chunker.Chunk(text, 500, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(text), chunks[0])
}

func TestChunk_EmptyText(t *testing.T) {
	assert.Nil(t, chunker.Chunk("   \n\n  ", 500, 50))
}

func buildLongText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "Unique sentence number %d talks about treasury spending. ", i)
	}
	return strings.TrimSpace(b.String())
}

func TestChunk_LongTextProperties(t *testing.T) {
	const maxSize, overlap = 500, 50
	text := buildLongText(40)
	cleaned := chunker.Clean(text)

	chunks := chunker.Chunk(text, maxSize, overlap)
	require.Greater(t, len(chunks), 1)

	for i, ch := range chunks {
		assert.LessOrEqualf(t, len([]rune(ch)), maxSize, "chunk %d exceeds max size", i)
		assert.NotEmpty(t, ch)
	}

	// First chunk starts the text, last chunk finishes it.
	assert.True(t, strings.HasPrefix(cleaned, chunks[0]))
	assert.True(t, strings.HasSuffix(cleaned, chunks[len(chunks)-1]))

	// No gap between consecutive chunks beyond trimmed whitespace.
	prevEnd := 0
	searchFrom := 0
	for i, ch := range chunks {
		start := strings.Index(cleaned[searchFrom:], ch)
		require.GreaterOrEqualf(t, start, 0, "chunk %d not found in cleaned text", i)
		start += searchFrom
		if i > 0 && start > prevEnd {
			gap := cleaned[prevEnd:start]
			assert.Emptyf(t, strings.TrimSpace(gap), "gap before chunk %d", i)
		}
		prevEnd = start + len(ch)
		searchFrom = start + 1
	}
	assert.Equal(t, len(cleaned), prevEnd)
}

func TestChunk_PrefersSentenceBoundary(t *testing.T) {
	text := buildLongText(40)
	chunks := chunker.Chunk(text, 500, 50)
	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks[:len(chunks)-1] {
		assert.Truef(t, strings.HasSuffix(ch, "."), "chunk %d should end at a sentence boundary: %q", i, ch)
	}
}

func TestChunk_FallsBackToNewline(t *testing.T) {
	// no sentence punctuation at all, but line breaks inside the window
	var b strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "budget line item %02d without punctuation\n", i)
	}
	chunks := chunker.Chunk(b.String(), 400, 40)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch)), 400)
	}
}

func TestChunk_HardBreakWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 1200)
	chunks := chunker.Chunk(text, 500, 50)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 500, len(chunks[0]))
}

func TestStripMarkdown(t *testing.T) {
	in := "# Title\n\nSome **bold** and *italic* and _under_ text.\n" +
		"- item one\n1. item two\n" +
		"A [link](https://example.com) and ![img](x.png) and `code`.\n" +
		"```go\nfmt.Println(1)\n```\n"
	out := chunker.StripMarkdown(in)
	assert.NotContains(t, out, "#")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "](")
	assert.NotContains(t, out, "```")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "italic")
	assert.Contains(t, out, "under")
	assert.Contains(t, out, "item one")
	assert.Contains(t, out, "item two")
	assert.Contains(t, out, "link")
	assert.Contains(t, out, "code")
	assert.Contains(t, out, "fmt.Println(1)")
}

func TestPrepareProposalText(t *testing.T) {
	got := chunker.PrepareProposalText("# Prop 42", "Fund the **thing**.")
	assert.Equal(t, "Prop 42\n\nFund the thing.", got)

	assert.Equal(t, "only title", chunker.PrepareProposalText("only title", ""))
	assert.Equal(t, "only body", chunker.PrepareProposalText("", "only body"))
}
