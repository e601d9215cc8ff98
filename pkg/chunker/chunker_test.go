package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedChunkingRespectsSizeAndOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 runes
	chunks := New().Chunk(text, ChunkOptions{ChunkSize: 40, ChunkOverlap: 10, Strategy: "fixed"})

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), 40)
		assert.Equal(t, i, c.Index)
	}
	// step = 30, so chunk 2 starts at offset 30 and repeats the overlap.
	assert.Equal(t, chunks[0].Content[30:], chunks[1].Content[:10])
}

func TestRecursiveChunkingPrefersParagraphBreaks(t *testing.T) {
	text := "First paragraph about the vendor.\n\nSecond paragraph about the invoice amount.\n\nThird paragraph about dates."
	chunks := New().Chunk(text, ChunkOptions{ChunkSize: 50, Strategy: "recursive"})

	require.GreaterOrEqual(t, len(chunks), 3)
	assert.Equal(t, "First paragraph about the vendor.", chunks[0].Content)
}

func TestShortTextYieldsSingleChunk(t *testing.T) {
	chunks := New().Chunk("tiny", DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny", chunks[0].Content)
}

func TestWhitespaceOnlyYieldsNoChunks(t *testing.T) {
	assert.Empty(t, New().Chunk("   \n\n  ", DefaultOptions()))
}
