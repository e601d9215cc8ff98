package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndexQueryRanksBySimilarity(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	err := idx.Upsert(ctx, []Chunk{
		{ID: "c1", DocumentID: "d1", ChunkIndex: 0, Text: "totally unrelated", Embedding: []float32{0, 1, 0}},
		{ID: "c2", DocumentID: "d1", ChunkIndex: 1, Text: "Acme Corp Inc.", Embedding: []float32{1, 0, 0}},
		{ID: "c3", DocumentID: "d1", ChunkIndex: 2, Text: "somewhat related", Embedding: []float32{0.7, 0.7, 0}},
	})
	require.NoError(t, err)

	matches, err := idx.Query(ctx, []float32{1, 0, 0}, "d1", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "c2", matches[0].ChunkID)
	assert.Equal(t, "c3", matches[1].ChunkID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemoryIndexScopesByDocument(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	err := idx.Upsert(ctx, []Chunk{
		{ID: "c1", DocumentID: "d1", Text: "doc one chunk", Embedding: []float32{1, 0}},
		{ID: "c2", DocumentID: "d2", Text: "doc two chunk", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)

	matches, err := idx.Query(ctx, []float32{1, 0}, "d1", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "d1", matches[0].DocumentID)
}

func TestMemoryIndexEmptyDocumentIsNotAnError(t *testing.T) {
	idx := NewMemoryIndex()
	matches, err := idx.Query(context.Background(), []float32{1, 0}, "missing", 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryIndexUpsertReplacesByID(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Chunk{{ID: "c1", DocumentID: "d1", Text: "old", Embedding: []float32{1}}}))
	require.NoError(t, idx.Upsert(ctx, []Chunk{{ID: "c1", DocumentID: "d1", Text: "new", Embedding: []float32{1}}}))

	matches, err := idx.Query(ctx, []float32{1}, "d1", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Text)
}

func TestMemoryIndexDelete(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Chunk{{ID: "c1", DocumentID: "d1", Text: "x", Embedding: []float32{1}}}))
	require.NoError(t, idx.Delete(ctx, "d1"))

	matches, err := idx.Query(ctx, []float32{1}, "d1", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
