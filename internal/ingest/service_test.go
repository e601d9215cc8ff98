package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForDaCulture/document-processing-system/internal/vectorstore"
	"github.com/ForDaCulture/document-processing-system/pkg/chunker"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

// fakeIndexer records calls without needing a database.
type fakeIndexer struct {
	upserted []vectorstore.Chunk
	deleted  []string
}

func (f *fakeIndexer) Upsert(_ context.Context, chunks []vectorstore.Chunk) error {
	f.upserted = append(f.upserted, chunks...)
	return nil
}

func (f *fakeIndexer) Query(_ context.Context, _ []float32, _ string, _ int) ([]vectorstore.Match, error) {
	return nil, nil
}

func (f *fakeIndexer) Delete(_ context.Context, documentID string) error {
	f.deleted = append(f.deleted, documentID)
	return nil
}

func TestIndexChunksEmbedsAndStores(t *testing.T) {
	idx := &fakeIndexer{}
	svc := NewService(fakeEmbedder{}, idx, chunker.ChunkOptions{ChunkSize: 40, Strategy: "fixed"})

	content := "Invoice from Acme Corp Inc. dated 2024-01-03 for the amount of 120.00 USD, invoice number INV-7."
	require.NoError(t, svc.Index(context.Background(), "d1", content))

	assert.Equal(t, []string{"d1"}, idx.deleted)
	require.Greater(t, len(idx.upserted), 1)
	for i, c := range idx.upserted {
		assert.Equal(t, "d1", c.DocumentID)
		assert.Equal(t, i, c.ChunkIndex)
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Text)
		assert.NotEmpty(t, c.Embedding)
	}
}

func TestIndexRejectsEmptyContent(t *testing.T) {
	svc := NewService(fakeEmbedder{}, &fakeIndexer{}, chunker.DefaultOptions())
	err := svc.Index(context.Background(), "d1", "   ")
	require.Error(t, err)
}

func TestChunkingSplitsLongText(t *testing.T) {
	opts := chunker.ChunkOptions{ChunkSize: 40, Strategy: "fixed"}
	chunks := chunker.New().Chunk("Invoice from Acme Corp Inc. dated 2024-01-03 for the amount of 120.00 USD, invoice number INV-7.", opts)
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.NotEmpty(t, c.Content)
	}
}
