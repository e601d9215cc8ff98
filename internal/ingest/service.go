package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ForDaCulture/document-processing-system/internal/vectorstore"
	"github.com/ForDaCulture/document-processing-system/pkg/chunker"
)

// Embedder is the batch embedding surface; embedding.Service satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Service slices a document's raw text into chunks, embeds them, and fills
// the per-document vector index the suggestion engine retrieves from.
type Service struct {
	embedSvc Embedder
	index    vectorstore.Index
	opts     chunker.ChunkOptions
}

func NewService(embedSvc Embedder, index vectorstore.Index, opts chunker.ChunkOptions) *Service {
	if opts.ChunkSize <= 0 {
		opts = chunker.DefaultOptions()
	}
	return &Service{embedSvc: embedSvc, index: index, opts: opts}
}

// Index replaces the document's chunks in the vector index with chunks of
// content. Re-indexing the same document is safe; stale chunks are dropped
// first.
func (s *Service) Index(ctx context.Context, documentID, content string) error {
	chunks := chunker.New().Chunk(content, s.opts)
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks generated from content")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedSvc.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	if err := s.index.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("clear stale chunks: %w", err)
	}

	stored := make([]vectorstore.Chunk, len(chunks))
	for i, c := range chunks {
		stored[i] = vectorstore.Chunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			ChunkIndex: c.Index,
			Text:       c.Content,
			Embedding:  embeddings[i],
		}
	}

	if err := s.index.Upsert(ctx, stored); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	slog.Info("indexed document", "document_id", documentID, "chunks", len(stored))
	return nil
}
