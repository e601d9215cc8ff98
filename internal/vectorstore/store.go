package vectorstore

import (
	"context"
)

// Chunk is one embedded slice of a document's text.
type Chunk struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Text       string
	Embedding  []float32
}

// Match is a retrieval hit. Text may be empty when the stored payload had no
// text; callers treat that as an empty context line, not an error.
type Match struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
}

// Index is a nearest-neighbor store over document chunks. Query results are
// scoped strictly to one document; an empty result set is valid.
type Index interface {
	Upsert(ctx context.Context, chunks []Chunk) error
	Query(ctx context.Context, vector []float32, documentID string, topK int) ([]Match, error)
	Delete(ctx context.Context, documentID string) error
}
