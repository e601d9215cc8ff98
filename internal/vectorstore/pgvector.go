package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorIndex stores chunks in a document_chunks table with a pgvector
// embedding column.
type PgVectorIndex struct {
	db *pgxpool.Pool
}

func NewPgVectorIndex(db *pgxpool.Pool) *PgVectorIndex {
	return &PgVectorIndex{db: db}
}

func (s *PgVectorIndex) Upsert(ctx context.Context, chunks []Chunk) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}

		embedding := pgvector.NewVector(c.Embedding)

		_, err := tx.Exec(ctx,
			`INSERT INTO document_chunks (id, document_id, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET content = $4, embedding = $5`,
			id, c.DocumentID, c.ChunkIndex, c.Text, embedding,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	return tx.Commit(ctx)
}

// Query runs cosine similarity search restricted to one document. Scoping by
// document_id in SQL keeps other documents' chunks out of the result set.
func (s *PgVectorIndex) Query(ctx context.Context, vector []float32, documentID string, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 3
	}

	embedding := pgvector.NewVector(vector)

	rows, err := s.db.Query(ctx,
		`SELECT id, document_id, content, chunk_index,
		        1 - (embedding <=> $1) AS score
		 FROM document_chunks
		 WHERE document_id = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		embedding, documentID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ChunkID, &m.DocumentID, &m.Text, &m.ChunkIndex, &m.Score); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *PgVectorIndex) Delete(ctx context.Context, documentID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}
