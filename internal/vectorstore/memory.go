package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryIndex is an in-process Index for development and tests, used when no
// DATABASE_URL is configured. Chunks are bucketed per document so queries can
// never cross documents.
type MemoryIndex struct {
	mu    sync.RWMutex
	byDoc map[string][]Chunk
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{byDoc: make(map[string][]Chunk)}
}

func (s *MemoryIndex) Upsert(_ context.Context, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		existing := s.byDoc[c.DocumentID]
		replaced := false
		for i := range existing {
			if existing[i].ID == c.ID {
				existing[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			s.byDoc[c.DocumentID] = append(existing, c)
		}
	}
	return nil
}

func (s *MemoryIndex) Query(_ context.Context, vector []float32, documentID string, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 3
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := s.byDoc[documentID]
	matches := make([]Match, 0, len(chunks))
	for _, c := range chunks {
		matches = append(matches, Match{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Text:       c.Text,
			Score:      cosine(vector, c.Embedding),
			ChunkIndex: c.ChunkIndex,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *MemoryIndex) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byDoc, documentID)
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
