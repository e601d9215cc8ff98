package store

import (
	"context"

	"github.com/ForDaCulture/document-processing-system/internal/models"
)

// DocumentStore is the single source of truth for documents, their extracted
// data, and the last generated suggestion set. Implementations must be safe
// for concurrent use; the in-memory implementation below is the default, a
// durable backing store can be swapped in without touching callers.
type DocumentStore interface {
	CreateDocument(ctx context.Context, name, path, docType string) (*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	UpdateDocument(ctx context.Context, id string, upd models.DocumentUpdate) error

	CreateExtractedData(ctx context.Context, documentID string, data map[string]string, scores map[string]int) (*models.ExtractedData, error)
	GetExtractedData(ctx context.Context, documentID string) (*models.ExtractedData, error)

	SaveSuggestions(ctx context.Context, documentID string, resp *models.AISuggestionResponse) error
	GetSuggestions(ctx context.Context, documentID string) (*models.AISuggestionResponse, error)
	UpdateSuggestionStatus(ctx context.Context, documentID, field string, apply bool) error
}
