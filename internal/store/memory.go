package store

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ForDaCulture/document-processing-system/internal/models"
)

// DefaultReviewThreshold routes a document to needsReview when any field
// confidence falls below it.
const DefaultReviewThreshold = 80

// Memory is the in-process DocumentStore. All mutations run under one mutex,
// so cross-collection transitions (extraction landing, suggestion application)
// are atomic with respect to concurrent callers.
type Memory struct {
	mu sync.RWMutex

	documents map[string]*models.Document
	order     []string // insertion order for ListDocuments

	// extraction results and suggestion sets, keyed by document ID
	extracted   map[string]*models.ExtractedData
	suggestions map[string]*models.AISuggestionResponse

	reviewThreshold int
}

func NewMemory() *Memory {
	return &Memory{
		documents:       make(map[string]*models.Document),
		extracted:       make(map[string]*models.ExtractedData),
		suggestions:     make(map[string]*models.AISuggestionResponse),
		reviewThreshold: DefaultReviewThreshold,
	}
}

// SetReviewThreshold overrides the needsReview cutoff. Intended to be called
// once during wiring, before the store is shared.
func (m *Memory) SetReviewThreshold(threshold int) {
	m.reviewThreshold = threshold
}

func (m *Memory) CreateDocument(_ context.Context, name, path, docType string) (*models.Document, error) {
	if name == "" || path == "" || docType == "" {
		return nil, fmt.Errorf("%w: name, path and type are required", models.ErrValidation)
	}

	doc := &models.Document{
		ID:          uuid.NewString(),
		Name:        name,
		Path:        path,
		Type:        docType,
		Status:      models.DocStatusPending,
		ProcessedAt: time.Now().UTC(),
		// Seed score until extraction reports real per-field confidence.
		Confidence: rand.IntN(30) + 70,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[doc.ID] = doc
	m.order = append(m.order, doc.ID)

	out := *doc
	return &out, nil
}

func (m *Memory) GetDocument(_ context.Context, id string) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	out := *doc
	return &out, nil
}

func (m *Memory) ListDocuments(_ context.Context) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]models.Document, 0, len(m.order))
	for _, id := range m.order {
		docs = append(docs, *m.documents[id])
	}
	return docs, nil
}

func (m *Memory) UpdateDocument(_ context.Context, id string, upd models.DocumentUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.documents[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}

	if upd.Name != nil {
		doc.Name = *upd.Name
	}
	if upd.Path != nil {
		doc.Path = *upd.Path
	}
	if upd.Type != nil {
		doc.Type = *upd.Type
	}
	if upd.Status != nil {
		doc.Status = *upd.Status
	}
	if upd.ProcessedAt != nil {
		doc.ProcessedAt = *upd.ProcessedAt
	}
	if upd.Confidence != nil {
		doc.Confidence = *upd.Confidence
	}
	return nil
}

func (m *Memory) CreateExtractedData(_ context.Context, documentID string, data map[string]string, scores map[string]int) (*models.ExtractedData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: extracted data is empty", models.ErrValidation)
	}
	for field := range data {
		score, ok := scores[field]
		if !ok {
			return nil, fmt.Errorf("%w: field %q has no confidence score", models.ErrValidation, field)
		}
		if score < 0 || score > 100 {
			return nil, fmt.Errorf("%w: confidence for %q out of range: %d", models.ErrValidation, field, score)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.documents[documentID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, models.ErrNotFound)
	}
	if _, exists := m.extracted[documentID]; exists {
		return nil, fmt.Errorf("extracted data for document %s already exists: %w", documentID, models.ErrConflict)
	}

	ed := &models.ExtractedData{
		ID:               uuid.NewString(),
		DocumentID:       documentID,
		Data:             copyStrings(data),
		ConfidenceScores: copyInts(scores),
	}
	m.extracted[documentID] = ed

	doc.ProcessedAt = time.Now().UTC()
	doc.Confidence = meanConfidence(ed.ConfidenceScores)
	// processed and the needsReview/approved routing collapse into one step:
	// extraction landing is what marks a document processed.
	doc.Status = m.routeStatus(ed.ConfidenceScores)

	out := cloneExtracted(ed)
	return out, nil
}

func (m *Memory) GetExtractedData(_ context.Context, documentID string) (*models.ExtractedData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ed, ok := m.extracted[documentID]
	if !ok {
		return nil, fmt.Errorf("extracted data for document %s: %w", documentID, models.ErrNotFound)
	}
	return cloneExtracted(ed), nil
}

func (m *Memory) SaveSuggestions(_ context.Context, documentID string, resp *models.AISuggestionResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.documents[documentID]; !ok {
		return fmt.Errorf("document %s: %w", documentID, models.ErrNotFound)
	}
	// Replaces any prior response wholesale.
	m.suggestions[documentID] = cloneResponse(resp)
	return nil
}

func (m *Memory) GetSuggestions(_ context.Context, documentID string) (*models.AISuggestionResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resp, ok := m.suggestions[documentID]
	if !ok {
		return nil, fmt.Errorf("suggestions for document %s: %w", documentID, models.ErrNotFound)
	}
	return cloneResponse(resp), nil
}

func (m *Memory) UpdateSuggestionStatus(_ context.Context, documentID, field string, apply bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp, ok := m.suggestions[documentID]
	if !ok {
		return fmt.Errorf("suggestions for document %s: %w", documentID, models.ErrNotFound)
	}

	var sug *models.AISuggestion
	for i := range resp.Suggestions {
		if resp.Suggestions[i].Field == field {
			sug = &resp.Suggestions[i]
			break
		}
	}
	if sug == nil {
		return fmt.Errorf("no suggestion for field %q on document %s: %w", field, documentID, models.ErrNotFound)
	}

	if !apply {
		// The suggestion stays on record; the field is left as-is.
		slog.Debug("suggestion left unapplied", "document_id", documentID, "field", field)
		return nil
	}

	ed, ok := m.extracted[documentID]
	if !ok {
		return fmt.Errorf("extracted data for document %s: %w", documentID, models.ErrNotFound)
	}

	ed.Data[field] = sug.Suggestion
	if sug.Confidence > ed.ConfidenceScores[field] {
		ed.ConfidenceScores[field] = sug.Confidence
	}

	if doc, ok := m.documents[documentID]; ok {
		doc.Confidence = meanConfidence(ed.ConfidenceScores)
		doc.Status = m.routeStatus(ed.ConfidenceScores)
	}
	return nil
}

// routeStatus decides where a document lands once per-field confidence is
// known: below-threshold fields send it to review, otherwise it is approved.
func (m *Memory) routeStatus(scores map[string]int) string {
	for _, s := range scores {
		if s < m.reviewThreshold {
			return models.DocStatusNeedsReview
		}
	}
	return models.DocStatusApproved
}

func meanConfidence(scores map[string]int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return sum / len(scores)
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyInts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneExtracted(ed *models.ExtractedData) *models.ExtractedData {
	return &models.ExtractedData{
		ID:               ed.ID,
		DocumentID:       ed.DocumentID,
		Data:             copyStrings(ed.Data),
		ConfidenceScores: copyInts(ed.ConfidenceScores),
	}
}

func cloneResponse(resp *models.AISuggestionResponse) *models.AISuggestionResponse {
	out := &models.AISuggestionResponse{DocumentID: resp.DocumentID}
	out.Suggestions = append(out.Suggestions, resp.Suggestions...)
	return out
}
