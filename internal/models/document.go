package models

import (
	"sort"
	"time"
)

// Document is the canonical record for an ingested file. The path is opaque
// to this service; upload handling lives outside the core.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processed_at"`
	Confidence  int       `json:"confidence"` // 0-100, document-level
}

const (
	DocStatusPending     = "pending"
	DocStatusProcessed   = "processed"
	DocStatusNeedsReview = "needsReview"
	DocStatusApproved    = "approved"
	DocStatusRejected    = "rejected"
)

// DocumentUpdate carries a partial merge for UpdateDocument. Nil fields are
// left untouched.
type DocumentUpdate struct {
	Name        *string    `json:"name,omitempty"`
	Path        *string    `json:"path,omitempty"`
	Type        *string    `json:"type,omitempty"`
	Status      *string    `json:"status,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Confidence  *int       `json:"confidence,omitempty"`
}

// ExtractedData holds the structured fields pulled from a document by the
// upstream extraction step, with a per-field confidence score. At most one
// lives per document.
type ExtractedData struct {
	ID               string            `json:"id"`
	DocumentID       string            `json:"document_id"`
	Data             map[string]string `json:"data"`
	ConfidenceScores map[string]int    `json:"confidence_scores"`
}

// fieldOrder is the canonical iteration order for extracted invoice fields.
// Suggestion generation and responses preserve this order.
var fieldOrder = []string{"date", "invoiceNumber", "amount", "vendor"}

// Fields returns the data's field names in canonical order. Fields outside
// the canonical set sort after it, alphabetically, so iteration stays
// deterministic.
func (e *ExtractedData) Fields() []string {
	out := make([]string, 0, len(e.Data))
	seen := make(map[string]bool, len(e.Data))
	for _, f := range fieldOrder {
		if _, ok := e.Data[f]; ok {
			out = append(out, f)
			seen[f] = true
		}
	}
	var extra []string
	for f := range e.Data {
		if !seen[f] {
			extra = append(extra, f)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// AISuggestion is one proposed correction for a single extracted field.
type AISuggestion struct {
	Field        string `json:"field"`
	CurrentValue string `json:"currentValue"`
	Suggestion   string `json:"suggestion"`
	Confidence   int    `json:"confidence"`
	Reason       string `json:"reason"`
}

// AISuggestionResponse is a full per-document suggestion set, one entry per
// extracted field in field order. Regeneration replaces it wholesale.
type AISuggestionResponse struct {
	DocumentID  string         `json:"documentId"`
	Suggestions []AISuggestion `json:"suggestions"`
}
