package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForDaCulture/document-processing-system/internal/models"
)

func newTestDoc(t *testing.T, m *Memory) *models.Document {
	t.Helper()
	doc, err := m.CreateDocument(context.Background(), "invoice-march.pdf", "uploads/invoice-march.pdf", "application/pdf")
	require.NoError(t, err)
	return doc
}

func TestCreateDocumentSeedsPendingState(t *testing.T) {
	m := NewMemory()
	doc := newTestDoc(t, m)

	got, err := m.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusPending, got.Status)
	assert.GreaterOrEqual(t, got.Confidence, 70)
	assert.Less(t, got.Confidence, 100)
}

func TestCreateDocumentRejectsEmptyFields(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateDocument(context.Background(), "", "uploads/x.pdf", "application/pdf")
	require.ErrorIs(t, err, models.ErrValidation)
	_, err = m.CreateDocument(context.Background(), "x.pdf", "", "application/pdf")
	require.ErrorIs(t, err, models.ErrValidation)
	_, err = m.CreateDocument(context.Background(), "x.pdf", "uploads/x.pdf", "")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestListDocumentsKeepsInsertionOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		doc, err := m.CreateDocument(ctx, name, "uploads/"+name, "application/pdf")
		require.NoError(t, err)
		ids = append(ids, doc.ID)
	}

	docs, err := m.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, d := range docs {
		assert.Equal(t, ids[i], d.ID)
	}
}

func TestUpdateDocumentMergesPartialFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	doc := newTestDoc(t, m)

	status := models.DocStatusRejected
	require.NoError(t, m.UpdateDocument(ctx, doc.ID, models.DocumentUpdate{Status: &status}))

	got, err := m.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusRejected, got.Status)
	assert.Equal(t, doc.Name, got.Name)

	err = m.UpdateDocument(ctx, "missing", models.DocumentUpdate{Status: &status})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateExtractedDataOncePerDocument(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	doc := newTestDoc(t, m)

	data := map[string]string{"vendor": "Acme"}
	scores := map[string]int{"vendor": 85}

	_, err := m.CreateExtractedData(ctx, doc.ID, data, scores)
	require.NoError(t, err)

	_, err = m.CreateExtractedData(ctx, doc.ID, data, scores)
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestCreateExtractedDataConcurrentExactlyOneWins(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	doc := newTestDoc(t, m)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.CreateExtractedData(ctx, doc.ID,
				map[string]string{"amount": "42.00"},
				map[string]int{"amount": 90})
		}(i)
	}
	wg.Wait()

	okCount := 0
	for _, err := range errs {
		if err == nil {
			okCount++
		} else {
			assert.ErrorIs(t, err, models.ErrConflict)
		}
	}
	assert.Equal(t, 1, okCount)
}

func TestExtractionRoutesStatusByThreshold(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	low := newTestDoc(t, m)
	_, err := m.CreateExtractedData(ctx, low.ID,
		map[string]string{"vendor": "Acme", "amount": "10"},
		map[string]int{"vendor": 60, "amount": 95})
	require.NoError(t, err)

	got, err := m.GetDocument(ctx, low.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusNeedsReview, got.Status)
	assert.Equal(t, 77, got.Confidence) // floor((60+95)/2)

	high := newTestDoc(t, m)
	_, err = m.CreateExtractedData(ctx, high.ID,
		map[string]string{"vendor": "Acme"},
		map[string]int{"vendor": 92})
	require.NoError(t, err)

	got, err = m.GetDocument(ctx, high.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusApproved, got.Status)
}

func TestCreateExtractedDataValidatesScores(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	doc := newTestDoc(t, m)

	_, err := m.CreateExtractedData(ctx, doc.ID,
		map[string]string{"vendor": "Acme"}, map[string]int{})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = m.CreateExtractedData(ctx, doc.ID,
		map[string]string{"vendor": "Acme"}, map[string]int{"vendor": 140})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestSaveSuggestionsOverwrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	doc := newTestDoc(t, m)

	first := &models.AISuggestionResponse{
		DocumentID:  doc.ID,
		Suggestions: []models.AISuggestion{{Field: "vendor", Suggestion: "Acme Corp"}},
	}
	second := &models.AISuggestionResponse{
		DocumentID:  doc.ID,
		Suggestions: []models.AISuggestion{{Field: "vendor", Suggestion: "Acme Corp Inc."}},
	}

	require.NoError(t, m.SaveSuggestions(ctx, doc.ID, first))
	require.NoError(t, m.SaveSuggestions(ctx, doc.ID, second))

	got, err := m.GetSuggestions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, "Acme Corp Inc.", got.Suggestions[0].Suggestion)
}

func TestApplySuggestionUpdatesFieldAndConfidence(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	doc := newTestDoc(t, m)

	_, err := m.CreateExtractedData(ctx, doc.ID,
		map[string]string{"vendor": "Acme"},
		map[string]int{"vendor": 60})
	require.NoError(t, err)

	resp := &models.AISuggestionResponse{
		DocumentID: doc.ID,
		Suggestions: []models.AISuggestion{{
			Field:        "vendor",
			CurrentValue: "Acme",
			Suggestion:   "Acme Corp Inc.",
			Confidence:   90,
			Reason:       "Based on document context retrieved via RAG",
		}},
	}
	require.NoError(t, m.SaveSuggestions(ctx, doc.ID, resp))
	require.NoError(t, m.UpdateSuggestionStatus(ctx, doc.ID, "vendor", true))

	ed, err := m.GetExtractedData(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp Inc.", ed.Data["vendor"])
	assert.Equal(t, 90, ed.ConfidenceScores["vendor"])

	got, err := m.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Confidence)
	assert.Equal(t, models.DocStatusApproved, got.Status)
}

func TestApplySuggestionNeverLowersConfidence(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	doc := newTestDoc(t, m)

	_, err := m.CreateExtractedData(ctx, doc.ID,
		map[string]string{"vendor": "Acme"},
		map[string]int{"vendor": 95})
	require.NoError(t, err)

	resp := &models.AISuggestionResponse{
		DocumentID:  doc.ID,
		Suggestions: []models.AISuggestion{{Field: "vendor", Suggestion: "Acme Corp", Confidence: 70}},
	}
	require.NoError(t, m.SaveSuggestions(ctx, doc.ID, resp))
	require.NoError(t, m.UpdateSuggestionStatus(ctx, doc.ID, "vendor", true))

	ed, err := m.GetExtractedData(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", ed.Data["vendor"])
	assert.Equal(t, 95, ed.ConfidenceScores["vendor"])
}

func TestUnapplyLeavesFieldUntouched(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	doc := newTestDoc(t, m)

	_, err := m.CreateExtractedData(ctx, doc.ID,
		map[string]string{"vendor": "Acme"},
		map[string]int{"vendor": 60})
	require.NoError(t, err)

	resp := &models.AISuggestionResponse{
		DocumentID:  doc.ID,
		Suggestions: []models.AISuggestion{{Field: "vendor", Suggestion: "Acme Corp Inc.", Confidence: 90}},
	}
	require.NoError(t, m.SaveSuggestions(ctx, doc.ID, resp))
	require.NoError(t, m.UpdateSuggestionStatus(ctx, doc.ID, "vendor", false))

	ed, err := m.GetExtractedData(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", ed.Data["vendor"])
	assert.Equal(t, 60, ed.ConfidenceScores["vendor"])
}

func TestUpdateSuggestionStatusMissingTargets(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	doc := newTestDoc(t, m)

	err := m.UpdateSuggestionStatus(ctx, doc.ID, "vendor", true)
	require.ErrorIs(t, err, models.ErrNotFound)

	resp := &models.AISuggestionResponse{
		DocumentID:  doc.ID,
		Suggestions: []models.AISuggestion{{Field: "amount", Suggestion: "42.00", Confidence: 90}},
	}
	require.NoError(t, m.SaveSuggestions(ctx, doc.ID, resp))

	err = m.UpdateSuggestionStatus(ctx, doc.ID, "vendor", true)
	require.ErrorIs(t, err, models.ErrNotFound)
}
