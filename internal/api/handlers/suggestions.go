package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ForDaCulture/document-processing-system/internal/models"
	"github.com/ForDaCulture/document-processing-system/internal/store"
)

// SuggestionGenerator runs the retrieval-augmented suggestion pipeline for
// one document.
type SuggestionGenerator interface {
	GenerateSuggestions(ctx context.Context, documentID string) (*models.AISuggestionResponse, error)
}

// RunObserver records suggestion-run outcomes, typically backed by the
// prometheus metrics package. nil disables observation.
type RunObserver interface {
	ObserveSuggestionRun(fields int, err error)
}

type SuggestionHandler struct {
	engine   SuggestionGenerator
	store    store.DocumentStore
	observer RunObserver
}

func NewSuggestionHandler(engine SuggestionGenerator, st store.DocumentStore, observer RunObserver) *SuggestionHandler {
	return &SuggestionHandler{engine: engine, store: st, observer: observer}
}

type applySuggestionRequest struct {
	Apply *bool `json:"apply" validate:"required"`
}

func (h *SuggestionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resp, err := h.engine.GenerateSuggestions(r.Context(), id)
	if h.observer != nil {
		fields := 0
		if resp != nil {
			fields = len(resp.Suggestions)
		}
		h.observer.ObserveSuggestionRun(fields, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *SuggestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.store.GetSuggestions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Apply accepts or dismisses the stored suggestion for one field. A dismissal
// leaves the extraction untouched.
func (h *SuggestionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	field := chi.URLParam(r, "field")

	var req applySuggestionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.UpdateSuggestionStatus(r.Context(), id, field, *req.Apply); err != nil {
		writeError(w, err)
		return
	}

	data, err := h.store.GetExtractedData(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applied": *req.Apply, "field": field, "data": data})
}
