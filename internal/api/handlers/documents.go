package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ForDaCulture/document-processing-system/internal/models"
	"github.com/ForDaCulture/document-processing-system/internal/queue"
	"github.com/ForDaCulture/document-processing-system/internal/store"
)

// Indexer enqueues background indexing work. nil disables enqueueing, which
// is the mode handler tests and queue-less deployments run in.
type Indexer interface {
	EnqueueDocumentIndex(payload queue.DocumentIndexPayload) error
}

type DocumentHandler struct {
	store   store.DocumentStore
	indexer Indexer
}

func NewDocumentHandler(st store.DocumentStore, indexer Indexer) *DocumentHandler {
	return &DocumentHandler{store: st, indexer: indexer}
}

type createDocumentRequest struct {
	Name string `json:"name" validate:"required"`
	Path string `json:"path" validate:"required"`
	Type string `json:"type" validate:"required"`
}

type updateDocumentRequest struct {
	Name   *string `json:"name,omitempty"`
	Path   *string `json:"path,omitempty"`
	Type   *string `json:"type,omitempty"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=pending processed needsReview approved rejected"`
}

type createExtractedDataRequest struct {
	Data             map[string]string `json:"data" validate:"required,min=1"`
	ConfidenceScores map[string]int    `json:"confidenceScores" validate:"required,min=1"`
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.store.CreateDocument(r.Context(), req.Name, req.Path, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	// Indexing is best-effort: the document exists either way, and the
	// vector index only improves suggestion context.
	if h.indexer != nil && doc.Path != "" {
		if err := h.indexer.EnqueueDocumentIndex(queue.DocumentIndexPayload{DocumentID: doc.ID}); err != nil {
			slog.Warn("failed to enqueue document indexing", "document_id", doc.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListDocuments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	upd := models.DocumentUpdate{
		Name:   req.Name,
		Path:   req.Path,
		Type:   req.Type,
		Status: req.Status,
	}
	if err := h.store.UpdateDocument(r.Context(), id, upd); err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.store.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) CreateData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req createExtractedDataRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	data, err := h.store.CreateExtractedData(r.Context(), id, req.Data, req.ConfidenceScores)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, data)
}

func (h *DocumentHandler) GetData(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.GetExtractedData(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
