package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/ForDaCulture/document-processing-system/internal/ingest"
	"github.com/ForDaCulture/document-processing-system/internal/queue"
	"github.com/ForDaCulture/document-processing-system/internal/store"
	"github.com/ForDaCulture/document-processing-system/pkg/textextract"
)

// IndexWorker reads a document's file, extracts its text, and feeds it to the
// ingestion pipeline so field-level retrieval has context to draw on.
type IndexWorker struct {
	store     store.DocumentStore
	ingestSvc *ingest.Service
}

func NewIndexWorker(st store.DocumentStore, ingestSvc *ingest.Service) *IndexWorker {
	return &IndexWorker{store: st, ingestSvc: ingestSvc}
}

func (w *IndexWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentIndexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	doc, err := w.store.GetDocument(ctx, payload.DocumentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if !textextract.Supported(doc.Type) {
		slog.Warn("skipping unsupported document type", "document_id", doc.ID, "type", doc.Type)
		return nil
	}

	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return fmt.Errorf("read file %s: %w", doc.Path, err)
	}

	text, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), doc.Type)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	if err := w.ingestSvc.Index(ctx, doc.ID, text); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	slog.Info("document indexed", "document_id", doc.ID)
	return nil
}
