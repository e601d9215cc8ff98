package queue

const (
	// TypeDocumentIndex extracts a document's text and fills its slice of the
	// vector index.
	TypeDocumentIndex = "document:index"
)

type DocumentIndexPayload struct {
	DocumentID string `json:"document_id"`
}
