package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ForDaCulture/document-processing-system/internal/models"
	"github.com/ForDaCulture/document-processing-system/internal/store"
	"github.com/ForDaCulture/document-processing-system/internal/vectorstore"
)

// Embedder turns a retrieval query into a vector.
type Embedder interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// Generator turns a prompt into a free-text completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ConfidencePolicy scores a generated suggestion. The default returns a fixed
// baseline; callers may install a calibrated policy.
type ConfidencePolicy func(field, suggestion string, matches []vectorstore.Match) int

type Options struct {
	TopK               int           // retrieval depth per field
	Concurrency        int           // max in-flight field pipelines
	UpstreamTimeout    time.Duration // per embed/query/generate call
	BaselineConfidence int
}

func (o Options) normalize() Options {
	if o.TopK <= 0 {
		o.TopK = 3
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.UpstreamTimeout <= 0 {
		o.UpstreamTimeout = 30 * time.Second
	}
	if o.BaselineConfidence <= 0 || o.BaselineConfidence > 100 {
		o.BaselineConfidence = 90
	}
	return o
}

// Engine produces per-document suggestion sets by retrieval-augmented
// generation over extracted fields. It holds no state between calls; the
// store is the only place results live.
type Engine struct {
	store      store.DocumentStore
	embedder   Embedder
	index      vectorstore.Index
	generator  Generator
	opts       Options
	confidence ConfidencePolicy
}

func NewEngine(st store.DocumentStore, embedder Embedder, index vectorstore.Index, generator Generator, opts Options) *Engine {
	e := &Engine{
		store:     st,
		embedder:  embedder,
		index:     index,
		generator: generator,
		opts:      opts.normalize(),
	}
	e.confidence = func(string, string, []vectorstore.Match) int {
		return e.opts.BaselineConfidence
	}
	return e
}

// SetConfidencePolicy replaces the scoring policy. Call during wiring, before
// the engine is shared.
func (e *Engine) SetConfidencePolicy(p ConfidencePolicy) {
	if p != nil {
		e.confidence = p
	}
}

// GenerateSuggestions runs the per-field RAG pipeline for a document and
// persists the full response. Field pipelines run concurrently up to the
// configured limit, but the response preserves extracted-field order. Any
// field failure aborts the whole call and nothing is persisted.
func (e *Engine) GenerateSuggestions(ctx context.Context, documentID string) (*models.AISuggestionResponse, error) {
	ed, err := e.store.GetExtractedData(ctx, documentID)
	if err != nil {
		return nil, err
	}

	fields := ed.Fields()
	suggestions := make([]models.AISuggestion, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, field := range fields {
		g.Go(func() error {
			s, err := e.suggestField(gctx, documentID, field, ed.Data[field])
			if err != nil {
				return err
			}
			suggestions[i] = *s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &models.AISuggestionResponse{DocumentID: documentID, Suggestions: suggestions}
	if err := e.store.SaveSuggestions(ctx, documentID, resp); err != nil {
		return nil, err
	}

	slog.Info("generated suggestions", "document_id", documentID, "fields", len(fields))
	return resp, nil
}

func (e *Engine) suggestField(ctx context.Context, documentID, field, value string) (*models.AISuggestion, error) {
	query := field + " " + value

	vector, err := withTimeout(ctx, e.opts.UpstreamTimeout, func(ctx context.Context) ([]float32, error) {
		return e.embedder.EmbedSingle(ctx, query)
	})
	if err != nil {
		return nil, upstreamError("embed", field, err)
	}

	matches, err := withTimeout(ctx, e.opts.UpstreamTimeout, func(ctx context.Context) ([]vectorstore.Match, error) {
		return e.index.Query(ctx, vector, documentID, e.opts.TopK)
	})
	if err != nil {
		return nil, upstreamError("vector query", field, err)
	}

	// One matched text per line, in the index's ranking order. A match with
	// no text payload contributes an empty line.
	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = m.Text
	}
	contextText := strings.Join(lines, "\n")

	prompt := buildPrompt(field, value, contextText)

	text, err := withTimeout(ctx, e.opts.UpstreamTimeout, func(ctx context.Context) (string, error) {
		return e.generator.Generate(ctx, prompt)
	})
	if err != nil {
		return nil, upstreamError("generate", field, err)
	}

	return &models.AISuggestion{
		Field:        field,
		CurrentValue: value,
		Suggestion:   text,
		Confidence:   e.confidence(field, text, matches),
		Reason:       "Based on document context retrieved via RAG",
	}, nil
}

func buildPrompt(field, value, contextText string) string {
	return fmt.Sprintf(
		"Given the field %s with value %s and context:\n%s\nSuggest an improvement or correction for this field.",
		field, value, contextText,
	)
}

func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}

func upstreamError(op, field string, err error) error {
	kind := models.UpstreamProviderFailure
	if errors.Is(err, context.DeadlineExceeded) {
		kind = models.UpstreamTimeout
	}
	return &models.UpstreamError{Kind: kind, Op: op, Field: field, Err: err}
}
