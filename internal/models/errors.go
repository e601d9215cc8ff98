package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrUpstream   = errors.New("upstream failure")
)

type UpstreamKind string

const (
	UpstreamTimeout         UpstreamKind = "timeout"
	UpstreamProviderFailure UpstreamKind = "provider_failure"
)

// UpstreamError marks a failed embedding, vector-index, or generation call.
// It matches errors.Is(err, ErrUpstream) and keeps the provider cause.
type UpstreamError struct {
	Kind  UpstreamKind
	Op    string // e.g. "embed", "vector query", "generate"
	Field string // extracted field being processed, if any
	Err   error
}

func (e *UpstreamError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s for field %q: %s: %v", e.Op, e.Field, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }

// WrapError keeps a sentinel matchable while adding operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}
