package models

import (
	"errors"
	"fmt"
)

// ErrEmptyIndex is returned when a query reaches an index with zero chunks.
// It is a user-actionable condition, distinct from a service failure.
var ErrEmptyIndex = errors.New("index is empty, ingest documents before querying")

// ValidationError reports missing or malformed request fields. It is
// surfaced immediately with a 4xx status and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// ExtractionError reports that one document's text could not be extracted.
// The document is skipped and ingestion continues.
type ExtractionError struct {
	Document string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %q: %v", e.Document, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingServiceError reports an upstream embedding failure, carrying the
// upstream status and body so callers can tell transient from permanent.
type EmbeddingServiceError struct {
	Status int
	Body   string
	Err    error
}

func (e *EmbeddingServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding service: %v", e.Err)
	}
	return fmt.Sprintf("embedding service returned status %d: %s", e.Status, e.Body)
}

func (e *EmbeddingServiceError) Unwrap() error { return e.Err }

// CompletionServiceError reports an upstream completion failure. The core
// does not retry; retry policy belongs to the caller.
type CompletionServiceError struct {
	Status int
	Body   string
	Err    error
}

func (e *CompletionServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion service: %v", e.Err)
	}
	return fmt.Sprintf("completion service returned status %d: %s", e.Status, e.Body)
}

func (e *CompletionServiceError) Unwrap() error { return e.Err }

// MalformedCompletionError reports completion output that failed to match
// the requested structured format. The raw text is preserved and the
// response is flagged as a fallback, never dropped.
type MalformedCompletionError struct {
	Raw string
	Err error
}

func (e *MalformedCompletionError) Error() string {
	return fmt.Sprintf("completion output did not match requested structure: %v", e.Err)
}

func (e *MalformedCompletionError) Unwrap() error { return e.Err }
