package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing primary-store entity.
	ErrNotFound = errors.New("not found")
	// ErrUnknownType signals an entity type with no registered descriptors.
	ErrUnknownType = errors.New("unknown indexable type")
	// ErrEngineUnavailable signals that the search engine could not be reached or set up.
	ErrEngineUnavailable = errors.New("search engine unavailable")
	// ErrProjectionIncomplete signals that related data was missing during projection.
	ErrProjectionIncomplete = errors.New("projection incomplete")
	// ErrStaleReference signals that a reindexed entity no longer exists in the primary store.
	ErrStaleReference = errors.New("stale reference on reindex")
	// ErrQuery signals a search request the engine (or the builder) rejected.
	ErrQuery = errors.New("invalid query")
	// ErrInvalidSort signals an unrecognized sort key.
	ErrInvalidSort = errors.New("invalid sort")
	// ErrWriteFailure signals a failed index write.
	ErrWriteFailure = errors.New("index write failure")
	// ErrClientClosed signals use of the index client after teardown.
	ErrClientClosed = errors.New("index client closed")
)

// UnknownTypeError wraps ErrUnknownType with the offending type name.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownType.Error(), e.Type)
}

func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }

// QueryError wraps ErrQuery. Err carries the engine's rejection, if any.
type QueryError struct {
	Query  string
	Reason string
	Err    error
}

func (e *QueryError) Error() string {
	msg := ErrQuery.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the engine error.
func (e *QueryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrQuery}
	}
	return []error{ErrQuery, e.Err}
}

// NewQueryError creates a QueryError with a reason and no engine cause.
func NewQueryError(query, reason string) error {
	return &QueryError{Query: query, Reason: reason}
}

// InvalidSortError wraps ErrInvalidSort with the rejected key.
type InvalidSortError struct {
	Key string
}

func (e *InvalidSortError) Error() string {
	return fmt.Sprintf("%s: unrecognized sort key %q", ErrInvalidSort.Error(), e.Key)
}

func (e *InvalidSortError) Unwrap() error { return ErrInvalidSort }

// ProjectionIncompleteError lists the relations that were missing when a document was projected.
// It is reported, never returned to the mutating caller.
type ProjectionIncompleteError struct {
	Type    string
	ID      string
	Missing []string
}

func (e *ProjectionIncompleteError) Error() string {
	return fmt.Sprintf("%s: %s %s missing [%s]",
		ErrProjectionIncomplete.Error(), e.Type, e.ID, strings.Join(e.Missing, ", "))
}

func (e *ProjectionIncompleteError) Unwrap() error { return ErrProjectionIncomplete }
