package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates an uploaded file has no reader.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrEmbedding indicates the embedding backend failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStore indicates the vector or relational store failed.
	ErrStore = errors.New("store failure")

	// ErrGeneration indicates the generation backend failed.
	ErrGeneration = errors.New("generation failed")

	// ErrRerank indicates the cross-encoder failed to score a passage.
	ErrRerank = errors.New("rerank failed")

	// ErrMalformedRecord indicates a stored record lacks the document-side marker.
	// Only chunks written through the ingestion pipeline should be in the store.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidCredentials indicates a login with unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrClearDisabled indicates ClearAll was called outside development mode.
	ErrClearDisabled = errors.New("clear is disabled outside development mode")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// UnsupportedFormatError names the file that could not be read.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Filename)
}

// Is matches ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// MalformedRecordError names the stored record missing the document-side marker.
type MalformedRecordError struct {
	ID string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %q: missing document-side marker", e.ID)
}

// Is matches ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
