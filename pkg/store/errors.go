package store

import (
	"fmt"

	"github.com/curalab/triage/pkg/models"
)

type StorageError struct {
	Message       string
	OriginalError error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s (original error: %v)", e.Message, e.OriginalError)
}

func NewStorageError(message string, originalError error) *StorageError {
	return &StorageError{Message: message, OriginalError: originalError}
}

// SlotNotFoundError reports an empty artifact slot. It unwraps to
// models.ErrArtifactMissing so the engine can treat "never trained" and
// "failed to load" uniformly.
type SlotNotFoundError struct {
	Kind models.ArtifactKind
}

func (e *SlotNotFoundError) Error() string {
	return fmt.Sprintf("artifact slot %q is empty", e.Kind)
}

func (e *SlotNotFoundError) Unwrap() error {
	return models.ErrArtifactMissing
}

func NewSlotNotFoundError(kind models.ArtifactKind) *SlotNotFoundError {
	return &SlotNotFoundError{Kind: kind}
}
