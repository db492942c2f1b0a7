package models

import (
	"errors"
	"fmt"
)

// ErrDataEmpty is the sentinel for a training target with zero usable
// records. Fatal to that classifier's training only.
var ErrDataEmpty = errors.New("training set empty")

type DataError struct {
	Target Target
}

func (e *DataError) Error() string {
	return fmt.Sprintf("no training records for target %q", e.Target)
}

func (e *DataError) Unwrap() error {
	return ErrDataEmpty
}

func NewDataError(target Target) error {
	return &DataError{Target: target}
}

// ErrArtifactMissing is the sentinel for an artifact slot that failed to
// load at startup. Non-fatal: the engine substitutes a knowledge-base
// fallback for that prediction.
var ErrArtifactMissing = errors.New("artifact missing")

type ArtifactMissingError struct {
	Kind ArtifactKind
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("artifact %q is not loaded", e.Kind)
}

func (e *ArtifactMissingError) Unwrap() error {
	return ErrArtifactMissing
}

func NewArtifactMissingError(kind ArtifactKind) error {
	return &ArtifactMissingError{Kind: kind}
}

// ErrEncoding is the sentinel for a failed embedding step.
var ErrEncoding = errors.New("encoding failed")

type EncodingError struct {
	Message       string
	OriginalError error
}

func (e *EncodingError) Error() string {
	if e.OriginalError == nil {
		return fmt.Sprintf("encoding error: %s", e.Message)
	}
	return fmt.Sprintf("encoding error: %s (original error: %v)", e.Message, e.OriginalError)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}

func NewEncodingError(message string, originalError error) error {
	return &EncodingError{Message: message, OriginalError: originalError}
}

// ErrNoSymptoms rejects an empty symptom set before any encoding happens.
var ErrNoSymptoms = errors.New("symptom set is empty")
