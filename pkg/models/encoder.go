package models

import "context"

// Encoder turns symptom tokens into fixed-length embedding vectors.
// Implementations must be deterministic: the same input always yields the
// same vector, and the same aggregation rule is used at training and
// inference time. Unknown tokens still receive a vector.
type Encoder interface {
	// EncodeTokens encodes a set of symptom tokens into a single vector
	// using the encoder's fixed aggregation rule.
	EncodeTokens(ctx context.Context, tokens []string) ([]float32, error)

	// EncodeText encodes a free-text phrase, tokenizing it first.
	EncodeText(ctx context.Context, text string) ([]float32, error)

	// Info returns the fingerprint that ties artifacts to this encoder.
	Info() EncoderInfo
}
