package encoder

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/viterin/vek/vek32"

	"github.com/curalab/triage/pkg/models"
)

const (
	localEncoderName = "hash-ngram-v1"
	minGram          = 3
	maxGram          = 5
)

// LocalEncoder embeds symptom tokens by signed feature hashing of character
// n-grams. It is fully deterministic, needs no model files or network, and
// produces a vector for any token, seen or unseen. Shared n-grams between
// related tokens ("body_ache" / "muscle_ache") yield correlated vectors,
// which is all the downstream classifiers and indices need.
//
// Aggregation rule: per-token vectors are L2-normalized, element-wise
// averaged over the set, and the result L2-normalized again. The same rule
// runs at training and inference time; changing it invalidates every
// stored artifact (the encoder fingerprint guards this).
type LocalEncoder struct {
	dims int
}

var _ models.Encoder = &LocalEncoder{}

func NewLocalEncoder(dims int) (*LocalEncoder, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("encoder dimensions must be positive, got %d", dims)
	}
	return &LocalEncoder{dims: dims}, nil
}

func (e *LocalEncoder) Info() models.EncoderInfo {
	return models.EncoderInfo{
		Name:         localEncoderName,
		Dimensions:   e.dims,
		IsNormalized: true,
	}
}

// EncodeTokens encodes a symptom set into one vector. Token order does not
// matter; duplicates are ignored.
func (e *LocalEncoder) EncodeTokens(_ context.Context, tokens []string) ([]float32, error) {
	normalized := models.NormalizeSymptoms(tokens)
	if len(normalized) == 0 {
		return nil, models.NewEncodingError("no tokens to encode", nil)
	}

	acc := make([]float32, e.dims)
	for _, tok := range normalized {
		v := e.tokenVector(tok)
		for i := range acc {
			acc[i] += v[i]
		}
	}
	scale(acc, 1/float32(len(normalized)))
	normalize(acc)
	return acc, nil
}

// EncodeText encodes a free-text phrase by splitting it into word tokens.
func (e *LocalEncoder) EncodeText(ctx context.Context, text string) ([]float32, error) {
	return e.EncodeTokens(ctx, strings.Fields(text))
}

// tokenVector hashes the token's character n-grams into a signed vector.
// Boundary markers keep prefixes and suffixes distinguishable.
func (e *LocalEncoder) tokenVector(token string) []float32 {
	v := make([]float32, e.dims)
	runes := []rune("^" + token + "$")
	for n := minGram; n <= maxGram; n++ {
		if len(runes) < n {
			break
		}
		for i := 0; i+n <= len(runes); i++ {
			h := fnv.New64a()
			_, _ = h.Write([]byte(string(runes[i : i+n])))
			sum := h.Sum64()
			idx := int(sum % uint64(e.dims))
			if sum&(1<<63) != 0 {
				v[idx]--
			} else {
				v[idx]++
			}
		}
	}
	normalize(v)
	return v
}

func scale(v []float32, s float32) {
	for i := range v {
		v[i] *= s
	}
}

func normalize(v []float32) {
	n := vek32.Norm(v)
	if n == 0 {
		return
	}
	scale(v, 1/n)
}
