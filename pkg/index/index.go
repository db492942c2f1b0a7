// Package index implements the flat nearest-neighbor indices used for
// "similar cases" context: one keyed by symptom token, one by disease
// label. A linear scan is exact and fast at the corpus sizes involved;
// ranking is deterministic (cosine similarity descending, ties broken by
// lexical key order).
package index

import (
	"fmt"
	"sort"

	"github.com/viterin/vek/vek32"

	"github.com/curalab/triage/pkg/models"
)

// DefaultTopK is the number of neighbors returned when the caller does not
// specify k.
const DefaultTopK = 5

// Index is a brute-force cosine similarity index over keyed vectors.
// Immutable after Build; safe for concurrent Search.
type Index struct {
	Dim     int                  `json:"dim"`
	Keys    []string             `json:"keys"`
	Vectors map[string][]float32 `json:"vectors"`
}

// Build creates an index from key→vector entries. All vectors must share
// one dimensionality. Keys are kept sorted so tie-breaking is stable.
func Build(entries map[string][]float32) (*Index, error) {
	idx := &Index{Vectors: make(map[string][]float32, len(entries))}
	for key, vec := range entries {
		if idx.Dim == 0 {
			idx.Dim = len(vec)
		}
		if len(vec) == 0 || len(vec) != idx.Dim {
			return nil, fmt.Errorf("index entry %q has width %d, expected %d", key, len(vec), idx.Dim)
		}
		idx.Keys = append(idx.Keys, key)
		idx.Vectors[key] = vec
	}
	sort.Strings(idx.Keys)
	return idx, nil
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.Keys)
}

// Search returns the k nearest entries to the query vector, ranked by
// cosine similarity descending. Equal scores rank in lexical key order.
func (idx *Index) Search(query []float32, k int) ([]models.SimilarityHit, error) {
	if len(query) != idx.Dim {
		return nil, fmt.Errorf("query width %d does not match index width %d", len(query), idx.Dim)
	}
	if k <= 0 {
		k = DefaultTopK
	}

	hits := make([]models.SimilarityHit, 0, len(idx.Keys))
	// Keys are sorted, so a stable sort by score leaves ties lexical.
	for _, key := range idx.Keys {
		hits = append(hits, models.SimilarityHit{
			Key:   key,
			Score: vek32.CosineSimilarity(query, idx.Vectors[key]),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}
