package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Build(map[string][]float32{
		"cough":    {0, 1, 0},
		"fever":    {1, 0, 0},
		"headache": {0.9, 0.1, 0},
		"nausea":   {0, 0, 1},
	})
	require.NoError(t, err)
	return idx
}

func TestBuildWidthMismatch(t *testing.T) {
	_, err := Build(map[string][]float32{
		"fever": {1, 0},
		"cough": {0, 1, 0},
	})
	assert.Error(t, err)
}

func TestSearchSelfMatchFirst(t *testing.T) {
	idx := buildTestIndex(t)

	hits, err := idx.Search([]float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "fever", hits[0].Key)
	assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-5)
	assert.Equal(t, "headache", hits[1].Key)
}

func TestSearchLexicalTieBreak(t *testing.T) {
	idx, err := Build(map[string][]float32{
		"bravo": {1, 0},
		"alpha": {1, 0},
		"zulu":  {0, 1},
	})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "alpha", hits[0].Key)
	assert.Equal(t, "bravo", hits[1].Key)
}

func TestSearchKCapped(t *testing.T) {
	idx := buildTestIndex(t)

	hits, err := idx.Search([]float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, idx.Len())
}

func TestSearchDefaultK(t *testing.T) {
	entries := make(map[string][]float32)
	for _, key := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		entries[key] = []float32{1, float32(len(key))}
	}
	idx, err := Build(entries)
	require.NoError(t, err)

	hits, err := idx.Search([]float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Len(t, hits, DefaultTopK)
}

func TestSearchWidthMismatch(t *testing.T) {
	idx := buildTestIndex(t)
	_, err := idx.Search([]float32{1, 0}, 3)
	assert.Error(t, err)
}
