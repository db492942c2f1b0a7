// Package classifier implements the three supervised models trained over
// symptom embeddings: multi-class disease prediction, ordinal severity
// regression, and binary emergency classification. Each model trains
// independently and serializes to a plain JSON payload for the artifact
// store.
package classifier

import (
	"fmt"
	"math"
	"sort"

	"github.com/viterin/vek/vek32"

	"github.com/curalab/triage/pkg/models"
)

// scoreEpsilon is the similarity margin below which two candidate labels
// count as tied and the training-frequency prior decides.
const scoreEpsilon = 1e-6

// DiseaseSample is one encoded disease training example.
type DiseaseSample struct {
	Vector []float32
	Label  string
}

// DiseaseModel is a nearest-centroid classifier: one mean embedding per
// disease label, prediction by cosine similarity. Labels are sorted so
// prior-equal ties resolve lexically.
type DiseaseModel struct {
	Dim       int         `json:"dim"`
	Labels    []string    `json:"labels"`
	Centroids [][]float32 `json:"centroids"`
	Priors    []int       `json:"priors"`
}

// TrainDisease fits centroids over the labeled samples. At least two
// distinct labels are required; a single-class corpus cannot support a
// multi-class model.
func TrainDisease(samples []DiseaseSample) (*DiseaseModel, error) {
	if len(samples) == 0 {
		return nil, models.NewDataError(models.TargetDisease)
	}

	dim := len(samples[0].Vector)
	sums := make(map[string][]float64)
	counts := make(map[string]int)
	for i := range samples {
		s := &samples[i]
		if len(s.Vector) != dim {
			return nil, fmt.Errorf("disease sample width %d, expected %d", len(s.Vector), dim)
		}
		acc, ok := sums[s.Label]
		if !ok {
			acc = make([]float64, dim)
			sums[s.Label] = acc
		}
		for j, v := range s.Vector {
			acc[j] += float64(v)
		}
		counts[s.Label]++
	}

	if len(sums) < 2 {
		return nil, fmt.Errorf("disease classifier needs at least 2 distinct labels, got %d", len(sums))
	}

	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	m := &DiseaseModel{
		Dim:       dim,
		Labels:    labels,
		Centroids: make([][]float32, len(labels)),
		Priors:    make([]int, len(labels)),
	}
	for i, label := range labels {
		n := float64(counts[label])
		centroid := make([]float32, dim)
		for j, v := range sums[label] {
			centroid[j] = float32(v / n)
		}
		m.Centroids[i] = centroid
		m.Priors[i] = counts[label]
	}
	return m, nil
}

// Predict returns the best-matching disease label and a confidence in
// [0,1]. Ties within scoreEpsilon go to the label with the higher training
// frequency, then to the lexically smaller label.
func (m *DiseaseModel) Predict(vector []float32) (string, float64, error) {
	if len(vector) != m.Dim {
		return "", 0, fmt.Errorf("query width %d does not match model width %d", len(vector), m.Dim)
	}

	best := -1
	bestScore := float32(math.Inf(-1))
	for i := range m.Labels {
		score := vek32.CosineSimilarity(vector, m.Centroids[i])
		switch {
		case best < 0 || score > bestScore+scoreEpsilon:
			best, bestScore = i, score
		case score > bestScore-scoreEpsilon && m.Priors[i] > m.Priors[best]:
			// Tied on similarity; prefer the more frequent label.
			best, bestScore = i, score
		}
	}

	confidence := float64(bestScore)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return m.Labels[best], confidence, nil
}
