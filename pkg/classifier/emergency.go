package classifier

import (
	"fmt"
	"math"

	"github.com/curalab/triage/pkg/models"
)

const (
	// EmergencyThreshold is the fixed probability cutoff for the flag.
	EmergencyThreshold = 0.5

	logisticEpochs       = 300
	logisticLearningRate = 0.5
)

// EmergencySample is one encoded emergency training example.
type EmergencySample struct {
	Vector    []float32
	Emergency bool
}

// EmergencyModel is a logistic regression over embeddings, trained by
// full-batch gradient descent from a zero init, so retraining on the same
// data reproduces the same weights.
type EmergencyModel struct {
	Dim     int       `json:"dim"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// TrainEmergency fits the logistic model. Both classes must be present;
// a corpus with only emergencies (or none) cannot calibrate a boundary.
func TrainEmergency(samples []EmergencySample) (*EmergencyModel, error) {
	if len(samples) == 0 {
		return nil, models.NewDataError(models.TargetEmergency)
	}

	dim := len(samples[0].Vector)
	var positives int
	for i := range samples {
		if len(samples[i].Vector) != dim {
			return nil, fmt.Errorf("emergency sample width %d, expected %d", len(samples[i].Vector), dim)
		}
		if samples[i].Emergency {
			positives++
		}
	}
	if positives == 0 || positives == len(samples) {
		return nil, fmt.Errorf(
			"emergency classifier needs both classes, got %d positive of %d samples",
			positives, len(samples),
		)
	}

	m := &EmergencyModel{Dim: dim, Weights: make([]float64, dim)}
	n := float64(len(samples))
	gradW := make([]float64, dim)
	for epoch := 0; epoch < logisticEpochs; epoch++ {
		for i := range gradW {
			gradW[i] = 0
		}
		gradB := 0.0
		for i := range samples {
			s := &samples[i]
			target := 0.0
			if s.Emergency {
				target = 1.0
			}
			diff := m.proba(s.Vector) - target
			for j, v := range s.Vector {
				gradW[j] += diff * float64(v)
			}
			gradB += diff
		}
		for j := range m.Weights {
			m.Weights[j] -= logisticLearningRate * gradW[j] / n
		}
		m.Bias -= logisticLearningRate * gradB / n
	}
	return m, nil
}

// PredictProba returns the emergency probability for a vector.
func (m *EmergencyModel) PredictProba(vector []float32) (float64, error) {
	if len(vector) != m.Dim {
		return 0, fmt.Errorf("query width %d does not match model width %d", len(vector), m.Dim)
	}
	return m.proba(vector), nil
}

// Predict thresholds the probability at EmergencyThreshold.
func (m *EmergencyModel) Predict(vector []float32) (bool, float64, error) {
	p, err := m.PredictProba(vector)
	if err != nil {
		return false, 0, err
	}
	return p >= EmergencyThreshold, p, nil
}

func (m *EmergencyModel) proba(vector []float32) float64 {
	z := m.Bias
	for i, v := range vector {
		z += m.Weights[i] * float64(v)
	}
	return 1 / (1 + math.Exp(-z))
}
