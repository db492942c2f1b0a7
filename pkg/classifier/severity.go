package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/curalab/triage/pkg/models"
)

// ridgeLambda is the L2 regularization strength for the severity model.
// Embeddings are low-information per dimension, so a little shrinkage
// keeps the closed-form solve stable.
const ridgeLambda = 0.1

// SeveritySample is one encoded severity training example, score in [1,10].
type SeveritySample struct {
	Vector []float32
	Score  int
}

// SeverityModel is a ridge regression over embeddings. The last weight is
// the intercept. Predictions are rounded and clamped to [1,10].
type SeverityModel struct {
	Dim     int       `json:"dim"`
	Weights []float64 `json:"weights"`
}

// TrainSeverity solves the ridge normal equations in closed form:
// (XᵀX + λI)w = Xᵀy, with a ones column appended to X for the intercept.
func TrainSeverity(samples []SeveritySample) (*SeverityModel, error) {
	if len(samples) == 0 {
		return nil, models.NewDataError(models.TargetSeverity)
	}

	dim := len(samples[0].Vector)
	cols := dim + 1
	x := mat.NewDense(len(samples), cols, nil)
	y := mat.NewVecDense(len(samples), nil)
	for i := range samples {
		s := &samples[i]
		if len(s.Vector) != dim {
			return nil, fmt.Errorf("severity sample width %d, expected %d", len(s.Vector), dim)
		}
		if s.Score < 1 || s.Score > 10 {
			return nil, fmt.Errorf("severity label %d out of range [1,10]", s.Score)
		}
		for j, v := range s.Vector {
			x.Set(i, j, float64(v))
		}
		x.Set(i, dim, 1)
		y.SetVec(i, float64(s.Score))
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for i := 0; i < cols; i++ {
		xtx.Set(i, i, xtx.At(i, i)+ridgeLambda)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("severity regression solve failed: %w", err)
	}

	weights := make([]float64, cols)
	copy(weights, w.RawVector().Data)
	return &SeverityModel{Dim: dim, Weights: weights}, nil
}

// Predict returns the severity score for a vector, always in [1,10].
func (m *SeverityModel) Predict(vector []float32) (int, error) {
	if len(vector) != m.Dim {
		return 0, fmt.Errorf("query width %d does not match model width %d", len(vector), m.Dim)
	}
	score := m.Weights[m.Dim] // intercept
	for i, v := range vector {
		score += m.Weights[i] * float64(v)
	}
	return models.ClampSeverity(int(math.Round(score))), nil
}
