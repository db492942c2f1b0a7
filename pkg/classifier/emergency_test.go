package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curalab/triage/pkg/models"
)

func TestTrainEmergencyEmpty(t *testing.T) {
	_, err := TrainEmergency(nil)
	assert.ErrorIs(t, err, models.ErrDataEmpty)
}

func TestTrainEmergencySingleClass(t *testing.T) {
	_, err := TrainEmergency([]EmergencySample{
		{Vector: []float32{1, 0}, Emergency: true},
		{Vector: []float32{0.9, 0.1}, Emergency: true},
	})
	assert.Error(t, err)

	_, err = TrainEmergency([]EmergencySample{
		{Vector: []float32{1, 0}, Emergency: false},
		{Vector: []float32{0.9, 0.1}, Emergency: false},
	})
	assert.Error(t, err)
}

func TestEmergencyPredictSeparable(t *testing.T) {
	m, err := TrainEmergency([]EmergencySample{
		{Vector: []float32{1, 0}, Emergency: true},
		{Vector: []float32{0.9, 0.1}, Emergency: true},
		{Vector: []float32{0.8, 0}, Emergency: true},
		{Vector: []float32{0, 1}, Emergency: false},
		{Vector: []float32{0.1, 0.9}, Emergency: false},
		{Vector: []float32{0, 0.8}, Emergency: false},
	})
	require.NoError(t, err)

	flag, p, err := m.Predict([]float32{0.95, 0.05})
	require.NoError(t, err)
	assert.True(t, flag)
	assert.Greater(t, p, EmergencyThreshold)

	flag, p, err = m.Predict([]float32{0.05, 0.95})
	require.NoError(t, err)
	assert.False(t, flag)
	assert.Less(t, p, EmergencyThreshold)
}

func TestEmergencyProbabilityRange(t *testing.T) {
	m, err := TrainEmergency([]EmergencySample{
		{Vector: []float32{1, 0}, Emergency: true},
		{Vector: []float32{0, 1}, Emergency: false},
	})
	require.NoError(t, err)

	for _, vec := range [][]float32{{1, 0}, {0, 1}, {0.5, 0.5}, {-2, 3}} {
		p, err := m.PredictProba(vec)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestEmergencyDeterministic(t *testing.T) {
	samples := []EmergencySample{
		{Vector: []float32{1, 0}, Emergency: true},
		{Vector: []float32{0, 1}, Emergency: false},
	}
	a, err := TrainEmergency(samples)
	require.NoError(t, err)
	b, err := TrainEmergency(samples)
	require.NoError(t, err)
	assert.Equal(t, a.Weights, b.Weights)
	assert.Equal(t, a.Bias, b.Bias)
}
