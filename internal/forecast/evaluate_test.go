package forecast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePerfect(t *testing.T) {
	acc, err := Evaluate([]float64{1, 2, 3, 2}, []float64{1, 2, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, acc.RMSE)
	assert.Equal(t, 0.0, acc.MAE)
	assert.Equal(t, 0.0, acc.MAPE)
	assert.Equal(t, 1.0, acc.R2)
	assert.Equal(t, 100.0, acc.DirectionAccuracy)
}

func TestEvaluateKnownValues(t *testing.T) {
	// errors: 0, +2, -2 → RMSE sqrt(8/3), MAE 4/3
	acc, err := Evaluate([]float64{10, 20, 30}, []float64{10, 18, 32})
	require.NoError(t, err)
	assert.InDelta(t, 1.632993, acc.RMSE, 1e-6)
	assert.InDelta(t, 1.333333, acc.MAE, 1e-6)
	// (0 + 10% + 6.667%) / 3
	assert.InDelta(t, 5.555556, acc.MAPE, 1e-6)
	// SST = 200, SSE = 8
	assert.InDelta(t, 0.96, acc.R2, 1e-12)
	assert.Equal(t, 100.0, acc.DirectionAccuracy)
}

func TestEvaluateDirection(t *testing.T) {
	acc, err := Evaluate([]float64{1, 2, 1}, []float64{1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, acc.DirectionAccuracy)
}

func TestEvaluateErrors(t *testing.T) {
	_, err := Evaluate(nil, nil)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
	_, err = Evaluate([]float64{1}, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}
