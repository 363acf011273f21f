package forecast

import (
	"errors"
	"math"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

var ErrLengthMismatch = errors.New("forecast: actual and predicted lengths differ or are empty")

// Evaluate scores predicted against actual values. MAPE skips actual values
// near zero; direction accuracy compares the sign of consecutive moves.
func Evaluate(actual, predicted []float64) (model.Accuracy, error) {
	n := len(actual)
	if n == 0 || n != len(predicted) {
		return model.Accuracy{}, ErrLengthMismatch
	}

	var sse, sae, sape, mean float64
	var apeCount int
	for i := range actual {
		diff := actual[i] - predicted[i]
		sse += diff * diff
		sae += math.Abs(diff)
		if math.Abs(actual[i]) > 1e-8 {
			sape += math.Abs(diff / actual[i])
			apeCount++
		}
		mean += actual[i]
	}
	mean /= float64(n)

	var sst float64
	for _, a := range actual {
		sst += (a - mean) * (a - mean)
	}

	acc := model.Accuracy{
		RMSE: math.Sqrt(sse / float64(n)),
		MAE:  sae / float64(n),
	}
	if apeCount > 0 {
		acc.MAPE = sape / float64(apeCount) * 100
	}
	if sst > 0 {
		acc.R2 = 1 - sse/sst
	}

	if n > 1 {
		hits := 0
		for i := 1; i < n; i++ {
			if (actual[i]-actual[i-1] > 0) == (predicted[i]-predicted[i-1] > 0) {
				hits++
			}
		}
		acc.DirectionAccuracy = float64(hits) / float64(n-1) * 100
	}
	return acc, nil
}
