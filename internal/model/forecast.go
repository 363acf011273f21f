package model

// ForecastPoint is one predicted day with its confidence band.
// Invariant: Lower <= Price <= Upper.
type ForecastPoint struct {
	Date  Date    `json:"date"`
	Price float64 `json:"price"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Accuracy summarises how far back-test predictions sat from the actual closes.
type Accuracy struct {
	RMSE              float64 `json:"rmse"`
	MAE               float64 `json:"mae"`
	MAPE              float64 `json:"mape"` // percent
	R2                float64 `json:"r2"`
	DirectionAccuracy float64 `json:"direction_accuracy"` // percent
}

// Forecast bundles the back-test overlay and the projected future path.
// Both slices empty means there was not enough history to forecast.
type Forecast struct {
	Predictions       []ForecastPoint `json:"predictions"`
	FuturePredictions []ForecastPoint `json:"future_predictions"`
	Accuracy          *Accuracy       `json:"accuracy,omitempty"`
}

// Empty reports whether the forecast carries no points at all.
func (f Forecast) Empty() bool {
	return len(f.Predictions) == 0 && len(f.FuturePredictions) == 0
}

// Complete reports whether both back-test and future sequences are present.
func (f Forecast) Complete() bool {
	return len(f.Predictions) > 0 && len(f.FuturePredictions) > 0
}
