// Package indicator computes technical indicators over daily closes.
//
// Indicators are streaming: each one is fed closes in date order and
// reports its value once enough history has been seen. Enrich runs the
// standard dashboard set over a whole series in a single pass.
package indicator

// Indicator is the interface for all technical indicators.
type Indicator interface {
	// Update feeds the next close (rupees).
	Update(price float64)

	// Value returns the current calculated value. Returns 0 if not enough data.
	Value() float64

	// Ready returns true when enough data has been accumulated.
	Ready() bool
}
