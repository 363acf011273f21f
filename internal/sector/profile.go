package sector

import (
	"math"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
)

// SynthProfile shapes a synthetic history that ends near the base price.
// Offset i counts trading days back from the most recent one.
type SynthProfile struct {
	// Drift is how far below the base price the series starts.
	Drift float64
	// VolScale multiplies the synthesizer's daily volatility.
	VolScale float64
	// Wave adds a cyclical term for offset i.
	Wave func(i int) float64
	// Dip scales the close for offset i.
	Dip func(i int) float64
}

var (
	bellwether = SynthProfile{
		Drift:    0.15,
		VolScale: 1,
		Dip: func(i int) float64 {
			if i > 90 && i < 100 {
				return 0.95
			}
			return 1
		},
	}

	defaultSynth = SynthProfile{Drift: 0.12, VolScale: 1}
)

type synthRule struct {
	keywords []string
	profile  SynthProfile
}

// synthRules has its own keyword lists: the history shapes cover fewer
// tickers than the sector Rules (HCLTECH gets the default shape).
var synthRules = []synthRule{
	{Bellwethers, bellwether},
	{[]string{"INFY", "WIPRO", "TECHM"}, SynthProfile{Drift: 0.14, VolScale: 1.2}},
	{[]string{"TATASTEEL", "HINDALCO", "JSWSTEEL"}, SynthProfile{Drift: 0.10, VolScale: 1, Wave: func(i int) float64 { return math.Sin(float64(i)/15) * 0.05 }}},
	{[]string{"SUNPHARMA", "CIPLA", "DRREDDY"}, SynthProfile{Drift: 0.09, VolScale: 0.7}},
}

// SynthFor returns the history shape for symbol: the first matching rule,
// else the default shape.
func SynthFor(symbol string) SynthProfile {
	p := defaultSynth
	t := catalog.Ticker(symbol)
	for _, r := range synthRules {
		if containsAny(t, r.keywords) {
			p = r.profile
			break
		}
	}
	if p.Wave == nil {
		p.Wave = func(int) float64 { return 0 }
	}
	if p.Dip == nil {
		p.Dip = func(int) float64 { return 1 }
	}
	return p
}

// ForecastProfile is the daily trend band and volatility used when projecting.
// The sector trend is drawn uniformly from [TrendBase, TrendBase+TrendSpread).
type ForecastProfile struct {
	TrendBase   float64
	TrendSpread float64
	Volatility  float64
}

var forecastProfiles = map[Sector]ForecastProfile{
	IT:       {TrendBase: 0.0025, TrendSpread: 0.001, Volatility: 0.011},
	Banking:  {TrendBase: 0.002, TrendSpread: 0.0008, Volatility: 0.009},
	Energy:   {TrendBase: 0.0015, TrendSpread: 0.0012, Volatility: 0.012},
	Consumer: {TrendBase: 0.001, TrendSpread: 0.0005, Volatility: 0.007},
}

var defaultForecast = ForecastProfile{TrendBase: 0.0015, TrendSpread: 0.0005, Volatility: 0.01}

// ForecastFor returns the projection parameters for symbol.
func ForecastFor(symbol string) ForecastProfile {
	if p, ok := forecastProfiles[Classify(symbol)]; ok {
		return p
	}
	return defaultForecast
}
