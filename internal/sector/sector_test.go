package sector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := map[string]Sector{
		"TCS.NS":       IT,
		"infy":         IT,
		"HDFCBANK.NS":  Banking,
		"RELIANCE.NS":  Energy,
		"ITC.NS":       Consumer,
		"TATASTEEL.NS": Metals,
		"CIPLA.NS":     Pharma,
		"MRF.NS":       Default,
		"":             Default,
	}
	for sym, want := range tests {
		assert.Equal(t, want, Classify(sym), sym)
	}
}

func TestClassifySubstringMatch(t *testing.T) {
	// Keywords match anywhere in the ticker, and the first rule wins.
	assert.Equal(t, Energy, Classify("BIOCON.NS"))
	assert.Equal(t, IT, Classify("TCSIOC.NS"))
}

func TestSynthForPrecedence(t *testing.T) {
	// TCS is IT but the bellwether shape takes precedence.
	p := SynthFor("TCS.NS")
	assert.Equal(t, 0.15, p.Drift)
	assert.Equal(t, 0.95, p.Dip(95))
	assert.Equal(t, 1.0, p.Dip(100))

	p = SynthFor("WIPRO.NS")
	assert.Equal(t, 0.14, p.Drift)
	assert.Equal(t, 1.2, p.VolScale)
	assert.Equal(t, 0.0, p.Wave(10))

	p = SynthFor("HINDALCO.NS")
	assert.Equal(t, 0.0, p.Wave(0))
	assert.NotEqual(t, 0.0, p.Wave(20))

	// HCLTECH classifies as IT but has no history shape of its own.
	assert.Equal(t, IT, Classify("HCLTECH.NS"))
	p = SynthFor("HCLTECH.NS")
	assert.Equal(t, 0.12, p.Drift)
	assert.Equal(t, 1.0, p.VolScale)
	assert.Equal(t, 0.011, ForecastFor("HCLTECH.NS").Volatility)

	p = SynthFor("SBIN.NS")
	assert.Equal(t, 0.12, p.Drift)
	assert.Equal(t, 1.0, p.Dip(95))
}

func TestForecastFor(t *testing.T) {
	assert.Equal(t, 0.011, ForecastFor("INFY.NS").Volatility)
	assert.Equal(t, 0.009, ForecastFor("SBIN.NS").Volatility)
	assert.Equal(t, 0.012, ForecastFor("RELIANCE.NS").Volatility)
	assert.Equal(t, 0.007, ForecastFor("NESTLEIND.NS").Volatility)
	assert.Equal(t, 0.01, ForecastFor("CIPLA.NS").Volatility)
}
