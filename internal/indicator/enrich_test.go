package indicator

import (
	"testing"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

func series(prices []float64) []model.PricePoint {
	out := make([]model.PricePoint, len(prices))
	d := model.NewDate(2025, 1, 1)
	for i, p := range prices {
		out[i] = model.PricePoint{Date: d.AddDays(i), Open: p, High: p, Low: p, Close: p, Volume: 1}
	}
	return out
}

func TestEnrich_Presence(t *testing.T) {
	in := series(randomWalk(250, 3))
	out := Enrich(in)

	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i, p := range out {
		if (p.MA20 != nil) != (i >= 19) {
			t.Errorf("MA20 presence wrong at %d", i)
		}
		if (p.MA50 != nil) != (i >= 49) {
			t.Errorf("MA50 presence wrong at %d", i)
		}
		if (p.MA200 != nil) != (i >= 199) {
			t.Errorf("MA200 presence wrong at %d", i)
		}
		if (p.RSI != nil) != (i >= 14) {
			t.Errorf("RSI presence wrong at %d", i)
		}
		if p.PricePoint != in[i] {
			t.Errorf("price point changed at %d", i)
		}
	}
}

func TestEnrich_Values(t *testing.T) {
	prices := randomWalk(220, 4)
	out := Enrich(series(prices))

	last := len(prices) - 1
	assertClose(t, "MA20", *out[last].MA20, referenceSMA(prices, last, 20), 1e-6)
	assertClose(t, "MA50", *out[last].MA50, referenceSMA(prices, last, 50), 1e-6)
	assertClose(t, "MA200", *out[last].MA200, referenceSMA(prices, last, 200), 1e-6)
	assertClose(t, "RSI", *out[last].RSI, referenceRSI(prices, last, 14), 1e-9)
}

func TestEnrich_ShortSeriesGetsPartialIndicators(t *testing.T) {
	out := Enrich(series(randomWalk(60, 5)))
	if out[59].MA50 == nil || out[59].RSI == nil {
		t.Error("expected MA50 and RSI on a 60-point series")
	}
	if out[59].MA200 != nil {
		t.Error("MA200 must be absent on a 60-point series")
	}
}

func TestEnrich_Empty(t *testing.T) {
	if out := Enrich(nil); len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

func TestEnrich_DoesNotShareValues(t *testing.T) {
	out := Enrich(series(randomWalk(30, 6)))
	if out[25].MA20 == out[26].MA20 {
		t.Error("indicator pointers must not alias between points")
	}
}
