package indicator

import "github.com/Bhanuprakashgu/stock-analyzer/internal/model"

// Standard dashboard periods.
const (
	MA20Period  = 20
	MA50Period  = 50
	MA200Period = 200
	RSIPeriod   = 14
)

type slot struct {
	ind Indicator
	set func(p *model.EnrichedPricePoint, v *float64)
}

// Enrich returns a new series, one entry per input point, carrying MA20,
// MA50, MA200 and RSI14. An indicator is nil until its window is full, so
// short series still get the indicators they can support. The input is
// not modified.
func Enrich(series []model.PricePoint) []model.EnrichedPricePoint {
	slots := []slot{
		{NewSMA(MA20Period), func(p *model.EnrichedPricePoint, v *float64) { p.MA20 = v }},
		{NewSMA(MA50Period), func(p *model.EnrichedPricePoint, v *float64) { p.MA50 = v }},
		{NewSMA(MA200Period), func(p *model.EnrichedPricePoint, v *float64) { p.MA200 = v }},
		{NewWindowRSI(RSIPeriod), func(p *model.EnrichedPricePoint, v *float64) { p.RSI = v }},
	}

	out := make([]model.EnrichedPricePoint, len(series))
	for i, p := range series {
		out[i].PricePoint = p
		for _, s := range slots {
			s.ind.Update(p.Close)
			if s.ind.Ready() {
				v := s.ind.Value()
				s.set(&out[i], &v)
			}
		}
	}
	return out
}
