// Package sector classifies NSE tickers into coarse industry groups and
// carries the drift and volatility heuristics each group uses for
// synthetic history and forecasts.
//
// Classification is a prioritised rule list: the first rule whose
// keyword appears in the upper-cased ticker wins.
package sector

import (
	"strings"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
)

// Sector is an industry group.
type Sector string

const (
	IT       Sector = "it"
	Banking  Sector = "banking"
	Energy   Sector = "energy"
	Consumer Sector = "consumer"
	Metals   Sector = "metals"
	Pharma   Sector = "pharma"
	Default  Sector = "default"
)

// Rule maps ticker keywords to a sector.
type Rule struct {
	Sector   Sector
	Keywords []string
}

// Rules is evaluated top to bottom. Keyword matching is substring based,
// so order matters where keywords overlap.
var Rules = []Rule{
	{IT, []string{"TCS", "INFY", "HCLTECH", "WIPRO", "TECHM"}},
	{Banking, []string{"HDFCBANK", "ICICIBANK", "SBIN", "KOTAKBANK", "BAJFINANCE"}},
	{Energy, []string{"RELIANCE", "ONGC", "BPCL", "IOC"}},
	{Consumer, []string{"HINDUNILVR", "ITC", "NESTLEIND", "BRITANNIA"}},
	{Metals, []string{"TATASTEEL", "HINDALCO", "JSWSTEEL"}},
	{Pharma, []string{"SUNPHARMA", "CIPLA", "DRREDDY"}},
}

// Classify returns the first matching sector for symbol, or Default.
func Classify(symbol string) Sector {
	t := catalog.Ticker(symbol)
	for _, r := range Rules {
		if containsAny(t, r.Keywords) {
			return r.Sector
		}
	}
	return Default
}

// Bellwethers are the heaviest index constituents. Their synthetic history
// gets its own shape ahead of any sector rule.
var Bellwethers = []string{"RELIANCE", "TCS", "HDFCBANK"}

func containsAny(ticker string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(ticker, k) {
			return true
		}
	}
	return false
}
