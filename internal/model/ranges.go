package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownDateRange      = errors.New("unknown date range")
	ErrUnknownForecastPeriod = errors.New("unknown forecast period")
)

// DateRange selects how much history a caller wants to see.
type DateRange string

const (
	Range3M  DateRange = "3m"
	Range6M  DateRange = "6m"
	Range1Y  DateRange = "1y"
	Range2Y  DateRange = "2y"
	Range5Y  DateRange = "5y"
	RangeMax DateRange = "max"

	DefaultDateRange = Range1Y
)

// DateRanges lists every accepted range in ascending length.
var DateRanges = []DateRange{Range3M, Range6M, Range1Y, Range2Y, Range5Y, RangeMax}

// ParseDateRange validates s. An empty string selects DefaultDateRange.
func ParseDateRange(s string) (DateRange, error) {
	if s == "" {
		return DefaultDateRange, nil
	}
	for _, r := range DateRanges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDateRange, s)
}

// Cutoff returns the earliest date included in the range as seen from now.
// The second result is false for RangeMax, which has no cutoff.
func (r DateRange) Cutoff(now time.Time) (Date, bool) {
	today := DateOf(now)
	switch r {
	case Range3M:
		return Date{today.AddDate(0, -3, 0)}, true
	case Range6M:
		return Date{today.AddDate(0, -6, 0)}, true
	case Range2Y:
		return Date{today.AddDate(-2, 0, 0)}, true
	case Range5Y:
		return Date{today.AddDate(-5, 0, 0)}, true
	case RangeMax:
		return Date{}, false
	default:
		return Date{today.AddDate(-1, 0, 0)}, true
	}
}

// Limit keeps the points dated on or after the range cutoff. The input is not modified.
func Limit(series []PricePoint, r DateRange, now time.Time) []PricePoint {
	cutoff, ok := r.Cutoff(now)
	if !ok {
		return series
	}
	for i, p := range series {
		if !p.Date.Before(cutoff) {
			return series[i:]
		}
	}
	return []PricePoint{}
}

// ForecastPeriod selects the forecast horizon.
type ForecastPeriod string

const (
	Period1M ForecastPeriod = "1m"
	Period3M ForecastPeriod = "3m"
	Period6M ForecastPeriod = "6m"

	DefaultForecastPeriod = Period1M
)

// ForecastPeriods lists every accepted period.
var ForecastPeriods = []ForecastPeriod{Period1M, Period3M, Period6M}

// ParseForecastPeriod validates s. An empty string selects DefaultForecastPeriod.
func ParseForecastPeriod(s string) (ForecastPeriod, error) {
	if s == "" {
		return DefaultForecastPeriod, nil
	}
	for _, p := range ForecastPeriods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownForecastPeriod, s)
}

// HorizonDays is the number of business days the period projects forward.
func (p ForecastPeriod) HorizonDays() int {
	switch p {
	case Period3M:
		return 90
	case Period6M:
		return 180
	default:
		return 30
	}
}
