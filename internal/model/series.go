package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-date layout used on the wire.
const DateLayout = "2006-01-02"

// Symbol is one entry of the NSE catalog, e.g. {"TCS.NS", "Tata Consultancy Services Ltd."}.
type Symbol struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Date is a civil calendar date. The embedded time is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate returns the civil date y-m-d.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping t's calendar date in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// Equal reports whether d and o are the same calendar date.
func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

func (d Date) String() string { return d.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PricePoint is one trading day of OHLCV data. Prices are INR rounded to 2 places.
//
// Invariant: Low <= min(Open, Close) and High >= max(Open, Close).
type PricePoint struct {
	Date   Date    `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Valid reports whether the OHLC ordering invariant holds.
func (p PricePoint) Valid() bool {
	return p.Low <= min(p.Open, p.Close) && p.High >= max(p.Open, p.Close) && p.Volume >= 0
}

// EnrichedPricePoint is a PricePoint plus technical indicators.
// A nil indicator means "not enough history yet" and encodes as JSON null.
type EnrichedPricePoint struct {
	PricePoint
	MA20  *float64 `json:"ma20"`
	MA50  *float64 `json:"ma50"`
	MA200 *float64 `json:"ma200"`
	RSI   *float64 `json:"rsi"`
}

// Closes extracts the closing prices of a series.
func Closes[T interface{ ClosePrice() float64 }](series []T) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.ClosePrice()
	}
	return out
}

// ClosePrice returns the close; it lets generic helpers read plain and enriched points alike.
func (p PricePoint) ClosePrice() float64 { return p.Close }

// Bare strips indicators from an enriched series.
func Bare(series []EnrichedPricePoint) []PricePoint {
	out := make([]PricePoint, len(series))
	for i, p := range series {
		out[i] = p.PricePoint
	}
	return out
}
