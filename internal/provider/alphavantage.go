package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

const (
	AlphaVantageBaseURL = "https://www.alphavantage.co/query"
	alphaVantageName    = "alphavantage"
	dailySeriesKey      = "Time Series (Daily)"
)

// AlphaVantage reads TIME_SERIES_DAILY.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAlphaVantage creates a client. An empty baseURL selects the public endpoint.
func NewAlphaVantage(apiKey, baseURL string, timeout time.Duration) *AlphaVantage {
	if baseURL == "" {
		baseURL = AlphaVantageBaseURL
	}
	return &AlphaVantage{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *AlphaVantage) Name() string { return alphaVantageName }

type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type avResponse struct {
	Series       map[string]avBar `json:"Time Series (Daily)"`
	Note         string           `json:"Note"`
	Information  string           `json:"Information"`
	ErrorMessage string           `json:"Error Message"`
}

// FetchDailySeries requests the compact (last 100 days) payload for the
// 3m range and the full history otherwise.
func (a *AlphaVantage) FetchDailySeries(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, error) {
	size := "full"
	if rng == model.Range3M {
		size = "compact"
	}
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", size)
	q.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, unavailable(alphaVantageName, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, unavailable(alphaVantageName, "request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable(alphaVantageName, "HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, unavailable(alphaVantageName, "read body: %v", err)
	}

	var body avResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, unavailable(alphaVantageName, "decode: %v", err)
	}
	switch {
	case body.Note != "":
		return nil, unavailable(alphaVantageName, "rate limited: %s", body.Note)
	case body.Information != "":
		return nil, unavailable(alphaVantageName, "rate limited: %s", body.Information)
	case body.ErrorMessage != "":
		return nil, unavailable(alphaVantageName, "%s", body.ErrorMessage)
	case len(body.Series) == 0:
		return nil, unavailable(alphaVantageName, "missing %q for %s", dailySeriesKey, symbol)
	}

	return parseAVSeries(body.Series)
}

func parseAVSeries(series map[string]avBar) ([]model.PricePoint, error) {
	out := make([]model.PricePoint, 0, len(series))
	for day, bar := range series {
		d, err := model.ParseDate(day)
		if err != nil {
			return nil, unavailable(alphaVantageName, "%v", err)
		}
		p := model.PricePoint{Date: d}
		fields := []struct {
			dst *float64
			src string
		}{{&p.Open, bar.Open}, {&p.High, bar.High}, {&p.Low, bar.Low}, {&p.Close, bar.Close}}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f.src, 64)
			if err != nil {
				return nil, unavailable(alphaVantageName, "%s: bad price %q", day, f.src)
			}
			*f.dst = model.Round2(v)
		}
		vol, err := strconv.ParseInt(bar.Volume, 10, 64)
		if err != nil {
			return nil, unavailable(alphaVantageName, "%s: bad volume %q", day, bar.Volume)
		}
		p.Volume = vol
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

var _ Provider = (*AlphaVantage)(nil)
