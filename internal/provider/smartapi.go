package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/markethours"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
	"github.com/Bhanuprakashgu/stock-analyzer/pkg/smartconnect"
)

const smartAPIName = "smartapi"

// SmartAPICredentials log an Angel One account in.
type SmartAPICredentials struct {
	APIKey     string
	ClientCode string
	Password   string
	TOTPSecret string
}

// SmartAPI serves daily candles from Angel One. It logs in lazily with a
// fresh TOTP code and logs in again once when the session is rejected.
type SmartAPI struct {
	creds SmartAPICredentials
	sc    *smartconnect.SmartConnect
	now   func() time.Time

	mu       sync.Mutex
	loggedIn bool
	tokens   map[string]string // "TCS" -> symbol token
}

// NewSmartAPI creates the provider. rootURL may be empty for the production endpoint.
func NewSmartAPI(creds SmartAPICredentials, rootURL string, timeout time.Duration) *SmartAPI {
	return &SmartAPI{
		creds:  creds,
		sc:     smartconnect.New(smartconnect.Config{APIKey: creds.APIKey, RootURL: rootURL, Timeout: timeout}),
		now:    time.Now,
		tokens: make(map[string]string),
	}
}

func (s *SmartAPI) Name() string { return smartAPIName }

func (s *SmartAPI) FetchDailySeries(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, error) {
	series, err := s.fetch(ctx, symbol, rng)
	if err != nil && sessionRejected(err) {
		slog.Info("smartapi session rejected, logging in again", "symbol", symbol)
		s.mu.Lock()
		s.loggedIn = false
		s.mu.Unlock()
		series, err = s.fetch(ctx, symbol, rng)
	}
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		return nil, unavailable(smartAPIName, "%s: %v", symbol, err)
	}
	return series, nil
}

func (s *SmartAPI) fetch(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, error) {
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}
	token, err := s.symbolToken(ctx, symbol)
	if err != nil {
		return nil, err
	}

	now := s.now().In(markethours.IST)
	from, ok := rng.Cutoff(now)
	if !ok {
		from = model.DateOf(now.AddDate(-10, 0, 0))
	}
	candles, err := s.sc.GetCandleData(ctx, smartconnect.CandleRequest{
		Exchange:    "NSE",
		SymbolToken: token,
		Interval:    smartconnect.IntervalOneDay,
		From:        time.Date(from.Year(), from.Month(), from.Day(), markethours.OpenHour, markethours.OpenMinute, 0, 0, markethours.IST),
		To:          now,
	})
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, unavailable(smartAPIName, "no candles for %s", symbol)
	}

	out := make([]model.PricePoint, len(candles))
	for i, c := range candles {
		out[i] = model.PricePoint{
			Date:   model.DateOf(c.Time.In(markethours.IST)),
			Open:   model.Round2(c.Open),
			High:   model.Round2(c.High),
			Low:    model.Round2(c.Low),
			Close:  model.Round2(c.Close),
			Volume: c.Volume,
		}
	}
	return out, nil
}

func (s *SmartAPI) ensureSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedIn {
		return nil
	}

	code, err := totp.GenerateCode(s.creds.TOTPSecret, s.now())
	if err != nil {
		return fmt.Errorf("generate TOTP: %w", err)
	}
	if err := s.sc.GenerateSession(ctx, s.creds.ClientCode, s.creds.Password, code); err != nil {
		return err
	}
	s.loggedIn = true
	slog.Info("smartapi session established", "client", s.creds.ClientCode)
	return nil
}

// symbolToken resolves "TCS.NS" to the NSE "TCS-EQ" instrument token.
func (s *SmartAPI) symbolToken(ctx context.Context, symbol string) (string, error) {
	ticker := catalog.Ticker(symbol)

	s.mu.Lock()
	tok, ok := s.tokens[ticker]
	s.mu.Unlock()
	if ok {
		return tok, nil
	}

	scrips, err := s.sc.SearchScrip(ctx, "NSE", ticker)
	if err != nil {
		return "", err
	}
	want := ticker + "-EQ"
	for _, sc := range scrips {
		if sc.TradingSymbol == want {
			s.mu.Lock()
			s.tokens[ticker] = sc.SymbolToken
			s.mu.Unlock()
			return sc.SymbolToken, nil
		}
	}
	return "", unavailable(smartAPIName, "no NSE equity instrument for %s", ticker)
}

func sessionRejected(err error) bool {
	if errors.Is(err, smartconnect.ErrNotLoggedIn) {
		return true
	}
	var apiErr *smartconnect.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.HTTPStatus == http.StatusUnauthorized ||
		apiErr.HTTPStatus == http.StatusForbidden ||
		apiErr.Code == "TokenException" ||
		apiErr.Code == "AG8001"
}

var _ Provider = (*SmartAPI)(nil)
