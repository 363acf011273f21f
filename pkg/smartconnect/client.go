// Package smartconnect is a minimal Angel One SmartAPI REST client covering
// what historical price lookups need: password+TOTP login, scrip search and
// candle data.
//
// Usage example:
//
//	sc := smartconnect.New(smartconnect.Config{APIKey: "your_api_key"})
//	code, _ := totp.GenerateCode(secret, time.Now())
//	if err := sc.GenerateSession(ctx, "CLIENTID", "PIN", code); err != nil { ... }
//	scrips, err := sc.SearchScrip(ctx, "NSE", "SBIN")
//	candles, err := sc.GetCandleData(ctx, smartconnect.CandleRequest{
//	    Exchange: "NSE", SymbolToken: scrips[0].SymbolToken, Interval: smartconnect.IntervalOneDay,
//	    From: from, To: to,
//	})
package smartconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ---- Config & client ----

type Config struct {
	APIKey string

	RootURL        string        // default: https://apiconnect.angelone.in
	Timeout        time.Duration // default: 7s
	UserType       string        // default: USER
	SourceID       string        // default: WEB
	ClientPublicIP string        // default 106.193.147.98
	ClientLocalIP  string        // default first non-loopback IPv4, else 127.0.0.1
	ClientMAC      string        // default first interface MAC
}

type SmartConnect struct {
	apiKey  string
	rootURL string

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	feedToken    string

	httpClient *http.Client

	userType       string
	sourceID       string
	clientPublicIP string
	clientLocalIP  string
	clientMAC      string
}

const (
	defaultRoot     = "https://apiconnect.angelone.in"
	defaultPublicIP = "106.193.147.98"
)

var routes = map[string]string{
	"api.login":        "/rest/auth/angelbroking/user/v1/loginByPassword",
	"api.candle.data":  "/rest/secure/angelbroking/historical/v1/getCandleData",
	"api.search.scrip": "/rest/secure/angelbroking/order/v1/searchScrip",
}

// ErrNotLoggedIn is returned by secure calls made before GenerateSession.
var ErrNotLoggedIn = errors.New("smartconnect: no session")

// APIError is a SmartAPI error envelope ({"status":false,...} or {"error_type":...}).
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("smartapi: HTTP %d %s: %s", e.HTTPStatus, e.Code, e.Message)
}

// New initializes the client, resolving the client identity headers SmartAPI requires.
func New(cfg Config) *SmartConnect {
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRoot
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 7 * time.Second
	}
	if cfg.UserType == "" {
		cfg.UserType = "USER"
	}
	if cfg.SourceID == "" {
		cfg.SourceID = "WEB"
	}
	if cfg.ClientPublicIP == "" {
		cfg.ClientPublicIP = defaultPublicIP
	}
	if cfg.ClientLocalIP == "" {
		cfg.ClientLocalIP = localIP()
	}
	if cfg.ClientMAC == "" {
		cfg.ClientMAC = macAddress()
	}

	return &SmartConnect{
		apiKey:         cfg.APIKey,
		rootURL:        strings.TrimRight(cfg.RootURL, "/"),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		userType:       cfg.UserType,
		sourceID:       cfg.SourceID,
		clientPublicIP: cfg.ClientPublicIP,
		clientLocalIP:  cfg.ClientLocalIP,
		clientMAC:      cfg.ClientMAC,
	}
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, address := range addrs {
		if ipNet, ok := address.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return "127.0.0.1"
}

func macAddress() string {
	ifs, _ := net.Interfaces()
	for _, ifc := range ifs {
		if len(ifc.HardwareAddr) > 0 {
			return ifc.HardwareAddr.String()
		}
	}
	return "00:11:22:33:44:55"
}

// ---- Helpers ----

func (sc *SmartConnect) requestHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("X-ClientLocalIP", sc.clientLocalIP)
	h.Set("X-ClientPublicIP", sc.clientPublicIP)
	h.Set("X-MACAddress", sc.clientMAC)
	h.Set("X-PrivateKey", sc.apiKey)
	h.Set("X-UserType", sc.userType)
	h.Set("X-SourceID", sc.sourceID)
	if tok := sc.AccessToken(); tok != "" {
		h.Set("Authorization", "Bearer "+tok)
	}
	return h
}

type envelope struct {
	Status    *bool           `json:"status"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"errorcode"`
	ErrorType string          `json:"error_type"`
	Data      json.RawMessage `json:"data"`
}

// post sends params as JSON to route and decodes the envelope's data into out.
func (sc *SmartConnect) post(ctx context.Context, route string, params any, out any) error {
	uri, ok := routes[route]
	if !ok {
		return fmt.Errorf("unknown route: %s", route)
	}

	b, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode %s: %w", route, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sc.rootURL+uri, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header = sc.requestHeaders()

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", route, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", route, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("couldn't parse JSON response (HTTP %d): %w", resp.StatusCode, err)
	}
	if env.ErrorType != "" {
		return &APIError{HTTPStatus: resp.StatusCode, Code: env.ErrorType, Message: env.Message}
	}
	if (env.Status != nil && !*env.Status) || resp.StatusCode >= 300 {
		slog.Debug("smartapi request failed", "route", route, "status", resp.StatusCode, "message", env.Message)
		return &APIError{HTTPStatus: resp.StatusCode, Code: env.ErrorCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", route, err)
	}
	return nil
}

// ---- Session ----

// AccessToken returns the current JWT, or "" before login.
func (sc *SmartConnect) AccessToken() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.accessToken
}

// FeedToken returns the market feed token issued at login.
func (sc *SmartConnect) FeedToken() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.feedToken
}

// GenerateSession logs in with client code, PIN and a current TOTP code and stores the tokens.
func (sc *SmartConnect) GenerateSession(ctx context.Context, clientCode, password, totp string) error {
	params := map[string]string{"clientcode": clientCode, "password": password, "totp": totp}

	var data struct {
		JWTToken     string `json:"jwtToken"`
		RefreshToken string `json:"refreshToken"`
		FeedToken    string `json:"feedToken"`
	}
	if err := sc.post(ctx, "api.login", params, &data); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if data.JWTToken == "" {
		return errors.New("login failed: unexpected login response format")
	}

	sc.mu.Lock()
	sc.accessToken = data.JWTToken
	sc.refreshToken = data.RefreshToken
	sc.feedToken = data.FeedToken
	sc.mu.Unlock()
	return nil
}

// ---- Market data ----

// Scrip is one searchScrip match.
type Scrip struct {
	Exchange      string `json:"exchange"`
	TradingSymbol string `json:"tradingsymbol"`
	SymbolToken   string `json:"symboltoken"`
}

// SearchScrip looks up instruments by trading symbol fragment.
func (sc *SmartConnect) SearchScrip(ctx context.Context, exchange, query string) ([]Scrip, error) {
	if sc.AccessToken() == "" {
		return nil, ErrNotLoggedIn
	}
	var out []Scrip
	err := sc.post(ctx, "api.search.scrip", map[string]string{"exchange": exchange, "searchscrip": query}, &out)
	return out, err
}

// Candle intervals accepted by getCandleData.
const (
	IntervalOneDay    = "ONE_DAY"
	IntervalOneHour   = "ONE_HOUR"
	IntervalOneMinute = "ONE_MINUTE"
)

// candleTimeLayout is the fromdate/todate format getCandleData expects.
const candleTimeLayout = "2006-01-02 15:04"

// CandleRequest selects a candle range.
type CandleRequest struct {
	Exchange    string
	SymbolToken string
	Interval    string
	From, To    time.Time
}

// Candle is one OHLCV row.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// GetCandleData fetches candles. Rows arrive as
// ["2024-01-01T00:00:00+05:30", open, high, low, close, volume].
func (sc *SmartConnect) GetCandleData(ctx context.Context, r CandleRequest) ([]Candle, error) {
	if sc.AccessToken() == "" {
		return nil, ErrNotLoggedIn
	}
	params := map[string]string{
		"exchange":    r.Exchange,
		"symboltoken": r.SymbolToken,
		"interval":    r.Interval,
		"fromdate":    r.From.Format(candleTimeLayout),
		"todate":      r.To.Format(candleTimeLayout),
	}
	var rows [][]json.RawMessage
	if err := sc.post(ctx, "api.candle.data", params, &rows); err != nil {
		return nil, err
	}

	out := make([]Candle, 0, len(rows))
	for i, row := range rows {
		c, err := parseCandle(row)
		if err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseCandle(row []json.RawMessage) (Candle, error) {
	if len(row) < 6 {
		return Candle{}, fmt.Errorf("want 6 fields, got %d", len(row))
	}
	var ts string
	if err := json.Unmarshal(row[0], &ts); err != nil {
		return Candle{}, err
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Candle{}, err
	}

	c := Candle{Time: t}
	for i, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close} {
		if err := json.Unmarshal(row[i+1], dst); err != nil {
			return Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
	}
	var vol json.Number
	if err := json.Unmarshal(row[5], &vol); err != nil {
		return Candle{}, fmt.Errorf("volume: %w", err)
	}
	v, err := strconv.ParseFloat(vol.String(), 64)
	if err != nil {
		return Candle{}, fmt.Errorf("volume: %w", err)
	}
	c.Volume = int64(v)
	return c, nil
}
