package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/logger"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/metrics"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/stocks"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 16

	// DefaultStreamInterval is how often subscribed dashboards are pushed again.
	DefaultStreamInterval = time.Minute
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DashboardSource builds dashboards for the stream.
type DashboardSource interface {
	Dashboard(ctx context.Context, symbol, dateRange, period string) (stocks.Dashboard, error)
}

// Client → server messages.
//
//	{"type":"SUBSCRIBE","req_id":"1","symbol":"TCS","range":"1y","period":"1m"}
//	{"type":"UNSUBSCRIBE","symbol":"TCS","range":"1y","period":"1m"}
//	{"ping":1718000000000}
type SubscribeMsg struct {
	Type   string `json:"type"`
	ReqID  string `json:"req_id,omitempty"`
	Symbol string `json:"symbol"`
	Range  string `json:"range"`
	Period string `json:"period"`
}

// DashboardMsg pushes one dashboard. Initial is set on the reply to SUBSCRIBE.
type DashboardMsg struct {
	Type    string           `json:"type"` // "DASHBOARD"
	ReqID   string           `json:"req_id,omitempty"`
	Initial bool             `json:"initial"`
	TS      string           `json:"ts"`
	Data    stocks.Dashboard `json:"data"`
}

// ErrorResponse reports a rejected client message.
type ErrorResponse struct {
	Type  string `json:"type"` // "ERROR"
	ReqID string `json:"req_id,omitempty"`
	Error string `json:"error"`
}

type subscription struct {
	symbol string
	rng    string
	period string
}

func (s subscription) key() string { return s.symbol + ":" + s.rng + ":" + s.period }

// Hub tracks stream clients and periodically re-pushes their subscriptions.
type Hub struct {
	src      DashboardSource
	interval time.Duration
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a Hub. interval <= 0 selects DefaultStreamInterval.
func NewHub(src DashboardSource, interval time.Duration, m *metrics.Metrics) *Hub {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &Hub{
		src:      src,
		interval: interval,
		metrics:  m,
		clients:  make(map[*Client]bool),
	}
}

// ServeWS upgrades the request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", append(logger.LogWithTrace(r.Context()), "error", err)...)
		return
	}
	c := &Client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		hub:     h,
		subs:    make(map[string]subscription),
		traceID: logger.TraceID(r.Context()),
	}
	h.AddClient(c)
	go c.writePump()
	go c.readPump()
}

func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.StreamClientDelta(1)
	slog.Info("ws client connected", "clients", n)
}

// RemoveClient unregisters c and closes its send channel. It is idempotent.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
	h.metrics.StreamClientDelta(-1)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run re-pushes every subscription each interval until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.refresh(ctx)
		}
	}
}

func (h *Hub) refresh(ctx context.Context) {
	type target struct {
		c   *Client
		sub subscription
	}
	var targets []target

	// Lock order is client subMu before hub mu, so subscriptions are read
	// after the hub lock is released.
	for _, c := range h.snapshot() {
		for _, s := range c.subscriptions() {
			targets = append(targets, target{c, s})
		}
	}

	// Clients watching the same key share one dashboard.
	built := make(map[string]stocks.Dashboard)
	for _, t := range targets {
		d, ok := built[t.sub.key()]
		if !ok {
			var err error
			d, err = h.src.Dashboard(ctx, t.sub.symbol, t.sub.rng, t.sub.period)
			if err != nil {
				continue
			}
			built[t.sub.key()] = d
		}
		t.c.sendIfSubscribed(t.sub.key(), DashboardMsg{Type: "DASHBOARD", TS: time.Now().UTC().Format(time.RFC3339Nano), Data: d})
	}
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Client is a single WebSocket peer.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	hub     *Hub
	traceID string

	subMu sync.RWMutex
	subs  map[string]subscription
}

func (c *Client) subscriptions() []subscription {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	out := make([]subscription, 0, len(c.subs))
	for _, s := range c.subs {
		out = append(out, s)
	}
	return out
}

// sendJSON queues v unless the client is gone or its buffer is full.
func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("ws marshal failed", "error", err)
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("ws client send buffer full, dropping message", "trace_id", c.traceID)
	}
}

// sendIfSubscribed queues v only while key is still subscribed. Holding
// subMu orders the push against a concurrent UNSUBSCRIBE.
func (c *Client) sendIfSubscribed(key string, v any) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	if _, ok := c.subs[key]; ok {
		c.sendJSON(v)
	}
}

func (c *Client) sendError(reqID, msg string) {
	c.sendJSON(ErrorResponse{Type: "ERROR", ReqID: reqID, Error: msg})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
		slog.Info("ws client disconnected", "trace_id", c.traceID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var base struct {
			Type string `json:"type"`
			Ping int64  `json:"ping"`
		}
		if json.Unmarshal(raw, &base) != nil {
			c.sendError("", "invalid JSON")
			continue
		}

		switch base.Type {
		case "SUBSCRIBE":
			var msg SubscribeMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				c.sendError("", "invalid SUBSCRIBE: "+err.Error())
				continue
			}
			c.handleSubscribe(msg)
		case "UNSUBSCRIBE":
			var msg SubscribeMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			c.handleUnsubscribe(msg)
		default:
			if base.Ping > 0 {
				c.sendJSON(map[string]any{"type": "pong", "ping": base.Ping, "server_ts": time.Now().UnixMilli()})
				continue
			}
			c.sendError("", "unknown message type "+base.Type)
		}
	}
}

func normalize(msg SubscribeMsg) subscription {
	period := model.DefaultForecastPeriod
	if p, err := model.ParseForecastPeriod(msg.Period); err == nil {
		period = p
	}
	return subscription{
		symbol: catalog.EnsureExchangeSuffix(msg.Symbol),
		rng:    string(rangeOrDefault(msg.Range)),
		period: string(period),
	}
}

func (c *Client) handleSubscribe(msg SubscribeMsg) {
	ctx := logger.WithTraceID(context.Background(), c.traceID)
	d, err := c.hub.src.Dashboard(ctx, msg.Symbol, msg.Range, msg.Period)
	if err != nil {
		c.sendError(msg.ReqID, err.Error())
		return
	}

	// The snapshot goes out before the subscription is visible to refresh.
	c.sendJSON(DashboardMsg{
		Type:    "DASHBOARD",
		ReqID:   msg.ReqID,
		Initial: true,
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Data:    d,
	})

	sub := subscription{symbol: d.Symbol, rng: string(d.DateRange), period: string(d.ForecastPeriod)}
	c.subMu.Lock()
	c.subs[sub.key()] = sub
	c.subMu.Unlock()

	slog.Info("ws client subscribed", append(logger.LogWithTrace(ctx),
		"symbol", sub.symbol, "range", sub.rng, "period", sub.period)...)
}

func (c *Client) handleUnsubscribe(msg SubscribeMsg) {
	sub := normalize(msg)
	c.subMu.Lock()
	delete(c.subs, sub.key())
	c.subMu.Unlock()
}
