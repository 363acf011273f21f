// Package catalog holds the static registry of NSE symbols the dashboard can show.
package catalog

import (
	"strings"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

// ExchangeSuffix marks a ticker as listed on the National Stock Exchange.
const ExchangeSuffix = ".NS"

// DefaultPageSize is used by Page when the caller passes a non-positive size.
const DefaultPageSize = 20

// Catalog is an immutable, ordered symbol list. The zero value is empty.
type Catalog struct {
	symbols []model.Symbol
	index   map[string]int
}

// New builds a catalog from symbols, keeping their order. Later duplicates are dropped.
func New(symbols []model.Symbol) *Catalog {
	c := &Catalog{index: make(map[string]int, len(symbols))}
	for _, s := range symbols {
		if _, dup := c.index[s.Symbol]; dup {
			continue
		}
		c.index[s.Symbol] = len(c.symbols)
		c.symbols = append(c.symbols, s)
	}
	return c
}

// Default returns the built-in NSE catalog.
func Default() *Catalog {
	return New(nse)
}

// All returns every symbol in catalog order. The caller owns the returned slice.
func (c *Catalog) All() []model.Symbol {
	out := make([]model.Symbol, len(c.symbols))
	copy(out, c.symbols)
	return out
}

// Count returns the number of symbols.
func (c *Catalog) Count() int {
	return len(c.symbols)
}

// Search returns the symbols whose ticker or company name contains query,
// ignoring case, in catalog order. A blank query matches nothing.
func (c *Catalog) Search(query string) []model.Symbol {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []model.Symbol{}
	}
	return c.filter(q)
}

func (c *Catalog) filter(q string) []model.Symbol {
	out := []model.Symbol{}
	for _, s := range c.symbols {
		if strings.Contains(strings.ToLower(s.Symbol), q) || strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}

// Lookup finds a symbol by ticker, with or without the exchange suffix.
func (c *Catalog) Lookup(symbol string) (model.Symbol, bool) {
	i, ok := c.index[EnsureExchangeSuffix(symbol)]
	if !ok {
		return model.Symbol{}, false
	}
	return c.symbols[i], true
}

// Name returns the company name for symbol, or the bare ticker when it is not listed.
func (c *Catalog) Name(symbol string) string {
	if s, ok := c.Lookup(symbol); ok {
		return s.Name
	}
	return strings.TrimSuffix(EnsureExchangeSuffix(symbol), ExchangeSuffix)
}

// Page is one page of a (possibly filtered) listing.
type Page struct {
	Stocks      []model.Symbol `json:"stocks"`
	TotalPages  int            `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
	TotalCount  int            `json:"total_count"`
}

// Page returns the 1-based page of symbols matching query. Unlike Search,
// a blank query lists everything. Pages past the end are empty.
func (c *Catalog) Page(page, pageSize int, query string) Page {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	matched := c.symbols
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		matched = c.filter(q)
	}

	total := len(matched)
	start := total
	if page-1 <= total/pageSize {
		start = min((page-1)*pageSize, total)
	}
	end := start + min(pageSize, total-start)

	stocks := make([]model.Symbol, end-start)
	copy(stocks, matched[start:end])

	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}

	return Page{
		Stocks:      stocks,
		TotalPages:  pages,
		CurrentPage: page,
		TotalCount:  total,
	}
}

// EnsureExchangeSuffix normalises a ticker to its NSE form: trimmed,
// upper-cased and ending in ".NS". It is idempotent; "" stays "".
func EnsureExchangeSuffix(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || strings.HasSuffix(s, ExchangeSuffix) {
		return s
	}
	return s + ExchangeSuffix
}

// Ticker strips the exchange suffix: "TCS.NS" -> "TCS".
func Ticker(symbol string) string {
	return strings.TrimSuffix(EnsureExchangeSuffix(symbol), ExchangeSuffix)
}
