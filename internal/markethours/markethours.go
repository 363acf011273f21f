// Package markethours knows which calendar days NSE trades on and where
// the session sits in IST. Series synthesis and forecasting use it to lay
// out business dates.
package markethours

import (
	"fmt"
	"time"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// Session hours in IST
const (
	OpenHour    = 9
	OpenMinute  = 15
	CloseHour   = 15
	CloseMinute = 30
)

// Calendar decides which civil dates count as business days.
type Calendar interface {
	IsBusinessDay(d model.Date) bool
}

// Weekdays treats every Monday to Friday as a business day.
type Weekdays struct{}

func (Weekdays) IsBusinessDay(d model.Date) bool {
	wd := d.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// NSE is Weekdays minus the exchange holiday list.
type NSE struct{}

func (NSE) IsBusinessDay(d model.Date) bool {
	return Weekdays{}.IsBusinessDay(d) && !holidaySet[d]
}

// Today returns the current IST calendar date.
func Today(now time.Time) model.Date {
	return model.DateOf(now.In(IST))
}

// BusinessDaysBefore returns the n business days strictly before end, ascending.
func BusinessDaysBefore(cal Calendar, end model.Date, n int) []model.Date {
	if n <= 0 {
		return nil
	}
	out := make([]model.Date, n)
	d := end
	for i := n - 1; i >= 0; {
		d = d.AddDays(-1)
		if cal.IsBusinessDay(d) {
			out[i] = d
			i--
		}
	}
	return out
}

// BusinessDaysAfter returns the n business days strictly after start, ascending.
func BusinessDaysAfter(cal Calendar, start model.Date, n int) []model.Date {
	if n <= 0 {
		return nil
	}
	out := make([]model.Date, 0, n)
	d := start
	for len(out) < n {
		d = d.AddDays(1)
		if cal.IsBusinessDay(d) {
			out = append(out, d)
		}
	}
	return out
}

// IsMarketOpen returns true if t falls within NSE trading hours
// (9:15 AM to 3:30 PM IST on a trading day).
func IsMarketOpen(t time.Time) bool {
	ist := t.In(IST)
	if !(NSE{}).IsBusinessDay(model.DateOf(ist)) {
		return false
	}
	hm := ist.Hour()*60 + ist.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// NextOpen returns the next session open (9:15 AM IST).
// If t is before today's open on a trading day, returns today's open.
func NextOpen(t time.Time) time.Time {
	ist := t.In(IST)
	today := model.DateOf(ist)

	todayOpen := time.Date(ist.Year(), ist.Month(), ist.Day(), OpenHour, OpenMinute, 0, 0, IST)
	if ist.Before(todayOpen) && (NSE{}).IsBusinessDay(today) {
		return todayOpen
	}

	next := BusinessDaysAfter(NSE{}, today, 1)[0]
	return time.Date(next.Year(), next.Month(), next.Day(), OpenHour, OpenMinute, 0, 0, IST)
}

// StatusString returns a human-readable market status for the health endpoint.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		ist := t.In(IST)
		cl := time.Date(ist.Year(), ist.Month(), ist.Day(), CloseHour, CloseMinute, 0, 0, IST)
		return fmt.Sprintf("Market Open, closes in %s", fmtDur(cl.Sub(ist)))
	}
	next := NextOpen(t)
	ist := next.In(IST)
	return fmt.Sprintf("Market Closed, opens %s %s (%s)",
		ist.Weekday().String()[:3], ist.Format("15:04"), fmtDur(next.Sub(t)))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
