package markethours

import (
	"testing"
	"time"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

func TestWeekdays(t *testing.T) {
	// 2026-10-19 is a Monday.
	mon := model.NewDate(2026, time.October, 19)
	for i, want := range []bool{true, true, true, true, true, false, false} {
		d := mon.AddDays(i)
		if got := (Weekdays{}).IsBusinessDay(d); got != want {
			t.Errorf("%s (%s): got %v, want %v", d, d.Weekday(), got, want)
		}
	}
}

func TestNSESkipsHolidays(t *testing.T) {
	dussehra := model.NewDate(2026, time.October, 20)
	if (NSE{}).IsBusinessDay(dussehra) {
		t.Errorf("%s should be a holiday", dussehra)
	}
	if !(Weekdays{}).IsBusinessDay(dussehra) {
		t.Errorf("%s is a weekday", dussehra)
	}
	if !IsHoliday(dussehra) {
		t.Errorf("IsHoliday(%s) = false", dussehra)
	}
}

func TestBusinessDaysBefore(t *testing.T) {
	// Monday: the five days before are Mon..Fri of the previous week.
	end := model.NewDate(2026, time.October, 19)
	got := BusinessDaysBefore(Weekdays{}, end, 5)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0].String() != "2026-10-12" || got[4].String() != "2026-10-16" {
		t.Errorf("got %s..%s, want 2026-10-12..2026-10-16", got[0], got[4])
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Before(got[i]) {
			t.Fatalf("not ascending at %d", i)
		}
	}
	if BusinessDaysBefore(Weekdays{}, end, 0) != nil {
		t.Error("n=0 should return nil")
	}
}

func TestBusinessDaysAfter(t *testing.T) {
	// Friday: next business day is Monday.
	fri := model.NewDate(2026, time.October, 16)
	got := BusinessDaysAfter(Weekdays{}, fri, 3)
	want := []string{"2026-10-19", "2026-10-20", "2026-10-21"}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	// The NSE calendar also skips Dussehra.
	got = BusinessDaysAfter(NSE{}, fri, 2)
	if got[1].String() != "2026-10-21" {
		t.Errorf("NSE second day = %s, want 2026-10-21", got[1])
	}
}

func TestToday(t *testing.T) {
	// 20:00 UTC on the 18th is already the 19th in IST.
	now := time.Date(2026, time.October, 18, 20, 0, 0, 0, time.UTC)
	if got := Today(now).String(); got != "2026-10-19" {
		t.Errorf("Today = %s, want 2026-10-19", got)
	}
}

func TestIsMarketOpen(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"mid session", time.Date(2026, time.October, 19, 11, 0, 0, 0, IST), true},
		{"before open", time.Date(2026, time.October, 19, 9, 0, 0, 0, IST), false},
		{"at close", time.Date(2026, time.October, 19, 15, 30, 0, 0, IST), false},
		{"holiday", time.Date(2026, time.October, 20, 11, 0, 0, 0, IST), false},
		{"saturday", time.Date(2026, time.October, 24, 11, 0, 0, 0, IST), false},
	}
	for _, c := range cases {
		if got := IsMarketOpen(c.t); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNextOpen(t *testing.T) {
	// Monday evening: Tuesday is Dussehra, so Wednesday opens next.
	got := NextOpen(time.Date(2026, time.October, 19, 18, 0, 0, 0, IST))
	want := time.Date(2026, time.October, 21, 9, 15, 0, 0, IST)
	if !got.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", got, want)
	}

	early := time.Date(2026, time.October, 19, 8, 0, 0, 0, IST)
	if got := NextOpen(early); !got.Equal(time.Date(2026, time.October, 19, 9, 15, 0, 0, IST)) {
		t.Errorf("NextOpen before open = %v", got)
	}
}
