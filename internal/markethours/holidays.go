package markethours

import (
	"time"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

// NSE trading holidays. Tentative dates follow the exchange circular
// and are replaced when the final list is published.
var nseHolidays = []model.Date{
	model.NewDate(2025, time.February, 26), // Mahashivratri
	model.NewDate(2025, time.March, 14),    // Holi
	model.NewDate(2025, time.March, 31),    // Id-ul-Fitr
	model.NewDate(2025, time.April, 10),    // Mahavir Jayanti
	model.NewDate(2025, time.April, 14),    // Dr. Ambedkar Jayanti
	model.NewDate(2025, time.April, 18),    // Good Friday
	model.NewDate(2025, time.May, 1),       // Maharashtra Day
	model.NewDate(2025, time.August, 15),   // Independence Day
	model.NewDate(2025, time.August, 27),   // Ganesh Chaturthi
	model.NewDate(2025, time.October, 2),   // Mahatma Gandhi Jayanti
	model.NewDate(2025, time.October, 21),  // Diwali Laxmi Pujan
	model.NewDate(2025, time.October, 22),  // Balipratipada
	model.NewDate(2025, time.November, 5),  // Guru Nanak Jayanti
	model.NewDate(2025, time.December, 25), // Christmas

	model.NewDate(2026, time.January, 26),  // Republic Day
	model.NewDate(2026, time.February, 17), // Mahashivratri (tentative)
	model.NewDate(2026, time.March, 14),    // Holi
	model.NewDate(2026, time.March, 31),    // Id-ul-Fitr (tentative)
	model.NewDate(2026, time.April, 2),     // Ram Navami (tentative)
	model.NewDate(2026, time.April, 6),     // Mahavir Jayanti
	model.NewDate(2026, time.April, 10),    // Good Friday
	model.NewDate(2026, time.April, 14),    // Dr. Ambedkar Jayanti
	model.NewDate(2026, time.May, 1),       // Maharashtra Day
	model.NewDate(2026, time.August, 15),   // Independence Day
	model.NewDate(2026, time.October, 2),   // Mahatma Gandhi Jayanti
	model.NewDate(2026, time.October, 20),  // Dussehra
	model.NewDate(2026, time.November, 6),  // Diwali Balipratipada (tentative)
	model.NewDate(2026, time.November, 19), // Guru Nanak Jayanti
	model.NewDate(2026, time.December, 25), // Christmas
}

var holidaySet = func() map[model.Date]bool {
	m := make(map[model.Date]bool, len(nseHolidays))
	for _, d := range nseHolidays {
		m[d] = true
	}
	return m
}()

// IsHoliday reports whether d is an NSE trading holiday.
func IsHoliday(d model.Date) bool {
	return holidaySet[d]
}
