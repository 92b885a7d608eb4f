package markethours

import "time"

// MOEX non-trading days for 2026.
// Source: MOEX trading calendar.
var moexHolidays2026 = []struct {
	month time.Month
	day   int
}{
	{time.January, 1}, // New Year holidays
	{time.January, 2},
	{time.January, 5},
	{time.January, 6},
	{time.January, 7},    // Orthodox Christmas
	{time.February, 23},  // Defender of the Fatherland Day
	{time.March, 9},      // International Women's Day (observed)
	{time.May, 1},        // Spring and Labour Day
	{time.May, 11},       // Victory Day (observed)
	{time.June, 12},      // Russia Day
	{time.November, 4},   // Unity Day
	{time.December, 31},  // New Year's Eve
}

var holidaySet map[string]bool

func init() {
	holidaySet = make(map[string]bool, len(moexHolidays2026))
	for _, h := range moexHolidays2026 {
		key := time.Date(2026, h.month, h.day, 0, 0, 0, 0, MSK).Format("2006-01-02")
		holidaySet[key] = true
	}
}

// IsHoliday reports whether t (in MSK) is an exchange holiday.
// Weekends are handled separately by IsWeekday.
func IsHoliday(t time.Time) bool {
	return holidaySet[t.In(MSK).Format("2006-01-02")]
}
