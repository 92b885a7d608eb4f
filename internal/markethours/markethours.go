// Package markethours answers "is the exchange open" without a broker round
// trip. It covers the MOEX main equities session and doubles as the trading
// calendar for dry runs and the candle simulator.
package markethours

import (
	"fmt"
	"time"
)

// MSK is Moscow time (UTC+3, no DST since 2014).
var MSK = time.FixedZone("MSK", 3*3600)

// Main session hours in MSK.
const (
	OpenHour    = 10
	OpenMinute  = 0
	CloseHour   = 18
	CloseMinute = 45
)

// IsMarketOpen reports whether t falls within the MOEX main session
// (10:00 – 18:45 MSK, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	msk := t.In(MSK)
	if !IsTradingDay(msk) {
		return false
	}
	hm := msk.Hour()*60 + msk.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsWeekday reports whether t is Mon–Fri in MSK.
func IsWeekday(t time.Time) bool {
	wd := t.In(MSK).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay reports whether t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	msk := t.In(MSK)
	return IsWeekday(msk) && !IsHoliday(msk)
}

// NextOpen returns the next session open. If t is before today's open on a
// trading day, that open is returned.
func NextOpen(t time.Time) time.Time {
	msk := t.In(MSK)

	todayOpen := time.Date(msk.Year(), msk.Month(), msk.Day(), OpenHour, OpenMinute, 0, 0, MSK)
	if msk.Before(todayOpen) && IsTradingDay(msk) {
		return todayOpen
	}

	d := msk.AddDate(0, 0, 1)
	for i := 0; i < 14; i++ {
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), OpenHour, OpenMinute, 0, 0, MSK)
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(msk.Year(), msk.Month(), msk.Day()+1, OpenHour, OpenMinute, 0, 0, MSK)
}

// TodayClose returns today's session close in MSK.
func TodayClose(t time.Time) time.Time {
	msk := t.In(MSK)
	return time.Date(msk.Year(), msk.Month(), msk.Day(), CloseHour, CloseMinute, 0, 0, MSK)
}

// TimeUntilClose returns the duration until today's close, 0 if already past.
func TimeUntilClose(t time.Time) time.Duration {
	d := TodayClose(t).Sub(t.In(MSK))
	if d < 0 {
		return 0
	}
	return d
}

// TimeUntilOpen returns the duration until the next session open.
func TimeUntilOpen(t time.Time) time.Duration {
	return NextOpen(t).Sub(t.In(MSK))
}

// StatusString returns a human-readable market status for logs.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		return fmt.Sprintf("market open, closes in %s", fmtDur(TimeUntilClose(t)))
	}
	next := NextOpen(t)
	msk := next.In(MSK)
	return fmt.Sprintf("market closed, opens %s %s (%s)",
		msk.Weekday().String()[:3], msk.Format("15:04"), fmtDur(next.Sub(t)))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
