package markethours

import (
	"testing"
	"time"
)

func msk(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, MSK)
}

func TestIsMarketOpen(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"mid-session weekday", msk(2026, time.March, 3, 12, 30), true},
		{"at open", msk(2026, time.March, 3, 10, 0), true},
		{"just before open", msk(2026, time.March, 3, 9, 59), false},
		{"at close", msk(2026, time.March, 3, 18, 45), false},
		{"just before close", msk(2026, time.March, 3, 18, 44), true},
		{"saturday", msk(2026, time.March, 7, 12, 0), false},
		{"sunday", msk(2026, time.March, 8, 12, 0), false},
		{"russia day holiday", msk(2026, time.June, 12, 12, 0), false},
		{"new year holiday", msk(2026, time.January, 5, 12, 0), false},
	}
	for _, tc := range cases {
		if got := IsMarketOpen(tc.t); got != tc.want {
			t.Errorf("%s: IsMarketOpen(%v) = %v, want %v", tc.name, tc.t, got, tc.want)
		}
	}
}

func TestIsMarketOpen_ConvertsZones(t *testing.T) {
	// 08:00 UTC on a trading day is 11:00 MSK.
	utc := time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC)
	if !IsMarketOpen(utc) {
		t.Error("expected open for 11:00 MSK given in UTC")
	}
}

func TestNextOpen(t *testing.T) {
	// Before today's open on a trading day: today's open.
	got := NextOpen(msk(2026, time.March, 3, 8, 0))
	if want := msk(2026, time.March, 3, 10, 0); !got.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", got, want)
	}

	// Friday evening rolls past the weekend and the observed Women's Day
	// holiday on Monday March 9.
	got = NextOpen(msk(2026, time.March, 6, 20, 0))
	if want := msk(2026, time.March, 10, 10, 0); !got.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", got, want)
	}
}

func TestNextOpen_SkipsNewYearBreak(t *testing.T) {
	// After close on the last session of 2025's calendar week around the
	// 2026 New Year holidays, the next open skips Jan 1-2 and 5-7.
	got := NextOpen(msk(2026, time.January, 1, 12, 0))
	if want := msk(2026, time.January, 8, 10, 0); !got.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", got, want)
	}
}

func TestTimeUntilClose(t *testing.T) {
	d := TimeUntilClose(msk(2026, time.March, 3, 18, 0))
	if d != 45*time.Minute {
		t.Errorf("expected 45m, got %v", d)
	}
	if d := TimeUntilClose(msk(2026, time.March, 3, 19, 0)); d != 0 {
		t.Errorf("expected 0 after close, got %v", d)
	}
}
