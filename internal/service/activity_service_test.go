package service

import (
	"testing"
	"time"
)

func TestDayKeyUsesPacificCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skip("Pacific timezone data unavailable")
	}
	s := &ActivityService{loc: loc}

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{
			// 05:00 UTC is still the previous evening in the Pacific zone.
			name: "UTC early morning rolls back a day",
			t:    time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC),
			want: "2026-03-01",
		},
		{
			name: "UTC evening is the same Pacific day",
			t:    time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC),
			want: "2026-03-02",
		},
		{
			name: "local Pacific time passes through",
			t:    time.Date(2026, 7, 4, 12, 0, 0, 0, loc),
			want: "2026-07-04",
		},
	}

	for _, tt := range tests {
		if got := s.DayKey(tt.t); got != tt.want {
			t.Errorf("%s: DayKey = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDailyRedisKey(t *testing.T) {
	if got := dailyRedisKey(7, "2026-03-01", "correct"); got != "daily:7:2026-03-01:correct" {
		t.Errorf("dailyRedisKey = %q", got)
	}
}
