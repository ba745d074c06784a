package stats

import (
	"testing"
	"time"
)

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2016, 1, 15, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2016, 12, 31, 23, 59, 59, 0, time.UTC), 12},
		{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 13},
		{time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC), 122},
	}

	for _, tt := range tests {
		if got := SeasonOf(tt.date); got != tt.want {
			t.Errorf("SeasonOf(%s) = %d, want %d", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestSeasonOf_Monotonic(t *testing.T) {
	prev := 0
	date := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		season := SeasonOf(date)
		if season <= prev {
			t.Fatalf("season not monotonic at %s: %d after %d", date.Format("2006-01"), season, prev)
		}
		prev = season
		date = date.AddDate(0, 1, 0)
	}
}

func TestSeasonLabel(t *testing.T) {
	tests := []struct {
		season int
		want   string
	}{
		{1, "Jan 2016"},
		{12, "Dec 2016"},
		{13, "Jan 2017"},
		{122, "Feb 2026"},
	}

	for _, tt := range tests {
		if got := SeasonLabel(tt.season); got != tt.want {
			t.Errorf("SeasonLabel(%d) = %q, want %q", tt.season, got, tt.want)
		}
	}
}

func TestSeasonLabel_RoundTrip(t *testing.T) {
	date := time.Date(2020, 7, 4, 0, 0, 0, 0, time.UTC)
	if got := SeasonLabel(SeasonOf(date)); got != "Jul 2020" {
		t.Errorf("round trip = %q, want Jul 2020", got)
	}
}
