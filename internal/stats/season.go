// Package stats computes per-player, season-bucketed battle statistics.
package stats

import (
	"fmt"
	"time"
)

// baseYear anchors season numbering: January of the base year is season 1.
const baseYear = 2016

// SeasonOf maps a calendar date to its season number. Seasons are
// calendar-month aligned and monotonically increasing; no counter is stored
// anywhere.
func SeasonOf(t time.Time) int {
	return (t.Year()-baseYear)*12 + int(t.Month())
}

// SeasonLabel renders a season number as a human label, e.g. "Feb 2026".
func SeasonLabel(season int) string {
	year := baseYear + (season-1)/12
	month := time.Month((season-1)%12 + 1)
	return fmt.Sprintf("%s %d", month.String()[:3], year)
}

// CurrentSeason returns the season number for the current date.
func CurrentSeason() int {
	return SeasonOf(time.Now())
}
