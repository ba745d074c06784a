package stats

import "fmt"

// StreakStats captures a player's win/loss streaks over their battle
// history. CurrentStreak is positive for an active win streak, negative
// for an active loss streak, zero after a draw.
type StreakStats struct {
	CurrentStreak     int `json:"currentStreak"`
	LongestWinStreak  int `json:"longestWinStreak"`
	LongestLossStreak int `json:"longestLossStreak"`
}

// CalculateStreaks computes streak statistics from battles ordered oldest
// to newest. Draws break both streaks without starting one.
func CalculateStreaks(battles []BattleData) StreakStats {
	var stats StreakStats
	winRun, lossRun := 0, 0

	for _, b := range battles {
		switch b.Outcome {
		case OutcomeWin:
			winRun++
			lossRun = 0
			if winRun > stats.LongestWinStreak {
				stats.LongestWinStreak = winRun
			}
		case OutcomeLoss:
			lossRun++
			winRun = 0
			if lossRun > stats.LongestLossStreak {
				stats.LongestLossStreak = lossRun
			}
		default:
			winRun, lossRun = 0, 0
		}
	}

	switch {
	case winRun > 0:
		stats.CurrentStreak = winRun
	case lossRun > 0:
		stats.CurrentStreak = -lossRun
	}
	return stats
}

// FormatCurrentStreak renders a current streak for display.
func FormatCurrentStreak(streak int) string {
	switch {
	case streak == 0:
		return "No active streak"
	case streak == 1:
		return "1 win streak"
	case streak > 1:
		return fmt.Sprintf("%d win streak", streak)
	case streak == -1:
		return "1 loss streak"
	default:
		return fmt.Sprintf("%d loss streak", -streak)
	}
}
