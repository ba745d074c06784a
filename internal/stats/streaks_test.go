package stats

import "testing"

func outcomes(results ...string) []BattleData {
	battles := make([]BattleData, len(results))
	for i, r := range results {
		battles[i] = BattleData{Outcome: r}
	}
	return battles
}

func TestCalculateStreaks(t *testing.T) {
	tests := []struct {
		name            string
		battles         []BattleData
		wantCurrent     int
		wantLongestWin  int
		wantLongestLoss int
	}{
		{
			name:    "empty history",
			battles: nil,
		},
		{
			name:           "single win",
			battles:        outcomes(OutcomeWin),
			wantCurrent:    1,
			wantLongestWin: 1,
		},
		{
			name:            "single loss",
			battles:         outcomes(OutcomeLoss),
			wantCurrent:     -1,
			wantLongestLoss: 1,
		},
		{
			name:            "win streak broken by loss",
			battles:         outcomes(OutcomeWin, OutcomeWin, OutcomeWin, OutcomeLoss),
			wantCurrent:     -1,
			wantLongestWin:  3,
			wantLongestLoss: 1,
		},
		{
			name:            "active win streak after losses",
			battles:         outcomes(OutcomeLoss, OutcomeLoss, OutcomeWin, OutcomeWin),
			wantCurrent:     2,
			wantLongestWin:  2,
			wantLongestLoss: 2,
		},
		{
			name:            "draw breaks both streaks",
			battles:         outcomes(OutcomeWin, OutcomeWin, OutcomeDraw),
			wantCurrent:     0,
			wantLongestWin:  2,
			wantLongestLoss: 0,
		},
		{
			name:            "longest runs in the middle",
			battles:         outcomes(OutcomeWin, OutcomeLoss, OutcomeLoss, OutcomeLoss, OutcomeWin, OutcomeWin, OutcomeLoss),
			wantCurrent:     -1,
			wantLongestWin:  2,
			wantLongestLoss: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateStreaks(tt.battles)
			if got.CurrentStreak != tt.wantCurrent {
				t.Errorf("CurrentStreak = %d, want %d", got.CurrentStreak, tt.wantCurrent)
			}
			if got.LongestWinStreak != tt.wantLongestWin {
				t.Errorf("LongestWinStreak = %d, want %d", got.LongestWinStreak, tt.wantLongestWin)
			}
			if got.LongestLossStreak != tt.wantLongestLoss {
				t.Errorf("LongestLossStreak = %d, want %d", got.LongestLossStreak, tt.wantLongestLoss)
			}
		})
	}
}

func TestFormatCurrentStreak(t *testing.T) {
	tests := []struct {
		streak int
		want   string
	}{
		{0, "No active streak"},
		{1, "1 win streak"},
		{5, "5 win streak"},
		{-1, "1 loss streak"},
		{-4, "4 loss streak"},
	}
	for _, tt := range tests {
		if got := FormatCurrentStreak(tt.streak); got != tt.want {
			t.Errorf("FormatCurrentStreak(%d) = %q, want %q", tt.streak, got, tt.want)
		}
	}
}
