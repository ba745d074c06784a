package deck

import "testing"

func TestClassifyArchetype(t *testing.T) {
	tests := []struct {
		name  string
		cards []string
		want  string
	}{
		{
			name:  "golem beatdown",
			cards: []string{"Golem", "Night Witch", "Baby Dragon", "Lumberjack", "Tornado", "Lightning", "Mega Minion", "Elixir Collector"},
			want:  "Beatdown",
		},
		{
			name:  "hog cycle",
			cards: []string{"Hog Rider", "Ice Spirit", "Skeletons", "Cannon", "Musketeer", "Ice Golem", "Fireball", "The Log"},
			want:  "Cycle",
		},
		{
			name:  "xbow siege",
			cards: []string{"X-Bow", "Tesla", "Archers", "Knight", "Ice Spirit", "Skeletons", "Fireball", "The Log"},
			want:  "Siege",
		},
		{
			name:  "log bait",
			cards: []string{"Goblin Barrel", "Princess", "Goblin Gang", "Knight", "Inferno Tower", "Rocket", "Ice Spirit", "The Log"},
			want:  "Bait",
		},
		{
			name:  "no win condition",
			cards: []string{"Knight", "Archers", "Arrows", "Zap", "Tesla", "Musketeer", "Skeletons", "Ice Spirit"},
			want:  DefaultArchetype,
		},
		{
			name:  "priority order prefers earlier rule",
			cards: []string{"Golem", "Hog Rider"},
			want:  "Beatdown",
		},
		{
			name:  "case insensitive",
			cards: []string{"GRAVEYARD"},
			want:  "Graveyard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyArchetype(tt.cards); got != tt.want {
				t.Errorf("ClassifyArchetype() = %q, want %q", got, tt.want)
			}
		})
	}
}
