package tutor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute_Enumeration(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{"A0", NodeScaffold},
		{"A1", NodeScaffold},
		{"A2", NodeAnalyze},
		{"B1", NodeAnalyze},
		{"", NodeAnalyze},
		{"a0", NodeAnalyze},
		{"a1", NodeAnalyze},
		{" A0", NodeAnalyze},
		{"A0 ", NodeAnalyze},
		{"B2", NodeAnalyze},
		{"C1", NodeAnalyze},
		{"C2", NodeAnalyze},
		{"A", NodeAnalyze},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, Route(testCtx(), State{Level: tt.level}))
		})
	}
}

func TestRoute_Pure(t *testing.T) {
	s := State{
		Messages: []Message{Human("Hola"), AI("¡Hola!")},
		Level:    LevelA1,
		Language: LanguageSpanish,
	}
	before := Merge(State{}, Update{}.AppendMessages(s.Messages...).SetLevel(s.Level).SetLanguage(s.Language))

	first := Route(testCtx(), s)
	second := Route(testCtx(), s)

	assert.Equal(t, first, second)
	assert.Equal(t, before.Messages, s.Messages)
	assert.Equal(t, before.Level, s.Level)
}

func FuzzRoute(f *testing.F) {
	for _, seed := range []string{"A0", "A1", "A2", "B1", "", "a0", "B2", "C1", "A0\x00"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, level string) {
		got := Route(testCtx(), State{Level: Level(level)})

		want := NodeAnalyze
		if level == "A0" || level == "A1" {
			want = NodeScaffold
		}
		if got != want {
			t.Fatalf("Route(%q) = %q, want %q", level, got, want)
		}
	})
}
