package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Catalog() {
		assert.False(t, seen[def.ID], "duplicate achievement id %s", def.ID)
		seen[def.ID] = true
		assert.NotEmpty(t, def.Name)
		assert.NotNil(t, def.Predicate)
	}
}

func TestCatalogPredicates(t *testing.T) {
	byID := map[string]Definition{}
	for _, def := range Catalog() {
		byID[def.ID] = def
	}

	cases := []struct {
		id       string
		progress Progress
		unlocked bool
	}{
		{"first_question", Progress{QuestionsAnswered: 1}, true},
		{"first_question", Progress{}, false},
		{"correct_10", Progress{CorrectAnswers: 10}, true},
		{"correct_10", Progress{CorrectAnswers: 9}, false},
		{"correct_50", Progress{CorrectAnswers: 50}, true},
		{"answer_streak_10", Progress{AnswerStreak: 10}, true},
		{"answer_streak_10", Progress{AnswerStreak: 9}, false},
		{"first_streak_day", Progress{DayStreak: 1}, true},
		{"week_streak", Progress{DayStreak: 7}, true},
		{"week_streak", Progress{DayStreak: 6}, false},
		{"month_streak", Progress{DayStreak: 30}, true},
		{"xp_1000", Progress{TotalXP: 1000}, true},
		{"xp_1000", Progress{TotalXP: 999}, false},
		{"xp_5000", Progress{TotalXP: 5000}, true},
		{"questions_100", Progress{QuestionsAnswered: 100}, true},
	}

	for _, tc := range cases {
		def, ok := byID[tc.id]
		require.True(t, ok, "unknown achievement %s", tc.id)
		p := tc.progress
		assert.Equal(t, tc.unlocked, def.Predicate(&p), "%s with %+v", tc.id, tc.progress)
	}
}
