package leaderboard

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestRankRowsOrdersByXPDescending(t *testing.T) {
	rows := []Row{
		{UserID: "u1", Username: "alice", TotalXP: 100},
		{UserID: "u2", Username: "bob", TotalXP: 300},
		{UserID: "u3", Username: "carol", TotalXP: 200},
	}

	entries := rankRows(rows, MetricXP, 1, testRng())

	require.Len(t, entries, 3)
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, "u3", entries[1].UserID)
	assert.Equal(t, "u1", entries[2].UserID)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRankRowsUsesStreakMetric(t *testing.T) {
	rows := []Row{
		{UserID: "u1", TotalXP: 999, DayStreak: 1},
		{UserID: "u2", TotalXP: 1, DayStreak: 9},
	}

	entries := rankRows(rows, MetricStreak, 1, testRng())

	require.Len(t, entries, 2)
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, "u1", entries[1].UserID)
}

func TestRankRowsFirstRankOffset(t *testing.T) {
	rows := []Row{
		{UserID: "u1", TotalXP: 50},
		{UserID: "u2", TotalXP: 40},
	}

	entries := rankRows(rows, MetricXP, 11, testRng())

	require.Len(t, entries, 2)
	assert.Equal(t, 11, entries[0].Rank)
	assert.Equal(t, 12, entries[1].Rank)
}

func TestRankRowsTiesGetDistinctRanks(t *testing.T) {
	rows := []Row{
		{UserID: "u1", TotalXP: 100},
		{UserID: "u2", TotalXP: 100},
		{UserID: "u3", TotalXP: 100},
	}

	entries := rankRows(rows, MetricXP, 1, testRng())

	require.Len(t, entries, 3)
	seen := map[string]bool{}
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
		seen[e.UserID] = true
	}
	assert.Len(t, seen, 3)
}

func TestRankRowsTieBreakIsSeedDetermined(t *testing.T) {
	rows := []Row{
		{UserID: "u1", TotalXP: 100},
		{UserID: "u2", TotalXP: 100},
		{UserID: "u3", TotalXP: 100},
		{UserID: "u4", TotalXP: 100},
	}

	first := rankRows(rows, MetricXP, 1, rand.New(rand.NewSource(7)))
	second := rankRows(rows, MetricXP, 1, rand.New(rand.NewSource(7)))
	assert.Equal(t, first, second)
}

func TestRankRowsDoesNotMutateInput(t *testing.T) {
	rows := []Row{
		{UserID: "u1", TotalXP: 10},
		{UserID: "u2", TotalXP: 20},
	}

	rankRows(rows, MetricXP, 1, testRng())

	assert.Equal(t, "u1", rows[0].UserID)
	assert.Equal(t, "u2", rows[1].UserID)
}

func TestParseMetric(t *testing.T) {
	assert.Equal(t, MetricStreak, ParseMetric("streak"))
	assert.Equal(t, MetricXP, ParseMetric("xp"))
	assert.Equal(t, MetricXP, ParseMetric(""))
	assert.Equal(t, MetricXP, ParseMetric("bogus"))
}
