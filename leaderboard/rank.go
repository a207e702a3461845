package leaderboard

import (
	"math/rand"
	"sort"
)

// rankRows orders rows by the metric descending and assigns 1-based ranks
// starting at firstRank. Ties are broken by a random ordering drawn per
// request: repeated requests over identical data may reorder tied users.
func rankRows(rows []Row, metric Metric, firstRank int, rng *rand.Rand) []Entry {
	shuffled := make([]Row, len(rows))
	copy(shuffled, rows)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	// Stable sort over the shuffled slice keeps the random order inside
	// each tie group.
	sort.SliceStable(shuffled, func(i, j int) bool {
		return metric.score(shuffled[i]) > metric.score(shuffled[j])
	})

	entries := make([]Entry, len(shuffled))
	for i, r := range shuffled {
		entries[i] = Entry{
			UserID:    r.UserID,
			Username:  r.Username,
			TotalXP:   r.TotalXP,
			DayStreak: r.DayStreak,
			Rank:      firstRank + i,
		}
	}
	return entries
}
