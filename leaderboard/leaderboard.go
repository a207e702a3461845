// Package leaderboard holds the ranking and membership policy for global
// and private leaderboards. All fetching and storage goes through the
// Store port; this package decides ordering, visibility and who may do
// what to a private leaderboard.
package leaderboard

import "time"

type Metric string

const (
	MetricXP     Metric = "xp"
	MetricStreak Metric = "streak"
)

// MaxMembers is the hard cap on private leaderboard membership.
const MaxMembers = 50

// Row is a profile as fetched from the remote store.
type Row struct {
	UserID       string
	Username     string
	TotalXP      int
	DayStreak    int
	Hidden       bool
	AllowInvites bool
}

// Entry is a ranked leaderboard line.
type Entry struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	TotalXP   int    `json:"total_xp"`
	DayStreak int    `json:"day_streak"`
	Rank      int    `json:"rank"`
}

// Board mirrors the stored private leaderboard row.
type Board struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	MaxMembers  int
	CreatedAt   time.Time
}

// RankView is the "you are here" answer for the global leaderboard.
// Ranked is false when the user opted out of the global board or has no
// username yet.
type RankView struct {
	Ranked      bool    `json:"ranked"`
	Rank        int     `json:"rank,omitempty"`
	Surrounding []Entry `json:"surrounding,omitempty"`
}

// Store is the narrow collaborator surface over the remote store. Visible*
// methods exclude hidden profiles and profiles without a username; member
// and board methods apply no visibility filtering since private membership
// is its own visibility boundary.
type Store interface {
	VisibleProfiles(metric Metric, limit, offset int) ([]Row, error)
	VisibleCountAbove(metric Metric, score int) (int, error)
	Profile(userID string) (*Row, error)
	ProfileByUsername(username string) (*Row, error)

	Board(leaderboardID string) (*Board, error)
	BoardsForUser(userID string) ([]Board, error)
	MemberRows(leaderboardID string) ([]Row, error)
	MemberCount(leaderboardID string) (int, error)
	IsMember(leaderboardID, userID string) (bool, error)

	CreateBoard(b *Board, ownerID string) error
	AddMember(leaderboardID, userID string) error
	RemoveMember(leaderboardID, userID string) error
	SetOwner(leaderboardID, userID string) error
	DeleteBoard(leaderboardID string) error
}

func (m Metric) score(r Row) int {
	if m == MetricStreak {
		return r.DayStreak
	}
	return r.TotalXP
}

// ParseMetric normalizes a query value, defaulting to XP.
func ParseMetric(s string) Metric {
	if Metric(s) == MetricStreak {
		return MetricStreak
	}
	return MetricXP
}
