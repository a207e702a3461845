package model

import "time"

// Profile is the hosted progress row, one per identity. Row writes are
// idempotent upserts keyed by UserID so the debounced sync can retry safely.
type Profile struct {
	UserID                    string     `json:"user_id" gorm:"primaryKey"`
	Username                  string     `json:"username" gorm:"index"`
	TotalXP                   int        `json:"total_xp" gorm:"default:0;index"`
	DayStreak                 int        `json:"day_streak" gorm:"default:0;index"`
	QuestionsAnswered         int        `json:"questions_answered" gorm:"default:0"`
	CorrectAnswers            int        `json:"correct_answers" gorm:"default:0"`
	IsAnonymous               bool       `json:"is_anonymous" gorm:"default:false"`
	HideFromGlobalLeaderboard bool       `json:"hide_from_global_leaderboard" gorm:"default:false"`
	AllowLeaderboardInvites   bool       `json:"allow_leaderboard_invites" gorm:"default:true"`
	LastSyncedAt              *time.Time `json:"last_synced_at"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}
