package model

import "time"

// PrivateLeaderboard is an invite-only ranked group. The owner is always
// also a member; membership rows are unique per (leaderboard, user).
type PrivateLeaderboard struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	OwnerID     string    `json:"owner_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	MaxMembers  int       `json:"max_members" gorm:"default:50"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LeaderboardMember struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	LeaderboardID string    `json:"leaderboard_id" gorm:"not null;uniqueIndex:idx_board_user"`
	UserID        string    `json:"user_id" gorm:"not null;uniqueIndex:idx_board_user"`
	JoinedAt      time.Time `json:"joined_at" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}
