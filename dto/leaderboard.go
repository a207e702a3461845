package dto

import (
	"time"

	"github.com/satquest-app/satquest_api/leaderboard"
)

type CreateLeaderboardRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=50" example:"Study Squad"`
	Description string `json:"description" validate:"max=200" example:"Prep group for the October test"`
	MaxMembers  int    `json:"max_members" validate:"gte=0,lte=50" example:"20"`
}

func (c CreateLeaderboardRequest) Validate() error {
	return GetValidator().Struct(c)
}

type AddMemberRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30" example:"satgrinder"`
}

func (a AddMemberRequest) Validate() error {
	return GetValidator().Struct(a)
}

type TransferOwnershipRequest struct {
	NewOwnerID string `json:"new_owner_id" validate:"required" example:"user_abc"`
}

func (t TransferOwnershipRequest) Validate() error {
	return GetValidator().Struct(t)
}

type GlobalLeaderboardResponse struct {
	Metric  string              `json:"metric"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
	Entries []leaderboard.Entry `json:"entries"`
}

type GlobalRankResponse struct {
	Metric string `json:"metric"`
	leaderboard.RankView
}

type PrivateLeaderboardResponse struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"owner_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	MaxMembers  int                 `json:"max_members"`
	MemberCount int                 `json:"member_count"`
	CreatedAt   time.Time           `json:"created_at"`
	Members     []leaderboard.Entry `json:"members,omitempty"`
}

type LeaderboardListResponse struct {
	Leaderboards []PrivateLeaderboardResponse `json:"leaderboards"`
	Total        int                          `json:"total"`
}
