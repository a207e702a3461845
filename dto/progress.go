package dto

import "time"

// Practice DTOs
type PracticeRequest struct {
	QuestionID string `json:"question_id" validate:"required" example:"q_math_0042"`
	Answer     string `json:"answer" validate:"required" example:"B"`
}

func (p PracticeRequest) Validate() error {
	return GetValidator().Struct(p)
}

type PracticeResultResponse struct {
	Correct         bool                  `json:"correct"`
	XPGained        int                   `json:"xp_gained"`
	StreakExtended  bool                  `json:"streak_extended"`
	DayStreak       int                   `json:"day_streak"`
	NewAchievements []AchievementResponse `json:"new_achievements"`
}

// Progress DTOs
type ProgressResponse struct {
	Identity               string                `json:"identity"`
	TotalXP                int                   `json:"total_xp"`
	DayStreak              int                   `json:"day_streak"`
	QuestionsAnswered      int                   `json:"questions_answered"`
	CorrectAnswers         int                   `json:"correct_answers"`
	AnswerStreak           int                   `json:"answer_streak"`
	QuestionsAnsweredToday int                   `json:"questions_answered_today"`
	LastQuestionDate       *time.Time            `json:"last_question_date"`
	LastValidStreakDate    *time.Time            `json:"last_valid_streak_date"`
	Achievements           []AchievementResponse `json:"achievements"`
}

type AchievementResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	XPReward    int        `json:"xp_reward"`
	Unlocked    bool       `json:"unlocked"`
	Collected   bool       `json:"collected"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

type AnsweredQuestionsResponse struct {
	QuestionIDs []string `json:"question_ids"`
	Total       int      `json:"total"`
}

type BonusXPRequest struct {
	Amount int    `json:"amount" validate:"required,gt=0,lte=1000" example:"25"`
	Source string `json:"source,omitempty" example:"streak_celebration"`
}

func (b BonusXPRequest) Validate() error {
	return GetValidator().Struct(b)
}

type BonusXPResponse struct {
	XPGained        int                   `json:"xp_gained"`
	TotalXP         int                   `json:"total_xp"`
	NewAchievements []AchievementResponse `json:"new_achievements"`
}

type CollectAchievementResponse struct {
	AchievementID   string                `json:"achievement_id"`
	XPGained        int                   `json:"xp_gained"`
	TotalXP         int                   `json:"total_xp"`
	NewAchievements []AchievementResponse `json:"new_achievements"`
}

// Preference DTOs
type UpdatePreferencesRequest struct {
	HideFromGlobalLeaderboard *bool `json:"hide_from_global_leaderboard,omitempty"`
	AllowLeaderboardInvites   *bool `json:"allow_leaderboard_invites,omitempty"`
}

type PreferencesResponse struct {
	HideFromGlobalLeaderboard bool `json:"hide_from_global_leaderboard"`
	AllowLeaderboardInvites   bool `json:"allow_leaderboard_invites"`
}
