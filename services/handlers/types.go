package handlers

import (
	"github.com/satquest-app/satquest_api/dto"
	"github.com/satquest-app/satquest_api/leaderboard"
	"github.com/satquest-app/satquest_api/model"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	CheckUsername(username string) (*dto.UsernameAvailabilityResponse, error)
}

type QuestionServiceInterface interface {
	GetQuestion(questionID string) (*model.Question, error)
	ListQuestions(section, difficulty string, limit, offset int) (*dto.QuestionListResponse, error)
	ToQuestionResponse(question *model.Question, answered bool) dto.QuestionResponse
}

type ProgressServiceInterface interface {
	SubmitPractice(identity string, req dto.PracticeRequest) (*dto.PracticeResultResponse, error)
	GetProgress(identity string) *dto.ProgressResponse
	GetAnsweredQuestions(identity string) *dto.AnsweredQuestionsResponse
	HasAnswered(identity, questionID string) bool
	AddBonusXP(identity string, req dto.BonusXPRequest) *dto.BonusXPResponse
	CollectAchievement(identity, achievementID string) (*dto.CollectAchievementResponse, error)
	FlushSync(identity string)
	ClearProgress(identity string)
	GetPreferences(userID string) (*dto.PreferencesResponse, error)
	UpdatePreferences(userID string, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error)
}

type LeaderboardServiceInterface interface {
	Global(metric string, limit, offset int) (*dto.GlobalLeaderboardResponse, error)
	UserRank(userID, metric string) (*dto.GlobalRankResponse, error)
	Create(ownerID string, req dto.CreateLeaderboardRequest) (*dto.PrivateLeaderboardResponse, error)
	Members(leaderboardID, requestingUserID, metric string) (*dto.PrivateLeaderboardResponse, error)
	ListForUser(userID string) (*dto.LeaderboardListResponse, error)
	AddMember(leaderboardID, username, requestingUserID string) (*leaderboard.Entry, error)
	RemoveMember(leaderboardID, targetUserID, requestingUserID string) error
	Leave(leaderboardID, userID string) error
	TransferOwnership(leaderboardID, newOwnerID, requestingUserID string) error
	Delete(leaderboardID, requestingUserID string) error
}
