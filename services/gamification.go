package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/satquest-app/satquest_api/dto"
	"github.com/satquest-app/satquest_api/gamification"
	"github.com/satquest-app/satquest_api/model"
	"github.com/satquest-app/satquest_api/shared"
)

// GamificationService owns the progression engine: XP, day streaks and
// achievements. Progress is durable in the local sqlite store and mirrored
// to the hosted profile on a debounced schedule.
type GamificationService struct {
	appContext.DefaultService

	sqliteSvc     *SqliteService
	postgresSvc   *PostgresService
	questionSvc   *QuestionService
	monitoringSvc *MonitoringService

	engine *gamification.Engine
}

const GAMIFICATION_SVC = "gamification_svc"

// AnonymousIdentityPrefix marks identities derived from a device ID rather
// than a registered account.
const AnonymousIdentityPrefix = "device:"

func (svc GamificationService) Id() string {
	return GAMIFICATION_SVC
}

func (svc *GamificationService) Configure(ctx *appContext.Context) error {
	svc.sqliteSvc = ctx.Service(SQLITE_SVC).(*SqliteService)
	svc.postgresSvc = ctx.Service(POSTGRES_SVC).(*PostgresService)
	svc.questionSvc = ctx.Service(QUESTION_SVC).(*QuestionService)
	svc.monitoringSvc = ctx.Service(MONITORING_SVC).(*MonitoringService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *GamificationService) Start() error {
	opts := []gamification.Option{
		gamification.WithSyncObserver(func(identity string, err error) {
			svc.monitoringSvc.RecordSyncResult(err)
			if err != nil {
				log.WithError(err).WithField("identity", identity).Warn("Remote profile sync failed")
			}
		}),
	}

	if raw := os.Getenv("REMOTE_SYNC_DELAY"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			opts = append(opts, gamification.WithSyncDelay(d))
		} else {
			log.WithField("value", raw).Warn("Invalid REMOTE_SYNC_DELAY, using default")
		}
	}

	svc.engine = gamification.New(
		&localProgressStore{sqlite: svc.sqliteSvc},
		&remoteProfileStore{postgres: svc.postgresSvc},
		opts...,
	)
	return nil
}

// Shutdown flushes every pending remote sync before the process exits.
func (svc *GamificationService) Shutdown() {
	if svc.engine != nil {
		svc.engine.FlushAll()
	}
}

func (svc *GamificationService) Engine() *gamification.Engine {
	return svc.engine
}

func (svc *GamificationService) SubmitPractice(identity string, req dto.PracticeRequest) (*dto.PracticeResultResponse, error) {
	question, correct, err := svc.questionSvc.Grade(req.QuestionID, req.Answer)
	if err != nil {
		return nil, err
	}

	res := svc.engine.RecordPractice(identity, correct, question.ID)
	svc.monitoringSvc.RecordPractice(correct, res.XPGained)
	svc.monitoringSvc.RecordAchievementsUnlocked(len(res.NewAchievements))

	p := svc.engine.Progress(identity)
	return &dto.PracticeResultResponse{
		Correct:         correct,
		XPGained:        res.XPGained,
		StreakExtended:  res.StreakExtended,
		DayStreak:       res.NewDayStreak,
		NewAchievements: svc.toAchievementResponses(res.NewAchievements, &p),
	}, nil
}

func (svc *GamificationService) GetProgress(identity string) *dto.ProgressResponse {
	p := svc.engine.Progress(identity)

	achievements := make([]dto.AchievementResponse, 0, len(svc.engine.Definitions()))
	for _, def := range svc.engine.Definitions() {
		resp := dto.AchievementResponse{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			XPReward:    def.XPReward,
			Unlocked:    p.HasAchievement(def.ID),
			Collected:   p.HasCollected(def.ID),
		}
		if at, ok := p.AchievementDates[def.ID]; ok {
			t := at
			resp.UnlockedAt = &t
		}
		achievements = append(achievements, resp)
	}

	return &dto.ProgressResponse{
		Identity:               identity,
		TotalXP:                p.TotalXP,
		DayStreak:              p.DayStreak,
		QuestionsAnswered:      p.QuestionsAnswered,
		CorrectAnswers:         p.CorrectAnswers,
		AnswerStreak:           p.AnswerStreak,
		QuestionsAnsweredToday: p.QuestionsAnsweredToday,
		LastQuestionDate:       p.LastQuestionDate,
		LastValidStreakDate:    p.LastValidStreakDate,
		Achievements:           achievements,
	}
}

func (svc *GamificationService) GetAnsweredQuestions(identity string) *dto.AnsweredQuestionsResponse {
	ids := svc.engine.AnsweredQuestionIDs(identity)
	return &dto.AnsweredQuestionsResponse{QuestionIDs: ids, Total: len(ids)}
}

func (svc *GamificationService) HasAnswered(identity, questionID string) bool {
	return svc.engine.HasAnsweredQuestion(identity, questionID)
}

func (svc *GamificationService) AddBonusXP(identity string, req dto.BonusXPRequest) *dto.BonusXPResponse {
	res := svc.engine.AddBonusXP(identity, req.Amount)
	svc.monitoringSvc.RecordBonusXP(res.XPGained)
	svc.monitoringSvc.RecordAchievementsUnlocked(len(res.NewAchievements))

	p := svc.engine.Progress(identity)
	return &dto.BonusXPResponse{
		XPGained:        res.XPGained,
		TotalXP:         p.TotalXP,
		NewAchievements: svc.toAchievementResponses(res.NewAchievements, &p),
	}
}

func (svc *GamificationService) CollectAchievement(identity, achievementID string) (*dto.CollectAchievementResponse, error) {
	known := false
	for _, def := range svc.engine.Definitions() {
		if def.ID == achievementID {
			known = true
			break
		}
	}
	if !known {
		return nil, shared.NewNotFoundError(errors.New("unknown achievement"), "Achievement not found")
	}

	p := svc.engine.Progress(identity)
	if !p.HasAchievement(achievementID) {
		return nil, shared.NewBadRequestError(errors.New("not unlocked"), "Achievement not unlocked yet")
	}
	if p.HasCollected(achievementID) {
		return nil, shared.NewConflictError(errors.New("already collected"), "Achievement reward already collected")
	}

	res := svc.engine.CollectAchievementXP(identity, achievementID)
	svc.monitoringSvc.RecordAchievementsUnlocked(len(res.NewAchievements))

	p = svc.engine.Progress(identity)
	return &dto.CollectAchievementResponse{
		AchievementID:   achievementID,
		XPGained:        res.XPGained,
		TotalXP:         p.TotalXP,
		NewAchievements: svc.toAchievementResponses(res.NewAchievements, &p),
	}, nil
}

// FlushSync pushes any pending remote profile write immediately. Clients
// call this when the app is backgrounded.
func (svc *GamificationService) FlushSync(identity string) {
	svc.engine.Flush(identity)
}

func (svc *GamificationService) ClearProgress(identity string) {
	svc.engine.Clear(identity)
}

func (svc *GamificationService) GetPreferences(userID string) (*dto.PreferencesResponse, error) {
	profile, err := svc.postgresSvc.profileRepo.GetProfile(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Profile not found")
	}
	return &dto.PreferencesResponse{
		HideFromGlobalLeaderboard: profile.HideFromGlobalLeaderboard,
		AllowLeaderboardInvites:   profile.AllowLeaderboardInvites,
	}, nil
}

func (svc *GamificationService) UpdatePreferences(userID string, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	updates := map[string]interface{}{}
	if req.HideFromGlobalLeaderboard != nil {
		updates["hide_from_global_leaderboard"] = *req.HideFromGlobalLeaderboard
	}
	if req.AllowLeaderboardInvites != nil {
		updates["allow_leaderboard_invites"] = *req.AllowLeaderboardInvites
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := svc.postgresSvc.profileRepo.UpdatePreferences(userID, updates); err != nil {
			return nil, svc.postgresSvc.HandleError(err)
		}
	}

	return svc.GetPreferences(userID)
}

func (svc *GamificationService) toAchievementResponses(defs []gamification.Definition, p *gamification.Progress) []dto.AchievementResponse {
	out := make([]dto.AchievementResponse, 0, len(defs))
	for _, def := range defs {
		resp := dto.AchievementResponse{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			XPReward:    def.XPReward,
			Unlocked:    true,
			Collected:   p.HasCollected(def.ID),
		}
		if at, ok := p.AchievementDates[def.ID]; ok {
			t := at
			resp.UnlockedAt = &t
		}
		out = append(out, resp)
	}
	return out
}

// localProgressStore adapts the sqlite service to the engine's local store
// port, serializing each snapshot with sonic.
type localProgressStore struct {
	sqlite *SqliteService
}

func (s *localProgressStore) Get(identity string) (*gamification.Progress, error) {
	row, err := s.sqlite.GetLocalProgress(identity)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	var p gamification.Progress
	if err := sonic.Unmarshal(row.Snapshot, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *localProgressStore) Set(identity string, p *gamification.Progress) error {
	raw, err := sonic.Marshal(p)
	if err != nil {
		return err
	}
	return s.sqlite.SetLocalProgress(identity, json.RawMessage(raw))
}

func (s *localProgressStore) Clear(identity string) error {
	return s.sqlite.ClearLocalProgress(identity)
}

// remoteProfileStore adapts the hosted profile table to the engine's remote
// store port. Upserts only touch the synced progress columns, so username
// and preference edits are never clobbered by a sync.
type remoteProfileStore struct {
	postgres *PostgresService
}

func (s *remoteProfileStore) UpsertProfile(_ context.Context, snap gamification.ProfileSnapshot) error {
	syncedAt := snap.SyncedAt
	profile := &model.Profile{
		UserID:            snap.Identity,
		TotalXP:           snap.TotalXP,
		DayStreak:         snap.DayStreak,
		QuestionsAnswered: snap.QuestionsAnswered,
		CorrectAnswers:    snap.CorrectAnswers,
		IsAnonymous:       strings.HasPrefix(snap.Identity, AnonymousIdentityPrefix),
		LastSyncedAt:      &syncedAt,
	}
	return s.postgres.profileRepo.UpsertProgress(profile)
}
