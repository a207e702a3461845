package services

import (
	"errors"
	"strings"

	appContext "github.com/alphabatem/common/context"

	"github.com/satquest-app/satquest_api/dto"
	"github.com/satquest-app/satquest_api/leaderboard"
	"github.com/satquest-app/satquest_api/model"
	"github.com/satquest-app/satquest_api/shared"
)

// LeaderboardService exposes the global and private leaderboards. Ranking
// and membership policy live in the leaderboard package; this service wires
// that policy to the hosted store and maps results to transport DTOs.
type LeaderboardService struct {
	appContext.DefaultService

	postgresSvc *PostgresService

	ranker *leaderboard.Service
}

const LEADERBOARD_SVC = "leaderboard_svc"

func (svc LeaderboardService) Id() string {
	return LEADERBOARD_SVC
}

func (svc *LeaderboardService) Configure(ctx *appContext.Context) error {
	svc.postgresSvc = ctx.Service(POSTGRES_SVC).(*PostgresService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *LeaderboardService) Start() error {
	svc.ranker = leaderboard.NewService(&leaderboardStore{postgres: svc.postgresSvc})
	return nil
}

func (svc *LeaderboardService) Global(metric string, limit, offset int) (*dto.GlobalLeaderboardResponse, error) {
	m := leaderboard.ParseMetric(metric)
	entries, err := svc.ranker.Global(m, limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.GlobalLeaderboardResponse{
		Metric:  string(m),
		Limit:   limit,
		Offset:  offset,
		Entries: entries,
	}, nil
}

func (svc *LeaderboardService) UserRank(userID, metric string) (*dto.GlobalRankResponse, error) {
	m := leaderboard.ParseMetric(metric)
	view, err := svc.ranker.UserRank(userID, m)
	if err != nil {
		return nil, err
	}
	return &dto.GlobalRankResponse{Metric: string(m), RankView: *view}, nil
}

func (svc *LeaderboardService) Create(ownerID string, req dto.CreateLeaderboardRequest) (*dto.PrivateLeaderboardResponse, error) {
	board, err := svc.ranker.Create(ownerID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description), req.MaxMembers)
	if err != nil {
		return nil, err
	}
	return &dto.PrivateLeaderboardResponse{
		ID:          board.ID,
		OwnerID:     board.OwnerID,
		Name:        board.Name,
		Description: board.Description,
		MaxMembers:  board.MaxMembers,
		MemberCount: 1,
		CreatedAt:   board.CreatedAt,
	}, nil
}

// Members returns the board with its ranked member list. Only members may
// view a private leaderboard.
func (svc *LeaderboardService) Members(leaderboardID, requestingUserID, metric string) (*dto.PrivateLeaderboardResponse, error) {
	isMember, err := svc.postgresSvc.leaderboardRepo.IsMember(leaderboardID, requestingUserID)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}
	if !isMember {
		return nil, shared.NewForbiddenError(errors.New("not a member"), "Only members can view this leaderboard")
	}

	board, entries, err := svc.ranker.Members(leaderboardID, leaderboard.ParseMetric(metric))
	if err != nil {
		return nil, err
	}

	return &dto.PrivateLeaderboardResponse{
		ID:          board.ID,
		OwnerID:     board.OwnerID,
		Name:        board.Name,
		Description: board.Description,
		MaxMembers:  board.MaxMembers,
		MemberCount: len(entries),
		CreatedAt:   board.CreatedAt,
		Members:     entries,
	}, nil
}

func (svc *LeaderboardService) ListForUser(userID string) (*dto.LeaderboardListResponse, error) {
	boards, err := svc.ranker.BoardsFor(userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.LeaderboardListResponse{
		Leaderboards: make([]dto.PrivateLeaderboardResponse, 0, len(boards)),
		Total:        len(boards),
	}
	for _, board := range boards {
		count, err := svc.postgresSvc.leaderboardRepo.CountMembers(board.ID)
		if err != nil {
			return nil, svc.postgresSvc.HandleError(err)
		}
		resp.Leaderboards = append(resp.Leaderboards, dto.PrivateLeaderboardResponse{
			ID:          board.ID,
			OwnerID:     board.OwnerID,
			Name:        board.Name,
			Description: board.Description,
			MaxMembers:  board.MaxMembers,
			MemberCount: count,
			CreatedAt:   board.CreatedAt,
		})
	}
	return resp, nil
}

func (svc *LeaderboardService) AddMember(leaderboardID, username, requestingUserID string) (*leaderboard.Entry, error) {
	row, err := svc.ranker.AddMember(leaderboardID, username, requestingUserID)
	if err != nil {
		return nil, err
	}
	return &leaderboard.Entry{
		UserID:    row.UserID,
		Username:  row.Username,
		TotalXP:   row.TotalXP,
		DayStreak: row.DayStreak,
	}, nil
}

func (svc *LeaderboardService) RemoveMember(leaderboardID, targetUserID, requestingUserID string) error {
	return svc.ranker.RemoveMember(leaderboardID, targetUserID, requestingUserID)
}

func (svc *LeaderboardService) Leave(leaderboardID, userID string) error {
	return svc.ranker.Leave(leaderboardID, userID)
}

func (svc *LeaderboardService) TransferOwnership(leaderboardID, newOwnerID, requestingUserID string) error {
	return svc.ranker.TransferOwnership(leaderboardID, newOwnerID, requestingUserID)
}

func (svc *LeaderboardService) Delete(leaderboardID, requestingUserID string) error {
	return svc.ranker.Delete(leaderboardID, requestingUserID)
}

// leaderboardStore adapts the postgres repositories to the leaderboard
// package's store port.
type leaderboardStore struct {
	postgres *PostgresService
}

func metricColumn(m leaderboard.Metric) string {
	if m == leaderboard.MetricStreak {
		return "day_streak"
	}
	return "total_xp"
}

func toRow(p *model.Profile) leaderboard.Row {
	return leaderboard.Row{
		UserID:       p.UserID,
		Username:     p.Username,
		TotalXP:      p.TotalXP,
		DayStreak:    p.DayStreak,
		Hidden:       p.HideFromGlobalLeaderboard,
		AllowInvites: p.AllowLeaderboardInvites,
	}
}

func (s *leaderboardStore) VisibleProfiles(metric leaderboard.Metric, limit, offset int) ([]leaderboard.Row, error) {
	profiles, err := s.postgres.profileRepo.VisibleProfiles(metricColumn(metric), limit, offset)
	if err != nil {
		return nil, err
	}
	rows := make([]leaderboard.Row, 0, len(profiles))
	for i := range profiles {
		rows = append(rows, toRow(&profiles[i]))
	}
	return rows, nil
}

func (s *leaderboardStore) VisibleCountAbove(metric leaderboard.Metric, score int) (int, error) {
	return s.postgres.profileRepo.VisibleCountAbove(metricColumn(metric), score)
}

func (s *leaderboardStore) Profile(userID string) (*leaderboard.Row, error) {
	profile, err := s.postgres.profileRepo.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	row := toRow(profile)
	return &row, nil
}

func (s *leaderboardStore) ProfileByUsername(username string) (*leaderboard.Row, error) {
	profile, err := s.postgres.profileRepo.GetProfileByUsername(username)
	if err != nil {
		return nil, err
	}
	row := toRow(profile)
	return &row, nil
}

func (s *leaderboardStore) Board(leaderboardID string) (*leaderboard.Board, error) {
	stored, err := s.postgres.leaderboardRepo.GetLeaderboard(leaderboardID)
	if err != nil {
		return nil, err
	}
	return toBoard(stored), nil
}

func (s *leaderboardStore) BoardsForUser(userID string) ([]leaderboard.Board, error) {
	stored, err := s.postgres.leaderboardRepo.GetLeaderboardsForUser(userID)
	if err != nil {
		return nil, err
	}
	boards := make([]leaderboard.Board, 0, len(stored))
	for i := range stored {
		boards = append(boards, *toBoard(&stored[i]))
	}
	return boards, nil
}

func toBoard(b *model.PrivateLeaderboard) *leaderboard.Board {
	return &leaderboard.Board{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Description: b.Description,
		MaxMembers:  b.MaxMembers,
		CreatedAt:   b.CreatedAt,
	}
}

// MemberRows resolves memberships to profile rows. Members without a synced
// profile yet appear with zeroed stats rather than being dropped.
func (s *leaderboardStore) MemberRows(leaderboardID string) ([]leaderboard.Row, error) {
	members, err := s.postgres.leaderboardRepo.GetMembers(leaderboardID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}

	profiles, err := s.postgres.profileRepo.GetProfiles(userIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].UserID] = &profiles[i]
	}

	rows := make([]leaderboard.Row, 0, len(members))
	for _, m := range members {
		if p, ok := byID[m.UserID]; ok {
			rows = append(rows, toRow(p))
		} else {
			rows = append(rows, leaderboard.Row{UserID: m.UserID})
		}
	}
	return rows, nil
}

func (s *leaderboardStore) MemberCount(leaderboardID string) (int, error) {
	return s.postgres.leaderboardRepo.CountMembers(leaderboardID)
}

func (s *leaderboardStore) IsMember(leaderboardID, userID string) (bool, error) {
	return s.postgres.leaderboardRepo.IsMember(leaderboardID, userID)
}

func (s *leaderboardStore) CreateBoard(b *leaderboard.Board, ownerID string) error {
	return s.postgres.leaderboardRepo.CreateLeaderboard(&model.PrivateLeaderboard{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Description: b.Description,
		MaxMembers:  b.MaxMembers,
		CreatedAt:   b.CreatedAt,
	}, ownerID)
}

func (s *leaderboardStore) AddMember(leaderboardID, userID string) error {
	return s.postgres.leaderboardRepo.AddMember(leaderboardID, userID)
}

func (s *leaderboardStore) RemoveMember(leaderboardID, userID string) error {
	return s.postgres.leaderboardRepo.RemoveMember(leaderboardID, userID)
}

func (s *leaderboardStore) SetOwner(leaderboardID, userID string) error {
	return s.postgres.leaderboardRepo.SetOwner(leaderboardID, userID)
}

func (s *leaderboardStore) DeleteBoard(leaderboardID string) error {
	return s.postgres.leaderboardRepo.DeleteLeaderboard(leaderboardID)
}

var _ leaderboard.Store = (*leaderboardStore)(nil)
