package leaderboard

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/satquest-app/satquest_api/shared"
)

const (
	defaultLimit = 50
	maxLimit     = 100
	maxNameLen   = 50

	// defaultRadius is the number of entries shown on each side of the
	// user in the "you are here" window.
	defaultRadius = 2
)

// Service applies the leaderboard policy over a Store.
type Service struct {
	store   Store
	now     func() time.Time
	newRand func() *rand.Rand
}

type Option func(*Service)

// WithRand overrides the per-request tie-break source for tests.
func WithRand(newRand func() *rand.Rand) Option {
	return func(s *Service) { s.newRand = newRand }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Global returns one page of the global leaderboard. Hidden profiles and
// profiles without a username are excluded by the store query.
func (s *Service) Global(metric Metric, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.store.VisibleProfiles(metric, limit, offset)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load leaderboard")
	}
	return rankRows(rows, metric, offset+1, s.newRand()), nil
}

// UserRank returns the user's 1-based global rank plus a window of entries
// centered on them. A user who opted out of the global board, or who has
// no username, gets Ranked=false.
func (s *Service) UserRank(userID string, metric Metric) (*RankView, error) {
	row, err := s.store.Profile(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}
	if row.Hidden || row.Username == "" {
		return &RankView{Ranked: false}, nil
	}

	better, err := s.store.VisibleCountAbove(metric, metric.score(*row))
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to compute rank")
	}
	rank := better + 1

	offset := rank - 1 - defaultRadius
	if offset < 0 {
		offset = 0
	}
	rows, err := s.store.VisibleProfiles(metric, 2*defaultRadius+1, offset)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load surrounding entries")
	}

	return &RankView{
		Ranked:      true,
		Rank:        rank,
		Surrounding: rankRows(rows, metric, offset+1, s.newRand()),
	}, nil
}

// Members returns the private leaderboard with its full member set ranked.
// No visibility filtering applies; membership is the visibility boundary.
func (s *Service) Members(leaderboardID string, metric Metric) (*Board, []Entry, error) {
	board, err := s.store.Board(leaderboardID)
	if err != nil {
		return nil, nil, shared.NewNotFoundError(err, "Leaderboard not found")
	}

	rows, err := s.store.MemberRows(leaderboardID)
	if err != nil {
		return nil, nil, shared.NewInternalError(err, "Failed to load members")
	}
	return board, rankRows(rows, metric, 1, s.newRand()), nil
}

func (s *Service) BoardsFor(userID string) ([]Board, error) {
	boards, err := s.store.BoardsForUser(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load leaderboards")
	}
	return boards, nil
}

// Create makes a new private leaderboard; the creator becomes owner and
// first member.
func (s *Service) Create(ownerID, name, description string, maxMembers int) (*Board, error) {
	if name == "" {
		return nil, shared.NewBadRequestError(fmt.Errorf("empty name"), "Leaderboard name is required")
	}
	if len(name) > maxNameLen {
		return nil, shared.NewBadRequestError(fmt.Errorf("name too long"), "Leaderboard name is too long")
	}
	if maxMembers <= 0 {
		maxMembers = MaxMembers
	}
	if maxMembers > MaxMembers {
		return nil, shared.NewBadRequestError(fmt.Errorf("max members %d over cap", maxMembers),
			fmt.Sprintf("Member limit cannot exceed %d", MaxMembers))
	}

	id, _ := uuid.NewV7()
	board := &Board{
		ID:          id.String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		MaxMembers:  maxMembers,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateBoard(board, ownerID); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create leaderboard")
	}
	return board, nil
}

// AddMember invites a user by username. Preconditions are checked in
// order; the first failure determines the error. The member-count check is
// best effort under concurrent inviters.
func (s *Service) AddMember(leaderboardID, username, requestingUserID string) (*Row, error) {
	board, err := s.store.Board(leaderboardID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Leaderboard not found")
	}

	isMember, err := s.store.IsMember(leaderboardID, requestingUserID)
	if err != nil || !isMember {
		return nil, shared.NewForbiddenError(err, "Only members can invite")
	}

	target, err := s.store.ProfileByUsername(username)
	if err != nil {
		return nil, shared.NewBadRequestError(err, "User not found")
	}
	if !target.AllowInvites {
		return nil, shared.NewBadRequestError(fmt.Errorf("invites blocked"), "User is not accepting leaderboard invites")
	}

	alreadyMember, err := s.store.IsMember(leaderboardID, target.UserID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to check membership")
	}
	if alreadyMember {
		return nil, shared.NewConflictError(fmt.Errorf("duplicate member"), "User is already a member")
	}

	count, err := s.store.MemberCount(leaderboardID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to count members")
	}
	if count >= board.MaxMembers {
		return nil, shared.NewConflictError(fmt.Errorf("member limit %d reached", board.MaxMembers), "Leaderboard is full")
	}

	if err := s.store.AddMember(leaderboardID, target.UserID); err != nil {
		return nil, shared.NewInternalError(err, "Failed to add member")
	}
	return target, nil
}

// RemoveMember is owner-only. The owner cannot be removed; ownership must
// be transferred first.
func (s *Service) RemoveMember(leaderboardID, targetUserID, requestingUserID string) error {
	board, err := s.requireOwner(leaderboardID, requestingUserID)
	if err != nil {
		return err
	}
	if targetUserID == board.OwnerID {
		return shared.NewBadRequestError(fmt.Errorf("cannot remove owner"), "Transfer ownership before removing the owner")
	}

	isMember, err := s.store.IsMember(leaderboardID, targetUserID)
	if err != nil {
		return shared.NewInternalError(err, "Failed to check membership")
	}
	if !isMember {
		return shared.NewNotFoundError(fmt.Errorf("not a member"), "User is not a member")
	}

	if err := s.store.RemoveMember(leaderboardID, targetUserID); err != nil {
		return shared.NewInternalError(err, "Failed to remove member")
	}
	return nil
}

// Leave removes the caller's own membership. Owners must transfer first.
func (s *Service) Leave(leaderboardID, userID string) error {
	board, err := s.store.Board(leaderboardID)
	if err != nil {
		return shared.NewNotFoundError(err, "Leaderboard not found")
	}
	if board.OwnerID == userID {
		return shared.NewBadRequestError(fmt.Errorf("owner cannot leave"), "Transfer ownership before leaving")
	}

	isMember, err := s.store.IsMember(leaderboardID, userID)
	if err != nil {
		return shared.NewInternalError(err, "Failed to check membership")
	}
	if !isMember {
		return shared.NewNotFoundError(fmt.Errorf("not a member"), "Not a member of this leaderboard")
	}

	if err := s.store.RemoveMember(leaderboardID, userID); err != nil {
		return shared.NewInternalError(err, "Failed to leave leaderboard")
	}
	return nil
}

// TransferOwnership moves ownership to an existing member.
func (s *Service) TransferOwnership(leaderboardID, newOwnerID, requestingUserID string) error {
	if _, err := s.requireOwner(leaderboardID, requestingUserID); err != nil {
		return err
	}

	isMember, err := s.store.IsMember(leaderboardID, newOwnerID)
	if err != nil {
		return shared.NewInternalError(err, "Failed to check membership")
	}
	if !isMember {
		return shared.NewBadRequestError(fmt.Errorf("new owner not a member"), "New owner must be an existing member")
	}

	if err := s.store.SetOwner(leaderboardID, newOwnerID); err != nil {
		return shared.NewInternalError(err, "Failed to transfer ownership")
	}
	return nil
}

// Delete removes the leaderboard and all memberships.
func (s *Service) Delete(leaderboardID, requestingUserID string) error {
	if _, err := s.requireOwner(leaderboardID, requestingUserID); err != nil {
		return err
	}
	if err := s.store.DeleteBoard(leaderboardID); err != nil {
		return shared.NewInternalError(err, "Failed to delete leaderboard")
	}
	return nil
}

// requireOwner fails closed: any error verifying ownership rejects the
// operation.
func (s *Service) requireOwner(leaderboardID, userID string) (*Board, error) {
	board, err := s.store.Board(leaderboardID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Leaderboard not found")
	}
	if board.OwnerID != userID {
		return nil, shared.NewForbiddenError(fmt.Errorf("user %s is not the owner", userID), "Only the owner can do this")
	}
	return board, nil
}
