package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/satquest-app/satquest_api/model"
)

// LeaderboardRepository handles private leaderboards and their membership
// rows. Membership is unique per (leaderboard, user) at the schema level.
type LeaderboardRepository struct {
	BaseRepository
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *LeaderboardRepository) GetLeaderboard(leaderboardID string) (*model.PrivateLeaderboard, error) {
	var board model.PrivateLeaderboard
	if err := ds.db.Where("id = ?", leaderboardID).First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (ds *LeaderboardRepository) GetLeaderboardsForUser(userID string) ([]model.PrivateLeaderboard, error) {
	var boards []model.PrivateLeaderboard
	err := ds.db.
		Joins("JOIN leaderboard_members ON leaderboard_members.leaderboard_id = private_leaderboards.id").
		Where("leaderboard_members.user_id = ?", userID).
		Order("private_leaderboards.created_at ASC").
		Find(&boards).Error
	return boards, err
}

// CreateLeaderboard inserts the board and the owner's membership in one
// transaction.
func (ds *LeaderboardRepository) CreateLeaderboard(board *model.PrivateLeaderboard, ownerID string) error {
	return ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		member := &model.LeaderboardMember{
			ID:            uuid.New().String(),
			LeaderboardID: board.ID,
			UserID:        ownerID,
			JoinedAt:      time.Now(),
			CreatedAt:     time.Now(),
		}
		return tx.Create(member).Error
	})
}

func (ds *LeaderboardRepository) GetMembers(leaderboardID string) ([]model.LeaderboardMember, error) {
	var members []model.LeaderboardMember
	err := ds.db.Where("leaderboard_id = ?", leaderboardID).Order("joined_at ASC").Find(&members).Error
	return members, err
}

func (ds *LeaderboardRepository) CountMembers(leaderboardID string) (int, error) {
	var count int64
	err := ds.db.Model(&model.LeaderboardMember{}).
		Where("leaderboard_id = ?", leaderboardID).
		Count(&count).Error
	return int(count), err
}

func (ds *LeaderboardRepository) IsMember(leaderboardID, userID string) (bool, error) {
	var count int64
	err := ds.db.Model(&model.LeaderboardMember{}).
		Where("leaderboard_id = ? AND user_id = ?", leaderboardID, userID).
		Count(&count).Error
	return count > 0, err
}

func (ds *LeaderboardRepository) AddMember(leaderboardID, userID string) error {
	member := &model.LeaderboardMember{
		ID:            uuid.New().String(),
		LeaderboardID: leaderboardID,
		UserID:        userID,
		JoinedAt:      time.Now(),
		CreatedAt:     time.Now(),
	}
	return ds.db.Create(member).Error
}

func (ds *LeaderboardRepository) RemoveMember(leaderboardID, userID string) error {
	return ds.db.
		Where("leaderboard_id = ? AND user_id = ?", leaderboardID, userID).
		Delete(&model.LeaderboardMember{}).Error
}

func (ds *LeaderboardRepository) SetOwner(leaderboardID, userID string) error {
	return ds.db.Model(&model.PrivateLeaderboard{}).
		Where("id = ?", leaderboardID).
		Updates(map[string]interface{}{
			"owner_id":   userID,
			"updated_at": time.Now(),
		}).Error
}

// DeleteLeaderboard removes the board and all memberships.
func (ds *LeaderboardRepository) DeleteLeaderboard(leaderboardID string) error {
	return ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("leaderboard_id = ?", leaderboardID).Delete(&model.LeaderboardMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", leaderboardID).Delete(&model.PrivateLeaderboard{}).Error
	})
}
