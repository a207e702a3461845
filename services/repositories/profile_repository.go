package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satquest-app/satquest_api/model"
)

// ProfileRepository handles the hosted progress rows that feed the
// leaderboards and receive the engine's debounced sync.
type ProfileRepository struct {
	BaseRepository
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *ProfileRepository) GetProfile(userID string) (*model.Profile, error) {
	var profile model.Profile
	if err := ds.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (ds *ProfileRepository) GetProfileByUsername(username string) (*model.Profile, error) {
	var profile model.Profile
	if err := ds.db.Where("LOWER(username) = LOWER(?)", username).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProgress writes the synced progress columns, creating the row on
// first sync. Preference and username columns are never touched here, so a
// retried upsert cannot clobber them.
func (ds *ProfileRepository) UpsertProgress(profile *model.Profile) error {
	profile.UpdatedAt = time.Now()
	return ds.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_xp", "day_streak", "questions_answered", "correct_answers",
			"last_synced_at", "updated_at",
		}),
	}).Create(profile).Error
}

func (ds *ProfileRepository) CreateProfile(profile *model.Profile) error {
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	return ds.db.Create(profile).Error
}

func (ds *ProfileRepository) UpdatePreferences(userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return ds.db.Model(&model.Profile{}).Where("user_id = ?", userID).Updates(updates).Error
}

// VisibleProfiles pages the opted-in, named profiles ordered by the metric
// column descending.
func (ds *ProfileRepository) VisibleProfiles(metricColumn string, limit, offset int) ([]model.Profile, error) {
	var profiles []model.Profile
	err := ds.db.
		Where("hide_from_global_leaderboard = ? AND username != ''", false).
		Order(metricColumn + " DESC").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// VisibleCountAbove counts opted-in profiles with a strictly greater
// metric value; rank is that count plus one.
func (ds *ProfileRepository) VisibleCountAbove(metricColumn string, score int) (int, error) {
	var count int64
	err := ds.db.Model(&model.Profile{}).
		Where("hide_from_global_leaderboard = ? AND username != ''", false).
		Where(metricColumn+" > ?", score).
		Count(&count).Error
	return int(count), err
}

func (ds *ProfileRepository) GetProfiles(userIDs []string) ([]model.Profile, error) {
	var profiles []model.Profile
	if len(userIDs) == 0 {
		return profiles, nil
	}
	err := ds.db.Where("user_id IN ?", userIDs).Find(&profiles).Error
	return profiles, err
}
