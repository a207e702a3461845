package repositories

import (
	"gorm.io/gorm"

	"github.com/satquest-app/satquest_api/model"
)

type QuestionRepository struct {
	BaseRepository
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *QuestionRepository) GetQuestion(questionID string) (*model.Question, error) {
	var question model.Question
	if err := ds.db.Where("id = ? AND is_active = ?", questionID, true).First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (ds *QuestionRepository) ListQuestions(section, difficulty string, limit, offset int) ([]model.Question, error) {
	query := ds.db.Where("is_active = ?", true)
	if section != "" {
		query = query.Where("section = ?", section)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var questions []model.Question
	err := query.Order("id ASC").Limit(limit).Offset(offset).Find(&questions).Error
	return questions, err
}

func (ds *QuestionRepository) CountQuestions(section, difficulty string) (int, error) {
	query := ds.db.Model(&model.Question{}).Where("is_active = ?", true)
	if section != "" {
		query = query.Where("section = ?", section)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var count int64
	err := query.Count(&count).Error
	return int(count), err
}

func (ds *QuestionRepository) CreateQuestion(question *model.Question) error {
	return ds.db.Create(question).Error
}
