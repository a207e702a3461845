package services

import (
	"errors"
	"strings"

	appContext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/satquest-app/satquest_api/dto"
	"github.com/satquest-app/satquest_api/model"
	"github.com/satquest-app/satquest_api/shared"
)

// QuestionService serves the practice question bank and grades submitted
// answers. Grading compares the submitted choice case-insensitively after
// trimming, so "B" and " b " are the same answer.
type QuestionService struct {
	appContext.DefaultService

	postgresSvc *PostgresService
}

const QUESTION_SVC = "question_svc"

func (svc QuestionService) Id() string {
	return QUESTION_SVC
}

func (svc *QuestionService) Configure(ctx *appContext.Context) error {
	svc.postgresSvc = ctx.Service(POSTGRES_SVC).(*PostgresService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *QuestionService) Start() error {
	return nil
}

func (svc *QuestionService) GetQuestion(questionID string) (*model.Question, error) {
	question, err := svc.postgresSvc.questionRepo.GetQuestion(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Question not found")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}
	return question, nil
}

func (svc *QuestionService) ListQuestions(section, difficulty string, limit, offset int) (*dto.QuestionListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	questions, err := svc.postgresSvc.questionRepo.ListQuestions(section, difficulty, limit, offset)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	total, err := svc.postgresSvc.questionRepo.CountQuestions(section, difficulty)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	resp := &dto.QuestionListResponse{
		Questions: make([]dto.QuestionResponse, 0, len(questions)),
		Total:     total,
	}
	for i := range questions {
		resp.Questions = append(resp.Questions, svc.ToQuestionResponse(&questions[i], false))
	}
	return resp, nil
}

// Grade reports whether the submitted answer matches the question's correct
// choice. The question must exist and be active.
func (svc *QuestionService) Grade(questionID, answer string) (*model.Question, bool, error) {
	question, err := svc.GetQuestion(questionID)
	if err != nil {
		return nil, false, err
	}

	correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(question.CorrectChoice))
	return question, correct, nil
}

func (svc *QuestionService) ToQuestionResponse(question *model.Question, answered bool) dto.QuestionResponse {
	var choices []string
	if len(question.Choices) > 0 {
		if err := sonic.Unmarshal(question.Choices, &choices); err != nil {
			log.WithError(err).WithField("question_id", question.ID).Warn("Malformed choices payload")
		}
	}

	return dto.QuestionResponse{
		ID:         question.ID,
		Section:    question.Section,
		Difficulty: question.Difficulty,
		Prompt:     question.Prompt,
		Choices:    choices,
		Answered:   answered,
	}
}
