package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/satquest-app/satquest_api/shared"
)

type QuestionHandler struct {
	questionSvc QuestionServiceInterface
	progressSvc ProgressServiceInterface
}

func NewQuestionHandler(questionSvc QuestionServiceInterface, progressSvc ProgressServiceInterface) *QuestionHandler {
	return &QuestionHandler{
		questionSvc: questionSvc,
		progressSvc: progressSvc,
	}
}

// @Summary List practice questions
// @Description List active questions, optionally filtered by section and difficulty
// @Tags questions
// @Produce json
// @Param section query string false "Section filter" Enums(math, reading_writing)
// @Param difficulty query string false "Difficulty filter" Enums(easy, medium, hard)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} shared.Response{data=dto.QuestionListResponse}
// @Router /api/v1/questions [get]
func (h *QuestionHandler) ListQuestions(c *fiber.Ctx) error {
	section := c.Query("section")
	difficulty := c.Query("difficulty")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	resp, err := h.questionSvc.ListQuestions(section, difficulty, limit, offset)
	if err != nil {
		return err
	}

	identity := c.Locals(shared.Identity).(string)
	for i := range resp.Questions {
		resp.Questions[i].Answered = h.progressSvc.HasAnswered(identity, resp.Questions[i].ID)
	}

	return shared.ResponseJSON(c, http.StatusOK, "Questions retrieved", resp)
}

// @Summary Get a practice question
// @Tags questions
// @Produce json
// @Param questionId path string true "Question ID"
// @Success 200 {object} shared.Response{data=dto.QuestionResponse}
// @Router /api/v1/questions/{questionId} [get]
func (h *QuestionHandler) GetQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")

	question, err := h.questionSvc.GetQuestion(questionID)
	if err != nil {
		return err
	}

	identity := c.Locals(shared.Identity).(string)
	resp := h.questionSvc.ToQuestionResponse(question, h.progressSvc.HasAnswered(identity, question.ID))

	return shared.ResponseJSON(c, http.StatusOK, "Question retrieved", resp)
}
