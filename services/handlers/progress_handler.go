package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/satquest-app/satquest_api/dto"
	"github.com/satquest-app/satquest_api/shared"
)

type ProgressHandler struct {
	progressSvc ProgressServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{
		progressSvc: progressSvc,
	}
}

func identityFrom(c *fiber.Ctx) string {
	identity, _ := c.Locals(shared.Identity).(string)
	return identity
}

// @Summary Submit a practice answer
// @Description Grade the answer and apply XP, streak and achievement updates
// @Tags progress
// @Accept json
// @Produce json
// @Param practiceRequest body dto.PracticeRequest true "Question and submitted answer"
// @Success 200 {object} shared.Response{data=dto.PracticeResultResponse}
// @Router /api/v1/practice [post]
func (h *ProgressHandler) SubmitPractice(c *fiber.Ctx) error {
	var req dto.PracticeRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.progressSvc.SubmitPractice(identityFrom(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Practice recorded", resp)
}

// @Summary Get progress
// @Description Current XP, streaks, counters and achievement states
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, http.StatusOK, "Progress retrieved", h.progressSvc.GetProgress(identityFrom(c)))
}

// @Summary List answered question IDs
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=dto.AnsweredQuestionsResponse}
// @Router /api/v1/progress/answered [get]
func (h *ProgressHandler) GetAnsweredQuestions(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, http.StatusOK, "Answered questions retrieved", h.progressSvc.GetAnsweredQuestions(identityFrom(c)))
}

// @Summary Award bonus XP
// @Description Flat XP award outside the practice flow
// @Tags progress
// @Accept json
// @Produce json
// @Param bonusRequest body dto.BonusXPRequest true "XP amount and source"
// @Success 200 {object} shared.Response{data=dto.BonusXPResponse}
// @Router /api/v1/progress/bonus-xp [post]
func (h *ProgressHandler) AddBonusXP(c *fiber.Ctx) error {
	var req dto.BonusXPRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	return shared.ResponseJSON(c, http.StatusOK, "Bonus XP added", h.progressSvc.AddBonusXP(identityFrom(c), req))
}

// @Summary Collect an achievement reward
// @Description Claim the XP reward for an unlocked achievement, at most once
// @Tags progress
// @Produce json
// @Param achievementId path string true "Achievement ID"
// @Success 200 {object} shared.Response{data=dto.CollectAchievementResponse}
// @Router /api/v1/progress/achievements/{achievementId}/collect [post]
func (h *ProgressHandler) CollectAchievement(c *fiber.Ctx) error {
	resp, err := h.progressSvc.CollectAchievement(identityFrom(c), c.Params("achievementId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Achievement reward collected", resp)
}

// @Summary Flush pending remote sync
// @Description Push any pending profile sync immediately, e.g. on app background
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/progress/sync [post]
func (h *ProgressHandler) FlushSync(c *fiber.Ctx) error {
	h.progressSvc.FlushSync(identityFrom(c))
	return shared.ResponseJSON(c, http.StatusOK, "Sync flushed", nil)
}

// @Summary Clear local progress
// @Description Reset the identity's progress record
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/progress [delete]
func (h *ProgressHandler) ClearProgress(c *fiber.Ctx) error {
	h.progressSvc.ClearProgress(identityFrom(c))
	return shared.ResponseJSON(c, http.StatusOK, "Progress cleared", nil)
}

// @Summary Get leaderboard preferences
// @Tags preferences
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.PreferencesResponse}
// @Router /api/v1/preferences [get]
func (h *ProgressHandler) GetPreferences(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.GetPreferences(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Preferences retrieved", resp)
}

// @Summary Update leaderboard preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Security Bearer
// @Param preferencesRequest body dto.UpdatePreferencesRequest true "Preference toggles"
// @Success 200 {object} shared.Response{data=dto.PreferencesResponse}
// @Router /api/v1/preferences [put]
func (h *ProgressHandler) UpdatePreferences(c *fiber.Ctx) error {
	var req dto.UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	userID, _ := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.UpdatePreferences(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Preferences updated", resp)
}
