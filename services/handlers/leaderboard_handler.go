package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/satquest-app/satquest_api/dto"
	"github.com/satquest-app/satquest_api/shared"
)

type LeaderboardHandler struct {
	leaderboardSvc LeaderboardServiceInterface
}

func NewLeaderboardHandler(leaderboardSvc LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardSvc: leaderboardSvc,
	}
}

func userIDFrom(c *fiber.Ctx) string {
	userID, _ := c.Locals(shared.UserID).(string)
	return userID
}

// @Summary Global leaderboard
// @Description One page of the global leaderboard, ranked by XP or day streak
// @Tags leaderboard
// @Produce json
// @Param metric query string false "Ranking metric" Enums(xp, streak) default(xp)
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} shared.Response{data=dto.GlobalLeaderboardResponse}
// @Router /api/v1/leaderboard/global [get]
func (h *LeaderboardHandler) Global(c *fiber.Ctx) error {
	metric := c.Query("metric", shared.MetricXP)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	resp, err := h.leaderboardSvc.Global(metric, limit, offset)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Leaderboard retrieved", resp)
}

// @Summary Global rank
// @Description The caller's global rank with surrounding entries
// @Tags leaderboard
// @Produce json
// @Security Bearer
// @Param metric query string false "Ranking metric" Enums(xp, streak) default(xp)
// @Success 200 {object} shared.Response{data=dto.GlobalRankResponse}
// @Router /api/v1/leaderboard/global/rank [get]
func (h *LeaderboardHandler) UserRank(c *fiber.Ctx) error {
	metric := c.Query("metric", shared.MetricXP)

	resp, err := h.leaderboardSvc.UserRank(userIDFrom(c), metric)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Rank retrieved", resp)
}

// @Summary Create a private leaderboard
// @Description The creator becomes owner and first member
// @Tags leaderboard
// @Accept json
// @Produce json
// @Security Bearer
// @Param createRequest body dto.CreateLeaderboardRequest true "Leaderboard details"
// @Success 201 {object} shared.Response{data=dto.PrivateLeaderboardResponse}
// @Router /api/v1/leaderboards [post]
func (h *LeaderboardHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateLeaderboardRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.leaderboardSvc.Create(userIDFrom(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Leaderboard created", resp)
}

// @Summary List my private leaderboards
// @Tags leaderboard
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.LeaderboardListResponse}
// @Router /api/v1/leaderboards [get]
func (h *LeaderboardHandler) List(c *fiber.Ctx) error {
	resp, err := h.leaderboardSvc.ListForUser(userIDFrom(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Leaderboards retrieved", resp)
}

// @Summary Private leaderboard members
// @Description The board with its ranked member list; members only
// @Tags leaderboard
// @Produce json
// @Security Bearer
// @Param leaderboardId path string true "Leaderboard ID"
// @Param metric query string false "Ranking metric" Enums(xp, streak) default(xp)
// @Success 200 {object} shared.Response{data=dto.PrivateLeaderboardResponse}
// @Router /api/v1/leaderboards/{leaderboardId} [get]
func (h *LeaderboardHandler) Members(c *fiber.Ctx) error {
	metric := c.Query("metric", shared.MetricXP)

	resp, err := h.leaderboardSvc.Members(c.Params("leaderboardId"), userIDFrom(c), metric)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Leaderboard retrieved", resp)
}

// @Summary Invite a member by username
// @Description Any member can invite; the invitee must allow invites
// @Tags leaderboard
// @Accept json
// @Produce json
// @Security Bearer
// @Param leaderboardId path string true "Leaderboard ID"
// @Param addRequest body dto.AddMemberRequest true "Username to invite"
// @Success 201 {object} shared.Response{data=leaderboard.Entry}
// @Router /api/v1/leaderboards/{leaderboardId}/members [post]
func (h *LeaderboardHandler) AddMember(c *fiber.Ctx) error {
	var req dto.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	member, err := h.leaderboardSvc.AddMember(c.Params("leaderboardId"), req.Username, userIDFrom(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Member added", member)
}

// @Summary Remove a member
// @Description Owner only; the owner cannot be removed
// @Tags leaderboard
// @Produce json
// @Security Bearer
// @Param leaderboardId path string true "Leaderboard ID"
// @Param userId path string true "Member user ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/leaderboards/{leaderboardId}/members/{userId} [delete]
func (h *LeaderboardHandler) RemoveMember(c *fiber.Ctx) error {
	err := h.leaderboardSvc.RemoveMember(c.Params("leaderboardId"), c.Params("userId"), userIDFrom(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Member removed", nil)
}

// @Summary Leave a leaderboard
// @Description Owners must transfer ownership before leaving
// @Tags leaderboard
// @Produce json
// @Security Bearer
// @Param leaderboardId path string true "Leaderboard ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/leaderboards/{leaderboardId}/leave [post]
func (h *LeaderboardHandler) Leave(c *fiber.Ctx) error {
	if err := h.leaderboardSvc.Leave(c.Params("leaderboardId"), userIDFrom(c)); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Left leaderboard", nil)
}

// @Summary Transfer ownership
// @Description Owner only; the new owner must be an existing member
// @Tags leaderboard
// @Accept json
// @Produce json
// @Security Bearer
// @Param leaderboardId path string true "Leaderboard ID"
// @Param transferRequest body dto.TransferOwnershipRequest true "New owner"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/leaderboards/{leaderboardId}/transfer [post]
func (h *LeaderboardHandler) TransferOwnership(c *fiber.Ctx) error {
	var req dto.TransferOwnershipRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	err := h.leaderboardSvc.TransferOwnership(c.Params("leaderboardId"), req.NewOwnerID, userIDFrom(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Ownership transferred", nil)
}

// @Summary Delete a leaderboard
// @Description Owner only; removes the board and all memberships
// @Tags leaderboard
// @Produce json
// @Security Bearer
// @Param leaderboardId path string true "Leaderboard ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/leaderboards/{leaderboardId} [delete]
func (h *LeaderboardHandler) Delete(c *fiber.Ctx) error {
	if err := h.leaderboardSvc.Delete(c.Params("leaderboardId"), userIDFrom(c)); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Leaderboard deleted", nil)
}
