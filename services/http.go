package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"

	_ "github.com/satquest-app/satquest_api/docs"
	"github.com/satquest-app/satquest_api/services/handlers"
	"github.com/satquest-app/satquest_api/shared"
)

type HttpService struct {
	context.DefaultService

	authMw          *AuthMiddleware
	rateLimitSvc    *RateLimitService
	monitoringSvc   *MonitoringService
	authSvc         *AuthService
	questionSvc     *QuestionService
	gamificationSvc *GamificationService
	leaderboardSvc  *LeaderboardService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	svc.authMw = ctx.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.rateLimitSvc = ctx.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = ctx.Service(MONITORING_SVC).(*MonitoringService)
	svc.authSvc = ctx.Service(AUTH_SVC).(*AuthService)
	svc.questionSvc = ctx.Service(QUESTION_SVC).(*QuestionService)
	svc.gamificationSvc = ctx.Service(GAMIFICATION_SVC).(*GamificationService)
	svc.leaderboardSvc = ctx.Service(LEADERBOARD_SVC).(*LeaderboardService)

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	app := fiber.New(fiber.Config{
		ErrorHandler: svc.errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Device-ID",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))
	app.Use(svc.rateLimitSvc.IPRateLimit())

	authHandler := handlers.NewAuthHandler(svc.authSvc)
	questionHandler := handlers.NewQuestionHandler(svc.questionSvc, svc.gamificationSvc)
	progressHandler := handlers.NewProgressHandler(svc.gamificationSvc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.leaderboardSvc)

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	// Auth
	v1.Post("/register", svc.rateLimitSvc.RateLimit("register"), authHandler.Register)
	v1.Post("/login", svc.rateLimitSvc.RateLimit("login"), authHandler.Login)
	v1.Get("/username/:username/available", svc.rateLimitSvc.RateLimit("username_check"), authHandler.CheckUsername)

	// Question bank
	questions := v1.Group("/questions", svc.authMw.OptionalIdentity())
	questions.Get("/", questionHandler.ListQuestions)
	questions.Get("/:questionId", questionHandler.GetQuestion)

	// Practice and progression
	v1.Post("/practice", svc.authMw.OptionalIdentity(), svc.rateLimitSvc.RateLimit("practice_submit"), progressHandler.SubmitPractice)

	progress := v1.Group("/progress", svc.authMw.OptionalIdentity())
	progress.Get("/", progressHandler.GetProgress)
	progress.Delete("/", progressHandler.ClearProgress)
	progress.Get("/answered", progressHandler.GetAnsweredQuestions)
	progress.Post("/bonus-xp", svc.rateLimitSvc.RateLimit("bonus_xp"), progressHandler.AddBonusXP)
	progress.Post("/achievements/:achievementId/collect", progressHandler.CollectAchievement)
	progress.Post("/sync", progressHandler.FlushSync)

	// Preferences (registered users only)
	preferences := v1.Group("/preferences", svc.authMw.RequiredAuth())
	preferences.Get("/", progressHandler.GetPreferences)
	preferences.Put("/", svc.rateLimitSvc.RateLimit("profile_update"), progressHandler.UpdatePreferences)

	// Leaderboards
	v1.Get("/leaderboard/global", leaderboardHandler.Global)
	v1.Get("/leaderboard/global/rank", svc.authMw.RequiredAuth(), leaderboardHandler.UserRank)

	boards := v1.Group("/leaderboards", svc.authMw.RequiredAuth())
	boards.Post("/", svc.rateLimitSvc.RateLimit("leaderboard_create"), leaderboardHandler.Create)
	boards.Get("/", leaderboardHandler.List)
	boards.Get("/:leaderboardId", leaderboardHandler.Members)
	boards.Delete("/:leaderboardId", leaderboardHandler.Delete)
	boards.Post("/:leaderboardId/members", svc.rateLimitSvc.RateLimit("leaderboard_invite"), leaderboardHandler.AddMember)
	boards.Delete("/:leaderboardId/members/:userId", leaderboardHandler.RemoveMember)
	boards.Post("/:leaderboardId/leave", leaderboardHandler.Leave)
	boards.Post("/:leaderboardId/transfer", leaderboardHandler.TransferOwnership)

	svc.server = app

	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
