package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/satquest-app/satquest_api/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file found, using system environment variables")
	}

	ctx, err := context.NewCtx(
		&services.MonitoringService{},
		&services.SqliteService{},
		&services.PostgresService{},
		&services.RedisService{},
		&services.JWTService{},
		&services.AuthMiddleware{},

		&services.AuthService{},
		&services.QuestionService{},
		&services.GamificationService{},
		&services.LeaderboardService{},
		&services.RateLimitService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
