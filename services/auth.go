package services

import (
	"errors"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/satquest-app/satquest_api/dto"
	"github.com/satquest-app/satquest_api/model"
	"github.com/satquest-app/satquest_api/shared"
)

// AuthService handles account registration and credential login. Anonymous
// play never touches this service; accounts exist so a device can claim a
// username and appear on leaderboards.
type AuthService struct {
	appContext.DefaultService

	postgresSvc *PostgresService
	jwtSvc      *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *appContext.Context) error {
	svc.postgresSvc = ctx.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = ctx.Service(JWT_SVC).(*JWTService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	for _, identifier := range []string{email, username} {
		_, err := svc.postgresSvc.userRepo.GetUserByEmailOrUsername(identifier)
		if err == nil {
			return nil, shared.NewConflictError(errors.New("duplicate account"), "Email or username already taken")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svc.postgresSvc.HandleError(err)
		}
	}

	user, err := svc.postgresSvc.userRepo.CreateUser(email, username, req.Password)
	if err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	profile := &model.Profile{
		UserID:                  user.ID,
		Username:                user.Username,
		AllowLeaderboardInvites: true,
	}
	if err := svc.postgresSvc.profileRepo.CreateProfile(profile); err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue tokens")
	}

	log.WithField("user_id", user.ID).Info("User registered")

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Tokens:   *tokens,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(req.EmailOrUsername)

	user, err := svc.postgresSvc.userRepo.GetUserByEmailOrUsername(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(errors.New("invalid credentials"), "Invalid credentials")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(errors.New("invalid credentials"), "Invalid credentials")
	}

	if err := svc.postgresSvc.userRepo.UpdateLastLogin(user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue tokens")
	}

	return &dto.LoginResponse{
		UserID:    user.ID,
		Username:  user.Username,
		TokenPair: *tokens,
		LoginAt:   time.Now(),
	}, nil
}

func (svc *AuthService) CheckUsername(username string) (*dto.UsernameAvailabilityResponse, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 30 {
		return &dto.UsernameAvailabilityResponse{Username: username, Available: false}, nil
	}

	_, err := svc.postgresSvc.userRepo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.UsernameAvailabilityResponse{Username: username, Available: true}, nil
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	return &dto.UsernameAvailabilityResponse{Username: username, Available: false}, nil
}
