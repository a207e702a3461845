package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/golang-jwt/jwt/v5"

	"github.com/satquest-app/satquest_api/dto"
)

type JWTService struct {
	appContext.DefaultService
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

const JWT_SVC = "jwt_svc"

const accessTokenTTL = 24 * time.Hour

func (svc JWTService) Id() string {
	return JWT_SVC
}

func (svc *JWTService) Configure(ctx *appContext.Context) error {
	if os.Getenv("JWT_OAUTH_SECRET") == "" {
		return errors.New("JWT_OAUTH_SECRET is not set")
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *JWTService) Start() error {
	return nil
}

// VerifyJWTToken parses and validates a signed access token, returning the
// embedded claims.
func (svc *JWTService) VerifyJWTToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, svc.getJWTKey)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (svc *JWTService) getJWTKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(os.Getenv("JWT_OAUTH_SECRET")), nil
}

func (svc *JWTService) GenerateTokenPair(userID string) (*dto.TokenPair, error) {
	accessToken, err := svc.ToJWT(userID, accessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken: accessToken,
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
	}, nil
}

func (svc *JWTService) ToJWT(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "SatQuest",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_OAUTH_SECRET")))
}

func (svc *JWTService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", errors.New("invalid authorization header format")
	}

	return authHeader[7:], nil
}
