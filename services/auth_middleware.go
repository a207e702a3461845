package services

import (
	"net/http"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"

	"github.com/satquest-app/satquest_api/shared"
)

// AuthMiddleware resolves the caller's identity. Registered users carry a
// bearer token; anonymous devices identify themselves with an X-Device-ID
// header and get a prefixed identity so the two namespaces never collide.
type AuthMiddleware struct {
	context.DefaultService

	jwtSvc *JWTService
}

const AUTH_MIDDLEWARE_SVC = "auth"

func (svc AuthMiddleware) Id() string {
	return AUTH_MIDDLEWARE_SVC
}

func (svc *AuthMiddleware) Configure(ctx *context.Context) error {
	svc.jwtSvc = ctx.Service(JWT_SVC).(*JWTService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthMiddleware) Start() error {
	return nil
}

// RequiredAuth admits registered users only.
func (svc *AuthMiddleware) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
		}

		claims, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if claims.UserID == "" {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, claims.UserID)
		c.Locals(shared.Identity, claims.UserID)
		c.Locals(shared.IsAnonymous, false)
		return c.Next()
	}
}

// OptionalIdentity admits registered users and anonymous devices alike. A
// valid bearer token wins; otherwise X-Device-ID names an anonymous
// identity. Requests with neither are rejected.
func (svc *AuthMiddleware) OptionalIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
			}

			claims, err := svc.jwtSvc.VerifyJWTToken(token)
			if err != nil || claims.UserID == "" {
				return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
			}

			c.Locals(shared.UserID, claims.UserID)
			c.Locals(shared.Identity, claims.UserID)
			c.Locals(shared.IsAnonymous, false)
			return c.Next()
		}

		deviceID := c.Get("X-Device-ID")
		if deviceID == "" {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Provide a bearer token or X-Device-ID header")
		}

		c.Locals(shared.Identity, AnonymousIdentityPrefix+deviceID)
		c.Locals(shared.IsAnonymous, true)
		return c.Next()
	}
}
