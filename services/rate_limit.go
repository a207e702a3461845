package services

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/satquest-app/satquest_api/dto"
	"github.com/satquest-app/satquest_api/shared"
)

// RateLimitService enforces fixed-window limits in Redis. Counters are
// keyed by identifier and endpoint type; a window that exceeds its limit
// sets a block key that outlives the window.
type RateLimitService struct {
	appContext.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	redisSvc *RedisService
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	BlockTime    time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.redisSvc = ctx.Service(REDIS_SVC).(*RedisService)
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		"login": {
			EndpointType: "login",
			MaxRequests:  10,
			WindowSize:   15 * time.Minute,
			BlockTime:    30 * time.Minute,
			Description:  "Login attempts rate limit",
			IsActive:     true,
		},
		"register": {
			EndpointType: "register",
			MaxRequests:  5,
			WindowSize:   15 * time.Minute,
			BlockTime:    60 * time.Minute,
			Description:  "Registration rate limit",
			IsActive:     true,
		},
		"username_check": {
			EndpointType: "username_check",
			MaxRequests:  50,
			WindowSize:   time.Hour,
			BlockTime:    10 * time.Minute,
			Description:  "Username availability check rate limit",
			IsActive:     true,
		},
		"practice_submit": {
			EndpointType: "practice_submit",
			MaxRequests:  300,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "Practice answer submission rate limit",
			IsActive:     true,
		},
		"bonus_xp": {
			EndpointType: "bonus_xp",
			MaxRequests:  30,
			WindowSize:   time.Hour,
			BlockTime:    2 * time.Hour,
			Description:  "Bonus XP award rate limit",
			IsActive:     true,
		},
		"leaderboard_invite": {
			EndpointType: "leaderboard_invite",
			MaxRequests:  20,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "Private leaderboard invite rate limit",
			IsActive:     true,
		},
		"leaderboard_create": {
			EndpointType: "leaderboard_create",
			MaxRequests:  5,
			WindowSize:   time.Hour,
			BlockTime:    2 * time.Hour,
			Description:  "Private leaderboard creation rate limit",
			IsActive:     true,
		},
		"profile_update": {
			EndpointType: "profile_update",
			MaxRequests:  10,
			WindowSize:   time.Hour,
			BlockTime:    30 * time.Minute,
			Description:  "Preference update rate limit",
			IsActive:     true,
		},
		"api_general": {
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "General API rate limit per IP",
			IsActive:     true,
		},
	}
}

// IsAllowed checks and consumes one request from the identifier's window.
// A missing or inactive config allows the request.
func (svc *RateLimitService) IsAllowed(identifier, endpointType string) (bool, *dto.RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists || !config.IsActive {
		return true, &dto.RateLimitInfo{Allowed: true, Remaining: -1}, nil
	}

	ctx := context.Background()
	now := time.Now()

	blockKey := fmt.Sprintf("ratelimit:block:%s:%s", endpointType, identifier)
	ttl, err := svc.redisSvc.TTL(ctx, blockKey)
	if err != nil {
		return false, nil, err
	}
	if ttl > 0 {
		blockedUntil := now.Add(ttl)
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	countKey := fmt.Sprintf("ratelimit:count:%s:%s", endpointType, identifier)
	count, err := svc.redisSvc.Increment(ctx, countKey)
	if err != nil {
		return false, nil, err
	}
	if count == 1 {
		if err := svc.redisSvc.Expire(ctx, countKey, config.WindowSize); err != nil {
			return false, nil, err
		}
	}

	if count > int64(config.MaxRequests) {
		if err := svc.redisSvc.Set(ctx, blockKey, []byte("1"), config.BlockTime); err != nil {
			return false, nil, err
		}

		blockedUntil := now.Add(config.BlockTime)
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	windowTTL, err := svc.redisSvc.TTL(ctx, countKey)
	if err != nil || windowTTL <= 0 {
		windowTTL = config.WindowSize
	}
	resetTime := now.Add(windowTTL)

	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - int(count),
		ResetTime: &resetTime,
	}, nil
}

// RateLimit creates a rate limiting middleware for specific endpoint types
func (svc *RateLimitService) RateLimit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := svc.getIdentifier(c, endpointType)

		allowed, info, err := svc.IsAllowed(identifier, endpointType)
		if err != nil {
			log.Printf("Rate limit check error for %s (%s): %v", endpointType, identifier, err)
			// Continue with request on error to avoid blocking users due to system issues
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, endpointType, info)
		}

		return c.Next()
	}
}

// IPRateLimit applies general rate limiting by IP address
func (svc *RateLimitService) IPRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := getClientIP(c)

		allowed, info, err := svc.IsAllowed(ip, "api_general")
		if err != nil {
			log.Printf("IP rate limit check error for %s: %v", ip, err)
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, "api_general", info)
		}

		return c.Next()
	}
}

func (svc *RateLimitService) getIdentifier(c *fiber.Ctx, endpointType string) string {
	switch endpointType {
	case "login", "register":
		email := svc.getEmailFromRequest(c)
		if email != "" {
			return fmt.Sprintf("%s:%s", getClientIP(c), email)
		}
		return getClientIP(c)

	case "practice_submit", "bonus_xp", "leaderboard_invite", "leaderboard_create", "profile_update":
		if identity, ok := c.Locals(shared.Identity).(string); ok && identity != "" {
			return identity
		}
		return getClientIP(c)

	default:
		return getClientIP(c)
	}
}

func (svc *RateLimitService) getEmailFromRequest(c *fiber.Ctx) string {
	var reqBody map[string]interface{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&reqBody); err == nil {
			if email, exists := reqBody["email"]; exists {
				if emailStr, ok := email.(string); ok {
					return emailStr
				}
			}
			if emailOrUsername, exists := reqBody["email_or_username"]; exists {
				if emailStr, ok := emailOrUsername.(string); ok {
					return emailStr
				}
			}
		}
	}
	return ""
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}

	if info.BlockedUntil != nil {
		retryAfter := int(time.Until(*info.BlockedUntil).Seconds())
		if retryAfter > 0 {
			c.Set("Retry-After", strconv.Itoa(retryAfter))
		}
	}
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, endpointType string, info *dto.RateLimitInfo) error {
	message := svc.getRateLimitMessage(endpointType)

	response := map[string]interface{}{
		"error":   "Rate limit exceeded",
		"message": message,
	}

	if info.BlockedUntil != nil {
		response["blocked_until"] = info.BlockedUntil.Unix()
		response["retry_after"] = int(time.Until(*info.BlockedUntil).Seconds())
	}

	return shared.ResponseJSON(c, http.StatusTooManyRequests, message, response)
}

func (svc *RateLimitService) getRateLimitMessage(endpointType string) string {
	messages := map[string]string{
		"login":              "Too many login attempts. Please try again later.",
		"register":           "Too many registration attempts. Please try again later.",
		"username_check":     "Too many username checks. Please try again later.",
		"practice_submit":    "Too many answers submitted. Please take a break.",
		"bonus_xp":           "Too many bonus XP requests. Please try again later.",
		"leaderboard_invite": "Too many invites sent. Please try again later.",
		"leaderboard_create": "Too many leaderboards created. Please try again later.",
		"profile_update":     "Too many preference updates. Please try again later.",
		"api_general":        "Too many requests. Please slow down.",
	}

	if message, exists := messages[endpointType]; exists {
		return message
	}

	return "Too many requests. Please try again later."
}

func getClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		return cfIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}
