package middleware

import (
	"strings"

	"study-deck/internal/domain"
	"study-deck/internal/logger"
	"study-deck/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerScheme        = "Bearer"
	UserIDKey           = "userID"  // Key for storing the caller's id in fiber.Ctx locals
	ProfileKey          = "profile" // Key for storing the caller's *domain.Profile
)

// Protected requires a valid platform access token. It makes sure the caller has
// a profile and stores the user id and profile in the request locals.
func Protected(authService service.AuthService, profileService service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "MISSING_AUTH_HEADER",
				Message: "Authorization header is missing",
				Status:  fiber.StatusUnauthorized,
			})
		}
		scheme, tokenString, _ := strings.Cut(authHeader, " ")
		if !strings.EqualFold(scheme, BearerScheme) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_AUTH_SCHEME",
				Message: "Authorization scheme is not Bearer",
				Status:  fiber.StatusUnauthorized,
			})
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "EMPTY_TOKEN",
				Message: "Token is empty",
				Status:  fiber.StatusUnauthorized,
			})
		}

		identity, err := authService.VerifyAccessToken(c.UserContext(), tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Access token is invalid or expired",
				Status:  fiber.StatusUnauthorized,
			})
		}

		profile, err := profileService.EnsureProfile(c.UserContext(), *identity)
		if err != nil {
			logger.Get().Error("Failed to resolve caller profile", zap.String("userID", identity.UserID), zap.Error(err))
			return err
		}

		c.Locals(UserIDKey, identity.UserID)
		c.Locals(ProfileKey, profile)
		return c.Next()
	}
}

// RequireAdmin must run after Protected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, _ := c.Locals(ProfileKey).(*domain.Profile)
		if !profile.IsAdmin() {
			return domain.NewForbiddenError("Admin access required")
		}
		return c.Next()
	}
}

// UserID returns the caller id set by Protected, or "" on unprotected routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
