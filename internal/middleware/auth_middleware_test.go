package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"study-deck/internal/domain"
	"study-deck/internal/dto"
	"study-deck/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ManualMockAuthService for testing middleware.
type ManualMockAuthService struct {
	VerifyFunc func(ctx context.Context, tokenString string) (*domain.Identity, error)
}

func (m *ManualMockAuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.Identity, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, tokenString)
	}
	return nil, errors.New("VerifyFunc not set on mock")
}

// ManualMockProfileService only implements what the middleware calls.
type ManualMockProfileService struct {
	EnsureFunc func(ctx context.Context, identity domain.Identity) (*domain.Profile, error)
}

func (m *ManualMockProfileService) EnsureProfile(ctx context.Context, identity domain.Identity) (*domain.Profile, error) {
	return m.EnsureFunc(ctx, identity)
}
func (m *ManualMockProfileService) GetProfile(context.Context, string) (*domain.Profile, error) {
	panic("not implemented in mock")
}
func (m *ManualMockProfileService) GetMe(context.Context, string) (*dto.ProfileResponse, error) {
	panic("not implemented in mock")
}
func (m *ManualMockProfileService) IsAdmin(context.Context, string) (bool, error) {
	panic("not implemented in mock")
}
func (m *ManualMockProfileService) PromoteAdmin(context.Context, string) (*domain.Profile, error) {
	panic("not implemented in mock")
}
func (m *ManualMockProfileService) Invalidate(context.Context, string) {}

const testUserID = "7f1c2b9e-6a55-4c1b-9d36-0b3f6b2d8f10"

func newAuthApp(authSvc *ManualMockAuthService, profileSvc *ManualMockProfileService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	api := app.Group("/api", middleware.Protected(authSvc, profileSvc))
	api.Get("/whoami", func(c *fiber.Ctx) error {
		profile := c.Locals(middleware.ProfileKey).(*domain.Profile)
		return c.JSON(fiber.Map{"user_id": middleware.UserID(c), "role": profile.Role})
	})
	api.Get("/admin", middleware.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("welcome")
	})
	return app
}

func validAuth() *ManualMockAuthService {
	return &ManualMockAuthService{VerifyFunc: func(_ context.Context, token string) (*domain.Identity, error) {
		if token != "good-token" {
			return nil, errors.New("bad signature")
		}
		return &domain.Identity{UserID: testUserID, Email: "learner@example.com"}, nil
	}}
}

func profileWithRole(role domain.Role) *ManualMockProfileService {
	return &ManualMockProfileService{EnsureFunc: func(_ context.Context, identity domain.Identity) (*domain.Profile, error) {
		return &domain.Profile{ID: identity.UserID, Email: identity.Email, Role: role}, nil
	}}
}

func decodeError(t *testing.T, body io.Reader) middleware.ErrorResponse {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestProtected(t *testing.T) {
	tests := []struct {
		name         string
		authHeader   string
		expectedCode string
		status       int
	}{
		{name: "missing header", authHeader: "", expectedCode: "MISSING_AUTH_HEADER", status: fiber.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic abc", expectedCode: "INVALID_AUTH_SCHEME", status: fiber.StatusUnauthorized},
		{name: "empty token", authHeader: "Bearer ", expectedCode: "EMPTY_TOKEN", status: fiber.StatusUnauthorized},
		{name: "invalid token", authHeader: "Bearer forged", expectedCode: "INVALID_TOKEN", status: fiber.StatusUnauthorized},
	}

	app := newAuthApp(validAuth(), profileWithRole(domain.RoleUser))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/api/whoami", nil)
			if tt.authHeader != "" {
				req.Header.Set(middleware.AuthorizationHeader, tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.expectedCode, decodeError(t, resp.Body).Code)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/api/whoami", nil)
		req.Header.Set(middleware.AuthorizationHeader, "Bearer good-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, testUserID, body["user_id"])
		assert.Equal(t, "user", body["role"])
	})
}

func TestProtected_ProfileFailure(t *testing.T) {
	profiles := &ManualMockProfileService{EnsureFunc: func(context.Context, domain.Identity) (*domain.Profile, error) {
		return nil, domain.NewInternalError("Failed to load profile", errors.New("db down"))
	}}
	app := newAuthApp(validAuth(), profiles)

	req := httptest.NewRequest(fiber.MethodGet, "/api/whoami", nil)
	req.Header.Set(middleware.AuthorizationHeader, "Bearer good-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp.Body).Code)
}

func TestRequireAdmin(t *testing.T) {
	t.Run("regular user", func(t *testing.T) {
		app := newAuthApp(validAuth(), profileWithRole(domain.RoleUser))
		req := httptest.NewRequest(fiber.MethodGet, "/api/admin", nil)
		req.Header.Set(middleware.AuthorizationHeader, "Bearer good-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp.Body).Code)
	})

	t.Run("admin", func(t *testing.T) {
		app := newAuthApp(validAuth(), profileWithRole(domain.RoleAdmin))
		req := httptest.NewRequest(fiber.MethodGet, "/api/admin", nil)
		req.Header.Set(middleware.AuthorizationHeader, "Bearer good-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "welcome", string(body))
	})
}
