package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"study-deck/internal/domain"
	"study-deck/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appReturning(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestLogger())
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NewUploadLimitError(3), http.StatusForbidden, "UPLOAD_LIMIT_REACHED"},
		{domain.NewSetNotFoundError("s1"), http.StatusNotFound, "SET_NOT_FOUND"},
		{domain.NewSessionNotFoundError("q1"), http.StatusNotFound, "SESSION_NOT_FOUND"},
		{domain.NewConflictError("done"), http.StatusConflict, "CONFLICT"},
		{domain.NewInsufficientDataError(2, 4), http.StatusUnprocessableEntity, "INSUFFICIENT_DATA"},
		{domain.NewInsufficientDistinctAnswersError("q", 1), http.StatusUnprocessableEntity, "INSUFFICIENT_DISTINCT_ANSWERS"},
		{domain.NewUnsupportedFileError("application/zip"), http.StatusBadRequest, "UNSUPPORTED_FILE"},
		{domain.NewLLMServiceError(errors.New("timeout")), http.StatusServiceUnavailable, "LLM_SERVICE_ERROR"},
		{domain.NewStorageError(errors.New("403")), http.StatusServiceUnavailable, "STORAGE_ERROR"},
		{domain.NewUnauthorizedError("no"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.NewInternalError("boom", nil), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			resp, err := appReturning(tt.err).Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body middleware.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.status, body.Status)
		})
	}
}

func TestErrorHandler_Details(t *testing.T) {
	resp, err := appReturning(domain.NewUploadLimitError(3)).Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 3, body.Details["limit"])
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	verr := domain.ValidationErrors{domain.NewMissingFieldError("title")}
	resp, err := appReturning(verr).Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "title", body.Errors[0].Field)
	assert.Equal(t, domain.CodeMissingField, body.Errors[0].Code)
}

func TestErrorHandler_FiberAndUnknownErrors(t *testing.T) {
	resp, err := appReturning(fiber.ErrRequestEntityTooLarge).Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp, err = appReturning(errors.New("surprise")).Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Message)
}
