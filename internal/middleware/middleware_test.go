package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seller-dashboard/internal/config"
	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/middleware"
	"seller-dashboard/internal/service/auth"
)

func newAuthApp(t *testing.T) (*fiber.App, auth.Service) {
	t.Helper()

	authService := auth.NewService(&config.Config{JWTSecret: "test-secret", JWTAccessExpiry: time.Hour})
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/me",
		middleware.AuthRequired(authService),
		middleware.RequireAnyRole(domain.RoleAuthenticated, domain.RoleServiceRole),
		func(c *fiber.Ctx) error {
			return c.JSON(middleware.GetAccount(c))
		},
	)
	return app, authService
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error.Code
}

func TestAuthRequired(t *testing.T) {
	app, authService := newAuthApp(t)
	account := domain.Account{ID: uuid.New(), Email: "seller@example.com"}

	t.Run("Bearer Token", func(t *testing.T) {
		token, err := authService.IssueAccessToken(account, time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got domain.Account
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, account.ID, got.ID)
		assert.Equal(t, domain.RoleAuthenticated, got.Role)
	})

	t.Run("Query Token", func(t *testing.T) {
		token, err := authService.IssueAccessToken(account, time.Minute)
		require.NoError(t, err)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Missing Header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Wrong Role", func(t *testing.T) {
		token, err := authService.IssueAccessToken(domain.Account{ID: uuid.New(), Role: domain.RoleAnon}, time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
	})
}

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not authenticated", domain.ErrNotAuthenticated, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"validation", domain.InvalidInput("title is required"), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"backend", domain.Backend("count notifications", errors.New("timeout")), http.StatusBadGateway, "BACKEND_ERROR"},
		{"fiber", fiber.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, errorCode(t, resp))
		})
	}
}
