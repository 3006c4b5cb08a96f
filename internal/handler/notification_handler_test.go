package handler_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/handler"
	"seller-dashboard/internal/middleware"
	"seller-dashboard/internal/mocks"
	"seller-dashboard/internal/realtime"
	"seller-dashboard/internal/service/notification"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		TraceID string `json:"trace_id"`
	} `json:"error"`
}

func newApp(svc notification.Service, acct *domain.Account) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		if acct != nil {
			c.Locals(middleware.AccountContextKey, acct)
		}
		return c.Next()
	})
	handler.NewNotificationHandler(svc).Mount(app.Group("/api/v1/notifications"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestNotificationHandler_List(t *testing.T) {
	acct := &domain.Account{ID: uuid.New(), Role: domain.RoleAuthenticated}

	t.Run("Success", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		orderType := domain.NotifOrder
		want := domain.ListOptions{Limit: 10, Offset: 20, Type: &orderType, UnreadOnly: true}
		rows := []domain.Notification{{ID: uuid.New(), UserID: acct.ID, Type: domain.NotifOrder, Title: "New order"}}
		svc.On("List", mock.Anything, acct, want).Return(rows, nil).Once()

		status, env := do(t, newApp(svc, acct), http.MethodGet,
			"/api/v1/notifications?limit=10&offset=20&type=order&unread_only=true", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Nil(t, env.Error)
		var got []domain.Notification
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Len(t, got, 1)
		assert.Equal(t, rows[0].ID, got[0].ID)
		svc.AssertExpectations(t)
	})

	t.Run("Invalid Type", func(t *testing.T) {
		svc := new(mocks.NotificationService)

		status, env := do(t, newApp(svc, acct), http.MethodGet, "/api/v1/notifications?type=promo", "")

		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Backend Error", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		svc.On("List", mock.Anything, acct, mock.Anything).
			Return(nil, domain.Backend("list notifications", errors.New("permission denied for table notifications"))).Once()

		status, env := do(t, newApp(svc, acct), http.MethodGet, "/api/v1/notifications", "")

		assert.Equal(t, http.StatusBadGateway, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "BACKEND_ERROR", env.Error.Code)
		assert.Equal(t, "permission denied for table notifications", env.Error.Message)
		assert.Equal(t, "null", string(env.Data))
		assert.Len(t, env.Error.TraceID, 8)
	})
}

func TestNotificationHandler_Count(t *testing.T) {
	acct := &domain.Account{ID: uuid.New(), Role: domain.RoleAuthenticated}
	svc := new(mocks.NotificationService)
	svc.On("Count", mock.Anything, acct, domain.CountOptions{UnreadOnly: true}).Return(int64(3), nil).Once()

	status, env := do(t, newApp(svc, acct), http.MethodGet, "/api/v1/notifications/count?unread_only=true", "")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"count":3}`, string(env.Data))
	svc.AssertExpectations(t)
}

func TestNotificationHandler_Get(t *testing.T) {
	acct := &domain.Account{ID: uuid.New(), Role: domain.RoleAuthenticated}

	t.Run("Not Found", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		id := uuid.New()
		svc.On("GetByID", mock.Anything, acct, id).Return(nil, domain.ErrNotFound).Once()

		status, env := do(t, newApp(svc, acct), http.MethodGet, "/api/v1/notifications/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		svc := new(mocks.NotificationService)

		status, env := do(t, newApp(svc, acct), http.MethodGet, "/api/v1/notifications/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	})
}

func TestNotificationHandler_Create(t *testing.T) {
	acct := &domain.Account{ID: uuid.New(), Role: domain.RoleAuthenticated}

	t.Run("Success", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		input := domain.CreateNotificationInput{Type: domain.NotifProduct, Title: "Low stock"}
		svc.On("Create", mock.Anything, acct, input).
			Return(&domain.Notification{ID: uuid.New(), UserID: acct.ID, Type: input.Type, Title: input.Title}, nil).Once()

		status, env := do(t, newApp(svc, acct), http.MethodPost, "/api/v1/notifications",
			`{"type":"product","title":"Low stock"}`)

		assert.Equal(t, http.StatusCreated, status)
		var got domain.Notification
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "Low stock", got.Title)
		assert.False(t, got.Read)
	})

	t.Run("Validation Error", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		svc.On("Create", mock.Anything, acct, mock.Anything).
			Return(nil, domain.InvalidInput("title is required")).Once()

		status, env := do(t, newApp(svc, acct), http.MethodPost, "/api/v1/notifications", `{"type":"order"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Equal(t, "title is required", env.Error.Message)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		svc := new(mocks.NotificationService)

		status, _ := do(t, newApp(svc, acct), http.MethodPost, "/api/v1/notifications", `{"type":`)

		assert.Equal(t, http.StatusBadRequest, status)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNotificationHandler_Mutations(t *testing.T) {
	acct := &domain.Account{ID: uuid.New(), Role: domain.RoleAuthenticated}
	id := uuid.New()

	t.Run("Mark Read", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		svc.On("MarkRead", mock.Anything, acct, id).
			Return(&domain.Notification{ID: id, UserID: acct.ID, Read: true}, nil).Once()

		status, env := do(t, newApp(svc, acct), http.MethodPatch, "/api/v1/notifications/"+id.String()+"/read", "")

		assert.Equal(t, http.StatusOK, status)
		var got domain.Notification
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.True(t, got.Read)
	})

	t.Run("Mark Many Read", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		svc.On("MarkManyRead", mock.Anything, acct, []uuid.UUID{id}).
			Return([]domain.Notification{{ID: id, Read: true}}, nil).Once()

		status, _ := do(t, newApp(svc, acct), http.MethodPost, "/api/v1/notifications/read",
			`{"ids":["`+id.String()+`"]}`)

		assert.Equal(t, http.StatusOK, status)
		svc.AssertExpectations(t)
	})

	t.Run("Mark All Read", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		svc.On("MarkAllRead", mock.Anything, acct).Return(int64(4), nil).Once()

		status, env := do(t, newApp(svc, acct), http.MethodPost, "/api/v1/notifications/read-all", "")

		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"updated":4}`, string(env.Data))
	})

	t.Run("Delete", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		svc.On("Delete", mock.Anything, acct, id).Return(nil).Once()

		status, _ := do(t, newApp(svc, acct), http.MethodDelete, "/api/v1/notifications/"+id.String(), "")

		assert.Equal(t, http.StatusOK, status)
		svc.AssertExpectations(t)
	})

	t.Run("Delete Many", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		svc.On("DeleteMany", mock.Anything, acct, []uuid.UUID{id}).Return(int64(1), nil).Once()

		status, env := do(t, newApp(svc, acct), http.MethodPost, "/api/v1/notifications/delete",
			`{"ids":["`+id.String()+`"]}`)

		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"deleted":1}`, string(env.Data))
	})

	t.Run("Delete All", func(t *testing.T) {
		svc := new(mocks.NotificationService)
		svc.On("DeleteAll", mock.Anything, acct).Return(int64(9), nil).Once()

		status, env := do(t, newApp(svc, acct), http.MethodDelete, "/api/v1/notifications", "")

		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"deleted":9}`, string(env.Data))
	})
}

func TestNotificationHandler_NoSession(t *testing.T) {
	svc := notification.NewService(mocks.NewMemoryNotifications(nil), realtime.NewHub(), nil, notification.Options{})

	status, env := do(t, newApp(svc, nil), http.MethodPost, "/api/v1/notifications/read-all", "")

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "NOT_AUTHENTICATED", env.Error.Code)
}
