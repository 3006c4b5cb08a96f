package handler_test

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/handler"
	"seller-dashboard/internal/middleware"
	"seller-dashboard/internal/mocks"
	"seller-dashboard/internal/realtime"
	"seller-dashboard/internal/service/notification"
)

// serveStream runs the notification routes on a real listener, since a
// streamed body never completes under app.Test.
func serveStream(t *testing.T, svc notification.Service, acct *domain.Account) string {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler, DisableStartupMessage: true})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.AccountContextKey, acct)
		return c.Next()
	})
	h := handler.NewNotificationHandler(svc)
	h.KeepAlive = 20 * time.Millisecond
	h.Mount(app.Group("/api/v1/notifications"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { app.ShutdownWithTimeout(time.Second) })

	return "http://" + ln.Addr().String() + "/api/v1/notifications/stream"
}

// readLines forwards every line of body until it is closed.
func readLines(body *bufio.Reader) <-chan string {
	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		for {
			line, err := body.ReadString('\n')
			if err != nil {
				return
			}
			lines <- strings.TrimRight(line, "\n")
		}
	}()
	return lines
}

func nextLine(t *testing.T, lines <-chan string, match func(string) bool) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream ended early")
			if match(line) {
				return line
			}
		case <-deadline:
			t.Fatal("timed out waiting for stream line")
			return ""
		}
	}
}

func TestNotificationHandler_Stream(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()
	repo := mocks.NewMemoryNotifications(hub)
	svc := notification.NewService(repo, hub, nil, notification.Options{Scope: realtime.ScopeAccount})

	a := &domain.Account{ID: uuid.New(), Role: domain.RoleAuthenticated}
	b := &domain.Account{ID: uuid.New(), Role: domain.RoleAuthenticated}

	resp, err := http.Get(serveStream(t, svc, a))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := readLines(bufio.NewReader(resp.Body))
	nextLine(t, lines, func(l string) bool { return strings.HasPrefix(l, ": connected") })
	require.Equal(t, 1, hub.Subscribers())

	other := domain.Notification{ID: uuid.New(), UserID: b.ID, Type: domain.NotifSystem, Title: "Other seller"}
	own := domain.Notification{ID: uuid.New(), UserID: a.ID, Type: domain.NotifOrder, Title: "New order"}
	repo.Insert(other, own)

	nextLine(t, lines, func(l string) bool { return l == "event: change" })
	data := nextLine(t, lines, func(l string) bool { return strings.HasPrefix(l, "data: ") })

	var ev domain.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(data, "data: ")), &ev))
	assert.Equal(t, domain.ChangeInsert, ev.Op)
	assert.Equal(t, own.ID, ev.ID, "another account's row must not be streamed")
	assert.Equal(t, a.ID, ev.UserID)

	resp.Body.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 20*time.Millisecond,
		"closing the client releases the subscription")
}

func TestNotificationHandler_StreamNoSession(t *testing.T) {
	svc := notification.NewService(mocks.NewMemoryNotifications(nil), realtime.NewHub(), nil, notification.Options{})

	status, env := do(t, newApp(svc, nil), http.MethodGet, "/api/v1/notifications/stream", "")

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "NOT_AUTHENTICATED", env.Error.Code)
}
