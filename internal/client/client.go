// Package client talks to the notifications HTTP API on behalf of one
// signed-in account.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/surface"
)

var _ surface.Source = (*Client)(nil)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	// streamClient has no timeout; SSE responses stay open indefinitely.
	streamClient *http.Client
}

func New(apiURL, token string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(apiURL, "/"),
		token:        token,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		streamClient: &http.Client{},
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id"`
}

// APIError is a failure the server reported without a more specific domain
// meaning.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (c *Client) List(ctx context.Context, opts domain.ListOptions) ([]domain.Notification, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("offset", strconv.Itoa(opts.Offset))
	if opts.Type != nil {
		q.Set("type", string(*opts.Type))
	}
	if opts.UnreadOnly {
		q.Set("unread_only", "true")
	}

	notifications := []domain.Notification{}
	if err := c.do(ctx, http.MethodGet, "/notifications?"+q.Encode(), nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (c *Client) Count(ctx context.Context, opts domain.CountOptions) (int64, error) {
	q := url.Values{}
	if opts.UnreadOnly {
		q.Set("unread_only", "true")
	}
	if opts.Type != nil {
		q.Set("type", string(*opts.Type))
	}

	var result struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/count?"+q.Encode(), nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications/"+id.String(), nil, &notif); err != nil {
		return nil, err
	}
	return &notif, nil
}

func (c *Client) Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	var notif domain.Notification
	if err := c.do(ctx, http.MethodPost, "/notifications", input, &notif); err != nil {
		return nil, err
	}
	return &notif, nil
}

func (c *Client) MarkRead(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPatch, "/notifications/"+id.String()+"/read", nil, nil)
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/read-all", nil, nil)
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response (%s): %w", method, path, resp.Status, err)
	}

	if env.Error != nil || resp.StatusCode >= http.StatusBadRequest {
		return toDomainError(resp.StatusCode, env.Error)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// toDomainError turns the error envelope back into the errors the service
// returned, so callers can use errors.Is and errors.As across the wire.
func toDomainError(status int, e *apiError) error {
	if e == nil {
		e = &apiError{Code: "HTTP_ERROR", Message: http.StatusText(status)}
	}

	switch e.Code {
	case "NOT_AUTHENTICATED", "UNAUTHORIZED":
		return domain.ErrNotAuthenticated
	case "NOT_FOUND":
		return domain.ErrNotFound
	case "VALIDATION_ERROR":
		return domain.InvalidInput("%s", e.Message)
	case "BACKEND_ERROR":
		return domain.Backend("api", errors.New(e.Message))
	}

	return &APIError{Status: status, Code: e.Code, Message: e.Message}
}
