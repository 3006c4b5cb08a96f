package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/surface"
)

const (
	minStreamBackoff = time.Second
	maxStreamBackoff = 30 * time.Second
)

// Stream follows the server's change feed over Server-Sent Events. Dropped
// connections are retried with backoff; after a reconnect a resync event is
// delivered because changes may have been missed.
type Stream struct {
	client *Client
	events chan domain.ChangeEvent
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe connects to the change feed. The first connection attempt is
// made synchronously so that authentication failures surface here.
func (c *Client) Subscribe(ctx context.Context) (surface.Feed, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	resp, err := c.openStream(streamCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Stream{
		client: c,
		events: make(chan domain.ChangeEvent, 8),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(streamCtx, resp)
	return s, nil
}

func (s *Stream) Events() <-chan domain.ChangeEvent {
	return s.events
}

func (s *Stream) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *Stream) run(ctx context.Context, resp *http.Response) {
	defer close(s.done)
	defer close(s.events)

	backoff := minStreamBackoff
	for {
		connected := time.Now()
		if err := s.read(ctx, resp); err != nil && ctx.Err() == nil {
			log.Printf("Notification stream interrupted: %v", err)
		}
		resp.Body.Close()

		if time.Since(connected) > maxStreamBackoff {
			backoff = minStreamBackoff
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}

			var err error
			resp, err = s.client.openStream(ctx)
			if err == nil {
				break
			}
			log.Printf("Notification stream reconnect failed: %v", err)
			backoff = min(backoff*2, maxStreamBackoff)
		}

		s.emit(ctx, domain.ChangeEvent{Op: domain.ChangeUpdate, At: time.Now()})
	}
}

// read consumes one SSE response until it ends. Only "change" events are
// forwarded; comments are keep-alives.
func (s *Stream) read(ctx context.Context, resp *http.Response) error {
	reader := bufio.NewReader(resp.Body)

	var event string
	var data strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if event == "change" && data.Len() > 0 {
				var ev domain.ChangeEvent
				if err := json.Unmarshal([]byte(data.String()), &ev); err != nil {
					log.Printf("Skipping malformed change event: %v", err)
				} else {
					s.emit(ctx, ev)
				}
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}

// emit drops the event when the buffer is full; a pending event already
// causes a full re-fetch.
func (s *Stream) emit(ctx context.Context, ev domain.ChangeEvent) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	default:
	}
}

func (c *Client) openStream(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/notifications/stream", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, fmt.Errorf("open stream: %s", resp.Status)
		}
		return nil, toDomainError(resp.StatusCode, env.Error)
	}
	return resp, nil
}
