package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"seller-dashboard/internal/domain"
)

const listenerPingInterval = 90 * time.Second

// Listener relays Postgres NOTIFY payloads from the notifications trigger into a Hub.
type Listener struct {
	dsn          string
	channel      string
	hub          *Hub
	minReconnect time.Duration
	maxReconnect time.Duration
}

func NewListener(dsn, channel string, hub *Hub, minReconnect, maxReconnect time.Duration) *Listener {
	return &Listener{
		dsn:          dsn,
		channel:      channel,
		hub:          hub,
		minReconnect: minReconnect,
		maxReconnect: maxReconnect,
	}
}

// Run listens until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			log.Printf("Change feed listener %s: %v", listenerEventName(ev), err)
		case pq.ListenerEventReconnected:
			log.Printf("Change feed listener reconnected")
		}
	})
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}
	log.Printf("Listening for changes on %s", l.channel)

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				// connection was re-established; events in between are lost
				l.hub.Publish(domain.ChangeEvent{Op: domain.ChangeUpdate, At: time.Now()})
				continue
			}
			ev, err := DecodeChange(n.Extra)
			if err != nil {
				log.Printf("Skipping change payload: %v", err)
				continue
			}
			l.hub.Publish(ev)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				log.Printf("Change feed listener ping failed: %v", err)
			}
		}
	}
}

// DecodeChange parses a trigger payload.
func DecodeChange(payload string) (domain.ChangeEvent, error) {
	var ev domain.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return domain.ChangeEvent{}, fmt.Errorf("invalid change payload: %w", err)
	}
	if !ev.Op.IsValid() {
		return domain.ChangeEvent{}, fmt.Errorf("invalid change op %q", ev.Op)
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	return ev, nil
}

func listenerEventName(ev pq.ListenerEventType) string {
	switch ev {
	case pq.ListenerEventConnected:
		return "connected"
	case pq.ListenerEventDisconnected:
		return "disconnected"
	case pq.ListenerEventReconnected:
		return "reconnected"
	case pq.ListenerEventConnectionAttemptFailed:
		return "connection attempt failed"
	}
	return "unknown"
}
