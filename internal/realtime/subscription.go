package realtime

import (
	"sync"

	"github.com/google/uuid"

	"seller-dashboard/internal/domain"
)

// Subscription is a cancellable handle on the change feed.
type Subscription struct {
	hub       *Hub
	accountID uuid.UUID
	scope     Scope

	events    chan domain.ChangeEvent
	overflow  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Events yields change events until the subscription is closed.
func (s *Subscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

// Overflow receives a value when at least one event was dropped because
// Events was full. Consumers that act on individual events must treat it as
// a resync.
func (s *Subscription) Overflow() <-chan struct{} {
	return s.overflow
}

// Done is closed once the subscription has been released.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) AccountID() uuid.UUID {
	return s.accountID
}

func (s *Subscription) Scope() Scope {
	return s.scope
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
	s.shutdown()
}

func (s *Subscription) shutdown() {
	s.closeOnce.Do(func() {
		close(s.done)
		// events is only sent to under the hub read lock.
		s.hub.mu.Lock()
		close(s.events)
		s.hub.mu.Unlock()
	})
}

func (s *Subscription) markOverflow() {
	select {
	case s.overflow <- struct{}{}:
	default:
	}
}

// Events without an owner are resync signals and reach every subscriber.
func (s *Subscription) matches(ev domain.ChangeEvent) bool {
	if s.scope == ScopeTable || ev.UserID == uuid.Nil {
		return true
	}
	return ev.UserID == s.accountID
}
