package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"seller-dashboard/internal/domain"
)

// Scope decides which change events a subscription receives.
type Scope int

const (
	// ScopeAccount delivers only events for rows owned by the subscribing account.
	ScopeAccount Scope = iota
	// ScopeTable delivers every event on the table regardless of owner.
	ScopeTable
)

func ParseScope(s string) Scope {
	if s == "table" {
		return ScopeTable
	}
	return ScopeAccount
}

func (s Scope) String() string {
	if s == ScopeTable {
		return "table"
	}
	return "account"
}

// subscriptionBuffer is small on purpose: one pending event already forces a full re-fetch.
const subscriptionBuffer = 8

// Hub fans change events from one upstream listener out to every subscriber.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a subscription for accountID. The subscription is closed
// when ctx is cancelled or when Close is called.
func (h *Hub) Subscribe(ctx context.Context, accountID uuid.UUID, scope Scope) *Subscription {
	sub := &Subscription{
		hub:       h,
		accountID: accountID,
		scope:     scope,
		events:    make(chan domain.ChangeEvent, subscriptionBuffer),
		overflow:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.closeOnce.Do(func() {
			close(sub.done)
			close(sub.events)
		})
		return sub
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub
}

// Publish delivers ev to every matching subscriber without blocking. A
// subscriber with a full buffer loses ev and is signalled on Overflow.
func (h *Hub) Publish(ev domain.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.matches(ev) {
			continue
		}
		select {
		case sub.events <- ev:
		default:
			sub.markOverflow()
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every open subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*Subscription]struct{})
	h.closed = true
	h.mu.Unlock()

	for sub := range subs {
		sub.shutdown()
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}
