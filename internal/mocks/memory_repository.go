package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/realtime"
	"seller-dashboard/internal/repository"
)

var _ repository.NotificationRepository = (*MemoryNotifications)(nil)

// MemoryNotifications is an in-memory NotificationRepository fake. When Hub is
// set every mutation publishes a change event, like the table trigger does.
type MemoryNotifications struct {
	mu   sync.Mutex
	rows []domain.Notification
	now  func() time.Time

	Hub *realtime.Hub
}

func NewMemoryNotifications(hub *realtime.Hub) *MemoryNotifications {
	return &MemoryNotifications{Hub: hub, now: time.Now}
}

// Insert stores rows as-is, bypassing the service. Useful for producers.
func (m *MemoryNotifications) Insert(rows ...domain.Notification) {
	for i := range rows {
		_ = m.Create(context.Background(), &rows[i])
	}
}

func (m *MemoryNotifications) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *MemoryNotifications) Create(ctx context.Context, notif *domain.Notification) error {
	m.mu.Lock()
	if notif.ID == uuid.Nil {
		notif.ID = uuid.New()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = m.now()
	}
	m.rows = append(m.rows, *notif)
	m.mu.Unlock()

	m.publish(domain.ChangeInsert, notif.ID, notif.UserID)
	return nil
}

func (m *MemoryNotifications) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.rows {
		if n.ID == id && n.UserID == userID {
			found := n
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryNotifications) ListByUser(ctx context.Context, userID uuid.UUID, opts domain.ListOptions) ([]domain.Notification, error) {
	opts.Normalize()

	m.mu.Lock()
	matched := m.filter(userID, opts.Type, opts.UnreadOnly)
	m.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if opts.Offset >= len(matched) {
		return []domain.Notification{}, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]domain.Notification{}, matched[opts.Offset:end]...), nil
}

func (m *MemoryNotifications) CountByUser(ctx context.Context, userID uuid.UUID, opts domain.CountOptions) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.filter(userID, opts.Type, opts.UnreadOnly))), nil
}

func (m *MemoryNotifications) MarkAsRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	m.mu.Lock()
	var updated *domain.Notification
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == userID {
			m.rows[i].Read = true
			row := m.rows[i]
			updated = &row
			break
		}
	}
	m.mu.Unlock()

	if updated != nil {
		m.publish(domain.ChangeUpdate, updated.ID, userID)
	}
	return updated, nil
}

func (m *MemoryNotifications) MarkManyAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Notification, error) {
	want := idSet(ids)

	m.mu.Lock()
	updated := []domain.Notification{}
	for i := range m.rows {
		if _, ok := want[m.rows[i].ID]; ok && m.rows[i].UserID == userID {
			m.rows[i].Read = true
			updated = append(updated, m.rows[i])
		}
	}
	m.mu.Unlock()

	for _, n := range updated {
		m.publish(domain.ChangeUpdate, n.ID, userID)
	}
	return updated, nil
}

func (m *MemoryNotifications) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	var changed []uuid.UUID
	for i := range m.rows {
		if m.rows[i].UserID == userID && !m.rows[i].Read {
			m.rows[i].Read = true
			changed = append(changed, m.rows[i].ID)
		}
	}
	m.mu.Unlock()

	for _, id := range changed {
		m.publish(domain.ChangeUpdate, id, userID)
	}
	return int64(len(changed)), nil
}

func (m *MemoryNotifications) Delete(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	return m.deleteWhere(userID, func(n domain.Notification) bool { return n.ID == id }), nil
}

func (m *MemoryNotifications) DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	want := idSet(ids)
	return m.deleteWhere(userID, func(n domain.Notification) bool {
		_, ok := want[n.ID]
		return ok
	}), nil
}

func (m *MemoryNotifications) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.deleteWhere(userID, func(domain.Notification) bool { return true }), nil
}

func (m *MemoryNotifications) deleteWhere(userID uuid.UUID, match func(domain.Notification) bool) int64 {
	m.mu.Lock()
	kept := m.rows[:0]
	var removed []uuid.UUID
	for _, n := range m.rows {
		if n.UserID == userID && match(n) {
			removed = append(removed, n.ID)
			continue
		}
		kept = append(kept, n)
	}
	m.rows = kept
	m.mu.Unlock()

	for _, id := range removed {
		m.publish(domain.ChangeDelete, id, userID)
	}
	return int64(len(removed))
}

// filter must be called with mu held.
func (m *MemoryNotifications) filter(userID uuid.UUID, notifType *domain.NotificationType, unreadOnly bool) []domain.Notification {
	var out []domain.Notification
	for _, n := range m.rows {
		if n.UserID != userID {
			continue
		}
		if notifType != nil && n.Type != *notifType {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (m *MemoryNotifications) publish(op domain.ChangeOp, id, userID uuid.UUID) {
	if m.Hub == nil {
		return
	}
	m.Hub.Publish(domain.ChangeEvent{Op: op, ID: id, UserID: userID, At: m.now()})
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
