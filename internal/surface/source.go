package surface

import (
	"context"

	"github.com/google/uuid"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/service/notification"
)

// Feed is an open change-feed handle. Events is closed once the feed ends.
type Feed interface {
	Events() <-chan domain.ChangeEvent
	Close()
}

// Source is the Access Layer as seen by a surface, already bound to one
// account.
type Source interface {
	List(ctx context.Context, opts domain.ListOptions) ([]domain.Notification, error)
	Count(ctx context.Context, opts domain.CountOptions) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id uuid.UUID) error
	Subscribe(ctx context.Context) (Feed, error)
}

type boundSource struct {
	svc  notification.Service
	acct *domain.Account
}

// Bind runs a surface in-process against svc on behalf of acct.
func Bind(svc notification.Service, acct *domain.Account) Source {
	return &boundSource{svc: svc, acct: acct}
}

func (b *boundSource) List(ctx context.Context, opts domain.ListOptions) ([]domain.Notification, error) {
	return b.svc.List(ctx, b.acct, opts)
}

func (b *boundSource) Count(ctx context.Context, opts domain.CountOptions) (int64, error) {
	return b.svc.Count(ctx, b.acct, opts)
}

func (b *boundSource) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := b.svc.MarkRead(ctx, b.acct, id)
	return err
}

func (b *boundSource) MarkAllRead(ctx context.Context) error {
	_, err := b.svc.MarkAllRead(ctx, b.acct)
	return err
}

func (b *boundSource) Delete(ctx context.Context, id uuid.UUID) error {
	return b.svc.Delete(ctx, b.acct, id)
}

func (b *boundSource) Subscribe(ctx context.Context) (Feed, error) {
	sub, err := b.svc.Subscribe(ctx, b.acct)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
