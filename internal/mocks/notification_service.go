package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/realtime"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) List(ctx context.Context, acct *domain.Account, opts domain.ListOptions) ([]domain.Notification, error) {
	args := m.Called(ctx, acct, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationService) GetByID(ctx context.Context, acct *domain.Account, id uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, acct, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) Create(ctx context.Context, acct *domain.Account, input domain.CreateNotificationInput) (*domain.Notification, error) {
	args := m.Called(ctx, acct, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) MarkRead(ctx context.Context, acct *domain.Account, id uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, acct, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) MarkManyRead(ctx context.Context, acct *domain.Account, ids []uuid.UUID) ([]domain.Notification, error) {
	args := m.Called(ctx, acct, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationService) MarkAllRead(ctx context.Context, acct *domain.Account) (int64, error) {
	args := m.Called(ctx, acct)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) Delete(ctx context.Context, acct *domain.Account, id uuid.UUID) error {
	args := m.Called(ctx, acct, id)
	return args.Error(0)
}

func (m *NotificationService) DeleteMany(ctx context.Context, acct *domain.Account, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, acct, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) DeleteAll(ctx context.Context, acct *domain.Account) (int64, error) {
	args := m.Called(ctx, acct)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) Count(ctx context.Context, acct *domain.Account, opts domain.CountOptions) (int64, error) {
	args := m.Called(ctx, acct, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) Subscribe(ctx context.Context, acct *domain.Account) (*realtime.Subscription, error) {
	args := m.Called(ctx, acct)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*realtime.Subscription), args.Error(1)
}

func (m *NotificationService) InvalidateOnChange(ctx context.Context) {
	m.Called(ctx)
}
