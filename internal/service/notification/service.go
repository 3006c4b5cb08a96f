package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/realtime"
	"seller-dashboard/internal/repository"
)

type Service interface {
	List(ctx context.Context, acct *domain.Account, opts domain.ListOptions) ([]domain.Notification, error)
	GetByID(ctx context.Context, acct *domain.Account, id uuid.UUID) (*domain.Notification, error)
	Create(ctx context.Context, acct *domain.Account, input domain.CreateNotificationInput) (*domain.Notification, error)
	MarkRead(ctx context.Context, acct *domain.Account, id uuid.UUID) (*domain.Notification, error)
	MarkManyRead(ctx context.Context, acct *domain.Account, ids []uuid.UUID) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, acct *domain.Account) (int64, error)
	Delete(ctx context.Context, acct *domain.Account, id uuid.UUID) error
	DeleteMany(ctx context.Context, acct *domain.Account, ids []uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context, acct *domain.Account) (int64, error)
	Count(ctx context.Context, acct *domain.Account, opts domain.CountOptions) (int64, error)
	Subscribe(ctx context.Context, acct *domain.Account) (*realtime.Subscription, error)

	InvalidateOnChange(ctx context.Context)
}

type Options struct {
	Scope         realtime.Scope
	CountCacheTTL time.Duration
}

type service struct {
	notifRepo repository.NotificationRepository
	hub       *realtime.Hub
	redis     *redis.Client
	opts      Options
}

func NewService(notifRepo repository.NotificationRepository, hub *realtime.Hub, redis *redis.Client, opts Options) Service {
	if opts.CountCacheTTL <= 0 {
		opts.CountCacheTTL = 5 * time.Minute
	}
	return &service{
		notifRepo: notifRepo,
		hub:       hub,
		redis:     redis,
		opts:      opts,
	}
}

func (s *service) List(ctx context.Context, acct *domain.Account, opts domain.ListOptions) ([]domain.Notification, error) {
	if !acct.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	opts.Normalize()

	notifications, err := s.notifRepo.ListByUser(ctx, acct.ID, opts)
	if err != nil {
		return nil, domain.Backend("list notifications", err)
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, nil
}

func (s *service) GetByID(ctx context.Context, acct *domain.Account, id uuid.UUID) (*domain.Notification, error) {
	if !acct.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	notif, err := s.notifRepo.GetByID(ctx, acct.ID, id)
	if err != nil {
		return nil, domain.Backend("get notification", err)
	}
	if notif == nil {
		return nil, domain.ErrNotFound
	}
	return notif, nil
}

func (s *service) Create(ctx context.Context, acct *domain.Account, input domain.CreateNotificationInput) (*domain.Notification, error) {
	if !acct.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	notif := &domain.Notification{
		ID:      uuid.New(),
		UserID:  acct.ID,
		Type:    input.Type,
		Title:   input.Title,
		Message: input.Message,
		Link:    input.Link,
		Read:    false,
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, domain.Backend("create notification", err)
	}
	s.invalidateCount(ctx, acct.ID)

	return notif, nil
}

func (s *service) MarkRead(ctx context.Context, acct *domain.Account, id uuid.UUID) (*domain.Notification, error) {
	if !acct.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	notif, err := s.notifRepo.MarkAsRead(ctx, acct.ID, id)
	if err != nil {
		return nil, domain.Backend("mark notification read", err)
	}
	if notif == nil {
		return nil, domain.ErrNotFound
	}
	s.invalidateCount(ctx, acct.ID)

	return notif, nil
}

func (s *service) MarkManyRead(ctx context.Context, acct *domain.Account, ids []uuid.UUID) ([]domain.Notification, error) {
	if !acct.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	if len(ids) == 0 {
		return []domain.Notification{}, nil
	}

	notifications, err := s.notifRepo.MarkManyAsRead(ctx, acct.ID, ids)
	if err != nil {
		return nil, domain.Backend("mark notifications read", err)
	}
	s.invalidateCount(ctx, acct.ID)

	return notifications, nil
}

func (s *service) MarkAllRead(ctx context.Context, acct *domain.Account) (int64, error) {
	if !acct.IsAuthenticated() {
		return 0, domain.ErrNotAuthenticated
	}

	updated, err := s.notifRepo.MarkAllAsRead(ctx, acct.ID)
	if err != nil {
		return 0, domain.Backend("mark all notifications read", err)
	}
	s.invalidateCount(ctx, acct.ID)

	return updated, nil
}

func (s *service) Delete(ctx context.Context, acct *domain.Account, id uuid.UUID) error {
	if !acct.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	deleted, err := s.notifRepo.Delete(ctx, acct.ID, id)
	if err != nil {
		return domain.Backend("delete notification", err)
	}
	if deleted == 0 {
		return domain.ErrNotFound
	}
	s.invalidateCount(ctx, acct.ID)

	return nil
}

func (s *service) DeleteMany(ctx context.Context, acct *domain.Account, ids []uuid.UUID) (int64, error) {
	if !acct.IsAuthenticated() {
		return 0, domain.ErrNotAuthenticated
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := s.notifRepo.DeleteMany(ctx, acct.ID, ids)
	if err != nil {
		return 0, domain.Backend("delete notifications", err)
	}
	s.invalidateCount(ctx, acct.ID)

	return deleted, nil
}

func (s *service) DeleteAll(ctx context.Context, acct *domain.Account) (int64, error) {
	if !acct.IsAuthenticated() {
		return 0, domain.ErrNotAuthenticated
	}

	deleted, err := s.notifRepo.DeleteAll(ctx, acct.ID)
	if err != nil {
		return 0, domain.Backend("delete all notifications", err)
	}
	s.invalidateCount(ctx, acct.ID)

	return deleted, nil
}

func (s *service) Count(ctx context.Context, acct *domain.Account, opts domain.CountOptions) (int64, error) {
	if !acct.IsAuthenticated() {
		return 0, domain.ErrNotAuthenticated
	}

	field := countField(opts)
	if count, ok := s.cachedCount(ctx, acct.ID, field); ok {
		return count, nil
	}
	gen, cacheable := s.countGeneration(ctx, acct.ID)

	count, err := s.notifRepo.CountByUser(ctx, acct.ID, opts)
	if err != nil {
		return 0, domain.Backend("count notifications", err)
	}
	if cacheable {
		s.storeCount(ctx, acct.ID, field, count, gen)
	}

	return count, nil
}

// Subscribe opens a change feed for the account. The scope configured on the
// service decides whether other accounts' changes are delivered too.
func (s *service) Subscribe(ctx context.Context, acct *domain.Account) (*realtime.Subscription, error) {
	if !acct.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	return s.hub.Subscribe(ctx, acct.ID, s.opts.Scope), nil
}

// InvalidateOnChange drops cached counts for every account whose rows change,
// including changes made outside this service. When the feed drops events it
// drops every cached count. It blocks until ctx is done.
func (s *service) InvalidateOnChange(ctx context.Context) {
	if s.redis == nil {
		return
	}

	sub := s.hub.Subscribe(ctx, uuid.Nil, realtime.ScopeTable)
	defer sub.Close()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			s.invalidateCount(ctx, ev.UserID)
		case <-sub.Overflow():
			log.Printf("Change feed overflowed, dropping all cached counts")
			s.invalidateAllCounts(ctx)
		}
	}
}

const (
	// countGenAllKey is bumped by resyncs, which affect every account.
	countGenAllKey     = "notifications:countgen"
	countGenerationTTL = 24 * time.Hour
)

var errStaleCount = errors.New("count generation changed")

func countCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:count:%s", userID)
}

// countGenKey is bumped on every invalidation so that a count read from the
// database before the invalidation is never written back.
func countGenKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:countgen:%s", userID)
}

func countField(opts domain.CountOptions) string {
	field := "all"
	if opts.UnreadOnly {
		field = "unread"
	}
	if opts.Type != nil {
		field += ":" + string(*opts.Type)
	}
	return field
}

func (s *service) cachedCount(ctx context.Context, userID uuid.UUID, field string) (int64, bool) {
	if s.redis == nil {
		return 0, false
	}

	val, err := s.redis.HGet(ctx, countCacheKey(userID), field).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Count cache read failed for %s: %v", userID, err)
		}
		return 0, false
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// countGeneration reads the generation a count is computed under. The count
// may only be cached if the generation is unchanged when it is stored.
func (s *service) countGeneration(ctx context.Context, userID uuid.UUID) (string, bool) {
	if s.redis == nil {
		return "", false
	}

	vals, err := s.redis.MGet(ctx, countGenKey(userID), countGenAllKey).Result()
	if err != nil {
		log.Printf("Count cache generation read failed for %s: %v", userID, err)
		return "", false
	}
	return fmt.Sprint(vals...), true
}

func (s *service) storeCount(ctx context.Context, userID uuid.UUID, field string, count int64, gen string) {
	key := countCacheKey(userID)
	genKeys := []string{countGenKey(userID), countGenAllKey}

	err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
		vals, err := tx.MGet(ctx, genKeys...).Result()
		if err != nil {
			return err
		}
		if fmt.Sprint(vals...) != gen {
			return errStaleCount
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, count)
			pipe.Expire(ctx, key, s.opts.CountCacheTTL)
			return nil
		})
		return err
	}, genKeys...)

	switch {
	case err == nil, errors.Is(err, errStaleCount), errors.Is(err, redis.TxFailedErr):
	default:
		log.Printf("Count cache write failed for %s: %v", userID, err)
	}
}

func (s *service) invalidateCount(ctx context.Context, userID uuid.UUID) {
	if s.redis == nil {
		return
	}

	if userID == uuid.Nil {
		s.invalidateAllCounts(ctx)
		return
	}

	genKey := countGenKey(userID)
	pipe := s.redis.TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, countGenerationTTL)
	pipe.Del(ctx, countCacheKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Count cache invalidation failed for %s: %v", userID, err)
	}
}

// invalidateAllCounts handles resync events, which carry no owner.
func (s *service) invalidateAllCounts(ctx context.Context) {
	if err := s.redis.Incr(ctx, countGenAllKey).Err(); err != nil {
		log.Printf("Count cache invalidation failed: %v", err)
	}

	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, "notifications:count:*", 100).Result()
		if err != nil {
			log.Printf("Count cache scan failed: %v", err)
			return
		}
		if len(keys) > 0 {
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				log.Printf("Count cache invalidation failed: %v", err)
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
