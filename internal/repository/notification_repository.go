package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"seller-dashboard/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, opts domain.ListOptions) ([]domain.Notification, error)
	CountByUser(ctx context.Context, userID uuid.UUID, opts domain.CountOptions) (int64, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error)
	MarkManyAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (int64, error)
	DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

const notificationColumns = `id, user_id, type, title, message, link, read, created_at`

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create leaves created_at to the database unless the caller set it.
func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, link, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
		RETURNING created_at`

	var createdAt *time.Time
	if !notif.CreatedAt.IsZero() {
		createdAt = &notif.CreatedAt
	}

	return r.withAccount(ctx, notif.UserID, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, query,
			notif.ID, notif.UserID, notif.Type, notif.Title, notif.Message, notif.Link, notif.Read, createdAt,
		).Scan(&notif.CreatedAt)
	})
}

func (r *notificationRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1 AND user_id = $2`

	err := r.withAccount(ctx, userID, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &notif, query, id, userID)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts domain.ListOptions) ([]domain.Notification, error) {
	opts.Normalize()

	where, args := userFilter(userID, opts.Type, opts.UnreadOnly)
	args = append(args, opts.Limit, opts.Offset)

	query := fmt.Sprintf(`
		SELECT %s FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, notificationColumns, where, len(args)-1, len(args))

	notifications := []domain.Notification{}
	err := r.withAccount(ctx, userID, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &notifications, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) CountByUser(ctx context.Context, userID uuid.UUID, opts domain.CountOptions) (int64, error) {
	where, args := userFilter(userID, opts.Type, opts.UnreadOnly)

	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE ` + where
	err := r.withAccount(ctx, userID, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &count, query, args...)
	})
	return count, err
}

// MarkAsRead does not filter on read = false so that repeating it returns the row.
func (r *notificationRepository) MarkAsRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	query := `
		UPDATE notifications SET read = true
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns

	err := r.withAccount(ctx, userID, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &notif, query, id, userID)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) MarkManyAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Notification, error) {
	query := `
		UPDATE notifications SET read = true
		WHERE id = ANY($1::uuid[]) AND user_id = $2
		RETURNING ` + notificationColumns

	notifications := []domain.Notification{}
	err := r.withAccount(ctx, userID, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &notifications, query, pq.Array(uuidStrings(ids)), userID)
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`
	return r.exec(ctx, userID, query, userID)
}

func (r *notificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	return r.exec(ctx, userID, query, id, userID)
}

func (r *notificationRepository) DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	query := `DELETE FROM notifications WHERE id = ANY($1::uuid[]) AND user_id = $2`
	return r.exec(ctx, userID, query, pq.Array(uuidStrings(ids)), userID)
}

func (r *notificationRepository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM notifications WHERE user_id = $1`
	return r.exec(ctx, userID, query, userID)
}

func (r *notificationRepository) exec(ctx context.Context, userID uuid.UUID, query string, args ...any) (int64, error) {
	var rows int64
	err := r.withAccount(ctx, userID, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return rows, nil
}

// ClaimSetting is the session setting the row-level policy compares user_id
// against.
const ClaimSetting = "request.jwt.claim.sub"

// withAccount runs fn in a transaction whose ClaimSetting is the account id,
// so queries keep working when row-level security is on.
func (r *notificationRepository) withAccount(ctx context.Context, userID uuid.UUID, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT set_config($1, $2, true)`, ClaimSetting, userID.String()); err != nil {
		return fmt.Errorf("failed to set account claim: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func userFilter(userID uuid.UUID, notifType *domain.NotificationType, unreadOnly bool) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}

	if notifType != nil {
		args = append(args, string(*notifType))
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}
	if unreadOnly {
		clauses = append(clauses, "read = false")
	}

	return strings.Join(clauses, " AND "), args
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
