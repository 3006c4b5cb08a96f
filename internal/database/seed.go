package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/repository"
)

type demoNotification struct {
	Type    domain.NotificationType
	Title   string
	Message string
	Link    string
}

var demoNotifications = []demoNotification{
	{domain.NotifOrder, "New order received", "Order #1042 was placed for 3 items", "/orders/1042"},
	{domain.NotifProduct, "Low stock", "Ceramic mug is down to 4 units", "/products"},
	{domain.NotifCustomer, "New review", "A customer left a 5 star review", "/customers"},
	{domain.NotifSystem, "Payout scheduled", "", ""},
	{domain.NotifOrder, "Order cancelled", "Order #1038 was cancelled by the buyer", "/orders/1038"},
	{domain.NotifCustomer, "Customer question", "Is the linen shirt available in XL?", "/customers"},
	{domain.NotifProduct, "Listing approved", "", "/products"},
	{domain.NotifSystem, "Maintenance window", "The dashboard will be read-only on Sunday 02:00 UTC", ""},
}

// SeedSpacing is the gap between consecutive demo created_at values.
const SeedSpacing = 37 * time.Minute

// DemoNotifications builds count demo rows for the account, newest first,
// spaced backwards from now. Every third row is already read.
func DemoNotifications(userID uuid.UUID, count int, now time.Time) []domain.Notification {
	out := make([]domain.Notification, 0, count)
	for i := 0; i < count; i++ {
		demo := demoNotifications[i%len(demoNotifications)]

		notif := domain.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      demo.Type,
			Title:     demo.Title,
			Read:      i%3 == 2,
			CreatedAt: now.Add(-time.Duration(i) * SeedSpacing),
		}
		if demo.Message != "" {
			msg := demo.Message
			notif.Message = &msg
		}
		if demo.Link != "" {
			link := demo.Link
			notif.Link = &link
		}
		out = append(out, notif)
	}
	return out
}

func Seed(ctx context.Context, repo repository.NotificationRepository, userID uuid.UUID, count int, now time.Time) (int, error) {
	for i, notif := range DemoNotifications(userID, count, now) {
		if err := repo.Create(ctx, &notif); err != nil {
			return i, fmt.Errorf("failed to seed notification %d: %w", i, err)
		}
	}
	return count, nil
}
