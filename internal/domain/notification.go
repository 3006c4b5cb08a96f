package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   *string          `json:"message,omitempty" db:"message"`
	Link      *string          `json:"link,omitempty" db:"link"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifOrder    NotificationType = "order"
	NotifProduct  NotificationType = "product"
	NotifCustomer NotificationType = "customer"
	NotifSystem   NotificationType = "system"
)

// NotificationTypes lists every type in display order.
var NotificationTypes = []NotificationType{NotifOrder, NotifProduct, NotifCustomer, NotifSystem}

func (t NotificationType) IsValid() bool {
	switch t {
	case NotifOrder, NotifProduct, NotifCustomer, NotifSystem:
		return true
	}
	return false
}

type CreateNotificationInput struct {
	Type    NotificationType `json:"type" validate:"required,oneof=order product customer system"`
	Title   string           `json:"title" validate:"required"`
	Message *string          `json:"message,omitempty"`
	Link    *string          `json:"link,omitempty"`
}

func (in CreateNotificationInput) Validate() error {
	if !in.Type.IsValid() {
		return InvalidInput("type must be one of order, product, customer, system")
	}
	if strings.TrimSpace(in.Title) == "" {
		return InvalidInput("title is required")
	}
	return nil
}

type IDsInput struct {
	IDs []uuid.UUID `json:"ids"`
}
