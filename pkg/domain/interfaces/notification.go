package interfaces

import (
	"context"
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/model"
)

// NotificationRepository defines the interface for Notification data access
type NotificationRepository interface {
	// Create creates a new notification
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// Get retrieves a notification by ID
	Get(ctx context.Context, id string) (*model.Notification, error)

	// Update updates an existing notification
	Update(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// ListByBreach retrieves all notifications for a breach
	ListByBreach(ctx context.Context, breachID int64) ([]*model.Notification, error)

	// ListDue retrieves pending notifications scheduled at or before now
	ListDue(ctx context.Context, now time.Time) ([]*model.Notification, error)

	// DeleteByBreach deletes all notifications attached to a breach
	// (admin-initiated breach deletion cascade)
	DeleteByBreach(ctx context.Context, breachID int64) error
}
