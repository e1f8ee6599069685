package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Notification is a scheduled or sent communication attached to a breach.
// Delivery is at-least-once: a failed send stays pending and is retried by
// the next sweep, so recipients must treat the notification ID as the
// idempotency key.
type Notification struct {
	ID           string
	BreachID     int64
	Type         types.NotificationType
	Recipients   []string `masq:"secret"`
	Template     string
	Status       types.NotificationStatus
	ScheduleDate time.Time
	SentAt       *time.Time
	CreatedAt    time.Time
}

// NewNotificationID generates a new notification ID
func NewNotificationID() string {
	return uuid.NewString()
}

// Due reports whether the notification should be dispatched at the given
// time (pending and scheduled at or before now)
func (n *Notification) Due(now time.Time) bool {
	return n.Status == types.NotificationPending && !n.ScheduleDate.After(now)
}
