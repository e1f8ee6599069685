package model

import (
	"time"

	"github.com/google/uuid"
)

// Well-known scheduled event names consumed by the sweep worker
const (
	EventNotificationDispatch = "notification.dispatch"
	EventReviewDue            = "review.due"
	EventArchiveDelete        = "archive.delete"
)

// ScheduledEvent is a deferred, time-triggered unit of work. The sweep
// worker executes events whose RunAt is at or before the current time and
// marks them executed exactly once per run.
type ScheduledEvent struct {
	ID         string
	Event      string
	RunAt      time.Time
	Payload    map[string]string
	ExecutedAt *time.Time
	CreatedAt  time.Time
}

// NewScheduledEvent builds a scheduled event with a fresh ID
func NewScheduledEvent(event string, runAt time.Time, payload map[string]string) *ScheduledEvent {
	return &ScheduledEvent{
		ID:      uuid.NewString(),
		Event:   event,
		RunAt:   runAt,
		Payload: payload,
	}
}

// Due reports whether the event should run at the given time
func (e *ScheduledEvent) Due(now time.Time) bool {
	return e.ExecutedAt == nil && !e.RunAt.After(now)
}
