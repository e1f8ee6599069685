package interfaces

import (
	"context"
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/model"
)

// ScheduleRepository defines the interface for deferred event persistence
type ScheduleRepository interface {
	// Create creates a new scheduled event
	Create(ctx context.Context, e *model.ScheduledEvent) (*model.ScheduledEvent, error)

	// ListDue retrieves unexecuted events whose run time is at or before now
	ListDue(ctx context.Context, now time.Time) ([]*model.ScheduledEvent, error)

	// MarkExecuted records that an event ran at the given time
	MarkExecuted(ctx context.Context, id string, at time.Time) error
}
