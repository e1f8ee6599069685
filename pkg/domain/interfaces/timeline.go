package interfaces

import (
	"context"

	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// TimelineRepository defines the interface for the append-only audit log.
// There is deliberately no update or single-entry delete: entries are
// immutable once appended.
type TimelineRepository interface {
	// Append appends an entry to a parent's timeline
	Append(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error)

	// List retrieves a parent's timeline in append order
	List(ctx context.Context, kind types.ParentKind, parentID int64) ([]*model.TimelineEntry, error)

	// DeleteByParent deletes a parent's whole timeline (admin-initiated
	// breach deletion cascade only)
	DeleteByParent(ctx context.Context, kind types.ParentKind, parentID int64) error
}
