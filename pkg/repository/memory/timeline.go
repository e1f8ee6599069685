package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

type timelineKey struct {
	kind     types.ParentKind
	parentID int64
}

// timelineRepository keeps per-parent slices so append order is the
// iteration order without extra sorting.
type timelineRepository struct {
	mu      sync.RWMutex
	entries map[timelineKey][]*model.TimelineEntry
}

func newTimelineRepository() *timelineRepository {
	return &timelineRepository{
		entries: make(map[timelineKey][]*model.TimelineEntry),
	}
}

func copyTimelineEntry(e *model.TimelineEntry) *model.TimelineEntry {
	copied := *e
	copied.Payload = copyStringMap(e.Payload)
	return &copied
}

func (r *timelineRepository) Append(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyTimelineEntry(e)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	key := timelineKey{kind: created.ParentKind, parentID: created.ParentID}
	r.entries[key] = append(r.entries[key], created)
	return copyTimelineEntry(created), nil
}

func (r *timelineRepository) List(ctx context.Context, kind types.ParentKind, parentID int64) ([]*model.TimelineEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[timelineKey{kind: kind, parentID: parentID}]
	result := make([]*model.TimelineEntry, 0, len(stored))
	for _, e := range stored {
		result = append(result, copyTimelineEntry(e))
	}
	return result, nil
}

func (r *timelineRepository) DeleteByParent(ctx context.Context, kind types.ParentKind, parentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, timelineKey{kind: kind, parentID: parentID})
	return nil
}
