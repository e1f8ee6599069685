package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
)

type scheduleRepository struct {
	mu     sync.RWMutex
	events map[string]*model.ScheduledEvent
}

func newScheduleRepository() *scheduleRepository {
	return &scheduleRepository{
		events: make(map[string]*model.ScheduledEvent),
	}
}

func copyScheduledEvent(e *model.ScheduledEvent) *model.ScheduledEvent {
	copied := *e
	copied.Payload = copyStringMap(e.Payload)
	copied.ExecutedAt = copyTimePtr(e.ExecutedAt)
	return &copied
}

func (r *scheduleRepository) Create(ctx context.Context, e *model.ScheduledEvent) (*model.ScheduledEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyScheduledEvent(e)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt = time.Now().UTC()
	created.ExecutedAt = nil

	r.events[created.ID] = created
	return copyScheduledEvent(created), nil
}

func (r *scheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*model.ScheduledEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.ScheduledEvent
	for _, e := range r.events {
		if e.Due(now) {
			result = append(result, copyScheduledEvent(e))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RunAt.Equal(result[j].RunAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].RunAt.Before(result[j].RunAt)
	})
	return result, nil
}

func (r *scheduleRepository) MarkExecuted(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.events[id]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "scheduled event not found", goerr.V("id", id))
	}
	e.ExecutedAt = &at
	return nil
}
