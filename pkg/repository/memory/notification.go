package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
)

type notificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*model.Notification
}

func newNotificationRepository() *notificationRepository {
	return &notificationRepository{
		notifications: make(map[string]*model.Notification),
	}
}

func copyNotification(n *model.Notification) *model.Notification {
	copied := *n
	copied.Recipients = copyStringSlice(n.Recipients)
	copied.SentAt = copyTimePtr(n.SentAt)
	return &copied
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyNotification(n)
	if created.ID == "" {
		created.ID = model.NewNotificationID()
	}
	created.CreatedAt = time.Now().UTC()

	r.notifications[created.ID] = created
	return copyNotification(created), nil
}

func (r *notificationRepository) Get(ctx context.Context, id string) (*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notifications[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "notification not found", goerr.V("id", id))
	}
	return copyNotification(n), nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.notifications[n.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "notification not found", goerr.V("id", n.ID))
	}

	updated := copyNotification(n)
	updated.CreatedAt = existing.CreatedAt

	r.notifications[n.ID] = updated
	return copyNotification(updated), nil
}

func (r *notificationRepository) ListByBreach(ctx context.Context, breachID int64) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Notification
	for _, n := range r.notifications {
		if n.BreachID == breachID {
			result = append(result, copyNotification(n))
		}
	}
	sortNotifications(result)
	return result, nil
}

func (r *notificationRepository) ListDue(ctx context.Context, now time.Time) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Notification
	for _, n := range r.notifications {
		if n.Due(now) {
			result = append(result, copyNotification(n))
		}
	}
	sortNotifications(result)
	return result, nil
}

func (r *notificationRepository) DeleteByBreach(ctx context.Context, breachID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, n := range r.notifications {
		if n.BreachID == breachID {
			delete(r.notifications, id)
		}
	}
	return nil
}

func sortNotifications(ns []*model.Notification) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].ScheduleDate.Equal(ns[j].ScheduleDate) {
			return ns[i].ID < ns[j].ID
		}
		return ns[i].ScheduleDate.Before(ns[j].ScheduleDate)
	})
}
