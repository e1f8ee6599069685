package firestore

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/firestore"
)

type notificationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newNotificationRepository(client *firestore.Client) *notificationRepository {
	return &notificationRepository{
		client: client,
	}
}

func (r *notificationRepository) notificationsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_notifications"
	}
	return "notifications"
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	created := *n
	if created.ID == "" {
		created.ID = model.NewNotificationID()
	}
	created.CreatedAt = time.Now().UTC()

	if _, err := r.client.Collection(r.notificationsCollection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create notification", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *notificationRepository) Get(ctx context.Context, id string) (*model.Notification, error) {
	docSnap, err := r.client.Collection(r.notificationsCollection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
	}

	var n model.Notification
	if err := docSnap.DataTo(&n); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("id", id))
	}

	return &n, nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	docRef := r.client.Collection(r.notificationsCollection()).Doc(n.ID)

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "notification not found", goerr.V("id", n.ID))
		}
		return nil, goerr.Wrap(err, "failed to check notification existence", goerr.V("id", n.ID))
	}

	var existing model.Notification
	if err := docSnap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("id", n.ID))
	}

	updated := *n
	updated.CreatedAt = existing.CreatedAt

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update notification", goerr.V("id", n.ID))
	}

	return &updated, nil
}

func (r *notificationRepository) ListByBreach(ctx context.Context, breachID int64) ([]*model.Notification, error) {
	iter := r.client.Collection(r.notificationsCollection()).Where("BreachID", "==", breachID).Documents(ctx)
	defer iter.Stop()

	notifications, err := r.collect(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V("breach_id", breachID))
	}
	return notifications, nil
}

func (r *notificationRepository) ListDue(ctx context.Context, now time.Time) ([]*model.Notification, error) {
	iter := r.client.Collection(r.notificationsCollection()).
		Where("Status", "==", string(types.NotificationPending)).
		Documents(ctx)
	defer iter.Stop()

	pending, err := r.collect(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list due notifications")
	}

	// Schedule filtering happens client-side to avoid a composite index
	var due []*model.Notification
	for _, n := range pending {
		if n.Due(now) {
			due = append(due, n)
		}
	}
	return due, nil
}

func (r *notificationRepository) DeleteByBreach(ctx context.Context, breachID int64) error {
	iter := r.client.Collection(r.notificationsCollection()).Where("BreachID", "==", breachID).Documents(ctx)
	defer iter.Stop()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate notifications", goerr.V("breach_id", breachID))
		}
		if _, err := docSnap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete notification", goerr.V("doc_id", docSnap.Ref.ID))
		}
	}
	return nil
}

func (r *notificationRepository) collect(iter *firestore.DocumentIterator) ([]*model.Notification, error) {
	var notifications []*model.Notification
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var n model.Notification
		if err := docSnap.DataTo(&n); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("doc_id", docSnap.Ref.ID))
		}

		notifications = append(notifications, &n)
	}

	sort.Slice(notifications, func(i, j int) bool {
		if notifications[i].ScheduleDate.Equal(notifications[j].ScheduleDate) {
			return notifications[i].ID < notifications[j].ID
		}
		return notifications[i].ScheduleDate.Before(notifications[j].ScheduleDate)
	})

	return notifications, nil
}
