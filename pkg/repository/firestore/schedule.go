package firestore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/firestore"
)

type scheduleRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newScheduleRepository(client *firestore.Client) *scheduleRepository {
	return &scheduleRepository{
		client: client,
	}
}

func (r *scheduleRepository) eventsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_scheduled_events"
	}
	return "scheduled_events"
}

func (r *scheduleRepository) Create(ctx context.Context, e *model.ScheduledEvent) (*model.ScheduledEvent, error) {
	created := *e
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt = time.Now().UTC()
	created.ExecutedAt = nil

	if _, err := r.client.Collection(r.eventsCollection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create scheduled event", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *scheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*model.ScheduledEvent, error) {
	iter := r.client.Collection(r.eventsCollection()).
		Where("ExecutedAt", "==", nil).
		Documents(ctx)
	defer iter.Stop()

	var due []*model.ScheduledEvent
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate scheduled events")
		}

		var e model.ScheduledEvent
		if err := docSnap.DataTo(&e); err != nil {
			return nil, goerr.Wrap(err, "failed to decode scheduled event", goerr.V("doc_id", docSnap.Ref.ID))
		}

		// RunAt filtering happens client-side to avoid a composite index
		if e.Due(now) {
			due = append(due, &e)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].RunAt.Equal(due[j].RunAt) {
			return due[i].ID < due[j].ID
		}
		return due[i].RunAt.Before(due[j].RunAt)
	})

	return due, nil
}

func (r *scheduleRepository) MarkExecuted(ctx context.Context, id string, at time.Time) error {
	docRef := r.client.Collection(r.eventsCollection()).Doc(id)

	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "ExecutedAt", Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "scheduled event not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to mark scheduled event executed", goerr.V("id", id))
	}

	return nil
}
