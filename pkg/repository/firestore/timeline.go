package firestore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"google.golang.org/api/iterator"

	"cloud.google.com/go/firestore"
)

type timelineRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTimelineRepository(client *firestore.Client) *timelineRepository {
	return &timelineRepository{
		client: client,
	}
}

func (r *timelineRepository) timelineCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_timeline"
	}
	return "timeline"
}

func (r *timelineRepository) Append(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error) {
	created := *e
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := r.client.Collection(r.timelineCollection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to append timeline entry", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *timelineRepository) List(ctx context.Context, kind types.ParentKind, parentID int64) ([]*model.TimelineEntry, error) {
	iter := r.client.Collection(r.timelineCollection()).
		Where("ParentKind", "==", string(kind)).
		Where("ParentID", "==", parentID).
		Documents(ctx)
	defer iter.Stop()

	var entries []*model.TimelineEntry
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate timeline", goerr.V("parent_id", parentID))
		}

		var e model.TimelineEntry
		if err := docSnap.DataTo(&e); err != nil {
			return nil, goerr.Wrap(err, "failed to decode timeline entry", goerr.V("doc_id", docSnap.Ref.ID))
		}

		entries = append(entries, &e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}

func (r *timelineRepository) DeleteByParent(ctx context.Context, kind types.ParentKind, parentID int64) error {
	iter := r.client.Collection(r.timelineCollection()).
		Where("ParentKind", "==", string(kind)).
		Where("ParentID", "==", parentID).
		Documents(ctx)
	defer iter.Stop()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate timeline", goerr.V("parent_id", parentID))
		}
		if _, err := docSnap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete timeline entry", goerr.V("doc_id", docSnap.Ref.ID))
		}
	}
	return nil
}
