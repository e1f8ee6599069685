package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/firestore"
)

type collectionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCollectionRepository(client *firestore.Client) *collectionRepository {
	return &collectionRepository{
		client: client,
	}
}

func (r *collectionRepository) collectionsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_collections"
	}
	return "collections"
}

func (r *collectionRepository) Create(ctx context.Context, c *model.Collection) (*model.Collection, error) {
	nextID, err := nextCounterValue(ctx, r.client, r.collectionPrefix, "collection_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := *c
	created.ID = nextID
	created.CreatedAt = now
	created.UpdatedAt = now

	docID := fmt.Sprintf("%d", created.ID)
	if _, err := r.client.Collection(r.collectionsCollection()).Doc(docID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create collection", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *collectionRepository) Get(ctx context.Context, id int64) (*model.Collection, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.collectionsCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "collection not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get collection", goerr.V("id", id))
	}

	var c model.Collection
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode collection", goerr.V("id", id))
	}

	return &c, nil
}

func (r *collectionRepository) List(ctx context.Context, opts ...interfaces.ListCollectionOption) ([]*model.Collection, error) {
	var cfg interfaces.ListCollectionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	query := r.client.Collection(r.collectionsCollection()).Query
	if cfg.Stage != nil {
		query = query.Where("Stage", "==", string(*cfg.Stage))
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var collections []*model.Collection
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate collections")
		}

		var c model.Collection
		if err := docSnap.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode collection", goerr.V("doc_id", docSnap.Ref.ID))
		}

		collections = append(collections, &c)
	}

	sort.Slice(collections, func(i, j int) bool {
		return collections[i].ID < collections[j].ID
	})

	return collections, nil
}

func (r *collectionRepository) Update(ctx context.Context, c *model.Collection) (*model.Collection, error) {
	docID := fmt.Sprintf("%d", c.ID)
	docRef := r.client.Collection(r.collectionsCollection()).Doc(docID)

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "collection not found", goerr.V("id", c.ID))
		}
		return nil, goerr.Wrap(err, "failed to check collection existence", goerr.V("id", c.ID))
	}

	var existing model.Collection
	if err := docSnap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode collection", goerr.V("id", c.ID))
	}

	updated := *c
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update collection", goerr.V("id", c.ID))
	}

	return &updated, nil
}
