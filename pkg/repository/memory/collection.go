package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
)

type collectionRepository struct {
	mu          sync.RWMutex
	collections map[int64]*model.Collection
	nextID      int64
}

func newCollectionRepository() *collectionRepository {
	return &collectionRepository{
		collections: make(map[int64]*model.Collection),
		nextID:      1,
	}
}

func copyCollection(c *model.Collection) *model.Collection {
	copied := &model.Collection{
		ID:           c.ID,
		Title:        c.Title,
		Stage:        c.Stage,
		StageStatus:  c.StageStatus,
		Metadata:     copyStringMap(c.Metadata),
		Stakeholders: copyStringMap(c.Stakeholders),
		CurrentPTA:   c.CurrentPTA,
		CurrentPIA:   c.CurrentPIA,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.ArchivedAt != nil {
		t := *c.ArchivedAt
		copied.ArchivedAt = &t
	}
	return copied
}

func (r *collectionRepository) Create(ctx context.Context, c *model.Collection) (*model.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyCollection(c)
	created.ID = r.nextID
	r.nextID++

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.collections[created.ID] = created
	return copyCollection(created), nil
}

func (r *collectionRepository) Get(ctx context.Context, id int64) (*model.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.collections[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "collection not found", goerr.V("id", id))
	}
	return copyCollection(c), nil
}

func (r *collectionRepository) List(ctx context.Context, opts ...interfaces.ListCollectionOption) ([]*model.Collection, error) {
	var cfg interfaces.ListCollectionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Collection
	for _, c := range r.collections {
		if cfg.Stage != nil && c.Stage != *cfg.Stage {
			continue
		}
		result = append(result, copyCollection(c))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *collectionRepository) Update(ctx context.Context, c *model.Collection) (*model.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.collections[c.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "collection not found", goerr.V("id", c.ID))
	}

	updated := copyCollection(c)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.collections[c.ID] = updated
	return copyCollection(updated), nil
}
