package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

type documentRepository struct {
	mu        sync.RWMutex
	documents map[string]*model.Document
}

func newDocumentRepository() *documentRepository {
	return &documentRepository{
		documents: make(map[string]*model.Document),
	}
}

func copyDocument(d *model.Document) *model.Document {
	copied := *d
	copied.Metadata = copyStringMap(d.Metadata)
	return &copied
}

func (r *documentRepository) Create(ctx context.Context, d *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyDocument(d)
	if created.ID == "" {
		created.ID = model.NewDocumentID()
	}
	created.CreatedAt = time.Now().UTC()

	r.documents[created.ID] = created
	return copyDocument(created), nil
}

func (r *documentRepository) Get(ctx context.Context, id string) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.documents[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "document not found", goerr.V("id", id))
	}
	return copyDocument(d), nil
}

func (r *documentRepository) ListByParent(ctx context.Context, kind types.ParentKind, parentID int64) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Document
	for _, d := range r.documents {
		if d.ParentKind == kind && d.ParentID == parentID {
			result = append(result, copyDocument(d))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *documentRepository) DeleteByParent(ctx context.Context, kind types.ParentKind, parentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, d := range r.documents {
		if d.ParentKind == kind && d.ParentID == parentID {
			delete(r.documents, id)
		}
	}
	return nil
}
