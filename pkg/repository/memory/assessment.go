package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
)

type assessmentRepository struct {
	mu          sync.RWMutex
	assessments map[string]*model.Assessment
}

func newAssessmentRepository() *assessmentRepository {
	return &assessmentRepository{
		assessments: make(map[string]*model.Assessment),
	}
}

func copyAssessment(a *model.Assessment) *model.Assessment {
	copied := *a
	copied.Conditions = copyStringSlice(a.Conditions)
	return &copied
}

func (r *assessmentRepository) Create(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAssessment(a)
	if created.ID == "" {
		created.ID = model.NewAssessmentID()
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.assessments[created.ID] = created
	return copyAssessment(created), nil
}

func (r *assessmentRepository) Get(ctx context.Context, id string) (*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.assessments[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "assessment not found", goerr.V("id", id))
	}
	return copyAssessment(a), nil
}

func (r *assessmentRepository) Update(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.assessments[a.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "assessment not found", goerr.V("id", a.ID))
	}

	updated := copyAssessment(a)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.assessments[a.ID] = updated
	return copyAssessment(updated), nil
}

func (r *assessmentRepository) ListByCollection(ctx context.Context, collectionID int64) ([]*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Assessment
	for _, a := range r.assessments {
		if a.CollectionID == collectionID {
			result = append(result, copyAssessment(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
