package interfaces

import (
	"context"

	"github.com/privsec-lab/custodian/pkg/domain/model"
)

// AssessmentRepository defines the interface for PTA/PIA persistence.
// Assessments are never deleted; a collection's current pointers select
// the active one.
type AssessmentRepository interface {
	// Create creates a new assessment
	Create(ctx context.Context, a *model.Assessment) (*model.Assessment, error)

	// Get retrieves an assessment by ID
	Get(ctx context.Context, id string) (*model.Assessment, error)

	// Update updates an existing assessment
	Update(ctx context.Context, a *model.Assessment) (*model.Assessment, error)

	// ListByCollection retrieves all assessments for a collection,
	// historical ones included
	ListByCollection(ctx context.Context, collectionID int64) ([]*model.Assessment, error)
}
