package interfaces

import (
	"context"

	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// DocumentRepository defines the interface for generated artifact records
type DocumentRepository interface {
	// Create creates a new document record
	Create(ctx context.Context, d *model.Document) (*model.Document, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*model.Document, error)

	// ListByParent retrieves all documents attached to a parent
	ListByParent(ctx context.Context, kind types.ParentKind, parentID int64) ([]*model.Document, error)

	// DeleteByParent deletes all documents attached to a parent
	DeleteByParent(ctx context.Context, kind types.ParentKind, parentID int64) error
}
