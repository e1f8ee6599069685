package interfaces

import (
	"context"

	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// ListCollectionOption is a functional option for filtering collections in List
type ListCollectionOption func(*ListCollectionConfig)

// ListCollectionConfig holds resolved list filters
type ListCollectionConfig struct {
	Stage *types.Stage
}

// WithStage filters collections by lifecycle stage
func WithStage(stage types.Stage) ListCollectionOption {
	return func(c *ListCollectionConfig) {
		c.Stage = &stage
	}
}

// CollectionRepository defines the interface for Collection data access.
// Collections are never deleted; retirement archives them in place.
type CollectionRepository interface {
	// Create creates a new collection with auto-generated ID
	Create(ctx context.Context, c *model.Collection) (*model.Collection, error)

	// Get retrieves a collection by ID
	Get(ctx context.Context, id int64) (*model.Collection, error)

	// List retrieves collections with optional filtering
	List(ctx context.Context, opts ...ListCollectionOption) ([]*model.Collection, error)

	// Update updates an existing collection
	Update(ctx context.Context, c *model.Collection) (*model.Collection, error)
}
