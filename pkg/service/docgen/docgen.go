package docgen

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/utils/logging"
)

// Service records generated artifacts through the repository and appends
// a timeline entry on the owning record. Rendering the artifact itself is
// an external concern.
type Service struct {
	repo interfaces.Repository
}

var _ interfaces.DocumentGenerator = &Service{}

// New creates a document generator over the repository
func New(repo interfaces.Repository) *Service {
	return &Service{repo: repo}
}

// CreateDocument records the artifact and returns its ID
func (s *Service) CreateDocument(ctx context.Context, kind types.ParentKind, parentID int64, docType types.DocumentType, title string, metadata map[string]string) (string, error) {
	doc := &model.Document{
		ID:         model.NewDocumentID(),
		ParentKind: kind,
		ParentID:   parentID,
		Type:       docType,
		Title:      title,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.repo.Document().Create(ctx, doc)
	if err != nil {
		return "", goerr.Wrap(err, "failed to record document",
			goerr.V("type", docType), goerr.V("parent_id", parentID))
	}

	entry := model.NewTimelineEntry(kind, parentID, types.TimelineDocumentCreated, "", map[string]string{
		"document_id":   created.ID,
		"document_type": docType.String(),
		"title":         title,
	})
	if _, err := s.repo.Timeline().Append(ctx, entry); err != nil {
		// The document exists either way; the missing audit entry is logged,
		// not surfaced.
		logging.From(ctx).Warn("failed to append document timeline entry",
			"document_id", created.ID, "error", err.Error())
	}

	return created.ID, nil
}

// HasDocument reports whether a parent already carries a document of the
// given type. Stage processing uses this as its idempotency guard.
func (s *Service) HasDocument(ctx context.Context, kind types.ParentKind, parentID int64, docType types.DocumentType) (bool, error) {
	docs, err := s.repo.Document().ListByParent(ctx, kind, parentID)
	if err != nil {
		return false, goerr.Wrap(err, "failed to list documents", goerr.V("parent_id", parentID))
	}
	for _, d := range docs {
		if d.Type == docType {
			return true, nil
		}
	}
	return false, nil
}
