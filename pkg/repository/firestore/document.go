package firestore

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/firestore"
)

type documentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newDocumentRepository(client *firestore.Client) *documentRepository {
	return &documentRepository{
		client: client,
	}
}

func (r *documentRepository) documentsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_documents"
	}
	return "documents"
}

func (r *documentRepository) Create(ctx context.Context, d *model.Document) (*model.Document, error) {
	created := *d
	if created.ID == "" {
		created.ID = model.NewDocumentID()
	}
	created.CreatedAt = time.Now().UTC()

	if _, err := r.client.Collection(r.documentsCollection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create document", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *documentRepository) Get(ctx context.Context, id string) (*model.Document, error) {
	docSnap, err := r.client.Collection(r.documentsCollection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "document not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}

	var d model.Document
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", id))
	}

	return &d, nil
}

func (r *documentRepository) ListByParent(ctx context.Context, kind types.ParentKind, parentID int64) ([]*model.Document, error) {
	iter := r.client.Collection(r.documentsCollection()).
		Where("ParentKind", "==", string(kind)).
		Where("ParentID", "==", parentID).
		Documents(ctx)
	defer iter.Stop()

	var documents []*model.Document
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V("parent_id", parentID))
		}

		var d model.Document
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("doc_id", docSnap.Ref.ID))
		}

		documents = append(documents, &d)
	}

	sort.Slice(documents, func(i, j int) bool {
		if documents[i].CreatedAt.Equal(documents[j].CreatedAt) {
			return documents[i].ID < documents[j].ID
		}
		return documents[i].CreatedAt.Before(documents[j].CreatedAt)
	})

	return documents, nil
}

func (r *documentRepository) DeleteByParent(ctx context.Context, kind types.ParentKind, parentID int64) error {
	iter := r.client.Collection(r.documentsCollection()).
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
			return goerr.Wrap(err, "failed to iterate documents", goerr.V("parent_id", parentID))
		}
		if _, err := docSnap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete document", goerr.V("doc_id", docSnap.Ref.ID))
		}
	}
	return nil
}
