package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/repository/memory"
)

func runScheduleRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("ListDue returns unexecuted events past their run time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

		past := model.NewScheduledEvent(model.EventReviewDue, now.Add(-time.Hour), map[string]string{"collection_id": "1"})
		future := model.NewScheduledEvent(model.EventArchiveDelete, now.Add(time.Hour), map[string]string{"collection_id": "1"})

		for _, ev := range []*model.ScheduledEvent{past, future} {
			_, err := repo.Schedule().Create(ctx, ev)
			gt.NoError(t, err).Required()
		}

		due, err := repo.Schedule().ListDue(ctx, now)
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(1).Required()
		gt.Value(t, due[0].ID).Equal(past.ID)
		gt.Value(t, due[0].Event).Equal(model.EventReviewDue)
		gt.Value(t, due[0].Payload["collection_id"]).Equal("1")
	})

	t.Run("MarkExecuted removes an event from future sweeps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC()

		ev, err := repo.Schedule().Create(ctx, model.NewScheduledEvent(model.EventReviewDue, now.Add(-time.Minute), nil))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Schedule().MarkExecuted(ctx, ev.ID, now))

		due, err := repo.Schedule().ListDue(ctx, now)
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(0)
	})

	t.Run("MarkExecuted fails for unknown event", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Schedule().MarkExecuted(ctx, "missing", time.Now().UTC())
		gt.Error(t, err)
	})
}

func runDocumentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	newDocument := func(parentID int64, docType types.DocumentType) *model.Document {
		return &model.Document{
			ID:         model.NewDocumentID(),
			ParentKind: types.ParentCollection,
			ParentID:   parentID,
			Type:       docType,
			Title:      "Artifact " + docType.String(),
			Metadata:   map[string]string{"collection": "test"},
			CreatedAt:  time.Now().UTC(),
		}
	}

	t.Run("ListByParent returns a parent's documents", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, docType := range []types.DocumentType{types.DocumentImplementationPlan, types.DocumentTestingPlan} {
			_, err := repo.Document().Create(ctx, newDocument(1, docType))
			gt.NoError(t, err).Required()
		}
		_, err := repo.Document().Create(ctx, newDocument(2, types.DocumentDispositionCertificate))
		gt.NoError(t, err).Required()

		docs, err := repo.Document().ListByParent(ctx, types.ParentCollection, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, docs).Length(2)
	})

	t.Run("DeleteByParent removes the archived package", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Document().Create(ctx, newDocument(3, types.DocumentDispositionCertificate))
		gt.NoError(t, err).Required()

		retrieved, err := repo.Document().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Title).Equal(created.Title)

		gt.NoError(t, repo.Document().DeleteByParent(ctx, types.ParentCollection, 3))

		docs, err := repo.Document().ListByParent(ctx, types.ParentCollection, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, docs).Length(0)
	})
}

func TestScheduleRepository_Memory(t *testing.T) {
	runScheduleRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestScheduleRepository_Firestore(t *testing.T) {
	runScheduleRepositoryTest(t, newFirestoreRepo)
}

func TestDocumentRepository_Memory(t *testing.T) {
	runDocumentRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestDocumentRepository_Firestore(t *testing.T) {
	runDocumentRepositoryTest(t, newFirestoreRepo)
}
