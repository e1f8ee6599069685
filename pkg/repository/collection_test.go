package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/repository/firestore"
	"github.com/privsec-lab/custodian/pkg/repository/memory"
)

func newFirestoreRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	opts := []firestore.Option{
		firestore.WithCollectionPrefix(fmt.Sprintf("test_%d_", time.Now().UnixNano())),
	}
	if databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID"); databaseID != "" {
		opts = append(opts, firestore.WithDatabaseID(databaseID))
	}

	repo, err := firestore.New(context.Background(), projectID, opts...)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func runCollectionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns auto-increment ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created1, err := repo.Collection().Create(ctx, &model.Collection{
			Title:       "Employee Health Records",
			Stage:       types.StageDraft,
			StageStatus: types.StageStatusPending,
			Metadata:    map[string]string{"system_name": "HR-1"},
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created1.ID).NotEqual(int64(0))
		gt.Value(t, created1.Title).Equal("Employee Health Records")
		gt.Bool(t, created1.CreatedAt.IsZero()).False()
		gt.Bool(t, created1.UpdatedAt.IsZero()).False()

		created2, err := repo.Collection().Create(ctx, &model.Collection{
			Title: "Visitor Logs",
			Stage: types.StageDraft,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created2.ID).NotEqual(created1.ID)
	})

	t.Run("Get retrieves existing collection", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Collection().Create(ctx, &model.Collection{
			Title:        "Badge Access Records",
			Stage:        types.StagePTARequired,
			StageStatus:  types.StageStatusInProgress,
			Metadata:     map[string]string{"legal_authority": "Facilities Act"},
			Stakeholders: map[string]string{model.RoleSystemOwner: "U100"},
		})
		gt.NoError(t, err).Required()

		retrieved, err := repo.Collection().Get(ctx, created.ID)
		gt.NoError(t, err).Required()

		gt.Value(t, retrieved.ID).Equal(created.ID)
		gt.Value(t, retrieved.Stage).Equal(types.StagePTARequired)
		gt.Value(t, retrieved.StageStatus).Equal(types.StageStatusInProgress)
		gt.Value(t, retrieved.Meta("legal_authority")).Equal("Facilities Act")
		gt.Value(t, retrieved.Stakeholder(model.RoleSystemOwner)).Equal("U100")
	})

	t.Run("Get returns ErrNotFound for non-existent collection", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Collection().Get(ctx, time.Now().UnixNano())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Update persists stage and metadata changes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Collection().Create(ctx, &model.Collection{
			Title: "Payroll Records",
			Stage: types.StageDraft,
		})
		gt.NoError(t, err).Required()

		created.Stage = types.StagePTARequired
		created.StageStatus = types.StageStatusPending
		created.SetMeta("purpose_statement", "Payroll processing for all employees across every office location")

		updated, err := repo.Collection().Update(ctx, created)
		gt.NoError(t, err).Required()

		retrieved, err := repo.Collection().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Stage).Equal(types.StagePTARequired)
		gt.Value(t, retrieved.Meta("purpose_statement")).Equal(created.Meta("purpose_statement"))
		gt.Bool(t, retrieved.CreatedAt.Equal(updated.CreatedAt)).True()
	})

	t.Run("List filters by stage", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, stage := range []types.Stage{types.StageDraft, types.StageDraft, types.StageActive} {
			_, err := repo.Collection().Create(ctx, &model.Collection{
				Title: "Listed " + stage.String(),
				Stage: stage,
			})
			gt.NoError(t, err).Required()
		}

		drafts, err := repo.Collection().List(ctx, interfaces.WithStage(types.StageDraft))
		gt.NoError(t, err).Required()
		gt.Number(t, len(drafts)).Equal(2)

		all, err := repo.Collection().List(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, len(all)).Equal(3)
	})
}

func runAssessmentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns an ID when none is set", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Assessment().Create(ctx, &model.Assessment{
			CollectionID: 42,
			Kind:         types.AssessmentKindPTA,
			Status:       types.AssessmentStatusDraft,
			Reviewer:     "U200",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual("")
		gt.Bool(t, created.CreatedAt.IsZero()).False()
	})

	t.Run("Update records a review verdict", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Assessment().Create(ctx, &model.Assessment{
			CollectionID: 42,
			Kind:         types.AssessmentKindPIA,
			Status:       types.AssessmentStatusInProgress,
		})
		gt.NoError(t, err).Required()

		created.Status = types.AssessmentStatusConditionallyApproved
		created.RiskLevel = types.RiskLevelMedium
		created.Conditions = []string{"annual re-review", "encrypt at rest"}

		_, err = repo.Assessment().Update(ctx, created)
		gt.NoError(t, err).Required()

		retrieved, err := repo.Assessment().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Status).Equal(types.AssessmentStatusConditionallyApproved)
		gt.Value(t, retrieved.RiskLevel).Equal(types.RiskLevelMedium)
		gt.Array(t, retrieved.Conditions).Length(2)
	})

	t.Run("ListByCollection keeps superseded assessments", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const collectionID = int64(77)
		for _, kind := range []types.AssessmentKind{types.AssessmentKindPTA, types.AssessmentKindPTA, types.AssessmentKindPIA} {
			_, err := repo.Assessment().Create(ctx, &model.Assessment{
				CollectionID: collectionID,
				Kind:         kind,
				Status:       types.AssessmentStatusDraft,
			})
			gt.NoError(t, err).Required()
		}

		assessments, err := repo.Assessment().ListByCollection(ctx, collectionID)
		gt.NoError(t, err).Required()
		gt.Number(t, len(assessments)).Equal(3)
	})
}

func runTimelineRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("List returns entries in append order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const parentID = int64(5)
		kinds := []types.TimelineEntryType{
			types.TimelineStageStarted,
			types.TimelineStageCompleted,
			types.TimelineStageStarted,
		}
		for _, kind := range kinds {
			_, err := repo.Timeline().Append(ctx, model.NewTimelineEntry(
				types.ParentCollection, parentID, kind, "U1", map[string]string{"stage": "draft"}))
			gt.NoError(t, err).Required()
		}

		entries, err := repo.Timeline().List(ctx, types.ParentCollection, parentID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(3).Required()
		for i, kind := range kinds {
			gt.Value(t, entries[i].Type).Equal(kind)
		}
	})

	t.Run("timelines are scoped to their parent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Timeline().Append(ctx, model.NewTimelineEntry(
			types.ParentCollection, 1, types.TimelineNote, "", map[string]string{"note": "a"}))
		gt.NoError(t, err).Required()
		_, err = repo.Timeline().Append(ctx, model.NewTimelineEntry(
			types.ParentBreach, 1, types.TimelineNote, "", map[string]string{"note": "b"}))
		gt.NoError(t, err).Required()

		entries, err := repo.Timeline().List(ctx, types.ParentBreach, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Payload["note"]).Equal("b")
	})

	t.Run("DeleteByParent removes the whole timeline", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Timeline().Append(ctx, model.NewTimelineEntry(
			types.ParentBreach, 9, types.TimelineNote, "", nil))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Timeline().DeleteByParent(ctx, types.ParentBreach, 9))

		entries, err := repo.Timeline().List(ctx, types.ParentBreach, 9)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)
	})
}

func TestCollectionRepository_Memory(t *testing.T) {
	runCollectionRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestCollectionRepository_Firestore(t *testing.T) {
	runCollectionRepositoryTest(t, newFirestoreRepo)
}

func TestAssessmentRepository_Memory(t *testing.T) {
	runAssessmentRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestAssessmentRepository_Firestore(t *testing.T) {
	runAssessmentRepositoryTest(t, newFirestoreRepo)
}

func TestTimelineRepository_Memory(t *testing.T) {
	runTimelineRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestTimelineRepository_Firestore(t *testing.T) {
	runTimelineRepositoryTest(t, newFirestoreRepo)
}
