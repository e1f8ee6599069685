package worker_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/repository/memory"
	"github.com/privsec-lab/custodian/pkg/service/notify"
	"github.com/privsec-lab/custodian/pkg/service/worker"
	"github.com/privsec-lab/custodian/pkg/usecase"
)

func newSweeper(t *testing.T) (*worker.Sweeper, interfaces.Repository, *notify.MemoryNotifier) {
	t.Helper()

	repo := memory.New()
	notifier := notify.NewMemory()
	uc, err := usecase.New(repo, policy.Default(), usecase.WithNotifier(notifier))
	gt.NoError(t, err).Required()

	return worker.NewSweeper(repo, uc.Breach, notifier, time.Minute), repo, notifier
}

func TestRunOnceDispatchesDueNotifications(t *testing.T) {
	sweeper, repo, notifier := newSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	breach, err := repo.Breach().Create(ctx, &model.Breach{
		Title:         "Phishing campaign",
		Description:   "Credentials harvested via a lookalike domain",
		Severity:      types.SeverityMedium,
		Status:        types.BreachStatusConfirmed,
		DetectionDate: now.Add(-24 * time.Hour),
	})
	gt.NoError(t, err).Required()

	due := &model.Notification{
		ID:           model.NewNotificationID(),
		BreachID:     breach.ID,
		Type:         types.NotificationInternal,
		Recipients:   []string{"incident_response"},
		Template:     "internal_alert",
		Status:       types.NotificationPending,
		ScheduleDate: now.Add(-time.Hour),
	}
	notYet := &model.Notification{
		ID:           model.NewNotificationID(),
		BreachID:     breach.ID,
		Type:         types.NotificationAuthority,
		Recipients:   []string{"supervisory_authority"},
		Template:     "authority_notification",
		Status:       types.NotificationPending,
		ScheduleDate: now.Add(time.Hour),
	}
	for _, n := range []*model.Notification{due, notYet} {
		_, err := repo.Notification().Create(ctx, n)
		gt.NoError(t, err).Required()
	}

	gt.NoError(t, sweeper.RunOnce(ctx, now))

	gt.Array(t, notifier.Sent()).Length(1).Required()
	gt.Value(t, notifier.Sent()[0].Channel).Equal(types.NotificationInternal)

	sent, err := repo.Notification().Get(ctx, due.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, sent.Status).Equal(types.NotificationSent)

	pending, err := repo.Notification().Get(ctx, notYet.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, pending.Status).Equal(types.NotificationPending)
}

func TestRunOnceExecutesReviewDue(t *testing.T) {
	sweeper, repo, notifier := newSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	col, err := repo.Collection().Create(ctx, &model.Collection{
		Title:        "Visitor Logs",
		Stage:        types.StageActive,
		StageStatus:  types.StageStatusInProgress,
		Stakeholders: map[string]string{model.RolePrivacyOfficer: "U42"},
	})
	gt.NoError(t, err).Required()

	_, err = repo.Schedule().Create(ctx, model.NewScheduledEvent(
		model.EventReviewDue, now.Add(-time.Minute), map[string]string{
			"collection_id": strconv.FormatInt(col.ID, 10),
		}))
	gt.NoError(t, err).Required()

	gt.NoError(t, sweeper.RunOnce(ctx, now))

	t.Run("privacy officer is notified", func(t *testing.T) {
		sent := notifier.Sent()
		gt.Array(t, sent).Length(1).Required()
		gt.Array(t, sent[0].Recipients).Has("U42")
	})

	t.Run("review note lands on the timeline", func(t *testing.T) {
		entries, err := repo.Timeline().List(ctx, types.ParentCollection, col.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Type).Equal(types.TimelineNote)
	})

	t.Run("event runs exactly once", func(t *testing.T) {
		gt.NoError(t, sweeper.RunOnce(ctx, now.Add(time.Minute)))
		gt.Array(t, notifier.Sent()).Length(1)
	})
}

func TestRunOnceExecutesArchiveDelete(t *testing.T) {
	sweeper, repo, _ := newSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	col, err := repo.Collection().Create(ctx, &model.Collection{
		Title:       "Retired Records",
		Stage:       types.StageArchived,
		StageStatus: types.StageStatusCompleted,
	})
	gt.NoError(t, err).Required()

	_, err = repo.Document().Create(ctx, &model.Document{
		ID:         model.NewDocumentID(),
		ParentKind: types.ParentCollection,
		ParentID:   col.ID,
		Type:       types.DocumentDispositionCertificate,
		Title:      "Disposition certificate: Retired Records",
		CreatedAt:  now,
	})
	gt.NoError(t, err).Required()

	_, err = repo.Schedule().Create(ctx, model.NewScheduledEvent(
		model.EventArchiveDelete, now.Add(-time.Minute), map[string]string{
			"collection_id": strconv.FormatInt(col.ID, 10),
		}))
	gt.NoError(t, err).Required()

	gt.NoError(t, sweeper.RunOnce(ctx, now))

	t.Run("archived documents are removed", func(t *testing.T) {
		docs, err := repo.Document().ListByParent(ctx, types.ParentCollection, col.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, docs).Length(0)
	})

	t.Run("collection record is retained", func(t *testing.T) {
		got, err := repo.Collection().Get(ctx, col.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Stage).Equal(types.StageArchived)
	})

	t.Run("deletion note lands on the timeline", func(t *testing.T) {
		entries, err := repo.Timeline().List(ctx, types.ParentCollection, col.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Type).Equal(types.TimelineNote)
	})
}

func TestRunOnceToleratesUnknownEvents(t *testing.T) {
	sweeper, repo, _ := newSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.Schedule().Create(ctx, model.NewScheduledEvent(
		"legacy.event", now.Add(-time.Minute), nil))
	gt.NoError(t, err).Required()

	gt.NoError(t, sweeper.RunOnce(ctx, now))

	// Unknown events are marked executed so they do not clog later sweeps
	due, err := repo.Schedule().ListDue(ctx, now.Add(time.Minute))
	gt.NoError(t, err).Required()
	gt.Array(t, due).Length(0)
}

func TestRunOnceRetriesFailedEvents(t *testing.T) {
	sweeper, repo, notifier := newSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	col, err := repo.Collection().Create(ctx, &model.Collection{
		Title:        "Visitor Logs",
		Stage:        types.StageActive,
		Stakeholders: map[string]string{model.RolePrivacyOfficer: "U42"},
	})
	gt.NoError(t, err).Required()

	_, err = repo.Schedule().Create(ctx, model.NewScheduledEvent(
		model.EventReviewDue, now.Add(-time.Minute), map[string]string{
			"collection_id": strconv.FormatInt(col.ID, 10),
		}))
	gt.NoError(t, err).Required()

	notifier.FailWith = errors.New("notifier unavailable")
	gt.Error(t, sweeper.RunOnce(ctx, now))

	// The failed event stays due and succeeds on the next pass
	notifier.FailWith = nil
	gt.NoError(t, sweeper.RunOnce(ctx, now.Add(time.Minute)))
	gt.Array(t, notifier.Sent()).Length(1)
}
