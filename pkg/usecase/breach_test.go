package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/repository/memory"
	"github.com/privsec-lab/custodian/pkg/service/notify"
	"github.com/privsec-lab/custodian/pkg/usecase"
)

func newBreachUseCases(t *testing.T) (*usecase.UseCases, interfaces.Repository, *notify.MemoryNotifier) {
	t.Helper()

	repo := memory.New()
	notifier := notify.NewMemory()
	uc, err := usecase.New(repo, policy.Default(), usecase.WithNotifier(notifier))
	gt.NoError(t, err).Required()
	return uc, repo, notifier
}

func criticalBreach() *model.Breach {
	return &model.Breach{
		Title:           "Patient database compromise",
		Description:     "Attackers accessed the production patient records database",
		Severity:        types.SeverityHigh,
		Status:          types.BreachStatusDetected,
		DetectionDate:   time.Now().UTC().Add(-time.Hour),
		AffectedData:    []types.DataCategory{types.DataCategoryHealth},
		AffectedUsers:   []string{"user-1", "user-2"},
		AffectedCount:   2_000_000,
		BreachType:      types.BreachTypeUnauthorizedAccess,
		GeographicScope: types.ScopeGlobal,
		Jurisdictions:   []string{"eu"},
	}
}

func TestCreateBreachValidation(t *testing.T) {
	uc, _, _ := newBreachUseCases(t)
	ctx := context.Background()

	cases := map[string]func(b *model.Breach){
		"missing title":          func(b *model.Breach) { b.Title = "" },
		"missing description":    func(b *model.Breach) { b.Description = "" },
		"invalid severity":       func(b *model.Breach) { b.Severity = "catastrophic" },
		"invalid status":         func(b *model.Breach) { b.Status = "vanished" },
		"missing detection date": func(b *model.Breach) { b.DetectionDate = time.Time{} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := criticalBreach()
			mutate(b)

			_, err := uc.Breach.CreateBreach(ctx, b)
			gt.Error(t, err)
			gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
		})
	}
}

func TestCreateBreachComputesAssessments(t *testing.T) {
	uc, _, _ := newBreachUseCases(t)
	ctx := context.Background()

	created, err := uc.Breach.CreateBreach(ctx, criticalBreach())
	gt.NoError(t, err).Required()
	gt.Value(t, created.ID).NotEqual(int64(0))

	t.Run("risk assessment is attached", func(t *testing.T) {
		ra, err := uc.Breach.GetRiskAssessment(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, ra).NotEqual(nil)
		gt.Value(t, ra.Score).Equal(90.00)
		gt.Value(t, ra.Severity).Equal(types.SeverityCritical)
	})

	t.Run("compliance report is attached", func(t *testing.T) {
		cr, err := uc.Breach.GetComplianceReport(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, cr).NotEqual(nil)

		// EU jurisdiction plus health data
		_, gdpr := cr.Frameworks[types.FrameworkGDPR]
		gt.Bool(t, gdpr).True()
		_, hipaa := cr.Frameworks[types.FrameworkHIPAA]
		gt.Bool(t, hipaa).True()
	})

	t.Run("creation is on the timeline", func(t *testing.T) {
		entries, err := uc.Breach.Timeline(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1).Required()
		gt.Value(t, entries[0].Type).Equal(types.TimelineStatusChanged)
	})
}

func TestUpdateBreachRecomputes(t *testing.T) {
	uc, _, _ := newBreachUseCases(t)
	ctx := context.Background()

	created, err := uc.Breach.CreateBreach(ctx, criticalBreach())
	gt.NoError(t, err).Required()

	before, err := uc.Breach.GetRiskAssessment(ctx, created.ID)
	gt.NoError(t, err).Required()

	created.AffectedData = []types.DataCategory{types.DataCategoryPublic}
	created.BreachType = types.BreachTypeMisconfiguration
	created.GeographicScope = types.ScopeLocal
	created.AffectedCount = 10

	_, err = uc.Breach.UpdateBreach(ctx, created)
	gt.NoError(t, err).Required()

	after, err := uc.Breach.GetRiskAssessment(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, after.Score < before.Score).True()
	gt.Value(t, after.Severity).Equal(types.SeverityLow)
}

func TestConfirmSchedulesNotifications(t *testing.T) {
	uc, repo, _ := newBreachUseCases(t)
	ctx := context.Background()

	created, err := uc.Breach.CreateBreach(ctx, criticalBreach())
	gt.NoError(t, err).Required()

	_, err = uc.Breach.UpdateStatus(ctx, created.ID, types.BreachStatusConfirmed, "U9")
	gt.NoError(t, err).Required()

	notifications, err := uc.Breach.Notifications(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, notifications).Length(3).Required()

	byType := make(map[types.NotificationType]*model.Notification)
	for _, n := range notifications {
		byType[n.Type] = n
		gt.Value(t, n.Status).Equal(types.NotificationPending)
	}

	t.Run("authority notification at the computed deadline", func(t *testing.T) {
		n := byType[types.NotificationAuthority]
		gt.Value(t, n).NotEqual(nil)
		gt.Bool(t, n.ScheduleDate.Equal(created.DetectionDate.Add(72*time.Hour))).True()
		gt.Array(t, n.Recipients).Has("supervisory_authority")
	})

	t.Run("individual notification at its deadline", func(t *testing.T) {
		n := byType[types.NotificationAffectedUsers]
		gt.Value(t, n).NotEqual(nil)
		gt.Bool(t, n.ScheduleDate.Equal(created.DetectionDate.Add(7*24*time.Hour))).True()
		gt.Array(t, n.Recipients).Length(2)
	})

	t.Run("internal alert goes out on the next sweep", func(t *testing.T) {
		n := byType[types.NotificationInternal]
		gt.Value(t, n).NotEqual(nil)
		gt.Bool(t, n.ScheduleDate.After(time.Now().UTC())).False()
	})

	t.Run("scheduling is on the timeline", func(t *testing.T) {
		entries, err := repo.Timeline().List(ctx, types.ParentBreach, created.ID)
		gt.NoError(t, err).Required()

		var scheduled int
		for _, e := range entries {
			if e.Type == types.TimelineNotificationScheduled {
				scheduled++
			}
		}
		gt.Number(t, scheduled).Equal(3)
	})

	t.Run("pending flag is derived from the notifications", func(t *testing.T) {
		pending, err := uc.Breach.HasPending(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, pending).True()
	})
}

func TestSendNotification(t *testing.T) {
	ctx := context.Background()

	confirmed := func(t *testing.T, uc *usecase.UseCases) (*model.Breach, []*model.Notification) {
		t.Helper()
		created, err := uc.Breach.CreateBreach(ctx, criticalBreach())
		gt.NoError(t, err).Required()
		_, err = uc.Breach.UpdateStatus(ctx, created.ID, types.BreachStatusConfirmed, "U9")
		gt.NoError(t, err).Required()
		notifications, err := uc.Breach.Notifications(ctx, created.ID)
		gt.NoError(t, err).Required()
		return created, notifications
	}

	pick := func(notifications []*model.Notification, nt types.NotificationType) *model.Notification {
		for _, n := range notifications {
			if n.Type == nt {
				return n
			}
		}
		return nil
	}

	t.Run("delivers and marks sent", func(t *testing.T) {
		uc, repo, notifier := newBreachUseCases(t)
		_, notifications := confirmed(t, uc)
		internal := pick(notifications, types.NotificationInternal)

		gt.NoError(t, uc.Breach.SendNotification(ctx, internal.ID))

		sent := notifier.Sent()
		gt.Array(t, sent).Length(1).Required()
		gt.Value(t, sent[0].Channel).Equal(types.NotificationInternal)

		stored, err := repo.Notification().Get(ctx, internal.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Status).Equal(types.NotificationSent)
		gt.Bool(t, stored.SentAt == nil).False()
	})

	t.Run("re-sending a sent notification is a no-op", func(t *testing.T) {
		uc, _, notifier := newBreachUseCases(t)
		_, notifications := confirmed(t, uc)
		internal := pick(notifications, types.NotificationInternal)

		gt.NoError(t, uc.Breach.SendNotification(ctx, internal.ID))
		gt.NoError(t, uc.Breach.SendNotification(ctx, internal.ID))

		gt.Array(t, notifier.Sent()).Length(1)
	})

	t.Run("transport failure keeps the notification pending", func(t *testing.T) {
		uc, repo, notifier := newBreachUseCases(t)
		_, notifications := confirmed(t, uc)
		internal := pick(notifications, types.NotificationInternal)

		notifier.FailWith = errors.New("slack is down")

		err := uc.Breach.SendNotification(ctx, internal.ID)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrTransport)).True()

		stored, err := repo.Notification().Get(ctx, internal.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Status).Equal(types.NotificationPending)
	})

	t.Run("missing notifier is a transport error", func(t *testing.T) {
		repo := memory.New()
		uc, err := usecase.New(repo, policy.Default())
		gt.NoError(t, err).Required()

		created, err := uc.Breach.CreateBreach(ctx, criticalBreach())
		gt.NoError(t, err).Required()
		_, err = uc.Breach.UpdateStatus(ctx, created.ID, types.BreachStatusConfirmed, "U9")
		gt.NoError(t, err).Required()

		notifications, err := uc.Breach.Notifications(ctx, created.ID)
		gt.NoError(t, err).Required()
		internal := pick(notifications, types.NotificationInternal)

		err = uc.Breach.SendNotification(ctx, internal.ID)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrTransport)).True()
	})

	t.Run("unknown notification fails", func(t *testing.T) {
		uc, _, _ := newBreachUseCases(t)
		err := uc.Breach.SendNotification(ctx, "missing")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrNotificationNotFound)).True()
	})
}

func TestDispatchDue(t *testing.T) {
	uc, repo, notifier := newBreachUseCases(t)
	ctx := context.Background()

	created, err := uc.Breach.CreateBreach(ctx, criticalBreach())
	gt.NoError(t, err).Required()
	_, err = uc.Breach.UpdateStatus(ctx, created.ID, types.BreachStatusConfirmed, "U9")
	gt.NoError(t, err).Required()

	t.Run("only due notifications are dispatched", func(t *testing.T) {
		gt.NoError(t, uc.Breach.DispatchDue(ctx, time.Now().UTC()))

		// Internal alert only; authority and individual are in the future
		gt.Array(t, notifier.Sent()).Length(1)
	})

	t.Run("everything goes out past the deadlines", func(t *testing.T) {
		gt.NoError(t, uc.Breach.DispatchDue(ctx, created.DetectionDate.Add(10*24*time.Hour)))
		gt.Array(t, notifier.Sent()).Length(3)

		pending, err := uc.Breach.HasPending(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, pending).False()
	})

	t.Run("failed sends stay pending for the next sweep", func(t *testing.T) {
		second, err := uc.Breach.CreateBreach(ctx, criticalBreach())
		gt.NoError(t, err).Required()
		_, err = uc.Breach.UpdateStatus(ctx, second.ID, types.BreachStatusConfirmed, "U9")
		gt.NoError(t, err).Required()

		notifier.FailWith = errors.New("transport down")
		gt.Error(t, uc.Breach.DispatchDue(ctx, time.Now().UTC()))

		pending, err := uc.Breach.HasPending(ctx, second.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, pending).True()

		notifier.FailWith = nil
		gt.NoError(t, uc.Breach.DispatchDue(ctx, time.Now().UTC()))

		stored, err := repo.Notification().ListByBreach(ctx, second.ID)
		gt.NoError(t, err).Required()
		var sent int
		for _, n := range stored {
			if n.Status == types.NotificationSent {
				sent++
			}
		}
		gt.Number(t, sent).Equal(1)
	})
}

func TestDeleteBreachCascades(t *testing.T) {
	uc, repo, _ := newBreachUseCases(t)
	ctx := context.Background()

	created, err := uc.Breach.CreateBreach(ctx, criticalBreach())
	gt.NoError(t, err).Required()
	_, err = uc.Breach.UpdateStatus(ctx, created.ID, types.BreachStatusConfirmed, "U9")
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Breach.DeleteBreach(ctx, created.ID))

	_, err = uc.Breach.GetBreach(ctx, created.ID)
	gt.Bool(t, errors.Is(err, usecase.ErrBreachNotFound)).True()

	notifications, err := repo.Notification().ListByBreach(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, notifications).Length(0)

	entries, err := repo.Timeline().List(ctx, types.ParentBreach, created.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(0)
}

func TestUpdateStatusValidation(t *testing.T) {
	uc, _, _ := newBreachUseCases(t)
	ctx := context.Background()

	created, err := uc.Breach.CreateBreach(ctx, criticalBreach())
	gt.NoError(t, err).Required()

	_, err = uc.Breach.UpdateStatus(ctx, created.ID, types.BreachStatus("vanished"), "U9")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
}
