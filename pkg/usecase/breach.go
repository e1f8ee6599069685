package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/service/compliance"
	"github.com/privsec-lab/custodian/pkg/service/risk"
	"github.com/privsec-lab/custodian/pkg/utils/logging"
)

// BreachUseCase orchestrates breach records: CRUD, recomputation of the
// attached risk assessment and compliance report whenever the facts
// change, and scheduling/dispatch of deadline-driven notifications.
type BreachUseCase struct {
	repo     interfaces.Repository
	assessor *risk.Assessor
	analyzer *compliance.Analyzer
	notifier interfaces.Notifier
}

// NewBreachUseCase creates the breach orchestrator
func NewBreachUseCase(repo interfaces.Repository, assessor *risk.Assessor, analyzer *compliance.Analyzer, notifier interfaces.Notifier) *BreachUseCase {
	return &BreachUseCase{
		repo:     repo,
		assessor: assessor,
		analyzer: analyzer,
		notifier: notifier,
	}
}

func validateBreach(b *model.Breach) error {
	switch {
	case b.Title == "":
		return goerr.Wrap(model.ErrValidation, "breach title is required")
	case b.Description == "":
		return goerr.Wrap(model.ErrValidation, "breach description is required")
	case !b.Severity.IsValid():
		return goerr.Wrap(model.ErrValidation, "invalid breach severity", goerr.V("severity", b.Severity))
	case !b.Status.IsValid():
		return goerr.Wrap(model.ErrValidation, "invalid breach status", goerr.V("status", b.Status))
	case b.DetectionDate.IsZero():
		return goerr.Wrap(model.ErrValidation, "breach detection date is required")
	}
	return nil
}

// CreateBreach validates and stores a new breach, then computes its risk
// assessment and compliance report
func (uc *BreachUseCase) CreateBreach(ctx context.Context, b *model.Breach) (*model.Breach, error) {
	if err := validateBreach(b); err != nil {
		return nil, err
	}

	created, err := uc.repo.Breach().Create(ctx, b)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create breach")
	}

	if err := uc.recompute(ctx, created); err != nil {
		return nil, err
	}

	entry := model.NewTimelineEntry(types.ParentBreach, created.ID, types.TimelineStatusChanged, "", map[string]string{
		"status": created.Status.String(),
	})
	if _, err := uc.repo.Timeline().Append(ctx, entry); err != nil {
		return nil, goerr.Wrap(err, "failed to append breach creation entry")
	}

	return created, nil
}

// GetBreach retrieves a breach by ID
func (uc *BreachUseCase) GetBreach(ctx context.Context, id int64) (*model.Breach, error) {
	b, err := uc.repo.Breach().Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrBreachNotFound, "breach not found", goerr.V(BreachIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get breach")
	}
	return b, nil
}

// ListBreaches retrieves all breaches
func (uc *BreachUseCase) ListBreaches(ctx context.Context) ([]*model.Breach, error) {
	return uc.repo.Breach().List(ctx)
}

// UpdateBreach validates and stores changed breach facts and recomputes
// the attached assessments. The raw facts are authoritative; the cached
// sub-records always follow them.
func (uc *BreachUseCase) UpdateBreach(ctx context.Context, b *model.Breach) (*model.Breach, error) {
	if _, err := uc.GetBreach(ctx, b.ID); err != nil {
		return nil, err
	}
	if err := validateBreach(b); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Breach().Update(ctx, b)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update breach")
	}

	if err := uc.recompute(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateStatus transitions a breach's status. Confirming a breach
// schedules its authority and individual notifications against the
// computed deadlines.
func (uc *BreachUseCase) UpdateStatus(ctx context.Context, id int64, status types.BreachStatus, actor string) (*model.Breach, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrValidation, "invalid breach status", goerr.V("status", status))
	}

	b, err := uc.GetBreach(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := b.Status
	b.Status = status
	updated, err := uc.repo.Breach().Update(ctx, b)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update breach status")
	}

	entry := model.NewTimelineEntry(types.ParentBreach, id, types.TimelineStatusChanged, actor, map[string]string{
		"from": prev.String(),
		"to":   status.String(),
	})
	if _, err := uc.repo.Timeline().Append(ctx, entry); err != nil {
		return nil, goerr.Wrap(err, "failed to append status entry")
	}

	if status == types.BreachStatusConfirmed {
		if err := uc.scheduleNotifications(ctx, updated, actor); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// DeleteBreach removes a breach and cascades to every attached record.
// Admin action only; normal lifecycle never deletes.
func (uc *BreachUseCase) DeleteBreach(ctx context.Context, id int64) error {
	if _, err := uc.GetBreach(ctx, id); err != nil {
		return err
	}

	if err := uc.repo.Notification().DeleteByBreach(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete breach notifications")
	}
	if err := uc.repo.Document().DeleteByParent(ctx, types.ParentBreach, id); err != nil {
		return goerr.Wrap(err, "failed to delete breach documents")
	}
	if err := uc.repo.Timeline().DeleteByParent(ctx, types.ParentBreach, id); err != nil {
		return goerr.Wrap(err, "failed to delete breach timeline")
	}
	if err := uc.repo.Breach().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete breach")
	}
	return nil
}

// GetRiskAssessment returns the cached risk assessment, or nil when none
// has been computed
func (uc *BreachUseCase) GetRiskAssessment(ctx context.Context, id int64) (*model.RiskAssessment, error) {
	if _, err := uc.GetBreach(ctx, id); err != nil {
		return nil, err
	}
	return uc.repo.Breach().GetRiskAssessment(ctx, id)
}

// GetComplianceReport returns the cached compliance report, or nil when
// none has been computed
func (uc *BreachUseCase) GetComplianceReport(ctx context.Context, id int64) (*model.ComplianceReport, error) {
	if _, err := uc.GetBreach(ctx, id); err != nil {
		return nil, err
	}
	return uc.repo.Breach().GetComplianceReport(ctx, id)
}

// Timeline returns a breach's audit log in append order
func (uc *BreachUseCase) Timeline(ctx context.Context, id int64) ([]*model.TimelineEntry, error) {
	if _, err := uc.GetBreach(ctx, id); err != nil {
		return nil, err
	}
	return uc.repo.Timeline().List(ctx, types.ParentBreach, id)
}

// Notifications returns all notifications attached to a breach
func (uc *BreachUseCase) Notifications(ctx context.Context, id int64) ([]*model.Notification, error) {
	if _, err := uc.GetBreach(ctx, id); err != nil {
		return nil, err
	}
	return uc.repo.Notification().ListByBreach(ctx, id)
}

// HasPending reports whether a breach still has undelivered
// notifications. Recomputed from the notification list, not stored.
func (uc *BreachUseCase) HasPending(ctx context.Context, id int64) (bool, error) {
	notifications, err := uc.Notifications(ctx, id)
	if err != nil {
		return false, err
	}
	for _, n := range notifications {
		if n.Status == types.NotificationPending {
			return true, nil
		}
	}
	return false, nil
}

// recompute refreshes the cached risk assessment and compliance report
// from the breach facts
func (uc *BreachUseCase) recompute(ctx context.Context, b *model.Breach) error {
	ra := uc.assessor.Assess(b)
	if err := uc.repo.Breach().PutRiskAssessment(ctx, ra); err != nil {
		return goerr.Wrap(err, "failed to store risk assessment", goerr.V(BreachIDKey, b.ID))
	}

	cr, err := uc.analyzer.Analyze(b, ra)
	if err != nil {
		return goerr.Wrap(err, "compliance analysis failed", goerr.V(BreachIDKey, b.ID))
	}
	if err := uc.repo.Breach().PutComplianceReport(ctx, cr); err != nil {
		return goerr.Wrap(err, "failed to store compliance report", goerr.V(BreachIDKey, b.ID))
	}
	return nil
}

// scheduleNotifications creates the pending notification records for a
// confirmed breach using the computed deadlines. Internal notification
// goes out on the next sweep; authority and individual notifications are
// scheduled at their deadlines.
func (uc *BreachUseCase) scheduleNotifications(ctx context.Context, b *model.Breach, actor string) error {
	ra, err := uc.repo.Breach().GetRiskAssessment(ctx, b.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to load risk assessment")
	}
	if ra == nil {
		return goerr.Wrap(model.ErrPrecondition, "breach has no risk assessment", goerr.V(BreachIDKey, b.ID))
	}
	cr, err := uc.repo.Breach().GetComplianceReport(ctx, b.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to load compliance report")
	}

	now := time.Now().UTC()
	var planned []*model.Notification

	if ra.Requires(types.RequirementAuthority) || (cr != nil && cr.AuthorityNotification) {
		schedule, _ := ra.Deadline(types.DeadlineAuthority)
		// A stricter framework deadline wins over the generic one.
		if cr != nil && cr.ShortestDeadline != nil && cr.ShortestDeadline.Before(schedule) {
			schedule = *cr.ShortestDeadline
		}
		planned = append(planned, &model.Notification{
			Type:         types.NotificationAuthority,
			Recipients:   []string{"supervisory_authority"},
			Template:     "authority_notification",
			ScheduleDate: schedule,
		})
	}

	if ra.Requires(types.RequirementIndividual) || (cr != nil && cr.IndividualNotification) {
		schedule, _ := ra.Deadline(types.DeadlineIndividual)
		planned = append(planned, &model.Notification{
			Type:         types.NotificationAffectedUsers,
			Recipients:   b.AffectedUsers,
			Template:     "individual_notification",
			ScheduleDate: schedule,
		})
	}

	planned = append(planned, &model.Notification{
		Type:         types.NotificationInternal,
		Recipients:   []string{"incident_response"},
		Template:     "internal_alert",
		ScheduleDate: now,
	})

	for _, n := range planned {
		n.ID = model.NewNotificationID()
		n.BreachID = b.ID
		n.Status = types.NotificationPending

		created, err := uc.repo.Notification().Create(ctx, n)
		if err != nil {
			return goerr.Wrap(err, "failed to schedule notification", goerr.V("type", n.Type))
		}

		entry := model.NewTimelineEntry(types.ParentBreach, b.ID, types.TimelineNotificationScheduled, actor, map[string]string{
			"notification_id": created.ID,
			"type":            created.Type.String(),
			"schedule_date":   created.ScheduleDate.Format(time.RFC3339),
		})
		if _, err := uc.repo.Timeline().Append(ctx, entry); err != nil {
			return goerr.Wrap(err, "failed to append schedule entry")
		}
	}

	return nil
}

// DispatchDue sends every pending notification whose schedule date has
// passed. Failed sends stay pending for the next sweep (at-least-once).
// The first transport error is returned after all due notifications have
// been attempted.
func (uc *BreachUseCase) DispatchDue(ctx context.Context, now time.Time) error {
	due, err := uc.repo.Notification().ListDue(ctx, now)
	if err != nil {
		return goerr.Wrap(err, "failed to list due notifications")
	}

	var firstErr error
	for _, n := range due {
		if err := uc.SendNotification(ctx, n.ID); err != nil {
			logging.From(ctx).Error("notification dispatch failed, will retry",
				"notification_id", n.ID, "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SendNotification delivers one notification. Sending an already-sent
// notification is a no-op: the status stays sent and no timeline entry is
// appended.
func (uc *BreachUseCase) SendNotification(ctx context.Context, id string) error {
	n, err := uc.repo.Notification().Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return goerr.Wrap(ErrNotificationNotFound, "notification not found", goerr.V(NotificationIDKey, id))
		}
		return goerr.Wrap(err, "failed to get notification")
	}

	if n.Status == types.NotificationSent {
		return nil
	}

	b, err := uc.GetBreach(ctx, n.BreachID)
	if err != nil {
		return err
	}

	subject, body := renderNotification(b, n)
	if uc.notifier == nil {
		return goerr.Wrap(model.ErrTransport, "no notifier configured", goerr.V(NotificationIDKey, id))
	}
	if err := uc.notifier.Send(ctx, n.Type, n.Recipients, subject, body); err != nil {
		return goerr.Wrap(model.ErrTransport, "notification send failed",
			goerr.V(NotificationIDKey, id), goerr.V("cause", err.Error()))
	}

	now := time.Now().UTC()
	n.Status = types.NotificationSent
	n.SentAt = &now
	if _, err := uc.repo.Notification().Update(ctx, n); err != nil {
		return goerr.Wrap(err, "failed to mark notification sent")
	}

	entry := model.NewTimelineEntry(types.ParentBreach, n.BreachID, types.TimelineNotificationSent, "", map[string]string{
		"notification_id": n.ID,
		"type":            n.Type.String(),
	})
	if _, err := uc.repo.Timeline().Append(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to append send entry")
	}

	return nil
}

func renderNotification(b *model.Breach, n *model.Notification) (subject, body string) {
	switch n.Type {
	case types.NotificationAuthority:
		subject = fmt.Sprintf("Breach notification: %s", b.Title)
		body = fmt.Sprintf("Incident %q (severity %s, detected %s) meets the authority notification threshold.",
			b.Title, b.Severity, b.DetectionDate.Format(time.RFC3339))
	case types.NotificationAffectedUsers:
		subject = fmt.Sprintf("Important security notice: %s", b.Title)
		body = "Your personal data may have been affected by a security incident. " + b.Description
	default:
		subject = fmt.Sprintf("[internal] breach update: %s", b.Title)
		body = fmt.Sprintf("Status %s, severity %s. %s", b.Status, b.Severity, b.MitigationNotes)
	}
	return subject, body
}
