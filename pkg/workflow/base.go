package workflow

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/utils/async"
)

// base carries the shared stage wiring: config lookup, the idempotency
// guard, and the completion bookkeeping every concrete stage uses
type base struct {
	id  types.Stage
	pol *policy.Policy
}

func (b *base) ID() types.Stage {
	return b.id
}

func (b *base) Config() policy.StageDef {
	return b.pol.Stages[b.id]
}

// Validate checks the declared requirements. Stages with extra rules
// override and call this first.
func (b *base) Validate(ctx context.Context, env *Env, col *model.Collection) error {
	return validateRequirements(b.Config().Requirements, col)
}

// enter marks the stage in progress and appends the start entry. Returns
// skipped=true without touching anything when the stage is already in
// progress, which makes repeated Process calls harmless.
func (b *base) enter(ctx context.Context, env *Env, col *model.Collection) (skipped bool, err error) {
	if col.StageStatus == types.StageStatusInProgress {
		entry := model.NewTimelineEntry(types.ParentCollection, col.ID, types.TimelineStageSkipped, "", map[string]string{
			"stage": b.id.String(),
		})
		if _, err := env.Repo.Timeline().Append(ctx, entry); err != nil {
			return false, goerr.Wrap(err, "failed to append skip entry")
		}
		return true, nil
	}

	col.StageStatus = types.StageStatusInProgress
	if _, err := env.Repo.Collection().Update(ctx, col); err != nil {
		return false, goerr.Wrap(err, "failed to mark stage in progress", goerr.V("stage", b.id))
	}

	entry := model.NewTimelineEntry(types.ParentCollection, col.ID, types.TimelineStageStarted, "", map[string]string{
		"stage": b.id.String(),
	})
	if _, err := env.Repo.Timeline().Append(ctx, entry); err != nil {
		return false, goerr.Wrap(err, "failed to append start entry")
	}
	return false, nil
}

// finish marks the stage completed and appends the completion entry with
// the chosen successor
func (b *base) finish(ctx context.Context, env *Env, col *model.Collection, next types.Stage, payload map[string]string) error {
	col.StageStatus = types.StageStatusCompleted
	if _, err := env.Repo.Collection().Update(ctx, col); err != nil {
		return goerr.Wrap(err, "failed to mark stage completed", goerr.V("stage", b.id))
	}

	if payload == nil {
		payload = make(map[string]string)
	}
	payload["stage"] = b.id.String()
	payload["next_stage"] = next.String()

	entry := model.NewTimelineEntry(types.ParentCollection, col.ID, types.TimelineStageCompleted, "", payload)
	if _, err := env.Repo.Timeline().Append(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to append completion entry")
	}
	return nil
}

// notifyAssignee fires a fire-and-forget internal notification to a
// stakeholder role, if assigned
func (b *base) notifyAssignee(ctx context.Context, env *Env, col *model.Collection, role, subject, body string) {
	assignee := col.Stakeholder(role)
	if assignee == "" || env.Notifier == nil {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return env.Notifier.Send(ctx, types.NotificationInternal, []string{assignee}, subject, body)
	})
}

// currentAssessment loads the collection's current PTA or PIA
func (b *base) currentAssessment(ctx context.Context, env *Env, col *model.Collection, kind types.AssessmentKind) (*model.Assessment, error) {
	id := col.CurrentPTA
	if kind == types.AssessmentKindPIA {
		id = col.CurrentPIA
	}
	if id == "" {
		return nil, goerr.Wrap(model.ErrPrecondition, "no current assessment",
			goerr.V("kind", kind), goerr.V("collection_id", col.ID))
	}
	a, err := env.Repo.Assessment().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load assessment", goerr.V("assessment_id", id))
	}
	return a, nil
}

// createDraftAssessment creates a draft PTA/PIA and points the collection
// at it. The caller guards against an existing current assessment.
func (b *base) createDraftAssessment(ctx context.Context, env *Env, col *model.Collection, kind types.AssessmentKind) (*model.Assessment, error) {
	a := &model.Assessment{
		ID:           model.NewAssessmentID(),
		CollectionID: col.ID,
		Kind:         kind,
		Status:       types.AssessmentStatusDraft,
		Reviewer:     col.Stakeholder(RoleForAssessment(kind)),
	}
	created, err := env.Repo.Assessment().Create(ctx, a)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create draft assessment", goerr.V("kind", kind))
	}

	if kind == types.AssessmentKindPTA {
		col.CurrentPTA = created.ID
	} else {
		col.CurrentPIA = created.ID
	}
	if _, err := env.Repo.Collection().Update(ctx, col); err != nil {
		return nil, goerr.Wrap(err, "failed to set current assessment pointer")
	}
	return created, nil
}

// RoleForAssessment returns the stakeholder role that reviews the given
// assessment kind
func RoleForAssessment(kind types.AssessmentKind) string {
	if kind == types.AssessmentKindPIA {
		return model.RoleReviewer
	}
	return model.RolePrivacyOfficer
}

// nextAfterPTA chooses the successor after an approved PTA: the PIA
// branch is entered on high risk, or on medium risk with the policy
// override flag set on the collection.
func nextAfterPTA(col *model.Collection, pta *model.Assessment) types.Stage {
	switch pta.RiskLevel {
	case types.RiskLevelHigh:
		return types.StagePIARequired
	case types.RiskLevelMedium:
		if col.Meta(model.MetaPIAOverride) == "yes" {
			return types.StagePIARequired
		}
	}
	return types.StageImplementation
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
