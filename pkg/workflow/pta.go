package workflow

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// ptaRequiredStage creates the draft privacy threshold analysis and hands
// it to the privacy officer
type ptaRequiredStage struct {
	base
}

func (s *ptaRequiredStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	skipped, err := s.enter(ctx, env, col)
	if err != nil || skipped {
		return err
	}

	// A collection re-entering this stage keeps its current PTA; only
	// create a draft when none exists.
	if col.CurrentPTA == "" {
		if _, err := s.createDraftAssessment(ctx, env, col, types.AssessmentKindPTA); err != nil {
			return err
		}
	}

	s.notifyAssignee(ctx, env, col, model.RolePrivacyOfficer,
		"Privacy threshold analysis required",
		"A draft PTA has been created for collection "+col.Title+".")
	return nil
}

func (s *ptaRequiredStage) Validate(ctx context.Context, env *Env, col *model.Collection) error {
	if col.CurrentPTA == "" {
		return goerr.Wrap(model.ErrPrecondition, "PTA has not been created", goerr.V("collection_id", col.ID))
	}
	return nil
}

func (s *ptaRequiredStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}
	next := types.StagePTAInProgress
	if err := s.finish(ctx, env, col, next, nil); err != nil {
		return "", err
	}
	return next, nil
}

// ptaInProgressStage tracks PTA authoring. Completion branches: an
// approved PTA skips review and goes straight to the PIA decision,
// otherwise the PTA moves to review.
type ptaInProgressStage struct {
	base
}

func (s *ptaInProgressStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	skipped, err := s.enter(ctx, env, col)
	if err != nil || skipped {
		return err
	}

	pta, err := s.currentAssessment(ctx, env, col, types.AssessmentKindPTA)
	if err != nil {
		return err
	}
	if pta.Status == types.AssessmentStatusDraft {
		pta.Status = types.AssessmentStatusInProgress
		if _, err := env.Repo.Assessment().Update(ctx, pta); err != nil {
			return goerr.Wrap(err, "failed to move PTA in progress")
		}
	}
	return nil
}

func (s *ptaInProgressStage) Validate(ctx context.Context, env *Env, col *model.Collection) error {
	if err := s.base.Validate(ctx, env, col); err != nil {
		return err
	}
	// PII categories become mandatory once the collection declares it
	// contains PII.
	if col.Meta(model.MetaContainsPII) == "yes" && col.Meta(model.MetaPIICategories) == "" {
		return goerr.Wrap(model.ErrValidation, "PII categories are required when the collection contains PII",
			goerr.V("field", model.MetaPIICategories))
	}
	return nil
}

func (s *ptaInProgressStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}

	pta, err := s.currentAssessment(ctx, env, col, types.AssessmentKindPTA)
	if err != nil {
		return "", err
	}

	next := types.StagePTAReview
	if pta.Status.IsApproved() {
		next = nextAfterPTA(col, pta)
	}

	if err := s.finish(ctx, env, col, next, map[string]string{
		"pta_status": pta.Status.String(),
		"risk_level": pta.RiskLevel.String(),
	}); err != nil {
		return "", err
	}
	return next, nil
}

// ptaReviewStage waits for the reviewer's verdict on the PTA
type ptaReviewStage struct {
	base
}

func (s *ptaReviewStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	skipped, err := s.enter(ctx, env, col)
	if err != nil || skipped {
		return err
	}
	s.notifyAssignee(ctx, env, col, model.RolePrivacyOfficer,
		"PTA ready for review",
		"The privacy threshold analysis for "+col.Title+" is awaiting review.")
	return nil
}

func (s *ptaReviewStage) Validate(ctx context.Context, env *Env, col *model.Collection) error {
	pta, err := s.currentAssessment(ctx, env, col, types.AssessmentKindPTA)
	if err != nil {
		return err
	}
	switch pta.Status {
	case types.AssessmentStatusApproved, types.AssessmentStatusConditionallyApproved,
		types.AssessmentStatusRejected, types.AssessmentStatusInfoRequested:
		return nil
	default:
		return goerr.Wrap(model.ErrPrecondition, "PTA review verdict is pending",
			goerr.V("pta_status", pta.Status))
	}
}

func (s *ptaReviewStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}

	pta, err := s.currentAssessment(ctx, env, col, types.AssessmentKindPTA)
	if err != nil {
		return "", err
	}

	verdict := pta.Status
	var next types.Stage
	switch verdict {
	case types.AssessmentStatusApproved, types.AssessmentStatusConditionallyApproved:
		next = nextAfterPTA(col, pta)
	default:
		// Rejection or an information request sends the PTA back to
		// authoring.
		next = types.StagePTAInProgress
		pta.Status = types.AssessmentStatusInProgress
		if _, err := env.Repo.Assessment().Update(ctx, pta); err != nil {
			return "", goerr.Wrap(err, "failed to reopen PTA")
		}
	}

	if err := s.finish(ctx, env, col, next, map[string]string{
		"pta_status": verdict.String(),
		"risk_level": pta.RiskLevel.String(),
	}); err != nil {
		return "", err
	}
	return next, nil
}
