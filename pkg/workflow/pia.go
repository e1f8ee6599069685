package workflow

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// piaRequiredStage opens the full privacy impact assessment. Entry is
// gated on an approved PTA with a risk level that warrants the PIA branch.
type piaRequiredStage struct {
	base
}

func (s *piaRequiredStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	skipped, err := s.enter(ctx, env, col)
	if err != nil || skipped {
		return err
	}

	if col.CurrentPIA == "" {
		if _, err := s.createDraftAssessment(ctx, env, col, types.AssessmentKindPIA); err != nil {
			return err
		}
	}

	s.notifyAssignee(ctx, env, col, model.RoleReviewer,
		"Privacy impact assessment required",
		"A draft PIA has been created for collection "+col.Title+".")
	return nil
}

func (s *piaRequiredStage) Validate(ctx context.Context, env *Env, col *model.Collection) error {
	pta, err := s.currentAssessment(ctx, env, col, types.AssessmentKindPTA)
	if err != nil {
		return err
	}
	if !pta.Status.IsApproved() {
		return goerr.Wrap(model.ErrPrecondition, "PTA must be approved before the PIA",
			goerr.V("pta_status", pta.Status))
	}
	if nextAfterPTA(col, pta) != types.StagePIARequired {
		return goerr.Wrap(model.ErrPrecondition, "PTA risk level does not warrant a PIA",
			goerr.V("risk_level", pta.RiskLevel))
	}
	if col.CurrentPIA == "" {
		return goerr.Wrap(model.ErrPrecondition, "PIA has not been created", goerr.V("collection_id", col.ID))
	}
	return nil
}

func (s *piaRequiredStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}
	next := types.StagePIAInProgress
	if err := s.finish(ctx, env, col, next, nil); err != nil {
		return "", err
	}
	return next, nil
}

// piaInProgressStage tracks PIA authoring
type piaInProgressStage struct {
	base
}

func (s *piaInProgressStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	skipped, err := s.enter(ctx, env, col)
	if err != nil || skipped {
		return err
	}

	pia, err := s.currentAssessment(ctx, env, col, types.AssessmentKindPIA)
	if err != nil {
		return err
	}
	if pia.Status == types.AssessmentStatusDraft {
		pia.Status = types.AssessmentStatusInProgress
		if _, err := env.Repo.Assessment().Update(ctx, pia); err != nil {
			return goerr.Wrap(err, "failed to move PIA in progress")
		}
	}
	return nil
}

func (s *piaInProgressStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}
	next := types.StagePIAReview
	if err := s.finish(ctx, env, col, next, nil); err != nil {
		return "", err
	}
	return next, nil
}

// piaReviewStage routes the reviewer's verdict: approval moves to
// implementation, conditional approval attaches conditions, rejection and
// information requests reopen authoring
type piaReviewStage struct {
	base
}

func (s *piaReviewStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	skipped, err := s.enter(ctx, env, col)
	if err != nil || skipped {
		return err
	}
	s.notifyAssignee(ctx, env, col, model.RoleReviewer,
		"PIA ready for review",
		"The privacy impact assessment for "+col.Title+" is awaiting review.")
	return nil
}

func (s *piaReviewStage) Validate(ctx context.Context, env *Env, col *model.Collection) error {
	pia, err := s.currentAssessment(ctx, env, col, types.AssessmentKindPIA)
	if err != nil {
		return err
	}
	switch pia.Status {
	case types.AssessmentStatusApproved, types.AssessmentStatusConditionallyApproved,
		types.AssessmentStatusRejected, types.AssessmentStatusInfoRequested:
		return nil
	default:
		return goerr.Wrap(model.ErrPrecondition, "PIA review verdict is pending",
			goerr.V("pia_status", pia.Status))
	}
}

func (s *piaReviewStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}

	pia, err := s.currentAssessment(ctx, env, col, types.AssessmentKindPIA)
	if err != nil {
		return "", err
	}

	verdict := pia.Status
	payload := map[string]string{"pia_status": verdict.String()}

	var next types.Stage
	switch verdict {
	case types.AssessmentStatusApproved:
		next = types.StageImplementation
	case types.AssessmentStatusConditionallyApproved:
		next = types.StageImplementation
		payload["conditions"] = strings.Join(pia.Conditions, "; ")
	default:
		next = types.StagePIAInProgress
		pia.Status = types.AssessmentStatusInProgress
		if _, err := env.Repo.Assessment().Update(ctx, pia); err != nil {
			return "", goerr.Wrap(err, "failed to reopen PIA")
		}
	}

	if err := s.finish(ctx, env, col, next, payload); err != nil {
		return "", err
	}
	return next, nil
}
