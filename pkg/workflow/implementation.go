package workflow

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// implementationStage covers system build and privacy control rollout.
// Entry generates the implementation and testing plans.
type implementationStage struct {
	base
}

func (s *implementationStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	skipped, err := s.enter(ctx, env, col)
	if err != nil || skipped {
		return err
	}

	if env.Documents != nil {
		meta := map[string]string{"collection": col.Title}
		if _, err := env.Documents.CreateDocument(ctx, types.ParentCollection, col.ID,
			types.DocumentImplementationPlan, "Implementation plan: "+col.Title, meta); err != nil {
			return goerr.Wrap(err, "failed to create implementation plan")
		}
		if _, err := env.Documents.CreateDocument(ctx, types.ParentCollection, col.ID,
			types.DocumentTestingPlan, "Testing plan: "+col.Title, meta); err != nil {
			return goerr.Wrap(err, "failed to create testing plan")
		}
	}

	s.notifyAssignee(ctx, env, col, model.RoleSystemOwner,
		"Implementation stage started",
		"Implementation and testing plans have been generated for "+col.Title+".")
	return nil
}

func (s *implementationStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}
	next := types.StageActive
	if err := s.finish(ctx, env, col, next, nil); err != nil {
		return "", err
	}
	return next, nil
}

// activeStage is the production phase. Entry schedules the periodic
// privacy review.
type activeStage struct {
	base
}

func (s *activeStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	skipped, err := s.enter(ctx, env, col)
	if err != nil || skipped {
		return err
	}

	if env.Scheduler != nil {
		runAt := nowUTC().Add(s.pol.Retention.ReviewInterval)
		if _, err := env.Scheduler.ScheduleOnce(ctx, runAt, model.EventReviewDue, map[string]string{
			"collection_id": int64String(col.ID),
		}); err != nil {
			return goerr.Wrap(err, "failed to schedule periodic review")
		}
	}
	return nil
}

func (s *activeStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}
	next := types.StageRetirement
	if err := s.finish(ctx, env, col, next, nil); err != nil {
		return "", err
	}
	return next, nil
}
