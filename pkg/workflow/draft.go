package workflow

import (
	"context"

	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// draftStage is the initial definition stage. Completion requires the
// purpose statement, legal authority, and system name to be filled in.
type draftStage struct {
	base
}

func (s *draftStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	if _, err := s.enter(ctx, env, col); err != nil {
		return err
	}
	s.notifyAssignee(ctx, env, col, model.RoleSystemOwner,
		"Collection draft started",
		"Fill in the purpose statement, legal authority, and system name to begin the privacy review.")
	return nil
}

func (s *draftStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}
	next := types.StagePTARequired
	if err := s.finish(ctx, env, col, next, nil); err != nil {
		return "", err
	}
	return next, nil
}
