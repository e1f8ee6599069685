package workflow

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Env bundles the collaborators a stage acts through
type Env struct {
	Repo      interfaces.Repository
	Notifier  interfaces.Notifier
	Documents interfaces.DocumentGenerator
	Scheduler interfaces.Scheduler
	Policy    *policy.Policy
}

// Stage is one lifecycle stage of a collection. Implementations are
// stateless; all state lives on the Collection and its child records.
//
// Process is the entry action: it initializes stage tracking state,
// creates draft sub-documents, and notifies assignees. It is idempotent —
// re-invoking it on an in-progress stage records a skip and changes
// nothing.
//
// Complete re-validates, performs stage finalization, and returns the
// successor stage ID. The successor may depend on collection state (the
// PIA branch). A terminal stage returns an error.
type Stage interface {
	ID() types.Stage
	Config() policy.StageDef
	Process(ctx context.Context, env *Env, col *model.Collection) error
	Validate(ctx context.Context, env *Env, col *model.Collection) error
	Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error)
}

// Registry dispatches stage behavior by stage ID
type Registry struct {
	stages map[types.Stage]Stage
}

// NewRegistry builds the registry of all lifecycle stages over the policy
func NewRegistry(pol *policy.Policy) *Registry {
	r := &Registry{stages: make(map[types.Stage]Stage)}
	for _, s := range []Stage{
		&draftStage{base{id: types.StageDraft, pol: pol}},
		&ptaRequiredStage{base{id: types.StagePTARequired, pol: pol}},
		&ptaInProgressStage{base{id: types.StagePTAInProgress, pol: pol}},
		&ptaReviewStage{base{id: types.StagePTAReview, pol: pol}},
		&piaRequiredStage{base{id: types.StagePIARequired, pol: pol}},
		&piaInProgressStage{base{id: types.StagePIAInProgress, pol: pol}},
		&piaReviewStage{base{id: types.StagePIAReview, pol: pol}},
		&implementationStage{base{id: types.StageImplementation, pol: pol}},
		&activeStage{base{id: types.StageActive, pol: pol}},
		&retirementStage{base{id: types.StageRetirement, pol: pol}},
		&archivedStage{base{id: types.StageArchived, pol: pol}},
	} {
		r.stages[s.ID()] = s
	}
	return r
}

// Get returns the stage implementation for the given ID
func (r *Registry) Get(id types.Stage) (Stage, error) {
	s, ok := r.stages[id]
	if !ok {
		return nil, goerr.New("unknown stage", goerr.V("stage", id))
	}
	return s, nil
}
