package usecase

import (
	"context"
	"errors"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/utils/async"
	"github.com/privsec-lab/custodian/pkg/utils/logging"
	"github.com/privsec-lab/custodian/pkg/workflow"
)

// CollectionUseCase drives collections through the lifecycle state
// machine
type CollectionUseCase struct {
	repo     interfaces.Repository
	registry *workflow.Registry
	env      *workflow.Env
	notifier interfaces.Notifier
}

// NewCollectionUseCase creates the workflow driver
func NewCollectionUseCase(repo interfaces.Repository, pol *policy.Policy, notifier interfaces.Notifier, docs interfaces.DocumentGenerator, sched interfaces.Scheduler) *CollectionUseCase {
	return &CollectionUseCase{
		repo:     repo,
		registry: workflow.NewRegistry(pol),
		env: &workflow.Env{
			Repo:      repo,
			Notifier:  notifier,
			Documents: docs,
			Scheduler: sched,
			Policy:    pol,
		},
		notifier: notifier,
	}
}

// CreateCollection registers a new collection in the draft stage
func (uc *CollectionUseCase) CreateCollection(ctx context.Context, title string, metadata map[string]string) (*model.Collection, error) {
	if title == "" {
		return nil, goerr.Wrap(model.ErrValidation, "collection title is required")
	}

	col := &model.Collection{
		Title:       title,
		Stage:       types.StageDraft,
		StageStatus: types.StageStatusPending,
		Metadata:    metadata,
	}
	created, err := uc.repo.Collection().Create(ctx, col)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create collection")
	}

	entry := model.NewTimelineEntry(types.ParentCollection, created.ID, types.TimelineStatusChanged, "", map[string]string{
		"stage": types.StageDraft.String(),
	})
	if _, err := uc.repo.Timeline().Append(ctx, entry); err != nil {
		return nil, goerr.Wrap(err, "failed to append creation entry")
	}

	return created, nil
}

// GetCollection retrieves a collection by ID
func (uc *CollectionUseCase) GetCollection(ctx context.Context, id int64) (*model.Collection, error) {
	col, err := uc.repo.Collection().Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrCollectionNotFound, "collection not found", goerr.V(CollectionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get collection")
	}
	return col, nil
}

// ListCollections retrieves collections with optional stage filtering
func (uc *CollectionUseCase) ListCollections(ctx context.Context, opts ...interfaces.ListCollectionOption) ([]*model.Collection, error) {
	return uc.repo.Collection().List(ctx, opts...)
}

// UpdateMetadata merges metadata and stakeholder assignments into a
// collection. Stage handlers read these through requirement validation.
func (uc *CollectionUseCase) UpdateMetadata(ctx context.Context, id int64, metadata map[string]string, stakeholders map[string]string) (*model.Collection, error) {
	col, err := uc.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if col.Stage.IsTerminal() {
		return nil, goerr.Wrap(ErrCollectionArchived, "archived collections are immutable", goerr.V(CollectionIDKey, id))
	}

	for k, v := range metadata {
		col.SetMeta(k, v)
	}
	for role, user := range stakeholders {
		col.AssignStakeholder(role, user)
	}

	updated, err := uc.repo.Collection().Update(ctx, col)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update collection")
	}
	return updated, nil
}

// ProcessStage runs the entry action of the collection's current stage.
// A handled stage error blocks the collection instead of propagating.
func (uc *CollectionUseCase) ProcessStage(ctx context.Context, id int64, actor string) error {
	col, err := uc.GetCollection(ctx, id)
	if err != nil {
		return err
	}

	stage, err := uc.registry.Get(col.Stage)
	if err != nil {
		return err
	}

	if err := stage.Process(ctx, uc.env, col); err != nil {
		return uc.handleStageError(ctx, col, actor, err)
	}
	return nil
}

// CompleteStage validates and finalizes the current stage, then advances
// the collection to the successor stage and runs its entry action. The
// successor stage ID is returned instead of being fired as a global
// event.
func (uc *CollectionUseCase) CompleteStage(ctx context.Context, id int64, actor string) (types.Stage, error) {
	col, err := uc.GetCollection(ctx, id)
	if err != nil {
		return "", err
	}

	stage, err := uc.registry.Get(col.Stage)
	if err != nil {
		return "", err
	}

	next, err := stage.Complete(ctx, uc.env, col)
	if err != nil {
		// Validation failures block only the attempted transition; other
		// handled errors also block the stage itself.
		if errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrPrecondition) {
			return "", err
		}
		return "", uc.handleStageError(ctx, col, actor, err)
	}

	col.Stage = next
	col.StageStatus = types.StageStatusPending
	if _, err := uc.repo.Collection().Update(ctx, col); err != nil {
		return "", goerr.Wrap(err, "failed to advance collection", goerr.V(StageKey, next))
	}

	nextStage, err := uc.registry.Get(next)
	if err != nil {
		return "", err
	}
	if err := nextStage.Process(ctx, uc.env, col); err != nil {
		return next, uc.handleStageError(ctx, col, actor, err)
	}

	return next, nil
}

// Timeline returns a collection's audit log in append order
func (uc *CollectionUseCase) Timeline(ctx context.Context, id int64) ([]*model.TimelineEntry, error) {
	if _, err := uc.GetCollection(ctx, id); err != nil {
		return nil, err
	}
	return uc.repo.Timeline().List(ctx, types.ParentCollection, id)
}

// UpdateAssessment records a reviewer verdict on a collection's current
// PTA or PIA
func (uc *CollectionUseCase) UpdateAssessment(ctx context.Context, assessmentID string, status types.AssessmentStatus, riskLevel types.RiskLevel, notes string, conditions []string) (*model.Assessment, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrValidation, "invalid assessment status", goerr.V("status", status))
	}
	if riskLevel != "" && !riskLevel.IsValid() {
		return nil, goerr.Wrap(model.ErrValidation, "invalid risk level", goerr.V("risk_level", riskLevel))
	}

	a, err := uc.repo.Assessment().Get(ctx, assessmentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V("assessment_id", assessmentID))
	}

	a.Status = status
	if riskLevel != "" {
		a.RiskLevel = riskLevel
	}
	a.ReviewNotes = notes
	a.Conditions = conditions

	updated, err := uc.repo.Assessment().Update(ctx, a)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update assessment")
	}

	entry := model.NewTimelineEntry(types.ParentCollection, a.CollectionID, types.TimelineAssessmentUpdated, "", map[string]string{
		"assessment_id": a.ID,
		"kind":          a.Kind.String(),
		"status":        status.String(),
		"risk_level":    a.RiskLevel.String(),
	})
	if _, err := uc.repo.Timeline().Append(ctx, entry); err != nil {
		return nil, goerr.Wrap(err, "failed to append assessment entry")
	}

	return updated, nil
}

// handleStageError is the single place that logs, records, and notifies
// on a handled stage failure. Every stage uses the same policy: the
// collection's stage status becomes blocked and forward progress halts.
func (uc *CollectionUseCase) handleStageError(ctx context.Context, col *model.Collection, actor string, cause error) error {
	logging.From(ctx).Error("stage failed",
		"collection_id", col.ID,
		"stage", col.Stage.String(),
		"error", cause.Error(),
	)

	col.StageStatus = types.StageStatusBlocked
	if _, err := uc.repo.Collection().Update(ctx, col); err != nil {
		return goerr.Wrap(cause, "stage failed and block marker could not be written")
	}

	entry := model.NewTimelineEntry(types.ParentCollection, col.ID, types.TimelineStageBlocked, actor, map[string]string{
		"stage": col.Stage.String(),
		"error": cause.Error(),
	})
	if _, err := uc.repo.Timeline().Append(ctx, entry); err != nil {
		return goerr.Wrap(cause, "stage failed and timeline entry could not be appended")
	}

	if uc.notifier != nil {
		colID, stage := col.ID, col.Stage
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.Send(ctx, types.NotificationInternal, nil,
				"Workflow stage blocked",
				"Collection "+int64String(colID)+" is blocked in stage "+stage.String()+": "+cause.Error())
		})
	}

	return cause
}

func int64String(v int64) string {
	return strconv.FormatInt(v, 10)
}
