package workflow

import (
	"context"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// retirementStage winds the collection down. Completion archives the
// collection, issues the disposition certificate, and schedules deletion
// of the archived package after the retention period.
type retirementStage struct {
	base
}

func (s *retirementStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	skipped, err := s.enter(ctx, env, col)
	if err != nil || skipped {
		return err
	}
	s.notifyAssignee(ctx, env, col, model.RoleSystemOwner,
		"Retirement stage started",
		"Record the disposition method and date to retire "+col.Title+".")
	return nil
}

func (s *retirementStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	if err := s.Validate(ctx, env, col); err != nil {
		return "", err
	}

	now := nowUTC()
	col.ArchivedAt = &now
	if _, err := env.Repo.Collection().Update(ctx, col); err != nil {
		return "", goerr.Wrap(err, "failed to archive collection")
	}

	if env.Documents != nil {
		if _, err := env.Documents.CreateDocument(ctx, types.ParentCollection, col.ID,
			types.DocumentDispositionCertificate, "Disposition certificate: "+col.Title, map[string]string{
				"disposition_method": col.Meta(model.MetaDispositionMethod),
				"disposition_date":   col.Meta(model.MetaDispositionDate),
			}); err != nil {
			return "", goerr.Wrap(err, "failed to create disposition certificate")
		}
	}

	if env.Scheduler != nil {
		runAt := now.Add(s.pol.Retention.ArchiveRetention)
		if _, err := env.Scheduler.ScheduleOnce(ctx, runAt, model.EventArchiveDelete, map[string]string{
			"collection_id": int64String(col.ID),
		}); err != nil {
			return "", goerr.Wrap(err, "failed to schedule archive deletion")
		}
	}

	next := types.StageArchived
	if err := s.finish(ctx, env, col, next, nil); err != nil {
		return "", err
	}
	return next, nil
}

// archivedStage is terminal: the collection only waits out its retention
// period here
type archivedStage struct {
	base
}

func (s *archivedStage) Process(ctx context.Context, env *Env, col *model.Collection) error {
	// Terminal stages have no entry action beyond status tracking.
	_, err := s.enter(ctx, env, col)
	return err
}

func (s *archivedStage) Complete(ctx context.Context, env *Env, col *model.Collection) (types.Stage, error) {
	return "", goerr.Wrap(model.ErrValidation, "archived is a terminal stage", goerr.V("collection_id", col.ID))
}

func int64String(v int64) string {
	return strconv.FormatInt(v, 10)
}
