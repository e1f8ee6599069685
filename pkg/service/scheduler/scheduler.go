package scheduler

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
)

// Service registers deferred events through the repository. The sweep
// worker picks them up once their run time has passed.
type Service struct {
	repo interfaces.Repository
}

var _ interfaces.Scheduler = &Service{}

// New creates a scheduler over the repository
func New(repo interfaces.Repository) *Service {
	return &Service{repo: repo}
}

// ScheduleOnce stores a one-shot event and returns its ID
func (s *Service) ScheduleOnce(ctx context.Context, runAt time.Time, event string, payload map[string]string) (string, error) {
	ev := model.NewScheduledEvent(event, runAt, payload)
	created, err := s.repo.Schedule().Create(ctx, ev)
	if err != nil {
		return "", goerr.Wrap(err, "failed to schedule event",
			goerr.V("event", event), goerr.V("run_at", runAt))
	}
	return created.ID, nil
}
