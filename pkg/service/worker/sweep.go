package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/usecase"
	"github.com/privsec-lab/custodian/pkg/utils/logging"
)

// Sweeper evaluates time-triggered work on a fixed interval: due
// notifications and due scheduled events ("run now if schedule_date <=
// now"). Mutations race benignly with user-initiated writes; records are
// re-read inside each dispatch so last write wins.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type Sweeper struct {
	repo     interfaces.Repository
	breaches *usecase.BreachUseCase
	notifier interfaces.Notifier
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSweeper creates a sweep worker
func NewSweeper(repo interfaces.Repository, breaches *usecase.BreachUseCase, notifier interfaces.Notifier, interval time.Duration) *Sweeper {
	return &Sweeper{
		repo:     repo,
		breaches: breaches,
		notifier: notifier,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. Does not block server startup.
func (w *Sweeper) Start(ctx context.Context) {
	logging.Default().Info("sweep worker starting", "interval", w.interval.String())
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for completion
func (w *Sweeper) Stop() {
	logging.Default().Info("sweep worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("sweep worker stopped")
}

func (w *Sweeper) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.RunOnce(ctx, time.Now().UTC()); err != nil {
		logging.Default().Error("initial sweep failed (will retry next interval)", "error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx, time.Now().UTC()); err != nil {
				logging.Default().Error("sweep failed (will retry next interval)", "error", err.Error())
			}
		}
	}
}

// RunOnce performs a single sweep pass at the given time. Notification
// dispatch and scheduled-event execution run concurrently; each phase
// tolerates per-item failures and retries them on the next pass.
func (w *Sweeper) RunOnce(ctx context.Context, now time.Time) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return w.breaches.DispatchDue(ctx, now)
	})
	eg.Go(func() error {
		return w.executeDueEvents(ctx, now)
	})

	return eg.Wait()
}

func (w *Sweeper) executeDueEvents(ctx context.Context, now time.Time) error {
	due, err := w.repo.Schedule().ListDue(ctx, now)
	if err != nil {
		return goerr.Wrap(err, "failed to list due events")
	}

	var firstErr error
	for _, ev := range due {
		if err := w.executeEvent(ctx, ev); err != nil {
			logging.From(ctx).Error("scheduled event failed, will retry",
				"event_id", ev.ID, "event", ev.Event, "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := w.repo.Schedule().MarkExecuted(ctx, ev.ID, time.Now().UTC()); err != nil {
			return goerr.Wrap(err, "failed to mark event executed", goerr.V("event_id", ev.ID))
		}
	}
	return firstErr
}

func (w *Sweeper) executeEvent(ctx context.Context, ev *model.ScheduledEvent) error {
	switch ev.Event {
	case model.EventReviewDue:
		return w.reviewDue(ctx, ev)
	case model.EventArchiveDelete:
		return w.archiveDelete(ctx, ev)
	default:
		// Unknown events are logged and marked executed so they do not
		// clog every subsequent sweep.
		logging.From(ctx).Warn("unknown scheduled event", "event", ev.Event, "event_id", ev.ID)
		return nil
	}
}

// reviewDue notifies the privacy officer that an active collection is due
// for its periodic review
func (w *Sweeper) reviewDue(ctx context.Context, ev *model.ScheduledEvent) error {
	id, err := collectionID(ev)
	if err != nil {
		return err
	}
	col, err := w.repo.Collection().Get(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to load collection for review")
	}

	if w.notifier != nil {
		if err := w.notifier.Send(ctx, types.NotificationInternal,
			[]string{col.Stakeholder(model.RolePrivacyOfficer)},
			"Periodic privacy review due",
			"Collection "+col.Title+" is due for its periodic privacy review."); err != nil {
			return goerr.Wrap(err, "failed to send review notice")
		}
	}

	entry := model.NewTimelineEntry(types.ParentCollection, col.ID, types.TimelineNote, "", map[string]string{
		"note": "periodic review due",
	})
	if _, err := w.repo.Timeline().Append(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to append review entry")
	}
	return nil
}

// archiveDelete disposes of the archived package once the retention
// period has elapsed. The collection record itself is retained; only the
// generated documents are removed.
func (w *Sweeper) archiveDelete(ctx context.Context, ev *model.ScheduledEvent) error {
	id, err := collectionID(ev)
	if err != nil {
		return err
	}
	if err := w.repo.Document().DeleteByParent(ctx, types.ParentCollection, id); err != nil {
		return goerr.Wrap(err, "failed to delete archived documents")
	}

	entry := model.NewTimelineEntry(types.ParentCollection, id, types.TimelineNote, "", map[string]string{
		"note": "archived package deleted after retention period",
	})
	if _, err := w.repo.Timeline().Append(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to append deletion entry")
	}
	return nil
}

func collectionID(ev *model.ScheduledEvent) (int64, error) {
	raw, ok := ev.Payload["collection_id"]
	if !ok {
		return 0, goerr.New("scheduled event payload missing collection_id", goerr.V("event_id", ev.ID))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid collection_id in payload", goerr.V("event_id", ev.ID))
	}
	return id, nil
}
