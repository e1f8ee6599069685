package interfaces

import (
	"context"
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Notifier dispatches a rendered notification over a delivery channel.
// Implementations must tolerate duplicate sends for the same notification
// ID (at-least-once delivery).
type Notifier interface {
	Send(ctx context.Context, channel types.NotificationType, recipients []string, subject, body string) error
}

// DocumentGenerator emits artifact records for plans, reports, and
// certificates produced by workflow stages. Rendering is out of scope;
// only the type and metadata are recorded.
type DocumentGenerator interface {
	CreateDocument(ctx context.Context, kind types.ParentKind, parentID int64, docType types.DocumentType, title string, metadata map[string]string) (string, error)
}

// Scheduler registers deferred work evaluated by the periodic sweep
type Scheduler interface {
	ScheduleOnce(ctx context.Context, runAt time.Time, event string, payload map[string]string) (string, error)
}
