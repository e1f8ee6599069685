package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// TimelineEntry is one append-only audit log entry for a collection or
// breach. Entries are never mutated or reordered.
type TimelineEntry struct {
	ID         string
	ParentKind types.ParentKind
	ParentID   int64
	Type       types.TimelineEntryType
	Actor      string
	Payload    map[string]string
	CreatedAt  time.Time
}

// NewTimelineEntry builds a timeline entry with a fresh ID
func NewTimelineEntry(kind types.ParentKind, parentID int64, entryType types.TimelineEntryType, actor string, payload map[string]string) *TimelineEntry {
	return &TimelineEntry{
		ID:         uuid.NewString(),
		ParentKind: kind,
		ParentID:   parentID,
		Type:       entryType,
		Actor:      actor,
		Payload:    payload,
	}
}
