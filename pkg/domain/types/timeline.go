package types

// TimelineEntryType categorizes an append-only audit log entry
type TimelineEntryType string

const (
	TimelineStageStarted          TimelineEntryType = "stage_started"
	TimelineStageSkipped          TimelineEntryType = "stage_skipped"
	TimelineStageCompleted        TimelineEntryType = "stage_completed"
	TimelineStageBlocked          TimelineEntryType = "stage_blocked"
	TimelineStatusChanged         TimelineEntryType = "status_changed"
	TimelineNotificationScheduled TimelineEntryType = "notification_scheduled"
	TimelineNotificationSent      TimelineEntryType = "notification_sent"
	TimelineDocumentCreated       TimelineEntryType = "document_created"
	TimelineAssessmentUpdated     TimelineEntryType = "assessment_updated"
	TimelineNote                  TimelineEntryType = "note"
)

// String returns the string representation of the timeline entry type
func (t TimelineEntryType) String() string {
	return string(t)
}
