package memory

import (
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
)

// Memory is an in-memory Repository for development mode and tests. All
// reads return deep copies so callers can never mutate stored state
// through a returned pointer.
type Memory struct {
	collection   *collectionRepository
	breach       *breachRepository
	assessment   *assessmentRepository
	notification *notificationRepository
	timeline     *timelineRepository
	document     *documentRepository
	schedule     *scheduleRepository
}

var _ interfaces.Repository = &Memory{}

// New creates a new in-memory repository
func New() *Memory {
	return &Memory{
		collection:   newCollectionRepository(),
		breach:       newBreachRepository(),
		assessment:   newAssessmentRepository(),
		notification: newNotificationRepository(),
		timeline:     newTimelineRepository(),
		document:     newDocumentRepository(),
		schedule:     newScheduleRepository(),
	}
}

func (m *Memory) Collection() interfaces.CollectionRepository     { return m.collection }
func (m *Memory) Breach() interfaces.BreachRepository             { return m.breach }
func (m *Memory) Assessment() interfaces.AssessmentRepository     { return m.assessment }
func (m *Memory) Notification() interfaces.NotificationRepository { return m.notification }
func (m *Memory) Timeline() interfaces.TimelineRepository         { return m.timeline }
func (m *Memory) Document() interfaces.DocumentRepository         { return m.document }
func (m *Memory) Schedule() interfaces.ScheduleRepository         { return m.schedule }

// Close is a no-op for the in-memory backend
func (m *Memory) Close() error {
	return nil
}

func copyStringSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
