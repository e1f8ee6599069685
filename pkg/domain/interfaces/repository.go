package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Collection() CollectionRepository
	Breach() BreachRepository
	Assessment() AssessmentRepository
	Notification() NotificationRepository
	Timeline() TimelineRepository
	Document() DocumentRepository
	Schedule() ScheduleRepository

	Close() error
}
