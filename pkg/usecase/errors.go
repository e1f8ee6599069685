package usecase

import "errors"

// Sentinel errors for the use case layer
var (
	// Not found errors
	ErrCollectionNotFound   = errors.New("collection not found")
	ErrBreachNotFound       = errors.New("breach not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// State errors
	ErrCollectionArchived = errors.New("collection is archived")
	ErrBreachClosed       = errors.New("breach is closed")
)

// Context keys for error values
const (
	CollectionIDKey   = "collection_id"
	BreachIDKey       = "breach_id"
	NotificationIDKey = "notification_id"
	StageKey          = "stage"
)
