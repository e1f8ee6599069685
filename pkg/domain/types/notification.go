package types

import "fmt"

// NotificationType identifies the audience of a breach notification
type NotificationType string

const (
	NotificationAuthority     NotificationType = "authority"
	NotificationAffectedUsers NotificationType = "affected_users"
	NotificationInternal      NotificationType = "internal"
	NotificationStakeholder   NotificationType = "stakeholder"
)

// IsValid checks if the notification type is valid
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationAuthority, NotificationAffectedUsers, NotificationInternal, NotificationStakeholder:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notification type
func (t NotificationType) String() string {
	return string(t)
}

// ParseNotificationType parses a string into a NotificationType
func ParseNotificationType(s string) (NotificationType, error) {
	nt := NotificationType(s)
	if !nt.IsValid() {
		return "", fmt.Errorf("invalid notification type: %s", s)
	}
	return nt, nil
}

// NotificationStatus represents the delivery state of a notification.
// The only transition is pending to sent, and it is one-way.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
)

// String returns the string representation of the notification status
func (s NotificationStatus) String() string {
	return string(s)
}

// RequirementKind names a notification-requirement flag on a risk assessment
type RequirementKind string

const (
	RequirementAuthority  RequirementKind = "authority"
	RequirementIndividual RequirementKind = "individual"
	RequirementVendor     RequirementKind = "vendor"
	RequirementInsurance  RequirementKind = "insurance"
	RequirementLegal      RequirementKind = "legal_consultation"
)

// DeadlineKind names a computed deadline on a risk assessment
type DeadlineKind string

const (
	DeadlineAuthority     DeadlineKind = "authority_notification"
	DeadlineIndividual    DeadlineKind = "individual_notification"
	DeadlineDocumentation DeadlineKind = "documentation"
	DeadlineReview        DeadlineKind = "review"
)
