package types

import "fmt"

// AssessmentKind distinguishes the two privacy assessment documents
type AssessmentKind string

const (
	AssessmentKindPTA AssessmentKind = "pta"
	AssessmentKindPIA AssessmentKind = "pia"
)

// IsValid checks if the assessment kind is valid
func (k AssessmentKind) IsValid() bool {
	return k == AssessmentKindPTA || k == AssessmentKindPIA
}

// String returns the string representation of the assessment kind
func (k AssessmentKind) String() string {
	return string(k)
}

// AssessmentStatus represents the review status of a PTA or PIA
type AssessmentStatus string

const (
	AssessmentStatusDraft                 AssessmentStatus = "draft"
	AssessmentStatusInProgress            AssessmentStatus = "in_progress"
	AssessmentStatusApproved              AssessmentStatus = "approved"
	AssessmentStatusRejected              AssessmentStatus = "rejected"
	AssessmentStatusInfoRequested         AssessmentStatus = "info_requested"
	AssessmentStatusConditionallyApproved AssessmentStatus = "conditionally_approved"
)

// AllAssessmentStatuses returns all valid assessment statuses
func AllAssessmentStatuses() []AssessmentStatus {
	return []AssessmentStatus{
		AssessmentStatusDraft,
		AssessmentStatusInProgress,
		AssessmentStatusApproved,
		AssessmentStatusRejected,
		AssessmentStatusInfoRequested,
		AssessmentStatusConditionallyApproved,
	}
}

// IsValid checks if the assessment status is valid
func (s AssessmentStatus) IsValid() bool {
	for _, status := range AllAssessmentStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsApproved reports whether the status counts as an approval outcome
func (s AssessmentStatus) IsApproved() bool {
	return s == AssessmentStatusApproved || s == AssessmentStatusConditionallyApproved
}

// String returns the string representation of the assessment status
func (s AssessmentStatus) String() string {
	return string(s)
}

// ParseAssessmentStatus parses a string into an AssessmentStatus
func ParseAssessmentStatus(s string) (AssessmentStatus, error) {
	status := AssessmentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid assessment status: %s", s)
	}
	return status, nil
}

// RiskLevel represents the risk classification produced by a PTA/PIA review
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// IsValid checks if the risk level is valid
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}
