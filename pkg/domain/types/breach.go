package types

import "fmt"

// BreachStatus represents the lifecycle status of a breach incident
type BreachStatus string

const (
	BreachStatusDraft      BreachStatus = "draft"
	BreachStatusDetected   BreachStatus = "detected"
	BreachStatusAssessing  BreachStatus = "assessing"
	BreachStatusConfirmed  BreachStatus = "confirmed"
	BreachStatusNotifying  BreachStatus = "notifying"
	BreachStatusMitigating BreachStatus = "mitigating"
	BreachStatusResolved   BreachStatus = "resolved"
	BreachStatusClosed     BreachStatus = "closed"
)

// AllBreachStatuses returns all valid breach statuses
func AllBreachStatuses() []BreachStatus {
	return []BreachStatus{
		BreachStatusDraft,
		BreachStatusDetected,
		BreachStatusAssessing,
		BreachStatusConfirmed,
		BreachStatusNotifying,
		BreachStatusMitigating,
		BreachStatusResolved,
		BreachStatusClosed,
	}
}

// IsValid checks if the breach status is valid
func (s BreachStatus) IsValid() bool {
	for _, status := range AllBreachStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// String returns the string representation of the breach status
func (s BreachStatus) String() string {
	return string(s)
}

// ParseBreachStatus parses a string into a BreachStatus
func ParseBreachStatus(s string) (BreachStatus, error) {
	status := BreachStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid breach status: %s", s)
	}
	return status, nil
}

// BreachType categorizes how a breach occurred. Types not listed in the
// risk policy fall back to a default weight during scoring.
type BreachType string

const (
	BreachTypeUnauthorizedAccess   BreachType = "unauthorized_access"
	BreachTypeHacking              BreachType = "hacking"
	BreachTypeMalware              BreachType = "malware"
	BreachTypePhishing             BreachType = "phishing"
	BreachTypeInsiderThreat        BreachType = "insider_threat"
	BreachTypePhysicalTheft        BreachType = "physical_theft"
	BreachTypeAccidentalDisclosure BreachType = "accidental_disclosure"
	BreachTypeLostDevice           BreachType = "lost_device"
	BreachTypeThirdParty           BreachType = "third_party"
	BreachTypeMisconfiguration     BreachType = "misconfiguration"
)

// String returns the string representation of the breach type
func (t BreachType) String() string {
	return string(t)
}
