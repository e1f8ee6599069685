package model

import (
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// RiskFactor names one weighted component of the risk score
type RiskFactor string

const (
	FactorDataSensitivity RiskFactor = "data_sensitivity"
	FactorBreachType      RiskFactor = "breach_type"
	FactorScope           RiskFactor = "scope"
	FactorImpact          RiskFactor = "impact"
)

// FactorScore holds one factor's raw score and the weight it carries in
// the final weighted sum
type FactorScore struct {
	Score  float64
	Weight float64
}

// RiskAssessment is the computed risk profile of a breach. It is a cache
// derived from the Breach facts, never edited directly.
type RiskAssessment struct {
	BreachID        int64
	Factors         map[RiskFactor]FactorScore
	Score           float64 // weighted sum, rounded to 2 decimals
	Severity        types.Severity
	Notifications   map[types.RequirementKind]bool
	Deadlines       map[types.DeadlineKind]time.Time
	Recommendations []string
	AssessedAt      time.Time
}

// FactorScoreValue returns the raw score of a factor, or 0 if absent
func (r *RiskAssessment) FactorScoreValue(f RiskFactor) float64 {
	if r.Factors == nil {
		return 0
	}
	return r.Factors[f].Score
}

// Requires reports whether the given notification requirement flag is set
func (r *RiskAssessment) Requires(k types.RequirementKind) bool {
	if r.Notifications == nil {
		return false
	}
	return r.Notifications[k]
}

// Deadline returns the computed deadline of the given kind and whether it
// is present
func (r *RiskAssessment) Deadline(k types.DeadlineKind) (time.Time, bool) {
	if r.Deadlines == nil {
		return time.Time{}, false
	}
	t, ok := r.Deadlines[k]
	return t, ok
}
