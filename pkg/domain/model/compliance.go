package model

import (
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// FrameworkResult holds the notification obligations one applicable
// framework imposes on a breach
type FrameworkResult struct {
	Framework          types.FrameworkID
	Name               string
	AuthorityRequired  bool
	AuthorityDeadline  *time.Time // nil when the deadline is non-numeric
	AuthorityNote      string     // e.g. "as soon as feasible"
	IndividualRequired bool
	IndividualDeadline *time.Time
	IndividualNote     string
	ExceptionsMet      []string // satisfied exception names, kept for audit
	Documentation      []string
	Retention          string
}

// ComplianceReport aggregates framework obligations for a breach. Like the
// risk assessment it is a cache over the Breach facts.
type ComplianceReport struct {
	BreachID   int64
	Frameworks map[types.FrameworkID]FrameworkResult

	// Summary across all applicable frameworks
	AuthorityNotification  bool
	IndividualNotification bool
	ShortestDeadline       *time.Time // minimum numeric authority deadline
	Documentation          []string   // deduplicated union
	Retention              map[types.FrameworkID]string

	AnalyzedAt time.Time
}

// Applicable returns the IDs of all frameworks in the report
func (r *ComplianceReport) Applicable() []types.FrameworkID {
	ids := make([]types.FrameworkID, 0, len(r.Frameworks))
	for id := range r.Frameworks {
		ids = append(ids, id)
	}
	return ids
}
