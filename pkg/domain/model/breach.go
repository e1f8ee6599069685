package model

import (
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Breach represents one reported security/privacy incident. The raw facts
// on the Breach are authoritative; risk assessments and compliance reports
// derived from them are caches recomputed whenever the facts change.
type Breach struct {
	ID              int64
	Title           string
	Description     string
	Severity        types.Severity
	Status          types.BreachStatus
	DetectionDate   time.Time
	DiscoveryDate   time.Time
	AffectedData    []types.DataCategory
	AffectedUsers   []string `masq:"secret"`
	AffectedCount   int
	BreachType      types.BreachType
	GeographicScope types.GeographicScope
	// Jurisdictions lists regulatory jurisdictions touched by the breach,
	// covering both the operating jurisdiction and affected-user locations
	// (e.g. "eu", "california", "canada").
	Jurisdictions []string
	EntityType    string // e.g. "covered_entity", "business_associate"
	DataEncrypted bool
	// Impact inputs on a 0-100 scale. Nil means not assessed; scoring
	// substitutes a documented default.
	FinancialImpact   *float64
	ReputationImpact  *float64
	OperationalImpact *float64
	MitigationNotes   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserCount returns the affected user count, falling back to the length of
// the identifier set when no explicit count is recorded
func (b *Breach) UserCount() int {
	if b.AffectedCount > 0 {
		return b.AffectedCount
	}
	return len(b.AffectedUsers)
}

// HasDataCategory reports whether the breach affects the given category
func (b *Breach) HasDataCategory(c types.DataCategory) bool {
	for _, cat := range b.AffectedData {
		if cat == c {
			return true
		}
	}
	return false
}

// InJurisdiction reports whether the breach touches the given jurisdiction
func (b *Breach) InJurisdiction(j string) bool {
	for _, jur := range b.Jurisdictions {
		if jur == j {
			return true
		}
	}
	return false
}
