package compliance

import (
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Predicate evaluates a named condition over breach facts and the risk
// assessment. Framework definitions reference predicates by name so the
// framework catalog stays data.
type Predicate func(b *model.Breach, ra *model.RiskAssessment) bool

// predicates is the fixed registry of conditions the framework catalog
// may reference
var predicates = map[string]Predicate{
	// Applicability
	"jurisdiction_eu": func(b *model.Breach, _ *model.RiskAssessment) bool {
		return b.InJurisdiction("eu")
	},
	"jurisdiction_california": func(b *model.Breach, _ *model.RiskAssessment) bool {
		return b.InJurisdiction("california")
	},
	"jurisdiction_canada": func(b *model.Breach, _ *model.RiskAssessment) bool {
		return b.InJurisdiction("canada")
	},
	"health_data_or_covered_entity": func(b *model.Breach, _ *model.RiskAssessment) bool {
		if b.HasDataCategory(types.DataCategoryHealth) {
			return true
		}
		return b.EntityType == "covered_entity" || b.EntityType == "business_associate"
	},

	// Individual-notification gates
	"unencrypted_or_unauthorized": func(b *model.Breach, _ *model.RiskAssessment) bool {
		return !b.DataEncrypted || b.BreachType == types.BreachTypeUnauthorizedAccess
	},
	"significant_harm_risk": func(_ *model.Breach, ra *model.RiskAssessment) bool {
		return ra.Severity.AtLeast(types.SeverityMedium)
	},

	// Exceptions
	"encrypted": func(b *model.Breach, _ *model.RiskAssessment) bool {
		return b.DataEncrypted
	},
	"secured_phi": func(b *model.Breach, _ *model.RiskAssessment) bool {
		return b.DataEncrypted
	},
	"low_risk": func(_ *model.Breach, ra *model.RiskAssessment) bool {
		return ra.Severity == types.SeverityLow
	},
}

func evaluate(name string, b *model.Breach, ra *model.RiskAssessment) bool {
	p, ok := predicates[name]
	if !ok {
		// Unknown predicate names never match; New rejects framework
		// definitions referencing unregistered predicates up front.
		return false
	}
	return p(b, ra)
}

// KnownPredicate reports whether a predicate name is registered
func KnownPredicate(name string) bool {
	_, ok := predicates[name]
	return ok
}
