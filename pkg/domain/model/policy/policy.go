package policy

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Policy holds every tunable table the engines read: risk weights,
// framework definitions, stage requirements, and retention periods. It is
// built once at process start and treated as read-only afterwards.
type Policy struct {
	Risk       RiskPolicy
	Frameworks []FrameworkDef
	Stages     map[types.Stage]StageDef
	Retention  RetentionPolicy
}

// UserCountTier maps an affected-user-count threshold to a scope score.
// Tiers are evaluated in order; the first tier whose threshold is not
// exceeded wins.
type UserCountTier struct {
	UpTo  int // 0 means no upper bound
	Score float64
}

// SeverityThresholds holds the hard score boundaries for severity tiers.
// A score equal to a boundary maps to the higher tier.
type SeverityThresholds struct {
	Critical float64
	High     float64
	Medium   float64
}

// DeadlinePolicy holds the fixed notification deadline offsets
type DeadlinePolicy struct {
	AuthorityUrgent   time.Duration // critical/high severity
	AuthorityStandard time.Duration
	Individual        time.Duration
	Documentation     time.Duration
	Review            time.Duration
}

// RiskPolicy holds the scoring tables of the risk assessor
type RiskPolicy struct {
	SensitivityWeights map[types.DataCategory]float64
	// CoOccurrenceRate scales the summed weights of all categories other
	// than the worst one.
	CoOccurrenceRate  float64
	BreachTypeWeights map[types.BreachType]float64
	DefaultTypeWeight float64
	ScopeWeights      map[types.GeographicScope]float64
	DefaultScopeScore float64
	UserCountTiers    []UserCountTier
	FactorWeights     map[model.RiskFactor]float64
	DefaultImpact     float64
	Thresholds        SeverityThresholds
	Deadlines         DeadlinePolicy

	// Requirement-flag thresholds
	AuthoritySensitivityMin float64
	IndividualSensitivity   float64
	VendorTypeScoreMin      float64
	InsuranceImpactMin      float64
	LegalSensitivityMin     float64
}

// RetentionPolicy holds deferred-work intervals for retired collections
type RetentionPolicy struct {
	ArchiveRetention time.Duration // archived package deletion
	ReviewInterval   time.Duration // periodic review of active collections
}

// Validate checks internal consistency of the policy tables
func (p *Policy) Validate() error {
	var total float64
	for _, w := range p.Risk.FactorWeights {
		total += w
	}
	if total < 0.999 || total > 1.001 {
		return goerr.New("risk factor weights must sum to 1.0", goerr.V("sum", total))
	}

	t := p.Risk.Thresholds
	if !(t.Critical > t.High && t.High > t.Medium) {
		return goerr.New("severity thresholds must be strictly descending",
			goerr.V("critical", t.Critical), goerr.V("high", t.High), goerr.V("medium", t.Medium))
	}

	if len(p.Risk.UserCountTiers) == 0 {
		return goerr.New("at least one user count tier is required")
	}
	last := p.Risk.UserCountTiers[len(p.Risk.UserCountTiers)-1]
	if last.UpTo != 0 {
		return goerr.New("last user count tier must be unbounded")
	}

	seen := make(map[types.FrameworkID]bool)
	for _, fw := range p.Frameworks {
		if err := fw.Validate(); err != nil {
			return goerr.Wrap(err, "invalid framework definition")
		}
		if seen[fw.ID] {
			return goerr.New("duplicate framework ID", goerr.V("id", fw.ID))
		}
		seen[fw.ID] = true
	}

	for stage, def := range p.Stages {
		if !stage.IsValid() {
			return goerr.New("invalid stage in policy", goerr.V("stage", stage))
		}
		for _, req := range def.Requirements {
			if req.Field == "" {
				return goerr.New("stage requirement field is required", goerr.V("stage", stage))
			}
		}
	}

	if p.Retention.ArchiveRetention <= 0 {
		return goerr.New("archive retention must be positive")
	}

	return nil
}
