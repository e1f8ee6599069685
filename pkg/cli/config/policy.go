package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/service/compliance"
	"github.com/urfave/cli/v3"
)

// Policy holds CLI flags for policy configuration
type Policy struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to a policy TOML file overriding the built-in tables",
			Sources:     cli.EnvVars("CUSTODIAN_POLICY"),
			Destination: &p.path,
		},
	}
}

// Configure loads the policy tables: built-in defaults, with the TOML file
// overlaid when one is configured. The result is validated, including the
// predicate names referenced by framework definitions.
func (p *Policy) Configure() (*policy.Policy, error) {
	pol := policy.Default()

	if p.path != "" {
		overrides, err := LoadPolicyFile(p.path)
		if err != nil {
			return nil, err
		}
		overrides.Apply(pol)
	}

	if err := pol.Validate(); err != nil {
		return nil, goerr.Wrap(err, "policy validation failed")
	}
	if _, err := compliance.New(pol.Frameworks); err != nil {
		return nil, goerr.Wrap(err, "framework definitions reference unknown predicates")
	}

	return pol, nil
}

// PolicyFile is the TOML representation of deployment policy overrides.
// Absent tables keep their built-in defaults.
type PolicyFile struct {
	Risk       *RiskOverrides    `toml:"risk"`
	Frameworks []FrameworkConfig `toml:"framework"`
	Retention  *RetentionConfig  `toml:"retention"`
}

// RiskOverrides carries partial risk table overrides
type RiskOverrides struct {
	SensitivityWeights map[string]float64 `toml:"sensitivity_weights"`
	CoOccurrenceRate   *float64           `toml:"co_occurrence_rate"`
	BreachTypeWeights  map[string]float64 `toml:"breach_type_weights"`
	DefaultTypeWeight  *float64           `toml:"default_type_weight"`
	ScopeWeights       map[string]float64 `toml:"scope_weights"`
	FactorWeights      map[string]float64 `toml:"factor_weights"`
	DefaultImpact      *float64           `toml:"default_impact"`

	CriticalThreshold *float64 `toml:"critical_threshold"`
	HighThreshold     *float64 `toml:"high_threshold"`
	MediumThreshold   *float64 `toml:"medium_threshold"`

	AuthorityUrgentHours   *int `toml:"authority_urgent_hours"`
	AuthorityStandardHours *int `toml:"authority_standard_hours"`
	IndividualHours        *int `toml:"individual_hours"`
	DocumentationHours     *int `toml:"documentation_hours"`
	ReviewHours            *int `toml:"review_hours"`
}

// FrameworkConfig is the TOML representation of one framework definition.
// When any framework blocks are present they replace the built-in catalog
// wholesale.
type FrameworkConfig struct {
	ID                 string   `toml:"id"`
	Name               string   `toml:"name"`
	Applicability      string   `toml:"applicability"`
	AuthorityRequired  bool     `toml:"authority_required"`
	AuthorityHours     int      `toml:"authority_hours"`
	AuthorityNote      string   `toml:"authority_note"`
	IndividualRequired bool     `toml:"individual_required"`
	IndividualGate     string   `toml:"individual_gate"`
	IndividualHours    int      `toml:"individual_hours"`
	IndividualNote     string   `toml:"individual_note"`
	Exceptions         []string `toml:"exceptions"`
	Documentation      []string `toml:"documentation"`
	Retention          string   `toml:"retention"`
}

// RetentionConfig carries retention interval overrides in days
type RetentionConfig struct {
	ArchiveRetentionDays *int `toml:"archive_retention_days"`
	ReviewIntervalDays   *int `toml:"review_interval_days"`
}

// LoadPolicyFile reads and parses a policy TOML file
func LoadPolicyFile(path string) (*PolicyFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", path))
	}

	var file PolicyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy TOML", goerr.V("path", path))
	}

	return &file, nil
}

// Apply overlays the file's overrides on the given policy in place
func (f *PolicyFile) Apply(pol *policy.Policy) {
	if f.Risk != nil {
		f.Risk.apply(&pol.Risk)
	}

	if len(f.Frameworks) > 0 {
		frameworks := make([]policy.FrameworkDef, len(f.Frameworks))
		for i, fw := range f.Frameworks {
			frameworks[i] = policy.FrameworkDef{
				ID:                 types.FrameworkID(fw.ID),
				Name:               fw.Name,
				Applicability:      fw.Applicability,
				AuthorityRequired:  fw.AuthorityRequired,
				AuthorityHours:     fw.AuthorityHours,
				AuthorityNote:      fw.AuthorityNote,
				IndividualRequired: fw.IndividualRequired,
				IndividualGate:     fw.IndividualGate,
				IndividualHours:    fw.IndividualHours,
				IndividualNote:     fw.IndividualNote,
				Exceptions:         fw.Exceptions,
				Documentation:      fw.Documentation,
				Retention:          fw.Retention,
			}
		}
		pol.Frameworks = frameworks
	}

	if f.Retention != nil {
		if v := f.Retention.ArchiveRetentionDays; v != nil {
			pol.Retention.ArchiveRetention = time.Duration(*v) * 24 * time.Hour
		}
		if v := f.Retention.ReviewIntervalDays; v != nil {
			pol.Retention.ReviewInterval = time.Duration(*v) * 24 * time.Hour
		}
	}
}

func (r *RiskOverrides) apply(risk *policy.RiskPolicy) {
	for k, v := range r.SensitivityWeights {
		risk.SensitivityWeights[types.DataCategory(k)] = v
	}
	if r.CoOccurrenceRate != nil {
		risk.CoOccurrenceRate = *r.CoOccurrenceRate
	}
	for k, v := range r.BreachTypeWeights {
		risk.BreachTypeWeights[types.BreachType(k)] = v
	}
	if r.DefaultTypeWeight != nil {
		risk.DefaultTypeWeight = *r.DefaultTypeWeight
	}
	for k, v := range r.ScopeWeights {
		risk.ScopeWeights[types.GeographicScope(k)] = v
	}
	for k, v := range r.FactorWeights {
		risk.FactorWeights[model.RiskFactor(k)] = v
	}
	if r.DefaultImpact != nil {
		risk.DefaultImpact = *r.DefaultImpact
	}

	if r.CriticalThreshold != nil {
		risk.Thresholds.Critical = *r.CriticalThreshold
	}
	if r.HighThreshold != nil {
		risk.Thresholds.High = *r.HighThreshold
	}
	if r.MediumThreshold != nil {
		risk.Thresholds.Medium = *r.MediumThreshold
	}

	if r.AuthorityUrgentHours != nil {
		risk.Deadlines.AuthorityUrgent = time.Duration(*r.AuthorityUrgentHours) * time.Hour
	}
	if r.AuthorityStandardHours != nil {
		risk.Deadlines.AuthorityStandard = time.Duration(*r.AuthorityStandardHours) * time.Hour
	}
	if r.IndividualHours != nil {
		risk.Deadlines.Individual = time.Duration(*r.IndividualHours) * time.Hour
	}
	if r.DocumentationHours != nil {
		risk.Deadlines.Documentation = time.Duration(*r.DocumentationHours) * time.Hour
	}
	if r.ReviewHours != nil {
		risk.Deadlines.Review = time.Duration(*r.ReviewHours) * time.Hour
	}
}
