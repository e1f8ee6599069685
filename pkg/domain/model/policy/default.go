package policy

import (
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Default returns the built-in policy tables. A deployment may override
// individual tables via the policy TOML file before the Policy is frozen.
func Default() *Policy {
	return &Policy{
		Risk:       defaultRiskPolicy(),
		Frameworks: defaultFrameworks(),
		Stages:     defaultStages(),
		Retention: RetentionPolicy{
			ArchiveRetention: 7 * 365 * 24 * time.Hour,
			ReviewInterval:   365 * 24 * time.Hour,
		},
	}
}

func defaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		SensitivityWeights: map[types.DataCategory]float64{
			types.DataCategoryHealth:      100,
			types.DataCategoryFinancial:   90,
			types.DataCategoryIdentity:    85,
			types.DataCategoryCredentials: 80,
			types.DataCategoryPersonal:    70,
			types.DataCategoryContact:     60,
			types.DataCategoryBehavioral:  50,
			types.DataCategoryDevice:      40,
			types.DataCategoryMetadata:    30,
			types.DataCategoryPublic:      10,
		},
		CoOccurrenceRate: 0.10,
		BreachTypeWeights: map[types.BreachType]float64{
			types.BreachTypeUnauthorizedAccess:   100,
			types.BreachTypeHacking:              95,
			types.BreachTypeMalware:              90,
			types.BreachTypePhishing:             85,
			types.BreachTypeInsiderThreat:        80,
			types.BreachTypePhysicalTheft:        75,
			types.BreachTypeThirdParty:           70,
			types.BreachTypeAccidentalDisclosure: 65,
			types.BreachTypeLostDevice:           65,
			types.BreachTypeMisconfiguration:     60,
		},
		DefaultTypeWeight: 50,
		ScopeWeights: map[types.GeographicScope]float64{
			types.ScopeLocal:         50,
			types.ScopeRegional:      60,
			types.ScopeNational:      70,
			types.ScopeInternational: 85,
			types.ScopeGlobal:        100,
		},
		DefaultScopeScore: 50,
		UserCountTiers: []UserCountTier{
			{UpTo: 100, Score: 50},
			{UpTo: 1_000, Score: 60},
			{UpTo: 10_000, Score: 70},
			{UpTo: 100_000, Score: 80},
			{UpTo: 1_000_000, Score: 90},
			{UpTo: 0, Score: 100},
		},
		FactorWeights: map[model.RiskFactor]float64{
			model.FactorDataSensitivity: 0.35,
			model.FactorBreachType:      0.25,
			model.FactorScope:           0.20,
			model.FactorImpact:          0.20,
		},
		DefaultImpact: 50,
		Thresholds: SeverityThresholds{
			Critical: 90,
			High:     75,
			Medium:   50,
		},
		Deadlines: DeadlinePolicy{
			AuthorityUrgent:   72 * time.Hour,
			AuthorityStandard: 5 * 24 * time.Hour,
			Individual:        7 * 24 * time.Hour,
			Documentation:     30 * 24 * time.Hour,
			Review:            60 * 24 * time.Hour,
		},
		AuthoritySensitivityMin: 80,
		IndividualSensitivity:   70,
		VendorTypeScoreMin:      80,
		InsuranceImpactMin:      80,
		LegalSensitivityMin:     85,
	}
}

func defaultFrameworks() []FrameworkDef {
	return []FrameworkDef{
		{
			ID:                 types.FrameworkGDPR,
			Name:               "General Data Protection Regulation",
			Applicability:      "jurisdiction_eu",
			AuthorityRequired:  true,
			AuthorityHours:     72,
			IndividualRequired: true,
			IndividualNote:     "without undue delay",
			Exceptions:         []string{"encrypted", "low_risk"},
			Documentation: []string{
				"nature_of_breach",
				"categories_and_approximate_volume",
				"dpo_contact",
				"likely_consequences",
				"measures_taken_or_proposed",
			},
			Retention: "breach register retained indefinitely",
		},
		{
			ID:                 types.FrameworkCCPA,
			Name:               "California Consumer Privacy Act",
			Applicability:      "jurisdiction_california",
			AuthorityRequired:  true,
			AuthorityNote:      "without unreasonable delay",
			IndividualRequired: true,
			IndividualGate:     "unencrypted_or_unauthorized",
			IndividualNote:     "in the most expedient time possible",
			Exceptions:         []string{"encrypted"},
			Documentation: []string{
				"nature_of_breach",
				"categories_of_personal_information",
				"remediation_offered",
			},
			Retention: "24 months",
		},
		{
			ID:                 types.FrameworkHIPAA,
			Name:               "Health Insurance Portability and Accountability Act",
			Applicability:      "health_data_or_covered_entity",
			AuthorityRequired:  true,
			AuthorityHours:     60 * 24,
			IndividualRequired: true,
			IndividualHours:    60 * 24,
			Exceptions:         []string{"secured_phi"},
			Documentation: []string{
				"nature_of_phi_involved",
				"unauthorized_recipient",
				"whether_phi_acquired_or_viewed",
				"risk_mitigation_extent",
			},
			Retention: "6 years",
		},
		{
			ID:                 types.FrameworkPIPEDA,
			Name:               "Personal Information Protection and Electronic Documents Act",
			Applicability:      "jurisdiction_canada",
			AuthorityRequired:  true,
			AuthorityNote:      "as soon as feasible",
			IndividualRequired: true,
			IndividualGate:     "significant_harm_risk",
			IndividualNote:     "as soon as feasible",
			Exceptions:         []string{"encrypted"},
			Documentation: []string{
				"circumstances_of_breach",
				"day_or_period_of_breach",
				"personal_information_involved",
			},
			Retention: "24 months",
		},
	}
}

func defaultStages() map[types.Stage]StageDef {
	return map[types.Stage]StageDef{
		types.StageDraft: {
			Title:       "Draft",
			Description: "Initial definition of the data collection",
			Color:       "gray",
			Requirements: []Requirement{
				{Field: model.MetaPurposeStatement, Label: "Purpose statement", Required: true, Validator: "min_length:50"},
				{Field: model.MetaLegalAuthority, Label: "Legal authority", Required: true},
				{Field: model.MetaSystemName, Label: "System name", Required: true},
			},
		},
		types.StagePTARequired: {
			Title:       "PTA Required",
			Description: "Privacy threshold analysis must be initiated",
			Color:       "yellow",
		},
		types.StagePTAInProgress: {
			Title:       "PTA In Progress",
			Description: "Privacy threshold analysis underway",
			Color:       "yellow",
			Requirements: []Requirement{
				{Field: model.MetaContainsPII, Label: "Contains PII", Required: true, Validator: "yes_no"},
				{Field: model.MetaDataElements, Label: "Data elements", Required: true},
			},
		},
		types.StagePTAReview: {
			Title:       "PTA Review",
			Description: "Privacy threshold analysis under review",
			Color:       "orange",
		},
		types.StagePIARequired: {
			Title:       "PIA Required",
			Description: "Full privacy impact assessment must be initiated",
			Color:       "red",
		},
		types.StagePIAInProgress: {
			Title:       "PIA In Progress",
			Description: "Privacy impact assessment underway",
			Color:       "red",
			Requirements: []Requirement{
				{Field: model.MetaRetentionSchedule, Label: "Retention schedule", Required: true},
				{Field: model.MetaSecurityControls, Label: "Security controls", Required: true},
			},
		},
		types.StagePIAReview: {
			Title:       "PIA Review",
			Description: "Privacy impact assessment under review",
			Color:       "orange",
		},
		types.StageImplementation: {
			Title:       "Implementation",
			Description: "System build and privacy control implementation",
			Color:       "blue",
			Requirements: []Requirement{
				{Field: model.MetaTestingResults, Label: "Testing results", Required: true},
				{Field: model.MetaDeploymentDate, Label: "Deployment date", Required: true, Validator: "date"},
			},
		},
		types.StageActive: {
			Title:       "Active",
			Description: "Collection in production with periodic review",
			Color:       "green",
		},
		types.StageRetirement: {
			Title:       "Retirement",
			Description: "Collection wind-down and data disposition",
			Color:       "purple",
			Requirements: []Requirement{
				{Field: model.MetaDispositionMethod, Label: "Disposition method", Required: true},
				{Field: model.MetaDispositionDate, Label: "Disposition date", Required: true, Validator: "date"},
			},
		},
		types.StageArchived: {
			Title:       "Archived",
			Description: "Retired collection retained for the disposition period",
			Color:       "gray",
		},
	}
}
