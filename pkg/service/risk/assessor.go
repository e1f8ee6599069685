package risk

import (
	"math"
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Assessor derives a risk assessment from breach facts. It is pure
// computation over the policy tables; the caller persists the result.
type Assessor struct {
	pol *policy.RiskPolicy
}

// New creates an Assessor over the given risk policy
func New(pol *policy.RiskPolicy) *Assessor {
	return &Assessor{pol: pol}
}

// Assess computes the full risk assessment for a breach
func (a *Assessor) Assess(b *model.Breach) *model.RiskAssessment {
	sensitivity := a.dataSensitivityScore(b)
	breachType := a.breachTypeScore(b)
	scope := a.scopeScore(b)
	impact := a.impactScore(b)

	factors := map[model.RiskFactor]model.FactorScore{
		model.FactorDataSensitivity: {Score: sensitivity, Weight: a.pol.FactorWeights[model.FactorDataSensitivity]},
		model.FactorBreachType:      {Score: breachType, Weight: a.pol.FactorWeights[model.FactorBreachType]},
		model.FactorScope:           {Score: scope, Weight: a.pol.FactorWeights[model.FactorScope]},
		model.FactorImpact:          {Score: impact, Weight: a.pol.FactorWeights[model.FactorImpact]},
	}

	var total float64
	for _, f := range factors {
		total += f.Score * f.Weight
	}
	score := round2(total)
	severity := a.severityTier(score)

	ra := &model.RiskAssessment{
		BreachID:      b.ID,
		Factors:       factors,
		Score:         score,
		Severity:      severity,
		Notifications: a.notificationFlags(severity, sensitivity, breachType, impact),
		Deadlines:     a.deadlines(b, severity),
		AssessedAt:    time.Now().UTC(),
	}
	ra.Recommendations = a.recommendations(ra)
	return ra
}

// dataSensitivityScore takes the worst affected category's weight and adds
// a fraction of the remaining weights: the single worst category
// dominates, but co-occurring sensitive categories compound risk. The
// result is deliberately uncapped.
func (a *Assessor) dataSensitivityScore(b *model.Breach) float64 {
	var worst, sum float64
	for _, cat := range b.AffectedData {
		w, ok := a.pol.SensitivityWeights[cat]
		if !ok {
			continue
		}
		sum += w
		if w > worst {
			worst = w
		}
	}
	if worst == 0 {
		return 0
	}
	return worst + a.pol.CoOccurrenceRate*(sum-worst)
}

func (a *Assessor) breachTypeScore(b *model.Breach) float64 {
	if w, ok := a.pol.BreachTypeWeights[b.BreachType]; ok {
		return w
	}
	return a.pol.DefaultTypeWeight
}

// scopeScore averages the geographic-scope weight with the affected-user
// tier score. Both tables are step functions.
func (a *Assessor) scopeScore(b *model.Breach) float64 {
	geo, ok := a.pol.ScopeWeights[b.GeographicScope]
	if !ok {
		geo = a.pol.DefaultScopeScore
	}

	count := b.UserCount()
	tier := a.pol.UserCountTiers[len(a.pol.UserCountTiers)-1].Score
	for _, t := range a.pol.UserCountTiers {
		if t.UpTo != 0 && count <= t.UpTo {
			tier = t.Score
			break
		}
	}

	return (geo + tier) / 2
}

// impactScore is the unweighted average of the three impact inputs, each
// defaulting when not assessed
func (a *Assessor) impactScore(b *model.Breach) float64 {
	value := func(v *float64) float64 {
		if v == nil {
			return a.pol.DefaultImpact
		}
		return *v
	}
	return (value(b.FinancialImpact) + value(b.ReputationImpact) + value(b.OperationalImpact)) / 3
}

func (a *Assessor) severityTier(score float64) types.Severity {
	t := a.pol.Thresholds
	switch {
	case score >= t.Critical:
		return types.SeverityCritical
	case score >= t.High:
		return types.SeverityHigh
	case score >= t.Medium:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// notificationFlags evaluates the independent requirement rules. The
// rules are not mutually exclusive.
func (a *Assessor) notificationFlags(severity types.Severity, sensitivity, typeScore, impact float64) map[types.RequirementKind]bool {
	critical := severity == types.SeverityCritical
	return map[types.RequirementKind]bool{
		types.RequirementAuthority:  severity.AtLeast(types.SeverityHigh) || sensitivity >= a.pol.AuthoritySensitivityMin,
		types.RequirementIndividual: critical || sensitivity >= a.pol.IndividualSensitivity,
		types.RequirementVendor:     typeScore >= a.pol.VendorTypeScoreMin,
		types.RequirementInsurance:  critical || impact >= a.pol.InsuranceImpactMin,
		types.RequirementLegal:      critical || sensitivity >= a.pol.LegalSensitivityMin,
	}
}

// deadlines computes the fixed notification deadlines from the detection
// date (falling back to the discovery date when detection is unset)
func (a *Assessor) deadlines(b *model.Breach, severity types.Severity) map[types.DeadlineKind]time.Time {
	base := b.DetectionDate
	if base.IsZero() {
		base = b.DiscoveryDate
	}

	authority := a.pol.Deadlines.AuthorityStandard
	if severity.AtLeast(types.SeverityHigh) {
		authority = a.pol.Deadlines.AuthorityUrgent
	}

	return map[types.DeadlineKind]time.Time{
		types.DeadlineAuthority:     base.Add(authority),
		types.DeadlineIndividual:    base.Add(a.pol.Deadlines.Individual),
		types.DeadlineDocumentation: base.Add(a.pol.Deadlines.Documentation),
		types.DeadlineReview:        base.Add(a.pol.Deadlines.Review),
	}
}

func (a *Assessor) recommendations(ra *model.RiskAssessment) []string {
	var recs []string
	if ra.Requires(types.RequirementAuthority) {
		recs = append(recs, "Notify the supervisory authority before the computed deadline")
	}
	if ra.Requires(types.RequirementIndividual) {
		recs = append(recs, "Prepare individual notifications for affected users")
	}
	if ra.Requires(types.RequirementVendor) {
		recs = append(recs, "Review vendor and processor contracts for breach clauses")
	}
	if ra.Requires(types.RequirementInsurance) {
		recs = append(recs, "Notify the cyber insurance carrier")
	}
	if ra.Requires(types.RequirementLegal) {
		recs = append(recs, "Engage legal counsel before external communication")
	}
	if ra.Severity == types.SeverityCritical {
		recs = append(recs, "Convene the incident response team immediately")
	}
	return recs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
