package risk_test

import (
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"github.com/privsec-lab/custodian/pkg/service/risk"
)

func newAssessor(t *testing.T) *risk.Assessor {
	t.Helper()
	pol := policy.Default()
	return risk.New(&pol.Risk)
}

func floatPtr(v float64) *float64 {
	return &v
}

func baseBreach() *model.Breach {
	return &model.Breach{
		ID:            1,
		Title:         "test incident",
		Description:   "test",
		Severity:      types.SeverityMedium,
		Status:        types.BreachStatusDetected,
		DetectionDate: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDataSensitivityScore(t *testing.T) {
	assessor := newAssessor(t)

	t.Run("single category takes its weight", func(t *testing.T) {
		b := baseBreach()
		b.AffectedData = []types.DataCategory{types.DataCategoryHealth}

		ra := assessor.Assess(b)
		gt.Value(t, ra.FactorScoreValue(model.FactorDataSensitivity)).Equal(float64(100))
	})

	t.Run("co-occurring categories compound beyond the worst", func(t *testing.T) {
		b := baseBreach()
		b.AffectedData = []types.DataCategory{types.DataCategoryHealth, types.DataCategoryFinancial}

		// 100 + 0.10 * 90, deliberately uncapped
		got := assessor.Assess(b).FactorScoreValue(model.FactorDataSensitivity)
		gt.Bool(t, math.Abs(got-109) < 1e-9).True()
	})

	t.Run("no known categories scores zero", func(t *testing.T) {
		b := baseBreach()
		b.AffectedData = nil

		ra := assessor.Assess(b)
		gt.Value(t, ra.FactorScoreValue(model.FactorDataSensitivity)).Equal(float64(0))
	})
}

func TestBreachTypeScore(t *testing.T) {
	assessor := newAssessor(t)

	t.Run("known type uses its weight", func(t *testing.T) {
		b := baseBreach()
		b.BreachType = types.BreachTypeHacking

		ra := assessor.Assess(b)
		gt.Value(t, ra.FactorScoreValue(model.FactorBreachType)).Equal(float64(95))
	})

	t.Run("unknown type falls back to default weight", func(t *testing.T) {
		b := baseBreach()
		b.BreachType = types.BreachType("carrier_pigeon")

		ra := assessor.Assess(b)
		gt.Value(t, ra.FactorScoreValue(model.FactorBreachType)).Equal(float64(50))
	})
}

func TestScopeScore(t *testing.T) {
	assessor := newAssessor(t)

	t.Run("averages geographic weight and user count tier", func(t *testing.T) {
		b := baseBreach()
		b.GeographicScope = types.ScopeGlobal
		b.AffectedCount = 2_000_000

		// (100 + 100) / 2
		ra := assessor.Assess(b)
		gt.Value(t, ra.FactorScoreValue(model.FactorScope)).Equal(float64(100))
	})

	t.Run("tier upper bounds are inclusive", func(t *testing.T) {
		b := baseBreach()
		b.GeographicScope = types.ScopeLocal

		b.AffectedCount = 100
		gt.Value(t, assessor.Assess(b).FactorScoreValue(model.FactorScope)).Equal(float64(50))

		b.AffectedCount = 101
		gt.Value(t, assessor.Assess(b).FactorScoreValue(model.FactorScope)).Equal(float64(55))
	})

	t.Run("falls back to identifier list length without explicit count", func(t *testing.T) {
		b := baseBreach()
		b.GeographicScope = types.ScopeLocal
		b.AffectedCount = 0
		b.AffectedUsers = []string{"u1", "u2", "u3"}

		gt.Value(t, assessor.Assess(b).FactorScoreValue(model.FactorScope)).Equal(float64(50))
	})

	t.Run("unknown geography uses the default scope score", func(t *testing.T) {
		b := baseBreach()
		b.GeographicScope = types.GeographicScope("orbital")
		b.AffectedCount = 50

		gt.Value(t, assessor.Assess(b).FactorScoreValue(model.FactorScope)).Equal(float64(50))
	})
}

func TestImpactScore(t *testing.T) {
	assessor := newAssessor(t)

	t.Run("unassessed inputs default to 50", func(t *testing.T) {
		b := baseBreach()
		ra := assessor.Assess(b)
		gt.Value(t, ra.FactorScoreValue(model.FactorImpact)).Equal(float64(50))
	})

	t.Run("averages the three assessed inputs", func(t *testing.T) {
		b := baseBreach()
		b.FinancialImpact = floatPtr(90)
		b.ReputationImpact = floatPtr(60)
		b.OperationalImpact = floatPtr(30)

		ra := assessor.Assess(b)
		gt.Value(t, ra.FactorScoreValue(model.FactorImpact)).Equal(float64(60))
	})
}

func TestWeightedScoreAndSeverity(t *testing.T) {
	assessor := newAssessor(t)

	t.Run("score of exactly 90 is critical", func(t *testing.T) {
		b := baseBreach()
		b.AffectedData = []types.DataCategory{types.DataCategoryHealth}
		b.BreachType = types.BreachTypeUnauthorizedAccess
		b.GeographicScope = types.ScopeGlobal
		b.AffectedCount = 2_000_000

		// .35*100 + .25*100 + .20*100 + .20*50
		ra := assessor.Assess(b)
		gt.Value(t, ra.Score).Equal(90.00)
		gt.Value(t, ra.Severity).Equal(types.SeverityCritical)
	})

	t.Run("score just below 90 is high", func(t *testing.T) {
		b := baseBreach()
		b.AffectedData = []types.DataCategory{types.DataCategoryHealth}
		b.BreachType = types.BreachTypeUnauthorizedAccess
		b.GeographicScope = types.ScopeGlobal
		b.AffectedCount = 2_000_000
		b.FinancialImpact = floatPtr(49.95)
		b.ReputationImpact = floatPtr(49.95)
		b.OperationalImpact = floatPtr(49.95)

		ra := assessor.Assess(b)
		gt.Value(t, ra.Score).Equal(89.99)
		gt.Value(t, ra.Severity).Equal(types.SeverityHigh)
	})

	t.Run("mid-table facts land in medium", func(t *testing.T) {
		b := baseBreach()
		b.AffectedData = []types.DataCategory{types.DataCategoryPersonal}
		b.BreachType = types.BreachTypePhishing
		b.GeographicScope = types.ScopeLocal
		b.AffectedCount = 10

		// .35*70 + .25*85 + .20*50 + .20*50
		ra := assessor.Assess(b)
		gt.Value(t, ra.Score).Equal(65.75)
		gt.Value(t, ra.Severity).Equal(types.SeverityMedium)
	})

	t.Run("sparse facts land in low", func(t *testing.T) {
		b := baseBreach()
		b.BreachType = types.BreachType("unknown")
		b.GeographicScope = types.ScopeLocal
		b.AffectedCount = 5

		// .35*0 + .25*50 + .20*50 + .20*50
		ra := assessor.Assess(b)
		gt.Value(t, ra.Score).Equal(32.5)
		gt.Value(t, ra.Severity).Equal(types.SeverityLow)
	})
}

func TestNotificationFlags(t *testing.T) {
	assessor := newAssessor(t)

	t.Run("critical severity sets every severity-driven flag", func(t *testing.T) {
		b := baseBreach()
		b.AffectedData = []types.DataCategory{types.DataCategoryHealth}
		b.BreachType = types.BreachTypeUnauthorizedAccess
		b.GeographicScope = types.ScopeGlobal
		b.AffectedCount = 2_000_000

		ra := assessor.Assess(b)
		gt.Value(t, ra.Severity).Equal(types.SeverityCritical)
		gt.Bool(t, ra.Requires(types.RequirementAuthority)).True()
		gt.Bool(t, ra.Requires(types.RequirementIndividual)).True()
		gt.Bool(t, ra.Requires(types.RequirementVendor)).True()
		gt.Bool(t, ra.Requires(types.RequirementInsurance)).True()
		gt.Bool(t, ra.Requires(types.RequirementLegal)).True()
	})

	t.Run("high sensitivity triggers authority regardless of severity", func(t *testing.T) {
		b := baseBreach()
		b.AffectedData = []types.DataCategory{types.DataCategoryCredentials} // weight 80
		b.BreachType = types.BreachType("unknown")
		b.GeographicScope = types.ScopeLocal
		b.AffectedCount = 5
		b.FinancialImpact = floatPtr(10)
		b.ReputationImpact = floatPtr(10)
		b.OperationalImpact = floatPtr(10)

		ra := assessor.Assess(b)
		gt.Bool(t, ra.Severity.AtLeast(types.SeverityHigh)).False()
		gt.Bool(t, ra.Requires(types.RequirementAuthority)).True()
		gt.Bool(t, ra.Requires(types.RequirementIndividual)).True()
		gt.Bool(t, ra.Requires(types.RequirementLegal)).False()
	})

	t.Run("quiet incident raises no flags", func(t *testing.T) {
		b := baseBreach()
		b.AffectedData = []types.DataCategory{types.DataCategoryPublic}
		b.BreachType = types.BreachTypeMisconfiguration
		b.GeographicScope = types.ScopeLocal
		b.AffectedCount = 5
		b.FinancialImpact = floatPtr(10)
		b.ReputationImpact = floatPtr(10)
		b.OperationalImpact = floatPtr(10)

		ra := assessor.Assess(b)
		gt.Bool(t, ra.Requires(types.RequirementAuthority)).False()
		gt.Bool(t, ra.Requires(types.RequirementIndividual)).False()
		gt.Bool(t, ra.Requires(types.RequirementVendor)).False()
		gt.Bool(t, ra.Requires(types.RequirementInsurance)).False()
		gt.Bool(t, ra.Requires(types.RequirementLegal)).False()
		gt.Array(t, ra.Recommendations).Length(0)
	})
}

func TestDeadlines(t *testing.T) {
	assessor := newAssessor(t)
	detected := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("high severity gets the urgent authority deadline", func(t *testing.T) {
		b := baseBreach()
		b.DetectionDate = detected
		b.AffectedData = []types.DataCategory{types.DataCategoryHealth}
		b.BreachType = types.BreachTypeUnauthorizedAccess
		b.GeographicScope = types.ScopeGlobal
		b.AffectedCount = 2_000_000

		ra := assessor.Assess(b)
		gt.Bool(t, ra.Severity.AtLeast(types.SeverityHigh)).True()

		deadline, ok := ra.Deadline(types.DeadlineAuthority)
		gt.Bool(t, ok).True()
		gt.Value(t, deadline).Equal(detected.Add(72 * time.Hour))
	})

	t.Run("lower severity gets the standard authority deadline", func(t *testing.T) {
		b := baseBreach()
		b.DetectionDate = detected
		b.BreachType = types.BreachType("unknown")
		b.GeographicScope = types.ScopeLocal
		b.AffectedCount = 5

		ra := assessor.Assess(b)
		gt.Bool(t, ra.Severity.AtLeast(types.SeverityHigh)).False()

		deadline, ok := ra.Deadline(types.DeadlineAuthority)
		gt.Bool(t, ok).True()
		gt.Value(t, deadline).Equal(detected.Add(5 * 24 * time.Hour))
	})

	t.Run("fixed deadlines are offsets from detection", func(t *testing.T) {
		b := baseBreach()
		b.DetectionDate = detected

		ra := assessor.Assess(b)

		individual, _ := ra.Deadline(types.DeadlineIndividual)
		gt.Value(t, individual).Equal(detected.Add(7 * 24 * time.Hour))
		documentation, _ := ra.Deadline(types.DeadlineDocumentation)
		gt.Value(t, documentation).Equal(detected.Add(30 * 24 * time.Hour))
		review, _ := ra.Deadline(types.DeadlineReview)
		gt.Value(t, review).Equal(detected.Add(60 * 24 * time.Hour))
	})

	t.Run("falls back to discovery date when detection is unset", func(t *testing.T) {
		discovered := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
		b := baseBreach()
		b.DetectionDate = time.Time{}
		b.DiscoveryDate = discovered

		ra := assessor.Assess(b)

		individual, _ := ra.Deadline(types.DeadlineIndividual)
		gt.Value(t, individual).Equal(discovered.Add(7 * 24 * time.Hour))
	})
}

func TestRecommendations(t *testing.T) {
	assessor := newAssessor(t)

	b := baseBreach()
	b.AffectedData = []types.DataCategory{types.DataCategoryHealth}
	b.BreachType = types.BreachTypeUnauthorizedAccess
	b.GeographicScope = types.ScopeGlobal
	b.AffectedCount = 2_000_000

	ra := assessor.Assess(b)
	gt.Value(t, ra.Severity).Equal(types.SeverityCritical)

	// All five flag recommendations plus the critical escalation
	gt.Array(t, ra.Recommendations).Length(6)
	gt.Array(t, ra.Recommendations).Has("Convene the incident response team immediately")
}
