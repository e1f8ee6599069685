package policy_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

func TestDefaultPolicyIsValid(t *testing.T) {
	gt.NoError(t, policy.Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Run("factor weights must sum to one", func(t *testing.T) {
		pol := policy.Default()
		pol.Risk.FactorWeights[model.FactorImpact] = 0.5
		gt.Error(t, pol.Validate())
	})

	t.Run("severity thresholds must descend", func(t *testing.T) {
		pol := policy.Default()
		pol.Risk.Thresholds.High = 95
		gt.Error(t, pol.Validate())
	})

	t.Run("last user count tier must be unbounded", func(t *testing.T) {
		pol := policy.Default()
		pol.Risk.UserCountTiers = []policy.UserCountTier{
			{UpTo: 100, Score: 50},
		}
		gt.Error(t, pol.Validate())
	})

	t.Run("duplicate framework IDs are rejected", func(t *testing.T) {
		pol := policy.Default()
		pol.Frameworks = append(pol.Frameworks, pol.Frameworks[0])
		gt.Error(t, pol.Validate())
	})

	t.Run("archive retention must be positive", func(t *testing.T) {
		pol := policy.Default()
		pol.Retention.ArchiveRetention = 0
		gt.Error(t, pol.Validate())
	})
}

func TestDefaultStages(t *testing.T) {
	pol := policy.Default()

	t.Run("every lifecycle stage has a definition", func(t *testing.T) {
		for _, stage := range types.AllStages() {
			def, ok := pol.Stages[stage]
			gt.Bool(t, ok).True()
			gt.Value(t, def.Title).NotEqual("")
		}
	})

	t.Run("draft requires a substantial purpose statement", func(t *testing.T) {
		var found bool
		for _, req := range pol.Stages[types.StageDraft].Requirements {
			if req.Field == model.MetaPurposeStatement {
				found = true
				gt.Bool(t, req.Required).True()
				gt.Value(t, req.Validator).Equal("min_length:50")
			}
		}
		gt.Bool(t, found).True()
	})
}
