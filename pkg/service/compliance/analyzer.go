package compliance

import (
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// ErrRiskAssessmentRequired is returned when analysis is attempted before
// a risk assessment has been computed for the breach
var ErrRiskAssessmentRequired = goerr.New("risk assessment required before compliance analysis")

// Analyzer determines which regulatory frameworks apply to a breach and
// what notification and documentation obligations follow
type Analyzer struct {
	frameworks []policy.FrameworkDef
}

// New creates an Analyzer over the framework catalog. Definitions
// referencing unregistered predicates are rejected here rather than
// silently never matching.
func New(frameworks []policy.FrameworkDef) (*Analyzer, error) {
	for _, fw := range frameworks {
		names := append([]string{fw.Applicability}, fw.Exceptions...)
		if fw.IndividualGate != "" {
			names = append(names, fw.IndividualGate)
		}
		for _, name := range names {
			if !KnownPredicate(name) {
				return nil, goerr.New("unknown predicate in framework definition",
					goerr.V("framework", fw.ID), goerr.V("predicate", name))
			}
		}
	}
	return &Analyzer{frameworks: frameworks}, nil
}

// Analyze evaluates every framework against the breach facts and risk
// assessment and aggregates the cross-framework summary
func (a *Analyzer) Analyze(b *model.Breach, ra *model.RiskAssessment) (*model.ComplianceReport, error) {
	if ra == nil {
		return nil, goerr.Wrap(ErrRiskAssessmentRequired, "precondition not met", goerr.V("breach_id", b.ID))
	}

	base := b.DetectionDate
	if base.IsZero() {
		base = b.DiscoveryDate
	}

	report := &model.ComplianceReport{
		BreachID:   b.ID,
		Frameworks: make(map[types.FrameworkID]model.FrameworkResult),
		Retention:  make(map[types.FrameworkID]string),
		AnalyzedAt: time.Now().UTC(),
	}

	docSeen := make(map[string]bool)

	for _, fw := range a.frameworks {
		if !evaluate(fw.Applicability, b, ra) {
			continue
		}

		result := model.FrameworkResult{
			Framework:          fw.ID,
			Name:               fw.Name,
			AuthorityRequired:  fw.AuthorityRequired,
			AuthorityNote:      fw.AuthorityNote,
			IndividualRequired: fw.IndividualRequired,
			IndividualNote:     fw.IndividualNote,
			Documentation:      fw.Documentation,
			Retention:          fw.Retention,
		}

		// An individual-notification gate that does not hold means the
		// requirement never attaches for this framework.
		if fw.IndividualGate != "" && !evaluate(fw.IndividualGate, b, ra) {
			result.IndividualRequired = false
		}

		for _, exc := range fw.Exceptions {
			if evaluate(exc, b, ra) {
				result.ExceptionsMet = append(result.ExceptionsMet, exc)
			}
		}
		// Any satisfied exception lifts the notification requirements; the
		// exception names are retained for audit.
		if len(result.ExceptionsMet) > 0 {
			result.AuthorityRequired = false
			result.IndividualRequired = false
		}

		if result.AuthorityRequired && fw.AuthorityHours > 0 {
			t := base.Add(time.Duration(fw.AuthorityHours) * time.Hour)
			result.AuthorityDeadline = &t
		}
		if result.IndividualRequired && fw.IndividualHours > 0 {
			t := base.Add(time.Duration(fw.IndividualHours) * time.Hour)
			result.IndividualDeadline = &t
		}

		report.Frameworks[fw.ID] = result

		if result.AuthorityRequired {
			report.AuthorityNotification = true
		}
		if result.IndividualRequired {
			report.IndividualNotification = true
		}
		if result.AuthorityDeadline != nil &&
			(report.ShortestDeadline == nil || result.AuthorityDeadline.Before(*report.ShortestDeadline)) {
			report.ShortestDeadline = result.AuthorityDeadline
		}

		for _, doc := range fw.Documentation {
			if !docSeen[doc] {
				docSeen[doc] = true
				report.Documentation = append(report.Documentation, doc)
			}
		}
		if fw.Retention != "" {
			report.Retention[fw.ID] = fw.Retention
		}
	}

	sort.Strings(report.Documentation)

	return report, nil
}
