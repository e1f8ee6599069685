package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

type breachRepository struct {
	mu          sync.RWMutex
	breaches    map[int64]*model.Breach
	assessments map[int64]*model.RiskAssessment
	reports     map[int64]*model.ComplianceReport
	nextID      int64
}

func newBreachRepository() *breachRepository {
	return &breachRepository{
		breaches:    make(map[int64]*model.Breach),
		assessments: make(map[int64]*model.RiskAssessment),
		reports:     make(map[int64]*model.ComplianceReport),
		nextID:      1,
	}
}

func copyFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func copyBreach(b *model.Breach) *model.Breach {
	copied := &model.Breach{
		ID:                b.ID,
		Title:             b.Title,
		Description:       b.Description,
		Severity:          b.Severity,
		Status:            b.Status,
		DetectionDate:     b.DetectionDate,
		DiscoveryDate:     b.DiscoveryDate,
		AffectedUsers:     copyStringSlice(b.AffectedUsers),
		AffectedCount:     b.AffectedCount,
		BreachType:        b.BreachType,
		GeographicScope:   b.GeographicScope,
		Jurisdictions:     copyStringSlice(b.Jurisdictions),
		EntityType:        b.EntityType,
		DataEncrypted:     b.DataEncrypted,
		FinancialImpact:   copyFloatPtr(b.FinancialImpact),
		ReputationImpact:  copyFloatPtr(b.ReputationImpact),
		OperationalImpact: copyFloatPtr(b.OperationalImpact),
		MitigationNotes:   b.MitigationNotes,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	if b.AffectedData != nil {
		copied.AffectedData = make([]types.DataCategory, len(b.AffectedData))
		copy(copied.AffectedData, b.AffectedData)
	}
	return copied
}

func copyRiskAssessment(ra *model.RiskAssessment) *model.RiskAssessment {
	copied := &model.RiskAssessment{
		BreachID:        ra.BreachID,
		Score:           ra.Score,
		Severity:        ra.Severity,
		Recommendations: copyStringSlice(ra.Recommendations),
		AssessedAt:      ra.AssessedAt,
	}
	if ra.Factors != nil {
		copied.Factors = make(map[model.RiskFactor]model.FactorScore, len(ra.Factors))
		for k, v := range ra.Factors {
			copied.Factors[k] = v
		}
	}
	if ra.Notifications != nil {
		copied.Notifications = make(map[types.RequirementKind]bool, len(ra.Notifications))
		for k, v := range ra.Notifications {
			copied.Notifications[k] = v
		}
	}
	if ra.Deadlines != nil {
		copied.Deadlines = make(map[types.DeadlineKind]time.Time, len(ra.Deadlines))
		for k, v := range ra.Deadlines {
			copied.Deadlines[k] = v
		}
	}
	return copied
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyComplianceReport(cr *model.ComplianceReport) *model.ComplianceReport {
	copied := &model.ComplianceReport{
		BreachID:               cr.BreachID,
		AuthorityNotification:  cr.AuthorityNotification,
		IndividualNotification: cr.IndividualNotification,
		ShortestDeadline:       copyTimePtr(cr.ShortestDeadline),
		Documentation:          copyStringSlice(cr.Documentation),
		AnalyzedAt:             cr.AnalyzedAt,
	}
	if cr.Frameworks != nil {
		copied.Frameworks = make(map[types.FrameworkID]model.FrameworkResult, len(cr.Frameworks))
		for id, fr := range cr.Frameworks {
			frCopy := fr
			frCopy.AuthorityDeadline = copyTimePtr(fr.AuthorityDeadline)
			frCopy.IndividualDeadline = copyTimePtr(fr.IndividualDeadline)
			frCopy.ExceptionsMet = copyStringSlice(fr.ExceptionsMet)
			frCopy.Documentation = copyStringSlice(fr.Documentation)
			copied.Frameworks[id] = frCopy
		}
	}
	if cr.Retention != nil {
		copied.Retention = make(map[types.FrameworkID]string, len(cr.Retention))
		for k, v := range cr.Retention {
			copied.Retention[k] = v
		}
	}
	return copied
}

func (r *breachRepository) Create(ctx context.Context, b *model.Breach) (*model.Breach, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyBreach(b)
	created.ID = r.nextID
	r.nextID++

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.breaches[created.ID] = created
	return copyBreach(created), nil
}

func (r *breachRepository) Get(ctx context.Context, id int64) (*model.Breach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.breaches[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "breach not found", goerr.V("id", id))
	}
	return copyBreach(b), nil
}

func (r *breachRepository) List(ctx context.Context) ([]*model.Breach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Breach, 0, len(r.breaches))
	for _, b := range r.breaches {
		result = append(result, copyBreach(b))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *breachRepository) Update(ctx context.Context, b *model.Breach) (*model.Breach, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.breaches[b.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "breach not found", goerr.V("id", b.ID))
	}

	updated := copyBreach(b)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.breaches[b.ID] = updated
	return copyBreach(updated), nil
}

func (r *breachRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.breaches[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "breach not found", goerr.V("id", id))
	}
	delete(r.breaches, id)
	delete(r.assessments, id)
	delete(r.reports, id)
	return nil
}

func (r *breachRepository) PutRiskAssessment(ctx context.Context, ra *model.RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assessments[ra.BreachID] = copyRiskAssessment(ra)
	return nil
}

func (r *breachRepository) GetRiskAssessment(ctx context.Context, breachID int64) (*model.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ra, exists := r.assessments[breachID]
	if !exists {
		return nil, nil
	}
	return copyRiskAssessment(ra), nil
}

func (r *breachRepository) PutComplianceReport(ctx context.Context, cr *model.ComplianceReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports[cr.BreachID] = copyComplianceReport(cr)
	return nil
}

func (r *breachRepository) GetComplianceReport(ctx context.Context, breachID int64) (*model.ComplianceReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cr, exists := r.reports[breachID]
	if !exists {
		return nil, nil
	}
	return copyComplianceReport(cr), nil
}
