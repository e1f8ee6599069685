package interfaces

import (
	"context"

	"github.com/privsec-lab/custodian/pkg/domain/model"
)

// BreachRepository defines the interface for Breach data access together
// with the computed sub-records attached to a breach. Risk assessments and
// compliance reports are caches keyed by breach ID; putting a new one
// replaces the previous.
type BreachRepository interface {
	// Create creates a new breach with auto-generated ID
	Create(ctx context.Context, b *model.Breach) (*model.Breach, error)

	// Get retrieves a breach by ID
	Get(ctx context.Context, id int64) (*model.Breach, error)

	// List retrieves all breaches
	List(ctx context.Context) ([]*model.Breach, error)

	// Update updates an existing breach
	Update(ctx context.Context, b *model.Breach) (*model.Breach, error)

	// Delete deletes a breach by ID. Callers cascade attached records.
	Delete(ctx context.Context, id int64) error

	// PutRiskAssessment stores the computed risk assessment for a breach
	PutRiskAssessment(ctx context.Context, ra *model.RiskAssessment) error

	// GetRiskAssessment retrieves the current risk assessment for a breach.
	// Returns nil, nil when none has been computed.
	GetRiskAssessment(ctx context.Context, breachID int64) (*model.RiskAssessment, error)

	// PutComplianceReport stores the computed compliance report for a breach
	PutComplianceReport(ctx context.Context, cr *model.ComplianceReport) error

	// GetComplianceReport retrieves the current compliance report for a
	// breach. Returns nil, nil when none has been computed.
	GetComplianceReport(ctx context.Context, breachID int64) (*model.ComplianceReport, error)
}
