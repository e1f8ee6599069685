package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Assessment is a PTA or PIA document attached to a Collection. A
// collection holds at most one current assessment of each kind; superseded
// assessments remain in the store for audit.
type Assessment struct {
	ID           string
	CollectionID int64
	Kind         types.AssessmentKind
	Status       types.AssessmentStatus
	RiskLevel    types.RiskLevel
	Reviewer     string
	ReviewNotes  string
	Conditions   []string // set on conditional approval
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAssessmentID generates a new assessment ID
func NewAssessmentID() string {
	return uuid.NewString()
}
