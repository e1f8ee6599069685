package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Document records a generated artifact (plan, report, certificate). Only
// the type and metadata are tracked here; rendering belongs to external
// collaborators.
type Document struct {
	ID         string
	ParentKind types.ParentKind
	ParentID   int64
	Type       types.DocumentType
	Title      string
	Metadata   map[string]string
	CreatedAt  time.Time
}

// NewDocumentID generates a new document ID
func NewDocumentID() string {
	return uuid.NewString()
}
