package model

import (
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Well-known metadata keys on a Collection. Stage requirements reference
// these by name; arbitrary additional keys are allowed.
const (
	MetaPurposeStatement  = "purpose_statement"
	MetaLegalAuthority    = "legal_authority"
	MetaSystemName        = "system_name"
	MetaDataElements      = "data_elements"
	MetaContainsPII       = "contains_pii"
	MetaPIICategories     = "pii_categories"
	MetaRetentionSchedule = "retention_schedule"
	MetaSecurityControls  = "security_controls"
	MetaTestingResults    = "testing_results"
	MetaDeploymentDate    = "deployment_date"
	MetaDispositionMethod = "disposition_method"
	MetaDispositionDate   = "disposition_date"
	MetaPIAOverride       = "pia_policy_override"
)

// Stakeholder role keys
const (
	RolePrivacyOfficer = "privacy_officer"
	RoleSystemOwner    = "system_owner"
	RoleReviewer       = "reviewer"
)

// Collection represents one data-processing activity tracked through its
// lifecycle. Collections are never deleted, only retired and archived.
type Collection struct {
	ID           int64
	Title        string
	Stage        types.Stage
	StageStatus  types.StageStatus
	Metadata     map[string]string
	Stakeholders map[string]string // role -> user ID
	CurrentPTA   string            // Assessment ID, empty if none
	CurrentPIA   string
	ArchivedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Meta returns the metadata value for key, or empty string
func (c *Collection) Meta(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[key]
}

// SetMeta sets a metadata value, allocating the map if needed
func (c *Collection) SetMeta(key, value string) {
	if c.Metadata == nil {
		c.Metadata = make(map[string]string)
	}
	c.Metadata[key] = value
}

// Stakeholder returns the user assigned to a role, or empty string
func (c *Collection) Stakeholder(role string) string {
	if c.Stakeholders == nil {
		return ""
	}
	return c.Stakeholders[role]
}

// AssignStakeholder assigns a user to a role, allocating the map if needed
func (c *Collection) AssignStakeholder(role, userID string) {
	if c.Stakeholders == nil {
		c.Stakeholders = make(map[string]string)
	}
	c.Stakeholders[role] = userID
}
