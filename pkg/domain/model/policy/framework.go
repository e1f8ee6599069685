package policy

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// FrameworkDef is the static definition of one regulatory framework.
// Applicability, notification gates, and exceptions are referenced by
// predicate name and resolved against the compliance analyzer's predicate
// registry, so the table stays data.
type FrameworkDef struct {
	ID   types.FrameworkID
	Name string

	// Applicability names the predicate deciding whether the framework
	// applies to a breach.
	Applicability string

	AuthorityRequired bool
	// AuthorityHours is the numeric authority deadline in hours; 0 means
	// the deadline is non-numeric and AuthorityNote carries it verbatim.
	AuthorityHours int
	AuthorityNote  string

	IndividualRequired bool
	// IndividualGate optionally names a predicate that must hold before
	// individual notification is required (e.g. CCPA's unencrypted-PII
	// threshold). Empty means unconditional.
	IndividualGate  string
	IndividualHours int
	IndividualNote  string

	// Exceptions names predicates that, when satisfied, flip the
	// notification requirements to not-required.
	Exceptions []string

	Documentation []string
	Retention     string
}

// Validate checks the framework definition
func (f *FrameworkDef) Validate() error {
	if f.ID == "" {
		return goerr.New("framework ID is required")
	}
	if f.Name == "" {
		return goerr.New("framework name is required", goerr.V("id", f.ID))
	}
	if f.Applicability == "" {
		return goerr.New("framework applicability predicate is required", goerr.V("id", f.ID))
	}
	if f.AuthorityRequired && f.AuthorityHours == 0 && f.AuthorityNote == "" {
		return goerr.New("authority deadline requires hours or a note", goerr.V("id", f.ID))
	}
	return nil
}
