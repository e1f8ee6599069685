package policy

// Requirement is one declarative entry requirement of a workflow stage: a
// metadata field that must be present (and optionally pass a named
// validator) before the stage can complete.
type Requirement struct {
	Field    string
	Label    string
	Required bool
	// Validator names a registered validator function, e.g. "min_length:50"
	// or "yes_no". Empty means presence-only.
	Validator string
}

// StageDef carries the display configuration and requirement set of one
// lifecycle stage
type StageDef struct {
	Title        string
	Description  string
	Color        string
	Requirements []Requirement
}
