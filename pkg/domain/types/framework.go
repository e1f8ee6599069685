package types

// FrameworkID identifies a regulatory framework with its own breach
// notification rules
type FrameworkID string

const (
	FrameworkGDPR   FrameworkID = "gdpr"
	FrameworkCCPA   FrameworkID = "ccpa"
	FrameworkHIPAA  FrameworkID = "hipaa"
	FrameworkPIPEDA FrameworkID = "pipeda"
)

// String returns the string representation of the framework ID
func (f FrameworkID) String() string {
	return string(f)
}
