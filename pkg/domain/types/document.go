package types

// DocumentType identifies an artifact generated during a workflow stage
// or breach investigation
type DocumentType string

const (
	DocumentPTADraft               DocumentType = "pta_draft"
	DocumentPIADraft               DocumentType = "pia_draft"
	DocumentImplementationPlan     DocumentType = "implementation_plan"
	DocumentTestingPlan            DocumentType = "testing_plan"
	DocumentDispositionCertificate DocumentType = "disposition_certificate"
	DocumentBreachReport           DocumentType = "breach_report"
)

// String returns the string representation of the document type
func (t DocumentType) String() string {
	return string(t)
}

// ParentKind identifies the owning entity kind of a child record such as
// a timeline entry or generated document
type ParentKind string

const (
	ParentCollection ParentKind = "collection"
	ParentBreach     ParentKind = "breach"
)

// String returns the string representation of the parent kind
func (k ParentKind) String() string {
	return string(k)
}
