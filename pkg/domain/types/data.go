package types

// DataCategory tags a class of personal data affected by a breach or
// processed by a collection
type DataCategory string

const (
	DataCategoryHealth      DataCategory = "health"
	DataCategoryFinancial   DataCategory = "financial"
	DataCategoryIdentity    DataCategory = "identity"
	DataCategoryCredentials DataCategory = "credentials"
	DataCategoryPersonal    DataCategory = "personal"
	DataCategoryContact     DataCategory = "contact"
	DataCategoryBehavioral  DataCategory = "behavioral"
	DataCategoryDevice      DataCategory = "device"
	DataCategoryMetadata    DataCategory = "metadata"
	DataCategoryPublic      DataCategory = "public"
)

// String returns the string representation of the data category
func (c DataCategory) String() string {
	return string(c)
}

// GeographicScope represents the geographic spread of a breach
type GeographicScope string

const (
	ScopeLocal         GeographicScope = "local"
	ScopeRegional      GeographicScope = "regional"
	ScopeNational      GeographicScope = "national"
	ScopeInternational GeographicScope = "international"
	ScopeGlobal        GeographicScope = "global"
)

// String returns the string representation of the geographic scope
func (s GeographicScope) String() string {
	return string(s)
}
