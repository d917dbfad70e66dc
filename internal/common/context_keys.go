// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for the authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// SubjectIDKey is the context key for the authenticated principal's ID
	SubjectIDKey = "subjectID"
	// SubjectKindKey is the context key for the principal kind (user or company)
	SubjectKindKey = "subjectKind"
)

// Principal kinds carried in token claims and the Gin context.
const (
	KindUser    = "user"
	KindCompany = "company"
)
