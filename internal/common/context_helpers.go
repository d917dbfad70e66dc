// File: internal/common/context_helpers.go
package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetSubjectIDFromContext retrieves the authenticated principal's ID from the
// Gin context. Returns uuid.Nil if not set.
func GetSubjectIDFromContext(c *gin.Context) uuid.UUID {
	val, exists := c.Get(SubjectIDKey)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// GetSubjectKindFromContext retrieves the principal kind from the Gin context.
func GetSubjectKindFromContext(c *gin.Context) string {
	val, exists := c.Get(SubjectKindKey)
	if !exists {
		return ""
	}
	kind, ok := val.(string)
	if !ok {
		return ""
	}
	return kind
}
