// File: internal/common/response.go
package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// TotalCountHeader carries the size of a collection before pagination.
const TotalCountHeader = "X-Total-Count"

// RespondWithError sends a JSON error response. Success bodies are plain
// domain JSON written by the handlers; only errors share an envelope.
func RespondWithError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		apiErr = ErrInternalServer.WithDetails(err.Error())
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
}

// SetTotalCountHeader exposes the pre-pagination collection size.
func SetTotalCountHeader(c *gin.Context, total int64) {
	c.Header(TotalCountHeader, strconv.FormatInt(total, 10))
}

// StatusOK is the body of endpoints that acknowledge without returning data.
var StatusOK = gin.H{"status": "ok"}
