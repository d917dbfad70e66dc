// File: internal/common/pagination.go
package common

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultFeedLimit applies to the user-facing collections.
	DefaultFeedLimit = 10
	// DefaultBusinessLimit and MaxBusinessLimit apply to the B2B listings.
	DefaultBusinessLimit = 100
	MaxBusinessLimit     = 100
)

// GetLimitOffset extracts limit/offset query parameters. maxLimit of 0 means
// unbounded. Malformed or negative values surface as a validation error so
// the handler can answer 400.
func GetLimitOffset(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int, err error) {
	limit, err = nonNegativeQueryInt(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if maxLimit > 0 && limit > maxLimit {
		return 0, 0, NewValidationAPIError(map[string]string{
			"limit": fmt.Sprintf("must be %d or less", maxLimit),
		})
	}

	offset, err = nonNegativeQueryInt(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func nonNegativeQueryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, NewValidationAPIError(map[string]string{
			name: "must be a non-negative integer",
		})
	}
	return value, nil
}

// Paginate slices an already filtered collection the way the feed endpoints
// do: the total is counted first, the window applied after.
func Paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
