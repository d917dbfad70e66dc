// File: internal/common/pagination_test.go
package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationTestContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/promos?"+rawQuery, nil)
	return c
}

func TestGetLimitOffset_Defaults(t *testing.T) {
	c := paginationTestContext("")

	limit, offset, err := GetLimitOffset(c, DefaultFeedLimit, 0)
	assert.NoError(t, err)
	assert.Equal(t, DefaultFeedLimit, limit)
	assert.Equal(t, 0, offset)
}

func TestGetLimitOffset_ExplicitValues(t *testing.T) {
	c := paginationTestContext("limit=5&offset=20")

	limit, offset, err := GetLimitOffset(c, DefaultBusinessLimit, MaxBusinessLimit)
	assert.NoError(t, err)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 20, offset)
}

func TestGetLimitOffset_ZeroLimitIsAllowed(t *testing.T) {
	c := paginationTestContext("limit=0")

	limit, offset, err := GetLimitOffset(c, DefaultFeedLimit, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, limit)
	assert.Equal(t, 0, offset)
}

func TestGetLimitOffset_LimitOverMax(t *testing.T) {
	c := paginationTestContext("limit=101")

	_, _, err := GetLimitOffset(c, DefaultBusinessLimit, MaxBusinessLimit)
	assert.Error(t, err)
	apiErr, ok := IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Details, "limit")
}

func TestGetLimitOffset_UnboundedWhenMaxIsZero(t *testing.T) {
	c := paginationTestContext("limit=5000")

	limit, _, err := GetLimitOffset(c, DefaultFeedLimit, 0)
	assert.NoError(t, err)
	assert.Equal(t, 5000, limit)
}

func TestGetLimitOffset_RejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		badField string
	}{
		{"non-numeric limit", "limit=ten", "limit"},
		{"negative limit", "limit=-1", "limit"},
		{"non-numeric offset", "offset=abc", "offset"},
		{"negative offset", "offset=-5", "offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := paginationTestContext(tt.rawQuery)

			_, _, err := GetLimitOffset(c, DefaultFeedLimit, 0)
			assert.Error(t, err)
			apiErr, ok := IsAPIError(err)
			assert.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Contains(t, apiErr.Details, tt.badField)
		})
	}
}

func TestPaginate_Window(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3}, Paginate(items, 3, 0))
	assert.Equal(t, []int{3, 4, 5}, Paginate(items, 3, 2))
	assert.Equal(t, []int{5}, Paginate(items, 3, 4))
}

func TestPaginate_OffsetPastEnd(t *testing.T) {
	items := []int{1, 2, 3}

	assert.Empty(t, Paginate(items, 10, 3))
	assert.Empty(t, Paginate(items, 10, 100))
}

func TestPaginate_ZeroLimit(t *testing.T) {
	items := []int{1, 2, 3}

	assert.Empty(t, Paginate(items, 0, 0))
}

func TestPaginate_EmptyInput(t *testing.T) {
	assert.Empty(t, Paginate([]int{}, 10, 0))
}
