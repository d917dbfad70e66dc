// File: internal/common/password_test.go
package common

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("SuperPass1!")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "SuperPass1!", hash)

	assert.True(t, CheckPasswordHash("SuperPass1!", hash))
	assert.False(t, CheckPasswordHash("SuperPass2!", hash))
}

func TestCheckPasswordHash_GarbageHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("SuperPass1!", "not-a-bcrypt-hash"))
}

func TestValidatePasswordComplexity(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"all character classes present", "SuperPass1!", false},
		{"special char from the middle of the set", "SuperPass1;", false},
		{"missing digit", "SuperPass!!", true},
		{"missing uppercase letter", "superpass1!", true},
		{"missing lowercase letter", "SUPERPASS1!", true},
		{"missing special character", "SuperPass11", true},
		{"empty password", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordComplexity(tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			apiErr, ok := IsAPIError(err)
			assert.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Contains(t, apiErr.Details, "password")
		})
	}
}
