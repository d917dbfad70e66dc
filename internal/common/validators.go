// File: internal/common/validators.go
package common

import (
	"net/url"
	"time"
)

// DayFormat is the calendar-day layout used by promo activity windows.
const DayFormat = "2006-01-02"

// IsAbsoluteURL reports whether s parses as a URL with both a scheme and a
// host. The empty string does not qualify.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// ParseDay parses a YYYY-MM-DD value.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayFormat, s)
}
