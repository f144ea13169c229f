package domain

import (
	"regexp"
	"time"
)

// ProtocolEntry is the append-only audit record of one protocol issuance.
type ProtocolEntry struct {
	Number        string
	ComplaintID   string
	DailySequence int
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

var protocolPattern = regexp.MustCompile(`^[A-Z]+-\d{8}-[A-Z0-9]{6}$`)

// ValidProtocolNumber reports whether the value matches
// PREFIX-YYYYMMDD-XXXXXX.
func ValidProtocolNumber(number string) bool {
	return protocolPattern.MatchString(number)
}
