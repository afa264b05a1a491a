package sessions

import "strings"

// LockoutMeta tracks failed login attempts for one account. The zero
// value is the canonical "no failures, not locked" state; stores return
// it for accounts they have never seen. Records are reset in place,
// never deleted.
type LockoutMeta struct {
	FailedCount int  `json:"failedCount"`
	Locked      bool `json:"locked"`
}

// MetaKey normalizes an email address into the lockout-meta key. Every
// store implementation keys through this, so lookups are
// case-insensitive.
func MetaKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
