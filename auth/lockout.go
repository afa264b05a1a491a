package auth

import "github.com/fantasyleague/leagueclient/sessions"

// lockThreshold is the number of failed logins after which an account
// locks.
const lockThreshold = 5

// RecordFailedAttempt increments the account's failed-login counter,
// locking the account once the threshold is reached, and returns the
// updated record. Lookups and writes are keyed case-insensitively.
func (s *Service) RecordFailedAttempt(email string) sessions.LockoutMeta {
	meta := s.store.ReadLockoutMeta(email)
	meta.FailedCount++
	if meta.FailedCount >= lockThreshold {
		meta.Locked = true
	}
	if err := s.store.WriteLockoutMeta(email, meta); err != nil {
		s.log.Warn().Err(err).Str("account", sessions.MetaKey(email)).Msg("persisting lockout record")
	}
	return meta
}

// IsLocked reports whether the account is locked. Reading never
// mutates the record.
func (s *Service) IsLocked(email string) bool {
	return s.store.ReadLockoutMeta(email).Locked
}

// ResetOnSuccess restores the account's lockout record to its
// defaults. Successful logins call it automatically; completed unlock
// flows reset server-side.
func (s *Service) ResetOnSuccess(email string) {
	if err := s.store.ResetLockoutMeta(email); err != nil {
		s.log.Warn().Err(err).Str("account", sessions.MetaKey(email)).Msg("resetting lockout record")
	}
}

// markLocked flags the account without touching the counter. Used when
// the backend answers 423, so the UI can offer the unlock link
// immediately.
func (s *Service) markLocked(email string) {
	meta := s.store.ReadLockoutMeta(email)
	if meta.Locked {
		return
	}
	meta.Locked = true
	if err := s.store.WriteLockoutMeta(email, meta); err != nil {
		s.log.Warn().Err(err).Str("account", sessions.MetaKey(email)).Msg("persisting lockout record")
	}
}
