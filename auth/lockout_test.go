package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fantasyleague/leagueclient/leagueapi"
	"github.com/fantasyleague/leagueclient/sessions"
)

func TestService_RecordFailedAttempt(t *testing.T) {
	t.Run("counts up without locking below the threshold", func(t *testing.T) {
		f := newFixture(t)
		for i := 1; i <= 4; i++ {
			meta := f.svc.RecordFailedAttempt(testEmail)
			require.Equal(t, i, meta.FailedCount)
			require.False(t, meta.Locked)
		}
		require.False(t, f.svc.IsLocked(testEmail))
	})

	t.Run("locks on the fifth failure", func(t *testing.T) {
		f := newFixture(t)
		var meta sessions.LockoutMeta
		for i := 0; i < 5; i++ {
			meta = f.svc.RecordFailedAttempt(testEmail)
		}
		require.Equal(t, 5, meta.FailedCount)
		require.True(t, meta.Locked)
		require.True(t, f.svc.IsLocked(testEmail))
	})

	t.Run("keeps counting past the threshold", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < 7; i++ {
			f.svc.RecordFailedAttempt(testEmail)
		}
		meta := f.store.ReadLockoutMeta(testEmail)
		require.Equal(t, 7, meta.FailedCount)
		require.True(t, meta.Locked)
	})

	t.Run("keys accounts case-insensitively", func(t *testing.T) {
		f := newFixture(t)
		f.svc.RecordFailedAttempt("Ana@Example.COM")
		f.svc.RecordFailedAttempt("ana@example.com")
		require.Equal(t, 2, f.store.ReadLockoutMeta("  ANA@EXAMPLE.COM ").FailedCount)
	})
}

func TestService_ResetOnSuccess(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.svc.RecordFailedAttempt(testEmail)
	}
	require.True(t, f.svc.IsLocked(testEmail))

	f.svc.ResetOnSuccess(testEmail)
	require.False(t, f.svc.IsLocked(testEmail))
	require.Equal(t, sessions.LockoutMeta{}, f.store.ReadLockoutMeta(testEmail))
}

func TestService_LockoutAcrossLogins(t *testing.T) {
	// Five consecutive rejected logins end with the account locked.
	f := newFixture(t)
	f.api.LoginErr = &leagueapi.Error{Status: 401, Message: "Credenciales inválidas."}

	for i := 0; i < 5; i++ {
		res := f.svc.LoginContext(context.Background(), testEmail, "wrong")
		require.False(t, res.OK)
	}
	meta := f.store.ReadLockoutMeta(testEmail)
	require.Equal(t, 5, meta.FailedCount)
	require.True(t, meta.Locked)
}
