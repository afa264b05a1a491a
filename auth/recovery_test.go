package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fantasyleague/leagueclient/auth"
	"github.com/fantasyleague/leagueclient/leagueapi"
)

func TestService_RequestUnlock(t *testing.T) {
	t.Run("returns the backend's confirmation", func(t *testing.T) {
		f := newFixture(t)
		f.api.UnlockResponse = &leagueapi.MessageResponse{Message: "Enlace enviado."}

		res := f.svc.RequestUnlock(context.Background(), testEmail)
		require.True(t, res.OK)
		require.Equal(t, "Enlace enviado.", res.Message)
		require.Equal(t, testEmail, f.api.LastLoginEmail)
	})

	t.Run("falls back to the generic confirmation", func(t *testing.T) {
		f := newFixture(t)

		res := f.svc.RequestUnlock(context.Background(), testEmail)
		require.True(t, res.OK)
		require.Equal(t, "Si la cuenta existe y está bloqueada, enviaremos un enlace a tu correo.", res.Message)
	})

	t.Run("rejects a blank email locally", func(t *testing.T) {
		f := newFixture(t)

		res := f.svc.RequestUnlock(context.Background(), "   ")
		require.False(t, res.OK)
		require.Equal(t, auth.StatusBadRequest, res.Status)
		require.Zero(t, f.api.UnlockCalls)
	})

	t.Run("propagates backend failures", func(t *testing.T) {
		f := newFixture(t)
		f.api.UnlockErr = &leagueapi.Error{Status: 0, Message: "timeout"}

		res := f.svc.RequestUnlock(context.Background(), testEmail)
		require.False(t, res.OK)
		require.Equal(t, auth.StatusUnavailable, res.Status)
	})
}

func TestService_ConfirmUnlock(t *testing.T) {
	t.Run("passes the token through", func(t *testing.T) {
		f := newFixture(t)
		f.api.ConfirmResponse = &leagueapi.MessageResponse{Message: "Token válido."}

		res := f.svc.ConfirmUnlock(context.Background(), "tok-123")
		require.True(t, res.OK)
		require.Equal(t, "Token válido.", res.Message)
		require.Equal(t, "tok-123", f.api.LastToken)
	})

	t.Run("blank token never reaches the network", func(t *testing.T) {
		f := newFixture(t)

		res := f.svc.ConfirmUnlock(context.Background(), "  ")
		require.False(t, res.OK)
		require.Equal(t, auth.StatusBadRequest, res.Status)
		require.Equal(t, "Token de desbloqueo faltante o inválido.", res.Message)
		require.Zero(t, f.api.ConfirmCalls)
	})

	t.Run("expired token surfaces the backend message", func(t *testing.T) {
		f := newFixture(t)
		f.api.ConfirmErr = &leagueapi.Error{Status: 400, Message: "El enlace ha expirado."}

		res := f.svc.ConfirmUnlock(context.Background(), "tok-old")
		require.False(t, res.OK)
		require.Equal(t, auth.StatusBadRequest, res.Status)
		require.Equal(t, "El enlace ha expirado.", res.Message)
	})
}

func TestService_SetNewPassword(t *testing.T) {
	t.Run("success completes the flow", func(t *testing.T) {
		f := newFixture(t)
		f.api.SetPassResponse = &leagueapi.MessageResponse{Message: "Contraseña actualizada."}

		res := f.svc.SetNewPassword(context.Background(), "tok-123", "Nueva1234")
		require.True(t, res.OK)
		require.Equal(t, "Contraseña actualizada.", res.Message)
		require.Equal(t, "tok-123", f.api.LastToken)
	})

	t.Run("blank token is rejected before validation", func(t *testing.T) {
		f := newFixture(t)

		res := f.svc.SetNewPassword(context.Background(), "", "Nueva1234")
		require.False(t, res.OK)
		require.Equal(t, auth.StatusBadRequest, res.Status)
		require.Zero(t, f.api.SetPassCalls)
	})

	t.Run("policy violations never reach the network", func(t *testing.T) {
		f := newFixture(t)

		res := f.svc.SetNewPassword(context.Background(), "tok-123", "corta")
		require.False(t, res.OK)
		require.Equal(t, auth.StatusBadRequest, res.Status)
		require.NotEmpty(t, res.Message)
		require.Zero(t, f.api.SetPassCalls)
	})

	t.Run("propagates backend rejection", func(t *testing.T) {
		f := newFixture(t)
		f.api.SetPassErr = &leagueapi.Error{Status: 400, Message: "Token inválido."}

		res := f.svc.SetNewPassword(context.Background(), "tok-bad", "Nueva1234")
		require.False(t, res.OK)
		require.Equal(t, auth.StatusBadRequest, res.Status)
		require.Equal(t, "Token inválido.", res.Message)
	})
}
