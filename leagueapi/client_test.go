package leagueapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fantasyleague/leagueclient/leagueapi"
)

func TestClient_Login(t *testing.T) {
	t.Run("posts credentials and decodes the payload", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "tok-1",
				"token_type":   "bearer",
				"redirect_to":  "/app",
				"usuario":      map[string]any{"id": "7", "correo": "ana@example.com"},
			})
		}))
		defer srv.Close()

		client := leagueapi.NewClient(srv.URL)
		resp, err := client.Login(context.Background(), "ana@example.com", "Secreta12")
		require.NoError(t, err)

		require.Equal(t, "/api/usuarios/login", gotPath)
		require.Equal(t, "ana@example.com", gotBody["correo"])
		require.Equal(t, "Secreta12", gotBody["contrasena"])
		require.Equal(t, "tok-1", resp.AccessToken)
		require.Equal(t, "/app", resp.RedirectTo)
		require.Equal(t, "7", resp.UserID())
		require.Equal(t, "ana@example.com", resp.UserEmail())
	})

	t.Run("rejected credentials surface the detail field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Credenciales inválidas."})
		}))
		defer srv.Close()

		client := leagueapi.NewClient(srv.URL)
		_, err := client.Login(context.Background(), "ana@example.com", "wrong")

		var apiErr *leagueapi.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.Status)
		require.Equal(t, "Credenciales inválidas.", apiErr.Message)
	})

	t.Run("locked account maps to 423", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusLocked)
			json.NewEncoder(w).Encode(map[string]string{"message": "Cuenta bloqueada o inactiva."})
		}))
		defer srv.Close()

		client := leagueapi.NewClient(srv.URL)
		_, err := client.Login(context.Background(), "ana@example.com", "Secreta12")

		var apiErr *leagueapi.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusLocked, apiErr.Status)
		require.Equal(t, "Cuenta bloqueada o inactiva.", apiErr.Message)
	})

	t.Run("unreachable server reports status zero", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		client := leagueapi.NewClient(srv.URL)
		_, err := client.Login(context.Background(), "ana@example.com", "Secreta12")

		var apiErr *leagueapi.Error
		require.ErrorAs(t, err, &apiErr)
		require.Zero(t, apiErr.Status)
	})

	t.Run("non-json error body falls back to the status text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer srv.Close()

		client := leagueapi.NewClient(srv.URL)
		_, err := client.Login(context.Background(), "ana@example.com", "Secreta12")

		var apiErr *leagueapi.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadGateway, apiErr.Status)
		require.NotEmpty(t, apiErr.Message)
	})
}

func TestClient_UnlockFlow(t *testing.T) {
	t.Run("unlock request posts the email", func(t *testing.T) {
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/usuarios/unlock/request", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(map[string]string{"message": "Enlace enviado."})
		}))
		defer srv.Close()

		client := leagueapi.NewClient(srv.URL)
		resp, err := client.RequestUnlock(context.Background(), "ana@example.com")
		require.NoError(t, err)
		require.Equal(t, "ana@example.com", gotBody["correo"])
		require.Equal(t, "Enlace enviado.", resp.Message)
	})

	t.Run("confirm carries the token in the query, escaped", func(t *testing.T) {
		var gotToken string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/usuarios/unlock/confirm", r.URL.Path)
			require.Equal(t, http.MethodGet, r.Method)
			gotToken = r.URL.Query().Get("token")
			json.NewEncoder(w).Encode(map[string]string{"message": "Token válido."})
		}))
		defer srv.Close()

		client := leagueapi.NewClient(srv.URL)
		resp, err := client.ConfirmUnlock(context.Background(), "tok/with+odd chars")
		require.NoError(t, err)
		require.Equal(t, "tok/with+odd chars", gotToken)
		require.Equal(t, "Token válido.", resp.Message)
	})

	t.Run("set-password posts token and new password", func(t *testing.T) {
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/usuarios/unlock/set-password", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(map[string]string{"message": "Contraseña actualizada."})
		}))
		defer srv.Close()

		client := leagueapi.NewClient(srv.URL)
		resp, err := client.SetPassword(context.Background(), "tok-123", "Nueva1234")
		require.NoError(t, err)
		require.Equal(t, "tok-123", gotBody["token"])
		require.Equal(t, "Nueva1234", gotBody["new_password"])
		require.Equal(t, "Contraseña actualizada.", resp.Message)
	})
}

func TestClient_WithBasePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"usuario": map[string]any{}})
	}))
	defer srv.Close()

	client := leagueapi.NewClient(srv.URL, leagueapi.WithBasePath("/v2"))
	_, err := client.Login(context.Background(), "ana@example.com", "Secreta12")
	require.NoError(t, err)
	require.Equal(t, "/v2/usuarios/login", gotPath)
}
