// Package leagueapi is the boundary client for the league backend's
// user-management API. The session core only consumes its results; all
// credential checks, token minting, and unlock-token verification live
// on the server.
package leagueapi

import (
	"context"
	"strconv"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// API is the slice of the backend the session core depends on.
type API interface {
	// Login exchanges credentials for tokens and the user profile.
	// Failures come back as *Error carrying the backend's status code:
	// 401 for rejected credentials, 423 for a locked or inactive
	// account.
	Login(ctx context.Context, email, password string) (*LoginResponse, error)

	// RequestUnlock asks the backend to mint and deliver an unlock
	// token out-of-band. The backend always answers success-shaped to
	// avoid account enumeration.
	RequestUnlock(ctx context.Context, email string) (*MessageResponse, error)

	// ConfirmUnlock verifies an unlock token server-side.
	ConfirmUnlock(ctx context.Context, token string) (*MessageResponse, error)

	// SetPassword completes the recovery flow by setting a new
	// password under a verified unlock token.
	SetPassword(ctx context.Context, token, newPassword string) (*MessageResponse, error)
}

// LoginResponse is the backend's login payload. Usuario is an opaque
// profile blob owned by the backend; the client stores it verbatim.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	TokenType    string         `json:"token_type,omitempty"`
	ExpiresIn    *int64         `json:"expires_in,omitempty"`
	RedirectTo   string         `json:"redirect_to,omitempty"`
	Usuario      map[string]any `json:"usuario"`
}

// MessageResponse is the backend's generic confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserID extracts the user's identifier from the login payload. The
// backend puts it on the user object; older deployments only carry it
// in the access token's sub claim, which is read without verifying the
// signature since the client never trusts token contents for anything
// but display.
func (r *LoginResponse) UserID() string {
	if r == nil {
		return ""
	}
	switch v := r.Usuario["id"].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	if r.AccessToken == "" {
		return ""
	}
	tok, _, err := jwtlib.NewParser().ParseUnverified(r.AccessToken, jwtlib.MapClaims{})
	if err != nil {
		return ""
	}
	if claims, ok := tok.Claims.(jwtlib.MapClaims); ok {
		if sub, ok := claims["sub"].(string); ok {
			return sub
		}
	}
	return ""
}

// UserEmail returns the account email from the profile blob, if the
// backend sent one.
func (r *LoginResponse) UserEmail() string {
	if r == nil {
		return ""
	}
	if correo, ok := r.Usuario["correo"].(string); ok {
		return correo
	}
	return ""
}
