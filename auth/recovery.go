package auth

import (
	"context"
	"strings"

	"github.com/fantasyleague/leagueclient/internal/utils"
)

// RequestUnlock asks the backend to mint and deliver an unlock token.
// The confirmation is always generic, whether or not the account
// exists or is actually locked, so the endpoint cannot be used to
// enumerate accounts.
func (s *Service) RequestUnlock(ctx context.Context, email string) Result {
	if strings.TrimSpace(email) == "" {
		return failure(StatusBadRequest, msgEmailRequired)
	}
	resp, err := s.api.RequestUnlock(ctx, email)
	if err != nil {
		status, msg := classify(err)
		return failure(status, msg)
	}
	msg := utils.Value(resp).Message
	if msg == "" {
		msg = msgUnlockRequested
	}
	return ok(msg)
}

// ConfirmUnlock verifies the unlock token with the backend. A missing
// or blank token is terminal for this flow and never reaches the
// network; the caller degrades to the unlock-request form rather than
// retrying. On success the backend has already reset the account's
// lockout state and the caller moves to the set-new-password step.
func (s *Service) ConfirmUnlock(ctx context.Context, token string) Result {
	if strings.TrimSpace(token) == "" {
		return failure(StatusBadRequest, msgTokenMissing)
	}
	resp, err := s.api.ConfirmUnlock(ctx, token)
	if err != nil {
		status, msg := classify(err)
		return failure(status, msg)
	}
	return ok(utils.Value(resp).Message)
}

// SetNewPassword completes the recovery flow. The password policy is
// checked locally first; violations are rejected with a descriptive
// message and no network call.
func (s *Service) SetNewPassword(ctx context.Context, token, newPassword string) Result {
	if strings.TrimSpace(token) == "" {
		return failure(StatusBadRequest, msgTokenMissing)
	}
	if err := ValidatePassword(newPassword); err != nil {
		return failure(StatusBadRequest, err.Error())
	}
	resp, err := s.api.SetPassword(ctx, token, newPassword)
	if err != nil {
		status, msg := classify(err)
		return failure(status, msg)
	}
	return ok(utils.Value(resp).Message)
}
