package auth

import (
	"errors"

	"github.com/fantasyleague/leagueclient/leagueapi"
)

// Status classifies the outcome of a user-facing operation. It replaces
// the duck-typed status fields the original client read off arbitrary
// error objects.
type Status int

const (
	// StatusUnavailable means the backend could not be reached; these
	// failures are never retried automatically.
	StatusUnavailable Status = 0
	StatusOK          Status = 200
	// StatusBadRequest covers locally rejected input (missing token,
	// password policy violations) that never reaches the network.
	StatusBadRequest         Status = 400
	StatusInvalidCredentials Status = 401
	StatusLocked             Status = 423
)

// Result is the tagged outcome of the login, logout, and unlock
// operations. Callers branch on OK; these operations never return Go
// errors.
type Result struct {
	OK      bool
	Status  Status
	Message string
}

// LoginResult carries the backend's login payload on success.
type LoginResult struct {
	Result
	Data *leagueapi.LoginResponse
}

func ok(message string) Result {
	return Result{OK: true, Status: StatusOK, Message: message}
}

func failure(status Status, message string) Result {
	return Result{OK: false, Status: status, Message: message}
}

// classify maps a boundary error to a status and a user-facing
// message. Credential rejections keep the backend's message when there
// is one; anything that never produced an HTTP status is a transport
// failure with a generic message.
func classify(err error) (Status, string) {
	var apiErr *leagueapi.Error
	if !errors.As(err, &apiErr) || apiErr.Status == 0 {
		return StatusUnavailable, msgServerUnreachable
	}
	msg := apiErr.Message
	switch apiErr.Status {
	case int(StatusInvalidCredentials):
		if msg == "" {
			msg = msgInvalidCredentials
		}
		return StatusInvalidCredentials, msg
	case int(StatusLocked):
		if msg == "" {
			msg = msgAccountLocked
		}
		return StatusLocked, msg
	default:
		if msg == "" {
			msg = msgLoginFailed
		}
		return Status(apiErr.Status), msg
	}
}
