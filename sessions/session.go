package sessions

import "time"

// InactivityThreshold is the sliding-expiration window. A session whose
// last activity is older than this is treated as gone; any renewal
// pushes the deadline forward.
const InactivityThreshold = 12 * time.Hour

// Session is the authenticated-principal record held in the durable
// store. At most one session exists in a store at any time. The JSON
// field names are the persisted layout of the original client and must
// not change without moving to a new storage key.
type Session struct {
	Email        string         `json:"email"`
	UserID       string         `json:"userId"`
	AccessToken  string         `json:"accessToken,omitempty"`
	RefreshToken string         `json:"refreshToken,omitempty"`
	User         map[string]any `json:"user,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastActivity time.Time      `json:"lastActivity"`
}

// IsExpired reports whether the session has outlived the inactivity
// window at the given instant. A nil session is always expired. A
// session with no recorded activity anchors the window at its creation
// time.
func IsExpired(s *Session, now time.Time) bool {
	if s == nil {
		return true
	}
	last := s.LastActivity
	if last.IsZero() {
		last = s.CreatedAt
	}
	return now.Sub(last) > InactivityThreshold
}

// Touch records a renewal, keeping LastActivity >= CreatedAt.
func (s *Session) Touch(now time.Time) {
	if now.Before(s.CreatedAt) {
		now = s.CreatedAt
	}
	s.LastActivity = now
}

// Equal reports whether two sessions describe the same persisted state.
// The reconciler uses it to skip adopting store contents that match the
// in-memory view.
func (s *Session) Equal(o *Session) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Email == o.Email &&
		s.UserID == o.UserID &&
		s.AccessToken == o.AccessToken &&
		s.RefreshToken == o.RefreshToken &&
		s.CreatedAt.Equal(o.CreatedAt) &&
		s.LastActivity.Equal(o.LastActivity)
}

// Clone returns a copy whose User map is detached from the original.
func (s Session) Clone() Session {
	if s.User != nil {
		m := make(map[string]any, len(s.User))
		for k, v := range s.User {
			m[k] = v
		}
		s.User = m
	}
	return s
}
