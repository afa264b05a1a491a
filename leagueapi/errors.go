package leagueapi

import "fmt"

// Error is the discriminated backend failure: an HTTP status code plus
// the human-readable message the backend sent. Status 0 means the
// backend could not be reached at all.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend unreachable: %s", e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}
