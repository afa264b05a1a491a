package sessions

import "time"

// Change is a store change notification. Origin identifies the store
// handle that performed the write; implementations never deliver a
// Change back to its own origin, mirroring how storage events behave
// in the original client. An empty Origin means the writer could not
// be attributed.
type Change struct {
	Origin string
	At     time.Time
}

// Store is the durable session store shared by every execution context
// on the device. It holds at most one Session plus per-account lockout
// metadata under fixed keys.
//
// Reads never fail: malformed or unreadable data degrades to "absent"
// rather than surfacing an error. Writes are last-writer-wins; when two
// contexts write concurrently the later physical write sticks and the
// earlier writer is not told about the conflict.
type Store interface {
	// Read returns the stored session, if any.
	Read() (Session, bool)

	// Write replaces the stored session and notifies sibling contexts.
	Write(Session) error

	// Clear removes the stored session and notifies sibling contexts.
	// Clearing an empty store is not an error.
	Clear() error

	// ReadLockoutMeta returns the lockout record for an account.
	// Absent records come back as the zero value.
	ReadLockoutMeta(email string) LockoutMeta

	// WriteLockoutMeta stores the lockout record for an account.
	WriteLockoutMeta(email string, meta LockoutMeta) error

	// ResetLockoutMeta restores the account's record to the zero
	// value.
	ResetLockoutMeta(email string) error

	// Changes delivers notifications for session writes made by
	// sibling contexts. Lockout-meta writes do not notify. The channel
	// is closed by Close.
	Changes() <-chan Change

	// Close releases the handle and any watchers it owns.
	Close() error
}
