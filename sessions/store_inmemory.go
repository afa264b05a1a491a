package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBackend is an in-process store shared by any number of
// execution contexts. Each context opens its own handle; writes fan out
// to every other handle's change channel, mirroring how the durable
// backends behave across processes.
//
// It doubles as the test fake: cross-context scenarios run through
// OpenContext, and Broadcast triggers the notification path without a
// write.
type MemoryBackend struct {
	mu      sync.RWMutex
	session *Session
	meta    map[string]LockoutMeta
	handles map[string]*memoryHandle
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		meta:    make(map[string]LockoutMeta),
		handles: make(map[string]*memoryHandle),
	}
}

// OpenContext returns a Store handle representing one execution
// context.
func (b *MemoryBackend) OpenContext() Store {
	h := &memoryHandle{
		backend: b,
		id:      uuid.New().String(),
		changes: make(chan Change, 8),
	}
	b.mu.Lock()
	b.handles[h.id] = h
	b.mu.Unlock()
	return h
}

// Broadcast delivers a synthetic change notification to every open
// handle. Tests use it to exercise the notification trigger directly.
func (b *MemoryBackend) Broadcast() {
	b.notify("")
}

func (b *MemoryBackend) notify(origin string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c := Change{Origin: origin, At: time.Now()}
	for id, h := range b.handles {
		if id == origin && origin != "" {
			continue
		}
		select {
		case h.changes <- c:
		default:
			// Slow consumer; the periodic sweep catches it up.
		}
	}
}

type memoryHandle struct {
	backend *MemoryBackend
	id      string
	changes chan Change
	once    sync.Once
}

var _ Store = (*memoryHandle)(nil)

func (h *memoryHandle) Read() (Session, bool) {
	h.backend.mu.RLock()
	defer h.backend.mu.RUnlock()
	if h.backend.session == nil {
		return Session{}, false
	}
	return h.backend.session.Clone(), true
}

func (h *memoryHandle) Write(s Session) error {
	h.backend.mu.Lock()
	stored := s.Clone()
	h.backend.session = &stored
	h.backend.mu.Unlock()
	h.backend.notify(h.id)
	return nil
}

func (h *memoryHandle) Clear() error {
	h.backend.mu.Lock()
	h.backend.session = nil
	h.backend.mu.Unlock()
	h.backend.notify(h.id)
	return nil
}

func (h *memoryHandle) ReadLockoutMeta(email string) LockoutMeta {
	h.backend.mu.RLock()
	defer h.backend.mu.RUnlock()
	return h.backend.meta[MetaKey(email)]
}

func (h *memoryHandle) WriteLockoutMeta(email string, meta LockoutMeta) error {
	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	h.backend.meta[MetaKey(email)] = meta
	return nil
}

func (h *memoryHandle) ResetLockoutMeta(email string) error {
	return h.WriteLockoutMeta(email, LockoutMeta{})
}

func (h *memoryHandle) Changes() <-chan Change {
	return h.changes
}

func (h *memoryHandle) Close() error {
	h.once.Do(func() {
		h.backend.mu.Lock()
		delete(h.backend.handles, h.id)
		h.backend.mu.Unlock()
		close(h.changes)
	})
	return nil
}
