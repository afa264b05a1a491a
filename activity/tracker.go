// Package activity turns user-interaction signals into throttled
// session renewals, bounding how often the durable store is written.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// throttleWindow bounds renewal frequency: at most one store write per
// window, excess signals are dropped rather than queued.
const throttleWindow = 15 * time.Second

// Kind labels an interaction signal.
type Kind string

const (
	KindPointer    Kind = "pointer"
	KindKeyboard   Kind = "keyboard"
	KindVisibility Kind = "visibility"
)

// Renewer is the slice of the session service the tracker drives.
type Renewer interface {
	UpdateActivity()
}

// Tracker accepts interaction signals while a session is active and
// renews the session's last-activity timestamp, rate-limited to one
// renewal per throttle window. The limiter state survives Stop/Start
// cycles so re-activation does not cause an immediate extra write.
type Tracker struct {
	renewer Renewer
	log     zerolog.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	running bool
}

// Option configures a Tracker.
type Option func(*Tracker)

func WithLogger(log zerolog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// WithThrottle overrides the renewal window (primarily for testing).
func WithThrottle(window time.Duration) Option {
	return func(t *Tracker) { t.limiter = rate.NewLimiter(rate.Every(window), 1) }
}

func New(renewer Renewer, options ...Option) *Tracker {
	t := &Tracker{
		renewer: renewer,
		log:     zerolog.Nop(),
		limiter: rate.NewLimiter(rate.Every(throttleWindow), 1),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Start begins accepting signals. Callers bind it to the session
// becoming active.
func (t *Tracker) Start() {
	t.mu.Lock()
	t.running = true
	t.mu.Unlock()
}

// Stop detaches the tracker; signals received while stopped are
// discarded. Idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Signal records one user interaction. While running, at most one
// renewal reaches the store per throttle window.
func (t *Tracker) Signal(kind Kind) {
	if !t.Running() {
		return
	}
	if !t.limiter.Allow() {
		return
	}
	t.log.Debug().Str("kind", string(kind)).Msg("renewing session activity")
	t.renewer.UpdateActivity()
}

// Watch drains a signal channel until the context ends or the channel
// closes.
func (t *Tracker) Watch(ctx context.Context, signals <-chan Kind) {
	for {
		select {
		case <-ctx.Done():
			return
		case kind, open := <-signals:
			if !open {
				return
			}
			t.Signal(kind)
		}
	}
}
