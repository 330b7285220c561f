// Package pinlock rate-limits attempts at the behavioral-pause PIN. It is not
// cryptographic authentication; the lockout exists to interrupt autopilot
// tapping, so the state machine favors predictability over sophistication.
//
// Unlike every other collaborator in this module, pinlock fails closed: if its
// state cannot be read or written, the attempt is not allowed.
package pinlock

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultMaxFailures = 5
	defaultBaseLockout = 30 * time.Second
	defaultMaxLockout  = 30 * time.Minute

	// defaultStaleWindow resets the failure counter even without a success,
	// so stale persisted state cannot lock a user out forever
	defaultStaleWindow = 24 * time.Hour
)

// State is the persisted limiter state.
type State struct {
	// Failures counts consecutive failed attempts since the last reset
	Failures int `json:"failures"`
	// Lockouts counts how many lockouts have occurred since the last success,
	// driving the exponential backoff
	Lockouts int `json:"lockouts"`
	// LastFailure is when the most recent failure was recorded
	LastFailure time.Time `json:"last_failure"`
	// LockedUntil is the end of the current lockout, zero when unlocked
	LockedUntil time.Time `json:"locked_until"`
}

// Store persists limiter state. Implementations must make Save atomic.
type Store interface {
	LoadPinState() (State, error)
	SavePinState(State) error
}

// Limiter is the lockout state machine. Callers serialize use themselves;
// only one PIN prompt is ever active at a time.
type Limiter struct {
	store       Store
	maxFailures int
	baseLockout time.Duration
	maxLockout  time.Duration
	staleWindow time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// Option configures the Limiter.
type Option func(*Limiter)

// WithMaxFailures sets how many consecutive failures trigger a lockout.
func WithMaxFailures(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.maxFailures = n
		}
	}
}

// WithBaseLockout sets the first lockout duration; each further lockout doubles it.
func WithBaseLockout(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.baseLockout = d
		}
	}
}

// WithStaleWindow sets how long after the last failure the counter resets on its own.
func WithStaleWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.staleWindow = d
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger for storage failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// New creates a Limiter backed by the given store.
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:       store,
		maxFailures: defaultMaxFailures,
		baseLockout: defaultBaseLockout,
		maxLockout:  defaultMaxLockout,
		staleWindow: defaultStaleWindow,
		now:         time.Now,
		logger:      zerolog.New(io.Discard),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Allowed reports whether a PIN attempt may proceed right now. Storage errors
// deny the attempt.
func (l *Limiter) Allowed() bool {
	state, err := l.store.LoadPinState()
	if err != nil {
		l.logger.Error().Err(err).Msg("pin limiter state unreadable, denying attempt")
		return false
	}

	now := l.now()

	if !state.LockedUntil.IsZero() && now.Before(state.LockedUntil) {
		return false
	}

	if l.isStale(state, now) {
		// Counter aged out; persist the reset so a crash cannot resurrect it.
		if err := l.store.SavePinState(State{}); err != nil {
			l.logger.Error().Err(err).Msg("pin limiter stale reset failed, denying attempt")
			return false
		}
	}

	return true
}

// RemainingLockout returns how long until attempts are allowed again, zero
// when unlocked. Storage errors report the maximum lockout.
func (l *Limiter) RemainingLockout() time.Duration {
	state, err := l.store.LoadPinState()
	if err != nil {
		return l.maxLockout
	}

	remaining := state.LockedUntil.Sub(l.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordFailure registers a failed attempt, starting a lockout once the
// consecutive-failure budget is spent.
func (l *Limiter) RecordFailure() error {
	state, err := l.store.LoadPinState()
	if err != nil {
		return err
	}

	now := l.now()

	if l.isStale(state, now) {
		state = State{}
	}

	state.Failures++
	state.LastFailure = now

	if state.Failures >= l.maxFailures {
		state.Lockouts++
		state.LockedUntil = now.Add(l.lockoutDuration(state.Lockouts))
		state.Failures = 0
	}

	return l.store.SavePinState(state)
}

// RecordSuccess clears all limiter state.
func (l *Limiter) RecordSuccess() error {
	return l.store.SavePinState(State{})
}

// lockoutDuration doubles the base duration per lockout, capped.
func (l *Limiter) lockoutDuration(lockouts int) time.Duration {
	d := l.baseLockout
	for i := 1; i < lockouts; i++ {
		d *= 2
		if d >= l.maxLockout {
			return l.maxLockout
		}
	}
	return d
}

func (l *Limiter) isStale(state State, now time.Time) bool {
	if state.Failures == 0 && state.Lockouts == 0 {
		return false
	}
	if state.LastFailure.IsZero() {
		return false
	}
	return now.Sub(state.LastFailure) >= l.staleWindow
}
