// Package clock holds the process-wide "time since boot" function consumed by the
// engine time subsystem. The platform installs the function exactly once; any read
// before installation is a fatal logic error.
package clock

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrElapsedAlreadySet is returned when a second elapsed function is installed
var ErrElapsedAlreadySet = errors.New("clock: elapsed function already installed")

// ElapsedFunc reports time elapsed since program start
type ElapsedFunc func() time.Duration

// Source is a write-once slot for an ElapsedFunc
// The zero value is ready to use and has nothing installed
type Source struct {
	elapsed atomic.Pointer[ElapsedFunc]
}

// Default is the process-wide source used by the engine and the platform
var Default = &Source{}

// SetElapsed installs fn; the installation is irrevocable
func (s *Source) SetElapsed(fn ElapsedFunc) error {
	if fn == nil {
		return errors.New("clock: nil elapsed function")
	}
	if !s.elapsed.CompareAndSwap(nil, &fn) {
		return ErrElapsedAlreadySet
	}
	return nil
}

// Installed reports whether an elapsed function has been set
func (s *Source) Installed() bool {
	return s.elapsed.Load() != nil
}

// Elapsed returns the time since program start
// Panics if no function was installed
func (s *Source) Elapsed() time.Duration {
	fn := s.elapsed.Load()
	if fn == nil {
		panic("clock: elapsed function not installed; the platform time plugin must be added first")
	}
	return (*fn)()
}

// Now captures the current instant
func (s *Source) Now() Instant {
	return Instant{since: s.Elapsed()}
}

// SetElapsed installs fn on the Default source
func SetElapsed(fn ElapsedFunc) error {
	return Default.SetElapsed(fn)
}

// Now captures the current instant from the Default source
func Now() Instant {
	return Default.Now()
}

// Instant is a point on the monotonic clock
type Instant struct {
	since time.Duration
}

// Sub returns the duration i-earlier, saturating at zero.
// Installed sources are monotonic, so saturation only guards misuse.
func (i Instant) Sub(earlier Instant) time.Duration {
	if i.since < earlier.since {
		return 0
	}
	return i.since - earlier.since
}

// SinceBoot returns the raw offset from program start
func (i Instant) SinceBoot() time.Duration {
	return i.since
}
