package client

import (
	"fmt"
	"sync"
	"time"
)

// Stopwatch measures running time, excluding pauses. It starts paused.
type Stopwatch struct {
	mu      sync.Mutex
	now     func() time.Time
	total   time.Duration // Accumulated time before the current run
	started time.Time     // Start of the current run, zero when paused
}

// NewStopwatch creates a paused Stopwatch reading 00:00.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{now: time.Now}
}

// Resume starts or continues timing. It is a no-op when already running.
func (s *Stopwatch) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started.IsZero() {
		s.started = s.now()
	}
}

// Pause stops timing, keeping the elapsed time.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started.IsZero() {
		s.total += s.now().Sub(s.started)
		s.started = time.Time{}
	}
}

// Reset stops timing and clears the elapsed time.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = 0
	s.started = time.Time{}
}

// Running reports whether the stopwatch is timing.
func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.started.IsZero()
}

// Elapsed returns the total running time.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started.IsZero() {
		return s.total
	}
	return s.total + s.now().Sub(s.started)
}

// FormatElapsed renders d as MM:SS. Minutes keep counting past 99.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
