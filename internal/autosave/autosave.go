// Package autosave debounces block mutations into a single serialize and
// emit call.
package autosave

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"blockedit/internal/domain"
)

// DefaultDelay is the quiet period before a save fires.
const DefaultDelay = 500 * time.Millisecond

// Scheduler holds at most one pending snapshot. Each Schedule replaces the
// pending snapshot and restarts the timer; only the last one is saved.
type Scheduler struct {
	debounced func(func())
	serialize func([]domain.Block) string
	onChange  func(string)

	mu      sync.Mutex
	pending []domain.Block
	has     bool
	gen     uint64
	stopped bool
}

// New creates a scheduler. serialize turns a snapshot into text and
// onChange receives it. A non-positive delay uses DefaultDelay.
func New(delay time.Duration, serialize func([]domain.Block) string, onChange func(string)) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{
		debounced: debounce.New(delay),
		serialize: serialize,
		onChange:  onChange,
	}
}

// Schedule records snapshot as the state to save and restarts the timer.
// The snapshot is owned by the scheduler from here on.
func (s *Scheduler) Schedule(snapshot []domain.Block) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.pending, s.has = snapshot, true
	s.mu.Unlock()

	s.debounced(func() { s.fire(gen) })
}

// Pending reports whether a save is waiting for its timer.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.has
}

// Flush saves the pending snapshot right away. It reports whether there
// was anything to save.
func (s *Scheduler) Flush() bool {
	snap, ok := s.take(0)
	if ok {
		s.emit(snap)
	}
	return ok
}

// Cancel drops the pending save. Later schedules still fire.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	s.pending, s.has = nil, false
	s.gen++
	s.mu.Unlock()
}

// Stop drops any pending save and ignores further schedules.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.pending, s.has = nil, false
	s.gen++
	s.mu.Unlock()
}

func (s *Scheduler) fire(gen uint64) {
	if snap, ok := s.take(gen); ok {
		s.emit(snap)
	}
}

// take removes the pending snapshot. A non-zero gen must match the latest
// Schedule call.
func (s *Scheduler) take(gen uint64) ([]domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has || (gen != 0 && gen != s.gen) {
		return nil, false
	}
	snap := s.pending
	s.pending, s.has = nil, false
	return snap, true
}

func (s *Scheduler) emit(snap []domain.Block) {
	if s.serialize == nil || s.onChange == nil {
		return
	}
	s.onChange(s.serialize(snap))
}
