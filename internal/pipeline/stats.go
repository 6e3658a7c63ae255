package pipeline

import "sync"

// Stats accumulates run counters. Updates come from the single drain
// loop, but snapshots may be taken concurrently for display refresh, so
// every access goes through one mutex.
type Stats struct {
	mu          sync.Mutex
	total       int
	screenshots int
	other       int
	errors      int
}

// Record folds one outcome into the counters. A failed outcome counts
// only as an error, never additionally as screenshot or other.
func (s *Stats) Record(out Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	switch {
	case out.Err != nil:
		s.errors++
	case out.Screenshot:
		s.screenshots++
	default:
		s.other++
	}
}

// Snapshot returns an immutable view of the counters.
func (s *Stats) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Summary{
		Total:       s.total,
		Screenshots: s.screenshots,
		Other:       s.other,
		Errors:      s.errors,
	}
}

// Summary is a point-in-time view of the run counters. The invariant
// Total == Screenshots + Other + Errors holds after every Record.
type Summary struct {
	Total       int
	Screenshots int
	Other       int
	Errors      int
}
