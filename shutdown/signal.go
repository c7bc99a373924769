package shutdown

import "sync"

// SignalCounter counts received shutdown signals and invokes a force
// callback once the threshold is reached, so a second Ctrl+C always
// gets the user out.
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	forceAfter int
	onForce    func()
}

// NewSignalCounter creates a SignalCounter that calls onForce after
// forceAfter signals.
func NewSignalCounter(forceAfter int, onForce func()) *SignalCounter {
	if forceAfter < 1 {
		forceAfter = 2
	}
	return &SignalCounter{forceAfter: forceAfter, onForce: onForce}
}

// Increment records a signal and returns the running count. The force
// callback fires on the call that reaches the threshold.
func (s *SignalCounter) Increment() int {
	s.mu.Lock()
	s.count++
	count := s.count
	fire := count >= s.forceAfter
	onForce := s.onForce
	s.mu.Unlock()

	if fire && onForce != nil {
		onForce()
	}
	return count
}

// Count returns the number of signals seen so far.
func (s *SignalCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Reset clears the counter.
func (s *SignalCounter) Reset() {
	s.mu.Lock()
	s.count = 0
	s.mu.Unlock()
}
