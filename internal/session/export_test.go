package session

import "time"

// SetStoreClock replaces the store's time source.
func SetStoreClock(s *Store, now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}
