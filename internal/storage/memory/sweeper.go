package memory

import (
	"sync"
	"time"
)

type sweeperState struct {
	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// Start launches the background sweeper. Calling Start on a running store
// is a no-op.
func (s *Store) Start() {
	s.sweeper.mu.Lock()
	defer s.sweeper.mu.Unlock()

	if s.sweeper.stopCh != nil {
		return
	}
	s.sweeper.stopCh = make(chan struct{})
	s.sweeper.doneCh = make(chan struct{})
	go s.sweepLoop(s.sweeper.stopCh, s.sweeper.doneCh)
}

// Close stops the sweeper and waits for the current pass to finish. The
// store stays usable and may be started again.
func (s *Store) Close() {
	s.sweeper.mu.Lock()
	stopCh, doneCh := s.sweeper.stopCh, s.sweeper.doneCh
	s.sweeper.stopCh, s.sweeper.doneCh = nil, nil
	s.sweeper.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}

func (s *Store) sweepLoop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.SweepExpired()
		}
	}
}

// SweepExpired runs one sweeper pass and returns the number of keys it
// removed. Each deletion happens inside its own critical section.
func (s *Store) SweepExpired() int {
	now := s.nowMillis()
	candidates := s.expiries.Collect(func(_ string, deadline int64) bool {
		return now >= deadline
	})
	if len(candidates) == 0 {
		return 0
	}

	removed := 0
	for _, key := range candidates {
		s.WithCriticalSection(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.deleteIfExpiredLocked(key, s.nowMillis()) {
				removed++
			}
		})
	}

	if removed > 0 {
		s.logger.Debug("expired keys swept", "count", removed)
		if s.onExpire != nil {
			s.onExpire(ExpireSweep, removed)
		}
	}
	return removed
}
