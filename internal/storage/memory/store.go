package memory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/MattEstHaut/RediSharp/pkg/cmap"
)

// DefaultSweepInterval is the pause between two sweeper passes.
const DefaultSweepInterval = 100 * time.Millisecond

// ExpireReason tells how an expired key was removed.
type ExpireReason string

const (
	ExpireLazy  ExpireReason = "lazy"
	ExpireSweep ExpireReason = "sweep"
)

// Store is the key-value store.
type Store struct {
	// Guarded by mu.
	values map[string]string

	// Absolute expiry in Unix ms. Written under mu; the sweeper scans it
	// without mu and re-checks under mu before deleting.
	expiries *cmap.Map[string, int64]

	// Mutation lock.
	mu sync.RWMutex

	// Coarse critical-section lock, independent of mu.
	critical sync.Mutex

	clock         func() time.Time
	sweepInterval time.Duration
	onExpire      func(reason ExpireReason, n int)
	logger        *slog.Logger

	sweeper sweeperState
}

// Option configures the Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithSweepInterval sets the pause between sweeper passes.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithExpireHook registers fn to be told how many keys expired and how.
func WithExpireHook(fn func(reason ExpireReason, n int)) Option {
	return func(s *Store) {
		s.onExpire = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty store. The sweeper is not running until Start.
func New(opts ...Option) *Store {
	s := &Store{
		values:        make(map[string]string),
		expiries:      cmap.New[string, int64](),
		clock:         time.Now,
		sweepInterval: DefaultSweepInterval,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) nowMillis() int64 {
	return s.clock().UnixMilli()
}

// Set stores value under key and clears any expiry.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.expiries.Delete(key)
}

// SetWithExpiry stores value under key, expiring ttl from now. A ttl that
// is zero or negative yields a key that is already expired.
func (s *Store) SetWithExpiry(key, value string, ttl time.Duration) {
	deadline := s.clock().Add(ttl).UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.expiries.Set(key, deadline)
}

// SetRawValue stores value under key and leaves any expiry untouched.
func (s *Store) SetRawValue(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
}

// Delete removes key and its expiry. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	s.expiries.Delete(key)
}

// Get returns the value stored under key. An expired key is deleted and
// reported absent.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	value, ok := s.values[key]
	deadline, hasDeadline := s.expiries.Get(key)
	s.mu.RUnlock()

	if !ok {
		return "", false
	}
	if hasDeadline && s.nowMillis() >= deadline {
		s.expireLazily(key)
		return "", false
	}
	return value, true
}

// RemainingTTL returns the time left before key expires. It reports false
// when the key is absent, has no expiry, or has already expired.
func (s *Store) RemainingTTL(key string) (time.Duration, bool) {
	s.mu.RLock()
	_, ok := s.values[key]
	deadline, hasDeadline := s.expiries.Get(key)
	s.mu.RUnlock()

	if !ok || !hasDeadline {
		return 0, false
	}
	left := deadline - s.nowMillis()
	if left <= 0 {
		s.expireLazily(key)
		return 0, false
	}
	return time.Duration(left) * time.Millisecond, true
}

// expireLazily deletes key if it is still expired once the write lock is
// held; a concurrent Set may have replaced it in the meantime.
func (s *Store) expireLazily(key string) {
	s.mu.Lock()
	removed := s.deleteIfExpiredLocked(key, s.nowMillis())
	s.mu.Unlock()

	if removed && s.onExpire != nil {
		s.onExpire(ExpireLazy, 1)
	}
}

func (s *Store) deleteIfExpiredLocked(key string, now int64) bool {
	deadline, ok := s.expiries.Get(key)
	if !ok || now < deadline {
		return false
	}
	delete(s.values, key)
	s.expiries.Delete(key)
	return true
}

// Count returns the number of stored keys, including expired keys that
// have not been removed yet.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Volatile returns the number of keys carrying an expiry.
func (s *Store) Volatile() int {
	return s.expiries.Len()
}

// AcquireCriticalSection takes the coarse lock. It is not reentrant.
func (s *Store) AcquireCriticalSection() {
	s.critical.Lock()
}

// ReleaseCriticalSection releases the coarse lock.
func (s *Store) ReleaseCriticalSection() {
	s.critical.Unlock()
}

// WithCriticalSection runs fn while holding the coarse lock and releases
// it on every exit, panics included. fn must not call WithCriticalSection.
func (s *Store) WithCriticalSection(fn func()) {
	s.AcquireCriticalSection()
	defer s.ReleaseCriticalSection()
	fn()
}
