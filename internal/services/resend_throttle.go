package services

import (
	"fmt"
	"sync"
	"time"
)

// ResendAttempt tracks how often a single identity asked for a fresh code.
type ResendAttempt struct {
	Count int
	Last  time.Time
}

// AttemptStore keeps per-identity resend state. The in-memory implementation
// is enough for a single process; a multi-instance deployment plugs in a
// shared cache behind the same interface.
type AttemptStore interface {
	Get(key string) (ResendAttempt, bool)
	Put(key string, a ResendAttempt)
	Delete(key string)
}

type memoryAttemptStore struct {
	mu sync.Mutex
	m  map[string]ResendAttempt
}

func NewMemoryAttemptStore() AttemptStore {
	return &memoryAttemptStore{m: make(map[string]ResendAttempt)}
}

func (s *memoryAttemptStore) Get(key string) (ResendAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.m[key]
	return a, ok
}

func (s *memoryAttemptStore) Put(key string, a ResendAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = a
}

func (s *memoryAttemptStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// RateLimitError is a recoverable rejection from the resend throttle.
// Either the caller has to wait RetryAfter seconds, or the attempt budget is
// spent entirely and only an external reset (successful verification) helps.
type RateLimitError struct {
	RetryAfter         int `json:"retry_after,omitempty"`
	MaxAttemptsReached bool `json:"max_attempts_reached,omitempty"`
}

func (e *RateLimitError) Error() string {
	if e.MaxAttemptsReached {
		return "maximum resend attempts reached"
	}
	return fmt.Sprintf("resend throttled, retry in %ds", e.RetryAfter)
}

// ResendThrottle rate-limits OTP resends per identity: a cooldown between
// consecutive requests plus a hard attempt cap.
type ResendThrottle struct {
	store       AttemptStore
	cooldown    time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewResendThrottle(store AttemptStore, cooldown time.Duration, maxAttempts int) *ResendThrottle {
	return &ResendThrottle{
		store:       store,
		cooldown:    cooldown,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Allow records one resend attempt for key, or rejects with *RateLimitError.
// The cooldown is checked before the attempt cap, so a caller always learns
// the wait time first.
func (t *ResendThrottle) Allow(key string) error {
	now := t.now()
	a, ok := t.store.Get(key)
	if ok {
		if elapsed := now.Sub(a.Last); elapsed < t.cooldown {
			remaining := int((t.cooldown - elapsed + time.Second - 1) / time.Second)
			return &RateLimitError{RetryAfter: remaining}
		}
		if a.Count >= t.maxAttempts {
			return &RateLimitError{MaxAttemptsReached: true}
		}
	}
	t.store.Put(key, ResendAttempt{Count: a.Count + 1, Last: now})
	return nil
}

// Reset clears the counter, e.g. after a successful verification.
func (t *ResendThrottle) Reset(key string) {
	t.store.Delete(key)
}
