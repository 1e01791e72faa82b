package redis_limiter

import (
	"context"
	"sync"
)

// LocalLimiter is the single-process Limiter used when Redis is not configured.
type LocalLimiter struct {
	mu            sync.Mutex
	maxConcurrent int
	inUse         map[string]int
}

// NewLocalLimiter creates a LocalLimiter. maxConcurrent <= 0 means unlimited.
func NewLocalLimiter(maxConcurrent int) *LocalLimiter {
	return &LocalLimiter{
		maxConcurrent: maxConcurrent,
		inUse:         make(map[string]int),
	}
}

// Acquire takes a slot for key or returns ErrLimitReached.
func (l *LocalLimiter) Acquire(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxConcurrent > 0 && l.inUse[key] >= l.maxConcurrent {
		return ErrLimitReached
	}
	l.inUse[key]++
	return nil
}

// Release gives a slot back.
func (l *LocalLimiter) Release(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inUse[key] <= 1 {
		delete(l.inUse, key)
		return
	}
	l.inUse[key]--
}

// GetCurrent returns the number of slots in use for key.
func (l *LocalLimiter) GetCurrent(_ context.Context, key string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inUse[key], nil
}
