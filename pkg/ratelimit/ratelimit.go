package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store decides whether a hit identified by key fits inside the window.
type Store interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryStore is a sliding-window limiter held in process memory. Suitable
// for a single instance; multi-instance deployments should use the counter
// store backed by Redis.
type MemoryStore struct {
	mu      sync.Mutex
	limits  map[string][]time.Time
	window  time.Duration
	maxHits int
}

func NewMemoryStore(window time.Duration, maxHits int) *MemoryStore {
	return &MemoryStore{
		limits:  make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
	}
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-s.window)

	// Clean old entries
	if hits, exists := s.limits[key]; exists {
		valid := hits[:0]
		for _, hit := range hits {
			if hit.After(windowStart) {
				valid = append(valid, hit)
			}
		}
		s.limits[key] = valid
	}

	// Check current count
	if len(s.limits[key]) >= s.maxHits {
		return false, nil
	}

	// Add new hit
	s.limits[key] = append(s.limits[key], now)
	return true, nil
}

// Counter increments a windowed hit counter and returns the new count.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// CounterStore is a fixed-window limiter over a shared counter, typically
// Redis. A counter error fails open so a limiter outage cannot take the
// service down with it.
type CounterStore struct {
	counter Counter
	window  time.Duration
	maxHits int
}

func NewCounterStore(counter Counter, window time.Duration, maxHits int) *CounterStore {
	return &CounterStore{
		counter: counter,
		window:  window,
		maxHits: maxHits,
	}
}

func (s *CounterStore) Allow(ctx context.Context, key string) (bool, error) {
	count, err := s.counter.IncrWindow(ctx, key, s.window)
	if err != nil {
		return true, err
	}
	return count <= int64(s.maxHits), nil
}
