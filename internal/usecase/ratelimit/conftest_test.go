package ratelimit

import (
	"context"
	"sync"
)

// memCounter emulates the admit script: check and increment under one lock.
type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
	delay  func(ctx context.Context) error
}

func newMemCounter() *memCounter {
	return &memCounter{counts: make(map[string]int64)}
}

func (m *memCounter) Admit(ctx context.Context, id string, limit int64) (bool, int64, error) {
	if m.delay != nil {
		if err := m.delay(ctx); err != nil {
			return false, 0, err
		}
	}
	if m.err != nil {
		return false, 0, m.err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.counts[id]
	if c >= limit {
		return false, c, nil
	}
	c++
	m.counts[id] = c
	return true, c, nil
}

func (m *memCounter) count(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[id]
}
