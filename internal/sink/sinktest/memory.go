// Package sinktest provides an in-memory sink for tests of code that emits records.
package sinktest

import (
	"context"
	"sync"

	"github.com/JakeFAU/fifa-crawler/internal/sink"
)

// Memory stores written records for inspection.
type Memory struct {
	mu      sync.RWMutex
	records []any
	closed  bool
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Write records the value. Writes after Close fail with sink.ErrClosed.
func (m *Memory) Write(_ context.Context, record any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return sink.ErrClosed
	}
	m.records = append(m.records, record)
	return nil
}

// Close marks the sink closed.
func (m *Memory) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Records returns the written records.
func (m *Memory) Records() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]any, len(m.records))
	copy(out, m.records)
	return out
}
