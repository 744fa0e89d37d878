package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations to enable testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// NewReal returns a Clock backed by time.Now in UTC.
func NewReal() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now().UTC() }

// Mock is a settable clock for tests. Safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	current time.Time
}

func NewMock(start time.Time) *Mock {
	return &Mock{current: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Advance moves the mock clock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.current = m.current.Add(d)
	m.mu.Unlock()
}
