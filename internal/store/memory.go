package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Op names a backend operation for fault injection.
type Op int

const (
	OpGet Op = iota
	OpSet
	OpClear
)

// Memory is an in-process key-value store. It backs ephemeral sessions and
// tests, and can be told to fail or stall specific operations.
type Memory struct {
	mu     sync.Mutex
	data   map[string]string
	fail   map[Op]error
	delay  time.Duration
	writes int
}

// NewMemory returns a Memory store pre-populated with seed.
func NewMemory(seed map[string]string) *Memory {
	m := &Memory{
		data: make(map[string]string, len(seed)),
		fail: make(map[Op]error),
	}
	for k, v := range seed {
		m.data[k] = v
	}
	return m
}

// FailOn makes every later call of op return err. A nil err clears it.
func (m *Memory) FailOn(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

// SetDelay makes every call wait d or until its context ends.
func (m *Memory) SetDelay(d time.Duration) {
	m.mu.Lock()
	m.delay = d
	m.mu.Unlock()
}

// begin applies the configured delay and failure for op, then takes the lock.
// The caller must unlock on a nil return.
func (m *Memory) begin(ctx context.Context, op Op) error {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	if err := m.fail[op]; err != nil {
		m.mu.Unlock()
		return err
	}
	return nil
}

// Get returns the value under key.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := m.begin(ctx, OpGet); err != nil {
		return "", false, err
	}
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := m.begin(ctx, OpSet); err != nil {
		return err
	}
	defer m.mu.Unlock()
	m.data[key] = value
	m.writes++
	return nil
}

// SetMany stores every pair atomically and counts as one write.
func (m *Memory) SetMany(ctx context.Context, values map[string]string) error {
	if err := m.begin(ctx, OpSet); err != nil {
		return err
	}
	defer m.mu.Unlock()
	for k, v := range values {
		m.data[k] = v
	}
	m.writes++
	return nil
}

// Clear removes every key.
func (m *Memory) Clear(ctx context.Context) error {
	if err := m.begin(ctx, OpClear); err != nil {
		return err
	}
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

// keys lists the stored keys in sorted order.
func (m *Memory) keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Value returns the raw stored value, for inspection.
func (m *Memory) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Writes returns how many Set and SetMany calls succeeded.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
