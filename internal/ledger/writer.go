package ledger

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Backend is the key-value persistence capability the store drives.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}

// BatchBackend is a Backend that can apply several writes atomically.
type BatchBackend interface {
	Backend
	SetMany(ctx context.Context, values map[string]string) error
}

// Stats counts persistence activity since the store opened.
type Stats struct {
	Writes      int64
	WriteFailed int64
	LoadFailed  int64
	ClearFailed int64
	Pending     int
}

// writer persists scheduled key writes on its own goroutine. Writes to the
// same key coalesce: only the newest value is written.
type writer struct {
	backend Backend
	timeout time.Duration
	log     *slog.Logger
	report  func(*PersistenceError)

	io sync.Mutex // held for every backend call made by drain or clear

	mu      sync.Mutex
	pending map[string]string
	busy    bool // pending writes exist or a drain is in progress
	waiters []chan struct{}

	wake chan struct{}
	quit chan struct{}
	done chan struct{}

	writes      atomic.Int64
	writeFailed atomic.Int64
}

func newWriter(b Backend, timeout time.Duration, log *slog.Logger, report func(*PersistenceError)) *writer {
	w := &writer{
		backend: b,
		timeout: timeout,
		log:     log,
		report:  report,
		pending: make(map[string]string),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *writer) poke() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// enqueue schedules value to be written under key.
func (w *writer) enqueue(key, value string) {
	w.mu.Lock()
	w.pending[key] = value
	w.busy = true
	w.mu.Unlock()
	w.poke()
}

// drain writes pending batches until none are left, then releases flush waiters.
func (w *writer) drain() {
	w.io.Lock()
	defer w.io.Unlock()

	for {
		w.mu.Lock()
		batch := w.pending
		if len(batch) == 0 {
			waiters := w.waiters
			w.waiters = nil
			w.busy = false
			w.mu.Unlock()
			for _, ch := range waiters {
				close(ch)
			}
			return
		}
		w.pending = make(map[string]string)
		w.mu.Unlock()

		w.write(batch)
	}
}

func (w *writer) write(batch map[string]string) {
	if bb, ok := w.backend.(BatchBackend); ok && len(batch) > 1 {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := bb.SetMany(ctx, batch)
		cancel()
		w.writes.Add(int64(len(batch)))
		if err != nil {
			w.writeFailed.Add(int64(len(batch)))
			for _, key := range sortedKeys(batch) {
				w.report(&PersistenceError{Op: "write", Key: key, Err: err})
			}
		}
		return
	}

	for _, key := range sortedKeys(batch) {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.backend.Set(ctx, key, batch[key])
		cancel()
		w.writes.Add(1)
		if err != nil {
			w.writeFailed.Add(1)
			w.report(&PersistenceError{Op: "write", Key: key, Err: err})
			continue
		}
		w.log.Debug("persisted", "key", key, "bytes", len(batch[key]))
	}
}

// flush blocks until everything enqueued before the call has been attempted.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	if !w.busy {
		w.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	w.waiters = append(w.waiters, ch)
	w.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// clear drops pending writes and clears the backend. If the clear fails the
// dropped writes are put back so they still land.
func (w *writer) clear(ctx context.Context) error {
	w.io.Lock()
	defer w.io.Unlock()

	w.mu.Lock()
	dropped := w.pending
	w.pending = make(map[string]string)
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.backend.Clear(ctx)
	cancel()

	if err != nil {
		w.mu.Lock()
		for k, v := range dropped {
			if _, newer := w.pending[k]; !newer {
				w.pending[k] = v
			}
		}
		w.mu.Unlock()
	}
	// Let the drain loop settle busy and release any flush waiters.
	w.poke()
	return err
}

func (w *writer) pendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// stop drains what is left and ends the goroutine.
func (w *writer) stop(ctx context.Context) error {
	close(w.quit)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
