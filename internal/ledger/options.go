package ledger

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 5 * time.Second

type options struct {
	log     *slog.Logger
	timeout time.Duration
	clock   func() time.Time
	newID   func() string
	onError func(*PersistenceError)
}

// Option configures a Store.
type Option func(*options)

func defaultOptions() options {
	return options{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: DefaultTimeout,
		clock:   time.Now,
		newID:   uuid.NewString,
	}
}

// WithLogger sets the logger for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithTimeout bounds each backend call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClock sets the time source for entry creation.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithIDFunc sets the entry id generator.
func WithIDFunc(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// WithErrorHook registers a callback for every persistence failure.
// It runs on the goroutine that hit the failure and must not call back
// into the store.
func WithErrorHook(f func(*PersistenceError)) Option {
	return func(o *options) { o.onError = f }
}
