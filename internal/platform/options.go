package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/pocket/pkg/core"
)

// Backend names accepted by WithBackend.
const (
	BackendFS     = "fs"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// options holds the internal configuration for a notebook.
type options struct {
	storage      core.Storage
	logger       *slog.Logger
	backend      string
	format       string
	idStrategy   string
	clock        func() time.Time
	readOnly     bool
	versioning   bool
	autoInit     bool
	mustExist    bool
	forceTemp    bool
	devSafety    bool
	eventBuffer  int
	errorHandler func(error)
}

// Option defines a functional option for configuring a notebook.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		backend:    BackendFS,
		format:     "json",
		idStrategy: "time",
		autoInit:   true,
		devSafety:  true,
	}
}

// WithLogger sets the logger shared by the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBackend selects the storage adapter by name: "fs" (default), "bolt" or "sqlite".
func WithBackend(name string) Option {
	return func(o *options) {
		if name != "" {
			o.backend = name
		}
	}
}

// WithFormat selects the collection codec: "json" (default) or "yaml".
func WithFormat(name string) Option {
	return func(o *options) {
		if name != "" {
			o.format = name
		}
	}
}

// WithIDStrategy selects the identifier generator: "time" (default) or "uuid".
func WithIDStrategy(name string) Option {
	return func(o *options) {
		if name != "" {
			o.idStrategy = name
		}
	}
}

// WithStorage injects a custom storage adapter (e.g. a mock).
// The backend option is ignored when set.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithClock sets the time source for timestamps and time-based ids.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithReadOnly enables read-only mode.
// Mutations fail with core.ErrReadOnly and no directory or database is created.
// The dev sandbox is bypassed since nothing can be written.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithVersioning commits every write of the fs backend to Git.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = enabled
	}
}

// WithAutoInit creates the notes directory (and runs git init when versioned).
// Enabled by default.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithMustExist requires the notes directory to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithForceTemp re-roots the notes directory under the system temp dir.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run`.
// By default (true) such runs operate on a temp directory so a development
// build never touches real notes.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithEventBuffer sets the per-subscriber event buffer. Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithWatcherErrorHandler receives runtime failures of the fs watcher
// (e.g. permission denied) which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
