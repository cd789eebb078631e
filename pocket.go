package pocket

import (
	_ "embed"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/pocket/internal/platform"
	"github.com/aretw0/pocket/pkg/core"
)

//go:embed VERSION
var version string

// Version is the release of the library and CLI.
var Version = strings.TrimSpace(version)

// --- Types ---

// Notebook is a loaded note store plus its preferences.
type Notebook = platform.Notebook

// Option defines a functional option for configuring a Notebook.
type Option = platform.Option

// --- Configuration ---

// WithLogger sets the logger shared by the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithBackend selects the storage adapter: "fs" (default), "bolt" or "sqlite".
func WithBackend(name string) Option {
	return platform.WithBackend(name)
}

// WithFormat selects the collection format: "json" (default) or "yaml".
func WithFormat(name string) Option {
	return platform.WithFormat(name)
}

// WithIDStrategy selects the identifier generator: "time" (default) or "uuid".
func WithIDStrategy(name string) Option {
	return platform.WithIDStrategy(name)
}

// WithStorage injects a custom storage adapter.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithVersioning commits every write of the fs backend to Git.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithAutoInit creates the notes directory when missing.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist requires the notes directory to exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the temp-dir sandbox used under `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithEventBuffer sets the per-subscriber event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithWatcherErrorHandler receives runtime failures of the fs watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New opens the notebook in dir and loads its collection.
func New(dir string, opts ...Option) (*Notebook, error) {
	return platform.New(dir, opts...)
}

// NewSession starts a view session (query, selection, draft) over store.
func NewSession(store *core.Store) *core.Session {
	return core.NewSession(store)
}

// --- Utils ---

// FindRoot walks up from startDir to the nearest directory holding a .pocket folder.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// IsDevRun reports whether the process runs via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
