package platform

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/pocket/pkg/adapters/bolt"
	"github.com/aretw0/pocket/pkg/adapters/fs"
	"github.com/aretw0/pocket/pkg/adapters/sqlite"
	"github.com/aretw0/pocket/pkg/codec"
	"github.com/aretw0/pocket/pkg/core"
	"github.com/aretw0/pocket/pkg/idgen"
	"github.com/aretw0/pocket/pkg/prefs"
)

// Notebook is a loaded note store plus the preferences sharing its storage.
type Notebook struct {
	Store   *core.Store
	Prefs   *prefs.Store
	Storage core.Storage
	Path    string // resolved directory, after dev sandboxing
}

// Close releases the storage when it holds a file handle (bolt, sqlite).
func (n *Notebook) Close() error {
	if c, ok := n.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// New opens the notebook in dir and loads its collection.
//
//	nb, err := pocket.New("./notes", pocket.WithBackend("bolt"))
func New(dir string, opts ...Option) (*Notebook, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	cdc, err := codec.ByName(o.format)
	if err != nil {
		return nil, err
	}
	ids, err := newIDGenerator(o)
	if err != nil {
		return nil, err
	}

	storage, path := o.storage, dir
	if storage == nil {
		storage, path, err = openStorage(dir, o, cdc)
		if err != nil {
			return nil, err
		}
	}

	storeOpts := []core.StoreOption{
		core.WithLogger(o.logger),
		core.WithEventBuffer(o.eventBuffer),
	}
	if o.clock != nil {
		storeOpts = append(storeOpts, core.WithClock(o.clock))
	}
	store := core.NewStore(storage, cdc, ids, storeOpts...)
	store.Load(context.Background())

	return &Notebook{
		Store:   store,
		Prefs:   prefs.NewStore(storage, o.logger),
		Storage: storage,
		Path:    path,
	}, nil
}

func newIDGenerator(o *options) (core.IDGenerator, error) {
	if o.clock != nil && (o.idStrategy == "" || o.idStrategy == "time") {
		return idgen.NewClockAt(o.clock), nil
	}
	return idgen.ByName(o.idStrategy)
}

// openStorage builds the adapter selected by o.backend and returns it with
// the directory it actually uses.
func openStorage(dir string, o *options, cdc codec.Codec) (core.Storage, string, error) {
	bypassSafety := o.readOnly || !o.devSafety
	useTemp := o.forceTemp || (IsDevRun() && !bypassSafety)
	path := ResolvePath(dir, useTemp)

	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", dir, "resolved_path", path)
	}

	mustExist := o.mustExist || (!o.autoInit && !useTemp)

	if o.versioning && o.backend != BackendFS {
		return nil, "", fmt.Errorf("versioning requires the %s backend, not %s", BackendFS, o.backend)
	}

	switch o.backend {
	case BackendFS:
		s := fs.NewStorage(fs.Config{
			Path:         path,
			Ext:          cdc.Ext(),
			MustExist:    mustExist,
			ReadOnly:     o.readOnly,
			Versioned:    o.versioning,
			AutoInit:     o.autoInit,
			Logger:       o.logger,
			ErrorHandler: o.errorHandler,
		})
		if err := s.Initialize(context.Background()); err != nil {
			return nil, "", err
		}
		return s, path, nil

	case BackendBolt:
		if err := checkDir(path, mustExist || o.readOnly); err != nil {
			return nil, "", err
		}
		s, err := bolt.Open(bolt.Config{Path: filepath.Join(path, bolt.DefaultFile), ReadOnly: o.readOnly})
		if err != nil {
			return nil, "", err
		}
		return s, path, nil

	case BackendSQLite:
		if err := checkDir(path, mustExist || o.readOnly); err != nil {
			return nil, "", err
		}
		s, err := sqlite.Open(sqlite.Config{Path: filepath.Join(path, sqlite.DefaultFile), ReadOnly: o.readOnly})
		if err != nil {
			return nil, "", err
		}
		return s, path, nil

	default:
		return nil, "", fmt.Errorf("unknown backend: %s", o.backend)
	}
}

func checkDir(path string, mustExist bool) error {
	if !mustExist {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("notes directory does not exist: %s", path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("notes path is not a directory: %s", path)
	}
	return nil
}
