package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pocket"
	"github.com/aretw0/pocket/internal/config"
	"github.com/aretw0/pocket/pkg/core"
)

// app carries the persistent flags and the resolved configuration.
type app struct {
	configPath string
	dir        string
	backend    string
	format     string
	readOnly   bool
	versioned  bool
	verbose    bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pocket",
		Short: "A tiny personal note store",
		Long: `Pocket keeps short text notes in a single ordered collection.
Every change rewrites the whole collection to the selected backend
(plain files, optionally versioned with Git, bbolt or SQLite).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.pocket/config.toml)")
	flags.StringVarP(&a.dir, "dir", "d", "", "notes directory (default: nearest .pocket, else ~/.pocket)")
	flags.StringVar(&a.backend, "backend", "", "storage backend: fs, bolt or sqlite")
	flags.StringVar(&a.format, "format", "", "collection format: json or yaml")
	flags.BoolVar(&a.readOnly, "read-only", false, "reject every write")
	flags.BoolVar(&a.versioned, "versioned", false, "commit every write to Git (fs backend)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newNewCmd(a),
		newEditCmd(a),
		newShowCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newThemeCmd(a),
		newWatchCmd(a),
		newUICmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command tree. It is called by main.main().
func Execute() error {
	return newRootCmd().Execute()
}

// setup loads .env, the config file and the environment, applies flag
// overrides and installs the default logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.dir != "" {
		cfg.Dir = a.dir
	}
	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if a.format != "" {
		cfg.Format = a.format
	}
	if a.readOnly {
		cfg.ReadOnly = true
	}
	if a.versioned {
		cfg.Versioned = true
	}
	a.cfg = cfg

	level := cfg.Level()
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// open resolves the notes directory and loads the notebook.
func (a *app) open() (*pocket.Notebook, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	dir, err := a.cfg.ResolveDir(wd)
	if err != nil {
		return nil, err
	}
	slog.Debug("opening notebook", "dir", dir, "backend", a.cfg.Backend, "format", a.cfg.Format)

	opts := append(a.cfg.Options(), pocket.WithLogger(slog.Default()))
	return pocket.New(dir, opts...)
}

// withReason attaches a commit message for versioned storage.
func withReason(ctx context.Context, msg string) context.Context {
	if msg == "" {
		return ctx
	}
	return context.WithValue(ctx, core.ChangeReasonKey, msg)
}
