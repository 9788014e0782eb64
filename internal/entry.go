// Package internal wires jot's components together from a Config.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/jot/internal/editor"
	"github.com/starford/jot/internal/index"
	"github.com/starford/jot/internal/noteservice"
	"github.com/starford/jot/internal/prompt"
	"github.com/starford/jot/internal/storage"
)

// App is an opened jot instance. Close releases the index lock.
type App struct {
	Config *Config
	Logger *slog.Logger
	Store  *storage.FS
	Index  *index.DB
	Notes  *noteservice.Service
}

// Open builds the application graph: logger, notes root, index and note service.
func Open(ctx context.Context, opts ...Option) (*App, error) {
	app := &application{logOut: os.Stderr}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Text logs on stderr; stdout carries command output.
	logger := slog.New(slog.NewTextHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("notes_root", cfg.Notes.Root),
		slog.String("index_path", cfg.Index.Path),
		slog.String("editor", cfg.Editor.Command),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := ensureRoot(ctx, cfg.Notes.Root, logger); err != nil {
		return nil, err
	}

	store, err := storage.NewFS(cfg.Notes.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	if err := os.MkdirAll(cfg.Index.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := index.Open(cfg.Index.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	prompter := app.prompter
	if prompter == nil {
		prompter = prompt.NewTerminal()
	}
	opener := app.editor
	if opener == nil {
		opener = editor.New(cfg.Editor.Command, store.Root())
	}

	return &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Index:  db,
		Notes:  noteservice.New(store, db, prompter, opener, logger),
	}, nil
}

// Close closes the index.
func (a *App) Close() error {
	return a.Index.Close()
}

// ensureRoot creates the notes root on first use and makes it a git
// repository so Markdown tooling that keys on .git (marksman and the like)
// treats it as a workspace. git being absent is not an error.
func ensureRoot(ctx context.Context, root string, logger *slog.Logger) error {
	if _, err := os.Stat(root); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat notes root: %w", err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create notes root: %w", err)
	}
	logger.Info("created notes root", slog.String("path", root))

	cmd := exec.CommandContext(ctx, "git", "init", "--quiet")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		logger.Debug("git init skipped",
			slog.String("path", root),
			slog.String("error", err.Error()),
			slog.String("output", string(out)))
	}
	return nil
}

// RunUntilSignal runs fn until it returns, SIGINT/SIGTERM arrives or ctx is
// cancelled. fn's context is cancelled on shutdown and its error is returned.
func RunUntilSignal(ctx context.Context, logger *slog.Logger, fn func(ctx context.Context) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		return fn(gCtx)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
