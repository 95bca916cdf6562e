package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MattEstHaut/RediSharp/internal/core/domain"
	"github.com/MattEstHaut/RediSharp/internal/storage/memory"
	"github.com/MattEstHaut/RediSharp/internal/storage/snapshot"
)

// DefaultSaveInterval is the pause between two periodic saves.
const DefaultSaveInterval = 5 * time.Minute

// Config configures the storage engine.
type Config struct {
	// Path is the snapshot file. Empty means the engine is not linked to
	// a file: nothing is loaded and nothing is saved.
	Path string

	// SaveInterval is the pause between periodic saves of a linked engine.
	SaveInterval time.Duration

	// SweepInterval is passed to the memory store.
	SweepInterval time.Duration

	// OnSave, if set, is called after every save attempt.
	OnSave func(err error, size int64, elapsed time.Duration)

	// StoreOptions are extra options for the memory store.
	StoreOptions []memory.Option

	Logger *slog.Logger
}

// Engine owns the memory store and its snapshot file.
type Engine struct {
	cfg    Config
	store  *memory.Store
	snap   *snapshot.Manager
	logger *slog.Logger

	// saveMu serializes saves; they share the temp file.
	saveMu   sync.Mutex
	lastSave *snapshot.Info

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	closeMu sync.Mutex
	closed  bool
}

// Open creates the store, loads the snapshot at cfg.Path if one exists and
// starts the sweeper and, for a linked engine, the periodic save loop.
// A snapshot that exists but cannot be read or parsed is an error.
func Open(cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = DefaultSaveInterval
	}

	opts := []memory.Option{
		memory.WithSweepInterval(cfg.SweepInterval),
		memory.WithLogger(cfg.Logger),
	}
	opts = append(opts, cfg.StoreOptions...)

	e := &Engine{
		cfg:    cfg,
		store:  memory.New(opts...),
		logger: cfg.Logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if cfg.Path != "" {
		mgr, err := snapshot.NewManager(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		e.snap = mgr
		if err := e.load(); err != nil {
			return nil, err
		}
		go e.saveLoop()
	} else {
		close(e.doneCh)
		e.logger.Info("storage is in-memory only, snapshots disabled")
	}

	e.store.Start()
	return e, nil
}

func (e *Engine) load() error {
	start := time.Now()
	v, info, err := e.snap.Load()
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		e.logger.Info("no snapshot found, starting with empty store", "path", e.snap.Path())
		return nil
	case err != nil:
		return fmt.Errorf("storage: load snapshot: %w", err)
	}

	if err := e.store.Restore(v); err != nil {
		return fmt.Errorf("storage: restore snapshot %s: %w", info.Path, err)
	}
	e.logger.Info("snapshot loaded",
		"path", info.Path,
		"keys", e.store.Count(),
		"size_bytes", info.Size,
		"elapsed", time.Since(start))
	return nil
}

// Store returns the memory store.
func (e *Engine) Store() *memory.Store {
	return e.store
}

// Linked reports whether the engine has a snapshot file.
func (e *Engine) Linked() bool {
	return e.snap != nil
}

// LastSave returns the last successful save, or nil.
func (e *Engine) LastSave() *snapshot.Info {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	return e.lastSave
}

// Save writes a snapshot now. It returns domain.ErrSnapshotNotLinked when
// the engine has no path.
func (e *Engine) Save(ctx context.Context) (*snapshot.Info, error) {
	if e.snap == nil {
		return nil, domain.ErrSnapshotNotLinked
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	start := time.Now()
	info, err := e.snap.Save(e.store.Snapshot())
	elapsed := time.Since(start)

	var size int64
	if info != nil {
		size = info.Size
	}
	if e.cfg.OnSave != nil {
		e.cfg.OnSave(err, size, elapsed)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: save snapshot: %w", err)
	}

	e.lastSave = info
	e.logger.Debug("snapshot saved",
		"path", info.Path,
		"size_bytes", info.Size,
		"checksum", info.Checksum,
		"elapsed", elapsed)
	return info, nil
}

func (e *Engine) saveLoop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.cfg.SaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// A failed save is retried on the next tick.
			if _, err := e.Save(context.Background()); err != nil {
				e.logger.Error("periodic snapshot failed", "error", err)
			}
		case <-e.stopCh:
			return
		}
	}
}

// Close stops the save loop and the sweeper, then saves one last time if
// the engine is linked. If ctx ends or the final save fails, Close returns
// the error and may be called again to retry the save. Once a Close
// succeeds, later calls return nil.
func (e *Engine) Close(ctx context.Context) error {
	e.stopOnce.Do(func() { close(e.stopCh) })

	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	if e.closed {
		return nil
	}

	select {
	case <-e.doneCh:
	case <-ctx.Done():
		e.store.Close()
		return fmt.Errorf("storage: close: %w", ctx.Err())
	}
	e.store.Close()

	if e.snap != nil {
		info, err := e.Save(ctx)
		if err != nil {
			e.logger.Error("final snapshot failed", "error", err)
			return err
		}
		e.logger.Info("final snapshot saved", "path", info.Path, "keys", e.store.Count())
	}
	e.closed = true
	return nil
}
