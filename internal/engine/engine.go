// Package engine provides the core database engine implementation for the
// Ignite storage system.
//
// The engine is the coordinating facade over two subsystems: storage,
// which owns the active file, the key directory, and the append/get/
// delete path, and merge, which runs compaction passes over storage's
// data directory on request. The engine implements a thread-safe
// interface with proper lifecycle management, using atomic operations
// for state management so Close is safe to call exactly once from any
// goroutine.
package engine

import (
	"errors"
	"sync/atomic"

	"github.com/iamNilotpal/ignite/internal/merge"
	"github.com/iamNilotpal/ignite/internal/storage"
	"github.com/iamNilotpal/ignite/pkg/options"
	"go.uber.org/zap"
)

// ErrEngineClosed is returned when attempting to perform operations on a
// closed engine.
var ErrEngineClosed = errors.New("operation failed: cannot access closed engine")

// Engine coordinates storage and merge, and is the type pkg/ignite's
// public Instance delegates every operation to.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	storage *storage.Storage
	merge   *merge.Worker
}

// Config holds all the parameters needed to initialize a new Engine
// instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New creates and initializes a new Engine instance with the provided
// configuration: it brings up storage (which rebuilds the key directory
// from disk) and wires a merge worker against it using the configured
// flush threshold.
func New(cfg Config) (*Engine, error) {
	st, err := storage.New(storage.Config{Options: cfg.Options, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}

	worker := merge.New(st, cfg.Options.FileSizeThreshold, cfg.Logger)

	return &Engine{
		options: cfg.Options,
		log:     cfg.Logger,
		storage: st,
		merge:   worker,
	}, nil
}

// Append stores key/value, triggering active-file rollover first if the
// write would exceed the configured size threshold.
func (e *Engine) Append(key string, value []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.storage.Append(key, value)
}

// Get retrieves the value stored for key. The bool result reports
// presence: a miss is not an error.
func (e *Engine) Get(key string) ([]byte, bool, error) {
	if e.closed.Load() {
		return nil, false, ErrEngineClosed
	}
	return e.storage.Get(key)
}

// Delete marks key as removed by appending a tombstone record.
func (e *Engine) Delete(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.storage.Delete(key)
}

// Merge runs one compaction pass, returning the paths of every merged
// data file it wrote.
func (e *Engine) Merge() ([]string, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	return e.merge.DoMerge()
}

// Close gracefully shuts down the engine, closing the active file handle.
// Calling Close more than once returns ErrEngineClosed.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}
	return e.storage.Close()
}
