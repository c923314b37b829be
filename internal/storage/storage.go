// Package storage implements the append-only storage engine at the heart
// of Ignite: the active-file append path, size-triggered rollover, and the
// point reads and deletes that round-trip through the in-memory key
// directory (internal/index).
//
// The storage engine maintains exactly one active data file at any given
// time: active.data. All new writes append to it. Once a write would push
// it past MaxFileSize, the engine rolls it over — renames it to an
// immutable, timestamped path and opens a fresh active.data — before
// performing the write.
//
// Constructing a Storage always rebuilds the index from whatever hint and
// data files already exist in the directory (RebuildIndex), so an engine
// can resume exactly where a previous process left off, including healing
// the gap between a record that was flushed to disk and an index update
// that a crash may have prevented from happening.
package storage

import (
	stdErrors "errors"
	"path/filepath"
	"time"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/filesys"
	"github.com/iamNilotpal/ignite/pkg/seginfo"
	"go.uber.org/multierr"
)

// ErrStorageClosed is returned when attempting to perform operations on a
// closed Storage instance.
var ErrStorageClosed = stdErrors.New("operation failed: cannot access closed storage")

// New creates and initializes a Storage instance: it ensures the data
// directory exists, rebuilds the key directory from whatever hint and data
// files are already there, and opens (or creates) the active file.
func New(cfg Config) (*Storage, error) {
	if cfg.Options == nil || cfg.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "storage configuration is required",
		).WithField("config").WithRule("required")
	}

	cfg.Logger.Infow(
		"initializing storage engine",
		"dataDir", cfg.Options.DataDir,
		"maxFileSize", cfg.Options.MaxFileSize,
	)

	if err := filesys.CreateDir(cfg.Options.DataDir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, cfg.Options.DataDir)
	}

	s := &Storage{
		dir:         cfg.Options.DataDir,
		maxFileSize: cfg.Options.MaxFileSize,
		index:       index.New(cfg.Logger),
		log:         cfg.Logger,
		activePath:  filepath.Join(cfg.Options.DataDir, segment.ActiveFileName),
	}

	if err := s.RebuildIndex(); err != nil {
		return nil, err
	}

	active, err := segment.OpenWritable(s.activePath)
	if err != nil {
		return nil, err
	}
	s.active = active

	cfg.Logger.Infow("storage engine initialized", "activeFile", s.activePath, "indexedKeys", s.index.Len())
	return s, nil
}

// Dir returns the directory this Storage persists to.
func (s *Storage) Dir() string {
	return s.dir
}

// MaxFileSize returns the configured active-file rollover threshold.
func (s *Storage) MaxFileSize() int64 {
	return s.maxFileSize
}

// Index exposes the key directory so the merge worker can read and update
// it directly.
func (s *Storage) Index() *index.Index {
	return s.index
}

// Append builds a record with the current time as its timestamp, rolls the
// active file over first if the write would exceed MaxFileSize, writes the
// record, and only then updates the key directory. If the process crashes
// between the write and the index update, RebuildIndex heals the gap on
// next startup.
func (s *Storage) Append(key string, value []byte) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record.Record{Timestamp: time.Now().Unix(), Key: key, Value: value}

	valuePosition, err := s.appendAndGetPositionLocked(rec)
	if err != nil {
		return err
	}

	s.index.Update(rec.Key, index.Entry{
		FilePath:      s.activePath,
		ValuePosition: valuePosition,
		ValueSize:     int64(len(rec.Value)),
		Timestamp:     rec.Timestamp,
	})
	return nil
}

// Delete appends a tombstone record for key and removes it from the index.
// Subsequent Get calls report absence.
func (s *Storage) Delete(key string) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record.Record{Timestamp: time.Now().Unix(), Key: key, Value: nil}
	if _, err := s.appendAndGetPositionLocked(rec); err != nil {
		return err
	}
	s.index.Delete(key)
	return nil
}

// appendAndGetPositionLocked performs rollover-if-needed then the actual
// append, returning the absolute value offset. Callers must hold s.mu.
func (s *Storage) appendAndGetPositionLocked(rec record.Record) (int64, error) {
	size, err := s.active.Size()
	if err != nil {
		return 0, err
	}

	if size+int64(rec.Size()) > s.maxFileSize {
		if err := s.rolloverLocked(); err != nil {
			return 0, err
		}
	}

	return s.active.Append(rec)
}

// rolloverLocked seals the active file as immutable and opens a fresh one.
// Steps, in order: close the active handle, rename it to a
// microsecond-timestamped immutable path, rewrite index entries that
// pointed at the old path, then open a fresh active.data. Callers must
// hold s.mu.
func (s *Storage) rolloverLocked() error {
	immutablePath := filepath.Join(s.dir, seginfo.NewDataName(""))

	if err := s.active.RenameTo(immutablePath); err != nil {
		return err
	}
	s.index.UpdateFilePath(s.activePath, immutablePath)

	s.log.Infow("rolled over active file", "sealed", immutablePath, "newActive", s.activePath)

	active, err := segment.OpenWritable(s.activePath)
	if err != nil {
		return err
	}
	s.active = active
	return nil
}

// Get returns the value for key. The bool result reports presence: a
// miss is not an error.
func (s *Storage) Get(key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrStorageClosed
	}

	entry, ok := s.index.Get(key)
	if !ok {
		return nil, false, nil
	}

	value, err := segment.ReadRange(entry.FilePath, entry.ValuePosition, entry.ValuePosition+entry.ValueSize)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Clear unlinks every file in the storage directory, optionally removing
// the directory itself, then reopens a fresh active file and empties the
// index. Intended primarily for test hygiene.
func (s *Storage) Clear(deleteDirectory bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		if err := s.active.Close(); err != nil {
			return err
		}
	}

	infos, err := segment.List(s.dir)
	if err != nil {
		return err
	}

	var deleteErr error
	for _, info := range infos {
		if err := filesys.DeleteFile(info.Path); err != nil {
			deleteErr = multierr.Append(deleteErr, errors.NewStorageError(
				err, errors.ErrorCodeIO, "failed to delete data file",
			).WithPath(info.Path))
		}
	}
	if deleteErr != nil {
		return deleteErr
	}

	if deleteDirectory {
		if err := filesys.DeleteDir(s.dir); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to delete data directory").
				WithPath(s.dir)
		}
	}

	active, err := segment.OpenWritable(s.activePath)
	if err != nil {
		return err
	}
	s.active = active

	return s.index.Rebuild(nil, nil)
}

// RebuildIndex enumerates the storage directory, partitions files into
// hint files and data files to replay record-by-record, and rebuilds the
// key directory from them. It must be called at construction, and it is
// safe to call again later (for instance after a Clear) to re-synchronize
// the index with what is actually on disk.
//
// The active file is itself replayed as a data file alongside the sealed
// unmerged ones: any records appended before a crash or ordinary restart,
// before they were ever covered by a rollover, still need to surface on
// the next construction's Get calls.
func (s *Storage) RebuildIndex() error {
	infos, err := segment.List(s.dir)
	if err != nil {
		return err
	}

	var hints, dataFiles []segment.Info
	for _, info := range infos {
		switch info.Kind {
		case segment.KindHint:
			hints = append(hints, info)
		case segment.KindUnmergedData, segment.KindActive:
			dataFiles = append(dataFiles, info)
		}
	}

	return s.index.Rebuild(hints, dataFiles)
}

// Close closes the active file handle. Calling it more than once returns
// ErrStorageClosed.
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	return s.active.Close()
}
