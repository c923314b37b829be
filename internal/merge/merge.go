// Package merge implements Ignite's compaction pass: folding a directory's
// immutable data files down into fewer, smaller files that hold only each
// key's current value, plus a paired hint file that lets the key directory
// be rebuilt without replaying full records.
//
// Grounded on the reference merge worker's do_merge/_merge_files/
// _create_merge_file shape: walk mergeable files oldest to newest, keep a
// running "latest value per key" map, and flush it to a new merged file
// whenever its projected encoded size reaches a threshold (or input runs
// out). The teacher's engine declares a dependency on a compaction
// subsystem but never implements one; this package is that missing piece,
// a struct with an injected logger field like the rest of the teacher
// lineage, constructed directly from its storage, threshold and logger.
package merge

import (
	"path/filepath"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/internal/storage"
	"github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/filesys"
	"github.com/iamNilotpal/ignite/pkg/seginfo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Worker drives one-shot merge passes over a Storage's data directory.
type Worker struct {
	storage   *storage.Storage
	threshold int64
	log       *zap.SugaredLogger
}

// New creates a Worker that merges files in s's directory, flushing a new
// merged file whenever the in-flight batch's projected encoded size
// reaches threshold bytes.
func New(s *storage.Storage, threshold int64, log *zap.SugaredLogger) *Worker {
	return &Worker{storage: s, threshold: threshold, log: log}
}

// DoMerge runs one merge pass and returns the paths of every merged data
// file it wrote. It is synchronous: callers that want merge off the
// critical append/get/delete path must run it in their own goroutine and
// serialize it themselves, since it reads and writes the same index the
// storage engine's append path updates.
func (w *Worker) DoMerge() ([]string, error) {
	infos, err := segment.List(w.storage.Dir())
	if err != nil {
		return nil, err
	}

	var mergeable []segment.Info
	for _, info := range infos {
		if info.Kind == segment.KindUnmergedData || info.Kind == segment.KindMergedData {
			mergeable = append(mergeable, info)
		}
	}
	if len(mergeable) == 0 {
		w.log.Infow("merge skipped, nothing to merge", "dir", w.storage.Dir())
		return nil, nil
	}

	var mergedPaths []string
	latest := make(map[string]record.Record)
	var pending []segment.Info

	flush := func() error {
		if len(latest) == 0 {
			pending = nil
			return nil
		}

		path, err := w.flushBatch(latest, pending)
		if err != nil {
			return err
		}
		mergedPaths = append(mergedPaths, path)

		latest = make(map[string]record.Record)
		pending = nil
		return nil
	}

	for _, info := range mergeable {
		if err := w.foldFile(info, latest); err != nil {
			return mergedPaths, err
		}
		pending = append(pending, info)

		if projectedSize(latest) >= w.threshold {
			if err := flush(); err != nil {
				return mergedPaths, err
			}
		}
	}
	if err := flush(); err != nil {
		return mergedPaths, err
	}

	w.log.Infow("merge pass complete", "inputFiles", len(mergeable), "mergedFiles", len(mergedPaths))
	return mergedPaths, nil
}

// foldFile replays one mergeable file's records into latest, oldest
// records first within the file, so the last value written for a key
// within the whole merge window is the one that survives.
func (w *Worker) foldFile(info segment.Info, latest map[string]record.Record) error {
	f, err := segment.OpenReadable(info.Path)
	if err != nil {
		return err
	}

	var iterErr error
	for rec, err := range f.Iterate() {
		if err != nil {
			iterErr = err
			break
		}
		latest[rec.Key] = rec
	}

	if closeErr := f.Close(); closeErr != nil && iterErr == nil {
		iterErr = closeErr
	}
	return iterErr
}

// projectedSize estimates the on-disk size of a merged file holding
// latest's current contents, used to decide when to flush.
func projectedSize(latest map[string]record.Record) int64 {
	var total int64
	for _, rec := range latest {
		total += int64(rec.Size())
	}
	return total
}

// flushBatch writes latest's non-tombstone entries to a new merged data
// file and its paired hint file, repoints index entries that still point
// at one of the files being merged away, and unlinks those input files
// (and any hint file paired with an input that was itself a merged file).
// It returns the new merged data file's path.
func (w *Worker) flushBatch(latest map[string]record.Record, pending []segment.Info) (string, error) {
	dataName := seginfo.NewDataName(segment.MergedPrefix)
	dataPath := filepath.Join(w.storage.Dir(), dataName)
	hintPath := filepath.Join(w.storage.Dir(), seginfo.HintNameFor(dataName))

	dataFile, err := segment.OpenWritable(dataPath)
	if err != nil {
		return "", err
	}
	hintFile, err := segment.OpenWritable(hintPath)
	if err != nil {
		dataFile.Close()
		return "", err
	}

	positions := make(map[string]int64, len(latest))
	for key, rec := range latest {
		if rec.Tombstone() {
			continue
		}

		valuePosition, err := dataFile.Append(rec)
		if err != nil {
			dataFile.Close()
			hintFile.Close()
			return "", err
		}
		positions[key] = valuePosition

		if err := hintFile.AppendHint(record.HintEntry{
			Timestamp:     rec.Timestamp,
			Key:           key,
			ValueSize:     int64(len(rec.Value)),
			ValuePosition: valuePosition,
		}); err != nil {
			dataFile.Close()
			hintFile.Close()
			return "", err
		}
	}

	if err := dataFile.Close(); err != nil {
		hintFile.Close()
		return "", err
	}
	if err := hintFile.Close(); err != nil {
		return "", err
	}

	w.repointIndex(latest, positions, dataPath, pending)

	if err := w.removeInputs(pending); err != nil {
		return "", err
	}

	w.log.Infow("flushed merged file", "path", dataPath, "keys", len(positions), "inputFiles", len(pending))
	return dataPath, nil
}

// repointIndex updates, for every non-tombstone key in this batch, the
// live index entry to point at the freshly merged file — but only when
// the index's current entry for that key still points at one of the
// files being merged away. A path-based check rather than a
// timestamp-based one: record timestamps carry only one-second
// resolution, so a timestamp comparison can't safely distinguish a
// pre-merge entry from a write that landed on the active file during the
// same second the merge ran.
func (w *Worker) repointIndex(latest map[string]record.Record, positions map[string]int64, dataPath string, pending []segment.Info) {
	beingMerged := make(map[string]bool, len(pending))
	for _, info := range pending {
		beingMerged[info.Path] = true
	}

	idx := w.storage.Index()
	for key, rec := range latest {
		if rec.Tombstone() {
			continue
		}

		entry, ok := idx.Get(key)
		if !ok || !beingMerged[entry.FilePath] {
			continue
		}

		idx.Update(key, index.Entry{
			FilePath:      dataPath,
			ValuePosition: positions[key],
			ValueSize:     int64(len(rec.Value)),
			Timestamp:     rec.Timestamp,
		})
	}
}

// removeInputs unlinks every file that was folded into this batch's
// output. When an input was itself a previously merged file, its paired
// hint file is orphaned by this re-merge and is deleted alongside it.
func (w *Worker) removeInputs(pending []segment.Info) error {
	var errs error
	for _, info := range pending {
		if err := discardPath(info.Path); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		if info.Kind == segment.KindMergedData {
			hintPath := info.HintFilePath()
			if exists, err := filesys.Exists(hintPath); err == nil && exists {
				if err := discardPath(hintPath); err != nil {
					errs = multierr.Append(errs, err)
				}
			}
		}
	}
	return errs
}

// discardPath unlinks a single data or hint file, wrapping the underlying
// error with the same storage-error context segment.File.Discard uses.
func discardPath(path string) error {
	if err := filesys.DeleteFile(path); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to discard merge input file").
			WithPath(path)
	}
	return nil
}
