package index

import (
	"sync"

	"go.uber.org/zap"
)

// Entry contains the minimum metadata required to locate and retrieve a
// value from disk: which file holds it, where inside that file the value
// begins, how many bytes it occupies, and when it was written.
//
// Unlike the segment-numbered pointer this package started from, FilePath
// is a string rather than a compact numeric ID: merge output paths are not
// known ahead of time the way sequential segment IDs are, so the index
// must be able to address any file the storage engine or merge worker
// produces, not just a bounded set registered in advance.
type Entry struct {
	// FilePath is the data file that holds this entry's value.
	FilePath string

	// ValuePosition is the absolute byte offset of the value's first byte
	// within FilePath.
	ValuePosition int64

	// ValueSize is the byte length of the value.
	ValueSize int64

	// Timestamp is the Unix-seconds write time of the record this entry
	// points at. It is the authoritative tiebreaker during index rebuild
	// when the same key appears in more than one source file.
	Timestamp int64
}

// Index is the in-memory key directory: the map from key to the disk
// location of its currently authoritative value.
type Index struct {
	mu      sync.RWMutex
	entries map[string]Entry
	log     *zap.SugaredLogger
}

// New creates an empty Index ready for concurrent use.
func New(log *zap.SugaredLogger) *Index {
	return &Index{
		log:     log,
		entries: make(map[string]Entry, 1024),
	}
}
