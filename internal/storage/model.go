package storage

import (
	"sync"
	"sync/atomic"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/pkg/options"
	"go.uber.org/zap"
)

// Storage is the core file-based storage component responsible for managing
// data files and handling data persistence operations. It maintains the
// currently active data file and keeps the key directory (index) up to
// date with every write.
//
// The Storage struct encapsulates all the state needed to manage data files
// effectively: the active file handle, configuration options, a logger for
// observability, and the in-memory key directory.
type Storage struct {
	mu     sync.Mutex
	closed atomic.Bool

	dir         string           // Directory holding active.data, immutable files, and merged file/hint pairs.
	maxFileSize int64            // Rollover threshold for the active file, in bytes.
	active      *segment.File    // The currently active data file where new records are appended.
	activePath  string           // Path of the currently active data file.
	index       *index.Index     // In-memory key directory kept in lockstep with every append/delete.
	log         *zap.SugaredLogger
}

// Config encapsulates all the configuration parameters required to
// initialize a Storage instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}
