// Package seginfo names the timestamped files Ignite's storage and merge
// subsystems create: immutable data files sealed by rollover and merged
// data/hint file pairs produced by compaction. The teacher's sequential,
// zero-padded segment-ID naming scheme (prefix_NNNNN_timestamp.seg) does
// not fit this store's taxonomy, since merge output paths aren't known
// ahead of time the way sequential IDs are; this package keeps the
// teacher's role (shared filename generation for disk-resident files) but
// generates microsecond-timestamped names of the form described in the
// data directory layout instead.
package seginfo

import (
	"fmt"
	"time"
)

// DataExt and HintExt are the file extensions for unmerged/merged data
// files and their paired hint files, respectively.
const (
	DataExt = ".data"
	HintExt = ".hint"
)

// NewDataName returns a timestamped data filename with prefix (empty for
// an immutable rollover file, "merged-" for a merge worker's output).
func NewDataName(prefix string) string {
	return fmt.Sprintf("%s%d%s", prefix, time.Now().UnixMicro(), DataExt)
}

// HintNameFor returns the hint filename paired with a data filename
// produced by NewDataName, replacing its extension.
func HintNameFor(dataName string) string {
	return fmt.Sprintf("%s%s", dataName[:len(dataName)-len(DataExt)], HintExt)
}
