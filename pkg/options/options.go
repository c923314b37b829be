// Package options provides data structures and functions for configuring
// the Ignite database. It defines the parameters that control Ignite's
// storage behavior and maintenance operations: the data directory, the
// active-file rollover threshold, and the merge worker's flush watermark.
package options

import "strings"

// Options holds the configuration parameters for an Ignite instance.
type Options struct {
	// DataDir is the directory that holds active.data, immutable data
	// files, and merged data/hint file pairs.
	//
	// Default: "./datafiles/default"
	DataDir string `json:"dataDir"`

	// MaxFileSize is the rollover threshold, in bytes, for the active
	// file. A write that would push the active file past this size
	// triggers rollover (sealing it as an immutable file) before the
	// write is applied.
	//
	// Default: 150
	MaxFileSize int64 `json:"maxFileSize"`

	// FileSizeThreshold is the merge worker's flush watermark, in bytes.
	// It is advisory: a merged file may exceed it by up to one input
	// file's worth of collapsed data.
	//
	// Default: 1000
	FileSizeThreshold int64 `json:"fileSizeThreshold"`
}

// OptionFunc is a function that modifies an Options value.
type OptionFunc func(*Options)

// WithDefaultOptions resets every field to its default value.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		defaults := NewDefaultOptions()
		o.DataDir = defaults.DataDir
		o.MaxFileSize = defaults.MaxFileSize
		o.FileSizeThreshold = defaults.FileSizeThreshold
	}
}

// WithDataDir sets the directory Ignite stores its data files in.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithMaxFileSize sets the active-file rollover threshold, in bytes.
func WithMaxFileSize(size int64) OptionFunc {
	return func(o *Options) {
		if size >= MinFileSize && size <= MaxFileSize {
			o.MaxFileSize = size
		}
	}
}

// WithFileSizeThreshold sets the merge worker's flush watermark, in bytes.
func WithFileSizeThreshold(size int64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.FileSizeThreshold = size
		}
	}
}
