package options

const (
	// DefaultDataDir is the directory Ignite uses when none is configured.
	DefaultDataDir = "./datafiles/default"

	// MinFileSize is the smallest active-file rollover threshold accepted
	// by WithMaxFileSize. It exists to keep pathologically small values
	// (which would roll over on nearly every write) from being configured
	// by accident.
	MinFileSize int64 = 64

	// MaxFileSize is the largest active-file rollover threshold accepted
	// by WithMaxFileSize.
	MaxFileSize int64 = 4 * 1024 * 1024 * 1024

	// DefaultMaxFileSize is the active-file rollover threshold used when
	// none is configured. It is intentionally test-sized, matching the
	// reference implementation this store is grounded on.
	DefaultMaxFileSize int64 = 150

	// DefaultFileSizeThreshold is the merge worker's flush watermark used
	// when none is configured.
	DefaultFileSizeThreshold int64 = 1000
)

// defaultOptions holds the default configuration for an Ignite instance.
var defaultOptions = Options{
	DataDir:           DefaultDataDir,
	MaxFileSize:       DefaultMaxFileSize,
	FileSizeThreshold: DefaultFileSizeThreshold,
}

// NewDefaultOptions returns a copy of the default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
