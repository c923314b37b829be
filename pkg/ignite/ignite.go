// Package ignite provides a high-performance key/value data store
// designed for fast read and write operations, inspired by Bitcask.
// It combines an in-memory hash table (KeyDir/Index) with an append-only log
// structure on disk to achieve high throughput. It is designed for applications
// requiring fast read and write operations, such as caching, session management,
// and real-time data processing, aiming to provide a simple, efficient, and
// reliable solution for in-memory data storage in Go applications.
package ignite

import (
	"context"
	"time"

	"github.com/iamNilotpal/ignite/internal/engine"
	"github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/iamNilotpal/ignite/pkg/options"
)

// Represents an instance of the Ignite key/value data store.
// It encapsulates the core engine responsible for data handling and
// the configuration options for this specific database instance.
//
// Instance is the primary entry point for interacting with the Ignite store,
// providing methods for setting, getting, and deleting key-value pairs.
type Instance struct {
	engine  *engine.Engine   // The underlying database engine handling read/write operations.
	options *options.Options // Configuration options applied to this DB instance.
}

// Creates and initializes a new Ignite DB instance.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	// Initialize a logger for the given service.
	log := logger.New(service)

	// Initialize default options.
	defaultOpts := options.NewDefaultOptions()

	// Apply any provided functional options to override defaults.
	if len(opts) > 0 {
		for _, opt := range opts {
			opt(&defaultOpts)
		}
	}

	// Create a new internal engine with the initialized logger.
	eng, err := engine.New(engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// Set stores a key-value pair in the database.
// If the key already exists, its value will be updated.
// The operation is durable and will be written to the append-only log.
func (i *Instance) Set(ctx context.Context, key string, value []byte) error {
	return i.engine.Append(key, value)
}

// SetX stores a key-value pair with an expiration time. Ignite's record
// format carries no expiry field, so this cannot be implemented without
// changing the on-disk format; it returns a validation error rather than
// silently accepting and discarding the expiry.
func (i *Instance) SetX(ctx context.Context, key string, value []byte, expiry time.Duration) error {
	return errors.NewValidationError(
		nil, errors.ErrorCodeInvalidInput, "TTL is not supported by this storage format",
	).WithField("expiry").WithRule("unsupported").WithProvided(expiry)
}

// Get retrieves the value associated with the given key. The bool result
// reports presence: a miss returns (nil, false, nil), not an error.
func (i *Instance) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return i.engine.Get(key)
}

// Delete removes a key-value pair from the database.
// The operation marks the key as deleted and will eventually be
// removed during compaction.
func (i *Instance) Delete(ctx context.Context, key string) error {
	return i.engine.Delete(key)
}

// Merge runs one compaction pass over the store's data directory,
// collapsing immutable files down to their keys' current values and
// returning the paths of every merged data file it wrote.
func (i *Instance) Merge(ctx context.Context) ([]string, error) {
	return i.engine.Merge()
}

// Close gracefully shuts down the Ignite DB instance, releasing all
// associated resources and closing open file handles in the engine.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
