package config

import (
	"time"

	"github.com/pkg/errors"
)

// Backend names a storage.Store implementation a row table may be
// backed by (§9 DOMAIN STACK "internal/storage").
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendDisk   Backend = "disk"
	BackendS3     Backend = "s3"
)

const (
	defaultBatchSize      = 64
	defaultPrefetchBudget = 2 * time.Second
)

// C is the applier's tunable configuration. Zero value is never valid;
// always construct via New.
type C struct {
	// BatchSize bounds how many GUIDs a single itemsource.Source.GetBatch
	// call resolves at once.
	BatchSize int

	// PrefetchBudget is a soft time budget hint for prefetching. It is
	// stored here, but nothing in this module reads it;
	// itemsource.Source.Prefetch takes no budget.
	PrefetchBudget time.Duration

	// FaviconCacheDir names a local directory for favicon bytes. It is
	// stored here, but nothing in this module reads it or caches
	// favicons.
	FaviconCacheDir string

	LocalBackend, MirrorBackend, BufferBackend Backend

	// DiskStoreDir is the base directory for any side configured with
	// BackendDisk.
	DiskStoreDir string

	// S3Region, S3Bucket, S3Profile configure any side configured with
	// BackendS3; see storage.NewS3Store.
	S3Region, S3Bucket, S3Profile string
}

// Option mutates a C under construction, in the style of the teacher's
// tree.TreeOption: a closure over the value being built, returning an
// error so a single failing option aborts New cleanly.
type Option func(*C) error

// New constructs a C from sensible defaults plus the given options.
// The zero-option default is all-in-memory, so New() alone is always
// valid (handy for tests and first-run bootstrapping); a long-running
// embedder opts into WithMirrorBackend(BackendDisk) plus
// WithDiskStoreDir once it has somewhere durable to point at, since
// MIRROR is the one table worth caching across process restarts.
func New(opts ...Option) (*C, error) {
	c := &C{
		BatchSize:      defaultBatchSize,
		PrefetchBudget: defaultPrefetchBudget,
		LocalBackend:   BackendMemory,
		MirrorBackend:  BackendMemory,
		BufferBackend:  BackendMemory,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.BatchSize <= 0 {
		return nil, errors.Wrapf(ErrInvalid, "batch size must be positive, got %d", c.BatchSize)
	}
	for _, b := range []Backend{c.LocalBackend, c.MirrorBackend, c.BufferBackend} {
		if b == BackendDisk && c.DiskStoreDir == "" {
			return nil, errors.Wrapf(ErrInvalid, "disk backend selected with no DiskStoreDir")
		}
		if b == BackendS3 && c.S3Bucket == "" {
			return nil, errors.Wrapf(ErrInvalid, "s3 backend selected with no S3Bucket")
		}
	}
	return c, nil
}

// WithBatchSize overrides the default getBatch batch size.
func WithBatchSize(n int) Option {
	return func(c *C) error {
		c.BatchSize = n
		return nil
	}
}

// WithPrefetchBudget overrides the default prefetch time budget hint.
func WithPrefetchBudget(d time.Duration) Option {
	return func(c *C) error {
		c.PrefetchBudget = d
		return nil
	}
}

// WithFaviconCacheDir sets the local favicon cache directory.
func WithFaviconCacheDir(dir string) Option {
	return func(c *C) error {
		c.FaviconCacheDir = dir
		return nil
	}
}

// WithLocalBackend selects the Backend for the LOCAL row tables.
func WithLocalBackend(b Backend) Option {
	return func(c *C) error {
		c.LocalBackend = b
		return nil
	}
}

// WithMirrorBackend selects the Backend for the MIRROR row tables.
func WithMirrorBackend(b Backend) Option {
	return func(c *C) error {
		c.MirrorBackend = b
		return nil
	}
}

// WithBufferBackend selects the Backend for the BUFFER row tables.
func WithBufferBackend(b Backend) Option {
	return func(c *C) error {
		c.BufferBackend = b
		return nil
	}
}

// WithDiskStoreDir sets the base directory for any side using
// BackendDisk.
func WithDiskStoreDir(dir string) Option {
	return func(c *C) error {
		c.DiskStoreDir = dir
		return nil
	}
}

// WithS3 configures the bucket, region and shared-credentials profile
// for any side using BackendS3.
func WithS3(region, bucket, profile string) Option {
	return func(c *C) error {
		c.S3Region, c.S3Bucket, c.S3Profile = region, bucket, profile
		return nil
	}
}
