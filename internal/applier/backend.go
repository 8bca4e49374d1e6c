package applier

import (
	"path/filepath"

	"github.com/nicolagi/bookmarksync/internal/config"
	"github.com/nicolagi/bookmarksync/internal/itemsource"
	"github.com/nicolagi/bookmarksync/internal/storage"
	"github.com/pkg/errors"
)

// NewSides builds a Sides for one LOCAL/MIRROR/BUFFER table pair,
// choosing a concrete storage.Enumerable per backend the way cfg
// selected it (config.C.LocalBackend/MirrorBackend/BufferBackend):
// config validates the backend choice, NewSides is what actually acts
// on it. name disambiguates the side in diagnostics (passed through to
// itemsource.NewStoreSource) and, for BackendDisk, in the two
// subdirectories its value and structure tables are rooted at under
// cfg.DiskStoreDir.
func NewSides(cfg *config.C, backend config.Backend, name string) (Sides, error) {
	values, err := newStore(cfg, backend, name+"-values")
	if err != nil {
		return Sides{}, errors.Wrapf(err, "applier: building %s value store", name)
	}
	structure, err := newStore(cfg, backend, name+"-structure")
	if err != nil {
		return Sides{}, errors.Wrapf(err, "applier: building %s structure store", name)
	}
	return Sides{
		Values:    values,
		Structure: structure,
		Source:    itemsource.NewStoreSource(name, values),
	}, nil
}

// NewAllSides builds the three Sides a sync pass needs — LOCAL,
// MIRROR, BUFFER — reading the backend each one is assigned directly
// off cfg (config.C.LocalBackend, MirrorBackend, BufferBackend): this
// is the call site that actually acts on those fields, rather than
// leaving them as validated-but-unread configuration.
func NewAllSides(cfg *config.C) (local, mirror, buffer Sides, err error) {
	if local, err = NewSides(cfg, cfg.LocalBackend, "local"); err != nil {
		return Sides{}, Sides{}, Sides{}, err
	}
	if mirror, err = NewSides(cfg, cfg.MirrorBackend, "mirror"); err != nil {
		return Sides{}, Sides{}, Sides{}, err
	}
	if buffer, err = NewSides(cfg, cfg.BufferBackend, "buffer"); err != nil {
		return Sides{}, Sides{}, Sides{}, err
	}
	return local, mirror, buffer, nil
}

func newStore(cfg *config.C, backend config.Backend, subdir string) (storage.Enumerable, error) {
	switch backend {
	case config.BackendMemory, "":
		return storage.NewInMemory(), nil
	case config.BackendDisk:
		return storage.NewDiskStore(filepath.Join(cfg.DiskStoreDir, subdir)), nil
	case config.BackendS3:
		return storage.NewS3Store(cfg.S3Region, cfg.S3Bucket, cfg.S3Profile)
	default:
		return nil, errors.Errorf("applier: unknown backend %q", backend)
	}
}
