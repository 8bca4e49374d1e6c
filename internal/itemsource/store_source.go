package itemsource

import (
	"context"

	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/storage"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds how many in-flight Get calls a StoreSource
// issues against its backing store at once, mirroring the semaphore
// size the teacher's Tree.grow uses to bound concurrent child loads.
const maxConcurrentFetches = 8

// StoreSource adapts an internal/storage.Store into a Source, batching
// GetBatch and Prefetch calls with bounded parallelism so a slow
// backend (S3, or a Paired store missing its fast-store entries) does
// not serialize the merge walk's lookups.
type StoreSource struct {
	name  string
	store storage.Store
}

// NewStoreSource wraps store as a Source. name is used only in log
// fields, to tell LOCAL/MIRROR/BUFFER apart in diagnostics.
func NewStoreSource(name string, store storage.Store) *StoreSource {
	return &StoreSource{name: name, store: store}
}

var _ Source = (*StoreSource)(nil)

func (s *StoreSource) Get(g guid.GUID) (*record.Record, error) {
	v, err := s.store.Get(storage.Key(g))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "%s: get %s", s.name, g)
	}
	return decode(v)
}

func (s *StoreSource) GetBatch(guids []guid.GUID) (map[guid.GUID]*record.Record, error) {
	type result struct {
		g guid.GUID
		r *record.Record
	}
	results := make(chan result, len(guids))
	g, _ := errgroup.WithContext(context.Background())
	sem := make(chan struct{}, maxConcurrentFetches)
	for _, id := range guids {
		id := id
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			r, err := s.Get(id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			results <- result{g: id, r: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)
	out := make(map[guid.GUID]*record.Record, len(guids))
	for res := range results {
		out[res.g] = res.r
	}
	return out, nil
}

// Prefetch warms the backing store's cache (meaningful for a Paired
// store, where it causes slow-store hits to be copied into the fast
// store ahead of time) for the given GUIDs. Misses are not an error:
// prefetch is a latency hint, not a correctness dependency.
func (s *StoreSource) Prefetch(guids []guid.GUID) error {
	g, _ := errgroup.WithContext(context.Background())
	sem := make(chan struct{}, maxConcurrentFetches)
	for _, id := range guids {
		id := id
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			if _, err := s.store.Get(storage.Key(id)); err != nil && !errors.Is(err, storage.ErrNotFound) {
				log.WithFields(log.Fields{
					"source": s.name,
					"guid":   id,
					"cause":  err.Error(),
				}).Warning("prefetch could not warm cache for guid")
			}
			return nil
		})
	}
	return g.Wait()
}
