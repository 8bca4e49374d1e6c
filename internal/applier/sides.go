package applier

import (
	"github.com/nicolagi/bookmarksync/internal/config"
	"github.com/nicolagi/bookmarksync/internal/guid"
	"github.com/nicolagi/bookmarksync/internal/itemsource"
	"github.com/nicolagi/bookmarksync/internal/record"
	"github.com/nicolagi/bookmarksync/internal/storage"
	"github.com/nicolagi/bookmarksync/internal/synctree"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Sides bundles the two row tables and the item source that back one
// of LOCAL, MIRROR or BUFFER (§6). Values and Structure are the raw
// storage.Enumerable tables; Source is the read contract the merger's
// design (§4.B) actually depends on. Both are needed here because
// item sources expose no enumeration by design — only Values.ForEach
// can answer "every GUID this side currently has".
type Sides struct {
	Values    storage.Enumerable
	Structure storage.Enumerable
	Source    itemsource.Source
}

// loadTree enumerates every GUID in s.Values, resolves them through
// s.Source in cfg.BatchSize-sized chunks (exercising the GetBatch
// contract the merger's sources are built around rather than decoding
// Values directly), loads the structure table via
// synctree.LoadStructureRows, and builds a BookmarkTree. A side with
// no rows at all yields the same tree synctree.EmptyTree() would:
// seeding MIRROR's canonical five-node skeleton on first sync is a
// storage bootstrap concern, not something the applier assumes here.
func loadTree(cfg *config.C, s Sides) (*synctree.BookmarkTree, error) {
	var ids []guid.GUID
	if err := s.Values.ForEach(func(k storage.Key) error {
		ids = append(ids, guid.GUID(k))
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "applier: enumerating value table")
	}

	if err := s.Source.Prefetch(ids); err != nil {
		log.WithFields(log.Fields{"cause": err.Error()}).Warn("applier: prefetch hint failed, continuing without it")
	}

	values := make([]*record.Record, 0, len(ids))
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(ids)
	}
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		resolved, err := s.Source.GetBatch(ids[start:end])
		if err != nil {
			return nil, errors.Wrap(err, "applier: resolving value rows")
		}
		for _, r := range resolved {
			values = append(values, r)
		}
	}

	structureRows, err := synctree.LoadStructureRows(s.Structure)
	if err != nil {
		return nil, errors.Wrap(err, "applier: loading structure rows")
	}

	tree, err := synctree.Build(structureRows, values)
	if err != nil {
		return nil, errors.Wrap(err, "applier: building tree")
	}
	return tree, nil
}
