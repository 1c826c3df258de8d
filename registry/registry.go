// Package registry holds the process-wide, immutable-after-init
// mapping from application ComIds to Datasets, and from DatasetIds to
// Datasets, per spec §4.1.
//
// The ComId table is sorted at Init time and queried by binary
// search, matching the original's sorted-array lookup rather than a
// hash map. DatasetId resolution — used on every nested-reference walk
// — goes through an index built once at Init instead.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/railtwin/tamar/dataset"
	"github.com/railtwin/tamar/errs"
	"github.com/railtwin/tamar/internal/hash"
	"github.com/railtwin/tamar/internal/options"
)

// DefaultMaxDepth is the recursion-depth cap spec §4.6/§4.7 mandates:
// a nested-dataset walk exceeding this depth fails with ErrState.
const DefaultMaxDepth = 5

// Registry is the process-wide, read-only-after-init table pair
// described in spec §3 "Registry". Construct with New; the zero value
// is not usable.
type Registry struct {
	comEntries []dataset.ComEntry   // sorted by ComID
	datasets   []*dataset.Dataset   // sorted by ID
	byID       map[uint32]int       // DatasetID -> index into datasets, built once at Init
	maxDepth   int
}

// Option configures a Registry at construction time.
type Option = options.Option[*Registry]

// WithMaxDepth overrides the recursion-depth cap (default
// DefaultMaxDepth). Intended for tests exercising the depth-violation
// path without building a physically 6-level-deep schema.
func WithMaxDepth(n int) Option {
	return options.NoError(func(r *Registry) {
		r.maxDepth = n
	})
}

// New builds a Registry from the caller-owned ComId map and Dataset
// list, per spec §4.1. Both inputs must be non-empty; every dataset
// must pass dataset.Validate; DatasetIds must be unique; every ComId
// must map to a DatasetId present in datasets.
//
// The caller must not mutate comEntries or datasets after New returns
// successfully; Registry takes ownership of (sorted copies of) both.
func New(comEntries []dataset.ComEntry, datasets []*dataset.Dataset, opts ...Option) (*Registry, error) {
	if len(comEntries) == 0 {
		return nil, fmt.Errorf("%w: empty ComId map", errs.ErrParameter)
	}
	if len(datasets) == 0 {
		return nil, fmt.Errorf("%w: empty dataset list", errs.ErrParameter)
	}

	r := &Registry{
		comEntries: append([]dataset.ComEntry(nil), comEntries...),
		datasets:   append([]*dataset.Dataset(nil), datasets...),
		byID:       make(map[uint32]int, len(datasets)),
		maxDepth:   DefaultMaxDepth,
	}

	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	for _, d := range r.datasets {
		if err := dataset.Validate(d); err != nil {
			return nil, err
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate dataset id %d", errs.ErrInvalidSchema, d.ID)
		}
		r.byID[d.ID] = 0 // placeholder, filled below after sort
	}

	sort.Slice(r.datasets, func(i, j int) bool { return r.datasets[i].ID < r.datasets[j].ID })
	for i, d := range r.datasets {
		r.byID[d.ID] = i
	}

	sort.Slice(r.comEntries, func(i, j int) bool { return r.comEntries[i].ComID < r.comEntries[j].ComID })

	seenCom := make(map[uint32]struct{}, len(r.comEntries))
	for _, ce := range r.comEntries {
		if ce.ComID == 0 {
			return nil, fmt.Errorf("%w: com id 0 is reserved", errs.ErrInvalidSchema)
		}
		if _, dup := seenCom[ce.ComID]; dup {
			return nil, fmt.Errorf("%w: duplicate com id %d", errs.ErrInvalidSchema, ce.ComID)
		}
		seenCom[ce.ComID] = struct{}{}

		if _, ok := r.byID[ce.DatasetID]; !ok {
			return nil, fmt.Errorf("%w: com id %d maps to unregistered dataset id %d",
				errs.ErrUnknownDataset, ce.ComID, ce.DatasetID)
		}
	}

	// Validate that every dataset-reference element eventually resolves
	// within the table, caching the resolution up front (spec §9
	// "Element-cache races": preferred implementation resolves every
	// reference during init, eliminating lazy writes entirely).
	for _, d := range r.datasets {
		for i := range d.Elements {
			el := &d.Elements[i]
			if el.Kind != dataset.KindDatasetRef {
				continue
			}
			nested, ok := r.DatasetByID(el.RefDatasetID)
			if !ok {
				return nil, fmt.Errorf("%w: dataset %d references unregistered dataset id %d",
					errs.ErrUnknownDataset, d.ID, el.RefDatasetID)
			}
			el.SetResolvedRef(nested)
		}
	}

	return r, nil
}

// MaxDepth returns the recursion-depth cap this Registry enforces.
func (r *Registry) MaxDepth() int {
	return r.maxDepth
}

// DatasetByComID resolves a ComId to its Dataset via binary search of
// the ComId table, then DatasetByID's index lookup of the mapped
// DatasetId (the Dataset table is not binary searched).
func (r *Registry) DatasetByComID(comID uint32) (*dataset.Dataset, bool) {
	i := sort.Search(len(r.comEntries), func(i int) bool { return r.comEntries[i].ComID >= comID })
	if i >= len(r.comEntries) || r.comEntries[i].ComID != comID {
		return nil, false
	}

	return r.DatasetByID(r.comEntries[i].DatasetID)
}

// DatasetByID resolves a DatasetId to its Dataset. The Dataset table
// is kept sorted by ID for Digest's deterministic ordering, but lookup
// itself goes through the byID index built once at Init. Its callers
// are every ComId lookup, New's up-front resolution of dataset
// references, and the codec's fallback for a reference whose element
// cache is still empty.
func (r *Registry) DatasetByID(id uint32) (*dataset.Dataset, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return nil, false
	}

	return r.datasets[idx], true
}

// Resolver returns a dataset.Resolver bound to this Registry, suitable
// for Dataset.StructAlign.
func (r *Registry) Resolver() dataset.Resolver {
	return r.DatasetByID
}

// Digest fingerprints the current ComId and Dataset tables, so a
// caller (e.g. the tamarctl watch command) can tell whether a reloaded
// schema differs from the previous one. It is computed from an
// already-built Registry, so it does not spare the caller the rebuild.
// It is not part of the marshalling contract.
func (r *Registry) Digest() uint64 {
	var b strings.Builder
	for _, ce := range r.comEntries {
		fmt.Fprintf(&b, "c%d:%d;", ce.ComID, ce.DatasetID)
	}
	for _, d := range r.datasets {
		fmt.Fprintf(&b, "d%d[", d.ID)
		for _, el := range d.Elements {
			fmt.Fprintf(&b, "%d,%d,%d,%d|", el.Kind, el.Type, el.RefDatasetID, el.Count)
		}
		b.WriteByte(']')
	}

	return hash.ID(b.String())
}
