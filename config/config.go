// Package config loads a tamar schema (ComId map plus Dataset table)
// from a TOML description, the sample CLI's stand-in for the original
// C header's static array literals.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/railtwin/tamar/dataset"
	"github.com/railtwin/tamar/errs"
	"github.com/railtwin/tamar/ptype"
	"github.com/railtwin/tamar/registry"
)

// varLengthCount is the TOML-side spelling of the variable-length
// sentinel; negative counts otherwise have no meaning.
const varLengthCount = -1

// File is the on-disk TOML shape: a flat ComId map and a flat list of
// Datasets, each carrying its own ordered Elements.
type File struct {
	ComEntries []ComEntry `toml:"com_entries"`
	Datasets   []Dataset  `toml:"datasets"`
}

// ComEntry mirrors dataset.ComEntry for TOML decoding.
type ComEntry struct {
	ComID     uint32 `toml:"com_id"`
	DatasetID uint32 `toml:"dataset_id"`
}

// Dataset mirrors dataset.Dataset for TOML decoding.
type Dataset struct {
	ID       uint32    `toml:"id"`
	Elements []Element `toml:"elements"`
}

// Element mirrors dataset.Element for TOML decoding. Kind is either
// "primitive" (Type/Count meaningful) or "ref" (RefDatasetID/Count
// meaningful). Count of -1 spells the variable-length sentinel.
type Element struct {
	Kind         string `toml:"kind"`
	Type         string `toml:"type,omitempty"`
	RefDatasetID uint32 `toml:"ref_dataset_id,omitempty"`
	Count        int64  `toml:"count"`
}

// typeNames maps a TOML type string to its ptype.Type tag.
var typeNames = map[string]ptype.Type{
	"BOOL8":      ptype.BOOL8,
	"CHAR8":      ptype.CHAR8,
	"INT8":       ptype.INT8,
	"UINT8":      ptype.UINT8,
	"UTF16":      ptype.UTF16,
	"INT16":      ptype.INT16,
	"UINT16":     ptype.UINT16,
	"INT32":      ptype.INT32,
	"UINT32":     ptype.UINT32,
	"REAL32":     ptype.REAL32,
	"TIMEDATE32": ptype.TIMEDATE32,
	"INT64":      ptype.INT64,
	"UINT64":     ptype.UINT64,
	"REAL64":     ptype.REAL64,
	"TIMEDATE48": ptype.TIMEDATE48,
	"TIMEDATE64": ptype.TIMEDATE64,
}

// LoadFile reads and parses a schema TOML file into a Registry.
func LoadFile(path string, opts ...registry.Option) (*registry.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", errs.ErrParameter, path, err)
	}

	return Parse(raw, opts...)
}

// Parse decodes raw TOML bytes into a Registry.
func Parse(raw []byte, opts ...registry.Option) (*registry.Registry, error) {
	var f File
	if err := toml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing schema: %v", errs.ErrInvalidSchema, err)
	}

	comEntries := make([]dataset.ComEntry, len(f.ComEntries))
	for i, ce := range f.ComEntries {
		comEntries[i] = dataset.ComEntry{ComID: ce.ComID, DatasetID: ce.DatasetID}
	}

	datasets := make([]*dataset.Dataset, len(f.Datasets))
	for i, d := range f.Datasets {
		converted, err := convertDataset(d)
		if err != nil {
			return nil, err
		}
		datasets[i] = converted
	}

	return registry.New(comEntries, datasets, opts...)
}

func convertDataset(d Dataset) (*dataset.Dataset, error) {
	elements := make([]dataset.Element, len(d.Elements))
	for i, el := range d.Elements {
		converted, err := convertElement(el)
		if err != nil {
			return nil, fmt.Errorf("dataset %d element %d: %w", d.ID, i, err)
		}
		elements[i] = converted
	}

	return &dataset.Dataset{ID: d.ID, Elements: elements}, nil
}

func convertElement(el Element) (dataset.Element, error) {
	if el.Count < 0 && el.Count != varLengthCount {
		return dataset.Element{}, fmt.Errorf("%w: negative count %d", errs.ErrInvalidSchema, el.Count)
	}

	count := uint32(el.Count)
	if el.Count == varLengthCount {
		count = dataset.VarLength
	}

	switch el.Kind {
	case "primitive":
		t, ok := typeNames[el.Type]
		if !ok {
			return dataset.Element{}, fmt.Errorf("%w: unknown primitive type %q", errs.ErrInvalidSchema, el.Type)
		}

		return dataset.Element{Kind: dataset.KindPrimitive, Type: t, Count: count}, nil
	case "ref":
		return dataset.Element{Kind: dataset.KindDatasetRef, RefDatasetID: el.RefDatasetID, Count: count}, nil
	default:
		return dataset.Element{}, fmt.Errorf("%w: unknown element kind %q", errs.ErrInvalidSchema, el.Kind)
	}
}
