// Package tamar provides a high-performance, space-efficient codec for
// marshalling in-memory application structures to and from the
// densely packed, big-endian wire form used by train-network
// real-time data protocols (spec §1).
//
// # Core Features
//
//   - Configuration-driven Dataset registry: ComIds are resolved by
//     binary search over a sorted table, DatasetIds through an index
//     built once at Init (not by binary search)
//   - Recursive, depth-capped encode/decode walk over nested Datasets
//   - Variable-length arrays sized from a preceding small-integer field
//   - A size estimator so callers can allocate the right host buffer
//     before decoding
//
// # Basic Usage
//
//	reg, err := tamar.Init(comEntries, datasets)
//	...
//	res, err := tamar.Encode(reg, comID, hostBytes, wireBuf, nil)
//	...
//	n, err := tamar.SizeForComId(reg, comID, wireBytes, nil)
//	hostBuf := make([]byte, n)
//	res, err = tamar.Decode(reg, comID, wireBytes, hostBuf, nil)
//
// EncodeDs, DecodeDs and SizeForDatasetId key directly by DatasetId;
// Encode, Decode and SizeForComId accept an optional dataset-pointer
// cache slot that can be reused across calls. To key by an already
// resolved *Dataset, use the codec package directly.
package tamar

import (
	"github.com/railtwin/tamar/codec"
	"github.com/railtwin/tamar/dataset"
	"github.com/railtwin/tamar/registry"
)

// Re-exported types so most callers need only import this package.
type (
	Dataset     = dataset.Dataset
	Element     = dataset.Element
	ComEntry    = dataset.ComEntry
	Cache       = dataset.Cache
	Registry    = registry.Registry
	RegistryOpt = registry.Option
	Result      = codec.Result
	Warning     = codec.Warning
)

const (
	// VarLength is the declared-count sentinel marking a
	// variable-length element (spec §3).
	VarLength = dataset.VarLength
	// DefaultMaxDepth is the recursion-depth cap enforced unless a
	// Registry is built with registry.WithMaxDepth (spec §4.6/§4.7).
	DefaultMaxDepth = registry.DefaultMaxDepth
)

// Init installs the ComId→DatasetId map and Dataset table as a new
// Registry (spec §6 item 1). It sorts both tables, resolves and caches
// every dataset-reference element, and rejects a malformed schema —
// see registry.New for the full contract.
func Init(comEntries []ComEntry, datasets []*Dataset, opts ...RegistryOpt) (*Registry, error) {
	return registry.New(comEntries, datasets, opts...)
}

// Encode marshals hostIn into wireOut for the Dataset registered under
// comID (spec §6 item 2).
func Encode(reg *Registry, comID uint32, hostIn, wireOut []byte, cache *Cache) (Result, error) {
	return codec.Encode(reg, comID, hostIn, wireOut, cache)
}

// EncodeDs is Encode keyed directly by DatasetId (spec §6 item 4).
func EncodeDs(reg *Registry, datasetID uint32, hostIn, wireOut []byte) (Result, error) {
	d, ok := reg.DatasetByID(datasetID)
	if !ok {
		return Result{}, unknownDatasetErr(datasetID)
	}

	return codec.EncodeDs(reg, d, hostIn, wireOut)
}

// Decode unmarshals wireIn into hostOut for the Dataset registered
// under comID (spec §6 item 3).
func Decode(reg *Registry, comID uint32, wireIn, hostOut []byte, cache *Cache) (Result, error) {
	return codec.Decode(reg, comID, wireIn, hostOut, cache)
}

// DecodeDs is Decode keyed directly by DatasetId (spec §6 item 4).
func DecodeDs(reg *Registry, datasetID uint32, wireIn, hostOut []byte) (Result, error) {
	d, ok := reg.DatasetByID(datasetID)
	if !ok {
		return Result{}, unknownDatasetErr(datasetID)
	}

	return codec.DecodeDs(reg, d, wireIn, hostOut)
}

// SizeForComId computes the host buffer size decoding wireIn for the
// Dataset registered under comID would require (spec §6 item 5,
// §4.8).
func SizeForComId(reg *Registry, comID uint32, wireIn []byte, cache *Cache) (int, error) {
	return codec.Size(reg, comID, wireIn, cache)
}

// SizeForDatasetId is SizeForComId keyed directly by DatasetId.
func SizeForDatasetId(reg *Registry, datasetID uint32, wireIn []byte) (int, error) {
	d, ok := reg.DatasetByID(datasetID)
	if !ok {
		return 0, unknownDatasetErr(datasetID)
	}

	return codec.SizeDs(reg, d, wireIn)
}
