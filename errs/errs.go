// Package errs defines the sentinel error values returned by tamar's
// registry and codec packages.
//
// Callers are expected to use errors.Is against these sentinels; the
// codec and registry packages wrap them with context using fmt.Errorf
// and "%w" so the original sentinel survives unwrapping.
package errs

import "errors"

var (
	// ErrParameter is returned for null/empty inputs, or when a
	// destination buffer is too small to hold the next write.
	ErrParameter = errors.New("tamar: parameter error")

	// ErrUnknownDataset is returned when a ComId or a nested
	// dataset-reference cannot be resolved in the registry.
	ErrUnknownDataset = errors.New("tamar: unknown dataset")

	// ErrState is returned when the recursion depth cap is exceeded.
	ErrState = errors.New("tamar: state error")

	// ErrMarshalling is returned when a decode or size walk overshoots
	// the declared wire length.
	ErrMarshalling = errors.New("tamar: marshalling error")

	// ErrInvalidSchema is returned by registry.New and config.Parse when
	// the supplied configuration violates a data-model invariant (duplicate id,
	// negative count, ill-formed variable-length capture, ...).
	ErrInvalidSchema = errors.New("tamar: invalid schema")
)
