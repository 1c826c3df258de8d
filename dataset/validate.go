package dataset

import (
	"fmt"

	"github.com/railtwin/tamar/errs"
)

// Validate checks the invariants spec §3 places on a single Dataset
// that can be checked without consulting the registry: a non-empty
// element list, and that every variable-length element is preceded by
// an unsigned small-integer element (spec §4.5, §9 Open Question).
//
// Cross-dataset invariants (duplicate ids, dataset-reference
// resolution) are the registry's responsibility, since they require
// the full table.
func Validate(d *Dataset) error {
	if d == nil {
		return fmt.Errorf("%w: nil dataset", errs.ErrInvalidSchema)
	}

	if d.ID == 0 {
		return fmt.Errorf("%w: dataset id 0 is reserved", errs.ErrInvalidSchema)
	}

	if len(d.Elements) == 0 {
		return fmt.Errorf("%w: dataset %d has no elements", errs.ErrInvalidSchema, d.ID)
	}

	var prev *Element
	for i := range d.Elements {
		el := &d.Elements[i]

		if el.Kind == KindPrimitive && !el.Type.IsValid() {
			return fmt.Errorf("%w: dataset %d element %d has invalid primitive type %d",
				errs.ErrInvalidSchema, d.ID, i, el.Type)
		}

		if el.Kind == KindDatasetRef && el.RefDatasetID == 0 {
			return fmt.Errorf("%w: dataset %d element %d references dataset id 0",
				errs.ErrInvalidSchema, d.ID, i)
		}

		if el.IsVarLength() {
			if i == 0 {
				return fmt.Errorf("%w: dataset %d element %d is variable-length with no preceding element",
					errs.ErrInvalidSchema, d.ID, i)
			}
			if prev == nil || prev.Kind != KindPrimitive || !prev.Type.IsUnsignedSmallInt() {
				return fmt.Errorf(
					"%w: dataset %d element %d is variable-length but is not preceded by an unsigned 1/2/4-byte element",
					errs.ErrInvalidSchema, d.ID, i)
			}
		}

		prev = el
	}

	return nil
}
