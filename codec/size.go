package codec

import (
	"fmt"

	"github.com/railtwin/tamar/dataset"
	"github.com/railtwin/tamar/errs"
	"github.com/railtwin/tamar/registry"
)

// Size computes the host byte length decoding wireIn for the Dataset
// registered under comID would produce, without writing any output —
// spec §4.8 / §6 item 5 ("sizeForComId"). Callers use this to size the
// destination buffer before calling Decode.
func Size(reg *registry.Registry, comID uint32, wireIn []byte, cache *dataset.Cache) (int, error) {
	d, err := resolveTopLevel(reg, comID, cache)
	if err != nil {
		return 0, err
	}

	return SizeDs(reg, d, wireIn)
}

// SizeDs is Size keyed directly by a resolved Dataset (spec §6 item 5,
// "sizeForDatasetId").
func SizeDs(reg *registry.Registry, d *dataset.Dataset, wireIn []byte) (int, error) {
	if reg == nil || d == nil {
		return 0, fmt.Errorf("%w: nil registry or dataset", errs.ErrParameter)
	}

	w := &sizeWalk{reg: reg, wire: wireIn}
	if err := w.walk(d, 0); err != nil {
		return w.hostPos, err
	}

	return w.hostPos, nil
}

type sizeWalk struct {
	reg     *registry.Registry
	wire    []byte
	wirePos int
	hostPos int
}

func (w *sizeWalk) walk(d *dataset.Dataset, depth int) error {
	structAlign := structAlignOf(w.reg, d)
	w.hostPos = roundUp(w.hostPos, structAlign)

	var (
		haveVar  bool
		varCount uint32
	)

	for i := 0; i < len(d.Elements); i++ {
		el := &d.Elements[i]
		count, err := resolveCount(el.Count, haveVar, varCount)
		if err != nil {
			return err
		}

		if el.Kind == dataset.KindDatasetRef {
			nested, err := resolveRef(w.reg, el)
			if err != nil {
				return err
			}

			for rep := 0; rep < count; rep++ {
				if depth+1 > w.reg.MaxDepth() {
					return fmt.Errorf("%w: recursion depth exceeds %d", errs.ErrState, w.reg.MaxDepth())
				}
				if err := w.walk(nested, depth+1); err != nil {
					return err
				}
			}

			haveVar = false

			continue
		}

		// Primitive element.
		w.hostPos = roundUp(w.hostPos, el.Type.HostAlign())

		hostSize := el.Type.HostSize()
		wireSize := el.Type.WireSize()

		capture := capturesNext(d, i)
		captured := false

		for rep := 0; rep < count; rep++ {
			if w.wirePos+wireSize > len(w.wire) {
				return fmt.Errorf("%w: wire input exhausted reading %s at offset %d",
					errs.ErrMarshalling, el.Type, w.wirePos)
			}

			if capture && rep == 0 {
				varCount = wireUint(el.Type, w.wire, w.wirePos)
				captured = true
			}

			w.hostPos += hostSize
			w.wirePos += wireSize
		}

		haveVar = captured
	}

	w.hostPos = roundUp(w.hostPos, structAlign)

	return nil
}
