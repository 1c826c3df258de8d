package codec

import (
	"fmt"

	"github.com/railtwin/tamar/dataset"
	"github.com/railtwin/tamar/errs"
	"github.com/railtwin/tamar/registry"
)

// Decode unmarshals the packed wire buffer wireIn into hostOut for the
// Dataset registered under comID, per spec §4.7 / §6 item 3.
func Decode(reg *registry.Registry, comID uint32, wireIn, hostOut []byte, cache *dataset.Cache) (Result, error) {
	d, err := resolveTopLevel(reg, comID, cache)
	if err != nil {
		return Result{}, err
	}

	return DecodeDs(reg, d, wireIn, hostOut)
}

// DecodeDs is Decode keyed directly by a resolved Dataset (spec §6
// item 4, "decodeDs").
func DecodeDs(reg *registry.Registry, d *dataset.Dataset, wireIn, hostOut []byte) (Result, error) {
	if reg == nil || d == nil {
		return Result{}, fmt.Errorf("%w: nil registry or dataset", errs.ErrParameter)
	}

	w := &decodeWalk{reg: reg, wire: wireIn, host: hostOut}
	if err := w.walk(d, 0); err != nil {
		return Result{BytesUsed: w.wirePos}, err
	}

	return Result{BytesUsed: w.wirePos}, nil
}

type decodeWalk struct {
	reg     *registry.Registry
	wire    []byte
	host    []byte
	wirePos int
	hostPos int
}

func (w *decodeWalk) walk(d *dataset.Dataset, depth int) error {
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
			if w.hostPos+hostSize > len(w.host) {
				return fmt.Errorf("%w: host destination too small for %s at offset %d",
					errs.ErrParameter, el.Type, w.hostPos)
			}

			copyWireToHost(el.Type, w.wire, w.wirePos, w.host, w.hostPos)

			if capture && rep == 0 {
				varCount = hostUint(el.Type, w.host, w.hostPos)
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
