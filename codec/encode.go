package codec

import (
	"fmt"

	"github.com/railtwin/tamar/dataset"
	"github.com/railtwin/tamar/errs"
	"github.com/railtwin/tamar/registry"
)

// Encode marshals the host struct image hostIn into wireOut for the
// Dataset registered under comID, per spec §4.6 / §6 item 2.
//
// cache, if non-nil, is consulted and (on a miss) populated with the
// resolved Dataset — spec §6's optional dataset-pointer cache slot.
func Encode(reg *registry.Registry, comID uint32, hostIn, wireOut []byte, cache *dataset.Cache) (Result, error) {
	d, err := resolveTopLevel(reg, comID, cache)
	if err != nil {
		return Result{}, err
	}

	return EncodeDs(reg, d, hostIn, wireOut)
}

// EncodeDs is Encode keyed directly by a resolved Dataset (spec §6
// item 4, "encodeDs").
func EncodeDs(reg *registry.Registry, d *dataset.Dataset, hostIn, wireOut []byte) (Result, error) {
	if reg == nil || d == nil {
		return Result{}, fmt.Errorf("%w: nil registry or dataset", errs.ErrParameter)
	}

	w := &encodeWalk{reg: reg, host: hostIn, wire: wireOut}
	if err := w.walk(d, 0); err != nil {
		return Result{BytesUsed: w.wirePos}, err
	}

	return Result{BytesUsed: w.wirePos, Warnings: w.warnings}, nil
}

type encodeWalk struct {
	reg      *registry.Registry
	host     []byte
	wire     []byte
	hostPos  int
	wirePos  int
	warnings []Warning
}

func (w *encodeWalk) walk(d *dataset.Dataset, depth int) error {
	structAlign := structAlignOf(w.reg, d)
	w.hostPos = roundUp(w.hostPos, structAlign)

	var (
		haveVar  bool
		varCount uint32
	)

	for i := 0; i < len(d.Elements); i++ {
		if w.hostPos >= len(w.host) {
			break
		}

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

		if capturesNext(d, i) {
			varCount = hostUint(el.Type, w.host, w.hostPos)
			haveVar = true
		} else {
			haveVar = false
		}

		hostSize := el.Type.HostSize()
		wireSize := el.Type.WireSize()

		for rep := 0; rep < count; rep++ {
			if w.wirePos+wireSize > len(w.wire) {
				return fmt.Errorf("%w: wire buffer exhausted writing %s at offset %d",
					errs.ErrParameter, el.Type, w.wirePos)
			}

			copyHostToWire(el.Type, w.host, w.hostPos, w.wire, w.wirePos)
			w.hostPos += hostSize
			w.wirePos += wireSize
		}
	}

	before := w.hostPos
	w.hostPos = roundUp(w.hostPos, structAlign)
	overrun := before - len(w.host)
	if overrun > structAlign {
		w.warnings = append(w.warnings, Warning{
			Message: fmt.Sprintf("dataset %d: host source overrun by %d bytes (more than one alignment step of %d)",
				d.ID, overrun, structAlign),
		})
	}

	return nil
}
