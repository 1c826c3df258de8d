// Package codec implements the recursive encode/decode/size-estimate
// walk over a Dataset described in spec §4.6, §4.7, §4.8: the core
// bridge between the caller's natively-aligned host struct and the
// densely packed, big-endian wire form.
package codec

import (
	"fmt"

	"github.com/railtwin/tamar/align"
	"github.com/railtwin/tamar/dataset"
	"github.com/railtwin/tamar/endian"
	"github.com/railtwin/tamar/errs"
	"github.com/railtwin/tamar/ptype"
	"github.com/railtwin/tamar/registry"
)

// Warning is a non-fatal diagnostic produced by an otherwise
// successful encode — currently only the host-source over-read
// tolerance of spec §4.6 step 3 / §7.
type Warning struct {
	Message string
}

// Result carries the bytes actually produced/consumed and any
// warnings raised along the way.
type Result struct {
	// BytesUsed is the number of bytes written (encode) or read
	// (decode) on the side the caller is producing/consuming.
	BytesUsed int
	Warnings  []Warning
}

var (
	wireEngine   = endian.WireEngine()
	nativeEngine = endian.NativeEngine()
)

// resolveRef returns the nested Dataset for a KindDatasetRef element,
// resolving and caching it via reg on first use (spec §3 "cached
// resolved pointer ... binds for the process lifetime").
func resolveRef(reg *registry.Registry, el *dataset.Element) (*dataset.Dataset, error) {
	if nested, ok := el.ResolvedRef(); ok {
		return nested, nil
	}

	nested, ok := reg.DatasetByID(el.RefDatasetID)
	if !ok {
		return nil, fmt.Errorf("%w: dataset id %d", errs.ErrUnknownDataset, el.RefDatasetID)
	}
	el.SetResolvedRef(nested)

	return nested, nil
}

// resolveCount returns the effective repeat count for an element with
// declared count declared: the declared count itself, or varCount (the
// most recently captured variable-length count, valid when haveVar) if
// declared is the sentinel (spec §4.5).
func resolveCount(declared uint32, haveVar bool, varCount uint32) (int, error) {
	if declared != dataset.VarLength {
		return int(declared), nil
	}
	if !haveVar {
		return 0, fmt.Errorf("%w: variable-length element with no captured count", errs.ErrMarshalling)
	}

	return int(varCount), nil
}

// capturesNext reports whether element i of d is an unsigned
// small-integer primitive immediately followed by a variable-length
// element, i.e. whether encoding/decoding element i should capture its
// value as the next variable-length count (spec §4.5).
func capturesNext(d *dataset.Dataset, i int) bool {
	el := &d.Elements[i]
	if el.Kind != dataset.KindPrimitive || !el.Type.IsUnsignedSmallInt() {
		return false
	}

	return i+1 < len(d.Elements) && d.Elements[i+1].IsVarLength()
}

// structAlignOf returns d's struct alignment using reg for any nested
// reference resolution needed.
func structAlignOf(reg *registry.Registry, d *dataset.Dataset) int {
	return d.StructAlign(reg.Resolver())
}

// hostUint reads an unsigned value of the given primitive's wire width
// (1, 2, or 4 bytes) from host[off:] using the native-endian engine.
// Only meaningful for UINT8/UINT16/UINT32, per ptype.IsUnsignedSmallInt.
func hostUint(t ptype.Type, host []byte, off int) uint32 {
	switch t {
	case ptype.UINT8:
		if off >= len(host) {
			return 0
		}

		return uint32(host[off])
	case ptype.UINT16:
		if off+2 > len(host) {
			return 0
		}

		return uint32(nativeEngine.Uint16(host[off : off+2]))
	case ptype.UINT32:
		if off+4 > len(host) {
			return 0
		}

		return nativeEngine.Uint32(host[off : off+4])
	default:
		return 0
	}
}

// wireUint reads an unsigned value of the given primitive's wire width
// directly from the packed big-endian wire buffer.
func wireUint(t ptype.Type, wire []byte, off int) uint32 {
	switch t {
	case ptype.UINT8:
		if off >= len(wire) {
			return 0
		}

		return uint32(wire[off])
	case ptype.UINT16:
		if off+2 > len(wire) {
			return 0
		}

		return uint32(wireEngine.Uint16(wire[off : off+2]))
	case ptype.UINT32:
		if off+4 > len(wire) {
			return 0
		}

		return wireEngine.Uint32(wire[off : off+4])
	default:
		return 0
	}
}

// copyHostToWire copies one value of type t from host[hostOff:] (native
// byte order, possibly short — missing trailing bytes read as zero) to
// wire[wireOff:wireOff+t.WireSize()] (packed big-endian). It implements
// the TIMEDATE48/TIMEDATE64 struct-splitting rule of spec §4.4.
func copyHostToWire(t ptype.Type, host []byte, hostOff int, wire []byte, wireOff int) {
	switch t {
	case ptype.BOOL8, ptype.CHAR8, ptype.INT8, ptype.UINT8:
		wire[wireOff] = hostByte(host, hostOff)
	case ptype.UTF16, ptype.INT16, ptype.UINT16:
		wireEngine.PutUint16(wire[wireOff:wireOff+2], hostUint16(host, hostOff))
	case ptype.INT32, ptype.UINT32, ptype.REAL32, ptype.TIMEDATE32:
		wireEngine.PutUint32(wire[wireOff:wireOff+4], hostUint32(host, hostOff))
	case ptype.INT64, ptype.UINT64, ptype.REAL64:
		wireEngine.PutUint64(wire[wireOff:wireOff+8], hostUint64(host, hostOff))
	case ptype.TIMEDATE48:
		wireEngine.PutUint32(wire[wireOff:wireOff+4], hostUint32(host, hostOff))
		wireEngine.PutUint16(wire[wireOff+4:wireOff+6], hostUint16(host, hostOff+4))
	case ptype.TIMEDATE64:
		wireEngine.PutUint32(wire[wireOff:wireOff+4], hostUint32(host, hostOff))
		wireEngine.PutUint32(wire[wireOff+4:wireOff+8], hostUint32(host, hostOff+4))
	}
}

// copyWireToHost is copyHostToWire's mirror: reads a packed big-endian
// value from wire and writes it, natively ordered, into host.
func copyWireToHost(t ptype.Type, wire []byte, wireOff int, host []byte, hostOff int) {
	switch t {
	case ptype.BOOL8, ptype.CHAR8, ptype.INT8, ptype.UINT8:
		host[hostOff] = wire[wireOff]
	case ptype.UTF16, ptype.INT16, ptype.UINT16:
		nativeEngine.PutUint16(host[hostOff:hostOff+2], wireEngine.Uint16(wire[wireOff:wireOff+2]))
	case ptype.INT32, ptype.UINT32, ptype.REAL32, ptype.TIMEDATE32:
		nativeEngine.PutUint32(host[hostOff:hostOff+4], wireEngine.Uint32(wire[wireOff:wireOff+4]))
	case ptype.INT64, ptype.UINT64, ptype.REAL64:
		nativeEngine.PutUint64(host[hostOff:hostOff+8], wireEngine.Uint64(wire[wireOff:wireOff+8]))
	case ptype.TIMEDATE48:
		nativeEngine.PutUint32(host[hostOff:hostOff+4], wireEngine.Uint32(wire[wireOff:wireOff+4]))
		nativeEngine.PutUint16(host[hostOff+4:hostOff+6], wireEngine.Uint16(wire[wireOff+4:wireOff+6]))
	case ptype.TIMEDATE64:
		nativeEngine.PutUint32(host[hostOff:hostOff+4], wireEngine.Uint32(wire[wireOff:wireOff+4]))
		nativeEngine.PutUint32(host[hostOff+4:hostOff+8], wireEngine.Uint32(wire[wireOff+4:wireOff+8]))
	}
}

// hostByte/hostUint16/hostUint32/hostUint64 read from host tolerating a
// short buffer (missing trailing bytes, e.g. struct padding the caller
// didn't allocate) by zero-filling — this is what lets the §4.6 step 3
// "over-read by at most one alignment step" tolerance complete without
// panicking on a slightly undersized host slice.
func hostByte(host []byte, off int) byte {
	if off >= len(host) {
		return 0
	}

	return host[off]
}

func hostUint16(host []byte, off int) uint16 {
	var b [2]byte
	copy(b[:], safeHostSlice(host, off, 2))

	return nativeEngine.Uint16(b[:])
}

func hostUint32(host []byte, off int) uint32 {
	var b [4]byte
	copy(b[:], safeHostSlice(host, off, 4))

	return nativeEngine.Uint32(b[:])
}

func hostUint64(host []byte, off int) uint64 {
	var b [8]byte
	copy(b[:], safeHostSlice(host, off, 8))

	return nativeEngine.Uint64(b[:])
}

// safeHostSlice returns host[off:off+n] clamped to the available
// length; copy() then zero-fills whatever wasn't available.
func safeHostSlice(host []byte, off, n int) []byte {
	if off >= len(host) {
		return nil
	}
	end := off + n
	if end > len(host) {
		end = len(host)
	}

	return host[off:end]
}

// roundUp is align.RoundUp, re-exported for readability at call sites
// in this package.
func roundUp(off, a int) int { return align.RoundUp(off, a) }

// resolveTopLevel resolves comID to its Dataset, consulting and (on a
// miss) populating cache — the optional dataset-pointer cache slot of
// spec §6. A populated cache bypasses the registry lookup entirely.
func resolveTopLevel(reg *registry.Registry, comID uint32, cache *dataset.Cache) (*dataset.Dataset, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: nil registry", errs.ErrParameter)
	}

	if cache != nil && cache.Dataset != nil {
		return cache.Dataset, nil
	}

	d, ok := reg.DatasetByComID(comID)
	if !ok {
		return nil, fmt.Errorf("%w: com id %d", errs.ErrUnknownDataset, comID)
	}

	if cache != nil {
		cache.Dataset = d
	}

	return d, nil
}
