// Package dataset holds the data model a tamar schema is built from:
// Datasets made of ordered Elements, each either a primitive value or
// a reference to another Dataset (spec §3).
package dataset

import "github.com/railtwin/tamar/ptype"

// VarLength is the sentinel element count (all-ones) marking a
// variable-length array whose actual count is taken from the
// immediately preceding small-integer element at walk time (spec
// §3, §4.5).
const VarLength uint32 = 0xFFFFFFFF

// ElementKind distinguishes a primitive element from a reference to
// another Dataset. spec §9 Design Notes asks explicitly for this sum
// type instead of the original C source's numeric-tag-threshold trick.
type ElementKind uint8

const (
	// KindPrimitive marks an element whose Type field is one of the
	// sixteen primitive wire types.
	KindPrimitive ElementKind = iota
	// KindDatasetRef marks an element that nests another Dataset,
	// identified by RefDatasetID.
	KindDatasetRef
)

// Element is one field within a Dataset.
type Element struct {
	Kind ElementKind

	// Type is meaningful when Kind == KindPrimitive.
	Type ptype.Type

	// RefDatasetID is meaningful when Kind == KindDatasetRef: the
	// identifier of the nested Dataset.
	RefDatasetID uint32

	// Count is the declared element count. VarLength marks a
	// variable-length array resolved at walk time from the preceding
	// small-integer element (spec §4.5).
	Count uint32

	// ref caches the resolved nested Dataset once the registry has
	// looked it up. Write-once: once non-nil it binds for the
	// process lifetime (spec §3 "Registry").
	ref *Dataset
}

// IsVarLength reports whether the element's declared count is the
// variable-length sentinel.
func (e *Element) IsVarLength() bool {
	return e.Count == VarLength
}

// ResolvedRef returns the cached nested Dataset and whether it has
// been resolved yet.
func (e *Element) ResolvedRef() (*Dataset, bool) {
	return e.ref, e.ref != nil
}

// SetResolvedRef caches the nested Dataset on first successful
// resolution. Subsequent calls are no-ops if a reference is already
// cached, matching the "write-once-successful" contract of spec §5.
func (e *Element) SetResolvedRef(ds *Dataset) {
	if e.ref == nil {
		e.ref = ds
	}
}

// Dataset is a uniquely-identified, ordered list of Elements.
type Dataset struct {
	ID       uint32
	Elements []Element

	// alignCache memoizes StructAlign's recursive computation; 0
	// means not yet computed.
	alignCache int
}

// ComEntry maps an application-level message identifier (ComId) to the
// Dataset that describes its wire layout.
type ComEntry struct {
	ComID     uint32
	DatasetID uint32
}

// Cache is the caller-owned "dataset-pointer cache slot" spec §6
// describes: when Dataset is non-nil on entry to a codec call, it is
// used directly instead of a registry lookup; the codec populates it
// on first resolution otherwise. It is purely an optimisation — never
// required for correctness.
type Cache struct {
	Dataset *Dataset
}

// Resolver looks up a Dataset by its identifier. registry.Registry
// implements this; it is expressed as a function type here so dataset
// has no import dependency on registry.
type Resolver func(id uint32) (*Dataset, bool)

// StructAlign returns d's struct alignment: the maximum host alignment
// of any member, applied recursively through dataset references (spec
// §4.3). The result is memoized on first computation.
//
// resolve is used to look up nested Dataset references; it may be nil
// if d is known to contain no KindDatasetRef elements.
func (d *Dataset) StructAlign(resolve Resolver) int {
	if d.alignCache != 0 {
		return d.alignCache
	}

	align := d.structAlign(resolve, 0)
	d.alignCache = align

	return align
}

// maxStructAlignDepth bounds the recursive walk used only to compute
// struct alignment. Dataset references form a DAG bounded by the
// codec's own depth-5 recursion cap (spec §9 "Cyclic graphs"); this
// limit exists purely to prevent a misconfigured schema from looping
// forever during this computation, not to enforce the codec's cap.
const maxStructAlignDepth = 32

func (d *Dataset) structAlign(resolve Resolver, depth int) int {
	align := 1
	if depth >= maxStructAlignDepth {
		return align
	}

	for i := range d.Elements {
		el := &d.Elements[i]
		switch el.Kind {
		case KindPrimitive:
			if a := el.Type.HostAlign(); a > align {
				align = a
			}
		case KindDatasetRef:
			nested, ok := el.ResolvedRef()
			if !ok && resolve != nil {
				nested, ok = resolve(el.RefDatasetID)
			}
			if ok && nested != nil {
				if a := nested.structAlign(resolve, depth+1); a > align {
					align = a
				}
			}
		}
	}

	return align
}
