// Package align provides the host-side pointer/offset rounding used
// to relate the natural alignment of the caller's in-memory struct to
// the densely packed wire form (spec §4.2). The wire side is never
// aligned; these helpers apply to host cursors only.
package align

// RoundUp rounds offset up to the next multiple of alignment.
// alignment must be one of 1, 2, 4, 8; any other value is treated as
// 1 (no rounding), matching the "unaligned" fallback a caller-supplied
// byte-packed struct would need.
func RoundUp(offset, alignment int) int {
	switch alignment {
	case 1, 2, 4, 8:
		return (offset + alignment - 1) &^ (alignment - 1)
	default:
		return offset
	}
}
