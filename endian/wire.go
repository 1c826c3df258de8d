package endian

// WireEngine returns the byte-order engine used for every value placed
// on the wire. Unlike mebo's per-blob configurable engine, the wire
// form here is fixed by the transport protocol: always big-endian,
// packed, with no per-call choice (spec §4.4).
func WireEngine() EndianEngine {
	return GetBigEndianEngine()
}

// NativeEngine returns the byte-order engine matching this process's
// host representation. The codec uses it to read and write the
// caller-supplied host buffer, which is assumed to be a memory image
// of a natively-aligned struct on the caller's platform.
func NativeEngine() EndianEngine {
	if IsNativeBigEndian() {
		return GetBigEndianEngine()
	}

	return GetLittleEndianEngine()
}
