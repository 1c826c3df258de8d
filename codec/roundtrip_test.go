package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railtwin/tamar/dataset"
	"github.com/railtwin/tamar/ptype"
	"github.com/railtwin/tamar/registry"
)

func mustRegistry(t *testing.T, comID, datasetID uint32, d *dataset.Dataset, opts ...registry.Option) *registry.Registry {
	t.Helper()
	reg, err := registry.New(
		[]dataset.ComEntry{{ComID: comID, DatasetID: datasetID}},
		[]*dataset.Dataset{d},
		opts...,
	)
	require.NoError(t, err)

	return reg
}

// Scenario 1: Dataset {UINT8, UINT16, UINT32} roundtrips to a 7-byte
// packed big-endian wire form from an 8-byte (struct-align-4) host.
func TestPrimitiveRoundtrip(t *testing.T) {
	d := &dataset.Dataset{
		ID: 1,
		Elements: []dataset.Element{
			{Kind: dataset.KindPrimitive, Type: ptype.UINT8, Count: 1},
			{Kind: dataset.KindPrimitive, Type: ptype.UINT16, Count: 1},
			{Kind: dataset.KindPrimitive, Type: ptype.UINT32, Count: 1},
		},
	}
	reg := mustRegistry(t, 100, 1, d)

	host := make([]byte, 8)
	host[0] = 0x12
	nativeEngine.PutUint16(host[2:4], 0x1234)
	nativeEngine.PutUint32(host[4:8], 0x12345678)

	wire := make([]byte, 7)
	res, err := Encode(reg, 100, host, wire, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, res.BytesUsed)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []byte{0x12, 0x12, 0x34, 0x12, 0x34, 0x56, 0x78}, wire)

	decoded := make([]byte, 8)
	_, err = Decode(reg, 100, wire, decoded, nil)
	require.NoError(t, err)
	assert.Equal(t, host, decoded)
}

// Scenario 2: TIMEDATE48 packs to 6 bytes on the wire but occupies 8
// bytes of natively-aligned host storage (4-byte struct padding).
func TestTimedate48Roundtrip(t *testing.T) {
	d := &dataset.Dataset{
		ID: 2,
		Elements: []dataset.Element{
			{Kind: dataset.KindPrimitive, Type: ptype.TIMEDATE48, Count: 1},
		},
	}
	reg := mustRegistry(t, 200, 2, d)

	host := make([]byte, 8)
	nativeEngine.PutUint32(host[0:4], 0x12345678)
	nativeEngine.PutUint16(host[4:6], 0x9ABC)

	wire := make([]byte, 6)
	res, err := Encode(reg, 200, host, wire, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, res.BytesUsed)
	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}, wire)

	size, err := Size(reg, 200, wire, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, size, "host size after decode must include trailing struct padding")

	decoded := make([]byte, 8)
	_, err = Decode(reg, 200, wire, decoded, nil)
	require.NoError(t, err)
	assert.Equal(t, host, decoded)
}

// Scenario 4: a UINT16 size field captures the repeat count of the
// UINT8 array that follows it.
func TestVariableLengthArray(t *testing.T) {
	d := &dataset.Dataset{
		ID: 4,
		Elements: []dataset.Element{
			{Kind: dataset.KindPrimitive, Type: ptype.UINT16, Count: 1},
			{Kind: dataset.KindPrimitive, Type: ptype.UINT8, Count: dataset.VarLength},
		},
	}
	reg := mustRegistry(t, 400, 4, d)

	host := make([]byte, 6)
	nativeEngine.PutUint16(host[0:2], 4)
	host[2], host[3], host[4], host[5] = 1, 0, 1, 0

	wire := make([]byte, 6)
	res, err := Encode(reg, 400, host, wire, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, res.BytesUsed)
	assert.Equal(t, []byte{0x00, 0x04, 0x01, 0x00, 0x01, 0x00}, wire)

	decoded := make([]byte, 6)
	_, err = Decode(reg, 400, wire, decoded, nil)
	require.NoError(t, err)
	assert.Equal(t, host, decoded)

	size, err := Size(reg, 400, wire, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, size, "captured count of 4 must size exactly 2 + 4 bytes of host storage")
}

func TestVariableLengthArray_ZeroCount(t *testing.T) {
	d := &dataset.Dataset{
		ID: 5,
		Elements: []dataset.Element{
			{Kind: dataset.KindPrimitive, Type: ptype.UINT16, Count: 1},
			{Kind: dataset.KindPrimitive, Type: ptype.UINT8, Count: dataset.VarLength},
		},
	}
	reg := mustRegistry(t, 500, 5, d)

	host := make([]byte, 2)
	nativeEngine.PutUint16(host[0:2], 0)

	wire := make([]byte, 2)
	res, err := Encode(reg, 500, host, wire, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.BytesUsed)
	assert.Equal(t, []byte{0x00, 0x00}, wire)
}

func TestDatasetPointerCache(t *testing.T) {
	d := &dataset.Dataset{
		ID: 6,
		Elements: []dataset.Element{
			{Kind: dataset.KindPrimitive, Type: ptype.UINT8, Count: 1},
		},
	}
	reg := mustRegistry(t, 600, 6, d)

	cache := &dataset.Cache{}
	host := []byte{0x42}
	wire := make([]byte, 1)

	_, err := Encode(reg, 600, host, wire, cache)
	require.NoError(t, err)
	require.NotNil(t, cache.Dataset)
	assert.Equal(t, uint32(6), cache.Dataset.ID)

	// A populated cache must bypass the ComId lookup entirely: feeding
	// a bogus ComId still succeeds because the cache is consulted first.
	_, err = Encode(reg, 999999, host, wire, cache)
	assert.NoError(t, err)
}
