package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railtwin/tamar/dataset"
	"github.com/railtwin/tamar/errs"
	"github.com/railtwin/tamar/ptype"
)

func simpleDataset(id uint32) *dataset.Dataset {
	return &dataset.Dataset{
		ID: id,
		Elements: []dataset.Element{
			{Kind: dataset.KindPrimitive, Type: ptype.UINT8, Count: 1},
		},
	}
}

func TestNew_EmptyInputsRejected(t *testing.T) {
	_, err := New(nil, []*dataset.Dataset{simpleDataset(1)})
	assert.ErrorIs(t, err, errs.ErrParameter)

	_, err = New([]dataset.ComEntry{{ComID: 1, DatasetID: 1}}, nil)
	assert.ErrorIs(t, err, errs.ErrParameter)
}

func TestNew_LifecycleAndLookup(t *testing.T) {
	comEntries := []dataset.ComEntry{
		{ComID: 300, DatasetID: 3},
		{ComID: 100, DatasetID: 1},
		{ComID: 200, DatasetID: 2},
	}
	datasets := []*dataset.Dataset{simpleDataset(3), simpleDataset(1), simpleDataset(2)}

	reg, err := New(comEntries, datasets)
	require.NoError(t, err)

	for _, ce := range comEntries {
		d, ok := reg.DatasetByComID(ce.ComID)
		require.True(t, ok)
		assert.Equal(t, ce.DatasetID, d.ID)
	}

	_, ok := reg.DatasetByComID(9999)
	assert.False(t, ok, "unregistered ComId must miss")

	d, ok := reg.DatasetByID(2)
	require.True(t, ok)
	assert.Equal(t, uint32(2), d.ID)

	assert.Equal(t, DefaultMaxDepth, reg.MaxDepth())
}

func TestNew_DuplicateDatasetID(t *testing.T) {
	_, err := New(
		[]dataset.ComEntry{{ComID: 1, DatasetID: 1}},
		[]*dataset.Dataset{simpleDataset(1), simpleDataset(1)},
	)
	assert.ErrorIs(t, err, errs.ErrInvalidSchema)
}

func TestNew_DuplicateComID(t *testing.T) {
	_, err := New(
		[]dataset.ComEntry{{ComID: 1, DatasetID: 1}, {ComID: 1, DatasetID: 1}},
		[]*dataset.Dataset{simpleDataset(1)},
	)
	assert.ErrorIs(t, err, errs.ErrInvalidSchema)
}

func TestNew_ZeroIDsReserved(t *testing.T) {
	_, err := New(
		[]dataset.ComEntry{{ComID: 0, DatasetID: 1}},
		[]*dataset.Dataset{simpleDataset(1)},
	)
	assert.ErrorIs(t, err, errs.ErrInvalidSchema)
}

func TestNew_ComIDMapsToUnregisteredDataset(t *testing.T) {
	_, err := New(
		[]dataset.ComEntry{{ComID: 1, DatasetID: 99}},
		[]*dataset.Dataset{simpleDataset(1)},
	)
	assert.ErrorIs(t, err, errs.ErrUnknownDataset)
}

func TestNew_UnresolvableNestedReference(t *testing.T) {
	outer := &dataset.Dataset{
		ID: 1,
		Elements: []dataset.Element{
			{Kind: dataset.KindDatasetRef, RefDatasetID: 42, Count: 1},
		},
	}
	_, err := New([]dataset.ComEntry{{ComID: 1, DatasetID: 1}}, []*dataset.Dataset{outer})
	assert.ErrorIs(t, err, errs.ErrUnknownDataset)
}

func TestNew_ResolvesAndCachesNestedReferences(t *testing.T) {
	inner := simpleDataset(2)
	outer := &dataset.Dataset{
		ID: 1,
		Elements: []dataset.Element{
			{Kind: dataset.KindDatasetRef, RefDatasetID: 2, Count: 1},
		},
	}

	reg, err := New([]dataset.ComEntry{{ComID: 1, DatasetID: 1}}, []*dataset.Dataset{outer, inner})
	require.NoError(t, err)

	d, ok := reg.DatasetByID(1)
	require.True(t, ok)
	resolved, ok := d.Elements[0].ResolvedRef()
	require.True(t, ok)
	assert.Equal(t, uint32(2), resolved.ID)
}

func TestWithMaxDepth(t *testing.T) {
	reg, err := New(
		[]dataset.ComEntry{{ComID: 1, DatasetID: 1}},
		[]*dataset.Dataset{simpleDataset(1)},
		WithMaxDepth(2),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.MaxDepth())
}

func TestDigest_StableAndSensitiveToSchema(t *testing.T) {
	reg1, err := New([]dataset.ComEntry{{ComID: 1, DatasetID: 1}}, []*dataset.Dataset{simpleDataset(1)})
	require.NoError(t, err)
	reg2, err := New([]dataset.ComEntry{{ComID: 1, DatasetID: 1}}, []*dataset.Dataset{simpleDataset(1)})
	require.NoError(t, err)

	assert.Equal(t, reg1.Digest(), reg2.Digest(), "identical schemas must digest identically")

	reg3, err := New([]dataset.ComEntry{{ComID: 1, DatasetID: 1}}, []*dataset.Dataset{simpleDataset(1)}, WithMaxDepth(1))
	require.NoError(t, err)
	_ = reg3 // max depth doesn't change the schema digest

	reg4, err := New([]dataset.ComEntry{{ComID: 2, DatasetID: 1}}, []*dataset.Dataset{simpleDataset(1)})
	require.NoError(t, err)
	assert.NotEqual(t, reg1.Digest(), reg4.Digest(), "different ComId must digest differently")
}
