package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railtwin/tamar/errs"
	"github.com/railtwin/tamar/ptype"
)

func TestValidate_Empty(t *testing.T) {
	err := Validate(&Dataset{ID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidSchema)
}

func TestValidate_ZeroID(t *testing.T) {
	err := Validate(&Dataset{ID: 0, Elements: []Element{{Kind: KindPrimitive, Type: ptype.UINT8, Count: 1}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidSchema)
}

func TestValidate_Nil(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), errs.ErrInvalidSchema)
}

func TestValidate_VarLengthLeadingElement(t *testing.T) {
	d := &Dataset{
		ID: 1,
		Elements: []Element{
			{Kind: KindPrimitive, Type: ptype.UINT8, Count: VarLength},
		},
	}
	assert.ErrorIs(t, Validate(d), errs.ErrInvalidSchema)
}

func TestValidate_VarLengthBadPrecedingType(t *testing.T) {
	d := &Dataset{
		ID: 1,
		Elements: []Element{
			{Kind: KindPrimitive, Type: ptype.INT8, Count: 1},
			{Kind: KindPrimitive, Type: ptype.UINT8, Count: VarLength},
		},
	}
	assert.ErrorIs(t, Validate(d), errs.ErrInvalidSchema)
}

func TestValidate_VarLengthOK(t *testing.T) {
	d := &Dataset{
		ID: 1,
		Elements: []Element{
			{Kind: KindPrimitive, Type: ptype.UINT16, Count: 1},
			{Kind: KindPrimitive, Type: ptype.UINT8, Count: VarLength},
		},
	}
	assert.NoError(t, Validate(d))
}

func TestValidate_DatasetRefZeroID(t *testing.T) {
	d := &Dataset{
		ID: 1,
		Elements: []Element{
			{Kind: KindDatasetRef, RefDatasetID: 0, Count: 1},
		},
	}
	assert.ErrorIs(t, Validate(d), errs.ErrInvalidSchema)
}

func TestStructAlign(t *testing.T) {
	inner := &Dataset{
		ID: 2,
		Elements: []Element{
			{Kind: KindPrimitive, Type: ptype.UINT32, Count: 1},
		},
	}
	outer := &Dataset{
		ID: 1,
		Elements: []Element{
			{Kind: KindPrimitive, Type: ptype.UINT8, Count: 1},
			{Kind: KindDatasetRef, RefDatasetID: 2, Count: 1},
		},
	}

	resolve := func(id uint32) (*Dataset, bool) {
		if id == 2 {
			return inner, true
		}
		return nil, false
	}

	assert.Equal(t, 4, outer.StructAlign(resolve), "outer's strictest member is the nested UINT32")
	assert.Equal(t, 4, inner.StructAlign(nil))
}
