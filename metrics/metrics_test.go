package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveCountsCallsAndErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Observe("encode", 1, 0, nil)
	r.Observe("encode", 1, 0, errors.New("boom"))
	r.Observe("decode", 2, 2, nil)

	assert.InDelta(t, 2, testutil.ToFloat64(r.calls.WithLabelValues("encode", "1")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.errors.WithLabelValues("encode", "1")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.calls.WithLabelValues("decode", "2")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.warnings), 0)
}

func TestRecorder_ObserveDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveDepth(5)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}
