// Package metrics exposes optional prometheus instrumentation around
// codec operations. The codec and registry packages never import this
// package; a caller that wants observability wraps its own Encode/
// Decode/Size calls with a Recorder, keeping the core marshalling path
// free of any metrics dependency.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts codec calls per ComId and tracks non-fatal
// marshalling warnings, for the tamarctl serve sample daemon.
type Recorder struct {
	calls    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	warnings prometheus.Counter
	depth    prometheus.Histogram
}

// NewRecorder registers its metrics against reg. Pass
// prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer to use the global one.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tamar",
			Name:      "codec_calls_total",
			Help:      "Codec operations performed, by operation and ComId.",
		}, []string{"op", "com_id"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tamar",
			Name:      "codec_errors_total",
			Help:      "Codec operations that returned an error, by operation and ComId.",
		}, []string{"op", "com_id"}),
		warnings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tamar",
			Name:      "codec_warnings_total",
			Help:      "Non-fatal marshalling warnings raised across all codec calls.",
		}),
		depth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tamar",
			Name:      "codec_recursion_depth",
			Help:      "Nested-dataset recursion depth values recorded by the caller.",
			Buckets:   prometheus.LinearBuckets(0, 1, 6),
		}),
	}
}

// Observe records the outcome of a single codec call.
func (r *Recorder) Observe(op string, comID uint32, warnings int, err error) {
	label := prometheus.Labels{"op": op, "com_id": strconv.FormatUint(uint64(comID), 10)}
	r.calls.With(label).Inc()
	if err != nil {
		r.errors.With(label).Inc()
	}
	if warnings > 0 {
		r.warnings.Add(float64(warnings))
	}
}

// ObserveDepth records depth on the recursion-depth histogram. The
// codec does not report the depth a walk reached, so the value is
// whatever the caller supplies; tamarctl serve records the registry's
// configured cap once at startup.
func (r *Recorder) ObserveDepth(depth int) {
	r.depth.Observe(float64(depth))
}
