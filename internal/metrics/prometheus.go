package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder on top of a dedicated registry so
// cmd/slicehub can expose it at GET /metrics without pulling in the default
// global registry's process/go collectors twice.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	rateLimitHits  *prometheus.CounterVec
	queueDepth     prometheus.Gauge
	inFlightSlices prometheus.Gauge
	queueOutcomes  *prometheus.CounterVec
	subprocessRuns *prometheus.CounterVec
	subprocessTime *prometheus.HistogramVec
	sliceOutcomes  *prometheus.CounterVec
}

// NewPrometheusRecorder builds a Recorder backed by a fresh registry and
// registers every collector against it.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	r := &PrometheusRecorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slicehub_http_requests_total",
			Help: "Total HTTP requests handled, labeled by path, method, and status.",
		}, []string{"path", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slicehub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		rateLimitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slicehub_rate_limit_rejections_total",
			Help: "Total requests rejected by the per-IP rate limiter, labeled by route.",
		}, []string{"route"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slicehub_queue_depth",
			Help: "Current number of admitted requests waiting for a worker.",
		}),
		inFlightSlices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slicehub_in_flight_slices",
			Help: "Current number of slice pipelines executing in worker goroutines.",
		}),
		queueOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slicehub_queue_outcomes_total",
			Help: "Admission queue outcomes, labeled by outcome (dispatched, full, timeout).",
		}, []string{"outcome"}),
		subprocessRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slicehub_subprocess_runs_total",
			Help: "Subprocess invocations, labeled by tool and outcome (ok, error, timeout).",
		}, []string{"tool", "outcome"}),
		subprocessTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slicehub_subprocess_duration_seconds",
			Help:    "Subprocess wall-clock duration in seconds, labeled by tool.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"tool"}),
		sliceOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slicehub_slice_outcomes_total",
			Help: "Terminal slice request outcomes, labeled by technology and outcome (errorCode or success).",
		}, []string{"technology", "outcome"}),
	}

	reg.MustRegister(
		r.httpRequests, r.httpDuration, r.rateLimitHits, r.queueDepth,
		r.inFlightSlices, r.queueOutcomes, r.subprocessRuns, r.subprocessTime,
		r.sliceOutcomes,
	)

	return r
}

// Registry exposes the underlying Prometheus registry for promhttp.HandlerFor.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

func (r *PrometheusRecorder) RecordHTTPRequest(startTime time.Time, path, method, status string) {
	r.httpRequests.WithLabelValues(path, method, status).Inc()
	r.httpDuration.WithLabelValues(path, method).Observe(time.Since(startTime).Seconds())
}

func (r *PrometheusRecorder) RecordRateLimitRejection(route string) {
	r.rateLimitHits.WithLabelValues(route).Inc()
}

func (r *PrometheusRecorder) UpdateQueueDepth(depth int) {
	r.queueDepth.Set(float64(depth))
}

func (r *PrometheusRecorder) UpdateInFlightSlices(delta int) {
	r.inFlightSlices.Add(float64(delta))
}

func (r *PrometheusRecorder) RecordQueueOutcome(outcome string) {
	r.queueOutcomes.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRecorder) RecordSubprocessOutcome(tool, outcome string, duration time.Duration) {
	r.subprocessRuns.WithLabelValues(tool, outcome).Inc()
	r.subprocessTime.WithLabelValues(tool).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordSliceOutcome(technology, outcome string) {
	r.sliceOutcomes.WithLabelValues(technology, outcome).Inc()
}
