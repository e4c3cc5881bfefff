package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var indexedDocuments = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "index_documents",
	Help: "Number of documents in the document store",
})

var indexedPassages = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "index_passages",
	Help: "Number of passages in the semantic index",
})

var operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "index_operation_duration_seconds",
	Help:    "Time spent in index manager operations, lock wait included.",
	Buckets: []float64{.01, .05, .1, .5, 1, 2, 5, 10, 30},
}, []string{"operation", "outcome"})

var lockWait = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "index_lock_wait_seconds",
	Help:    "Time spent waiting for the index lock.",
	Buckets: []float64{.001, .01, .05, .1, .5, 1, 5, 30},
}, []string{"mode"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

var dependencyErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dependency_errors_total",
	Help: "Failed external service calls.",
}, []string{"service"})

var snapshotSaves = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "snapshot_saves_total",
	Help: "Snapshot save attempts labelled by outcome",
}, []string{"outcome"})

var snapshotDirty = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "snapshot_dirty",
	Help: "1 while acknowledged mutations are not yet persisted",
})

var mirrorFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "mirror_failures_total",
	Help: "Best-effort passage mirror writes that failed",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func SetIndexSize(documents, passages int) {
	indexedDocuments.Set(float64(documents))
	indexedPassages.Set(float64(passages))
}

func CaptureOperationMetrics(operation, outcome string, timeElapsed time.Duration) {
	operationDuration.WithLabelValues(operation, outcome).Observe(timeElapsed.Seconds())
}

func CaptureLockWait(mode string, timeElapsed time.Duration) {
	lockWait.WithLabelValues(mode).Observe(timeElapsed.Seconds())
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func IncrementDependencyErrors(label string) {
	dependencyErrors.WithLabelValues(label).Inc()
}

func CaptureSnapshotSave(ok bool) {
	if ok {
		snapshotSaves.WithLabelValues("ok").Inc()
		snapshotDirty.Set(0)
		return
	}
	snapshotSaves.WithLabelValues("failed").Inc()
	snapshotDirty.Set(1)
}

func IncrementMirrorFailures() {
	mirrorFailures.Inc()
}
