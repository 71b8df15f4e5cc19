package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records outcomes of background mirror operations.
type SyncMetrics struct {
	flushSuccess *prometheus.CounterVec
	flushFailure *prometheus.CounterVec
	retries      *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	queueDepth   *prometheus.GaugeVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	flushSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_flush_success",
		Help: "Mirror operations successfully propagated to the remote store.",
	}, []string{"store", "op"})
	flushFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_flush_failure",
		Help: "Mirror operation attempts that failed.",
	}, []string{"store", "op"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_retries",
		Help: "Mirror operations re-queued after a retryable failure.",
	}, []string{"store", "op"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_dropped",
		Help: "Mirror operations abandoned after exhausting attempts.",
	}, []string{"store", "op"})
	queueDepth := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sync_queue_depth",
		Help: "Pending mirror operations per store outbox.",
	}, []string{"store"})
	reg.MustRegister(flushSuccess, flushFailure, retries, dropped, queueDepth)
	return &SyncMetrics{
		flushSuccess: flushSuccess,
		flushFailure: flushFailure,
		retries:      retries,
		dropped:      dropped,
		queueDepth:   queueDepth,
	}
}

// IncFlushSuccess increments the success counter for the given store and op.
func (m *SyncMetrics) IncFlushSuccess(store, op string) {
	if m == nil || m.flushSuccess == nil {
		return
	}
	m.flushSuccess.WithLabelValues(normalizeLabel(store), normalizeLabel(op)).Inc()
}

// IncFlushFailure increments the failure counter for the given store and op.
func (m *SyncMetrics) IncFlushFailure(store, op string) {
	if m == nil || m.flushFailure == nil {
		return
	}
	m.flushFailure.WithLabelValues(normalizeLabel(store), normalizeLabel(op)).Inc()
}

// IncRetry increments the retry counter for the given store and op.
func (m *SyncMetrics) IncRetry(store, op string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(store), normalizeLabel(op)).Inc()
}

// IncDropped increments the dropped counter for the given store and op.
func (m *SyncMetrics) IncDropped(store, op string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(store), normalizeLabel(op)).Inc()
}

// SetQueueDepth records the current outbox depth for a store.
func (m *SyncMetrics) SetQueueDepth(store string, depth int) {
	if m == nil || m.queueDepth == nil {
		return
	}
	m.queueDepth.WithLabelValues(normalizeLabel(store)).Set(float64(depth))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
