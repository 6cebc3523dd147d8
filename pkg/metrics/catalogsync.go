package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogSyncMetrics records outcomes of the catalog-sync worker.
type CatalogSyncMetrics struct {
	batchDuration *prometheus.HistogramVec
	published     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	deadLettered  prometheus.Counter
}

// NewCatalogSyncMetrics registers the worker metrics on the provided registerer.
func NewCatalogSyncMetrics(reg prometheus.Registerer) *CatalogSyncMetrics {
	if reg == nil {
		return &CatalogSyncMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_sync_batch_duration_seconds",
		Help:    "Duration of catalog-sync publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_events_published_total",
		Help: "Catalog feed events published downstream.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_events_failed_total",
		Help: "Catalog feed events that failed a publish attempt.",
	}, []string{"event_type"})
	deadLettered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_sync_events_dead_lettered_total",
		Help: "Catalog feed events parked after exhausting attempts.",
	})
	reg.MustRegister(batchDuration, published, failed, deadLettered)
	return &CatalogSyncMetrics{
		batchDuration: batchDuration,
		published:     published,
		failed:        failed,
		deadLettered:  deadLettered,
	}
}

// ObserveBatch records the duration of one drain batch.
func (m *CatalogSyncMetrics) ObserveBatch(outcome string, duration time.Duration) {
	if m == nil || m.batchDuration == nil {
		return
	}
	m.batchDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncPublished increments the publish counter for the event type.
func (m *CatalogSyncMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter for the event type.
func (m *CatalogSyncMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDeadLettered counts an event parked in the DLQ.
func (m *CatalogSyncMetrics) IncDeadLettered() {
	if m == nil || m.deadLettered == nil {
		return
	}
	m.deadLettered.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
