// Package metrics provides Prometheus metrics for the Yarrow service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesTotal tracks pipeline batch runs by status
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yarrow",
			Subsystem: "pipeline",
			Name:      "batches_total",
			Help:      "Total number of pipeline batch runs by status",
		},
		[]string{"status"},
	)

	// BatchDuration tracks end-to-end batch duration in seconds
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "yarrow",
			Subsystem: "pipeline",
			Name:      "batch_duration_seconds",
			Help:      "Duration of pipeline batch runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// StageDuration tracks per-stage duration in seconds
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "yarrow",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	// RecordsIngested tracks raw lead records ingested by source and status
	RecordsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yarrow",
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Total number of raw lead records ingested by source and status",
		},
		[]string{"source", "status"},
	)

	// ComparisonsTotal tracks candidate pair comparisons
	ComparisonsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "yarrow",
			Subsystem: "matching",
			Name:      "comparisons_total",
			Help:      "Total number of candidate pair comparisons scored",
		},
	)

	// LeadsScored tracks scored leads by tier
	LeadsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yarrow",
			Subsystem: "scoring",
			Name:      "leads_total",
			Help:      "Total number of leads scored by tier",
		},
		[]string{"tier"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yarrow",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "yarrow",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// CacheOperations tracks batch summary cache hits and misses
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yarrow",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Total number of summary cache operations by result",
		},
		[]string{"operation", "result"},
	)

	// GraphSyncTotal tracks lead graph sync operations
	GraphSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yarrow",
			Subsystem: "graph",
			Name:      "sync_total",
			Help:      "Total number of lead graph sync operations by status",
		},
		[]string{"status"},
	)
)

// RecordBatch records a pipeline batch run
func RecordBatch(status string, durationSeconds float64) {
	BatchesTotal.WithLabelValues(status).Inc()
	BatchDuration.Observe(durationSeconds)
}

// RecordStage records a pipeline stage duration
func RecordStage(stage string, durationSeconds float64) {
	StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordIngest records an ingested raw lead record
func RecordIngest(source, status string) {
	RecordsIngested.WithLabelValues(source, status).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.Observe(durationSeconds)
}
