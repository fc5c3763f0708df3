// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	TransferEventsFetched prometheus.Counter
	PairEventsFetched     *prometheus.CounterVec
	TimelineRecordsStored prometheus.Counter
	EventDecodeErrors     *prometheus.CounterVec

	// Analysis metrics
	TransactionsClassified *prometheus.CounterVec
	ActionsAggregated      prometheus.Counter
	GraphEdgesAdded        *prometheus.CounterVec
	ClustersIdentified     *prometheus.CounterVec
	PatternsDetected       *prometheus.CounterVec
	AnalysisDuration       *prometheus.HistogramVec

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "evm_token_lab"
	}

	return &Metrics{
		// Ingestion metrics
		TransferEventsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transfer_events_fetched_total",
			Help:      "Total number of token transfer events fetched",
		}),
		PairEventsFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "pair_events_fetched_total",
			Help:      "Total number of pool events fetched by kind",
		}, []string{"event_type"}),
		TimelineRecordsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "timeline_records_stored_total",
			Help:      "Total number of timeline records stored to database",
		}),
		EventDecodeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "event_decode_errors_total",
			Help:      "Total number of log decode errors by event type",
		}, []string{"event_type"}),

		// Analysis metrics
		TransactionsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "transactions_classified_total",
			Help:      "Total number of transactions classified by type",
		}, []string{"transaction_type"}),
		ActionsAggregated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "actions_aggregated_total",
			Help:      "Total number of classified rows merged by the aggregator",
		}),
		GraphEdgesAdded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "graph_edges_added_total",
			Help:      "Total number of relationship graph edges by type",
		}, []string{"edge_type"}),
		ClustersIdentified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "clusters_identified_total",
			Help:      "Total number of cluster results by confidence level",
		}, []string{"confidence"}),
		PatternsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "patterns_detected_total",
			Help:      "Total number of manipulation patterns by type",
		}, []string{"pattern_type"}),
		AnalysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis phase duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"phase"}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ethrpc",
			Name:      "rpc_call_latency_seconds",
			Help:      "EVM RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTransferFetched increments the transfer events fetched counter.
func RecordTransferFetched(n int) {
	DefaultMetrics.TransferEventsFetched.Add(float64(n))
}

// RecordPairEventsFetched increments the pool events fetched counter.
func RecordPairEventsFetched(eventType string, n int) {
	DefaultMetrics.PairEventsFetched.WithLabelValues(eventType).Add(float64(n))
}

// RecordClassification increments the classified transactions counter.
func RecordClassification(transactionType string) {
	DefaultMetrics.TransactionsClassified.WithLabelValues(transactionType).Inc()
}

// RecordEdgeAdded increments the graph edge counter.
func RecordEdgeAdded(edgeType string) {
	DefaultMetrics.GraphEdgesAdded.WithLabelValues(edgeType).Inc()
}

// RecordCluster increments the cluster results counter.
func RecordCluster(confidence string) {
	DefaultMetrics.ClustersIdentified.WithLabelValues(confidence).Inc()
}

// RecordPattern increments the pattern counter.
func RecordPattern(patternType string) {
	DefaultMetrics.PatternsDetected.WithLabelValues(patternType).Inc()
}

// RecordAnalysisPhase records the duration of one analysis phase.
func RecordAnalysisPhase(phase string, seconds float64) {
	DefaultMetrics.AnalysisDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
