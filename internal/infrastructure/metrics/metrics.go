package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for credit decisions, the request inbox and
// dataset imports. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Decision outcomes by policy, status and rejection reason
	DecisionOutcome *prometheus.CounterVec

	EvaluateLatency prometheus.Histogram

	// Requests waiting in the inbox
	PendingRequests prometheus.Gauge

	// Inbox decisions by status (aceito / recusado)
	InboxDecisions *prometheus.CounterVec

	ImportedRows *prometheus.CounterVec

	// Institution stats cache lookups by result (hit / miss)
	StatsCache *prometheus.CounterVec
}

// New registers every metric on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DecisionOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credapp_decision_outcomes_total",
			Help: "Total credit decisions by policy, status and rejection reason",
		}, []string{"policy", "status", "reason"}),

		EvaluateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "credapp_decision_evaluate_duration_seconds",
			Help:    "Duration of a credit simulation including history recording",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),

		PendingRequests: f.NewGauge(prometheus.GaugeOpts{
			Name: "credapp_inbox_pending_requests",
			Help: "Credit requests waiting for a decision",
		}),

		InboxDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credapp_inbox_decisions_total",
			Help: "Credit requests accepted or declined by an operator",
		}, []string{"status"}),

		ImportedRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credapp_dataset_imported_rows_total",
			Help: "Client rows imported by source format",
		}, []string{"format"}),

		StatsCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credapp_stats_cache_lookups_total",
			Help: "Institution stats cache lookups by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementOutcome(policy, status, reason string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(policy, status, reason).Inc()
	}
}

func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) SetPending(n int) {
	if m != nil {
		m.PendingRequests.Set(float64(n))
	}
}

func (m *Metrics) IncrementInboxDecision(status string) {
	if m != nil {
		m.InboxDecisions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) AddImportedRows(format string, n int) {
	if m != nil {
		m.ImportedRows.WithLabelValues(format).Add(float64(n))
	}
}

func (m *Metrics) IncrementStatsCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.StatsCache.WithLabelValues(result).Inc()
}

// Handler exposes g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
