package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DecisionAllowed = "allowed"
	DecisionDenied  = "denied"
)

// Metrics holds Prometheus metrics for the admin service.
type Metrics struct {
	AccessDecisions        *prometheus.CounterVec
	CommissionBatchRuns    prometheus.Counter
	CommissionAgentErrors  prometheus.Counter
	CommissionBatchLatency prometheus.Histogram
	MessExpenses           prometheus.Counter
	OverBudgetHostels      prometheus.Counter
	gatherer               prometheus.Gatherer
}

// NewDefault registers metrics with the default Prometheus registry.
func NewDefault() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// New registers metrics with the provided registry. If registry is nil, a new
// isolated registry is created.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return newMetrics(registry, registry)
}

func newMetrics(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		AccessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Authorization decisions by outcome and reason.",
		}, []string{"outcome", "reason"}),
		CommissionBatchRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commission_batch_runs_total",
			Help: "Total commission batch runs.",
		}),
		CommissionAgentErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commission_agent_errors_total",
			Help: "Agents whose commission could not be computed.",
		}),
		CommissionBatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "commission_batch_duration_seconds",
			Help:    "Commission batch duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		MessExpenses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mess_expenses_recorded_total",
			Help: "Total mess expenses recorded.",
		}),
		OverBudgetHostels: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mess_budget_overrun_total",
			Help: "Expenses that left a hostel over its mess budget.",
		}),
		gatherer: gatherer,
	}

	registerer.MustRegister(
		m.AccessDecisions,
		m.CommissionBatchRuns,
		m.CommissionAgentErrors,
		m.CommissionBatchLatency,
		m.MessExpenses,
		m.OverBudgetHostels,
	)

	return m
}

// Handler returns an HTTP handler that exposes metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveAccessDecision counts one resolver decision. reason is empty when allowed.
func (m *Metrics) ObserveAccessDecision(allowed bool, reason string) {
	if m == nil {
		return
	}
	outcome := DecisionDenied
	if allowed {
		outcome = DecisionAllowed
		reason = "none"
	}
	m.AccessDecisions.WithLabelValues(outcome, reason).Inc()
}

// ObserveCommissionBatch records one finished batch.
func (m *Metrics) ObserveCommissionBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.CommissionBatchRuns.Inc()
	m.CommissionBatchLatency.Observe(d.Seconds())
}

// ObserveCommissionAgentError counts one agent whose commission could not be computed.
func (m *Metrics) ObserveCommissionAgentError() {
	if m == nil {
		return
	}
	m.CommissionAgentErrors.Inc()
}

// ObserveMessExpense counts an expense and whether it left the hostel over budget.
func (m *Metrics) ObserveMessExpense(overBudget bool) {
	if m == nil {
		return
	}
	m.MessExpenses.Inc()
	if overBudget {
		m.OverBudgetHostels.Inc()
	}
}
