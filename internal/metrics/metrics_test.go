package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAccessDecision(true, "")
	m.ObserveAccessDecision(false, "role-mismatch")
	m.ObserveAccessDecision(false, "role-mismatch")
	m.ObserveCommissionBatch(2 * time.Second)
	for i := 0; i < 3; i++ {
		m.ObserveCommissionAgentError()
	}
	m.ObserveMessExpense(false)
	m.ObserveMessExpense(true)

	if got := testutil.ToFloat64(m.AccessDecisions.WithLabelValues(DecisionAllowed, "none")); got != 1 {
		t.Fatalf("expected allowed counter 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.AccessDecisions.WithLabelValues(DecisionDenied, "role-mismatch")); got != 2 {
		t.Fatalf("expected role-mismatch counter 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.CommissionAgentErrors); got != 3 {
		t.Fatalf("expected agent errors 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.CommissionBatchRuns); got != 1 {
		t.Fatalf("expected batch runs 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.MessExpenses); got != 2 {
		t.Fatalf("expected mess expenses 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.OverBudgetHostels); got != 1 {
		t.Fatalf("expected overruns 1, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAccessDecision(true, "")
	m.ObserveCommissionBatch(time.Second)
	m.ObserveCommissionAgentError()
	m.ObserveMessExpense(true)
}

func TestMetricsHandler(t *testing.T) {
	m := New(nil)
	m.ObserveCommissionBatch(time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "commission_batch_runs_total") {
		t.Fatalf("expected commission_batch_runs_total in response")
	}
}
