package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/edubridge/consultancy-admin/internal/events"
	"github.com/edubridge/consultancy-admin/internal/metrics"
	"github.com/edubridge/consultancy-admin/internal/models"
)

func newCommissionTestService(repo *fakeRepository) (CommissionService, *events.MockEventPublisher, *metrics.Metrics) {
	logger := newTestLogger()
	publisher := events.NewMockEventPublisher(logger)
	m := metrics.New(prometheus.NewRegistry())
	return NewCommissionService(repo, publisher, m, logger), publisher, m
}

func TestComputeAgentCommission(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *fakeRepository)
		agentID  string
		want     models.AgentCommissionSnapshot
		wantErr  error
		wantHits int
	}{
		{
			name:    "unknown agent",
			setup:   func(r *fakeRepository) {},
			agentID: "missing",
			wantErr: ErrAgentNotFound,
		},
		{
			name: "zero students skips ledger queries",
			setup: func(r *fakeRepository) {
				r.agent.add(&models.Agent{ID: "a1", CommissionRate: 10})
				r.fee.collections = []*models.FeeCollection{{StudentID: "s1", AmountPaid: 500}}
			},
			agentID:  "a1",
			want:     models.AgentCommissionSnapshot{},
			wantHits: 0,
		},
		{
			name: "overpaid row does not offset other rows",
			setup: func(r *fakeRepository) {
				r.agent.add(&models.Agent{ID: "a1", CommissionRate: 100}, "s1", "s2")
				r.fee.payments = []*models.FeePayment{
					{StudentID: "s1", AmountDue: 100, AmountPaid: 150},
					{StudentID: "s2", AmountDue: 200, AmountPaid: 50},
				}
			},
			agentID:  "a1",
			want:     models.AgentCommissionSnapshot{StudentsCount: 2, TotalReceived: 200, CommissionDue: 150},
			wantHits: 2,
		},
		{
			name: "rounds only the final figure",
			setup: func(r *fakeRepository) {
				r.agent.add(&models.Agent{ID: "a1", CommissionRate: 12.5}, "s1")
				r.fee.collections = []*models.FeeCollection{{StudentID: "s1", AmountPaid: 333.333}}
			},
			agentID:  "a1",
			want:     models.AgentCommissionSnapshot{StudentsCount: 1, TotalReceived: 41.67, CommissionDue: 0},
			wantHits: 2,
		},
		{
			name: "both ledgers add up",
			setup: func(r *fakeRepository) {
				r.agent.add(&models.Agent{ID: "A", CommissionRate: 10}, "s1", "s2")
				r.fee.collections = []*models.FeeCollection{{StudentID: "s1", AmountPaid: 1000}}
				r.fee.payments = []*models.FeePayment{{StudentID: "s2", AmountDue: 2000, AmountPaid: 500}}
			},
			agentID:  "A",
			want:     models.AgentCommissionSnapshot{StudentsCount: 2, TotalReceived: 150, CommissionDue: 150},
			wantHits: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			tt.setup(repo)
			svc, _, _ := newCommissionTestService(repo)

			got, err := svc.ComputeAgentCommission(context.Background(), tt.agentID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("error %v should match ErrNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Errorf("snapshot = %+v, want %+v", *got, tt.want)
			}
			if hits := repo.fee.hits(); hits != tt.wantHits {
				t.Errorf("ledger queries = %d, want %d", hits, tt.wantHits)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{41.666625, 41.67},
		{150, 150},
		{0.004, 0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComputeAgentCommission_LedgerErrorPropagates(t *testing.T) {
	repo := newFakeRepository()
	ioErr := errors.New("connection reset")
	repo.agent.add(&models.Agent{ID: "a1", CommissionRate: 10}, "s1")
	repo.fee.paymentErrs = map[string]error{"s1": ioErr}
	svc, _, _ := newCommissionTestService(repo)

	_, err := svc.ComputeAgentCommission(context.Background(), "a1")
	if !errors.Is(err, ioErr) {
		t.Fatalf("error = %v, want wrapped %v", err, ioErr)
	}
}

func TestComputeAllAgentCommissions_PartialFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.agent.add(&models.Agent{ID: "good", Name: "Good", CommissionRate: 10}, "s1")
	repo.agent.add(&models.Agent{ID: "bad", Name: "Bad", CommissionRate: 10}, "s2")
	repo.agent.add(&models.Agent{ID: "empty", Name: "Empty", CommissionRate: 10})
	repo.fee.collections = []*models.FeeCollection{
		{StudentID: "s1", AmountPaid: 1000},
		{StudentID: "s2", AmountPaid: 5000},
	}
	repo.fee.paymentErrs = map[string]error{"s2": errors.New("timeout")}
	svc, _, m := newCommissionTestService(repo)

	reports, err := svc.ComputeAllAgentCommissions(context.Background())
	if err != nil {
		t.Fatalf("batch must not fail on a single agent: %v", err)
	}
	if got := testutil.ToFloat64(m.CommissionAgentErrors); got != 1 {
		t.Errorf("agent error counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CommissionBatchRuns); got != 0 {
		t.Errorf("batch run counter = %v, want 0 outside RunBatch", got)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}

	byID := map[string]models.AgentCommissionReport{}
	for _, r := range reports {
		byID[r.ID] = r
	}

	if got := byID["good"]; got.TotalReceived != 100 || got.StudentsCount != 1 || got.Error != "" {
		t.Errorf("good agent report = %+v", got)
	}
	bad := byID["bad"]
	if bad.Error == "" {
		t.Error("failed agent should carry its error")
	}
	if bad.AgentCommissionSnapshot != (models.AgentCommissionSnapshot{}) {
		t.Errorf("failed agent should report zeros, got %+v", bad.AgentCommissionSnapshot)
	}
	if bad.Name != "Bad" {
		t.Errorf("failed agent should keep its fields, got %+v", bad.Agent)
	}
}

func TestComputeAllAgentCommissions_ListErrorAborts(t *testing.T) {
	repo := newFakeRepository()
	repo.agent.listErr = errors.New("db down")
	svc, _, _ := newCommissionTestService(repo)

	if _, err := svc.ComputeAllAgentCommissions(context.Background()); err == nil {
		t.Fatal("expected error when agents cannot be listed")
	}
}

func TestRunBatch(t *testing.T) {
	repo := newFakeRepository()
	repo.agent.add(&models.Agent{ID: "a1", CommissionRate: 10}, "s1")
	repo.agent.add(&models.Agent{ID: "a2", CommissionRate: 10}, "s2")
	repo.fee.collections = []*models.FeeCollection{{StudentID: "s1", AmountPaid: 1000}}
	repo.fee.payments = []*models.FeePayment{{StudentID: "s1", AmountDue: 300, AmountPaid: 0}}
	repo.fee.paymentErrs = map[string]error{"s2": errors.New("timeout")}
	svc, publisher, m := newCommissionTestService(repo)

	summary, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	if summary.Agents != 2 || summary.Failed != 1 {
		t.Errorf("summary agents=%d failed=%d, want 2 and 1", summary.Agents, summary.Failed)
	}
	if summary.TotalReceived != 100 || summary.TotalCommissionDue != 30 {
		t.Errorf("summary totals = %v / %v, want 100 / 30", summary.TotalReceived, summary.TotalCommissionDue)
	}

	published := publisher.EventsOfType(events.CommissionBatchCompleted)
	if len(published) != 1 {
		t.Fatalf("published %d batch events, want 1", len(published))
	}
	data, ok := published[0].Data.(events.CommissionBatchCompletedData)
	if !ok || data.Failed != 1 {
		t.Errorf("event data = %#v", published[0].Data)
	}

	if got := testutil.ToFloat64(m.CommissionAgentErrors); got != 1 {
		t.Errorf("agent error counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CommissionBatchRuns); got != 1 {
		t.Errorf("batch run counter = %v, want 1", got)
	}
}

func TestExportAgentCommissions(t *testing.T) {
	repo := newFakeRepository()
	repo.agent.add(&models.Agent{ID: "A", Name: "Agent A", Email: "a@example.com", CommissionRate: 10}, "s1", "s2")
	repo.fee.collections = []*models.FeeCollection{{StudentID: "s1", AmountPaid: 1000}}
	repo.fee.payments = []*models.FeePayment{{StudentID: "s2", AmountDue: 2000, AmountPaid: 500}}
	svc, _, _ := newCommissionTestService(repo)

	f, err := svc.ExportAgentCommissions(context.Background())
	if err != nil {
		t.Fatalf("ExportAgentCommissions() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(commissionSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header plus one agent", len(rows))
	}
	if rows[0][0] != "Agent ID" {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"A", "Agent A", "a@example.com", "10", "2", "150", "150"}
	for i, cell := range want {
		if rows[1][i] != cell {
			t.Errorf("cell %d = %q, want %q", i, rows[1][i], cell)
		}
	}
}

func TestScheduler(t *testing.T) {
	repo := newFakeRepository()
	repo.agent.add(&models.Agent{ID: "a1", CommissionRate: 10}, "s1")
	svc, publisher, _ := newCommissionTestService(repo)

	if _, err := NewScheduler("not a cron", svc, newTestLogger()); err == nil {
		t.Fatal("expected invalid cron expression to be rejected")
	}

	s, err := NewScheduler("", svc, newTestLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if s.Expression() != DefaultCommissionBatchCron {
		t.Errorf("expression = %q, want default", s.Expression())
	}

	from := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	if next := s.Next(from); next.Day() != 2 || next.Hour() != 2 {
		t.Errorf("next run = %v, want 02:00 the following day", next)
	}

	if _, err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if n := len(publisher.EventsOfType(events.CommissionBatchCompleted)); n != 1 {
		t.Errorf("published %d batch events, want 1", n)
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
