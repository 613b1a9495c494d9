package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/edubridge/consultancy-admin/internal/events"
	"github.com/edubridge/consultancy-admin/internal/metrics"
	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
)

const commissionSheet = "Commissions"

type commissionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewCommissionService(repo repositories.Repository, publisher events.EventPublisher, m *metrics.Metrics, logger *slog.Logger) CommissionService {
	return &commissionService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// round2 rounds half away from zero for the non-negative amounts this service produces
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

func (s *commissionService) ComputeAgentCommission(ctx context.Context, agentID string) (*models.AgentCommissionSnapshot, error) {
	agent, err := s.repo.Agent().GetByID(ctx, nil, agentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return s.computeForAgent(ctx, agent)
}

// computeForAgent reads the rate, the student set and both ledgers at slightly different
// instants; the snapshot is best effort and never locked.
func (s *commissionService) computeForAgent(ctx context.Context, agent *models.Agent) (*models.AgentCommissionSnapshot, error) {
	rate := agent.CommissionRate / 100

	studentIDs, err := s.repo.Agent().GetStudentIDs(ctx, nil, agent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent students: %w", err)
	}
	if len(studentIDs) == 0 {
		return &models.AgentCommissionSnapshot{}, nil
	}

	var (
		collections []*models.FeeCollection
		payments    []*models.FeePayment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.repo.Fee().ListCollectionsByStudents(gctx, nil, studentIDs)
		if err != nil {
			return fmt.Errorf("failed to get fee collections: %w", err)
		}
		collections = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.Fee().ListPaymentsByStudents(gctx, nil, studentIDs)
		if err != nil {
			return fmt.Errorf("failed to get fee payments: %w", err)
		}
		payments = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var collectedPaid float64
	for _, c := range collections {
		collectedPaid += c.AmountPaid
	}

	// An overpaid row contributes zero due and does not offset other rows
	var paymentsPaid, totalDue float64
	for _, p := range payments {
		paymentsPaid += p.AmountPaid
		totalDue += math.Max(p.AmountDue-p.AmountPaid, 0)
	}

	totalPaid := collectedPaid + paymentsPaid

	return &models.AgentCommissionSnapshot{
		StudentsCount: len(studentIDs),
		TotalReceived: round2(totalPaid * rate),
		CommissionDue: round2(totalDue * rate),
	}, nil
}

func (s *commissionService) ComputeAllAgentCommissions(ctx context.Context) ([]models.AgentCommissionReport, error) {
	agents, err := s.repo.Agent().List(ctx, nil, repositories.AgentFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	reports := make([]models.AgentCommissionReport, 0, len(agents))
	for _, agent := range agents {
		report := models.AgentCommissionReport{Agent: *agent}

		snapshot, err := s.computeForAgent(ctx, agent)
		if err != nil {
			s.logger.ErrorContext(ctx, "Commission computation failed, reporting zeros",
				"agent_id", agent.ID,
				"error", err)
			s.metrics.ObserveCommissionAgentError()
			report.Error = err.Error()
		} else {
			report.AgentCommissionSnapshot = *snapshot
		}

		reports = append(reports, report)
	}

	return reports, nil
}

func (s *commissionService) RunBatch(ctx context.Context) (*BatchSummary, error) {
	started := time.Now()
	s.logger.InfoContext(ctx, "Starting commission batch")

	reports, err := s.ComputeAllAgentCommissions(ctx)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		Reports:   reports,
		Agents:    len(reports),
		StartedAt: started.UTC(),
	}
	var received, due float64
	for _, r := range reports {
		if r.Error != "" {
			summary.Failed++
		}
		received += r.TotalReceived
		due += r.CommissionDue
	}
	summary.TotalReceived = round2(received)
	summary.TotalCommissionDue = round2(due)
	summary.Duration = time.Since(started)

	s.metrics.ObserveCommissionBatch(summary.Duration)
	s.logger.InfoContext(ctx, "Commission batch completed",
		"agents", summary.Agents,
		"failed", summary.Failed,
		"total_received", summary.TotalReceived,
		"total_commission_due", summary.TotalCommissionDue,
		"duration", summary.Duration)

	events.PublishSafe(ctx, s.publisher, s.logger, events.CommissionBatchCompleted, events.CommissionBatchCompletedData{
		Agents:             summary.Agents,
		Failed:             summary.Failed,
		TotalReceived:      summary.TotalReceived,
		TotalCommissionDue: summary.TotalCommissionDue,
		StartedAt:          summary.StartedAt,
		Duration:           summary.Duration.String(),
	})

	return summary, nil
}

var commissionHeaders = []interface{}{
	"Agent ID", "Agent", "Email", "Commission Rate (%)", "Students", "Total Received", "Commission Due", "Error",
}

func (s *commissionService) ExportAgentCommissions(ctx context.Context) (*excelize.File, error) {
	reports, err := s.ComputeAllAgentCommissions(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", commissionSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(commissionSheet, "A1", &commissionHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range reports {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			r.ID, r.Name, r.Email, r.CommissionRate,
			r.StudentsCount, r.TotalReceived, r.CommissionDue, r.Error,
		}
		if err := f.SetSheetRow(commissionSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row for agent %s: %w", r.ID, err)
		}
	}

	return f, nil
}
