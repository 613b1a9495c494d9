package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edubridge/consultancy-admin/internal/events"
	"github.com/edubridge/consultancy-admin/internal/metrics"
	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
	"github.com/edubridge/consultancy-admin/internal/validator"
)

type budgetService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewBudgetService(repo repositories.Repository, publisher events.EventPublisher, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) BudgetService {
	return &budgetService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Allocate resets the hostel's budget: remaining always restarts at amount and any
// consumption recorded against a previous allocation is discarded.
func (s *budgetService) Allocate(ctx context.Context, actor *models.Principal, hostelID string, req *AllocateBudgetRequest) error {
	if req.Amount < 0 {
		return ErrInvalidAmount
	}
	if verrs := s.validator.GetBusinessValidator().ValidateBudgetAllocation(req); len(verrs) > 0 {
		return NewValidationError(verrs)
	}

	s.logger.InfoContext(ctx, "Allocating mess budget",
		"hostel_id", hostelID,
		"amount", req.Amount,
		"year", req.Year,
		"actor_id", actorID(actor))

	if err := s.repo.Hostel().AllocateMessBudget(ctx, nil, hostelID, req.Amount, req.Year); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrHostelNotFound
		}
		return fmt.Errorf("failed to allocate mess budget: %w", err)
	}

	events.PublishSafe(ctx, s.publisher, s.logger, events.MessBudgetAllocated, events.MessBudgetAllocatedData{
		HostelID: hostelID,
		Amount:   req.Amount,
		Year:     req.Year,
		ActorID:  actorID(actor),
	})

	return nil
}

func (s *budgetService) Summary(ctx context.Context, hostelID string) (*models.MessBudgetSummary, error) {
	hostel, err := s.repo.Hostel().GetByID(ctx, nil, hostelID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrHostelNotFound
		}
		return nil, fmt.Errorf("failed to get hostel: %w", err)
	}

	return models.NewMessBudgetSummary(hostel), nil
}

// RecordExpense stores the expense and, when it belongs to the hostel's current budget
// year, lowers the remaining balance in the same transaction. The balance may go negative.
func (s *budgetService) RecordExpense(ctx context.Context, actor *models.Principal, req *RecordMessExpenseRequest) (*models.MessExpense, error) {
	if verrs := s.validator.GetBusinessValidator().ValidateMessExpense(req); len(verrs) > 0 {
		return nil, NewValidationError(verrs)
	}

	expenseDate := s.now().UTC()
	if req.ExpenseDate != nil && !req.ExpenseDate.IsZero() {
		expenseDate = *req.ExpenseDate
	}

	expense := &models.MessExpense{
		HostelID:    req.HostelID,
		Year:        req.Year,
		Amount:      req.Amount,
		Description: req.Description,
		RecordedBy:  actorID(actor),
		ExpenseDate: expenseDate,
	}

	var (
		moved  bool
		hostel *models.Hostel
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Hostel().GetByID(ctx, nil, req.HostelID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrHostelNotFound
			}
			return fmt.Errorf("failed to get hostel: %w", err)
		}

		if err := tx.Hostel().CreateMessExpense(ctx, nil, expense); err != nil {
			return fmt.Errorf("failed to record mess expense: %w", err)
		}

		changed, err := tx.Hostel().DecrementMessBudget(ctx, nil, req.HostelID, req.Year, req.Amount)
		if err != nil {
			return fmt.Errorf("failed to decrement mess budget: %w", err)
		}
		moved = changed

		updated, err := tx.Hostel().GetByID(ctx, nil, req.HostelID)
		if err != nil {
			return fmt.Errorf("failed to reload hostel: %w", err)
		}
		hostel = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	overBudget := moved && hostel.IsOverBudget()
	s.metrics.ObserveMessExpense(overBudget)

	logArgs := []any{
		"hostel_id", req.HostelID,
		"expense_id", expense.ID,
		"amount", req.Amount,
		"year", req.Year,
		"balance_moved", moved,
		"remaining", hostel.MessBudgetRemaining,
	}
	if overBudget {
		s.logger.WarnContext(ctx, "Mess budget exceeded", logArgs...)
	} else {
		s.logger.InfoContext(ctx, "Mess expense recorded", logArgs...)
	}

	events.PublishSafe(ctx, s.publisher, s.logger, events.MessExpenseRecorded, events.MessExpenseRecordedData{
		HostelID:     req.HostelID,
		ExpenseID:    expense.ID,
		Amount:       req.Amount,
		Year:         req.Year,
		BalanceMoved: moved,
	})

	return expense, nil
}
