package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultCommissionBatchCron = "0 2 * * *"

// batchTimeout bounds a single scheduled commission run
const batchTimeout = 10 * time.Minute

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler runs the commission batch on a five-field cron expression
type Scheduler struct {
	cron       *cron.Cron
	schedule   cron.Schedule
	expression string
	commission CommissionService
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	ctx     context.Context
}

func NewScheduler(expression string, commission CommissionService, logger *slog.Logger) (*Scheduler, error) {
	if expression == "" {
		expression = DefaultCommissionBatchCron
	}
	schedule, err := cronParser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expression, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:       cron.New(cron.WithParser(cronParser)),
		schedule:   schedule,
		expression: expression,
		commission: commission,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.cron.Schedule(schedule, cron.FuncJob(s.runJob))

	return s, nil
}

func (s *Scheduler) Expression() string {
	return s.expression
}

// Next returns the next scheduled run after t
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("Commission scheduler started", "cron", s.expression)
}

// Stop halts scheduling and waits for a running batch to finish or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.cancel()
		s.logger.Info("Commission scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// RunNow executes one batch synchronously
func (s *Scheduler) RunNow(ctx context.Context) (*BatchSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()
	return s.commission.RunBatch(ctx)
}

func (s *Scheduler) runJob() {
	if s.ctx.Err() != nil {
		return
	}
	if _, err := s.RunNow(s.ctx); err != nil {
		s.logger.Error("Scheduled commission batch failed", "error", err)
	}
}
