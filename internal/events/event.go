package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "consultancy-admin"
	EventVersion = "1.0"
)

// Event types
const (
	PermissionsUpdated       = "permissions.updated"
	CommissionBatchCompleted = "commission.batch.completed"
	MessBudgetAllocated      = "mess_budget.allocated"
	MessExpenseRecorded      = "mess_expense.recorded"
)

// Event is the envelope published for every domain change
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent stamps a payload with id, source, version and time
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events. Publishing is fire-and-forget from the
// caller's point of view: a failure is logged by the caller and never rolls back a write.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ===== EVENT PAYLOADS =====

type PermissionsUpdatedData struct {
	Role     string  `json:"role"`
	Menu     *string `json:"menu,omitempty"`
	Enabled  *bool   `json:"enabled,omitempty"`
	Rules    int     `json:"rules,omitempty"`
	ActorID  string  `json:"actor_id,omitempty"`
	Replaced bool    `json:"replaced"`
}

type CommissionBatchCompletedData struct {
	Agents             int       `json:"agents"`
	Failed             int       `json:"failed"`
	TotalReceived      float64   `json:"total_received"`
	TotalCommissionDue float64   `json:"total_commission_due"`
	StartedAt          time.Time `json:"started_at"`
	Duration           string    `json:"duration"`
}

type MessBudgetAllocatedData struct {
	HostelID string  `json:"hostel_id"`
	Amount   float64 `json:"amount"`
	Year     int     `json:"year"`
	ActorID  string  `json:"actor_id,omitempty"`
}

type MessExpenseRecordedData struct {
	HostelID     string  `json:"hostel_id"`
	ExpenseID    uint    `json:"expense_id"`
	Amount       float64 `json:"amount"`
	Year         int     `json:"year"`
	BalanceMoved bool    `json:"balance_moved"`
}
