package models

import (
	"time"

	"gorm.io/gorm"
)

type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
)

type Agent struct {
	ID             string      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name           string      `json:"name" gorm:"not null;size:200"`
	Email          string      `json:"email" gorm:"size:255;index"`
	CommissionRate float64     `json:"commission_rate" gorm:"not null;default:0"` // percentage 0-100
	Status         AgentStatus `json:"status" gorm:"size:32;default:active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Students []Student `json:"students,omitempty" gorm:"foreignKey:AgentID"`
}

func (Agent) TableName() string {
	return "agents"
}

type Student struct {
	ID      string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name    string  `json:"name" gorm:"not null;size:200"`
	Email   string  `json:"email" gorm:"size:255"`
	AgentID *string `json:"agent_id" gorm:"type:uuid;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Student) TableName() string {
	return "students"
}

type FeeCollection struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	StudentID  string    `json:"student_id" gorm:"not null;type:uuid;index"`
	AmountPaid float64   `json:"amount_paid" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
}

func (FeeCollection) TableName() string {
	return "fee_collections"
}

type FeePayment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	StudentID  string    `json:"student_id" gorm:"not null;type:uuid;index"`
	AmountDue  float64   `json:"amount_due" gorm:"not null;default:0"`
	AmountPaid float64   `json:"amount_paid" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (FeePayment) TableName() string {
	return "fee_payments"
}

// AgentCommissionSnapshot is derived on every request and never stored.
type AgentCommissionSnapshot struct {
	StudentsCount int     `json:"students_count"`
	TotalReceived float64 `json:"total_received"`
	CommissionDue float64 `json:"commission_due"`
}

// AgentCommissionReport flattens the agent and its snapshot into one JSON object.
type AgentCommissionReport struct {
	Agent
	AgentCommissionSnapshot
	Error string `json:"-"`
}
