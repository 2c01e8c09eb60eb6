package models

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

type OutboxEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EventType   string    `gorm:"size:60;not null;index" json:"event_type"`
	AggregateID uuid.UUID `gorm:"type:uuid;index" json:"aggregate_id"`
	Payload     string    `gorm:"type:jsonb;not null" json:"payload"`

	Status        OutboxStatus `gorm:"size:20;not null;default:'PENDING';index:idx_outbox_pending,priority:1" json:"status"`
	Attempts      int          `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt time.Time    `gorm:"not null;index:idx_outbox_pending,priority:2" json:"next_attempt_at"`
	LastError     string       `gorm:"type:text" json:"last_error,omitempty"`
	ProcessedAt   *time.Time   `json:"processed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
