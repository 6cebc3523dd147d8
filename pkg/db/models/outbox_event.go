package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/horologiq/horologiq-backend/pkg/enums"
)

// OutboxEvent is an append-only record written in the same transaction as
// the catalog mutation it describes; the worker drains and publishes it.
type OutboxEvent struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType    enums.OutboxEventType `gorm:"column:event_type;not null"`
	AggregateID  uuid.UUID             `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload      json.RawMessage       `gorm:"column:payload;type:jsonb;not null"`
	Status       enums.OutboxStatus    `gorm:"column:status;not null;default:'pending'"`
	AttemptCount int                   `gorm:"column:attempt_count;not null;default:0"`
	LastError    *string               `gorm:"column:last_error"`
	PublishedAt  *time.Time            `gorm:"column:published_at"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}

// OutboxDLQ parks events that exhausted their publish attempts.
type OutboxDLQ struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID      uuid.UUID             `gorm:"column:event_id;type:uuid;not null;uniqueIndex"`
	EventType    enums.OutboxEventType `gorm:"column:event_type;not null"`
	AggregateID  uuid.UUID             `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload      json.RawMessage       `gorm:"column:payload;type:jsonb;not null"`
	AttemptCount int                   `gorm:"column:attempt_count;not null"`
	ErrorMessage *string               `gorm:"column:error_message"`
	FailedAt     time.Time             `gorm:"column:failed_at;not null"`
}
