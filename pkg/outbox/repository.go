package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/enums"
)

const maxStoredErrorLen = 1024

// Repository persists and drains outbox events.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertTx appends an event inside the caller's transaction so the event and
// the mutation it describes commit atomically.
func (r *Repository) InsertTx(tx *gorm.DB, event *models.OutboxEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = enums.OutboxStatusPending
	}
	return tx.Create(event).Error
}

// FetchPending returns the oldest unpublished events, capped at limit.
func (r *Repository) FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkPublished stamps the event as delivered.
func (r *Repository) MarkPublished(ctx context.Context, eventID uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]any{
			"status":       enums.OutboxStatusPublished,
			"published_at": now,
		}).Error
}

// RecordFailure bumps the attempt counter and stores the truncated error.
func (r *Repository) RecordFailure(ctx context.Context, eventID uuid.UUID, cause error) error {
	msg := truncateError(cause)
	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]any{
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"last_error":    msg,
		}).Error
}

// ParkTx moves an exhausted event into the DLQ and marks it failed, in one
// transaction.
func (r *Repository) ParkTx(tx *gorm.DB, event models.OutboxEvent, cause error) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	msg := truncateError(cause)
	entry := models.OutboxDLQ{
		ID:           uuid.New(),
		EventID:      event.ID,
		EventType:    event.EventType,
		AggregateID:  event.AggregateID,
		Payload:      event.Payload,
		AttemptCount: event.AttemptCount + 1,
		ErrorMessage: msg,
		FailedAt:     time.Now().UTC(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}
	return tx.Model(&models.OutboxEvent{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"status":        enums.OutboxStatusFailed,
			"attempt_count": event.AttemptCount + 1,
			"last_error":    msg,
		}).Error
}

// ListDLQ returns the most recently parked events.
func (r *Repository) ListDLQ(ctx context.Context, limit int) ([]models.OutboxDLQ, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.OutboxDLQ
	err := r.db.WithContext(ctx).
		Order("failed_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func truncateError(cause error) *string {
	if cause == nil {
		return nil
	}
	msg := cause.Error()
	if len(msg) > maxStoredErrorLen {
		msg = msg[:maxStoredErrorLen]
	}
	return &msg
}
