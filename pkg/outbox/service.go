package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horologiq/horologiq-backend/pkg/db"
	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/enums"
	"github.com/horologiq/horologiq-backend/pkg/logger"
	"github.com/horologiq/horologiq-backend/pkg/metrics"
)

const payloadVersion = 1

// Publisher delivers one event to the downstream consumer. The catalog-sync
// worker supplies the implementation; this package only owns the drain loop.
type Publisher interface {
	Publish(ctx context.Context, event models.OutboxEvent) error
}

// Service wraps enqueueing and draining of outbox events.
type Service struct {
	repo        *Repository
	dbClient    *db.Client
	logg        *logger.Logger
	metrics     *metrics.CatalogSyncMetrics
	maxAttempts int
}

// NewService constructs the outbox service.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger, m *metrics.CatalogSyncMetrics, maxAttempts int) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Service{
		repo:        repo,
		dbClient:    dbClient,
		logg:        logg,
		metrics:     m,
		maxAttempts: maxAttempts,
	}, nil
}

// EnqueueTx wraps data in a versioned envelope and appends it inside the
// caller's transaction.
func (s *Service) EnqueueTx(tx *gorm.DB, eventType enums.OutboxEventType, aggregateID uuid.UUID, data any) error {
	if !eventType.IsValid() {
		return fmt.Errorf("invalid outbox event type %q", eventType)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	envelope := PayloadEnvelope{
		Version:    payloadVersion,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal outbox envelope: %w", err)
	}
	return s.repo.InsertTx(tx, &models.OutboxEvent{
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
	})
}

// DrainOnce fetches one batch of pending events and pushes each through the
// publisher. Failures bump the attempt count; events that exhaust
// maxAttempts are parked in the DLQ. Returns the number of events published.
func (s *Service) DrainOnce(ctx context.Context, batchSize int, publisher Publisher) (int, error) {
	start := time.Now()
	events, err := s.repo.FetchPending(ctx, batchSize)
	if err != nil {
		s.metrics.ObserveBatch("fetch_error", time.Since(start))
		return 0, fmt.Errorf("fetch pending outbox events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	published := 0
	for _, event := range events {
		if err := publisher.Publish(ctx, event); err != nil {
			s.metrics.IncFailed(event.EventType.String())
			s.handleFailure(ctx, event, err)
			continue
		}
		if err := s.repo.MarkPublished(ctx, event.ID); err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "outbox.mark_published_failed", err)
			}
			continue
		}
		s.metrics.IncPublished(event.EventType.String())
		published++
	}

	outcome := "ok"
	if published < len(events) {
		outcome = "partial"
	}
	s.metrics.ObserveBatch(outcome, time.Since(start))
	return published, nil
}

func (s *Service) handleFailure(ctx context.Context, event models.OutboxEvent, cause error) {
	if event.AttemptCount+1 >= s.maxAttempts {
		err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.ParkTx(tx, event, cause)
		})
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "outbox.park_failed", err)
			}
			return
		}
		s.metrics.IncDeadLettered()
		if s.logg != nil {
			ctx = s.logg.WithFields(ctx, map[string]any{
				"event_id":   event.ID.String(),
				"event_type": event.EventType.String(),
			})
			s.logg.Warn(ctx, "outbox.event_dead_lettered")
		}
		return
	}
	if err := s.repo.RecordFailure(ctx, event.ID, cause); err != nil && s.logg != nil {
		s.logg.Error(ctx, "outbox.record_failure_failed", err)
	}
}

// Run drains the outbox on the given interval until the context is canceled.
func (s *Service) Run(ctx context.Context, batchSize int, interval time.Duration, publisher Publisher) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.DrainOnce(ctx, batchSize, publisher); err != nil && s.logg != nil {
				s.logg.Error(ctx, "outbox.drain_failed", err)
			}
		}
	}
}
