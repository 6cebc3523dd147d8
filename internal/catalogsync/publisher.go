package catalogsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/enums"
	"github.com/horologiq/horologiq-backend/pkg/logger"
	"github.com/horologiq/horologiq-backend/pkg/outbox"
)

// Sink receives decoded feed mutations. The production implementation talks
// to the external advertising catalog API; tests and the default worker wire
// a local sink.
type Sink interface {
	UpsertRows(ctx context.Context, catalogID string, rows []FeedRow) error
	DeleteProduct(ctx context.Context, catalogID, productID string) error
}

// Publisher adapts outbox events into Sink calls. It implements
// outbox.Publisher for the catalog-sync worker.
type Publisher struct {
	sink      Sink
	catalogID string
}

// NewPublisher constructs the worker publisher.
func NewPublisher(sink Sink, catalogID string) (*Publisher, error) {
	if sink == nil {
		return nil, fmt.Errorf("catalog sink required")
	}
	return &Publisher{sink: sink, catalogID: catalogID}, nil
}

// Publish decodes one outbox event and forwards it to the sink.
func (p *Publisher) Publish(ctx context.Context, event models.OutboxEvent) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return fmt.Errorf("decode outbox envelope: %w", err)
	}

	switch event.EventType {
	case enums.OutboxEventCatalogFeedUpserted:
		var payload UpsertPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("decode upsert payload: %w", err)
		}
		return p.sink.UpsertRows(ctx, p.catalogID, payload.Rows)
	case enums.OutboxEventCatalogFeedDeleted:
		var payload DeletePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("decode delete payload: %w", err)
		}
		return p.sink.DeleteProduct(ctx, p.catalogID, payload.ProductID)
	default:
		return fmt.Errorf("unhandled outbox event type %q", event.EventType)
	}
}

// LogSink writes feed mutations to the structured log. It stands in for the
// advertising API client in environments without one configured.
type LogSink struct {
	logg *logger.Logger
}

// NewLogSink constructs the logging sink.
func NewLogSink(logg *logger.Logger) *LogSink {
	return &LogSink{logg: logg}
}

func (s *LogSink) UpsertRows(ctx context.Context, catalogID string, rows []FeedRow) error {
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"catalog_id": catalogID,
			"rows":       len(rows),
		})
		s.logg.Info(ctx, "catalogsync.feed_upsert")
	}
	return nil
}

func (s *LogSink) DeleteProduct(ctx context.Context, catalogID, productID string) error {
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"catalog_id": catalogID,
			"product_id": productID,
		})
		s.logg.Info(ctx, "catalogsync.feed_delete")
	}
	return nil
}
