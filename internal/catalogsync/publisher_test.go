package catalogsync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/enums"
	"github.com/horologiq/horologiq-backend/pkg/outbox"
)

type recordingSink struct {
	upserts [][]FeedRow
	deletes []string
	lastCat string
}

func (s *recordingSink) UpsertRows(ctx context.Context, catalogID string, rows []FeedRow) error {
	s.lastCat = catalogID
	s.upserts = append(s.upserts, rows)
	return nil
}

func (s *recordingSink) DeleteProduct(ctx context.Context, catalogID, productID string) error {
	s.lastCat = catalogID
	s.deletes = append(s.deletes, productID)
	return nil
}

func envelopeEvent(t *testing.T, eventType enums.OutboxEventType, data any) models.OutboxEvent {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)

	return models.OutboxEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: uuid.New(),
		Payload:     payload,
	}
}

func TestPublisherDispatchesUpsert(t *testing.T) {
	sink := &recordingSink{}
	pub, err := NewPublisher(sink, "catalog-42")
	require.NoError(t, err)

	event := envelopeEvent(t, enums.OutboxEventCatalogFeedUpserted, UpsertPayload{
		ProductID: uuid.NewString(),
		Rows:      []FeedRow{{ID: "HW-500_black", Price: "2500.00 IDR"}},
	})

	require.NoError(t, pub.Publish(context.Background(), event))
	require.Len(t, sink.upserts, 1)
	assert.Equal(t, "HW-500_black", sink.upserts[0][0].ID)
	assert.Equal(t, "catalog-42", sink.lastCat)
}

func TestPublisherDispatchesDelete(t *testing.T) {
	sink := &recordingSink{}
	pub, err := NewPublisher(sink, "catalog-42")
	require.NoError(t, err)

	productID := uuid.NewString()
	event := envelopeEvent(t, enums.OutboxEventCatalogFeedDeleted, DeletePayload{ProductID: productID})

	require.NoError(t, pub.Publish(context.Background(), event))
	require.Len(t, sink.deletes, 1)
	assert.Equal(t, productID, sink.deletes[0])
}

func TestPublisherRejectsMalformedPayload(t *testing.T) {
	sink := &recordingSink{}
	pub, err := NewPublisher(sink, "catalog-42")
	require.NoError(t, err)

	event := models.OutboxEvent{
		EventType: enums.OutboxEventCatalogFeedUpserted,
		Payload:   json.RawMessage(`not json`),
	}
	require.Error(t, pub.Publish(context.Background(), event))

	event = envelopeEvent(t, enums.OutboxEventType("catalog.feed.renamed"), DeletePayload{})
	require.Error(t, pub.Publish(context.Background(), event))
}
