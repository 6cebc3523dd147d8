package enums

import "fmt"

// OutboxEventType names the events the catalog-sync pipeline emits.
type OutboxEventType string

const (
	OutboxEventCatalogFeedUpserted OutboxEventType = "catalog.feed.upserted"
	OutboxEventCatalogFeedDeleted  OutboxEventType = "catalog.feed.deleted"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventCatalogFeedUpserted,
	OutboxEventCatalogFeedDeleted,
}

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxStatus tracks delivery of an outbox event.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// String implements fmt.Stringer.
func (s OutboxStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OutboxStatus.
func (s OutboxStatus) IsValid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusPublished, OutboxStatusFailed:
		return true
	}
	return false
}
