package enums

import "fmt"

// OutboxEventType is the canonical event_type for order lifecycle events.
type OutboxEventType string

const (
	OutboxEventOrderCreated   OutboxEventType = "order.created"
	OutboxEventOrderPaid      OutboxEventType = "order.paid"
	OutboxEventOrderCancelled OutboxEventType = "order.cancelled"
	OutboxEventOrderRefunded  OutboxEventType = "order.refunded"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventOrderCreated,
	OutboxEventOrderPaid,
	OutboxEventOrderCancelled,
	OutboxEventOrderRefunded,
}

// IsValid reports whether the value matches the canonical outbox event_type enum.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts the raw string to OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// AggregateType identifies the owning aggregate of an outbox event.
type AggregateType string

const (
	AggregateOrder AggregateType = "order"
)
