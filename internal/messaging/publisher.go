package messaging

import (
	"context"

	"github.com/foodsafe/fs-indexer/internal/domain"
)

// EventEnvelope is the wire format for published lot events. The kind
// is repeated in the payload so consumers do not have to parse the
// subject to dispatch.
type EventEnvelope struct {
	Kind  domain.EventKind `json:"kind"`
	Event domain.Event     `json:"event"`
}

// Publisher defines the interface for publishing lot events to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a decoded lot event to the message broker
	PublishEvent(ctx context.Context, event domain.Event) error
	// Close closes the connection
	Close()
}
