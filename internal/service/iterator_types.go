package service

import (
	"context"

	"github.com/segmentio/kafka-go"

	"attendance/internal/models"
)

// MessageIterator defines the contract for consuming messages from a Kafka
// topic. pkg/kafkaclient.KafkaConsumer implements it.
//
// Implementations are responsible for the lifecycle of the consumer connection.
type MessageIterator interface {
	// Messages returns a receive-only channel of Kafka messages. The channel
	// is closed by the implementation when the consumer is stopped or the
	// underlying source is exhausted.
	Messages() <-chan kafka.Message

	// CommitOffset acknowledges that a message has been handled.
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// Handler receives the interaction events decoded from the command topic.
// The attendance controller satisfies it.
type Handler interface {
	OnCheckIn(name string) (models.Snapshot, error)
	OnMarkerSelect(name string) (models.Snapshot, error)
}
