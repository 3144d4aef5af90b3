// Package broker defines the interface for publishing report records and
// provides implementations.
package broker

import (
	"context"
	"errors"
)

// ErrClosed is returned when publishing through a closed broker.
var ErrClosed = errors.New("broker is closed")

// Publisher abstracts message publishing.
// This interface supports both in-memory and distributed (Redpanda/Kafka) implementations.
type Publisher interface {
	// Publish sends a message to a topic with a key.
	// For Redpanda/Kafka, key is used for partition assignment.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message is a published record.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Timestamp int64
}
