// Package events publishes run lifecycle events to Kafka. The publisher is
// optional: a nil *KafkaPublisher is a no-op, and publish failures are
// logged and swallowed so they never affect a run.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event is one run lifecycle record.
type Event struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	Team      string    `json:"team,omitempty"`
	Query     string    `json:"query,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	TypeRunStarted   = "run.started"
	TypeTeamStarted  = "team.started"
	TypeTeamFinished = "team.finished"
	TypeRunFinished  = "run.finished"
	TypeRunFailed    = "run.failed"
)

// Publisher emits run events. Implementations must never fail the caller.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic, keyed by run ID so one
// run's events land on one partition in order. Nil receivers are no-ops.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaPublisher builds a publisher for the given brokers and topic.
// Returns nil when brokers is empty, which disables event publishing.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &KafkaPublisher{writer: w, now: time.Now}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Publish writes one event. Failures are logged, never returned.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) {
	if p == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = p.now()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("event marshal failed", "type", ev.Type, "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.RunID),
		Value: value,
		Time:  ev.Timestamp,
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		slog.Warn("event publish failed", "type", ev.Type, "error", err)
	}
}

// Close releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
