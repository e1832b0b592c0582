package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hoangvq/summarize-be/shared/rabbitmq"
)

// SummaryEvent is published when a summary reaches a terminal status.
// Downstream consumers (UI refresh, notifications) react to it; the
// pipeline itself never depends on delivery.
type SummaryEvent struct {
	SummaryID  string    `json:"summary_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits summary lifecycle events
type Publisher interface {
	PublishSummaryEvent(ctx context.Context, event *SummaryEvent)
}

// RabbitMQPublisher publishes events to a RabbitMQ exchange
type RabbitMQPublisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewRabbitMQPublisher creates a RabbitMQ-backed event publisher
func NewRabbitMQPublisher(client *rabbitmq.Client, logger *slog.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		client: client,
		logger: logger,
	}
}

// PublishSummaryEvent publishes the event best-effort. Failures are logged
// and swallowed; event delivery never affects the summary state machine.
func (p *RabbitMQPublisher) PublishSummaryEvent(ctx context.Context, event *SummaryEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to encode summary event",
			slog.String("summary_id", event.SummaryID),
			slog.Any("error", err),
		)
		return
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		p.logger.Error("Failed to publish summary event",
			slog.String("summary_id", event.SummaryID),
			slog.String("status", event.Status),
			slog.Any("error", err),
		)
		return
	}

	p.logger.Debug("Summary event published",
		slog.String("summary_id", event.SummaryID),
		slog.String("status", event.Status),
	)
}

// NoopPublisher drops all events. Used when the events section is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishSummaryEvent(ctx context.Context, event *SummaryEvent) {}
