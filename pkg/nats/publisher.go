package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agent-assist-be/internal/pkg/logger"
	"agent-assist-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const streamName = "EVENTS"

// Publisher handles sending events to the NATS bus.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger logger.ILogger
}

// NewPublisher connects to NATS and makes sure the events stream exists.
func NewPublisher(url string, log logger.ILogger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		// The stream may be managed elsewhere or NATS may not be ready yet.
		log.Warn("Events", "Failed to ensure stream", map[string]interface{}{"stream": streamName, "error": err.Error()})
	}

	return &Publisher{nc: nc, js: js, logger: log}, nil
}

// Publish sends an event to its subject. JetStream drops a second publish
// with the same message id inside the stream's duplicate window.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := Subject(event)
	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(MessageID(event))); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

// Subject is events.<type>, followed by .<key> for keyed events so that
// subscribers can follow a single conversation.
func Subject(event events.Event) string {
	if keyed, ok := event.(events.Keyed); ok && keyed.Key() != "" {
		return fmt.Sprintf("events.%s.%s", event.EventType(), keyed.Key())
	}
	return fmt.Sprintf("events.%s", event.EventType())
}

func MessageID(event events.Event) string {
	id := fmt.Sprintf("%s-%d", event.EventType(), event.Timestamp().UnixNano())
	if keyed, ok := event.(events.Keyed); ok && keyed.Key() != "" {
		id += "-" + keyed.Key()
	}
	return id
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
