package service

import (
	"context"
	"encoding/json"

	"agent-assist-be/internal/pkg/logger"
	"agent-assist-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventForwarder ships events out of the process.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	logger     logger.ILogger
}

// NewConsumerService drains the suggestion topic. forwarder may be nil, in
// which case events are only logged.
func NewConsumerService(subscriber message.Subscriber, topicName string, forwarder EventForwarder, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var evt events.SuggestionEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("Events", "Failed to unmarshal suggestion event", map[string]interface{}{"error": err.Error()})
		// Malformed payloads never succeed on retry.
		msg.Ack()
		return
	}

	if cs.forwarder == nil {
		cs.logger.Debug("Events", "Suggestion event dropped, no forwarder", map[string]interface{}{
			"type":     evt.Type,
			"chat_key": evt.ChatKey.String(),
		})
		msg.Ack()
		return
	}

	if err := cs.forwarder.Publish(ctx, evt); err != nil {
		cs.logger.Warn("Events", "Failed to forward suggestion event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	msg.Ack()
}
