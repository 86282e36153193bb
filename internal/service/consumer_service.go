package service

import (
	"context"
	"encoding/json"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "ConsumerService"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService runs queued index rebuilds one at a time.
type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	indexService IIndexService
	events       events.Publisher
	logger       logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	indexService IIndexService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		indexService: indexService,
		events:       eventPublisher,
		logger:       log,
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
	var payload dto.RebuildJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal rebuild job", map[string]interface{}{"error": err})
		msg.Ack()
		return
	}

	cs.logger.Info(consumerModule, "Running index rebuild", map[string]interface{}{
		"message_id":   msg.UUID,
		"requested_by": payload.RequestedBy,
	})

	res, err := cs.indexService.Rebuild(ctx, nil)
	if err != nil {
		// The previous index stays in place.
		cs.logger.Error(consumerModule, "Index rebuild job failed", map[string]interface{}{"error": err})
		msg.Ack()
		return
	}

	if cs.events != nil {
		evt := events.New(events.IndexRebuilt, map[string]interface{}{
			"indexed":      res.Indexed,
			"requested_by": payload.RequestedBy,
		})
		if err := cs.events.Publish(ctx, evt); err != nil {
			cs.logger.Warn(consumerModule, "Failed to publish INDEX_REBUILT event", map[string]interface{}{"error": err})
		}
	}

	msg.Ack()
}
