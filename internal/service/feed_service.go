package service

import (
	"context"
	"encoding/json"

	"cognimed-be/internal/pkg/logger"
	"cognimed-be/pkg/events"
	pktNats "cognimed-be/pkg/nats"
)

const (
	feedModule = "FeedService"

	FeedDurable = "feed-service"
)

// FeedBroadcaster fans a frame out to the connected feed clients.
type FeedBroadcaster interface {
	Broadcast(frame []byte)
}

// EventSubscriber is satisfied by the NATS subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

type FeedFrame struct {
	Type       string                 `json:"type"`
	OccurredAt string                 `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// FeedService turns post events from the bus into websocket feed frames.
type FeedService struct {
	subscriber  EventSubscriber
	broadcaster FeedBroadcaster
	logger      logger.ILogger
}

func NewFeedService(subscriber EventSubscriber, broadcaster FeedBroadcaster, log logger.ILogger) *FeedService {
	return &FeedService{
		subscriber:  subscriber,
		broadcaster: broadcaster,
		logger:      log,
	}
}

// Start subscribes to every event subject; only post events reach the feed.
func (s *FeedService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+">", FeedDurable, s.Handle)
}

func (s *FeedService) Handle(ctx context.Context, event events.Event) error {
	switch event.EventType() {
	case events.PostCreated, events.PostDeleted:
	default:
		return nil
	}

	frame, err := json.Marshal(FeedFrame{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp().UTC().Format("2006-01-02T15:04:05Z07:00"),
		Data:       event.Payload(),
	})
	if err != nil {
		s.logger.Error(feedModule, "Frame encoding failed", map[string]interface{}{"event": event.EventType(), "error": err})
		return nil
	}

	s.broadcaster.Broadcast(frame)
	s.logger.Debug(feedModule, "Feed frame broadcast", map[string]interface{}{"event": event.EventType()})
	return nil
}
