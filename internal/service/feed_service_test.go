package service

import (
	"context"
	"encoding/json"
	"testing"

	"cognimed-be/internal/pkg/logger"
	"cognimed-be/pkg/events"
	pktNats "cognimed-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	frames [][]byte
}

func (b *recordingBroadcaster) Broadcast(frame []byte) {
	b.frames = append(b.frames, frame)
}

type capturingSubscriber struct {
	subject string
	durable string
	handler pktNats.EventHandler
}

func (s *capturingSubscriber) Subscribe(ctx context.Context, subject, durable string, handler pktNats.EventHandler) error {
	s.subject, s.durable, s.handler = subject, durable, handler
	return nil
}

func TestFeedService(t *testing.T) {
	ctx := context.Background()
	sub := &capturingSubscriber{}
	hub := &recordingBroadcaster{}
	svc := NewFeedService(sub, hub, logger.NewNopLogger())

	require.NoError(t, svc.Start(ctx))
	assert.Equal(t, "events.>", sub.subject)
	assert.Equal(t, FeedDurable, sub.durable)

	tests := []struct {
		name      string
		eventType string
		wantFrame bool
	}{
		{name: "post created", eventType: events.PostCreated, wantFrame: true},
		{name: "post deleted", eventType: events.PostDeleted, wantFrame: true},
		{name: "prescription processed", eventType: events.PrescriptionProcessed},
		{name: "index rebuilt", eventType: events.IndexRebuilt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub.frames = nil
			err := sub.handler(ctx, events.New(tt.eventType, map[string]interface{}{"post_id": "p1"}))
			require.NoError(t, err)

			if !tt.wantFrame {
				assert.Empty(t, hub.frames)
				return
			}
			require.Len(t, hub.frames, 1)
			var frame FeedFrame
			require.NoError(t, json.Unmarshal(hub.frames[0], &frame))
			assert.Equal(t, tt.eventType, frame.Type)
			assert.Equal(t, "p1", frame.Data["post_id"])
		})
	}
}
