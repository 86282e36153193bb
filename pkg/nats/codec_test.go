package nats

import (
	"testing"
	"time"

	"cognimed-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	evt := events.BaseEvent{
		Type:       events.PostCreated,
		Data:       map[string]interface{}{"post_id": "p1", "text": "fever"},
		OccurredAt: at,
	}

	data, err := encode(evt)
	require.NoError(t, err)

	got, err := decode(Subject(events.PostCreated), data)
	require.NoError(t, err)
	assert.Equal(t, events.PostCreated, got.EventType())
	assert.Equal(t, "fever", got.Payload()["text"])
	assert.True(t, at.Equal(got.Timestamp()))
}

func TestDecode_TypeFromSubject(t *testing.T) {
	got, err := decode("events.POST_DELETED", []byte(`{"data":{"post_id":"p1"}}`))
	require.NoError(t, err)
	assert.Equal(t, events.PostDeleted, got.EventType())
	assert.False(t, got.Timestamp().IsZero())

	_, err = decode("events.X", []byte("not json"))
	assert.Error(t, err)
}
