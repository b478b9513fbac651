package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
)

type recordingRedis struct {
	published map[string][][]byte
}

func (r *recordingRedis) Publish(ctx context.Context, channel string, payload any) error {
	if r.published == nil {
		r.published = map[string][][]byte{}
	}
	r.published[channel] = append(r.published[channel], payload.([]byte))
	return nil
}

func (r *recordingRedis) RealtimeChannel(parts ...string) string {
	channel := "af:rt"
	for _, part := range parts {
		channel += ":" + part
	}
	return channel
}

func TestBookingChangedPublishesToParticipants(t *testing.T) {
	redis := &recordingRedis{}
	publisher := NewPublisher(redis, logger.New(logger.Options{ServiceName: "realtime-test"}))

	booking := &models.Booking{
		ID:       uuid.New(),
		RenterID: uuid.New(),
		OwnerID:  uuid.New(),
		Status:   enums.BookingStatusPreChecking,
	}
	publisher.BookingChanged(context.Background(), booking)

	require.Len(t, redis.published, 3)
	bookingChannel := "af:rt:bookings:" + booking.ID.String()
	require.Contains(t, redis.published, bookingChannel)

	var event Event
	require.NoError(t, json.Unmarshal(redis.published[bookingChannel][0], &event))
	require.Equal(t, "booking", event.Entity)
	require.Equal(t, booking.ID.String(), event.EntityID)
}

func TestMessageSentPublishes(t *testing.T) {
	redis := &recordingRedis{}
	publisher := NewPublisher(redis, nil)

	conversation := &models.ChatConversation{ID: uuid.New(), RenterID: uuid.New(), OwnerID: uuid.New()}
	message := &models.ChatMessage{ID: uuid.New(), SenderID: &conversation.RenterID}
	publisher.MessageSent(context.Background(), conversation, message)

	require.Len(t, redis.published, 3)
}

func TestMessageSentOmitsSenderForSystemMessages(t *testing.T) {
	redis := &recordingRedis{}
	publisher := NewPublisher(redis, nil)

	conversation := &models.ChatConversation{ID: uuid.New(), RenterID: uuid.New(), OwnerID: uuid.New()}
	message := &models.ChatMessage{ID: uuid.New(), IsSystem: true}
	publisher.MessageSent(context.Background(), conversation, message)

	channel := redis.RealtimeChannel("conversations", conversation.ID.String())
	var event Event
	require.NoError(t, json.Unmarshal(redis.published[channel][0], &event))
	payload, ok := event.Payload.(map[string]any)
	require.True(t, ok)
	require.NotContains(t, payload, "sender_id")
	require.Equal(t, true, payload["is_system"])
}

func TestNilPublisherSafe(t *testing.T) {
	var publisher *Publisher
	publisher.BookingChanged(context.Background(), &models.Booking{})

	NewPublisher(nil, nil).MessageSent(context.Background(), nil, nil)
}
