package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
)

// channelBuilder is the slice of the redis client the publisher consumes.
type channelBuilder interface {
	Publish(ctx context.Context, channel string, payload any) error
	RealtimeChannel(parts ...string) string
}

// Event is one entity change pushed to subscribed clients. Consumers
// de-duplicate by entity id; delivery order is not guaranteed relative
// to paginated history fetches.
type Event struct {
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher pushes change events onto per-entity and per-user channels.
// Publishing is fire-and-forget: a dropped event only delays UI refresh.
type Publisher struct {
	redis  channelBuilder
	logger *logger.Logger
}

// NewPublisher builds a realtime publisher. A nil redis client yields a
// no-op publisher, used in tests and single-process setups.
func NewPublisher(redis channelBuilder, logg *logger.Logger) *Publisher {
	return &Publisher{redis: redis, logger: logg}
}

// BookingChanged announces a booking insert or status change to both
// participants' feeds.
func (p *Publisher) BookingChanged(ctx context.Context, booking *models.Booking) {
	if p == nil || p.redis == nil || booking == nil {
		return
	}
	event := Event{
		Entity:     "booking",
		EntityID:   booking.ID.String(),
		Action:     "upsert",
		OccurredAt: time.Now().UTC(),
		Payload:    map[string]string{"status": booking.Status.String()},
	}
	p.publish(ctx, event,
		p.redis.RealtimeChannel("bookings", booking.ID.String()),
		p.redis.RealtimeChannel("users", booking.RenterID.String()),
		p.redis.RealtimeChannel("users", booking.OwnerID.String()),
	)
}

// MessageSent announces a new chat message on the conversation channel
// and both participants' feeds.
func (p *Publisher) MessageSent(ctx context.Context, conversation *models.ChatConversation, message *models.ChatMessage) {
	if p == nil || p.redis == nil || conversation == nil || message == nil {
		return
	}
	payload := map[string]any{
		"conversation_id": conversation.ID.String(),
		"is_system":       message.IsSystem,
	}
	if message.SenderID != nil {
		payload["sender_id"] = message.SenderID.String()
	}
	event := Event{
		Entity:     "chat_message",
		EntityID:   message.ID.String(),
		Action:     "insert",
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	p.publish(ctx, event,
		p.redis.RealtimeChannel("conversations", conversation.ID.String()),
		p.redis.RealtimeChannel("users", conversation.RenterID.String()),
		p.redis.RealtimeChannel("users", conversation.OwnerID.String()),
	)
}

func (p *Publisher) publish(ctx context.Context, event Event, channels ...string) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	for _, channel := range channels {
		if err := p.redis.Publish(ctx, channel, payload); err != nil && p.logger != nil {
			ctx = p.logger.WithField(ctx, "channel", channel)
			p.logger.Warn(ctx, "realtime publish failed")
		}
	}
}
