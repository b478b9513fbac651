package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

// ConversationDTO is the thread shape returned to clients.
type ConversationDTO struct {
	ID            uuid.UUID                `json:"id"`
	BookingID     uuid.UUID                `json:"booking_id"`
	PropertyID    uuid.UUID                `json:"property_id"`
	RenterID      uuid.UUID                `json:"renter_id"`
	OwnerID       uuid.UUID                `json:"owner_id"`
	Status        enums.ConversationStatus `json:"status"`
	LastMessageAt *time.Time               `json:"last_message_at,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

// MessageDTO is the message shape returned to clients. SenderID is absent
// on platform messages.
type MessageDTO struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       *uuid.UUID `json:"sender_id,omitempty"`
	Text           string     `json:"text"`
	IsSystem       bool       `json:"is_system"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ConversationFromModel converts a stored conversation into its API shape.
func ConversationFromModel(conversation *models.ChatConversation) *ConversationDTO {
	if conversation == nil {
		return nil
	}
	return &ConversationDTO{
		ID:            conversation.ID,
		BookingID:     conversation.BookingID,
		PropertyID:    conversation.PropertyID,
		RenterID:      conversation.RenterID,
		OwnerID:       conversation.OwnerID,
		Status:        conversation.Status,
		LastMessageAt: conversation.LastMessageAt,
		CreatedAt:     conversation.CreatedAt,
	}
}

// ConversationsFromModels converts a page of conversations.
func ConversationsFromModels(conversations []models.ChatConversation) []ConversationDTO {
	out := make([]ConversationDTO, 0, len(conversations))
	for i := range conversations {
		out = append(out, *ConversationFromModel(&conversations[i]))
	}
	return out
}

// MessageFromModel converts a stored message into its API shape.
func MessageFromModel(message *models.ChatMessage) *MessageDTO {
	if message == nil {
		return nil
	}
	return &MessageDTO{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Text:           message.Text,
		IsSystem:       message.IsSystem,
		CreatedAt:      message.CreatedAt,
	}
}

// MessagesFromModels converts a page of messages.
func MessagesFromModels(messages []models.ChatMessage) []MessageDTO {
	out := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		out = append(out, *MessageFromModel(&messages[i]))
	}
	return out
}
