package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is append-only, ordered by CreatedAt ascending. SenderID is
// nil for platform-generated messages.
type ChatMessage struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ConversationID uuid.UUID  `gorm:"column:conversation_id;type:uuid;not null;index"`
	SenderID       *uuid.UUID `gorm:"column:sender_id;type:uuid"`
	Text           string     `gorm:"column:text;not null"`
	IsSystem       bool       `gorm:"column:is_system;not null;default:false"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime;index"`
}
