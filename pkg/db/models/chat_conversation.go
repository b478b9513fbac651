package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

// ChatConversation is the 1:1 message thread attached to a booking,
// created lazily on first chat access. Never deleted.
type ChatConversation struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID     uuid.UUID                `gorm:"column:booking_id;type:uuid;not null;unique"`
	PropertyID    uuid.UUID                `gorm:"column:property_id;type:uuid;not null"`
	RenterID      uuid.UUID                `gorm:"column:renter_id;type:uuid;not null;index"`
	OwnerID       uuid.UUID                `gorm:"column:owner_id;type:uuid;not null;index"`
	Status        enums.ConversationStatus `gorm:"column:status;not null;default:'open'"`
	LastMessageAt *time.Time               `gorm:"column:last_message_at"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
