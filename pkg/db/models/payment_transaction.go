package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

// PaymentTransaction mirrors one provider payment attempt.
// ProviderPaymentID is the idempotency anchor: replays of the same provider
// event upsert into the same row.
type PaymentTransaction struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID         uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;index"`
	Provider          string              `gorm:"column:provider;not null;default:'mercadopago'"`
	ProviderPaymentID string              `gorm:"column:provider_payment_id;not null;unique"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;not null;default:'pix'"`
	Amount            int64               `gorm:"column:amount;not null"`
	Status            string              `gorm:"column:status;not null"`
	StatusDetail      *string             `gorm:"column:status_detail"`
	PayerEmail        *string             `gorm:"column:payer_email"`
	PixQRCode         *string             `gorm:"column:pix_qr_code"`
	PixQRCodeBase64   *string             `gorm:"column:pix_qr_code_base64"`
	TicketURL         *string             `gorm:"column:ticket_url"`
	RawPayload        json.RawMessage     `gorm:"column:raw_payload;type:jsonb"`
	PaidAt            *time.Time          `gorm:"column:paid_at"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
