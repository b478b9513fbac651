package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

// PaymentDTO is the transaction shape returned to clients. RawPayload stays
// server-side.
type PaymentDTO struct {
	ID                uuid.UUID           `json:"id"`
	BookingID         uuid.UUID           `json:"booking_id"`
	Provider          string              `json:"provider"`
	ProviderPaymentID string              `json:"provider_payment_id"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	Amount            int64               `json:"amount"`
	Status            string              `json:"status"`
	StatusDetail      *string             `json:"status_detail,omitempty"`
	PixQRCode         *string             `json:"pix_qr_code,omitempty"`
	PixQRCodeBase64   *string             `json:"pix_qr_code_base64,omitempty"`
	TicketURL         *string             `json:"ticket_url,omitempty"`
	PaidAt            *time.Time          `json:"paid_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// FromModel converts a stored transaction into its API shape.
func FromModel(transaction *models.PaymentTransaction) *PaymentDTO {
	if transaction == nil {
		return nil
	}
	return &PaymentDTO{
		ID:                transaction.ID,
		BookingID:         transaction.BookingID,
		Provider:          transaction.Provider,
		ProviderPaymentID: transaction.ProviderPaymentID,
		PaymentMethod:     transaction.PaymentMethod,
		Amount:            transaction.Amount,
		Status:            transaction.Status,
		StatusDetail:      transaction.StatusDetail,
		PixQRCode:         transaction.PixQRCode,
		PixQRCodeBase64:   transaction.PixQRCodeBase64,
		TicketURL:         transaction.TicketURL,
		PaidAt:            transaction.PaidAt,
		CreatedAt:         transaction.CreatedAt,
		UpdatedAt:         transaction.UpdatedAt,
	}
}

// FromModels converts a page of transactions.
func FromModels(transactions []models.PaymentTransaction) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(transactions))
	for i := range transactions {
		out = append(out, *FromModel(&transactions[i]))
	}
	return out
}
