package mercadopago

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PaymentRequest is the POST /v1/payments body for a PIX charge.
type PaymentRequest struct {
	TransactionAmount float64           `json:"transaction_amount"`
	Description       string            `json:"description"`
	PaymentMethodID   string            `json:"payment_method_id"`
	ExternalReference string            `json:"external_reference"`
	NotificationURL   string            `json:"notification_url,omitempty"`
	Payer             Payer             `json:"payer"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Payer identifies the paying customer.
type Payer struct {
	Email          string          `json:"email"`
	Identification *Identification `json:"identification,omitempty"`
}

// Identification carries the payer tax document, CPF for PIX.
type Identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// ID tolerates the provider sending payment ids as either JSON numbers
// or strings.
type ID string

func (i *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*i = ID(n.String())
		return nil
	}
	*i = ""
	return nil
}

// String returns the id in its canonical string form.
func (i ID) String() string { return string(i) }

// Payment is the provider's payment representation, reduced to the fields
// the reconciliation flow consumes.
type Payment struct {
	ID                 ID                  `json:"id"`
	Status             string              `json:"status"`
	StatusDetail       string              `json:"status_detail"`
	PaymentMethodID    string              `json:"payment_method_id"`
	TransactionAmount  float64             `json:"transaction_amount"`
	ExternalReference  string              `json:"external_reference"`
	DateApproved       string              `json:"date_approved"`
	Payer              Payer               `json:"payer"`
	Metadata           map[string]any      `json:"metadata"`
	PointOfInteraction *PointOfInteraction `json:"point_of_interaction,omitempty"`

	// RawPayload is the unmodified provider response body.
	RawPayload []byte `json:"-"`
}

// PointOfInteraction nests the PIX artifacts in the provider response.
type PointOfInteraction struct {
	TransactionData TransactionData `json:"transaction_data"`
}

// TransactionData carries the renderable PIX payload.
type TransactionData struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	TicketURL    string `json:"ticket_url"`
}

// PaymentID returns the provider payment id as a string.
func (p *Payment) PaymentID() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.ID.String())
}

// NormalizedStatus lower-cases the provider status for storage.
func (p *Payment) NormalizedStatus() string {
	if p == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.Status))
}

// IsApproved reports whether the payment settled.
func (p *Payment) IsApproved() bool {
	return p.NormalizedStatus() == "approved"
}

// HasPixPayload reports whether the payment carries a renderable PIX code.
func (p *Payment) HasPixPayload() bool {
	if p == nil || p.PointOfInteraction == nil {
		return false
	}
	data := p.PointOfInteraction.TransactionData
	return data.QRCode != "" || data.QRCodeBase64 != ""
}

// BookingReference resolves the owning booking id from the external
// reference, falling back to the booking_id metadata field.
func (p *Payment) BookingReference() string {
	if p == nil {
		return ""
	}
	if ref := strings.TrimSpace(p.ExternalReference); ref != "" {
		return ref
	}
	if p.Metadata == nil {
		return ""
	}
	switch v := p.Metadata["booking_id"].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
