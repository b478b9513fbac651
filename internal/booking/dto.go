package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

// CreateInput describes a renter's direct booking request.
type CreateInput struct {
	PropertyID   uuid.UUID
	CheckInDate  time.Time
	CheckOutDate time.Time
}

// BookingDTO is the reservation shape returned to clients.
type BookingDTO struct {
	ID                uuid.UUID           `json:"id"`
	PropertyID        uuid.UUID           `json:"property_id"`
	RenterID          uuid.UUID           `json:"renter_id"`
	OwnerID           uuid.UUID           `json:"owner_id"`
	CheckInDate       time.Time           `json:"check_in_date"`
	CheckOutDate      time.Time           `json:"check_out_date"`
	Units             int                 `json:"units"`
	BaseAmount        int64               `json:"base_amount"`
	ClientFeeAmount   int64               `json:"client_fee_amount"`
	OwnerFeeAmount    int64               `json:"owner_fee_amount"`
	TotalPaidByRenter int64               `json:"total_paid_by_renter"`
	OwnerPayoutAmount int64               `json:"owner_payout_amount"`
	Status            enums.BookingStatus `json:"status"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// FromModel converts a stored booking into its API shape.
func FromModel(booking *models.Booking) *BookingDTO {
	if booking == nil {
		return nil
	}
	return &BookingDTO{
		ID:                booking.ID,
		PropertyID:        booking.PropertyID,
		RenterID:          booking.RenterID,
		OwnerID:           booking.OwnerID,
		CheckInDate:       booking.CheckInDate,
		CheckOutDate:      booking.CheckOutDate,
		Units:             booking.Units,
		BaseAmount:        booking.BaseAmount,
		ClientFeeAmount:   booking.ClientFeeAmount,
		OwnerFeeAmount:    booking.OwnerFeeAmount,
		TotalPaidByRenter: booking.TotalPaidByRenter,
		OwnerPayoutAmount: booking.OwnerPayoutAmount,
		Status:            booking.Status,
		CreatedAt:         booking.CreatedAt,
		UpdatedAt:         booking.UpdatedAt,
	}
}

// FromModels converts a page of bookings.
func FromModels(bookings []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(bookings))
	for i := range bookings {
		out = append(out, *FromModel(&bookings[i]))
	}
	return out
}
