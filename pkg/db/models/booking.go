package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

// Booking is a reservation of a property for a date range.
// OwnerID is denormalized from the property at creation time.
// Rows are never deleted, only transitioned to cancelled.
type Booking struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID        uuid.UUID           `gorm:"column:property_id;type:uuid;not null;index"`
	RenterID          uuid.UUID           `gorm:"column:renter_id;type:uuid;not null;index"`
	OwnerID           uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index"`
	CheckInDate       time.Time           `gorm:"column:check_in_date;not null"`
	CheckOutDate      time.Time           `gorm:"column:check_out_date;not null"`
	Units             int                 `gorm:"column:units;not null"`
	BaseAmount        int64               `gorm:"column:base_amount;not null"`
	ClientFeeAmount   int64               `gorm:"column:client_fee_amount;not null"`
	OwnerFeeAmount    int64               `gorm:"column:owner_fee_amount;not null"`
	TotalPaidByRenter int64               `gorm:"column:total_paid_by_renter;not null"`
	OwnerPayoutAmount int64               `gorm:"column:owner_payout_amount;not null"`
	Status            enums.BookingStatus `gorm:"column:status;not null;default:'pending_payment';index"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
