package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

// Property is a rental listing owned by a host, moderated by admins.
type Property struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID         uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;index"`
	Title           string               `gorm:"column:title;not null"`
	Description     *string              `gorm:"column:description"`
	Price           int64                `gorm:"column:price;not null"`
	RentType        enums.RentType       `gorm:"column:rent_type;not null;default:'daily'"`
	CleaningFee     int64                `gorm:"column:cleaning_fee;not null;default:0"`
	SecurityDeposit int64                `gorm:"column:security_deposit;not null;default:0"`
	MinimumNights   int                  `gorm:"column:minimum_nights;not null;default:1"`
	GuestsCapacity  int                  `gorm:"column:guests_capacity;not null;default:1"`
	Bedrooms        int                  `gorm:"column:bedrooms;not null;default:0"`
	Bathrooms       int                  `gorm:"column:bathrooms;not null;default:0"`
	GarageSpots     int                  `gorm:"column:garage_spots;not null;default:0"`
	Status          enums.PropertyStatus `gorm:"column:status;not null;default:'pending';index"`
	Verified        bool                 `gorm:"column:verified;not null;default:false"`
	Photos          pq.StringArray       `gorm:"column:photos;type:text[]"`
	Latitude        *float64             `gorm:"column:latitude"`
	Longitude       *float64             `gorm:"column:longitude"`
	AddressText     string               `gorm:"column:address_text"`
	PostalCode      string               `gorm:"column:postal_code"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
