package properties

import (
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

// PropertyDTO is the listing shape returned to clients.
type PropertyDTO struct {
	ID              uuid.UUID            `json:"id"`
	OwnerID         uuid.UUID            `json:"owner_id"`
	Title           string               `json:"title"`
	Description     *string              `json:"description,omitempty"`
	Price           int64                `json:"price"`
	RentType        enums.RentType       `json:"rent_type"`
	CleaningFee     int64                `json:"cleaning_fee"`
	SecurityDeposit int64                `json:"security_deposit"`
	MinimumNights   int                  `json:"minimum_nights"`
	GuestsCapacity  int                  `json:"guests_capacity"`
	Bedrooms        int                  `json:"bedrooms"`
	Bathrooms       int                  `json:"bathrooms"`
	GarageSpots     int                  `json:"garage_spots"`
	Status          enums.PropertyStatus `json:"status"`
	Verified        bool                 `json:"verified"`
	Photos          []string             `json:"photos"`
	Latitude        *float64             `json:"latitude,omitempty"`
	Longitude       *float64             `json:"longitude,omitempty"`
	AddressText     string               `json:"address_text"`
	PostalCode      string               `json:"postal_code"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// FromModel converts a stored property into its API shape.
func FromModel(property *models.Property) *PropertyDTO {
	if property == nil {
		return nil
	}
	return &PropertyDTO{
		ID:              property.ID,
		OwnerID:         property.OwnerID,
		Title:           property.Title,
		Description:     property.Description,
		Price:           property.Price,
		RentType:        property.RentType,
		CleaningFee:     property.CleaningFee,
		SecurityDeposit: property.SecurityDeposit,
		MinimumNights:   property.MinimumNights,
		GuestsCapacity:  property.GuestsCapacity,
		Bedrooms:        property.Bedrooms,
		Bathrooms:       property.Bathrooms,
		GarageSpots:     property.GarageSpots,
		Status:          property.Status,
		Verified:        property.Verified,
		Photos:          append([]string{}, property.Photos...),
		Latitude:        property.Latitude,
		Longitude:       property.Longitude,
		AddressText:     property.AddressText,
		PostalCode:      property.PostalCode,
		CreatedAt:       property.CreatedAt,
		UpdatedAt:       property.UpdatedAt,
	}
}

// FromModels converts a page of properties.
func FromModels(properties []models.Property) []PropertyDTO {
	out := make([]PropertyDTO, 0, len(properties))
	for i := range properties {
		out = append(out, *FromModel(&properties[i]))
	}
	return out
}
