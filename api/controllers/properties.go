package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/api/middleware"
	"github.com/alugafacil/alugafacil-backend/api/responses"
	"github.com/alugafacil/alugafacil-backend/api/validators"
	"github.com/alugafacil/alugafacil-backend/internal/properties"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
)

type createPropertyRequest struct {
	Title           string   `json:"title" validate:"required,min=3,max=160"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=4000"`
	Price           int64    `json:"price" validate:"required,gt=0"`
	RentType        string   `json:"rent_type,omitempty"`
	CleaningFee     int64    `json:"cleaning_fee,omitempty" validate:"gte=0"`
	SecurityDeposit int64    `json:"security_deposit,omitempty" validate:"gte=0"`
	MinimumNights   int      `json:"minimum_nights,omitempty" validate:"gte=0"`
	GuestsCapacity  int      `json:"guests_capacity,omitempty" validate:"gte=0"`
	Bedrooms        int      `json:"bedrooms,omitempty" validate:"gte=0"`
	Bathrooms       int      `json:"bathrooms,omitempty" validate:"gte=0"`
	GarageSpots     int      `json:"garage_spots,omitempty" validate:"gte=0"`
	Photos          []string `json:"photos,omitempty" validate:"max=20"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	AddressText     string   `json:"address_text,omitempty" validate:"max=400"`
	PostalCode      string   `json:"postal_code,omitempty" validate:"max=16"`
}

type updatePropertyRequest struct {
	Title           *string  `json:"title,omitempty" validate:"omitempty,min=3,max=160"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=4000"`
	Price           *int64   `json:"price,omitempty" validate:"omitempty,gt=0"`
	RentType        *string  `json:"rent_type,omitempty"`
	CleaningFee     *int64   `json:"cleaning_fee,omitempty" validate:"omitempty,gte=0"`
	SecurityDeposit *int64   `json:"security_deposit,omitempty" validate:"omitempty,gte=0"`
	MinimumNights   *int     `json:"minimum_nights,omitempty" validate:"omitempty,gte=0"`
	GuestsCapacity  *int     `json:"guests_capacity,omitempty" validate:"omitempty,gte=0"`
	Bedrooms        *int     `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms       *int     `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	GarageSpots     *int     `json:"garage_spots,omitempty" validate:"omitempty,gte=0"`
	Photos          []string `json:"photos,omitempty" validate:"max=20"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	AddressText     *string  `json:"address_text,omitempty" validate:"omitempty,max=400"`
	PostalCode      *string  `json:"postal_code,omitempty" validate:"omitempty,max=16"`
}

// PropertiesCreate registers a new listing; it enters the moderation queue.
func PropertiesCreate(svc *properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createPropertyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := properties.CreateInput{
			Title:           validators.SanitizeString(body.Title, 160),
			Description:     body.Description,
			Price:           body.Price,
			CleaningFee:     body.CleaningFee,
			SecurityDeposit: body.SecurityDeposit,
			MinimumNights:   body.MinimumNights,
			GuestsCapacity:  body.GuestsCapacity,
			Bedrooms:        body.Bedrooms,
			Bathrooms:       body.Bathrooms,
			GarageSpots:     body.GarageSpots,
			Photos:          body.Photos,
			Latitude:        body.Latitude,
			Longitude:       body.Longitude,
			AddressText:     body.AddressText,
			PostalCode:      body.PostalCode,
		}
		if body.RentType != "" {
			rentType, err := enums.ParseRentType(body.RentType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rent type"))
				return
			}
			input.RentType = rentType
		}

		property, err := svc.Create(r.Context(), caller, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, properties.FromModel(property))
	}
}

// PropertiesList returns the public page of approved listings.
func PropertiesList(svc *properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, cursor, err := svc.ListApproved(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPage(properties.FromModels(list), cursor))
	}
}

// PropertiesListMine returns the caller's own listings in any status.
func PropertiesListMine(svc *properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, cursor, err := svc.ListForOwner(r.Context(), caller, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPage(properties.FromModels(list), cursor))
	}
}

// PropertiesGet returns one listing. Non-approved listings stay hidden from
// everyone but their owner and admins.
func PropertiesGet(svc *properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		propertyID, err := parseUUIDParam(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller := uuid.Nil
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			if parsed, parseErr := uuid.Parse(raw); parseErr == nil {
				caller = parsed
			}
		}
		role := enums.UserRole(middleware.RoleFromContext(r.Context()))

		property, err := svc.Get(r.Context(), caller, role, propertyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, properties.FromModel(property))
	}
}

// PropertiesUpdate edits a listing; any change sends it back to moderation.
func PropertiesUpdate(svc *properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		propertyID, err := parseUUIDParam(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePropertyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := properties.UpdateInput{
			Title:           body.Title,
			Description:     body.Description,
			Price:           body.Price,
			CleaningFee:     body.CleaningFee,
			SecurityDeposit: body.SecurityDeposit,
			MinimumNights:   body.MinimumNights,
			GuestsCapacity:  body.GuestsCapacity,
			Bedrooms:        body.Bedrooms,
			Bathrooms:       body.Bathrooms,
			GarageSpots:     body.GarageSpots,
			Photos:          body.Photos,
			Latitude:        body.Latitude,
			Longitude:       body.Longitude,
			AddressText:     body.AddressText,
			PostalCode:      body.PostalCode,
		}
		if body.RentType != nil {
			rentType, err := enums.ParseRentType(*body.RentType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rent type"))
				return
			}
			input.RentType = &rentType
		}

		property, err := svc.Update(r.Context(), caller, propertyID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, properties.FromModel(property))
	}
}

// PropertiesDelete removes a listing owned by the caller.
func PropertiesDelete(svc *properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		propertyID, err := parseUUIDParam(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), caller, propertyID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
