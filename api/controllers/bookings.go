package controllers

import (
	"net/http"
	"time"

	"github.com/alugafacil/alugafacil-backend/api/responses"
	"github.com/alugafacil/alugafacil-backend/api/validators"
	"github.com/alugafacil/alugafacil-backend/internal/booking"
	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
	"github.com/google/uuid"
)

type quoteRequest struct {
	PropertyID   uuid.UUID `json:"property_id" validate:"required"`
	CheckInDate  string    `json:"check_in_date" validate:"required"`
	CheckOutDate string    `json:"check_out_date" validate:"required"`
}

type createBookingRequest struct {
	PropertyID   uuid.UUID `json:"property_id" validate:"required"`
	CheckInDate  string    `json:"check_in_date" validate:"required"`
	CheckOutDate string    `json:"check_out_date" validate:"required"`
}

func parseBookingDate(value, field string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).
			WithDetails(map[string]any{"field": field, "expected": "YYYY-MM-DD"})
	}
	return t.UTC(), nil
}

// BookingsQuote prices a stay without reserving anything.
func BookingsQuote(svc *booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkIn, err := parseBookingDate(body.CheckInDate, "check_in_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkOut, err := parseBookingDate(body.CheckOutDate, "check_out_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), body.PropertyID, checkIn, checkOut)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// BookingsCreate reserves a property for the caller.
func BookingsCreate(svc *booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkIn, err := parseBookingDate(body.CheckInDate, "check_in_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkOut, err := parseBookingDate(body.CheckOutDate, "check_out_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), caller, booking.CreateInput{
			PropertyID:   body.PropertyID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, booking.FromModel(created))
	}
}

// BookingsGet returns one booking to its renter or owner.
func BookingsGet(svc *booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := parseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.Get(r.Context(), caller, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, booking.FromModel(found))
	}
}

// BookingsList pages bookings from the caller's perspective: their own
// reservations by default, reservations against their properties with
// ?as=owner.
func BookingsList(svc *booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
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

		var list []models.Booking
		var cursor *pagination.Cursor
		switch perspective := r.URL.Query().Get("as"); perspective {
		case "", "renter":
			list, cursor, err = svc.ListForRenter(r.Context(), caller, params)
		case "owner":
			list, cursor, err = svc.ListForOwner(r.Context(), caller, params)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "as must be renter or owner")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPage(booking.FromModels(list), cursor))
	}
}

// BookingsAction moves a booking to a fixed target status. Each lifecycle
// action gets its own route; the service decides whether the caller may
// perform the edge.
func BookingsAction(svc *booking.Service, logg *logger.Logger, target enums.BookingStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := parseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Transition(r.Context(), caller, bookingID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, booking.FromModel(updated))
	}
}
