package controllers

import (
	"net/http"
	"strings"

	"github.com/alugafacil/alugafacil-backend/api/responses"
	"github.com/alugafacil/alugafacil-backend/api/validators"
	"github.com/alugafacil/alugafacil-backend/internal/payments"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
)

type createPaymentRequest struct {
	PayerEmail string `json:"payer_email" validate:"required,email"`
	PayerTaxID string `json:"payer_tax_id,omitempty" validate:"omitempty,min=11,max=14"`
}

// PaymentsCreate requests a PIX charge for a booking. Replays reuse the
// live prior charge instead of opening a second one.
func PaymentsCreate(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
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

		var body createPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transaction, err := svc.Create(r.Context(), caller, payments.CreateInput{
			BookingID:  bookingID,
			PayerEmail: body.PayerEmail,
			PayerTaxID: body.PayerTaxID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, payments.FromModel(transaction))
	}
}

// PaymentsCheck re-queries the provider for the booking's payment and
// applies whatever status comes back.
func PaymentsCheck(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
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

		explicitID := strings.TrimSpace(r.URL.Query().Get("payment_id"))

		transaction, err := svc.Check(r.Context(), caller, bookingID, explicitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payments.FromModel(transaction))
	}
}

// PaymentsLatest returns the booking's most recent transaction without
// contacting the provider.
func PaymentsLatest(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
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

		transaction, err := svc.FindLatestForBooking(r.Context(), caller, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payments.FromModel(transaction))
	}
}
