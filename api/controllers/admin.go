package controllers

import (
	"net/http"
	"strings"

	"github.com/alugafacil/alugafacil-backend/api/responses"
	"github.com/alugafacil/alugafacil-backend/api/validators"
	"github.com/alugafacil/alugafacil-backend/internal/booking"
	"github.com/alugafacil/alugafacil-backend/internal/chat"
	"github.com/alugafacil/alugafacil-backend/internal/payments"
	"github.com/alugafacil/alugafacil-backend/internal/properties"
	"github.com/alugafacil/alugafacil-backend/internal/users"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
)

type moderatePropertyRequest struct {
	Status   *string `json:"status,omitempty"`
	Verified *bool   `json:"verified,omitempty"`
}

type moderateConversationRequest struct {
	Status string `json:"status" validate:"required"`
}

type setHostVerifiedRequest struct {
	Verified bool `json:"verified"`
}

// AdminPropertiesList pages the moderation queue, optionally filtered by
// status.
func AdminPropertiesList(svc *properties.Service, logg *logger.Logger) http.HandlerFunc {
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

		var status *enums.PropertyStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, parseErr := enums.ParsePropertyStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid property status"))
				return
			}
			status = &parsed
		}

		list, cursor, err := svc.ListForModeration(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPage(properties.FromModels(list), cursor))
	}
}

// AdminPropertiesModerate approves, rejects, or verifies a listing.
func AdminPropertiesModerate(svc *properties.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body moderatePropertyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := properties.ModerationInput{Verified: body.Verified}
		if body.Status != nil {
			status, parseErr := enums.ParsePropertyStatus(*body.Status)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid property status"))
				return
			}
			input.Status = &status
		}

		property, err := svc.Moderate(r.Context(), propertyID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, properties.FromModel(property))
	}
}

// AdminBookingsList pages every booking, optionally filtered by status.
func AdminBookingsList(svc *booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.BookingStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, parseErr := enums.ParseBookingStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid booking status"))
				return
			}
			status = &parsed
		}

		list, cursor, err := svc.ListAll(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPage(booking.FromModels(list), cursor))
	}
}

// AdminTransactionsList pages stored payment transactions, optionally
// filtered by provider status.
func AdminTransactionsList(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := strings.TrimSpace(r.URL.Query().Get("status"))

		list, cursor, err := svc.ListTransactions(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPage(payments.FromModels(list), cursor))
	}
}

// AdminConversationsModerate opens or closes a chat thread.
func AdminConversationsModerate(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		conversationID, err := parseUUIDParam(r, "conversationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body moderateConversationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, parseErr := enums.ParseConversationStatus(body.Status)
		if parseErr != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid conversation status"))
			return
		}

		if err := svc.Moderate(r.Context(), conversationID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}

// AdminSetHostVerified flips the host verification badge on a user.
func AdminSetHostVerified(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := parseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setHostVerifiedRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.SetHostVerified(r.Context(), userID, body.Verified)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}
