package payments

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/db"
	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/mercadopago"
	"github.com/alugafacil/alugafacil-backend/pkg/metrics"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

const providerName = "mercadopago"

// ProviderClient is the slice of the payment provider the service consumes.
type ProviderClient interface {
	CreatePayment(ctx context.Context, idempotencyKey string, req mercadopago.PaymentRequest) (*mercadopago.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
	WebhookSecret() string
}

// BookingFinalizer is the slice of the booking service the payment flow
// consumes.
type BookingFinalizer interface {
	FindByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	FinalizeOnPayment(ctx context.Context, bookingID uuid.UUID) (bool, error)
}

// ConfirmationNotifier is told when a payment approval confirmed a
// booking. Failures are the notifier's problem, never the payment's.
type ConfirmationNotifier interface {
	BookingConfirmed(ctx context.Context, booking *models.Booking, transaction *models.PaymentTransaction)
}

// SystemAnnouncer posts the platform's confirmation message into the
// booking's conversation. Same contract as the notifier: fire and forget.
type SystemAnnouncer interface {
	PaymentConfirmed(ctx context.Context, booking *models.Booking)
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Repo            Repository
	Provider        ProviderClient
	Bookings        BookingFinalizer
	Notifier        ConfirmationNotifier
	Announcer       SystemAnnouncer
	Metrics         *metrics.PaymentMetrics
	Logger          *logger.Logger
	NotificationURL string
	PixReuseWindow  time.Duration
}

// Service bridges provider payment state into transaction rows and
// booking status updates, exactly once per transition into approved.
type Service struct {
	repo            Repository
	provider        ProviderClient
	bookings        BookingFinalizer
	notifier        ConfirmationNotifier
	announcer       SystemAnnouncer
	metrics         *metrics.PaymentMetrics
	logger          *logger.Logger
	notificationURL string
	pixReuseWindow  time.Duration
}

// NewService builds a payment service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Provider == nil {
		return nil, errors.New("provider client is required")
	}
	if params.Bookings == nil {
		return nil, errors.New("booking finalizer is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.PixReuseWindow <= 0 {
		params.PixReuseWindow = 24 * time.Hour
	}
	return &Service{
		repo:            params.Repo,
		provider:        params.Provider,
		bookings:        params.Bookings,
		notifier:        params.Notifier,
		announcer:       params.Announcer,
		metrics:         params.Metrics,
		logger:          params.Logger,
		notificationURL: params.NotificationURL,
		pixReuseWindow:  params.PixReuseWindow,
	}, nil
}

// CreateInput describes a renter's request to pay for a booking.
type CreateInput struct {
	BookingID  uuid.UUID
	PayerEmail string
	PayerTaxID string
}

// Create requests a PIX charge for the booking, reusing a live prior
// payment when one exists. Only the booking's renter may call it.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, input CreateInput) (*models.PaymentTransaction, error) {
	booking, err := s.bookings.FindByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}
	switch booking.Status {
	case enums.BookingStatusCheckedIn, enums.BookingStatusCheckedOut, enums.BookingStatusCancelled:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invalid booking state")
	}

	ctx = s.logger.WithBookingID(ctx, booking.ID.String())

	// A PIX code generated earlier may have been paid since. Refresh the
	// latest transaction before deciding whether a new charge is needed.
	prior, err := s.repo.FindLatestByBooking(ctx, booking.ID)
	if err != nil && !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading prior transaction")
	}
	if prior != nil {
		payment, providerErr := s.provider.GetPayment(ctx, prior.ProviderPaymentID)
		if providerErr != nil {
			return nil, providerErr
		}
		refreshed, applyErr := s.apply(ctx, booking.ID, payment)
		if applyErr != nil {
			return nil, applyErr
		}
		if payment.IsApproved() || s.reusablePix(refreshed) {
			return refreshed, nil
		}
	}

	request := mercadopago.PaymentRequest{
		TransactionAmount: float64(booking.TotalPaidByRenter),
		Description:       "Reserva " + booking.ID.String(),
		PaymentMethodID:   string(enums.PaymentMethodPix),
		ExternalReference: booking.ID.String(),
		NotificationURL:   s.notificationURL,
		Payer:             mercadopago.Payer{Email: input.PayerEmail},
		Metadata: map[string]string{
			"booking_id": booking.ID.String(),
			"renter_id":  booking.RenterID.String(),
			"owner_id":   booking.OwnerID.String(),
		},
	}
	if input.PayerTaxID != "" {
		request.Payer.Identification = &mercadopago.Identification{Type: "CPF", Number: input.PayerTaxID}
	}

	payment, err := s.provider.CreatePayment(ctx, uuid.NewString(), request)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, booking.ID, payment)
}

// Check re-fetches the booking's most recent payment (or an explicitly
// given one) from the provider, persists it, and attempts finalize.
func (s *Service) Check(ctx context.Context, callerID, bookingID uuid.UUID, explicitPaymentID string) (*models.PaymentTransaction, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != callerID && booking.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}

	paymentID := explicitPaymentID
	if paymentID == "" {
		prior, findErr := s.repo.FindLatestByBooking(ctx, bookingID)
		if findErr != nil {
			if db.IsNotFound(findErr) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment found for booking")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "loading prior transaction")
		}
		paymentID = prior.ProviderPaymentID
	}

	payment, err := s.provider.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, bookingID, payment)
}

// WebhookResult reports how a provider notification was applied.
type WebhookResult struct {
	Outcome     WebhookOutcome
	Transaction *models.PaymentTransaction
}

// HandleWebhook validates, fetches, and applies a provider notification.
// Unrecognized events are reported as ignored, not as errors; the caller
// answers them 200 so the provider stops redelivering.
func (s *Service) HandleWebhook(ctx context.Context, event WebhookEvent) (WebhookResult, error) {
	paymentID := ExtractPaymentID(event)
	if paymentID == "" {
		s.logger.Warn(ctx, "webhook carried no payment id, ignoring")
		s.countWebhook("ignored")
		return WebhookResult{Outcome: WebhookIgnored}, nil
	}
	ctx = s.logger.WithPaymentID(ctx, paymentID)

	if secret := s.provider.WebhookSecret(); secret != "" {
		if err := mercadopago.VerifySignature(secret, paymentID, event.RequestID, event.Signature); err != nil {
			s.countWebhook("rejected")
			return WebhookResult{}, err
		}
	}

	payment, err := s.provider.GetPayment(ctx, paymentID)
	if err != nil {
		s.countWebhook("provider_error")
		return WebhookResult{}, err
	}

	bookingRef := payment.BookingReference()
	bookingID, parseErr := uuid.Parse(bookingRef)
	if bookingRef == "" || parseErr != nil {
		s.logger.Warn(ctx, "webhook payment has no resolvable booking, ignoring")
		s.countWebhook("ignored")
		return WebhookResult{Outcome: WebhookIgnored}, nil
	}

	transaction, err := s.apply(ctx, bookingID, payment)
	if err != nil {
		s.countWebhook("failed")
		return WebhookResult{}, err
	}
	s.countWebhook("applied")
	return WebhookResult{Outcome: WebhookApplied, Transaction: transaction}, nil
}

// Reconcile re-polls one stored transaction against the provider. Used by
// the background worker for payments whose webhook never arrived.
func (s *Service) Reconcile(ctx context.Context, transaction models.PaymentTransaction) (*models.PaymentTransaction, error) {
	payment, err := s.provider.GetPayment(ctx, transaction.ProviderPaymentID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, transaction.BookingID, payment)
}

// ListPendingOlderThan exposes stale unsettled transactions to the worker.
func (s *Service) ListPendingOlderThan(ctx context.Context, minAge time.Duration, limit int) ([]models.PaymentTransaction, error) {
	return s.repo.ListPendingOlderThan(ctx, minAge, limit)
}

// ListTransactions pages every stored transaction, optionally filtered by
// provider status. Admin only; role enforcement happens at the route.
func (s *Service) ListTransactions(ctx context.Context, status string, params pagination.Params) ([]models.PaymentTransaction, *pagination.Cursor, error) {
	return s.repo.ListAll(ctx, status, params)
}

// FindLatestForBooking returns the booking's most recent transaction for
// display. Only participants may read it.
func (s *Service) FindLatestForBooking(ctx context.Context, callerID, bookingID uuid.UUID) (*models.PaymentTransaction, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != callerID && booking.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}
	transaction, err := s.repo.FindLatestByBooking(ctx, bookingID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment found for booking")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading transaction")
	}
	return transaction, nil
}

// apply persists the provider payment and attempts the finalize step. A
// failed upsert aborts finalize: the booking is never advanced on data
// that was not durably recorded.
func (s *Service) apply(ctx context.Context, bookingID uuid.UUID, payment *mercadopago.Payment) (*models.PaymentTransaction, error) {
	transaction := transactionFromPayment(bookingID, payment)
	if err := s.repo.Upsert(ctx, transaction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting payment transaction")
	}
	if s.metrics != nil {
		s.metrics.IncReconciled(transaction.Status)
	}

	if !payment.IsApproved() {
		return transaction, nil
	}

	advanced, err := s.bookings.FinalizeOnPayment(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if advanced {
		if booking, findErr := s.bookings.FindByID(ctx, bookingID); findErr == nil {
			if s.notifier != nil {
				s.notifier.BookingConfirmed(ctx, booking, transaction)
			}
			if s.announcer != nil {
				s.announcer.PaymentConfirmed(ctx, booking)
			}
		}
	}
	return transaction, nil
}

// reusablePix reports whether a pending transaction still carries a PIX
// payload fresh enough to hand back instead of creating a new charge.
func (s *Service) reusablePix(transaction *models.PaymentTransaction) bool {
	if transaction == nil {
		return false
	}
	hasPayload := (transaction.PixQRCode != nil && *transaction.PixQRCode != "") ||
		(transaction.PixQRCodeBase64 != nil && *transaction.PixQRCodeBase64 != "")
	if !hasPayload {
		return false
	}
	return time.Since(transaction.CreatedAt) < s.pixReuseWindow
}

func (s *Service) countWebhook(outcome string) {
	if s.metrics != nil {
		s.metrics.IncWebhook(outcome)
	}
}

func transactionFromPayment(bookingID uuid.UUID, payment *mercadopago.Payment) *models.PaymentTransaction {
	transaction := &models.PaymentTransaction{
		BookingID:         bookingID,
		Provider:          providerName,
		ProviderPaymentID: payment.PaymentID(),
		PaymentMethod:     paymentMethod(payment.PaymentMethodID),
		Amount:            int64(math.Round(payment.TransactionAmount)),
		Status:            payment.NormalizedStatus(),
		RawPayload:        payment.RawPayload,
	}
	if payment.StatusDetail != "" {
		transaction.StatusDetail = &payment.StatusDetail
	}
	if payment.Payer.Email != "" {
		transaction.PayerEmail = &payment.Payer.Email
	}
	if payment.PointOfInteraction != nil {
		data := payment.PointOfInteraction.TransactionData
		if data.QRCode != "" {
			transaction.PixQRCode = &data.QRCode
		}
		if data.QRCodeBase64 != "" {
			transaction.PixQRCodeBase64 = &data.QRCodeBase64
		}
		if data.TicketURL != "" {
			transaction.TicketURL = &data.TicketURL
		}
	}
	if payment.IsApproved() {
		paidAt := time.Now().UTC()
		if payment.DateApproved != "" {
			if parsed, err := time.Parse(time.RFC3339, payment.DateApproved); err == nil {
				paidAt = parsed.UTC()
			}
		}
		transaction.PaidAt = &paidAt
	}
	return transaction
}

func paymentMethod(providerMethod string) enums.PaymentMethod {
	if method, err := enums.ParsePaymentMethod(providerMethod); err == nil {
		return method
	}
	return enums.PaymentMethodPix
}
