package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/mercadopago"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

type stubPaymentRepo struct {
	rows map[string]*models.PaymentTransaction
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{rows: map[string]*models.PaymentTransaction{}}
}

func (s *stubPaymentRepo) Upsert(ctx context.Context, transaction *models.PaymentTransaction) error {
	if existing, ok := s.rows[transaction.ProviderPaymentID]; ok {
		transaction.ID = existing.ID
		transaction.CreatedAt = existing.CreatedAt
	} else {
		transaction.ID = uuid.New()
		if transaction.CreatedAt.IsZero() {
			transaction.CreatedAt = time.Now()
		}
	}
	clone := *transaction
	s.rows[transaction.ProviderPaymentID] = &clone
	return nil
}

func (s *stubPaymentRepo) FindLatestByBooking(ctx context.Context, bookingID uuid.UUID) (*models.PaymentTransaction, error) {
	var latest *models.PaymentTransaction
	for _, row := range s.rows {
		if row.BookingID != bookingID {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *latest
	return &clone, nil
}

func (s *stubPaymentRepo) FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.PaymentTransaction, error) {
	row, ok := s.rows[providerPaymentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *row
	return &clone, nil
}

func (s *stubPaymentRepo) ListPendingOlderThan(ctx context.Context, minAge time.Duration, limit int) ([]models.PaymentTransaction, error) {
	var pending []models.PaymentTransaction
	for _, row := range s.rows {
		if row.Status != "approved" {
			pending = append(pending, *row)
		}
	}
	return pending, nil
}

func (s *stubPaymentRepo) ListAll(ctx context.Context, status string, params pagination.Params) ([]models.PaymentTransaction, *pagination.Cursor, error) {
	var all []models.PaymentTransaction
	for _, row := range s.rows {
		if status == "" || row.Status == status {
			all = append(all, *row)
		}
	}
	return all, nil, nil
}

type stubProvider struct {
	secret      string
	payments    map[string]*mercadopago.Payment
	created     []mercadopago.PaymentRequest
	createdKeys []string
	getCalls    int
}

func (s *stubProvider) CreatePayment(ctx context.Context, idempotencyKey string, req mercadopago.PaymentRequest) (*mercadopago.Payment, error) {
	s.created = append(s.created, req)
	s.createdKeys = append(s.createdKeys, idempotencyKey)
	payment := &mercadopago.Payment{
		ID:                mercadopago.ID(fmt.Sprintf("new-%d", len(s.created))),
		Status:            "pending",
		PaymentMethodID:   "pix",
		TransactionAmount: req.TransactionAmount,
		ExternalReference: req.ExternalReference,
		PointOfInteraction: &mercadopago.PointOfInteraction{
			TransactionData: mercadopago.TransactionData{QRCode: "00020126qr"},
		},
	}
	if s.payments == nil {
		s.payments = map[string]*mercadopago.Payment{}
	}
	s.payments[payment.PaymentID()] = payment
	return payment, nil
}

func (s *stubProvider) GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error) {
	s.getCalls++
	payment, ok := s.payments[paymentID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mercadopago get payment returned status 404")
	}
	clone := *payment
	return &clone, nil
}

func (s *stubProvider) WebhookSecret() string { return s.secret }

type stubFinalizer struct {
	booking       *models.Booking
	finalizeCalls int
}

func (s *stubFinalizer) FindByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	if s.booking == nil || s.booking.ID != bookingID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	clone := *s.booking
	return &clone, nil
}

func (s *stubFinalizer) FinalizeOnPayment(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	s.finalizeCalls++
	if s.booking == nil || s.booking.ID != bookingID {
		return false, nil
	}
	switch s.booking.Status {
	case enums.BookingStatusPreChecking, enums.BookingStatusCheckedIn,
		enums.BookingStatusCheckedOut, enums.BookingStatusCancelled:
		return false, nil
	}
	s.booking.Status = enums.BookingStatusPreChecking
	return true, nil
}

type stubNotifier struct {
	confirmed int
}

func (s *stubNotifier) BookingConfirmed(ctx context.Context, booking *models.Booking, transaction *models.PaymentTransaction) {
	s.confirmed++
}

type stubAnnouncer struct {
	announced int
}

func (s *stubAnnouncer) PaymentConfirmed(ctx context.Context, booking *models.Booking) {
	s.announced++
}

func pendingBooking(renterID uuid.UUID) *models.Booking {
	return &models.Booking{
		ID:                uuid.New(),
		RenterID:          renterID,
		OwnerID:           uuid.New(),
		TotalPaidByRenter: 960,
		Status:            enums.BookingStatusPendingPayment,
	}
}

func newTestService(t *testing.T, repo Repository, provider ProviderClient, finalizer BookingFinalizer, notifier ConfirmationNotifier) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Provider: provider,
		Bookings: finalizer,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "payments-test"}),
	})
	require.NoError(t, err)
	return svc
}

func signManifest(secret, paymentID, requestID, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(paymentID), requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateNewCharge(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	provider := &stubProvider{}
	repo := newStubPaymentRepo()
	svc := newTestService(t, repo, provider, finalizer, nil)

	transaction, err := svc.Create(context.Background(), renterID, CreateInput{
		BookingID:  finalizer.booking.ID,
		PayerEmail: "renter@example.com",
		PayerTaxID: "12345678901",
	})
	require.NoError(t, err)

	require.Len(t, provider.created, 1)
	require.NotEmpty(t, provider.createdKeys[0])
	require.Equal(t, finalizer.booking.ID.String(), provider.created[0].ExternalReference)
	require.Equal(t, "CPF", provider.created[0].Payer.Identification.Type)
	require.Equal(t, "pending", transaction.Status)
	require.NotNil(t, transaction.PixQRCode)
	require.Equal(t, enums.BookingStatusPendingPayment, finalizer.booking.Status)
}

func TestCreateRejectsNonRenter(t *testing.T) {
	finalizer := &stubFinalizer{booking: pendingBooking(uuid.New())}
	svc := newTestService(t, newStubPaymentRepo(), &stubProvider{}, finalizer, nil)

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{BookingID: finalizer.booking.ID})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestCreateRejectsAdvancedBooking(t *testing.T) {
	renterID := uuid.New()
	booking := pendingBooking(renterID)
	booking.Status = enums.BookingStatusCheckedIn
	svc := newTestService(t, newStubPaymentRepo(), &stubProvider{}, &stubFinalizer{booking: booking}, nil)

	_, err := svc.Create(context.Background(), renterID, CreateInput{BookingID: booking.ID})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCreateReusesLivePixPayload(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	qr := "00020126existing"
	provider := &stubProvider{payments: map[string]*mercadopago.Payment{
		"prior-1": {
			ID:              "prior-1",
			Status:          "pending",
			PaymentMethodID: "pix",
			PointOfInteraction: &mercadopago.PointOfInteraction{
				TransactionData: mercadopago.TransactionData{QRCode: qr},
			},
		},
	}}
	repo := newStubPaymentRepo()
	repo.rows["prior-1"] = &models.PaymentTransaction{
		ID:                uuid.New(),
		BookingID:         finalizer.booking.ID,
		ProviderPaymentID: "prior-1",
		Status:            "pending",
		PixQRCode:         &qr,
		CreatedAt:         time.Now().Add(-time.Hour),
	}
	svc := newTestService(t, repo, provider, finalizer, nil)

	transaction, err := svc.Create(context.Background(), renterID, CreateInput{BookingID: finalizer.booking.ID})
	require.NoError(t, err)

	require.Empty(t, provider.created)
	require.Equal(t, "prior-1", transaction.ProviderPaymentID)
	require.Equal(t, qr, *transaction.PixQRCode)
}

func TestCreateDetectsPriorPaymentNowApproved(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	notifier := &stubNotifier{}
	provider := &stubProvider{payments: map[string]*mercadopago.Payment{
		"prior-1": {ID: "prior-1", Status: "approved", PaymentMethodID: "pix"},
	}}
	repo := newStubPaymentRepo()
	repo.rows["prior-1"] = &models.PaymentTransaction{
		ID:                uuid.New(),
		BookingID:         finalizer.booking.ID,
		ProviderPaymentID: "prior-1",
		Status:            "pending",
		CreatedAt:         time.Now().Add(-time.Hour),
	}
	svc := newTestService(t, repo, provider, finalizer, notifier)

	transaction, err := svc.Create(context.Background(), renterID, CreateInput{BookingID: finalizer.booking.ID})
	require.NoError(t, err)

	require.Empty(t, provider.created)
	require.Equal(t, "approved", transaction.Status)
	require.NotNil(t, transaction.PaidAt)
	require.Equal(t, enums.BookingStatusPreChecking, finalizer.booking.Status)
	require.Equal(t, 1, notifier.confirmed)
}

func TestCreateExpiredPixTriggersNewCharge(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	qr := "00020126stale"
	provider := &stubProvider{payments: map[string]*mercadopago.Payment{
		"prior-1": {
			ID:              "prior-1",
			Status:          "pending",
			PaymentMethodID: "pix",
			PointOfInteraction: &mercadopago.PointOfInteraction{
				TransactionData: mercadopago.TransactionData{QRCode: qr},
			},
		},
	}}
	repo := newStubPaymentRepo()
	repo.rows["prior-1"] = &models.PaymentTransaction{
		ID:                uuid.New(),
		BookingID:         finalizer.booking.ID,
		ProviderPaymentID: "prior-1",
		Status:            "pending",
		PixQRCode:         &qr,
		CreatedAt:         time.Now().Add(-48 * time.Hour),
	}
	svc := newTestService(t, repo, provider, finalizer, nil)

	transaction, err := svc.Create(context.Background(), renterID, CreateInput{BookingID: finalizer.booking.ID})
	require.NoError(t, err)

	require.Len(t, provider.created, 1)
	require.NotEqual(t, "prior-1", transaction.ProviderPaymentID)
}

func TestWebhookAppliesApprovedPayment(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	notifier := &stubNotifier{}
	provider := &stubProvider{payments: map[string]*mercadopago.Payment{
		"777": {ID: "777", Status: "approved", PaymentMethodID: "pix", ExternalReference: finalizer.booking.ID.String()},
	}}
	repo := newStubPaymentRepo()
	svc := newTestService(t, repo, provider, finalizer, notifier)

	event := WebhookEvent{Body: []byte(`{"data":{"id":"777"}}`)}

	result, err := svc.HandleWebhook(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, WebhookApplied, result.Outcome)
	require.Equal(t, enums.BookingStatusPreChecking, finalizer.booking.Status)
	require.Equal(t, 1, notifier.confirmed)

	// Replay converges to the same row and does not re-transition.
	result, err = svc.HandleWebhook(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, WebhookApplied, result.Outcome)
	require.Len(t, repo.rows, 1)
	require.Equal(t, enums.BookingStatusPreChecking, finalizer.booking.Status)
	require.Equal(t, 1, notifier.confirmed)
}

func TestWebhookAnnouncesInChatOnce(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	announcer := &stubAnnouncer{}
	provider := &stubProvider{payments: map[string]*mercadopago.Payment{
		"777": {ID: "777", Status: "approved", PaymentMethodID: "pix", ExternalReference: finalizer.booking.ID.String()},
	}}
	svc, err := NewService(ServiceParams{
		Repo:      newStubPaymentRepo(),
		Provider:  provider,
		Bookings:  finalizer,
		Announcer: announcer,
		Logger:    logger.New(logger.Options{ServiceName: "payments-test"}),
	})
	require.NoError(t, err)

	event := WebhookEvent{Body: []byte(`{"data":{"id":"777"}}`)}

	_, err = svc.HandleWebhook(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, 1, announcer.announced)

	// Replays converge without re-announcing; the booking already advanced.
	_, err = svc.HandleWebhook(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, 1, announcer.announced)
}

func TestWebhookNeverRegressesCheckedIn(t *testing.T) {
	renterID := uuid.New()
	booking := pendingBooking(renterID)
	booking.Status = enums.BookingStatusCheckedIn
	finalizer := &stubFinalizer{booking: booking}
	provider := &stubProvider{payments: map[string]*mercadopago.Payment{
		"777": {ID: "777", Status: "approved", ExternalReference: booking.ID.String()},
	}}
	svc := newTestService(t, newStubPaymentRepo(), provider, finalizer, nil)

	_, err := svc.HandleWebhook(context.Background(), WebhookEvent{Body: []byte(`{"data":{"id":"777"}}`)})
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusCheckedIn, booking.Status)
}

func TestWebhookSignatureVerified(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	provider := &stubProvider{
		secret: "shh",
		payments: map[string]*mercadopago.Payment{
			"777": {ID: "777", Status: "approved", ExternalReference: finalizer.booking.ID.String()},
		},
	}
	svc := newTestService(t, newStubPaymentRepo(), provider, finalizer, nil)

	v1 := signManifest("shh", "777", "req-1", "1700000000")
	event := WebhookEvent{
		Body:      []byte(`{"data":{"id":"777"}}`),
		Signature: fmt.Sprintf("ts=1700000000,v1=%s", v1),
		RequestID: "req-1",
	}

	result, err := svc.HandleWebhook(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, WebhookApplied, result.Outcome)
}

func TestWebhookTamperedSignatureRejected(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	provider := &stubProvider{
		secret: "shh",
		payments: map[string]*mercadopago.Payment{
			"777": {ID: "777", Status: "approved", ExternalReference: finalizer.booking.ID.String()},
		},
	}
	svc := newTestService(t, newStubPaymentRepo(), provider, finalizer, nil)

	event := WebhookEvent{
		Body:      []byte(`{"data":{"id":"777"}}`),
		Signature: "ts=1700000000,v1=deadbeef",
		RequestID: "req-1",
	}

	_, err := svc.HandleWebhook(context.Background(), event)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
	require.Zero(t, provider.getCalls)
	require.Equal(t, enums.BookingStatusPendingPayment, finalizer.booking.Status)
}

func TestWebhookUnrecognizedEventIgnored(t *testing.T) {
	svc := newTestService(t, newStubPaymentRepo(), &stubProvider{}, &stubFinalizer{}, nil)

	result, err := svc.HandleWebhook(context.Background(), WebhookEvent{Body: []byte(`{"action":"ping"}`)})
	require.NoError(t, err)
	require.Equal(t, WebhookIgnored, result.Outcome)
}

func TestWebhookNoBookingResolvableIgnored(t *testing.T) {
	provider := &stubProvider{payments: map[string]*mercadopago.Payment{
		"777": {ID: "777", Status: "approved"},
	}}
	svc := newTestService(t, newStubPaymentRepo(), provider, &stubFinalizer{}, nil)

	result, err := svc.HandleWebhook(context.Background(), WebhookEvent{Body: []byte(`{"data":{"id":"777"}}`)})
	require.NoError(t, err)
	require.Equal(t, WebhookIgnored, result.Outcome)
}

func TestCheckExplicitPaymentID(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	provider := &stubProvider{payments: map[string]*mercadopago.Payment{
		"explicit-1": {ID: "explicit-1", Status: "approved", ExternalReference: finalizer.booking.ID.String()},
	}}
	svc := newTestService(t, newStubPaymentRepo(), provider, finalizer, nil)

	transaction, err := svc.Check(context.Background(), renterID, finalizer.booking.ID, "explicit-1")
	require.NoError(t, err)
	require.Equal(t, "approved", transaction.Status)
	require.Equal(t, enums.BookingStatusPreChecking, finalizer.booking.Status)
}

func TestCheckWithoutAnyPayment(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	svc := newTestService(t, newStubPaymentRepo(), &stubProvider{}, finalizer, nil)

	_, err := svc.Check(context.Background(), renterID, finalizer.booking.ID, "")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestReconcile(t *testing.T) {
	renterID := uuid.New()
	finalizer := &stubFinalizer{booking: pendingBooking(renterID)}
	provider := &stubProvider{payments: map[string]*mercadopago.Payment{
		"stale-1": {ID: "stale-1", Status: "approved", ExternalReference: finalizer.booking.ID.String()},
	}}
	repo := newStubPaymentRepo()
	repo.rows["stale-1"] = &models.PaymentTransaction{
		ID:                uuid.New(),
		BookingID:         finalizer.booking.ID,
		ProviderPaymentID: "stale-1",
		Status:            "pending",
		CreatedAt:         time.Now().Add(-time.Hour),
	}
	svc := newTestService(t, repo, provider, finalizer, nil)

	transaction, err := svc.Reconcile(context.Background(), *repo.rows["stale-1"])
	require.NoError(t, err)
	require.Equal(t, "approved", transaction.Status)
	require.Equal(t, enums.BookingStatusPreChecking, finalizer.booking.Status)
}
