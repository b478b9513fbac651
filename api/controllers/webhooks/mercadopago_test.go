package webhooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alugafacil/alugafacil-backend/internal/payments"
	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/mercadopago"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memStore) IdempotencyKey(scope, id string) string {
	return "af:idempotency:" + scope + ":" + id
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type hookProvider struct {
	mu       sync.Mutex
	payments map[string]*mercadopago.Payment
}

func (p *hookProvider) CreatePayment(context.Context, string, mercadopago.PaymentRequest) (*mercadopago.Payment, error) {
	return nil, nil
}

func (p *hookProvider) GetPayment(_ context.Context, paymentID string) (*mercadopago.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	payment := *p.payments[paymentID]
	return &payment, nil
}

func (p *hookProvider) WebhookSecret() string { return "" }

func (p *hookProvider) setStatus(paymentID, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payments[paymentID].Status = status
}

type hookRepo struct {
	mu   sync.Mutex
	rows map[string]*models.PaymentTransaction
}

func (r *hookRepo) Upsert(_ context.Context, transaction *models.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[transaction.ProviderPaymentID] = transaction
	return nil
}

func (r *hookRepo) FindLatestByBooking(context.Context, uuid.UUID) (*models.PaymentTransaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *hookRepo) FindByProviderPaymentID(_ context.Context, id string) (*models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *hookRepo) ListPendingOlderThan(context.Context, time.Duration, int) ([]models.PaymentTransaction, error) {
	return nil, nil
}

func (r *hookRepo) ListAll(context.Context, string, pagination.Params) ([]models.PaymentTransaction, *pagination.Cursor, error) {
	return nil, nil, nil
}

type hookBookings struct {
	mu      sync.Mutex
	booking *models.Booking
}

func (b *hookBookings) FindByID(context.Context, uuid.UUID) (*models.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	copied := *b.booking
	return &copied, nil
}

func (b *hookBookings) FinalizeOnPayment(context.Context, uuid.UUID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.booking.Status == enums.BookingStatusPendingPayment {
		b.booking.Status = enums.BookingStatusPreChecking
		return true, nil
	}
	return false, nil
}

func (b *hookBookings) status() enums.BookingStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.booking.Status
}

func newHookHandler(t *testing.T, provider *hookProvider, bookings *hookBookings) http.HandlerFunc {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-webhooks", Output: io.Discard})
	svc, err := payments.NewService(payments.ServiceParams{
		Repo:     &hookRepo{rows: map[string]*models.PaymentTransaction{}},
		Provider: provider,
		Bookings: bookings,
		Logger:   logg,
	})
	require.NoError(t, err)

	guard, err := payments.NewIdempotencyGuard(newMemStore(), time.Hour, "mp-webhook")
	require.NoError(t, err)

	return MercadoPago(svc, guard, logg)
}

func deliver(handler http.HandlerFunc, requestID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago", strings.NewReader(`{"data":{"id":777}}`))
	if requestID != "" {
		req.Header.Set("x-request-id", requestID)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

// The provider notifies the same payment once at creation and again after
// approval. The second notification must re-fetch and finalize the booking.
func TestWebhookSecondNotificationFinalizesBooking(t *testing.T) {
	bookingID := uuid.New()
	provider := &hookProvider{payments: map[string]*mercadopago.Payment{
		"777": {ID: "777", Status: "pending", ExternalReference: bookingID.String()},
	}}
	bookings := &hookBookings{booking: &models.Booking{ID: bookingID, Status: enums.BookingStatusPendingPayment}}
	handler := newHookHandler(t, provider, bookings)

	first := deliver(handler, "req-1")
	require.Equal(t, http.StatusOK, first.Code)
	require.Contains(t, first.Body.String(), "applied")
	require.Equal(t, enums.BookingStatusPendingPayment, bookings.status())

	provider.setStatus("777", "approved")

	second := deliver(handler, "req-2")
	require.Equal(t, http.StatusOK, second.Code)
	require.Contains(t, second.Body.String(), "applied")
	require.Equal(t, enums.BookingStatusPreChecking, bookings.status())
}

func TestWebhookRetriedDeliveryIsDeduplicated(t *testing.T) {
	bookingID := uuid.New()
	provider := &hookProvider{payments: map[string]*mercadopago.Payment{
		"777": {ID: "777", Status: "pending", ExternalReference: bookingID.String()},
	}}
	bookings := &hookBookings{booking: &models.Booking{ID: bookingID, Status: enums.BookingStatusPendingPayment}}
	handler := newHookHandler(t, provider, bookings)

	first := deliver(handler, "req-1")
	require.Contains(t, first.Body.String(), "applied")

	retry := deliver(handler, "req-1")
	require.Equal(t, http.StatusOK, retry.Code)
	require.Contains(t, retry.Body.String(), "duplicate")
}

// A delivery without a request id cannot be deduplicated up front; the
// idempotent upsert absorbs it instead of it being dropped.
func TestWebhookWithoutRequestIDIsProcessed(t *testing.T) {
	bookingID := uuid.New()
	provider := &hookProvider{payments: map[string]*mercadopago.Payment{
		"777": {ID: "777", Status: "approved", ExternalReference: bookingID.String()},
	}}
	bookings := &hookBookings{booking: &models.Booking{ID: bookingID, Status: enums.BookingStatusPendingPayment}}
	handler := newHookHandler(t, provider, bookings)

	resp := deliver(handler, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "applied")
	require.Equal(t, enums.BookingStatusPreChecking, bookings.status())
}
