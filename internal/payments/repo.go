package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

// Repository handles payment transaction persistence.
type Repository interface {
	Upsert(ctx context.Context, transaction *models.PaymentTransaction) error
	FindLatestByBooking(ctx context.Context, bookingID uuid.UUID) (*models.PaymentTransaction, error)
	FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.PaymentTransaction, error)
	ListPendingOlderThan(ctx context.Context, minAge time.Duration, limit int) ([]models.PaymentTransaction, error)
	ListAll(ctx context.Context, status string, params pagination.Params) ([]models.PaymentTransaction, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert inserts or replaces the row keyed by provider_payment_id.
// Concurrent replays of the same provider event converge to one row.
func (r *repository) Upsert(ctx context.Context, transaction *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "provider_payment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "status_detail", "payer_email",
				"pix_qr_code", "pix_qr_code_base64", "ticket_url",
				"raw_payload", "paid_at", "updated_at",
			}),
		}).
		Create(transaction).Error
}

func (r *repository) FindLatestByBooking(ctx context.Context, bookingID uuid.UUID) (*models.PaymentTransaction, error) {
	var transaction models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *repository) FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.PaymentTransaction, error) {
	var transaction models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("provider_payment_id = ?", providerPaymentID).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// ListPendingOlderThan returns unsettled transactions the reconcile worker
// should re-poll against the provider.
func (r *repository) ListPendingOlderThan(ctx context.Context, minAge time.Duration, limit int) ([]models.PaymentTransaction, error) {
	cutoff := time.Now().Add(-minAge)

	var transactions []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{"approved", "cancelled", "rejected", "refunded", "charged_back"}).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *repository) ListAll(ctx context.Context, status string, params pagination.Params) ([]models.PaymentTransaction, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var transactions []models.PaymentTransaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(transactions) > limit {
		transactions = transactions[:limit]
		last := transactions[len(transactions)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return transactions, next, nil
}
