package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

// Repository handles booking persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListByRenter(ctx context.Context, renterID uuid.UUID, params pagination.Params) ([]models.Booking, *pagination.Cursor, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) ([]models.Booking, *pagination.Cursor, error)
	ListAll(ctx context.Context, status *enums.BookingStatus, params pagination.Params) ([]models.Booking, *pagination.Cursor, error)
	ListActiveOverlapping(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) error
	AdvanceToPreChecking(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a booking repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListByRenter(ctx context.Context, renterID uuid.UUID, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	return r.listByColumn(ctx, "renter_id", renterID, params)
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	return r.listByColumn(ctx, "owner_id", ownerID, params)
}

func (r *repository) listByColumn(ctx context.Context, column string, id uuid.UUID, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where(column+" = ?", id).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(bookings) > limit {
		bookings = bookings[:limit]
		last := bookings[len(bookings)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return bookings, next, nil
}

func (r *repository) ListAll(ctx context.Context, status *enums.BookingStatus, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(bookings) > limit {
		bookings = bookings[:limit]
		last := bookings[len(bookings)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return bookings, next, nil
}

func (r *repository) ListActiveOverlapping(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status IN ?", ActiveStatuses()).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)

	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// AdvanceToPreChecking conditionally moves a booking to pre_checking.
// The WHERE clause repeats the finalize exclusion set so that two
// concurrent approvals cannot regress an already advanced booking; the
// boolean reports whether this call performed the transition.
func (r *repository) AdvanceToPreChecking(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Where("status NOT IN ?", []enums.BookingStatus{
			enums.BookingStatusPreChecking,
			enums.BookingStatusCheckedIn,
			enums.BookingStatusCheckedOut,
			enums.BookingStatusCancelled,
		}).
		Update("status", enums.BookingStatusPreChecking)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
