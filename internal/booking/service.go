package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alugafacil/alugafacil-backend/internal/pricing"
	"github.com/alugafacil/alugafacil-backend/pkg/db"
	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

// PropertyReader exposes the property lookups the booking flow needs.
type PropertyReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type changeNotifier interface {
	BookingChanged(ctx context.Context, booking *models.Booking)
}

// ServiceParams groups dependencies for the booking service.
type ServiceParams struct {
	Repo       Repository
	Properties PropertyReader
	Pricing    *pricing.Engine
	Tx         txRunner
	Logger     *logger.Logger
	Notifier   changeNotifier
}

// Service orchestrates booking creation and lifecycle transitions.
type Service struct {
	repo       Repository
	properties PropertyReader
	pricing    *pricing.Engine
	tx         txRunner
	logger     *logger.Logger
	notifier   changeNotifier
}

// NewService builds a booking service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Properties == nil {
		return nil, errors.New("property reader is required")
	}
	if params.Pricing == nil {
		return nil, errors.New("pricing engine is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		repo:       params.Repo,
		properties: params.Properties,
		pricing:    params.Pricing,
		tx:         params.Tx,
		logger:     params.Logger,
		notifier:   params.Notifier,
	}, nil
}

// Quote prices a stay without persisting anything.
func (s *Service) Quote(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (pricing.Quote, error) {
	property, err := s.findBookableProperty(ctx, propertyID)
	if err != nil {
		return pricing.Quote{}, err
	}
	return s.pricing.Quote(property.RentType, checkIn, checkOut, property.Price, property.CleaningFee)
}

// Create inserts a booking at pending_payment after pricing and
// availability validation.
func (s *Service) Create(ctx context.Context, renterID uuid.UUID, input CreateInput) (*models.Booking, error) {
	property, err := s.findBookableProperty(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID == renterID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owners cannot book their own property")
	}

	quote, err := s.pricing.Quote(property.RentType, input.CheckInDate, input.CheckOutDate, property.Price, property.CleaningFee)
	if err != nil {
		return nil, err
	}
	if property.RentType != enums.RentTypeMonthly && quote.Units < property.MinimumNights {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("stay is below the minimum of %d nights", property.MinimumNights))
	}

	booking := &models.Booking{
		PropertyID:        property.ID,
		RenterID:          renterID,
		OwnerID:           property.OwnerID,
		CheckInDate:       input.CheckInDate,
		CheckOutDate:      input.CheckOutDate,
		Units:             quote.Units,
		BaseAmount:        quote.BaseAmount,
		ClientFeeAmount:   quote.ClientFeeAmount,
		OwnerFeeAmount:    quote.OwnerFeeAmount,
		TotalPaidByRenter: quote.TotalPaidByRenter,
		OwnerPayoutAmount: quote.OwnerPayoutAmount,
		Status:            enums.BookingStatusPendingPayment,
	}

	// The overlap pre-check and the insert share one transaction so a
	// concurrent booking cannot slip between them. The exclusion
	// constraint on the table still backstops the race.
	insert := func(repo Repository) error {
		if err := s.checkOverlap(ctx, repo, property.ID, input.CheckInDate, input.CheckOutDate, uuid.Nil); err != nil {
			return err
		}
		_, err := repo.Create(ctx, booking)
		return err
	}
	if s.tx != nil {
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return insert(s.repo.WithTx(tx))
		})
	} else {
		err = insert(s.repo)
	}
	if err != nil {
		if db.IsExclusionViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "property is not available for the selected dates")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating booking")
	}

	ctx = s.logger.WithBookingID(ctx, booking.ID.String())
	s.logger.Info(ctx, "booking created")
	s.notifyChanged(ctx, booking)
	return booking, nil
}

// Get returns a booking the caller participates in.
func (s *Service) Get(ctx context.Context, callerID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != callerID && booking.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}
	return booking, nil
}

// ListForRenter pages bookings made by the caller.
func (s *Service) ListForRenter(ctx context.Context, renterID uuid.UUID, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	return s.repo.ListByRenter(ctx, renterID, params)
}

// ListForOwner pages bookings on the caller's properties.
func (s *Service) ListForOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	return s.repo.ListByOwner(ctx, ownerID, params)
}

// ListAll pages every booking, optionally filtered by status. Admin only;
// role enforcement happens at the route.
func (s *Service) ListAll(ctx context.Context, status *enums.BookingStatus, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	return s.repo.ListAll(ctx, status, params)
}

// Transition applies a caller-requested status change after consulting
// the transition table. The caller must be the booking's renter or owner.
func (s *Service) Transition(ctx context.Context, callerID, bookingID uuid.UUID, target enums.BookingStatus) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var actor Actor
	switch callerID {
	case booking.RenterID:
		actor = ActorRenter
	case booking.OwnerID:
		actor = ActorOwner
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}

	if err := CanTransition(booking.Status, target, actor); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, booking.ID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating booking status")
	}
	booking.Status = target

	ctx = s.logger.WithFields(ctx, map[string]any{"booking_id": booking.ID.String(), "status": string(target)})
	s.logger.Info(ctx, "booking status updated")
	s.notifyChanged(ctx, booking)
	return booking, nil
}

// FinalizeOnPayment advances a booking to pre_checking in response to an
// approved provider payment. The returned bool reports whether this call
// performed the transition; false means the booking was already advanced
// or cancelled, which repeated webhook deliveries treat as a no-op.
func (s *Service) FinalizeOnPayment(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	advanced, err := s.repo.AdvanceToPreChecking(ctx, bookingID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advancing booking on payment approval")
	}
	if advanced {
		ctx = s.logger.WithBookingID(ctx, bookingID.String())
		s.logger.Info(ctx, "booking advanced to pre_checking")
		if booking, findErr := s.repo.FindByID(ctx, bookingID); findErr == nil {
			s.notifyChanged(ctx, booking)
		}
	}
	return advanced, nil
}

// CheckAvailability rejects the candidate range when it overlaps an
// active booking on the same property. This is a best-effort pre-check;
// the exclusion constraint on the bookings table is the guarantee.
func (s *Service) CheckAvailability(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) error {
	if !checkOut.After(checkIn) {
		return pricing.ErrInvalidRange
	}
	return s.checkOverlap(ctx, s.repo, propertyID, checkIn, checkOut, excludeID)
}

func (s *Service) checkOverlap(ctx context.Context, repo Repository, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) error {
	existing, err := repo.ListActiveOverlapping(ctx, propertyID, checkIn, checkOut, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking availability")
	}
	if len(existing) > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "property is not available for the selected dates")
	}
	return nil
}

// FindByID exposes booking lookup to sibling services without ownership
// checks. Callers are responsible for authorization.
func (s *Service) FindByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.findBooking(ctx, bookingID)
}

func (s *Service) findBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading booking")
	}
	return booking, nil
}

func (s *Service) findBookableProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading property")
	}
	if property.Status != enums.PropertyStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property is not open for bookings")
	}
	return property, nil
}

func (s *Service) notifyChanged(ctx context.Context, booking *models.Booking) {
	if s.notifier == nil || booking == nil {
		return
	}
	s.notifier.BookingChanged(ctx, booking)
}
