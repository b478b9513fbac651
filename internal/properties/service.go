package properties

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/alugafacil/alugafacil-backend/pkg/db"
	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

// CreateInput describes a new property listing.
type CreateInput struct {
	Title           string
	Description     *string
	Price           int64
	RentType        enums.RentType
	CleaningFee     int64
	SecurityDeposit int64
	MinimumNights   int
	GuestsCapacity  int
	Bedrooms        int
	Bathrooms       int
	GarageSpots     int
	Photos          []string
	Latitude        *float64
	Longitude       *float64
	AddressText     string
	PostalCode      string
}

// UpdateInput carries partial owner edits. Nil fields are left untouched.
type UpdateInput struct {
	Title           *string
	Description     *string
	Price           *int64
	RentType        *enums.RentType
	CleaningFee     *int64
	SecurityDeposit *int64
	MinimumNights   *int
	GuestsCapacity  *int
	Bedrooms        *int
	Bathrooms       *int
	GarageSpots     *int
	Photos          []string
	Latitude        *float64
	Longitude       *float64
	AddressText     *string
	PostalCode      *string
}

// ModerationInput carries admin moderation decisions.
type ModerationInput struct {
	Status   *enums.PropertyStatus
	Verified *bool
}

// ServiceParams groups dependencies for the property service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service orchestrates property listings and moderation.
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService builds a property service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{repo: params.Repo, logger: params.Logger}, nil
}

// Create inserts a listing at pending moderation status.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Property, error) {
	if input.RentType != "" && !input.RentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid rent type")
	}
	rentType := input.RentType
	if rentType == "" {
		rentType = enums.RentTypeDaily
	}
	minimumNights := input.MinimumNights
	if minimumNights < 1 {
		minimumNights = 1
	}

	property := &models.Property{
		OwnerID:         ownerID,
		Title:           input.Title,
		Description:     input.Description,
		Price:           input.Price,
		RentType:        rentType,
		CleaningFee:     input.CleaningFee,
		SecurityDeposit: input.SecurityDeposit,
		MinimumNights:   minimumNights,
		GuestsCapacity:  input.GuestsCapacity,
		Bedrooms:        input.Bedrooms,
		Bathrooms:       input.Bathrooms,
		GarageSpots:     input.GarageSpots,
		Photos:          pq.StringArray(input.Photos),
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		AddressText:     input.AddressText,
		PostalCode:      input.PostalCode,
		Status:          enums.PropertyStatusPending,
	}

	created, err := s.repo.Create(ctx, property)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating property")
	}

	ctx = s.logger.WithPropertyID(ctx, created.ID.String())
	s.logger.Info(ctx, "property created")
	return created, nil
}

// Get returns a property. Unapproved listings are only visible to their
// owner and admins.
func (s *Service) Get(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, propertyID uuid.UUID) (*models.Property, error) {
	property, err := s.find(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != enums.PropertyStatusApproved &&
		property.OwnerID != callerID && callerRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	return property, nil
}

// ListApproved pages publicly visible listings.
func (s *Service) ListApproved(ctx context.Context, params pagination.Params) ([]models.Property, *pagination.Cursor, error) {
	approved := enums.PropertyStatusApproved
	return s.repo.List(ctx, ListQuery{Status: &approved}, params)
}

// ListForOwner pages the caller's own listings regardless of status.
func (s *Service) ListForOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) ([]models.Property, *pagination.Cursor, error) {
	return s.repo.List(ctx, ListQuery{OwnerID: &ownerID}, params)
}

// ListForModeration pages listings by status for the admin console.
func (s *Service) ListForModeration(ctx context.Context, status *enums.PropertyStatus, params pagination.Params) ([]models.Property, *pagination.Cursor, error) {
	return s.repo.List(ctx, ListQuery{Status: status}, params)
}

// Update applies owner edits. Any edit to an approved listing sends it
// back through moderation.
func (s *Service) Update(ctx context.Context, ownerID, propertyID uuid.UUID, input UpdateInput) (*models.Property, error) {
	property, err := s.find(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "property belongs to another owner")
	}

	updates := map[string]any{}
	setIf(updates, "title", input.Title)
	setIf(updates, "description", input.Description)
	setIf(updates, "price", input.Price)
	setIf(updates, "cleaning_fee", input.CleaningFee)
	setIf(updates, "security_deposit", input.SecurityDeposit)
	setIf(updates, "minimum_nights", input.MinimumNights)
	setIf(updates, "guests_capacity", input.GuestsCapacity)
	setIf(updates, "bedrooms", input.Bedrooms)
	setIf(updates, "bathrooms", input.Bathrooms)
	setIf(updates, "garage_spots", input.GarageSpots)
	setIf(updates, "latitude", input.Latitude)
	setIf(updates, "longitude", input.Longitude)
	setIf(updates, "address_text", input.AddressText)
	setIf(updates, "postal_code", input.PostalCode)
	if input.RentType != nil {
		if !input.RentType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid rent type")
		}
		updates["rent_type"] = *input.RentType
	}
	if input.Photos != nil {
		updates["photos"] = pq.StringArray(input.Photos)
	}
	if len(updates) == 0 {
		return property, nil
	}
	updates["status"] = enums.PropertyStatusPending
	updates["verified"] = false

	if err := s.repo.Update(ctx, propertyID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating property")
	}
	return s.find(ctx, propertyID)
}

// Moderate applies an admin status/verified decision.
func (s *Service) Moderate(ctx context.Context, propertyID uuid.UUID, input ModerationInput) (*models.Property, error) {
	if _, err := s.find(ctx, propertyID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property status")
		}
		updates["status"] = *input.Status
	}
	if input.Verified != nil {
		updates["verified"] = *input.Verified
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no moderation fields provided")
	}

	if err := s.repo.Update(ctx, propertyID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "moderating property")
	}

	ctx = s.logger.WithPropertyID(ctx, propertyID.String())
	s.logger.Info(ctx, "property moderated")
	return s.find(ctx, propertyID)
}

// Delete removes a listing owned by the caller.
func (s *Service) Delete(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	property, err := s.find(ctx, propertyID)
	if err != nil {
		return err
	}
	if property.OwnerID != ownerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "property belongs to another owner")
	}
	if err := s.repo.Delete(ctx, propertyID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting property")
	}
	return nil
}

// FindByID implements the lookup sibling services consume.
func (s *Service) FindByID(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	return s.repo.FindByID(ctx, propertyID)
}

func (s *Service) find(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	property, err := s.repo.FindByID(ctx, propertyID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading property")
	}
	return property, nil
}

func setIf[T any](updates map[string]any, column string, value *T) {
	if value != nil {
		updates[column] = *value
	}
}
