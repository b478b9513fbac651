package properties

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

type stubPropertyRepo struct {
	property *models.Property
	updates  map[string]any
	deleted  bool
}

func (s *stubPropertyRepo) Create(ctx context.Context, property *models.Property) (*models.Property, error) {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	s.property = property
	return property, nil
}

func (s *stubPropertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if s.property == nil || s.property.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s.property
	return &clone, nil
}

func (s *stubPropertyRepo) List(ctx context.Context, query ListQuery, params pagination.Params) ([]models.Property, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubPropertyRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	if s.property != nil {
		if status, ok := updates["status"].(enums.PropertyStatus); ok {
			s.property.Status = status
		}
		if verified, ok := updates["verified"].(bool); ok {
			s.property.Verified = verified
		}
	}
	return nil
}

func (s *stubPropertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Logger: logger.New(logger.Options{ServiceName: "properties-test"}),
	})
	require.NoError(t, err)
	return svc
}

func TestCreateStartsPending(t *testing.T) {
	repo := &stubPropertyRepo{}
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Title:    "Casa na praia",
		Price:    300,
		RentType: enums.RentTypeDaily,
	})
	require.NoError(t, err)
	require.Equal(t, enums.PropertyStatusPending, created.Status)
	require.Equal(t, 1, created.MinimumNights)
}

func TestCreateRejectsInvalidRentType(t *testing.T) {
	svc := newTestService(t, &stubPropertyRepo{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Title:    "Casa",
		RentType: enums.RentType("hourly"),
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetHidesUnapprovedFromStrangers(t *testing.T) {
	ownerID := uuid.New()
	repo := &stubPropertyRepo{property: &models.Property{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Status:  enums.PropertyStatusPending,
	}}
	svc := newTestService(t, repo)

	_, err := svc.Get(context.Background(), uuid.New(), enums.UserRoleUser, repo.property.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	got, err := svc.Get(context.Background(), ownerID, enums.UserRoleUser, repo.property.ID)
	require.NoError(t, err)
	require.Equal(t, repo.property.ID, got.ID)

	got, err = svc.Get(context.Background(), uuid.New(), enums.UserRoleAdmin, repo.property.ID)
	require.NoError(t, err)
	require.Equal(t, repo.property.ID, got.ID)
}

func TestUpdateResetsModeration(t *testing.T) {
	ownerID := uuid.New()
	repo := &stubPropertyRepo{property: &models.Property{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Status:   enums.PropertyStatusApproved,
		Verified: true,
	}}
	svc := newTestService(t, repo)

	price := int64(450)
	_, err := svc.Update(context.Background(), ownerID, repo.property.ID, UpdateInput{Price: &price})
	require.NoError(t, err)

	require.Equal(t, int64(450), repo.updates["price"])
	require.Equal(t, enums.PropertyStatusPending, repo.updates["status"])
	require.Equal(t, false, repo.updates["verified"])
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	repo := &stubPropertyRepo{property: &models.Property{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
	}}
	svc := newTestService(t, repo)

	title := "novo titulo"
	_, err := svc.Update(context.Background(), uuid.New(), repo.property.ID, UpdateInput{Title: &title})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestModerate(t *testing.T) {
	repo := &stubPropertyRepo{property: &models.Property{
		ID:     uuid.New(),
		Status: enums.PropertyStatusPending,
	}}
	svc := newTestService(t, repo)

	approved := enums.PropertyStatusApproved
	verified := true
	updated, err := svc.Moderate(context.Background(), repo.property.ID, ModerationInput{
		Status:   &approved,
		Verified: &verified,
	})
	require.NoError(t, err)
	require.Equal(t, enums.PropertyStatusApproved, updated.Status)
	require.True(t, updated.Verified)
}

func TestModerateRequiresFields(t *testing.T) {
	repo := &stubPropertyRepo{property: &models.Property{ID: uuid.New()}}
	svc := newTestService(t, repo)

	_, err := svc.Moderate(context.Background(), repo.property.ID, ModerationInput{})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
