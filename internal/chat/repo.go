package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

// Repository handles chat persistence.
type Repository interface {
	CreateConversation(ctx context.Context, conversation *models.ChatConversation) (*models.ChatConversation, error)
	FindConversationByID(ctx context.Context, id uuid.UUID) (*models.ChatConversation, error)
	FindConversationByBooking(ctx context.Context, bookingID uuid.UUID) (*models.ChatConversation, error)
	ListConversationsForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ChatConversation, *pagination.Cursor, error)
	UpdateConversationStatus(ctx context.Context, id uuid.UUID, status enums.ConversationStatus) error
	TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error
	CreateMessage(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID, params pagination.Params) ([]models.ChatMessage, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a chat repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateConversation(ctx context.Context, conversation *models.ChatConversation) (*models.ChatConversation, error) {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

func (r *repository) FindConversationByID(ctx context.Context, id uuid.UUID) (*models.ChatConversation, error) {
	var conversation models.ChatConversation
	if err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *repository) FindConversationByBooking(ctx context.Context, bookingID uuid.UUID) (*models.ChatConversation, error) {
	var conversation models.ChatConversation
	if err := r.db.WithContext(ctx).First(&conversation, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *repository) ListConversationsForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ChatConversation, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("renter_id = ? OR owner_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var conversations []models.ChatConversation
	if err := query.Find(&conversations).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(conversations) > limit {
		conversations = conversations[:limit]
		last := conversations[len(conversations)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return conversations, next, nil
}

func (r *repository) UpdateConversationStatus(ctx context.Context, id uuid.UUID, status enums.ConversationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatConversation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatConversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}

func (r *repository) CreateMessage(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages pages ascending by creation time so clients render history
// top to bottom; the cursor advances forward.
func (r *repository) ListMessages(ctx context.Context, conversationID uuid.UUID, params pagination.Params) ([]models.ChatMessage, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(limit))

	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(messages) > limit {
		messages = messages[:limit]
		last := messages[len(messages)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return messages, next, nil
}
