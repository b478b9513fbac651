package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/db"
	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

// BookingReader is the slice of the booking service the chat flow needs.
type BookingReader interface {
	FindByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
}

type messagePublisher interface {
	MessageSent(ctx context.Context, conversation *models.ChatConversation, message *models.ChatMessage)
}

// ServiceParams groups dependencies for the chat service.
type ServiceParams struct {
	Repo      Repository
	Bookings  BookingReader
	Publisher messagePublisher
	Logger    *logger.Logger
}

// Service manages booking-scoped conversations and their messages.
type Service struct {
	repo      Repository
	bookings  BookingReader
	publisher messagePublisher
	logger    *logger.Logger
}

// NewService builds a chat service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Bookings == nil {
		return nil, errors.New("booking reader is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		repo:      params.Repo,
		bookings:  params.Bookings,
		publisher: params.Publisher,
		logger:    params.Logger,
	}, nil
}

// OpenForBooking returns the booking's conversation, creating it lazily
// on first access. Only booking participants may open it.
func (s *Service) OpenForBooking(ctx context.Context, callerID, bookingID uuid.UUID) (*models.ChatConversation, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != callerID && booking.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}
	return s.conversationForBooking(ctx, booking)
}

func (s *Service) conversationForBooking(ctx context.Context, booking *models.Booking) (*models.ChatConversation, error) {
	conversation, err := s.repo.FindConversationByBooking(ctx, booking.ID)
	if err == nil {
		return conversation, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading conversation")
	}

	created, err := s.repo.CreateConversation(ctx, &models.ChatConversation{
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		RenterID:   booking.RenterID,
		OwnerID:    booking.OwnerID,
		Status:     enums.ConversationStatusOpen,
	})
	if err != nil {
		// Two participants opening simultaneously race on the unique
		// booking_id; the loser reads the winner's row.
		if db.IsUniqueViolation(err) {
			return s.repo.FindConversationByBooking(ctx, booking.ID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating conversation")
	}
	return created, nil
}

// ListForUser pages the caller's conversations.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ChatConversation, *pagination.Cursor, error) {
	return s.repo.ListConversationsForUser(ctx, userID, params)
}

// Messages pages a conversation's history ascending. Only participants
// may read it.
func (s *Service) Messages(ctx context.Context, callerID, conversationID uuid.UUID, params pagination.Params) ([]models.ChatMessage, *pagination.Cursor, error) {
	conversation, err := s.findConversation(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	if conversation.RenterID != callerID && conversation.OwnerID != callerID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "conversation belongs to other users")
	}
	return s.repo.ListMessages(ctx, conversationID, params)
}

// Send appends a message after the gate and content filter pass.
func (s *Service) Send(ctx context.Context, callerID, conversationID uuid.UUID, text string) (*models.ChatMessage, error) {
	conversation, err := s.findConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation.RenterID != callerID && conversation.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "conversation belongs to other users")
	}

	booking, err := s.bookings.FindByID(ctx, conversation.BookingID)
	if err != nil {
		return nil, err
	}
	if err := Gate(booking.Status, conversation.Status); err != nil {
		return nil, err
	}
	if err := FilterMessage(text); err != nil {
		return nil, err
	}

	return s.appendMessage(ctx, conversation, &models.ChatMessage{
		ConversationID: conversation.ID,
		SenderID:       &callerID,
		Text:           text,
	})
}

// SendSystem appends a platform-generated message with no sender. It
// bypasses the content filter and the gate; the platform announces state
// changes on conversations users cannot write to yet.
func (s *Service) SendSystem(ctx context.Context, conversationID uuid.UUID, text string) (*models.ChatMessage, error) {
	conversation, err := s.findConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return s.appendMessage(ctx, conversation, &models.ChatMessage{
		ConversationID: conversation.ID,
		Text:           text,
		IsSystem:       true,
	})
}

// PaymentConfirmed posts the payment-confirmation announcement into the
// booking's conversation, creating it when neither participant has opened
// chat yet. Called from the payment flow after a booking advances; failures
// never bubble back into the payment.
func (s *Service) PaymentConfirmed(ctx context.Context, booking *models.Booking) {
	if booking == nil {
		return
	}
	ctx = s.logger.WithBookingID(ctx, booking.ID.String())
	conversation, err := s.conversationForBooking(ctx, booking)
	if err != nil {
		s.logger.Warn(ctx, "failed to open conversation for payment announcement")
		return
	}
	if _, err := s.SendSystem(ctx, conversation.ID, "Payment confirmed. The chat is now open until check-out."); err != nil {
		s.logger.Warn(ctx, "failed to post payment announcement")
	}
}

// Moderate updates a conversation's status. Admin only, enforced by the
// caller.
func (s *Service) Moderate(ctx context.Context, conversationID uuid.UUID, status enums.ConversationStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid conversation status")
	}
	if _, err := s.findConversation(ctx, conversationID); err != nil {
		return err
	}
	if err := s.repo.UpdateConversationStatus(ctx, conversationID, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating conversation status")
	}
	return nil
}

func (s *Service) appendMessage(ctx context.Context, conversation *models.ChatConversation, message *models.ChatMessage) (*models.ChatMessage, error) {
	created, err := s.repo.CreateMessage(ctx, message)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating message")
	}
	if err := s.repo.TouchLastMessage(ctx, conversation.ID, time.Now().UTC()); err != nil {
		s.logger.Warn(ctx, "failed to touch conversation last_message_at")
	}
	if s.publisher != nil {
		s.publisher.MessageSent(ctx, conversation, created)
	}
	return created, nil
}

func (s *Service) findConversation(ctx context.Context, conversationID uuid.UUID) (*models.ChatConversation, error) {
	conversation, err := s.repo.FindConversationByID(ctx, conversationID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading conversation")
	}
	return conversation, nil
}
