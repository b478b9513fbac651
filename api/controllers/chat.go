package controllers

import (
	"net/http"

	"github.com/alugafacil/alugafacil-backend/api/responses"
	"github.com/alugafacil/alugafacil-backend/api/validators"
	"github.com/alugafacil/alugafacil-backend/internal/chat"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"github.com/alugafacil/alugafacil-backend/pkg/pagination"
)

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type conversationPage struct {
	Conversation *chat.ConversationDTO `json:"conversation"`
	Messages     []chat.MessageDTO     `json:"messages"`
	NextCursor   string                `json:"next_cursor,omitempty"`
}

// ChatOpenForBooking returns the booking's conversation with its recent
// messages, creating the conversation on first access.
func ChatOpenForBooking(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := parseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversation, err := svc.OpenForBooking(r.Context(), caller, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messages, cursor, err := svc.Messages(r.Context(), caller, conversation.ID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := conversationPage{
			Conversation: chat.ConversationFromModel(conversation),
			Messages:     chat.MessagesFromModels(messages),
		}
		if cursor != nil {
			page.NextCursor = pagination.EncodeCursor(*cursor)
		}
		responses.WriteSuccess(w, page)
	}
}

// ChatSendForBooking appends a message to the booking's conversation,
// creating the conversation on first use.
func ChatSendForBooking(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := parseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body sendMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversation, err := svc.OpenForBooking(r.Context(), caller, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.Send(r.Context(), caller, conversation.ID, body.Text)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, chat.MessageFromModel(message))
	}
}

// ChatListConversations pages the caller's threads.
func ChatListConversations(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, cursor, err := svc.ListForUser(r.Context(), caller, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPage(chat.ConversationsFromModels(list), cursor))
	}
}

// ChatListMessages pages a conversation's history oldest-first.
func ChatListMessages(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversationID, err := parseUUIDParam(r, "conversationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, cursor, err := svc.Messages(r.Context(), caller, conversationID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPage(chat.MessagesFromModels(list), cursor))
	}
}

// ChatSendMessage appends a message if the booking state and content
// filter allow it.
func ChatSendMessage(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversationID, err := parseUUIDParam(r, "conversationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body sendMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.Send(r.Context(), caller, conversationID, body.Text)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, chat.MessageFromModel(message))
	}
}
