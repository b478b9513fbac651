package chat

import (
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
)

// writableBookingStatuses are the booking states that unlock messaging.
// Chat opens once payment is captured and stays open through checkout so
// parties can settle post-stay questions.
var writableBookingStatuses = map[enums.BookingStatus]bool{
	enums.BookingStatusPreChecking: true,
	enums.BookingStatusCheckedIn:   true,
	enums.BookingStatusCheckedOut:  true,
}

// Gate rejects message sends on conversations that are not writable,
// with an error explaining which rule blocked it.
func Gate(bookingStatus enums.BookingStatus, conversationStatus enums.ConversationStatus) error {
	if conversationStatus != enums.ConversationStatusOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "conversation is "+conversationStatus.String())
	}
	if !writableBookingStatuses[bookingStatus] {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "chat unlocks after payment is confirmed")
	}
	return nil
}
