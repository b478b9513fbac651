package booking

import (
	"fmt"

	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
)

// Actor identifies who is requesting a booking transition.
type Actor string

const (
	ActorRenter Actor = "renter"
	ActorOwner  Actor = "owner"
	// ActorPayment is the reconciliation flow reacting to an approved
	// provider payment. It is the only non-human actor.
	ActorPayment Actor = "payment"
)

type transition struct {
	from enums.BookingStatus
	to   enums.BookingStatus
}

// transitionTable is the single authoritative map of legal booking
// transitions and the actors allowed to request each one. Every entry
// point consults this table, nothing else encodes lifecycle rules.
var transitionTable = map[transition][]Actor{
	// Manual renter self-report, kept alongside the provider-verified path.
	{enums.BookingStatusPendingPayment, enums.BookingStatusConfirmed}: {ActorRenter},

	// Provider-verified payment approval. FinalizableFrom below widens
	// this to every pre-payment state.
	{enums.BookingStatusPendingPayment, enums.BookingStatusPreChecking}: {ActorPayment},
	{enums.BookingStatusConfirmed, enums.BookingStatusPreChecking}:      {ActorPayment},

	// Physical check-in and check-out are owner actions.
	{enums.BookingStatusConfirmed, enums.BookingStatusCheckedIn}:   {ActorOwner},
	{enums.BookingStatusPreChecking, enums.BookingStatusCheckedIn}: {ActorOwner},
	{enums.BookingStatusCheckedIn, enums.BookingStatusCheckedOut}:  {ActorOwner},

	// Any active state can be abandoned by either party.
	{enums.BookingStatusPendingPayment, enums.BookingStatusCancelled}: {ActorRenter, ActorOwner},
	{enums.BookingStatusConfirmed, enums.BookingStatusCancelled}:      {ActorRenter, ActorOwner},
	{enums.BookingStatusPreChecking, enums.BookingStatusCancelled}:    {ActorRenter, ActorOwner},
	{enums.BookingStatusCheckedIn, enums.BookingStatusCancelled}:      {ActorOwner},
}

// finalizeExcluded are the states an approved payment must never regress.
// An approved webhook for a booking already in one of these is a no-op.
var finalizeExcluded = map[enums.BookingStatus]bool{
	enums.BookingStatusPreChecking: true,
	enums.BookingStatusCheckedIn:   true,
	enums.BookingStatusCheckedOut:  true,
	enums.BookingStatusCancelled:   true,
}

// CanTransition reports whether actor may move a booking from one status
// to another. Returns a state-conflict error naming both states otherwise.
func CanTransition(from, to enums.BookingStatus, actor Actor) error {
	actors, ok := transitionTable[transition{from: from, to: to}]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("booking cannot move from %s to %s", from, to))
	}
	for _, allowed := range actors {
		if allowed == actor {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s may not move a booking from %s to %s", actor, from, to))
}

// FinalizableFrom reports whether an approved payment may advance a
// booking in the given status to pre_checking. Applying it twice is
// harmless, regressing an advanced booking is what the exclusion set
// prevents.
func FinalizableFrom(status enums.BookingStatus) bool {
	return !finalizeExcluded[status]
}

// ActiveStatuses are the states that hold a property's dates against
// other bookings.
func ActiveStatuses() []enums.BookingStatus {
	return []enums.BookingStatus{
		enums.BookingStatusPreChecking,
		enums.BookingStatusConfirmed,
		enums.BookingStatusCheckedIn,
	}
}
