package pricing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alugafacil/alugafacil-backend/pkg/enums"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
)

const (
	// DefaultClientFeePercent is charged to the renter on top of the base.
	DefaultClientFeePercent = 10.0
	// DefaultOwnerFeePercent is withheld from the owner payout.
	DefaultOwnerFeePercent = 4.0

	daysPerMonthlyUnit = 30
)

// ErrInvalidRange is returned when checkout is not strictly after checkin.
var ErrInvalidRange = pkgerrors.New(pkgerrors.CodeValidation, "check-out must be after check-in")

// Quote is the deterministic monetary breakdown for a stay.
type Quote struct {
	Units             int   `json:"units"`
	BaseAmount        int64 `json:"base_amount"`
	CleaningFee       int64 `json:"cleaning_fee"`
	ClientFeeAmount   int64 `json:"client_fee_amount"`
	OwnerFeeAmount    int64 `json:"owner_fee_amount"`
	TotalPaidByRenter int64 `json:"total_paid_by_renter"`
	OwnerPayoutAmount int64 `json:"owner_payout_amount"`
}

// Engine computes quotes. Fee percentages are configurable so staging
// environments can run with different splits.
type Engine struct {
	clientFeePercent decimal.Decimal
	ownerFeePercent  decimal.Decimal
}

// NewEngine builds a pricing engine. Non-positive percentages fall back
// to the defaults.
func NewEngine(clientFeePercent, ownerFeePercent float64) *Engine {
	if clientFeePercent <= 0 {
		clientFeePercent = DefaultClientFeePercent
	}
	if ownerFeePercent <= 0 {
		ownerFeePercent = DefaultOwnerFeePercent
	}
	return &Engine{
		clientFeePercent: decimal.NewFromFloat(clientFeePercent).Div(decimal.NewFromInt(100)),
		ownerFeePercent:  decimal.NewFromFloat(ownerFeePercent).Div(decimal.NewFromInt(100)),
	}
}

// BillableUnits converts a date range into chargeable units. Monthly
// rentals bill per started 30-day block, all other rent types bill per
// day. Returns ErrInvalidRange when checkout is not after checkin.
func BillableUnits(rentType enums.RentType, checkIn, checkOut time.Time) (int, error) {
	if !checkOut.After(checkIn) {
		return 0, ErrInvalidRange
	}

	days := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if days < 1 {
		days = 1
	}

	if rentType == enums.RentTypeMonthly {
		units := (days + daysPerMonthlyUnit - 1) / daysPerMonthlyUnit
		if units < 1 {
			units = 1
		}
		return units, nil
	}
	return days, nil
}

// Quote computes the full breakdown for a stay. Amounts are whole
// currency units; percentage fees round half-up. The cleaning fee is
// added once, outside the percentage fees.
func (e *Engine) Quote(rentType enums.RentType, checkIn, checkOut time.Time, unitPrice, cleaningFee int64) (Quote, error) {
	units, err := BillableUnits(rentType, checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}

	base := unitPrice * int64(units)
	baseDec := decimal.NewFromInt(base)
	clientFee := baseDec.Mul(e.clientFeePercent).Round(0).IntPart()
	ownerFee := baseDec.Mul(e.ownerFeePercent).Round(0).IntPart()

	return Quote{
		Units:             units,
		BaseAmount:        base,
		CleaningFee:       cleaningFee,
		ClientFeeAmount:   clientFee,
		OwnerFeeAmount:    ownerFee,
		TotalPaidByRenter: base + cleaningFee + clientFee,
		OwnerPayoutAmount: base + cleaningFee - ownerFee,
	}, nil
}
