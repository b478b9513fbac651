package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBillableUnitsDaily(t *testing.T) {
	units, err := BillableUnits(enums.RentTypeDaily, date(2024, 3, 1), date(2024, 3, 5))
	require.NoError(t, err)
	require.Equal(t, 4, units)
}

func TestBillableUnitsSeasonalSingleNight(t *testing.T) {
	units, err := BillableUnits(enums.RentTypeSeasonal, date(2024, 3, 1), date(2024, 3, 2))
	require.NoError(t, err)
	require.Equal(t, 1, units)
}

func TestBillableUnitsMonthly(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"exactly 30 days", date(2024, 3, 1), date(2024, 3, 31), 1},
		{"31 days rounds up", date(2024, 3, 1), date(2024, 4, 1), 2},
		{"half month still one unit", date(2024, 3, 1), date(2024, 3, 16), 1},
		{"90 days", date(2024, 3, 1), date(2024, 5, 30), 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			units, err := BillableUnits(enums.RentTypeMonthly, tc.checkIn, tc.checkOut)
			require.NoError(t, err)
			require.Equal(t, tc.want, units)
		})
	}
}

func TestBillableUnitsInvalidRange(t *testing.T) {
	_, err := BillableUnits(enums.RentTypeDaily, date(2024, 3, 5), date(2024, 3, 5))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = BillableUnits(enums.RentTypeDaily, date(2024, 3, 5), date(2024, 3, 1))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestQuoteDaily(t *testing.T) {
	engine := NewEngine(0, 0)

	quote, err := engine.Quote(enums.RentTypeDaily, date(2024, 3, 1), date(2024, 3, 5), 200, 80)
	require.NoError(t, err)

	require.Equal(t, 4, quote.Units)
	require.Equal(t, int64(800), quote.BaseAmount)
	require.Equal(t, int64(80), quote.CleaningFee)
	require.Equal(t, int64(80), quote.ClientFeeAmount)
	require.Equal(t, int64(32), quote.OwnerFeeAmount)
	require.Equal(t, int64(960), quote.TotalPaidByRenter)
	require.Equal(t, int64(848), quote.OwnerPayoutAmount)
}

func TestQuoteRoundsHalfUp(t *testing.T) {
	engine := NewEngine(0, 0)

	// base 125: client fee 12.5 rounds to 13, owner fee 5.0 stays 5.
	quote, err := engine.Quote(enums.RentTypeDaily, date(2024, 3, 1), date(2024, 3, 2), 125, 0)
	require.NoError(t, err)

	require.Equal(t, int64(125), quote.BaseAmount)
	require.Equal(t, int64(13), quote.ClientFeeAmount)
	require.Equal(t, int64(5), quote.OwnerFeeAmount)
	require.Equal(t, int64(138), quote.TotalPaidByRenter)
	require.Equal(t, int64(120), quote.OwnerPayoutAmount)
}

func TestQuoteOwnerFeeRounding(t *testing.T) {
	engine := NewEngine(0, 0)

	// base 113: owner fee 4.52 rounds to 5.
	quote, err := engine.Quote(enums.RentTypeDaily, date(2024, 3, 1), date(2024, 3, 2), 113, 0)
	require.NoError(t, err)
	require.Equal(t, int64(5), quote.OwnerFeeAmount)
	require.Equal(t, int64(11), quote.ClientFeeAmount)
}

func TestQuoteMonthly(t *testing.T) {
	engine := NewEngine(0, 0)

	quote, err := engine.Quote(enums.RentTypeMonthly, date(2024, 3, 1), date(2024, 4, 15), 1500, 100)
	require.NoError(t, err)

	require.Equal(t, 2, quote.Units)
	require.Equal(t, int64(3000), quote.BaseAmount)
	require.Equal(t, int64(300), quote.ClientFeeAmount)
	require.Equal(t, int64(120), quote.OwnerFeeAmount)
	require.Equal(t, int64(3400), quote.TotalPaidByRenter)
	require.Equal(t, int64(2980), quote.OwnerPayoutAmount)
}

func TestQuoteInvalidRange(t *testing.T) {
	engine := NewEngine(0, 0)

	quote, err := engine.Quote(enums.RentTypeDaily, date(2024, 3, 5), date(2024, 3, 1), 100, 0)
	require.ErrorIs(t, err, ErrInvalidRange)
	require.Zero(t, quote.Units)
}

func TestQuoteCustomPercentages(t *testing.T) {
	engine := NewEngine(12, 6)

	quote, err := engine.Quote(enums.RentTypeDaily, date(2024, 3, 1), date(2024, 3, 2), 100, 0)
	require.NoError(t, err)
	require.Equal(t, int64(12), quote.ClientFeeAmount)
	require.Equal(t, int64(6), quote.OwnerFeeAmount)
}
