package bookings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/money"
	"github.com/projectledger/projectledger/internal/shared"
)

// Derived are the financial figures computed from a booking's dates, price
// and commission rate. They are a pure function of those inputs, so any
// write that changes an input recomputes them.
type Derived struct {
	Nights           int
	PricePerNight    decimal.Decimal
	CommissionAmount decimal.Decimal
	NetRevenue       decimal.Decimal
}

// Derive computes nights, price per night, commission amount and net
// revenue. checkout must be strictly after checkin and price must be
// positive; both are rejected with ErrInvalidInput.
//
// A three-night booking at 300.00 with a 15% rate yields a 100.00 nightly
// price, 45.00 commission and 255.00 net revenue.
func Derive(checkin, checkout time.Time, price, commissionRate decimal.Decimal) (Derived, error) {
	nights := nightsBetween(checkin, checkout)
	if nights <= 0 {
		return Derived{}, shared.Invalidf("checkout date must be after checkin date")
	}
	if !price.IsPositive() {
		return Derived{}, shared.Invalidf("total price must be positive")
	}

	commission := money.PercentOf(price, commissionRate)
	return Derived{
		Nights:           nights,
		PricePerNight:    money.SafeDiv(price, decimal.NewFromInt(int64(nights))),
		CommissionAmount: commission,
		NetRevenue:       price.Sub(commission),
	}, nil
}

// nightsBetween counts whole days between the two calendar dates,
// ignoring any time-of-day or zone component.
func nightsBetween(checkin, checkout time.Time) int {
	ci := time.Date(checkin.Year(), checkin.Month(), checkin.Day(), 0, 0, 0, 0, time.UTC)
	co := time.Date(checkout.Year(), checkout.Month(), checkout.Day(), 0, 0, 0, 0, time.UTC)
	return int(co.Sub(ci) / (24 * time.Hour))
}
