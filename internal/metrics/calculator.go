package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/money"
)

// CostReader exposes the cost aggregates the calculator needs.
type CostReader interface {
	SumOneTimeCosts(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error)
	SumActiveMonthlyRecurring(ctx context.Context, projectID int64) (decimal.Decimal, error)
}

// RevenueReader exposes revenue-stream aggregates.
type RevenueReader interface {
	SumRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error)
}

// BookingReader exposes booking aggregates, which only count CONFIRMED and
// COMPLETED bookings.
type BookingReader interface {
	SumGrossRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error)
	SumCommissions(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error)
	SumNights(ctx context.Context, projectID int64, from, to time.Time) (int64, error)
	SumNightsByYear(ctx context.Context, projectID int64, year int) (int64, error)
}

// SubscriptionReader exposes subscription aggregates.
type SubscriptionReader interface {
	SumActiveMRR(ctx context.Context, projectID int64) (decimal.Decimal, error)
	CountActiveSubscriptions(ctx context.Context, projectID int64) (int64, error)
}

// Calculator derives KPIs from the ledger aggregates. All methods are pure
// over their readers. Every division guards its divisor: a zero divisor
// yields a zero result, never an error.
type Calculator struct {
	costs         CostReader
	revenues      RevenueReader
	bookings      BookingReader
	subscriptions SubscriptionReader
}

// NewCalculator constructs a calculator.
func NewCalculator(costs CostReader, revenues RevenueReader, bookings BookingReader, subscriptions SubscriptionReader) *Calculator {
	return &Calculator{costs: costs, revenues: revenues, bookings: bookings, subscriptions: subscriptions}
}

// TotalCosts sums one-time costs dated in the range plus the active
// monthly recurring total multiplied by the whole months spanned,
// inclusive. A range inside one calendar month counts as one month of
// recurring cost; this is a whole-month approximation, not day-weighted
// proration.
func (c *Calculator) TotalCosts(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	oneTime, err := c.costs.SumOneTimeCosts(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum one-time costs: %w", err)
	}
	monthlyRecurring, err := c.costs.SumActiveMonthlyRecurring(ctx, projectID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum recurring costs: %w", err)
	}
	months := monthsSpanned(from, to)
	return oneTime.Add(monthlyRecurring.Mul(decimal.NewFromInt(months))), nil
}

// TotalRevenue sums revenue-stream amounts dated in the range.
func (c *Calculator) TotalRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return c.revenues.SumRevenue(ctx, projectID, from, to)
}

// Profit is revenue minus costs for the range.
func (c *Calculator) Profit(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	revenue, err := c.TotalRevenue(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	costs, err := c.TotalCosts(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return revenue.Sub(costs), nil
}

// ROI is ((revenue - costs) / costs) x 100. Zero costs yield zero.
func (c *Calculator) ROI(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	costs, err := c.TotalCosts(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	revenue, err := c.TotalRevenue(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Percent(revenue.Sub(costs), costs), nil
}

// ADR is booking gross revenue divided by nights sold. No nights sold
// yields zero.
func (c *Calculator) ADR(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	revenue, err := c.bookings.SumGrossRevenue(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	nights, err := c.bookings.SumNights(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return money.SafeDiv(revenue, decimal.NewFromInt(nights)), nil
}

// ADRByYear is ADR over a calendar year.
func (c *Calculator) ADRByYear(ctx context.Context, projectID int64, year int) (decimal.Decimal, error) {
	from, to := yearRange(year)
	return c.ADR(ctx, projectID, from, to)
}

// OccupancyRate is (nights booked / days in the year) x 100.
func (c *Calculator) OccupancyRate(ctx context.Context, projectID int64, year int) (decimal.Decimal, error) {
	nights, err := c.bookings.SumNightsByYear(ctx, projectID, year)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Percent(decimal.NewFromInt(nights), decimal.NewFromInt(int64(daysInYear(year)))), nil
}

// RevPAR is booking gross revenue for the year divided by the days in it.
func (c *Calculator) RevPAR(ctx context.Context, projectID int64, year int) (decimal.Decimal, error) {
	from, to := yearRange(year)
	revenue, err := c.bookings.SumGrossRevenue(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return money.SafeDiv(revenue, decimal.NewFromInt(int64(daysInYear(year)))), nil
}

// TotalCommissions sums platform commissions on bookings in the range.
func (c *Calculator) TotalCommissions(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return c.bookings.SumCommissions(ctx, projectID, from, to)
}

// NetBookingRevenue is booking gross revenue minus commissions.
func (c *Calculator) NetBookingRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	revenue, err := c.bookings.SumGrossRevenue(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	commissions, err := c.bookings.SumCommissions(ctx, projectID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return revenue.Sub(commissions), nil
}

// MRR sums the MRR of ACTIVE subscriptions.
func (c *Calculator) MRR(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	return c.subscriptions.SumActiveMRR(ctx, projectID)
}

// ARR is MRR x 12.
func (c *Calculator) ARR(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	mrr, err := c.MRR(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	return mrr.Mul(decimal.NewFromInt(12)), nil
}

// ARPU is MRR divided by the active subscription count. No active
// subscriptions yield zero.
func (c *Calculator) ARPU(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	mrr, err := c.MRR(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	count, err := c.subscriptions.CountActiveSubscriptions(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	return money.SafeDiv(mrr, decimal.NewFromInt(count)), nil
}

// GrowthRate is ((current - previous) / previous) x 100. A zero previous
// value yields zero.
func GrowthRate(current, previous decimal.Decimal) decimal.Decimal {
	return money.Percent(current.Sub(previous), previous)
}

// ProfitGrowth compares profit across two periods.
func (c *Calculator) ProfitGrowth(ctx context.Context, projectID int64, currentFrom, currentTo, previousFrom, previousTo time.Time) (decimal.Decimal, error) {
	current, err := c.Profit(ctx, projectID, currentFrom, currentTo)
	if err != nil {
		return decimal.Zero, err
	}
	previous, err := c.Profit(ctx, projectID, previousFrom, previousTo)
	if err != nil {
		return decimal.Zero, err
	}
	return GrowthRate(current, previous), nil
}

// RevenueGrowth compares revenue across two periods.
func (c *Calculator) RevenueGrowth(ctx context.Context, projectID int64, currentFrom, currentTo, previousFrom, previousTo time.Time) (decimal.Decimal, error) {
	current, err := c.TotalRevenue(ctx, projectID, currentFrom, currentTo)
	if err != nil {
		return decimal.Zero, err
	}
	previous, err := c.TotalRevenue(ctx, projectID, previousFrom, previousTo)
	if err != nil {
		return decimal.Zero, err
	}
	return GrowthRate(current, previous), nil
}

// monthsSpanned counts whole calendar months between the dates, plus one.
// A range entirely within one month counts as one.
func monthsSpanned(from, to time.Time) int64 {
	months := int64(to.Year()-from.Year())*12 + int64(to.Month()-from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months + 1
}

func yearRange(year int) (time.Time, time.Time) {
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
	return from, to
}

func daysInYear(year int) int {
	return time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
