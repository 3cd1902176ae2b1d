package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeLedger implements all reader interfaces with fixed aggregates.
type fakeLedger struct {
	oneTimeCosts     decimal.Decimal
	monthlyRecurring decimal.Decimal
	revenue          decimal.Decimal
	bookingRevenue   decimal.Decimal
	commissions      decimal.Decimal
	nights           int64
	yearNights       int64
	mrr              decimal.Decimal
	activeSubs       int64
}

func (f *fakeLedger) SumOneTimeCosts(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return f.oneTimeCosts, nil
}

func (f *fakeLedger) SumActiveMonthlyRecurring(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	return f.monthlyRecurring, nil
}

func (f *fakeLedger) SumRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return f.revenue, nil
}

func (f *fakeLedger) SumGrossRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return f.bookingRevenue, nil
}

func (f *fakeLedger) SumCommissions(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return f.commissions, nil
}

func (f *fakeLedger) SumNights(ctx context.Context, projectID int64, from, to time.Time) (int64, error) {
	return f.nights, nil
}

func (f *fakeLedger) SumNightsByYear(ctx context.Context, projectID int64, year int) (int64, error) {
	return f.yearNights, nil
}

func (f *fakeLedger) SumActiveMRR(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	return f.mrr, nil
}

func (f *fakeLedger) CountActiveSubscriptions(ctx context.Context, projectID int64) (int64, error) {
	return f.activeSubs, nil
}

func newCalc(f *fakeLedger) *Calculator {
	return NewCalculator(f, f, f, f)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestROI(t *testing.T) {
	// costs 400, revenue 1000 -> profit 600 -> ROI 150.00%
	calc := newCalc(&fakeLedger{oneTimeCosts: dec("400"), revenue: dec("1000")})

	roi, err := calc.ROI(context.Background(), 1, date(2024, 1, 1), date(2024, 1, 31))
	if err != nil {
		t.Fatalf("ROI returned error: %v", err)
	}
	if !roi.Equal(dec("150.00")) {
		t.Fatalf("expected ROI 150.00, got %s", roi)
	}
}

func TestROIZeroCosts(t *testing.T) {
	calc := newCalc(&fakeLedger{revenue: dec("1000")})

	roi, err := calc.ROI(context.Background(), 1, date(2024, 1, 1), date(2024, 1, 31))
	if err != nil {
		t.Fatalf("ROI returned error: %v", err)
	}
	if !roi.IsZero() {
		t.Fatalf("zero costs must yield zero ROI, got %s", roi)
	}
}

func TestTotalCostsIncludesRecurring(t *testing.T) {
	// 100 one-time + 50/month across Jan..Mar = 100 + 150.
	calc := newCalc(&fakeLedger{oneTimeCosts: dec("100"), monthlyRecurring: dec("50")})

	costs, err := calc.TotalCosts(context.Background(), 1, date(2024, 1, 1), date(2024, 3, 31))
	if err != nil {
		t.Fatalf("TotalCosts returned error: %v", err)
	}
	if !costs.Equal(dec("250")) {
		t.Fatalf("expected total costs 250, got %s", costs)
	}
}

func TestMonthsSpanned(t *testing.T) {
	cases := []struct {
		from, to time.Time
		want     int64
	}{
		{date(2024, 1, 1), date(2024, 1, 31), 1},
		{date(2024, 1, 10), date(2024, 1, 12), 1},
		{date(2024, 1, 1), date(2024, 3, 31), 3},
		{date(2024, 1, 15), date(2024, 3, 10), 2},
		{date(2024, 1, 1), date(2024, 12, 31), 12},
		{date(2023, 11, 1), date(2024, 2, 29), 4},
	}
	for _, tc := range cases {
		if got := monthsSpanned(tc.from, tc.to); got != tc.want {
			t.Errorf("monthsSpanned(%s, %s) = %d, want %d",
				tc.from.Format("2006-01-02"), tc.to.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestADR(t *testing.T) {
	calc := newCalc(&fakeLedger{bookingRevenue: dec("1000.00"), nights: 8})

	adr, err := calc.ADR(context.Background(), 1, date(2024, 1, 1), date(2024, 12, 31))
	if err != nil {
		t.Fatalf("ADR returned error: %v", err)
	}
	if !adr.Equal(dec("125.00")) {
		t.Fatalf("expected ADR 125.00, got %s", adr)
	}
}

func TestADRNoNights(t *testing.T) {
	calc := newCalc(&fakeLedger{bookingRevenue: dec("1000.00")})

	adr, err := calc.ADR(context.Background(), 1, date(2024, 1, 1), date(2024, 12, 31))
	if err != nil {
		t.Fatalf("ADR returned error: %v", err)
	}
	if !adr.IsZero() {
		t.Fatalf("no nights sold must yield zero ADR, got %s", adr)
	}
}

func TestOccupancyRate(t *testing.T) {
	// 73 nights / 365 days in 2023 = 20%.
	calc := newCalc(&fakeLedger{yearNights: 73})

	rate, err := calc.OccupancyRate(context.Background(), 1, 2023)
	if err != nil {
		t.Fatalf("OccupancyRate returned error: %v", err)
	}
	if !rate.Equal(dec("20.00")) {
		t.Fatalf("expected occupancy 20.00, got %s", rate)
	}
}

func TestOccupancyRateLeapYear(t *testing.T) {
	calc := newCalc(&fakeLedger{yearNights: 183})

	rate, err := calc.OccupancyRate(context.Background(), 1, 2024)
	if err != nil {
		t.Fatalf("OccupancyRate returned error: %v", err)
	}
	// 183/366 = 0.5 exactly.
	if !rate.Equal(dec("50.00")) {
		t.Fatalf("expected occupancy 50.00 in a leap year, got %s", rate)
	}
}

func TestRevPAR(t *testing.T) {
	calc := newCalc(&fakeLedger{bookingRevenue: dec("7320.00")})

	revpar, err := calc.RevPAR(context.Background(), 1, 2024)
	if err != nil {
		t.Fatalf("RevPAR returned error: %v", err)
	}
	// 7320 / 366 = 20.00
	if !revpar.Equal(dec("20.00")) {
		t.Fatalf("expected RevPAR 20.00, got %s", revpar)
	}
}

func TestSaaSMetrics(t *testing.T) {
	// 250.00 MRR across 5 active subs -> ARR 3000.00, ARPU 50.00.
	calc := newCalc(&fakeLedger{mrr: dec("250.00"), activeSubs: 5})
	ctx := context.Background()

	arr, err := calc.ARR(ctx, 1)
	if err != nil {
		t.Fatalf("ARR returned error: %v", err)
	}
	if !arr.Equal(dec("3000.00")) {
		t.Fatalf("expected ARR 3000.00, got %s", arr)
	}

	arpu, err := calc.ARPU(ctx, 1)
	if err != nil {
		t.Fatalf("ARPU returned error: %v", err)
	}
	if !arpu.Equal(dec("50.00")) {
		t.Fatalf("expected ARPU 50.00, got %s", arpu)
	}
}

func TestARPUNoActiveSubscriptions(t *testing.T) {
	calc := newCalc(&fakeLedger{mrr: dec("250.00")})

	arpu, err := calc.ARPU(context.Background(), 1)
	if err != nil {
		t.Fatalf("ARPU returned error: %v", err)
	}
	if !arpu.IsZero() {
		t.Fatalf("no active subscriptions must yield zero ARPU, got %s", arpu)
	}
}

func TestGrowthRate(t *testing.T) {
	if got := GrowthRate(dec("150"), dec("100")); !got.Equal(dec("50.00")) {
		t.Fatalf("expected growth 50.00, got %s", got)
	}
	if got := GrowthRate(dec("50"), dec("100")); !got.Equal(dec("-50.00")) {
		t.Fatalf("expected growth -50.00, got %s", got)
	}
	if got := GrowthRate(dec("150"), decimal.Zero); !got.IsZero() {
		t.Fatalf("zero previous value must yield zero growth, got %s", got)
	}
}

func TestNetBookingRevenue(t *testing.T) {
	calc := newCalc(&fakeLedger{bookingRevenue: dec("1000.00"), commissions: dec("150.00")})

	net, err := calc.NetBookingRevenue(context.Background(), 1, date(2024, 1, 1), date(2024, 12, 31))
	if err != nil {
		t.Fatalf("NetBookingRevenue returned error: %v", err)
	}
	if !net.Equal(dec("850.00")) {
		t.Fatalf("expected net revenue 850.00, got %s", net)
	}
}
