package metrics

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/projectledger/projectledger/internal/projects"
)

type countingLedger struct {
	fakeLedger
	revenueCalls atomic.Int64
}

func (c *countingLedger) SumRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	c.revenueCalls.Add(1)
	return c.fakeLedger.SumRevenue(ctx, projectID, from, to)
}

type metricKey struct {
	projectID int64
	date      time.Time
	typ       MetricType
	period    PeriodType
}

// memoryMetricStore mirrors the ON CONFLICT semantics of the real table:
// one row per (project, date, type, period) key, writes replace the value.
type memoryMetricStore struct {
	MetricStore
	rows   map[metricKey]CalculatedMetric
	nextID int64
}

func (m *memoryMetricStore) Upsert(ctx context.Context, metric CalculatedMetric) (CalculatedMetric, error) {
	if m.rows == nil {
		m.rows = map[metricKey]CalculatedMetric{}
	}
	key := metricKey{metric.ProjectID, metric.MetricDate, metric.MetricType, metric.PeriodType}
	if existing, ok := m.rows[key]; ok {
		metric.ID = existing.ID
	} else {
		m.nextID++
		metric.ID = m.nextID
	}
	m.rows[key] = metric
	return metric, nil
}

type fixedDirectory struct {
	project projects.Project
}

func (d *fixedDirectory) Get(ctx context.Context, id int64) (projects.Project, error) {
	p := d.project
	p.ID = id
	return p, nil
}

func newCachedService(t *testing.T, ledger *countingLedger, typ projects.ProjectType) (*Service, *memoryMetricStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &memoryMetricStore{}
	svc := NewService(
		NewCalculator(&ledger.fakeLedger, ledger, &ledger.fakeLedger, &ledger.fakeLedger),
		store,
		&fixedDirectory{project: projects.Project{Type: typ}},
		NewCache(client, time.Minute),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, store
}

func TestSummaryCachesUntilInvalidated(t *testing.T) {
	ledger := &countingLedger{fakeLedger: fakeLedger{
		oneTimeCosts: dec("400"),
		revenue:      dec("1000"),
	}}
	svc, _ := newCachedService(t, ledger, projects.TypeFreelance)
	ctx := context.Background()
	from, to := date(2024, 1, 1), date(2024, 1, 31)

	first, err := svc.Summary(ctx, 1, from, to)
	require.NoError(t, err)
	require.True(t, first.ROI.Equal(dec("150.00")), "ROI = %s", first.ROI)
	require.EqualValues(t, 2, ledger.revenueCalls.Load(), "ROI and revenue each read once")

	second, err := svc.Summary(ctx, 1, from, to)
	require.NoError(t, err)
	require.True(t, second.Profit.Equal(first.Profit))
	require.EqualValues(t, 2, ledger.revenueCalls.Load(), "second read must come from cache")

	require.NoError(t, svc.Invalidate(ctx))

	_, err = svc.Summary(ctx, 1, from, to)
	require.NoError(t, err)
	require.EqualValues(t, 4, ledger.revenueCalls.Load(), "bump must force recomputation")
}

func TestSummaryRentalSection(t *testing.T) {
	ledger := &countingLedger{fakeLedger: fakeLedger{
		revenue:        dec("0"),
		bookingRevenue: dec("1000.00"),
		commissions:    dec("150.00"),
		nights:         8,
		yearNights:     73,
	}}
	svc, _ := newCachedService(t, ledger, projects.TypeVacationRental)

	summary, err := svc.Summary(context.Background(), 1, date(2023, 1, 1), date(2023, 12, 31))
	require.NoError(t, err)
	require.NotNil(t, summary.Rental)
	require.Nil(t, summary.SaaS)
	require.True(t, summary.Rental.ADR.Equal(dec("125.00")), "ADR = %s", summary.Rental.ADR)
	require.True(t, summary.Rental.OccupancyRate.Equal(dec("20.00")), "occupancy = %s", summary.Rental.OccupancyRate)
	require.True(t, summary.Rental.NetRevenue.Equal(dec("850.00")), "net = %s", summary.Rental.NetRevenue)
}

func TestSummaryRentalYearPinnedToRangeStart(t *testing.T) {
	ledger := &countingLedger{fakeLedger: fakeLedger{yearNights: 73}}
	svc, _ := newCachedService(t, ledger, projects.TypeVacationRental)

	// Range straddles a year boundary; the rental section reports the
	// starting calendar year.
	summary, err := svc.Summary(context.Background(), 1, date(2023, 7, 1), date(2024, 6, 30))
	require.NoError(t, err)
	require.NotNil(t, summary.Rental)
	require.Equal(t, 2023, summary.Rental.Year)
	require.True(t, summary.Rental.OccupancyRate.Equal(dec("20.00")), "occupancy = %s", summary.Rental.OccupancyRate)
}

func TestSummarySaaSSection(t *testing.T) {
	ledger := &countingLedger{fakeLedger: fakeLedger{
		mrr:        dec("250.00"),
		activeSubs: 5,
	}}
	svc, _ := newCachedService(t, ledger, projects.TypeSaaS)

	summary, err := svc.Summary(context.Background(), 1, date(2024, 1, 1), date(2024, 12, 31))
	require.NoError(t, err)
	require.NotNil(t, summary.SaaS)
	require.Nil(t, summary.Rental)
	require.True(t, summary.SaaS.ARR.Equal(dec("3000.00")), "ARR = %s", summary.SaaS.ARR)
	require.True(t, summary.SaaS.ARPU.Equal(dec("50.00")), "ARPU = %s", summary.SaaS.ARPU)
	require.EqualValues(t, 5, summary.SaaS.ActiveSubscriptions)
}

func TestSnapshotMonthPerType(t *testing.T) {
	cases := []struct {
		typ  projects.ProjectType
		want []MetricType
	}{
		{projects.TypeFreelance, []MetricType{MetricROI, MetricProfit}},
		{projects.TypeVacationRental, []MetricType{MetricROI, MetricProfit, MetricADR, MetricOccupancyRate, MetricRevPAR}},
		{projects.TypeSaaS, []MetricType{MetricROI, MetricProfit, MetricMRR, MetricARR}},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			ledger := &countingLedger{}
			svc, store := newCachedService(t, ledger, tc.typ)

			count, err := svc.SnapshotMonth(context.Background(),
				projects.Project{ID: 1, Type: tc.typ}, date(2024, 6, 15))
			require.NoError(t, err)
			require.Equal(t, len(tc.want), count)

			seen := map[MetricType]CalculatedMetric{}
			for _, m := range store.rows {
				seen[m.MetricType] = m
				require.Equal(t, PeriodMonthly, m.PeriodType)
				require.Equal(t, date(2024, 6, 1), m.MetricDate, "snapshots are dated at month start")
			}
			for _, typ := range tc.want {
				require.Contains(t, seen, typ)
			}
		})
	}
}

func TestUpsertReplacesSameKey(t *testing.T) {
	ledger := &countingLedger{}
	svc, store := newCachedService(t, ledger, projects.TypeFreelance)
	ctx := context.Background()

	req := UpsertMetricRequest{
		ProjectID:  1,
		MetricType: MetricProfit,
		MetricDate: date(2024, 6, 1),
		PeriodType: PeriodMonthly,
		Value:      dec("100.00"),
	}
	first, err := svc.Upsert(ctx, req)
	require.NoError(t, err)

	req.Value = dec("250.00")
	second, err := svc.Upsert(ctx, req)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "same key must keep its row")

	// A different period is a different key and gets its own row.
	req.PeriodType = PeriodYearly
	_, err = svc.Upsert(ctx, req)
	require.NoError(t, err)

	require.Len(t, store.rows, 2)
	kept := store.rows[metricKey{1, date(2024, 6, 1), MetricProfit, PeriodMonthly}]
	require.True(t, kept.Value.Equal(dec("250.00")), "replay must keep the latest value, got %s", kept.Value)
}

func TestSnapshotMonthReplaysWithoutDuplicates(t *testing.T) {
	ledger := &countingLedger{fakeLedger: fakeLedger{
		oneTimeCosts: dec("400"),
		revenue:      dec("1000"),
	}}
	svc, store := newCachedService(t, ledger, projects.TypeFreelance)
	ctx := context.Background()
	project := projects.Project{ID: 1, Type: projects.TypeFreelance}

	_, err := svc.SnapshotMonth(ctx, project, date(2024, 6, 15))
	require.NoError(t, err)

	ledger.revenue = dec("2000")
	count, err := svc.SnapshotMonth(ctx, project, date(2024, 6, 15))
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.Len(t, store.rows, 2, "rerun must overwrite, not duplicate")
	profit := store.rows[metricKey{1, date(2024, 6, 1), MetricProfit, PeriodMonthly}]
	require.True(t, profit.Value.Equal(dec("1600")), "profit = %s", profit.Value)
}
