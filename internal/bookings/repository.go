package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/platform/db"
	"github.com/projectledger/projectledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence for bookings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const bookingColumns = `id, project_id, guest_name, platform, checkin_date, checkout_date, status,
	total_price, nights, price_per_night, commission_rate, commission_amount, net_revenue,
	guest_count, notes, created_at, updated_at`

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.ProjectID, &b.GuestName, &b.Platform, &b.CheckinDate, &b.CheckoutDate,
		&b.Status, &b.TotalPrice, &b.Nights, &b.PricePerNight, &b.CommissionRate,
		&b.CommissionAmount, &b.NetRevenue, &b.GuestCount, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, shared.NotFoundf("booking")
	}
	return b, err
}

func (r *Repository) Get(ctx context.Context, id int64) (Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) ListByProject(ctx context.Context, projectID int64) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE project_id = $1 ORDER BY checkin_date`
	return r.queryBookings(ctx, query, projectID)
}

func (r *Repository) ListByStatus(ctx context.Context, projectID int64, status BookingStatus) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE project_id = $1 AND status = $2 ORDER BY checkin_date`
	return r.queryBookings(ctx, query, projectID, status)
}

func (r *Repository) ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE project_id = $1 AND checkin_date >= $2 AND checkin_date <= $3 ORDER BY checkin_date`
	return r.queryBookings(ctx, query, projectID, from, to)
}

func (r *Repository) ListByYear(ctx context.Context, projectID int64, year int) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE project_id = $1 AND EXTRACT(YEAR FROM checkin_date) = $2 ORDER BY checkin_date`
	return r.queryBookings(ctx, query, projectID, year)
}

func (r *Repository) ListByPlatform(ctx context.Context, projectID int64, platform string) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE project_id = $1 AND LOWER(platform) = LOWER($2) ORDER BY checkin_date`
	return r.queryBookings(ctx, query, projectID, platform)
}

func (r *Repository) queryBookings(ctx context.Context, query string, args ...any) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// HasOverlap reports whether any PENDING or CONFIRMED booking of the
// project overlaps the candidate stay. Boundaries count as overlap: a stay
// ending on another's checkin day conflicts. excludeID skips the booking
// being updated; pass 0 on create.
func (r *Repository) HasOverlap(ctx context.Context, q db.Querier, projectID int64, checkin, checkout time.Time, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE project_id = $1
		  AND status IN ('PENDING', 'CONFIRMED')
		  AND checkin_date <= $3
		  AND checkout_date >= $2
		  AND id <> $4)`
	var exists bool
	err := q.QueryRow(ctx, query, projectID, checkin, checkout, excludeID).Scan(&exists)
	return exists, err
}

// Insert writes a fully derived booking through q, which is a transaction
// when called from the create path.
func (r *Repository) Insert(ctx context.Context, q db.Querier, b Booking) (Booking, error) {
	query := `INSERT INTO bookings (project_id, guest_name, platform, checkin_date, checkout_date,
			status, total_price, nights, price_per_night, commission_rate, commission_amount,
			net_revenue, guest_count, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		RETURNING id`
	now := time.Now()
	err := q.QueryRow(ctx, query, b.ProjectID, b.GuestName, b.Platform, b.CheckinDate, b.CheckoutDate,
		b.Status, b.TotalPrice, b.Nights, b.PricePerNight, b.CommissionRate, b.CommissionAmount,
		b.NetRevenue, b.GuestCount, b.Notes, now).Scan(&b.ID)
	if err != nil {
		return Booking{}, err
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	return b, nil
}

// Save overwrites all mutable columns of an existing booking through q.
func (r *Repository) Save(ctx context.Context, q db.Querier, b Booking) error {
	query := `UPDATE bookings SET guest_name = $1, platform = $2, checkin_date = $3,
			checkout_date = $4, total_price = $5, nights = $6, price_per_night = $7,
			commission_rate = $8, commission_amount = $9, net_revenue = $10, guest_count = $11,
			notes = $12, updated_at = $13
		WHERE id = $14`
	tag, err := q.Exec(ctx, query, b.GuestName, b.Platform, b.CheckinDate, b.CheckoutDate,
		b.TotalPrice, b.Nights, b.PricePerNight, b.CommissionRate, b.CommissionAmount,
		b.NetRevenue, b.GuestCount, b.Notes, time.Now(), b.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("booking %d", b.ID)
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status BookingStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("booking %d", id)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("booking %d", id)
	}
	return nil
}

// Revenue aggregates below feed the KPI calculator. They only count
// bookings whose money is real: CONFIRMED or COMPLETED.

func (r *Repository) SumGrossRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total_price), 0) FROM bookings
		WHERE project_id = $1 AND status IN ('CONFIRMED', 'COMPLETED')
		  AND checkin_date >= $2 AND checkin_date <= $3`
	return r.sumQuery(ctx, query, projectID, from, to)
}

func (r *Repository) SumCommissions(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(commission_amount), 0) FROM bookings
		WHERE project_id = $1 AND status IN ('CONFIRMED', 'COMPLETED')
		  AND checkin_date >= $2 AND checkin_date <= $3`
	return r.sumQuery(ctx, query, projectID, from, to)
}

func (r *Repository) SumNetRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(net_revenue), 0) FROM bookings
		WHERE project_id = $1 AND status IN ('CONFIRMED', 'COMPLETED')
		  AND checkin_date >= $2 AND checkin_date <= $3`
	return r.sumQuery(ctx, query, projectID, from, to)
}

func (r *Repository) SumNights(ctx context.Context, projectID int64, from, to time.Time) (int64, error) {
	query := `SELECT COALESCE(SUM(nights), 0) FROM bookings
		WHERE project_id = $1 AND status IN ('CONFIRMED', 'COMPLETED')
		  AND checkin_date >= $2 AND checkin_date <= $3`
	var total int64
	err := r.pool.QueryRow(ctx, query, projectID, from, to).Scan(&total)
	return total, err
}

func (r *Repository) SumNightsByYear(ctx context.Context, projectID int64, year int) (int64, error) {
	query := `SELECT COALESCE(SUM(nights), 0) FROM bookings
		WHERE project_id = $1 AND status IN ('CONFIRMED', 'COMPLETED')
		  AND EXTRACT(YEAR FROM checkin_date) = $2`
	var total int64
	err := r.pool.QueryRow(ctx, query, projectID, year).Scan(&total)
	return total, err
}

func (r *Repository) sumQuery(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, query, args...).Scan(&sum)
	return sum, err
}
