// Package bookings manages vacation rental bookings and the financial
// figures derived from them on every write.
package bookings

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
)

// Booking holds the stored record plus its derived financials. Derived
// columns (nights, price per night, commission amount, net revenue) are
// recomputed on write and never accepted from a client.
type Booking struct {
	ID               int64            `json:"id" db:"id"`
	ProjectID        int64            `json:"project_id" db:"project_id"`
	GuestName        string           `json:"guest_name" db:"guest_name"`
	Platform         *string          `json:"platform,omitempty" db:"platform"`
	CheckinDate      time.Time        `json:"checkin_date" db:"checkin_date"`
	CheckoutDate     time.Time        `json:"checkout_date" db:"checkout_date"`
	Status           BookingStatus    `json:"status" db:"status"`
	TotalPrice       decimal.Decimal  `json:"total_price" db:"total_price"`
	Nights           int              `json:"nights" db:"nights"`
	PricePerNight    decimal.Decimal  `json:"price_per_night" db:"price_per_night"`
	CommissionRate   decimal.Decimal  `json:"commission_rate" db:"commission_rate"`
	CommissionAmount decimal.Decimal  `json:"commission_amount" db:"commission_amount"`
	NetRevenue       decimal.Decimal  `json:"net_revenue" db:"net_revenue"`
	GuestCount       *int             `json:"guest_count,omitempty" db:"guest_count"`
	Notes            *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

type CreateBookingRequest struct {
	ProjectID    int64           `json:"project_id" validate:"required,gt=0"`
	GuestName    string          `json:"guest_name" validate:"required,max=200"`
	Platform     *string         `json:"platform,omitempty" validate:"omitempty,max=100"`
	CheckinDate  time.Time       `json:"checkin_date" validate:"required"`
	CheckoutDate time.Time       `json:"checkout_date" validate:"required"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	GuestCount   *int            `json:"guest_count,omitempty" validate:"omitempty,gt=0"`
	Notes        *string         `json:"notes,omitempty"`
}

type UpdateBookingRequest struct {
	GuestName    *string          `json:"guest_name,omitempty" validate:"omitempty,max=200"`
	Platform     *string          `json:"platform,omitempty" validate:"omitempty,max=100"`
	CheckinDate  *time.Time       `json:"checkin_date,omitempty"`
	CheckoutDate *time.Time       `json:"checkout_date,omitempty"`
	TotalPrice   *decimal.Decimal `json:"total_price,omitempty"`
	GuestCount   *int             `json:"guest_count,omitempty" validate:"omitempty,gt=0"`
	Notes        *string          `json:"notes,omitempty"`
}
