// Package commission stores per-platform commission rates and resolves the
// rate applied when deriving booking financials.
package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformRate is a global commission entry for a booking platform. Names
// are unique case-insensitively.
type PlatformRate struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Rate        decimal.Decimal `json:"rate" db:"rate"`
	Active      bool            `json:"active" db:"active"`
	Description *string         `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type CreatePlatformRateRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Rate        decimal.Decimal `json:"rate"`
	Description *string         `json:"description,omitempty"`
}

type UpdatePlatformRateRequest struct {
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	Active      *bool            `json:"active,omitempty"`
	Description *string          `json:"description,omitempty"`
}
