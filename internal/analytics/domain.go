// Package analytics stores imported web traffic figures per project and
// serves the aggregates the dashboard charts are built from. Entries are
// keyed by (project, report date, device type, traffic source) so repeated
// imports of the same export replace rather than duplicate.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrafficEntry is one imported row of traffic figures.
type TrafficEntry struct {
	ID            int64            `json:"id" db:"id"`
	ProjectID     int64            `json:"project_id" db:"project_id"`
	ReportDate    time.Time        `json:"report_date" db:"report_date"`
	Users         int64            `json:"users" db:"users"`
	Sessions      int64            `json:"sessions" db:"sessions"`
	Pageviews     int64            `json:"pageviews" db:"pageviews"`
	BounceRate    *decimal.Decimal `json:"bounce_rate,omitempty" db:"bounce_rate"`
	DeviceType    *string          `json:"device_type,omitempty" db:"device_type"`
	TrafficSource *string          `json:"traffic_source,omitempty" db:"traffic_source"`
	Conversions   *int64           `json:"conversions,omitempty" db:"conversions"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

type UpsertEntryRequest struct {
	ProjectID     int64            `json:"project_id" validate:"required,gt=0"`
	ReportDate    time.Time        `json:"report_date" validate:"required"`
	Users         int64            `json:"users" validate:"gte=0"`
	Sessions      int64            `json:"sessions" validate:"gte=0"`
	Pageviews     int64            `json:"pageviews" validate:"gte=0"`
	BounceRate    *decimal.Decimal `json:"bounce_rate,omitempty"`
	DeviceType    *string          `json:"device_type,omitempty" validate:"omitempty,max=50"`
	TrafficSource *string          `json:"traffic_source,omitempty" validate:"omitempty,max=255"`
	Conversions   *int64           `json:"conversions,omitempty" validate:"omitempty,gte=0"`
}

type BatchImportRequest struct {
	Entries []UpsertEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// TrafficTotals sums the volume figures over a range.
type TrafficTotals struct {
	Users     int64 `json:"users"`
	Sessions  int64 `json:"sessions"`
	Pageviews int64 `json:"pageviews"`
}

// GroupedTotal is one slice of a grouped aggregate, ordered largest first.
// Key is "unknown" for rows imported without the grouping dimension.
type GroupedTotal struct {
	Key   string `json:"key"`
	Total int64  `json:"total"`
}

// MonthlyTraffic is one month of the traffic series.
type MonthlyTraffic struct {
	Year      int   `json:"year"`
	Month     int   `json:"month"`
	Users     int64 `json:"users"`
	Sessions  int64 `json:"sessions"`
	Pageviews int64 `json:"pageviews"`
}
