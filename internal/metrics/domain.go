// Package metrics computes project KPIs from ledger and booking aggregates
// and persists periodic snapshots of them.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricType identifies a KPI.
type MetricType string

const (
	MetricROI           MetricType = "ROI"
	MetricProfit        MetricType = "PROFIT"
	MetricOccupancyRate MetricType = "OCCUPANCY_RATE"
	MetricADR           MetricType = "ADR"
	MetricRevPAR        MetricType = "REVPAR"
	MetricMRR           MetricType = "MRR"
	MetricARR           MetricType = "ARR"
	MetricChurnRate     MetricType = "CHURN_RATE"
	MetricCAC           MetricType = "CAC"
	MetricLTV           MetricType = "LTV"
)

// PeriodType is the granularity a metric snapshot covers.
type PeriodType string

const (
	PeriodDaily     PeriodType = "DAILY"
	PeriodWeekly    PeriodType = "WEEKLY"
	PeriodMonthly   PeriodType = "MONTHLY"
	PeriodQuarterly PeriodType = "QUARTERLY"
	PeriodYearly    PeriodType = "YEARLY"
)

// CalculatedMetric is a persisted KPI snapshot, unique per
// (project, metric date, metric type, period type).
type CalculatedMetric struct {
	ID         int64           `json:"id" db:"id"`
	ProjectID  int64           `json:"project_id" db:"project_id"`
	MetricType MetricType      `json:"metric_type" db:"metric_type"`
	MetricDate time.Time       `json:"metric_date" db:"metric_date"`
	PeriodType PeriodType      `json:"period_type" db:"period_type"`
	Value      decimal.Decimal `json:"value" db:"value"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

type UpsertMetricRequest struct {
	ProjectID  int64           `json:"project_id" validate:"required,gt=0"`
	MetricType MetricType      `json:"metric_type" validate:"required,oneof=ROI PROFIT OCCUPANCY_RATE ADR REVPAR MRR ARR CHURN_RATE CAC LTV"`
	MetricDate time.Time       `json:"metric_date" validate:"required"`
	PeriodType PeriodType      `json:"period_type" validate:"required,oneof=DAILY WEEKLY MONTHLY QUARTERLY YEARLY"`
	Value      decimal.Decimal `json:"value"`
}

type BatchImportRequest struct {
	Metrics []UpsertMetricRequest `json:"metrics" validate:"required,min=1,dive"`
}

// Summary is the per-project KPI dashboard. Rental and SaaS sections are
// populated based on the project type.
type Summary struct {
	ProjectID    int64           `json:"project_id"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCosts   decimal.Decimal `json:"total_costs"`
	Profit       decimal.Decimal `json:"profit"`
	ROI          decimal.Decimal `json:"roi"`

	Rental *RentalSummary `json:"rental,omitempty"`
	SaaS   *SaaSSummary   `json:"saas,omitempty"`
}

// RentalSummary holds the vacation rental KPIs for the calendar year of
// the summary range start.
type RentalSummary struct {
	Year             int             `json:"year"`
	ADR              decimal.Decimal `json:"adr"`
	OccupancyRate    decimal.Decimal `json:"occupancy_rate"`
	RevPAR           decimal.Decimal `json:"revpar"`
	TotalCommissions decimal.Decimal `json:"total_commissions"`
	NetRevenue       decimal.Decimal `json:"net_revenue"`
}

// SaaSSummary holds the subscription KPIs; they are point-in-time, not
// range-bound.
type SaaSSummary struct {
	MRR                 decimal.Decimal `json:"mrr"`
	ARR                 decimal.Decimal `json:"arr"`
	ARPU                decimal.Decimal `json:"arpu"`
	ActiveSubscriptions int64           `json:"active_subscriptions"`
}
