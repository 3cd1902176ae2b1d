package projects

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectType classifies how a project earns.
type ProjectType string

const (
	TypeFreelance      ProjectType = "FREELANCE"
	TypeVacationRental ProjectType = "VACATION_RENTAL"
	TypeSaaS           ProjectType = "SAAS"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	StatusActive    ProjectStatus = "ACTIVE"
	StatusArchived  ProjectStatus = "ARCHIVED"
	StatusSuspended ProjectStatus = "SUSPENDED"
)

// Project is the aggregate root for all per-project financial records.
// Child records hold a project reference, never the other way round.
type Project struct {
	ID                   int64            `json:"id" db:"id"`
	Code                 string           `json:"code" db:"code"`
	Name                 string           `json:"name" db:"name"`
	Type                 ProjectType      `json:"type" db:"type"`
	Status               ProjectStatus    `json:"status" db:"status"`
	Description          *string          `json:"description,omitempty" db:"description"`
	StartDate            *time.Time       `json:"start_date,omitempty" db:"start_date"`
	Currency             string           `json:"currency" db:"currency"`
	TargetOccupancyRate  *decimal.Decimal `json:"target_occupancy_rate,omitempty" db:"target_occupancy_rate"`
	TargetMonthlyRevenue *decimal.Decimal `json:"target_monthly_revenue,omitempty" db:"target_monthly_revenue"`
	TargetROI            *decimal.Decimal `json:"target_roi,omitempty" db:"target_roi"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}

type CreateProjectRequest struct {
	Code                 string           `json:"code" validate:"required,max=50"`
	Name                 string           `json:"name" validate:"required,max=200"`
	Type                 ProjectType      `json:"type" validate:"required,oneof=FREELANCE VACATION_RENTAL SAAS"`
	Description          *string          `json:"description,omitempty"`
	StartDate            *time.Time       `json:"start_date,omitempty"`
	Currency             string           `json:"currency" validate:"required,len=3"`
	TargetOccupancyRate  *decimal.Decimal `json:"target_occupancy_rate,omitempty"`
	TargetMonthlyRevenue *decimal.Decimal `json:"target_monthly_revenue,omitempty"`
	TargetROI            *decimal.Decimal `json:"target_roi,omitempty"`
}

type UpdateProjectRequest struct {
	Name                 *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description          *string          `json:"description,omitempty"`
	StartDate            *time.Time       `json:"start_date,omitempty"`
	Currency             *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	TargetOccupancyRate  *decimal.Decimal `json:"target_occupancy_rate,omitempty"`
	TargetMonthlyRevenue *decimal.Decimal `json:"target_monthly_revenue,omitempty"`
	TargetROI            *decimal.Decimal `json:"target_roi,omitempty"`
}
