// Package ledger stores the raw financial records of a project: one-time
// and recurring costs, revenue streams and customer subscriptions. The KPI
// calculator reads its aggregates.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostCategory classifies costs across all project types.
type CostCategory string

const (
	CategoryInfrastructure CostCategory = "INFRASTRUCTURE"
	CategoryBranding       CostCategory = "BRANDING"
	CategoryContent        CostCategory = "CONTENT"
	CategoryDevelopment    CostCategory = "DEVELOPMENT"
	CategoryMarketing      CostCategory = "MARKETING"
	CategoryProperty       CostCategory = "PROPERTY"
	CategoryTools          CostCategory = "TOOLS"
	CategoryOther          CostCategory = "OTHER"
)

// PaymentStatus tracks whether money actually moved.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentReceived  PaymentStatus = "RECEIVED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// Frequency is how often a recurring cost is charged.
type Frequency string

const (
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// RevenueType classifies where revenue came from.
type RevenueType string

const (
	RevenueConsultation RevenueType = "CONSULTATION"
	RevenueProject      RevenueType = "PROJECT"
	RevenueCourse       RevenueType = "COURSE"
	RevenuePassive      RevenueType = "PASSIVE"
	RevenueBooking      RevenueType = "BOOKING"
	RevenueSubscription RevenueType = "SUBSCRIPTION"
	RevenueOther        RevenueType = "OTHER"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionTrial     SubscriptionStatus = "TRIAL"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
)

// BillingCycle is how often a subscription is invoiced.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "MONTHLY"
	BillingYearly  BillingCycle = "YEARLY"
)

// OneTimeCost is a single dated expense.
type OneTimeCost struct {
	ID            int64           `json:"id" db:"id"`
	ProjectID     int64           `json:"project_id" db:"project_id"`
	Name          string          `json:"name" db:"name"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	CostDate      time.Time       `json:"cost_date" db:"cost_date"`
	Category      CostCategory    `json:"category" db:"category"`
	Description   *string         `json:"description,omitempty" db:"description"`
	InvoiceNumber *string         `json:"invoice_number,omitempty" db:"invoice_number"`
	Supplier      *string         `json:"supplier,omitempty" db:"supplier"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// RecurringCost repeats at a fixed frequency until its optional end date.
type RecurringCost struct {
	ID          int64           `json:"id" db:"id"`
	ProjectID   int64           `json:"project_id" db:"project_id"`
	Name        string          `json:"name" db:"name"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Frequency   Frequency       `json:"frequency" db:"frequency"`
	Category    CostCategory    `json:"category" db:"category"`
	StartDate   time.Time       `json:"start_date" db:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty" db:"end_date"`
	Description *string         `json:"description,omitempty" db:"description"`
	Active      bool            `json:"active" db:"active"`
	AutoRenew   bool            `json:"auto_renew" db:"auto_renew"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// RevenueStream is a single dated income record.
type RevenueStream struct {
	ID            int64           `json:"id" db:"id"`
	ProjectID     int64           `json:"project_id" db:"project_id"`
	Name          string          `json:"name" db:"name"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	RevenueDate   time.Time       `json:"revenue_date" db:"revenue_date"`
	Source        *string         `json:"source,omitempty" db:"source"`
	Type          RevenueType     `json:"type" db:"type"`
	Description   *string         `json:"description,omitempty" db:"description"`
	InvoiceNumber *string         `json:"invoice_number,omitempty" db:"invoice_number"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Subscription is a recurring customer contract contributing to MRR.
type Subscription struct {
	ID            int64              `json:"id" db:"id"`
	ProjectID     int64              `json:"project_id" db:"project_id"`
	CustomerName  string             `json:"customer_name" db:"customer_name"`
	CustomerEmail *string            `json:"customer_email,omitempty" db:"customer_email"`
	PlanName      string             `json:"plan_name" db:"plan_name"`
	MRR           decimal.Decimal    `json:"mrr" db:"mrr"`
	StartDate     time.Time          `json:"start_date" db:"start_date"`
	EndDate       *time.Time         `json:"end_date,omitempty" db:"end_date"`
	Status        SubscriptionStatus `json:"status" db:"status"`
	BillingCycle  BillingCycle       `json:"billing_cycle" db:"billing_cycle"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
}

// GroupedSum is one bucket of a grouped aggregate, keyed by the grouping
// dimension (category, type, source or plan).
type GroupedSum struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}

// MonthlyAmount is one month of a revenue series.
type MonthlyAmount struct {
	Year  int             `json:"year"`
	Month time.Month      `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type CreateOneTimeCostRequest struct {
	ProjectID     int64           `json:"project_id" validate:"required,gt=0"`
	Name          string          `json:"name" validate:"required,max=255"`
	Amount        decimal.Decimal `json:"amount"`
	CostDate      time.Time       `json:"cost_date" validate:"required"`
	Category      CostCategory    `json:"category" validate:"required,oneof=INFRASTRUCTURE BRANDING CONTENT DEVELOPMENT MARKETING PROPERTY TOOLS OTHER"`
	Description   *string         `json:"description,omitempty" validate:"omitempty,max=5000"`
	InvoiceNumber *string         `json:"invoice_number,omitempty" validate:"omitempty,max=100"`
	Supplier      *string         `json:"supplier,omitempty" validate:"omitempty,max=255"`
	PaymentStatus *PaymentStatus  `json:"payment_status,omitempty" validate:"omitempty,oneof=PENDING PAID RECEIVED CANCELLED"`
}

type CreateRecurringCostRequest struct {
	ProjectID   int64           `json:"project_id" validate:"required,gt=0"`
	Name        string          `json:"name" validate:"required,max=255"`
	Amount      decimal.Decimal `json:"amount"`
	Frequency   Frequency       `json:"frequency" validate:"required,oneof=MONTHLY QUARTERLY YEARLY"`
	Category    CostCategory    `json:"category" validate:"required,oneof=INFRASTRUCTURE BRANDING CONTENT DEVELOPMENT MARKETING PROPERTY TOOLS OTHER"`
	StartDate   time.Time       `json:"start_date" validate:"required"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=5000"`
	Active      *bool           `json:"active,omitempty"`
	AutoRenew   *bool           `json:"auto_renew,omitempty"`
}

type CreateRevenueStreamRequest struct {
	ProjectID     int64           `json:"project_id" validate:"required,gt=0"`
	Name          string          `json:"name" validate:"required,max=255"`
	Amount        decimal.Decimal `json:"amount"`
	RevenueDate   time.Time       `json:"revenue_date" validate:"required"`
	Source        *string         `json:"source,omitempty" validate:"omitempty,max=255"`
	Type          RevenueType     `json:"type" validate:"required,oneof=CONSULTATION PROJECT COURSE PASSIVE BOOKING SUBSCRIPTION OTHER"`
	Description   *string         `json:"description,omitempty" validate:"omitempty,max=5000"`
	InvoiceNumber *string         `json:"invoice_number,omitempty" validate:"omitempty,max=100"`
	PaymentStatus *PaymentStatus  `json:"payment_status,omitempty" validate:"omitempty,oneof=PENDING PAID RECEIVED CANCELLED"`
}

type CreateSubscriptionRequest struct {
	ProjectID     int64              `json:"project_id" validate:"required,gt=0"`
	CustomerName  string             `json:"customer_name" validate:"required,max=255"`
	CustomerEmail *string            `json:"customer_email,omitempty" validate:"omitempty,email,max=255"`
	PlanName      string             `json:"plan_name" validate:"required,max=100"`
	MRR           decimal.Decimal    `json:"mrr"`
	StartDate     time.Time          `json:"start_date" validate:"required"`
	EndDate       *time.Time         `json:"end_date,omitempty"`
	Status        SubscriptionStatus `json:"status" validate:"required,oneof=ACTIVE TRIAL CANCELLED EXPIRED"`
	BillingCycle  BillingCycle       `json:"billing_cycle" validate:"required,oneof=MONTHLY YEARLY"`
}

type UpdateOneTimeCostRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	CostDate      *time.Time       `json:"cost_date,omitempty"`
	Category      *CostCategory    `json:"category,omitempty" validate:"omitempty,oneof=INFRASTRUCTURE BRANDING CONTENT DEVELOPMENT MARKETING PROPERTY TOOLS OTHER"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	InvoiceNumber *string          `json:"invoice_number,omitempty" validate:"omitempty,max=100"`
	Supplier      *string          `json:"supplier,omitempty" validate:"omitempty,max=255"`
	PaymentStatus *PaymentStatus   `json:"payment_status,omitempty" validate:"omitempty,oneof=PENDING PAID RECEIVED CANCELLED"`
}

type UpdateRecurringCostRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Frequency   *Frequency       `json:"frequency,omitempty" validate:"omitempty,oneof=MONTHLY QUARTERLY YEARLY"`
	Category    *CostCategory    `json:"category,omitempty" validate:"omitempty,oneof=INFRASTRUCTURE BRANDING CONTENT DEVELOPMENT MARKETING PROPERTY TOOLS OTHER"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Active      *bool            `json:"active,omitempty"`
	AutoRenew   *bool            `json:"auto_renew,omitempty"`
}

type UpdateRevenueStreamRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	RevenueDate   *time.Time       `json:"revenue_date,omitempty"`
	Source        *string          `json:"source,omitempty" validate:"omitempty,max=255"`
	Type          *RevenueType     `json:"type,omitempty" validate:"omitempty,oneof=CONSULTATION PROJECT COURSE PASSIVE BOOKING SUBSCRIPTION OTHER"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	InvoiceNumber *string          `json:"invoice_number,omitempty" validate:"omitempty,max=100"`
	PaymentStatus *PaymentStatus   `json:"payment_status,omitempty" validate:"omitempty,oneof=PENDING PAID RECEIVED CANCELLED"`
}

type UpdateSubscriptionRequest struct {
	CustomerName  *string             `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	CustomerEmail *string             `json:"customer_email,omitempty" validate:"omitempty,email,max=255"`
	PlanName      *string             `json:"plan_name,omitempty" validate:"omitempty,max=100"`
	MRR           *decimal.Decimal    `json:"mrr,omitempty"`
	StartDate     *time.Time          `json:"start_date,omitempty"`
	EndDate       *time.Time          `json:"end_date,omitempty"`
	Status        *SubscriptionStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE TRIAL CANCELLED EXPIRED"`
	BillingCycle  *BillingCycle       `json:"billing_cycle,omitempty" validate:"omitempty,oneof=MONTHLY YEARLY"`
}
