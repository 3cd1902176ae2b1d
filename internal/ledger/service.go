package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/shared"
)

// Store is the subset of repository operations the service depends on.
type Store interface {
	GetOneTimeCost(ctx context.Context, id int64) (OneTimeCost, error)
	ListOneTimeCosts(ctx context.Context, projectID int64) ([]OneTimeCost, error)
	ListOneTimeCostsByCategory(ctx context.Context, projectID int64, category CostCategory) ([]OneTimeCost, error)
	ListOneTimeCostsByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]OneTimeCost, error)
	CreateOneTimeCost(ctx context.Context, c OneTimeCost) (OneTimeCost, error)
	UpdateOneTimeCost(ctx context.Context, id int64, c OneTimeCost) error
	DeleteOneTimeCost(ctx context.Context, id int64) error
	SumOneTimeCostsByCategory(ctx context.Context, projectID int64) ([]GroupedSum, error)

	GetRecurringCost(ctx context.Context, id int64) (RecurringCost, error)
	ListRecurringCosts(ctx context.Context, projectID int64) ([]RecurringCost, error)
	ListActiveRecurringCosts(ctx context.Context, projectID int64) ([]RecurringCost, error)
	ListRecurringCostsByFrequency(ctx context.Context, projectID int64, freq Frequency) ([]RecurringCost, error)
	CreateRecurringCost(ctx context.Context, c RecurringCost) (RecurringCost, error)
	UpdateRecurringCost(ctx context.Context, id int64, c RecurringCost) error
	DeleteRecurringCost(ctx context.Context, id int64) error
	SumActiveRecurringByCategory(ctx context.Context, projectID int64) ([]GroupedSum, error)

	GetRevenueStream(ctx context.Context, id int64) (RevenueStream, error)
	ListRevenueStreams(ctx context.Context, projectID int64) ([]RevenueStream, error)
	ListRevenueStreamsByType(ctx context.Context, projectID int64, typ RevenueType) ([]RevenueStream, error)
	ListRevenueStreamsByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]RevenueStream, error)
	CreateRevenueStream(ctx context.Context, s RevenueStream) (RevenueStream, error)
	UpdateRevenueStream(ctx context.Context, id int64, s RevenueStream) error
	DeleteRevenueStream(ctx context.Context, id int64) error
	SumRevenueByType(ctx context.Context, projectID int64) ([]GroupedSum, error)
	SumRevenueBySource(ctx context.Context, projectID int64) ([]GroupedSum, error)
	MonthlyRevenueSeries(ctx context.Context, projectID int64, year int) ([]MonthlyAmount, error)

	GetSubscription(ctx context.Context, id int64) (Subscription, error)
	ListSubscriptions(ctx context.Context, projectID int64) ([]Subscription, error)
	ListSubscriptionsByStatus(ctx context.Context, projectID int64, status SubscriptionStatus) ([]Subscription, error)
	ListSubscriptionsByPlan(ctx context.Context, projectID int64, plan string) ([]Subscription, error)
	CreateSubscription(ctx context.Context, s Subscription) (Subscription, error)
	UpdateSubscription(ctx context.Context, id int64, s Subscription) error
	DeleteSubscription(ctx context.Context, id int64) error
	SumActiveMRRByPlan(ctx context.Context, projectID int64) ([]GroupedSum, error)
}

// ProjectDirectory resolves the project a ledger record belongs to.
type ProjectDirectory interface {
	Get(ctx context.Context, id int64) (projects.Project, error)
}

// Service provides business logic for the financial ledger.
type Service struct {
	repo     Store
	projects ProjectDirectory
	logger   *slog.Logger
}

// NewService constructs a ledger service.
func NewService(repo Store, directory ProjectDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, projects: directory, logger: logger}
}

func (s *Service) projectExists(ctx context.Context, projectID int64) error {
	_, err := s.projects.Get(ctx, projectID)
	return err
}

func positiveAmount(amount decimal.Decimal, what string) error {
	if !amount.IsPositive() {
		return shared.Invalidf("%s must be positive", what)
	}
	return nil
}

func validDateRange(start time.Time, end *time.Time) error {
	if end != nil && !end.After(start) {
		return shared.Invalidf("end date must be after start date")
	}
	return nil
}

// -------- one-time costs --------

func (s *Service) CreateOneTimeCost(ctx context.Context, req CreateOneTimeCostRequest) (OneTimeCost, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return OneTimeCost{}, err
	}
	if err := positiveAmount(req.Amount, "cost amount"); err != nil {
		return OneTimeCost{}, err
	}
	if err := s.projectExists(ctx, req.ProjectID); err != nil {
		return OneTimeCost{}, err
	}

	cost := OneTimeCost{
		ProjectID:     req.ProjectID,
		Name:          req.Name,
		Amount:        req.Amount,
		CostDate:      req.CostDate,
		Category:      req.Category,
		Description:   req.Description,
		InvoiceNumber: req.InvoiceNumber,
		Supplier:      req.Supplier,
		PaymentStatus: PaymentPending,
	}
	if req.PaymentStatus != nil {
		cost.PaymentStatus = *req.PaymentStatus
	}
	created, err := s.repo.CreateOneTimeCost(ctx, cost)
	if err != nil {
		return OneTimeCost{}, fmt.Errorf("create one-time cost: %w", err)
	}
	return created, nil
}

func (s *Service) GetOneTimeCost(ctx context.Context, id int64) (OneTimeCost, error) {
	return s.repo.GetOneTimeCost(ctx, id)
}

func (s *Service) ListOneTimeCosts(ctx context.Context, projectID int64) ([]OneTimeCost, error) {
	return s.repo.ListOneTimeCosts(ctx, projectID)
}

func (s *Service) ListOneTimeCostsByCategory(ctx context.Context, projectID int64, category CostCategory) ([]OneTimeCost, error) {
	return s.repo.ListOneTimeCostsByCategory(ctx, projectID, category)
}

func (s *Service) ListOneTimeCostsByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]OneTimeCost, error) {
	return s.repo.ListOneTimeCostsByDateRange(ctx, projectID, from, to)
}

func (s *Service) UpdateOneTimeCost(ctx context.Context, id int64, req UpdateOneTimeCostRequest) (OneTimeCost, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return OneTimeCost{}, err
	}
	cost, err := s.repo.GetOneTimeCost(ctx, id)
	if err != nil {
		return OneTimeCost{}, err
	}
	if req.Name != nil {
		cost.Name = *req.Name
	}
	if req.Amount != nil {
		if err := positiveAmount(*req.Amount, "cost amount"); err != nil {
			return OneTimeCost{}, err
		}
		cost.Amount = *req.Amount
	}
	if req.CostDate != nil {
		cost.CostDate = *req.CostDate
	}
	if req.Category != nil {
		cost.Category = *req.Category
	}
	if req.Description != nil {
		cost.Description = req.Description
	}
	if req.InvoiceNumber != nil {
		cost.InvoiceNumber = req.InvoiceNumber
	}
	if req.Supplier != nil {
		cost.Supplier = req.Supplier
	}
	if req.PaymentStatus != nil {
		cost.PaymentStatus = *req.PaymentStatus
	}
	if err := s.repo.UpdateOneTimeCost(ctx, id, cost); err != nil {
		return OneTimeCost{}, fmt.Errorf("update one-time cost: %w", err)
	}
	return cost, nil
}

func (s *Service) DeleteOneTimeCost(ctx context.Context, id int64) error {
	return s.repo.DeleteOneTimeCost(ctx, id)
}

func (s *Service) OneTimeCostsByCategory(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	return s.repo.SumOneTimeCostsByCategory(ctx, projectID)
}

// -------- recurring costs --------

func (s *Service) CreateRecurringCost(ctx context.Context, req CreateRecurringCostRequest) (RecurringCost, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return RecurringCost{}, err
	}
	if err := positiveAmount(req.Amount, "cost amount"); err != nil {
		return RecurringCost{}, err
	}
	if err := validDateRange(req.StartDate, req.EndDate); err != nil {
		return RecurringCost{}, err
	}
	if err := s.projectExists(ctx, req.ProjectID); err != nil {
		return RecurringCost{}, err
	}

	cost := RecurringCost{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Amount:      req.Amount,
		Frequency:   req.Frequency,
		Category:    req.Category,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
		Active:      true,
		AutoRenew:   true,
	}
	if req.Active != nil {
		cost.Active = *req.Active
	}
	if req.AutoRenew != nil {
		cost.AutoRenew = *req.AutoRenew
	}
	created, err := s.repo.CreateRecurringCost(ctx, cost)
	if err != nil {
		return RecurringCost{}, fmt.Errorf("create recurring cost: %w", err)
	}
	return created, nil
}

func (s *Service) GetRecurringCost(ctx context.Context, id int64) (RecurringCost, error) {
	return s.repo.GetRecurringCost(ctx, id)
}

func (s *Service) ListRecurringCosts(ctx context.Context, projectID int64) ([]RecurringCost, error) {
	return s.repo.ListRecurringCosts(ctx, projectID)
}

func (s *Service) ListActiveRecurringCosts(ctx context.Context, projectID int64) ([]RecurringCost, error) {
	return s.repo.ListActiveRecurringCosts(ctx, projectID)
}

func (s *Service) ListRecurringCostsByFrequency(ctx context.Context, projectID int64, freq Frequency) ([]RecurringCost, error) {
	return s.repo.ListRecurringCostsByFrequency(ctx, projectID, freq)
}

func (s *Service) UpdateRecurringCost(ctx context.Context, id int64, req UpdateRecurringCostRequest) (RecurringCost, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return RecurringCost{}, err
	}
	cost, err := s.repo.GetRecurringCost(ctx, id)
	if err != nil {
		return RecurringCost{}, err
	}
	if req.Name != nil {
		cost.Name = *req.Name
	}
	if req.Amount != nil {
		if err := positiveAmount(*req.Amount, "cost amount"); err != nil {
			return RecurringCost{}, err
		}
		cost.Amount = *req.Amount
	}
	if req.Frequency != nil {
		cost.Frequency = *req.Frequency
	}
	if req.Category != nil {
		cost.Category = *req.Category
	}
	if req.StartDate != nil {
		cost.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		cost.EndDate = req.EndDate
	}
	if err := validDateRange(cost.StartDate, cost.EndDate); err != nil {
		return RecurringCost{}, err
	}
	if req.Description != nil {
		cost.Description = req.Description
	}
	if req.Active != nil {
		cost.Active = *req.Active
	}
	if req.AutoRenew != nil {
		cost.AutoRenew = *req.AutoRenew
	}
	if err := s.repo.UpdateRecurringCost(ctx, id, cost); err != nil {
		return RecurringCost{}, fmt.Errorf("update recurring cost: %w", err)
	}
	return cost, nil
}

func (s *Service) DeleteRecurringCost(ctx context.Context, id int64) error {
	return s.repo.DeleteRecurringCost(ctx, id)
}

func (s *Service) ActiveRecurringByCategory(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	return s.repo.SumActiveRecurringByCategory(ctx, projectID)
}

// -------- revenue streams --------

func (s *Service) CreateRevenueStream(ctx context.Context, req CreateRevenueStreamRequest) (RevenueStream, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return RevenueStream{}, err
	}
	if err := positiveAmount(req.Amount, "revenue amount"); err != nil {
		return RevenueStream{}, err
	}
	if err := s.projectExists(ctx, req.ProjectID); err != nil {
		return RevenueStream{}, err
	}

	stream := RevenueStream{
		ProjectID:     req.ProjectID,
		Name:          req.Name,
		Amount:        req.Amount,
		RevenueDate:   req.RevenueDate,
		Source:        req.Source,
		Type:          req.Type,
		Description:   req.Description,
		InvoiceNumber: req.InvoiceNumber,
		PaymentStatus: PaymentPending,
	}
	if req.PaymentStatus != nil {
		stream.PaymentStatus = *req.PaymentStatus
	}
	created, err := s.repo.CreateRevenueStream(ctx, stream)
	if err != nil {
		return RevenueStream{}, fmt.Errorf("create revenue stream: %w", err)
	}
	return created, nil
}

func (s *Service) GetRevenueStream(ctx context.Context, id int64) (RevenueStream, error) {
	return s.repo.GetRevenueStream(ctx, id)
}

func (s *Service) ListRevenueStreams(ctx context.Context, projectID int64) ([]RevenueStream, error) {
	return s.repo.ListRevenueStreams(ctx, projectID)
}

func (s *Service) ListRevenueStreamsByType(ctx context.Context, projectID int64, typ RevenueType) ([]RevenueStream, error) {
	return s.repo.ListRevenueStreamsByType(ctx, projectID, typ)
}

func (s *Service) ListRevenueStreamsByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]RevenueStream, error) {
	return s.repo.ListRevenueStreamsByDateRange(ctx, projectID, from, to)
}

func (s *Service) UpdateRevenueStream(ctx context.Context, id int64, req UpdateRevenueStreamRequest) (RevenueStream, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return RevenueStream{}, err
	}
	stream, err := s.repo.GetRevenueStream(ctx, id)
	if err != nil {
		return RevenueStream{}, err
	}
	if req.Name != nil {
		stream.Name = *req.Name
	}
	if req.Amount != nil {
		if err := positiveAmount(*req.Amount, "revenue amount"); err != nil {
			return RevenueStream{}, err
		}
		stream.Amount = *req.Amount
	}
	if req.RevenueDate != nil {
		stream.RevenueDate = *req.RevenueDate
	}
	if req.Source != nil {
		stream.Source = req.Source
	}
	if req.Type != nil {
		stream.Type = *req.Type
	}
	if req.Description != nil {
		stream.Description = req.Description
	}
	if req.InvoiceNumber != nil {
		stream.InvoiceNumber = req.InvoiceNumber
	}
	if req.PaymentStatus != nil {
		stream.PaymentStatus = *req.PaymentStatus
	}
	if err := s.repo.UpdateRevenueStream(ctx, id, stream); err != nil {
		return RevenueStream{}, fmt.Errorf("update revenue stream: %w", err)
	}
	return stream, nil
}

func (s *Service) DeleteRevenueStream(ctx context.Context, id int64) error {
	return s.repo.DeleteRevenueStream(ctx, id)
}

func (s *Service) RevenueByType(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	return s.repo.SumRevenueByType(ctx, projectID)
}

func (s *Service) RevenueBySource(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	return s.repo.SumRevenueBySource(ctx, projectID)
}

func (s *Service) MonthlyRevenue(ctx context.Context, projectID int64, year int) ([]MonthlyAmount, error) {
	return s.repo.MonthlyRevenueSeries(ctx, projectID, year)
}

// -------- subscriptions --------

func (s *Service) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (Subscription, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return Subscription{}, err
	}
	if err := positiveAmount(req.MRR, "MRR"); err != nil {
		return Subscription{}, err
	}
	if err := validDateRange(req.StartDate, req.EndDate); err != nil {
		return Subscription{}, err
	}
	if err := s.projectExists(ctx, req.ProjectID); err != nil {
		return Subscription{}, err
	}

	created, err := s.repo.CreateSubscription(ctx, Subscription{
		ProjectID:     req.ProjectID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		PlanName:      req.PlanName,
		MRR:           req.MRR,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        req.Status,
		BillingCycle:  req.BillingCycle,
	})
	if err != nil {
		return Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	s.logger.Info("subscription created",
		slog.Int64("id", created.ID),
		slog.Int64("project_id", created.ProjectID),
		slog.String("plan", created.PlanName))
	return created, nil
}

func (s *Service) GetSubscription(ctx context.Context, id int64) (Subscription, error) {
	return s.repo.GetSubscription(ctx, id)
}

func (s *Service) ListSubscriptions(ctx context.Context, projectID int64) ([]Subscription, error) {
	return s.repo.ListSubscriptions(ctx, projectID)
}

func (s *Service) ListSubscriptionsByStatus(ctx context.Context, projectID int64, status SubscriptionStatus) ([]Subscription, error) {
	return s.repo.ListSubscriptionsByStatus(ctx, projectID, status)
}

func (s *Service) ListSubscriptionsByPlan(ctx context.Context, projectID int64, plan string) ([]Subscription, error) {
	return s.repo.ListSubscriptionsByPlan(ctx, projectID, plan)
}

func (s *Service) UpdateSubscription(ctx context.Context, id int64, req UpdateSubscriptionRequest) (Subscription, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return Subscription{}, err
	}
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return Subscription{}, err
	}
	if req.CustomerName != nil {
		sub.CustomerName = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		sub.CustomerEmail = req.CustomerEmail
	}
	if req.PlanName != nil {
		sub.PlanName = *req.PlanName
	}
	if req.MRR != nil {
		if err := positiveAmount(*req.MRR, "MRR"); err != nil {
			return Subscription{}, err
		}
		sub.MRR = *req.MRR
	}
	if req.StartDate != nil {
		sub.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		sub.EndDate = req.EndDate
	}
	if err := validDateRange(sub.StartDate, sub.EndDate); err != nil {
		return Subscription{}, err
	}
	if req.Status != nil {
		sub.Status = *req.Status
	}
	if req.BillingCycle != nil {
		sub.BillingCycle = *req.BillingCycle
	}
	if err := s.repo.UpdateSubscription(ctx, id, sub); err != nil {
		return Subscription{}, fmt.Errorf("update subscription: %w", err)
	}
	return sub, nil
}

func (s *Service) DeleteSubscription(ctx context.Context, id int64) error {
	return s.repo.DeleteSubscription(ctx, id)
}

func (s *Service) ActiveMRRByPlan(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	return s.repo.SumActiveMRRByPlan(ctx, projectID)
}
