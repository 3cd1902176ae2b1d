package ledger

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/projectledger/projectledger/internal/platform/httpx"
	"github.com/projectledger/projectledger/internal/shared"
)

// Handler manages ledger endpoints: costs, revenues and subscriptions.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the ledger route groups.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/costs", func(r chi.Router) {
		r.Get("/", h.listOneTimeCosts)
		r.Post("/", h.createOneTimeCost)
		r.Get("/by-category", h.oneTimeCostsByCategory)
		r.Get("/{id}", h.getOneTimeCost)
		r.Put("/{id}", h.updateOneTimeCost)
		r.Delete("/{id}", h.deleteOneTimeCost)
	})
	r.Route("/recurring-costs", func(r chi.Router) {
		r.Get("/", h.listRecurringCosts)
		r.Post("/", h.createRecurringCost)
		r.Get("/by-category", h.recurringCostsByCategory)
		r.Get("/{id}", h.getRecurringCost)
		r.Put("/{id}", h.updateRecurringCost)
		r.Delete("/{id}", h.deleteRecurringCost)
	})
	r.Route("/revenues", func(r chi.Router) {
		r.Get("/", h.listRevenueStreams)
		r.Post("/", h.createRevenueStream)
		r.Get("/by-type", h.revenueByType)
		r.Get("/by-source", h.revenueBySource)
		r.Get("/monthly", h.monthlyRevenue)
		r.Get("/{id}", h.getRevenueStream)
		r.Put("/{id}", h.updateRevenueStream)
		r.Delete("/{id}", h.deleteRevenueStream)
	})
	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/", h.listSubscriptions)
		r.Post("/", h.createSubscription)
		r.Get("/mrr-by-plan", h.mrrByPlan)
		r.Get("/{id}", h.getSubscription)
		r.Put("/{id}", h.updateSubscription)
		r.Delete("/{id}", h.deleteSubscription)
	})
}

// -------- one-time costs --------

func (h *Handler) listOneTimeCosts(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	var (
		result []OneTimeCost
		err    error
	)
	switch {
	case query.Get("category") != "":
		result, err = h.service.ListOneTimeCostsByCategory(r.Context(), projectID, CostCategory(query.Get("category")))
	case query.Get("from") != "" || query.Get("to") != "":
		var from, to time.Time
		from, to, err = parseRange(query.Get("from"), query.Get("to"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		result, err = h.service.ListOneTimeCostsByDateRange(r.Context(), projectID, from, to)
	default:
		result, err = h.service.ListOneTimeCosts(r.Context(), projectID)
	}
	h.respondList(w, result, err)
}

func (h *Handler) createOneTimeCost(w http.ResponseWriter, r *http.Request) {
	var req CreateOneTimeCostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	cost, err := h.service.CreateOneTimeCost(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cost)
}

func (h *Handler) getOneTimeCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	cost, err := h.service.GetOneTimeCost(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cost)
}

func (h *Handler) updateOneTimeCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateOneTimeCostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	cost, err := h.service.UpdateOneTimeCost(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cost)
}

func (h *Handler) deleteOneTimeCost(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.service.DeleteOneTimeCost)
}

func (h *Handler) oneTimeCostsByCategory(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	result, err := h.service.OneTimeCostsByCategory(r.Context(), projectID)
	h.respondList(w, result, err)
}

// -------- recurring costs --------

func (h *Handler) listRecurringCosts(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	var (
		result []RecurringCost
		err    error
	)
	switch {
	case query.Get("frequency") != "":
		result, err = h.service.ListRecurringCostsByFrequency(r.Context(), projectID, Frequency(query.Get("frequency")))
	case query.Get("active") == "true":
		result, err = h.service.ListActiveRecurringCosts(r.Context(), projectID)
	default:
		result, err = h.service.ListRecurringCosts(r.Context(), projectID)
	}
	h.respondList(w, result, err)
}

func (h *Handler) createRecurringCost(w http.ResponseWriter, r *http.Request) {
	var req CreateRecurringCostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	cost, err := h.service.CreateRecurringCost(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cost)
}

func (h *Handler) getRecurringCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	cost, err := h.service.GetRecurringCost(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cost)
}

func (h *Handler) updateRecurringCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRecurringCostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	cost, err := h.service.UpdateRecurringCost(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cost)
}

func (h *Handler) deleteRecurringCost(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.service.DeleteRecurringCost)
}

func (h *Handler) recurringCostsByCategory(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	result, err := h.service.ActiveRecurringByCategory(r.Context(), projectID)
	h.respondList(w, result, err)
}

// -------- revenue streams --------

func (h *Handler) listRevenueStreams(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	var (
		result []RevenueStream
		err    error
	)
	switch {
	case query.Get("type") != "":
		result, err = h.service.ListRevenueStreamsByType(r.Context(), projectID, RevenueType(query.Get("type")))
	case query.Get("from") != "" || query.Get("to") != "":
		var from, to time.Time
		from, to, err = parseRange(query.Get("from"), query.Get("to"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		result, err = h.service.ListRevenueStreamsByDateRange(r.Context(), projectID, from, to)
	default:
		result, err = h.service.ListRevenueStreams(r.Context(), projectID)
	}
	h.respondList(w, result, err)
}

func (h *Handler) createRevenueStream(w http.ResponseWriter, r *http.Request) {
	var req CreateRevenueStreamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	stream, err := h.service.CreateRevenueStream(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, stream)
}

func (h *Handler) getRevenueStream(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	stream, err := h.service.GetRevenueStream(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stream)
}

func (h *Handler) updateRevenueStream(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRevenueStreamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	stream, err := h.service.UpdateRevenueStream(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stream)
}

func (h *Handler) deleteRevenueStream(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.service.DeleteRevenueStream)
}

func (h *Handler) revenueByType(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	result, err := h.service.RevenueByType(r.Context(), projectID)
	h.respondList(w, result, err)
}

func (h *Handler) revenueBySource(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	result, err := h.service.RevenueBySource(r.Context(), projectID)
	h.respondList(w, result, err)
}

func (h *Handler) monthlyRevenue(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "year must be an integer")
		return
	}
	result, err := h.service.MonthlyRevenue(r.Context(), projectID, year)
	h.respondList(w, result, err)
}

// -------- subscriptions --------

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	var (
		result []Subscription
		err    error
	)
	switch {
	case query.Get("status") != "":
		result, err = h.service.ListSubscriptionsByStatus(r.Context(), projectID, SubscriptionStatus(query.Get("status")))
	case query.Get("plan") != "":
		result, err = h.service.ListSubscriptionsByPlan(r.Context(), projectID, query.Get("plan"))
	default:
		result, err = h.service.ListSubscriptions(r.Context(), projectID)
	}
	h.respondList(w, result, err)
}

func (h *Handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	sub, err := h.service.CreateSubscription(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) getSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sub, err := h.service.GetSubscription(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) updateSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateSubscriptionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	sub, err := h.service.UpdateSubscription(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.service.DeleteSubscription)
}

func (h *Handler) mrrByPlan(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	result, err := h.service.ActiveMRRByPlan(r.Context(), projectID)
	h.respondList(w, result, err)
}

// -------- helpers --------

func (h *Handler) respondList(w http.ResponseWriter, result any, err error) {
	if err != nil {
		h.logger.Error("ledger query", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := fn(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectIDQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	projectID, err := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
	if err != nil || projectID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "project_id query parameter is required")
		return 0, false
	}
	return projectID, true
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, shared.Invalidf("from must be a YYYY-MM-DD date")
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, shared.Invalidf("to must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, shared.Invalidf("range end before range start")
	}
	return start, end, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.Invalidf("invalid id")
	}
	return id, nil
}
