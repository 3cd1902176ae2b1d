package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/platform/httpx"
	"github.com/projectledger/projectledger/internal/shared"
)

// Handler manages KPI and snapshot endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers KPI routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/roi", h.rangeMetric(func(ctx reqCtx, projectID int64, from, to time.Time) (decimal.Decimal, error) {
		return h.service.Calculator().ROI(ctx, projectID, from, to)
	}))
	r.Get("/profit", h.rangeMetric(func(ctx reqCtx, projectID int64, from, to time.Time) (decimal.Decimal, error) {
		return h.service.Calculator().Profit(ctx, projectID, from, to)
	}))
	r.Get("/costs", h.rangeMetric(func(ctx reqCtx, projectID int64, from, to time.Time) (decimal.Decimal, error) {
		return h.service.Calculator().TotalCosts(ctx, projectID, from, to)
	}))
	r.Get("/revenue", h.rangeMetric(func(ctx reqCtx, projectID int64, from, to time.Time) (decimal.Decimal, error) {
		return h.service.Calculator().TotalRevenue(ctx, projectID, from, to)
	}))
	r.Get("/adr", h.rangeMetric(func(ctx reqCtx, projectID int64, from, to time.Time) (decimal.Decimal, error) {
		return h.service.Calculator().ADR(ctx, projectID, from, to)
	}))
	r.Get("/commissions", h.rangeMetric(func(ctx reqCtx, projectID int64, from, to time.Time) (decimal.Decimal, error) {
		return h.service.Calculator().TotalCommissions(ctx, projectID, from, to)
	}))
	r.Get("/net-booking-revenue", h.rangeMetric(func(ctx reqCtx, projectID int64, from, to time.Time) (decimal.Decimal, error) {
		return h.service.Calculator().NetBookingRevenue(ctx, projectID, from, to)
	}))
	r.Get("/occupancy", h.yearMetric(func(ctx reqCtx, projectID int64, year int) (decimal.Decimal, error) {
		return h.service.Calculator().OccupancyRate(ctx, projectID, year)
	}))
	r.Get("/revpar", h.yearMetric(func(ctx reqCtx, projectID int64, year int) (decimal.Decimal, error) {
		return h.service.Calculator().RevPAR(ctx, projectID, year)
	}))
	r.Get("/adr-by-year", h.yearMetric(func(ctx reqCtx, projectID int64, year int) (decimal.Decimal, error) {
		return h.service.Calculator().ADRByYear(ctx, projectID, year)
	}))
	r.Get("/mrr", h.pointMetric(func(ctx reqCtx, projectID int64) (decimal.Decimal, error) {
		return h.service.Calculator().MRR(ctx, projectID)
	}))
	r.Get("/arr", h.pointMetric(func(ctx reqCtx, projectID int64) (decimal.Decimal, error) {
		return h.service.Calculator().ARR(ctx, projectID)
	}))
	r.Get("/arpu", h.pointMetric(func(ctx reqCtx, projectID int64) (decimal.Decimal, error) {
		return h.service.Calculator().ARPU(ctx, projectID)
	}))
	r.Get("/profit-growth", h.growthMetric(h.service.Calculator().ProfitGrowth))
	r.Get("/revenue-growth", h.growthMetric(h.service.Calculator().RevenueGrowth))

	r.Route("/records", func(r chi.Router) {
		r.Get("/", h.listRecords)
		r.Post("/", h.upsertRecord)
		r.Post("/import", h.importRecords)
		r.Get("/latest", h.latestRecord)
		r.Get("/{id}", h.getRecord)
		r.Delete("/", h.deleteByDate)
	})
}

type reqCtx = context.Context

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	from, to, err := rangeQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.Summary(r.Context(), projectID, from, to)
	if err != nil {
		h.logger.Error("kpi summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

type metricResponse struct {
	ProjectID int64           `json:"project_id"`
	Value     decimal.Decimal `json:"value"`
}

func (h *Handler) rangeMetric(fn func(ctx reqCtx, projectID int64, from, to time.Time) (decimal.Decimal, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := projectIDQuery(w, r)
		if !ok {
			return
		}
		from, to, err := rangeQuery(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		value, err := fn(r.Context(), projectID, from, to)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, metricResponse{ProjectID: projectID, Value: value})
	}
}

func (h *Handler) yearMetric(fn func(ctx reqCtx, projectID int64, year int) (decimal.Decimal, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := projectIDQuery(w, r)
		if !ok {
			return
		}
		year, err := strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "year must be an integer")
			return
		}
		value, err := fn(r.Context(), projectID, year)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, metricResponse{ProjectID: projectID, Value: value})
	}
}

func (h *Handler) pointMetric(fn func(ctx reqCtx, projectID int64) (decimal.Decimal, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := projectIDQuery(w, r)
		if !ok {
			return
		}
		value, err := fn(r.Context(), projectID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, metricResponse{ProjectID: projectID, Value: value})
	}
}

func (h *Handler) growthMetric(fn func(ctx reqCtx, projectID int64, cf, ct, pf, pt time.Time) (decimal.Decimal, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := projectIDQuery(w, r)
		if !ok {
			return
		}
		query := r.URL.Query()
		currentFrom, currentTo, err := parseDates(query.Get("from"), query.Get("to"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		previousFrom, previousTo, err := parseDates(query.Get("previous_from"), query.Get("previous_to"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		value, err := fn(r.Context(), projectID, currentFrom, currentTo, previousFrom, previousTo)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, metricResponse{ProjectID: projectID, Value: value})
	}
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	var (
		result []CalculatedMetric
		err    error
	)
	switch {
	case query.Get("type") != "":
		result, err = h.service.ListByType(r.Context(), projectID, MetricType(query.Get("type")))
	case query.Get("period") != "":
		result, err = h.service.ListByPeriod(r.Context(), projectID, PeriodType(query.Get("period")))
	case query.Get("from") != "" || query.Get("to") != "":
		var from, to time.Time
		from, to, err = parseDates(query.Get("from"), query.Get("to"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		result, err = h.service.ListByDateRange(r.Context(), projectID, from, to)
	default:
		result, err = h.service.ListByProject(r.Context(), projectID)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) upsertRecord(w http.ResponseWriter, r *http.Request) {
	var req UpsertMetricRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	metric, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, metric)
}

func (h *Handler) importRecords(w http.ResponseWriter, r *http.Request) {
	var req BatchImportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	count, err := h.service.BatchImport(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"imported": count})
}

func (h *Handler) latestRecord(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	typ := MetricType(r.URL.Query().Get("type"))
	if typ == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "type query parameter is required")
		return
	}
	metric, err := h.service.LatestOfType(r.Context(), projectID, typ)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, metric)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.Invalidf("invalid id"))
		return
	}
	metric, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, metric)
}

func (h *Handler) deleteByDate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDQuery(w, r)
	if !ok {
		return
	}
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "date must be a YYYY-MM-DD date")
		return
	}
	deleted, err := h.service.DeleteByDate(r.Context(), projectID, date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func projectIDQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	projectID, err := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
	if err != nil || projectID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "project_id query parameter is required")
		return 0, false
	}
	return projectID, true
}

func rangeQuery(r *http.Request) (time.Time, time.Time, error) {
	return parseDates(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
}

func parseDates(from, to string) (time.Time, time.Time, error) {
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
