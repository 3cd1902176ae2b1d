package analytics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/projectledger/projectledger/internal/platform/httpx"
	"github.com/projectledger/projectledger/internal/shared"
)

// Handler manages traffic analytics endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.upsert)
	r.Post("/import", h.importBatch)
	r.Get("/{id}", h.get)
	r.Route("/project/{projectID}", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/totals", h.totals)
		r.Get("/by-source", h.bySource)
		r.Get("/by-device", h.byDevice)
		r.Get("/monthly", h.monthly)
		r.Delete("/", h.deleteByDate)
	})
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	entry, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) importBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchImportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return
	}
	count, err := h.service.BatchImport(r.Context(), req)
	if err != nil {
		h.logger.Error("traffic batch import", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"imported": count})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.Invalidf("invalid id"))
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projectID, err := projectIDPath(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	query := r.URL.Query()
	var result []TrafficEntry
	if query.Get("from") != "" || query.Get("to") != "" {
		from, to, err := rangeQuery(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		result, err = h.service.ListByDateRange(r.Context(), projectID, from, to)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
	} else {
		result, err = h.service.ListByProject(r.Context(), projectID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	projectID, from, to, err := projectRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	totals, err := h.service.Totals(r.Context(), projectID, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) bySource(w http.ResponseWriter, r *http.Request) {
	projectID, from, to, err := projectRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.UsersBySource(r.Context(), projectID, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) byDevice(w http.ResponseWriter, r *http.Request) {
	projectID, from, to, err := projectRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.SessionsByDevice(r.Context(), projectID, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	projectID, err := projectIDPath(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	series, err := h.service.Monthly(r.Context(), projectID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, series)
}

func (h *Handler) deleteByDate(w http.ResponseWriter, r *http.Request) {
	projectID, err := projectIDPath(r)
	if err != nil {
		httpx.RespondError(w, err)
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

func projectIDPath(r *http.Request) (int64, error) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil || projectID <= 0 {
		return 0, shared.Invalidf("invalid projectID")
	}
	return projectID, nil
}

func projectRange(r *http.Request) (int64, time.Time, time.Time, error) {
	projectID, err := projectIDPath(r)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	from, to, err := rangeQuery(r)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	return projectID, from, to, nil
}

func rangeQuery(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()
	from, err := time.Parse("2006-01-02", query.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, shared.Invalidf("from must be a YYYY-MM-DD date")
	}
	to, err := time.Parse("2006-01-02", query.Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, shared.Invalidf("to must be a YYYY-MM-DD date")
	}
	return from, to, nil
}
