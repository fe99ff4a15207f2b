package generatorhttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finboard/finboard/internal/generator"
	"github.com/finboard/finboard/internal/platform/httpx"
)

const requestTimeout = 30 * time.Second

// DatasetService defines the generator contract used by the handler.
type DatasetService interface {
	MetricValue(ctx context.Context, cat generator.MetricCategory) (float64, error)
	Operations(ctx context.Context, rows int) ([]generator.Operation, error)
	Users(ctx context.Context, rows int) ([]generator.User, error)
	DefaultRows() int
}

// Handler serves the dashboard dataset endpoints.
type Handler struct {
	logger  *slog.Logger
	service DatasetService
}

// NewHandler constructs the dataset HTTP handler.
func NewHandler(logger *slog.Logger, service DatasetService) *Handler {
	return &Handler{logger: logger, service: service}
}

type metricResponse struct {
	Value float64 `json:"value"`
}

type operationsResponse struct {
	Records []generator.Operation `json:"records"`
}

type usersResponse struct {
	Records []generator.User `json:"records"`
}

func (h *Handler) handleMetric(w http.ResponseWriter, r *http.Request) {
	cat, ok := generator.ParseMetricCategory(chi.URLParam(r, "category"))
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Unknown Metric", "metric category does not exist")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	value, err := h.service.MetricValue(ctx, cat)
	if err != nil {
		h.respondComputeError(w, cat, err)
		return
	}
	httpx.JSON(w, http.StatusOK, metricResponse{Value: value})
}

func (h *Handler) handleRows(w http.ResponseWriter, r *http.Request) {
	cat, ok := generator.ParseRowCategory(chi.URLParam(r, "category"))
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Unknown Collection", "row category does not exist")
		return
	}

	rows, err := h.parseRows(r)
	if err != nil {
		h.handleParamError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	switch cat {
	case generator.RowsOperations:
		records, err := h.service.Operations(ctx, rows)
		if err != nil {
			h.respondRowsError(w, cat, err)
			return
		}
		httpx.JSON(w, http.StatusOK, operationsResponse{Records: records})
	case generator.RowsUsers:
		records, err := h.service.Users(ctx, rows)
		if err != nil {
			h.respondRowsError(w, cat, err)
			return
		}
		httpx.JSON(w, http.StatusOK, usersResponse{Records: records})
	}
}

// parseRows reads the rows query parameter, falling back to the service
// default when absent. The ceiling is the service's concern; only shape
// is checked here.
func (h *Handler) parseRows(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("rows"))
	if raw == "" {
		return h.service.DefaultRows(), nil
	}
	rows, err := strconv.Atoi(raw)
	if err != nil || rows < 0 {
		return 0, validationError{field: "rows"}
	}
	return rows, nil
}

func (h *Handler) respondComputeError(w http.ResponseWriter, cat generator.MetricCategory, err error) {
	h.logError("compute "+cat.String(), err)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		httpx.Problem(w, http.StatusServiceUnavailable, "Compute Timeout", "metric computation did not finish in time")
	case errors.Is(err, generator.ErrPoolClosed):
		httpx.Problem(w, http.StatusServiceUnavailable, "Shutting Down", "")
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) respondRowsError(w http.ResponseWriter, cat generator.RowCategory, err error) {
	if errors.Is(err, generator.ErrInvalidRows) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "rows must be zero or more")
		return
	}
	h.logError("rows "+cat.String(), err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) handleParamError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	h.logError("parse params", err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s", v.field)
}
