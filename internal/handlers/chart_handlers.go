package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"climate-platform/internal/models"
	"climate-platform/internal/pipeline"
	"climate-platform/internal/services"
	"climate-platform/pkg/logging"
	"climate-platform/pkg/metrics"
)

// ChartSeriesProvider computes chart series
type ChartSeriesProvider interface {
	GetChartSeries(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// CatalogBrowser lists what can be charted
type CatalogBrowser interface {
	ListDataSets(ctx context.Context) ([]services.DataSetSummary, error)
	ListLocations(ctx context.Context, regionID string, limit, offset int) ([]models.Location, error)
	HealthCheck(ctx context.Context) error
}

// ChartHandler handles the chart series and catalog endpoints
type ChartHandler struct {
	charts  ChartSeriesProvider
	catalog CatalogBrowser
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewChartHandler creates a new chart handler
func NewChartHandler(
	charts ChartSeriesProvider,
	catalog CatalogBrowser,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ChartHandler {
	return &ChartHandler{
		charts:  charts,
		catalog: catalog,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// maxRequestBytes bounds a chart series request body
const maxRequestBytes = 1 << 20

// GetChartSeries handles POST /api/chart-series
func (h *ChartHandler) GetChartSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/chart-series").Observe(duration.Seconds())
	}()

	var req pipeline.Request
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.metrics.RecordAPIError("bad_request", "/api/chart-series")
		h.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.charts.GetChartSeries(ctx, req)
	if err != nil {
		status, errorType := classify(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(ctx, "[API_CHART_SERIES_ERROR] Failed to build chart series", logging.Fields{
				"binning_rule": req.BinningRule,
			}, err)
		}
		h.metrics.RecordAPIError(errorType, "/api/chart-series")
		h.sendError(w, r, err.Error(), status)
		return
	}

	h.metrics.RecordAPIRequest("/api/chart-series", "POST", "200")
	h.sendJSON(w, resp, http.StatusOK)
}

// ListDataSets handles GET /api/datasets
func (h *ChartHandler) ListDataSets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/datasets").Observe(duration.Seconds())
	}()

	dataSets, err := h.catalog.ListDataSets(ctx)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_DATASETS_ERROR] Failed to list data sets", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/datasets")
		h.sendError(w, r, "failed to retrieve data sets", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/datasets", "GET", "200")
	h.sendJSON(w, dataSets, http.StatusOK)
}

// ListLocations handles GET /api/locations
func (h *ChartHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/locations").Observe(duration.Seconds())
	}()

	regionID := r.URL.Query().Get("region_id")
	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")

	// Default pagination
	page := 1
	limit := 100

	if pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	locations, err := h.catalog.ListLocations(ctx, regionID, limit, (page-1)*limit)
	if err != nil {
		status, errorType := classify(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(ctx, "[API_LIST_LOCATIONS_ERROR] Failed to list locations", logging.Fields{
				"region_id": regionID,
			}, err)
		}
		h.metrics.RecordAPIError(errorType, "/api/locations")
		message := "failed to retrieve locations"
		if status != http.StatusInternalServerError {
			message = err.Error()
		}
		h.sendError(w, r, message, status)
		return
	}

	response := PaginatedResponse{
		Data:  locations,
		Page:  page,
		Limit: limit,
	}

	h.metrics.RecordAPIRequest("/api/locations", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *ChartHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if err := h.catalog.HealthCheck(ctx); err != nil {
		h.logger.Warn(ctx, "[HEALTH_CHECK] Catalog store unavailable", logging.Fields{
			"error": err.Error(),
		})
		status["status"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

// classify maps an error to an HTTP status and a metrics error type
func classify(err error) (int, string) {
	var (
		configErr     *models.ConfigurationError
		validationErr *models.ValidationError
		notFoundErr   *models.NotFoundError
		shapeErr      *models.DataShapeError
	)
	switch {
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &shapeErr):
		return http.StatusUnprocessableEntity, "data_shape"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// sendJSON sends a JSON response
func (h *ChartHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *ChartHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers the chart, catalog and docs routes
func (h *ChartHandler) RegisterRoutes(router *mux.Router) {
	router.Use(RequestID(h.logger))
	router.HandleFunc("/api/chart-series", h.GetChartSeries).Methods("POST")
	router.HandleFunc("/api/datasets", h.ListDataSets).Methods("GET")
	router.HandleFunc("/api/locations", h.ListLocations).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc(openAPIPath, OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
}
