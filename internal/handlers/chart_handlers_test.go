package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/pkg/errors"

	"climate-platform/internal/models"
	"climate-platform/internal/pipeline"
	"climate-platform/internal/services"
	"climate-platform/pkg/logging"
	"climate-platform/pkg/metrics"
)

type fakeCharts struct {
	got  pipeline.Request
	resp *pipeline.Response
	err  error
}

func (f *fakeCharts) GetChartSeries(_ context.Context, req pipeline.Request) (*pipeline.Response, error) {
	f.got = req
	return f.resp, f.err
}

type fakeCatalog struct {
	dataSets  []services.DataSetSummary
	locations []models.Location
	listErr   error
	healthErr error

	region        string
	limit, offset int
}

func (f *fakeCatalog) ListDataSets(context.Context) ([]services.DataSetSummary, error) {
	return f.dataSets, f.listErr
}

func (f *fakeCatalog) ListLocations(_ context.Context, regionID string, limit, offset int) ([]models.Location, error) {
	f.region, f.limit, f.offset = regionID, limit, offset
	return f.locations, f.listErr
}

func (f *fakeCatalog) HealthCheck(context.Context) error { return f.healthErr }

func newRouter(charts *fakeCharts, catalog *fakeCatalog) (*mux.Router, *metrics.Collector) {
	logger := logging.NewStructuredLogger("handlers-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	collector := metrics.NewCollector("test", prometheus.NewRegistry())

	router := mux.NewRouter()
	NewChartHandler(charts, catalog, logger, collector).RegisterRoutes(router)
	return router, collector
}

func postChart(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chart-series", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetChartSeries_OK(t *testing.T) {
	charts := &fakeCharts{resp: &pipeline.Response{
		Points:        []pipeline.Point{{BinID: "y1990", Label: "1990", Value: models.Float(21.5)}, {BinID: "y1991", Label: "1991"}},
		UnitOfMeasure: "degC",
	}}
	router, collector := newRouter(charts, &fakeCatalog{})

	rec := postChart(router, `{
		"seriesSpecifications": [{"dataSetId": "acorn", "locationId": "066062", "dataType": "tmax"}],
		"binningRule": "ByYear",
		"cupSizeDays": 14,
		"binAggregationFunction": "Mean",
		"smoothing": {"method": "trailing", "windowSize": 5}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	assert.Equal(t, "ByYear", charts.got.BinningRule)
	require.Len(t, charts.got.SeriesSpecifications, 1)
	assert.Equal(t, "066062", charts.got.SeriesSpecifications[0].LocationID)
	require.NotNil(t, charts.got.Smoothing)
	assert.Equal(t, 5, charts.got.Smoothing.WindowSize)

	var body struct {
		Points []struct {
			BinID string   `json:"binId"`
			Value *float64 `json:"value"`
		} `json:"points"`
		UnitOfMeasure string `json:"unitOfMeasure"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Points, 2)
	assert.Equal(t, "y1990", body.Points[0].BinID)
	assert.InDelta(t, 21.5, *body.Points[0].Value, 1e-9)
	assert.Nil(t, body.Points[1].Value)
	assert.Equal(t, "degC", body.UnitOfMeasure)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.APIRequestsTotal.WithLabelValues("/api/chart-series", "POST", "200")))
}

func TestGetChartSeries_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"configuration", pkgerrors.Wrap(models.NewConfigurationError("binner", "bad"), "invalid request"), http.StatusBadRequest},
		{"validation", &models.ValidationError{Field: "limit", Message: "bad"}, http.StatusBadRequest},
		{"not found", pkgerrors.Wrap(&models.NotFoundError{Resource: "location", ID: "x"}, "series provider"), http.StatusNotFound},
		{"data shape", &models.DataShapeError{Field: "unit of measure"}, http.StatusUnprocessableEntity},
		{"other", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(&fakeCharts{err: tt.err}, &fakeCatalog{})
			rec := postChart(router, `{"binningRule": "ByYear"}`)

			assert.Equal(t, tt.want, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Code)
			assert.Equal(t, http.StatusText(tt.want), body.Error)
		})
	}
}

func TestGetChartSeries_BadBody(t *testing.T) {
	charts := &fakeCharts{}
	router, _ := newRouter(charts, &fakeCatalog{})

	assert.Equal(t, http.StatusBadRequest, postChart(router, `{"binningRule":`).Code)
	assert.Equal(t, http.StatusBadRequest, postChart(router, `{"binningRuel": "ByYear"}`).Code)
	assert.Empty(t, charts.got.BinningRule)
}

func TestListDataSets(t *testing.T) {
	catalog := &fakeCatalog{dataSets: []services.DataSetSummary{{
		DataSetDefinition: models.DataSetDefinition{ID: "acorn", Name: "ACORN-SAT", DataResolution: models.Daily},
		Measurements:      []*models.MeasurementDefinition{{DataSetID: "acorn", DataType: "tmax"}},
	}}}
	router, _ := newRouter(&fakeCharts{}, catalog)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "acorn", body[0]["id"])
	assert.Len(t, body[0]["measurements"], 1)
}

func TestListLocations_Pagination(t *testing.T) {
	catalog := &fakeCatalog{locations: []models.Location{{ID: "066062", Name: "Sydney"}}}
	router, _ := newRouter(&fakeCharts{}, catalog)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/locations?page=3&limit=20&region_id=nsw", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nsw", catalog.region)
	assert.Equal(t, 20, catalog.limit)
	assert.Equal(t, 40, catalog.offset)

	var body PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Page)
	assert.Equal(t, 20, body.Limit)
}

func TestHealthCheck(t *testing.T) {
	catalog := &fakeCatalog{}
	router, _ := newRouter(&fakeCharts{}, catalog)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	catalog.healthErr = errors.New("database is closed")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestID_ReusesCallerID(t *testing.T) {
	router, _ := newRouter(&fakeCharts{}, &fakeCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestDocs(t *testing.T) {
	router, _ := newRouter(&fakeCharts{}, &fakeCatalog{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	paths := doc["paths"].(map[string]interface{})
	assert.Contains(t, paths, "/api/chart-series")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi.json")
	assert.Contains(t, rec.Body.String(), "Climate Chart Series API")
}
