package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkusuma/riskscope/internal/customer"
	"github.com/mkusuma/riskscope/internal/dataset"
	"github.com/mkusuma/riskscope/internal/generator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupRouter creates a router with a loaded 200-customer dataset.
func setupRouter(t *testing.T) (*gin.Engine, *dataset.Service) {
	t.Helper()
	svc := dataset.New(dataset.Config{
		Generator: generator.Config{Size: 200, Seed: 42},
		Store:     customer.NewMemoryStore(),
	})
	_, err := svc.Regenerate(context.Background(), dataset.RegenerateOptions{})
	require.NoError(t, err)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/v1"))
	return r, svc
}

// setupEmptyRouter creates a router whose service has no dataset loaded.
func setupEmptyRouter(t *testing.T) *gin.Engine {
	t.Helper()
	svc := dataset.New(dataset.Config{Generator: generator.Config{Size: 10, Seed: 1}})
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/v1"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestOverview(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/portfolio/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)

	kpis := resp["kpis"].(map[string]interface{})
	assert.Equal(t, float64(200), kpis["total"])
	assert.GreaterOrEqual(t, kpis["meanScore"].(float64), 0.0)
	assert.LessOrEqual(t, kpis["maxScore"].(float64), 100.0)

	categories := resp["categories"].(map[string]interface{})
	for _, cat := range []string{"low", "medium", "high"} {
		assert.Contains(t, categories, cat)
	}

	ds := resp["dataset"].(map[string]interface{})
	assert.NotEmpty(t, ds["version"])
}

func TestOverviewNoDataset(t *testing.T) {
	r := setupEmptyRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/portfolio/overview", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "no_dataset", resp["error"])
}

func TestSegmentDeepDive(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/portfolio/segments/high", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "high", resp["category"])

	top := resp["topRisky"].([]interface{})
	assert.LessOrEqual(t, len(top), 10)
	prev := 101.0
	for _, item := range top {
		rec := item.(map[string]interface{})
		score := rec["riskScore"].(float64)
		assert.LessOrEqual(t, score, prev, "descending order")
		assert.Equal(t, "high", rec["riskCategory"])
		prev = score
	}
}

func TestSegmentInvalidCategory(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/portfolio/segments/extreme", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_category", resp["error"])
}

func TestCrossTabAndCorrelation(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/portfolio/crosstab", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, resp, "crossTab")

	w, resp = doJSON(t, r, http.MethodGet, "/v1/portfolio/correlation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	features := resp["features"].([]interface{})
	matrix := resp["matrix"].([]interface{})
	assert.Len(t, matrix, len(features))
}

func TestCustomersListAndFilter(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/customers?limit=25", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(25), resp["count"])

	w, resp = doJSON(t, r, http.MethodGet, "/v1/customers?category=low&limit=10000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, item := range resp["customers"].([]interface{}) {
		assert.Equal(t, "low", item.(map[string]interface{})["riskCategory"])
	}

	w, resp = doJSON(t, r, http.MethodGet, "/v1/customers?category=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_category", resp["error"])

	w, resp = doJSON(t, r, http.MethodGet, "/v1/customers?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_limit", resp["error"])
}

func TestCustomerLookup(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/customers/CUST00001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	rec := resp["customer"].(map[string]interface{})
	assert.Equal(t, "CUST00001", rec["id"])

	breakdown := resp["breakdown"].(map[string]interface{})
	total := breakdown["total"].(float64)
	sum := breakdown["utilization"].(float64) + breakdown["latePayments"].(float64) +
		breakdown["income"].(float64) + breakdown["paymentStatus"].(float64) +
		breakdown["missedPayments"].(float64)
	assert.Equal(t, sum, total)
	assert.Equal(t, rec["riskScore"], total)

	recs := resp["recommendations"].([]interface{})
	assert.NotEmpty(t, recs)
}

func TestCustomerLookupNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/customers/CUST99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", resp["error"])
}

func TestScoreAdHoc(t *testing.T) {
	r, _ := setupRouter(t)

	body := map[string]interface{}{
		"id":                "ADHOC0001",
		"age":               45,
		"income":            5_000_000,
		"creditLimit":       10_000_000,
		"creditUtilization": 60,
		"latePaymentCount":  2,
		"paymentStatus":     "late",
		"missedPayment6m":   2,
	}
	w, resp := doJSON(t, r, http.MethodPost, "/v1/score", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(77), resp["riskScore"])
	assert.Equal(t, "high", resp["riskCategory"])
	assert.NotEmpty(t, resp["recommendations"])
}

func TestScoreAcceptsTitleCaseStatus(t *testing.T) {
	r, _ := setupRouter(t)

	body := map[string]interface{}{
		"income":            20_000_000,
		"creditUtilization": 0,
		"paymentStatus":     "Current",
	}
	w, resp := doJSON(t, r, http.MethodPost, "/v1/score", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(20), resp["riskScore"])
	assert.Equal(t, "low", resp["riskCategory"])
}

func TestScoreValidationErrors(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
		wantError  string
	}{
		{
			name: "missing income",
			body: map[string]interface{}{
				"creditUtilization": 40,
				"paymentStatus":     "current",
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "missing_field",
		},
		{
			name: "invalid payment status",
			body: map[string]interface{}{
				"income":            5_000_000,
				"creditUtilization": 40,
				"paymentStatus":     "defaulted",
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "missing_field",
		},
		{
			name: "utilization out of range",
			body: map[string]interface{}{
				"income":            5_000_000,
				"creditUtilization": 150,
				"paymentStatus":     "current",
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "out_of_range",
		},
		{
			name: "negative late payments",
			body: map[string]interface{}{
				"income":            5_000_000,
				"creditUtilization": 40,
				"paymentStatus":     "current",
				"latePaymentCount":  -1,
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "out_of_range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, r, http.MethodPost, "/v1/score", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, resp["error"])
		})
	}
}

func TestThresholdsRoundTrip(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/v1/config/thresholds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(33), resp["low"])
	assert.Equal(t, float64(67), resp["high"])

	w, resp = doJSON(t, r, http.MethodPut, "/v1/config/thresholds", map[string]int{"low": 20, "high": 80})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(20), resp["low"])
	assert.Equal(t, float64(80), resp["high"])
	assert.Contains(t, resp, "categories")

	w, resp = doJSON(t, r, http.MethodGet, "/v1/config/thresholds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(20), resp["low"])
	assert.Equal(t, float64(80), resp["high"])
}

func TestThresholdsInvalid(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodPut, "/v1/config/thresholds", map[string]int{"low": 80, "high": 40})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_configuration", resp["error"])

	// Per-field range checks catch values outside 0..100.
	for _, body := range []map[string]int{
		{"low": -5, "high": 67},
		{"low": 33, "high": 150},
	} {
		w, resp = doJSON(t, r, http.MethodPut, "/v1/config/thresholds", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "body %v", body)
		assert.Equal(t, "invalid_configuration", resp["error"])
		assert.Contains(t, resp["message"], "out of range")
	}

	// Missing fields rejected before reaching the classifier.
	w, resp = doJSON(t, r, http.MethodPut, "/v1/config/thresholds", map[string]int{"low": 20})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_json", resp["error"])
}

func TestRegenerateEndpoint(t *testing.T) {
	r, svc := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/v1/dataset/regenerate", map[string]interface{}{
		"size": 50,
		"seed": 7,
	})
	require.Equal(t, http.StatusOK, w.Code)

	ds := resp["dataset"].(map[string]interface{})
	assert.Equal(t, float64(50), ds["total"])
	assert.Equal(t, float64(7), ds["seed"])

	records, err := svc.Records("", 0)
	require.NoError(t, err)
	assert.Len(t, records, 50)
}

func TestRegenerateSizeOutOfRange(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/v1/dataset/regenerate", map[string]interface{}{"size": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "out_of_range", resp["error"])
}
