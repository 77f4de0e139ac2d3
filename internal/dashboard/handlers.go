// Package dashboard provides the JSON API for portfolio analytics, customer
// lookup, ad-hoc scoring, and runtime configuration.
package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkusuma/riskscope/internal/customer"
	"github.com/mkusuma/riskscope/internal/dataset"
	"github.com/mkusuma/riskscope/internal/metrics"
	"github.com/mkusuma/riskscope/internal/report"
	"github.com/mkusuma/riskscope/internal/scoring"
	"github.com/mkusuma/riskscope/internal/validation"
)

const (
	// topRiskyCount is how many customers a segment deep-dive returns.
	topRiskyCount = 10

	// List endpoint bounds.
	defaultListLimit = 100
	maxListLimit     = 10000

	// maxDatasetSize caps regeneration requests.
	maxDatasetSize = 1_000_000
)

// Handler provides dashboard API endpoints backed by the dataset service.
type Handler struct {
	svc *dataset.Service
}

// NewHandler creates a new dashboard handler.
func NewHandler(svc *dataset.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes sets up dashboard routes under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/portfolio/overview", h.Overview)
	r.GET("/portfolio/segments", h.Segments)
	r.GET("/portfolio/segments/:category", h.Segment)
	r.GET("/portfolio/crosstab", h.CrossTab)
	r.GET("/portfolio/correlation", h.Correlation)
	r.GET("/customers", h.Customers)
	r.GET("/customers/:id", h.Customer)
	r.POST("/score", h.Score)
	r.GET("/config/thresholds", h.Thresholds)
	r.PUT("/config/thresholds", h.UpdateThresholds)
	r.POST("/dataset/regenerate", h.Regenerate)
}

// Overview returns portfolio KPIs plus the category distribution.
func (h *Handler) Overview(c *gin.Context) {
	summary, err := h.svc.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	snapshot, err := h.svc.Snapshot()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dataset": snapshot,
		"kpis": gin.H{
			"total":           summary.Total,
			"meanScore":       summary.MeanScore,
			"medianScore":     summary.MedianScore,
			"minScore":        summary.MinScore,
			"maxScore":        summary.MaxScore,
			"avgUtilization":  summary.AvgUtilization,
			"highRiskPercent": summary.HighRiskPercent,
		},
		"categories": summary.Categories,
	})
}

// Segments returns per-category statistics for every risk tier.
func (h *Handler) Segments(c *gin.Context) {
	summary, err := h.svc.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": summary.Categories})
}

// Segment returns one tier's statistics plus its highest-risk customers.
func (h *Handler) Segment(c *gin.Context) {
	category := customer.Category(c.Param("category"))
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_category",
			"message": "category must be low, medium, or high",
		})
		return
	}

	summary, err := h.svc.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	top, err := h.svc.TopRisky(category, topRiskyCount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"stats":    summary.Categories[category],
		"topRisky": top,
	})
}

// CrossTab returns the payment status x risk category contingency table.
func (h *Handler) CrossTab(c *gin.Context) {
	summary, err := h.svc.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"crossTab": summary.CrossTab})
}

// Correlation returns the feature correlation matrix.
func (h *Handler) Correlation(c *gin.Context) {
	summary, err := h.svc.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary.Correlation)
}

// Customers lists scored records, optionally filtered by category.
func (h *Handler) Customers(c *gin.Context) {
	var category customer.Category
	if raw := c.Query("category"); raw != "" {
		category = customer.Category(raw)
		if !category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_category",
				"message": "category must be low, medium, or high",
			})
			return
		}
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || validation.InRange("limit", n, 1, maxListLimit)() != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_limit",
				"message": "limit must be an integer between 1 and 10000",
			})
			return
		}
		limit = n
	}

	records, err := h.svc.Records(category, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customers": records,
		"count":     len(records),
	})
}

// Customer returns one record with its per-factor score breakdown and the
// tier's recommended actions.
func (h *Handler) Customer(c *gin.Context) {
	rec, err := h.svc.Record(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	breakdown, err := scoring.ScoreBreakdown(&rec.Customer)
	if err != nil {
		// Cached records went through the cleaning pipeline; a breakdown
		// failure here means the cache is corrupt.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer":        rec,
		"breakdown":       breakdown,
		"recommendations": report.Recommendations(rec.RiskCategory),
	})
}

// Score scores an ad-hoc submitted customer record without touching the
// dataset.
func (h *Handler) Score(c *gin.Context) {
	var req customer.Customer
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ScoreRequestsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json", "message": err.Error()})
		return
	}

	// Accept the title-cased spellings used by upstream exports.
	if req.PaymentStatus != "" {
		if status, err := customer.ParsePaymentStatus(string(req.PaymentStatus)); err == nil {
			req.PaymentStatus = status
		}
	}

	breakdown, err := scoring.ScoreBreakdown(&req)
	if err != nil {
		respondScoringError(c, err)
		return
	}

	category := h.svc.ClassifyScore(breakdown.Total)

	metrics.ScoreRequestsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"riskScore":       breakdown.Total,
		"riskCategory":    category,
		"breakdown":       breakdown,
		"recommendations": report.Recommendations(category),
	})
}

// Thresholds returns the active classifier cut points.
func (h *Handler) Thresholds(c *gin.Context) {
	low, high := h.svc.Thresholds()
	c.JSON(http.StatusOK, gin.H{"low": low, "high": high})
}

type thresholdsRequest struct {
	Low  *int `json:"low" binding:"required"`
	High *int `json:"high" binding:"required"`
}

// UpdateThresholds reconfigures the classifier and reclassifies the dataset.
func (h *Handler) UpdateThresholds(c *gin.Context) {
	var req thresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json", "message": err.Error()})
		return
	}

	if errs := validation.Validate(
		validation.InRange("low", *req.Low, 0, scoring.MaxScore),
		validation.InRange("high", *req.High, 0, scoring.MaxScore),
	); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid_configuration",
			"message": errs.Error(),
		})
		return
	}

	summary, err := h.svc.SetThresholds(c.Request.Context(), *req.Low, *req.High)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"low": *req.Low, "high": *req.High}
	if summary != nil {
		resp["categories"] = summary.Categories
	}
	c.JSON(http.StatusOK, resp)
}

// Regenerate rebuilds the dataset, optionally overriding size and seed.
func (h *Handler) Regenerate(c *gin.Context) {
	var opts dataset.RegenerateOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json", "message": err.Error()})
			return
		}
	}
	if opts.Size != nil && validation.InRange("size", *opts.Size, 1, maxDatasetSize)() != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "out_of_range",
			"message": "size must be between 1 and 1000000",
		})
		return
	}

	snapshot, err := h.svc.Regenerate(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.svc.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset": snapshot,
		"kpis": gin.H{
			"total":           summary.Total,
			"meanScore":       summary.MeanScore,
			"highRiskPercent": summary.HighRiskPercent,
		},
	})
}

// respondError maps domain sentinels to HTTP error codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dataset.ErrNoDataset):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "no_dataset",
			"message": "no dataset loaded; regenerate first",
		})
	case errors.Is(err, customer.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, scoring.ErrInvalidConfiguration):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid_configuration",
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

// respondScoringError maps scorer validation failures for /score.
func respondScoringError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scoring.ErrMissingField):
		metrics.ScoreRequestsTotal.WithLabelValues("missing_field").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_field",
			"message": err.Error(),
		})
	case errors.Is(err, scoring.ErrOutOfRange):
		metrics.ScoreRequestsTotal.WithLabelValues("out_of_range").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "out_of_range",
			"message": err.Error(),
		})
	default:
		metrics.ScoreRequestsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
