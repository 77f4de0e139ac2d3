// Package portfolio aggregates scored customer records into group-level
// statistics for the batch report and the dashboard: tier distribution,
// per-tier means, a payment-status contingency table, and a feature
// correlation matrix.
package portfolio

import (
	"errors"

	"github.com/mkusuma/riskscope/internal/customer"
)

// ErrInsufficientData is returned when aggregation is attempted over an empty
// collection. Means and correlations are undefined there; failing explicitly
// beats emitting NaNs.
var ErrInsufficientData = errors.New("insufficient data: no records to aggregate")

// Features names the numeric attributes in the correlation matrix, in matrix
// row/column order.
var Features = []string{
	"age",
	"income",
	"credit_utilization",
	"late_payment_count",
	"avg_monthly_spending",
	"risk_score",
}

// CategoryStats summarizes one risk tier.
type CategoryStats struct {
	Count              int     `json:"count"`
	Percentage         float64 `json:"percentage"`
	AvgAge             float64 `json:"avgAge"`
	AvgIncome          float64 `json:"avgIncome"`
	AvgUtilization     float64 `json:"avgUtilization"`
	AvgLatePayments    float64 `json:"avgLatePayments"`
	AvgMonthlySpending float64 `json:"avgMonthlySpending"`
	AvgRiskScore       float64 `json:"avgRiskScore"`
}

// Correlation is a pairwise Pearson correlation matrix over Features.
type Correlation struct {
	Features []string    `json:"features"`
	Matrix   [][]float64 `json:"matrix"`
}

// Summary is the full aggregation output for one scored dataset.
type Summary struct {
	Total           int     `json:"total"`
	MeanScore       float64 `json:"meanScore"`
	MedianScore     float64 `json:"medianScore"`
	MinScore        int     `json:"minScore"`
	MaxScore        int     `json:"maxScore"`
	AvgUtilization  float64 `json:"avgUtilization"`
	HighRiskPercent float64 `json:"highRiskPercent"`

	Categories map[customer.Category]CategoryStats `json:"categories"`

	// CrossTab counts records per payment status x risk category.
	CrossTab map[customer.PaymentStatus]map[customer.Category]int `json:"crossTab"`

	Correlation Correlation `json:"correlation"`
}
