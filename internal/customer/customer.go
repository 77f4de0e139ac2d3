// Package customer defines the credit-card customer records that flow through
// the scoring pipeline.
//
// A Customer carries the raw behavioral and demographic attributes supplied by
// an upstream source. A ScoredRecord is a Customer augmented with a risk score
// and category; it is produced once and never mutated — rescoring builds a new
// ScoredRecord.
package customer

import (
	"context"
	"errors"
	"fmt"
)

var ErrCustomerNotFound = errors.New("customer not found")

// PaymentStatus is the customer's current payment standing.
type PaymentStatus string

const (
	PaymentCurrent    PaymentStatus = "current"
	PaymentLate       PaymentStatus = "late"
	PaymentDelinquent PaymentStatus = "delinquent"
)

// Valid reports whether the status is one of the known enum values.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentCurrent, PaymentLate, PaymentDelinquent:
		return true
	}
	return false
}

// ParsePaymentStatus normalizes a string into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch s {
	case "current", "Current":
		return PaymentCurrent, nil
	case "late", "Late":
		return PaymentLate, nil
	case "delinquent", "Delinquent":
		return PaymentDelinquent, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// EmploymentStatus is the customer's employment situation. It is not a rated
// scoring factor; the dashboard segments on it.
type EmploymentStatus string

const (
	Employed     EmploymentStatus = "employed"
	SelfEmployed EmploymentStatus = "self-employed"
	Unemployed   EmploymentStatus = "unemployed"
)

// Category is the coarse risk tier derived from a score.
type Category string

const (
	CategoryLow    Category = "low"
	CategoryMedium Category = "medium"
	CategoryHigh   Category = "high"
)

// Categories lists all tiers in ascending risk order.
var Categories = []Category{CategoryLow, CategoryMedium, CategoryHigh}

// Rank returns the tier's position in ascending risk order (low=0, high=2).
func (c Category) Rank() int {
	switch c {
	case CategoryLow:
		return 0
	case CategoryMedium:
		return 1
	case CategoryHigh:
		return 2
	}
	return -1
}

// Valid reports whether the category is a known tier.
func (c Category) Valid() bool {
	return c.Rank() >= 0
}

// Customer is one credit-card customer as supplied by the data source.
// Income is a pointer because upstream data may lack it; the cleaning step
// imputes it before scoring (see Clean).
type Customer struct {
	ID                string           `json:"id"`
	Age               int              `json:"age"`
	Income            *float64         `json:"income,omitempty"`
	EmploymentStatus  EmploymentStatus `json:"employmentStatus"`
	Dependents        int              `json:"dependents"`
	CreditLimit       float64          `json:"creditLimit"`
	CreditUtilization float64          `json:"creditUtilization"` // percent of limit drawn
	LatePaymentCount  int              `json:"latePaymentCount"`
	AccountAgeMonths  int              `json:"accountAgeMonths"`
	PaymentStatus     PaymentStatus    `json:"paymentStatus"`
	MissedPayment6M   int              `json:"missedPayment6m"`
	FullPaymentRatio  float64          `json:"fullPaymentRatio"`
}

// AvgMonthlySpending derives the monthly spend from limit and utilization.
func (c *Customer) AvgMonthlySpending() float64 {
	return c.CreditLimit * c.CreditUtilization / 100
}

// DebtToIncome derives monthly spending as a percentage of income.
// Returns 0 when income is missing or zero.
func (c *Customer) DebtToIncome() float64 {
	if c.Income == nil || *c.Income == 0 {
		return 0
	}
	return c.AvgMonthlySpending() / *c.Income * 100
}

// ScoredRecord is a Customer with its computed risk assessment attached.
type ScoredRecord struct {
	Customer
	RiskScore    int      `json:"riskScore"`
	RiskCategory Category `json:"riskCategory"`
}

// Store persists scored datasets. Implementations must treat records as
// immutable: a regenerated dataset replaces the previous one wholesale.
type Store interface {
	// ReplaceAll atomically replaces the stored dataset.
	ReplaceAll(ctx context.Context, records []ScoredRecord) error
	// List returns records, optionally filtered by category. A zero-value
	// category means no filter. Records come back in insertion order.
	List(ctx context.Context, category Category, limit int) ([]ScoredRecord, error)
	// Get returns a single record by customer ID.
	Get(ctx context.Context, id string) (*ScoredRecord, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
