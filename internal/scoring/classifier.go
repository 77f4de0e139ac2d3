package scoring

import (
	"fmt"

	"github.com/mkusuma/riskscope/internal/customer"
)

// Default classification thresholds.
const (
	DefaultLowThreshold  = 33
	DefaultHighThreshold = 67
)

// Classifier maps scores to risk tiers. The dashboard adjusts the cut points
// at runtime, so they are constructor parameters rather than package state.
type Classifier struct {
	low  int // highest score still classified low
	high int // lowest score classified high
}

// NewClassifier creates a classifier with the given cut points.
// Fails with ErrInvalidConfiguration unless 0 <= low < high <= 100.
func NewClassifier(low, high int) (*Classifier, error) {
	if low < 0 || high > MaxScore || low >= high {
		return nil, fmt.Errorf("%w: low=%d high=%d (need 0 <= low < high <= %d)",
			ErrInvalidConfiguration, low, high, MaxScore)
	}
	return &Classifier{low: low, high: high}, nil
}

// DefaultClassifier returns a classifier with the standard 33/67 cut points.
func DefaultClassifier() *Classifier {
	return &Classifier{low: DefaultLowThreshold, high: DefaultHighThreshold}
}

// Classify maps a score to its tier: score <= low is low risk, score >= high
// is high risk, everything between is medium. Monotonic non-decreasing in
// the score.
func (c *Classifier) Classify(score int) customer.Category {
	switch {
	case score <= c.low:
		return customer.CategoryLow
	case score < c.high:
		return customer.CategoryMedium
	default:
		return customer.CategoryHigh
	}
}

// Thresholds returns the configured cut points.
func (c *Classifier) Thresholds() (low, high int) {
	return c.low, c.high
}
