// Package scoring implements the rule-based customer risk scoring engine.
//
// Every customer is rated on 5 factors: credit utilization, late payment
// count, income level, payment status, and missed payments in the trailing
// 6 months. Each factor maps to a fixed point value through an ordered range
// check; the points sum to a score in [0,100], higher meaning higher risk.
// The factor weights quoted alongside the point tables document intent only —
// the point values are what the engine applies.
package scoring

import (
	"errors"
)

var (
	// ErrMissingField indicates a record lacks a value required for scoring.
	// Imputation is the caller's job; the scorer never defaults silently.
	ErrMissingField = errors.New("required scoring field is missing")

	// ErrOutOfRange indicates a rated value outside its scorable domain.
	// Clamping is the caller's job and must happen upstream.
	ErrOutOfRange = errors.New("value outside scorable range")

	// ErrInvalidConfiguration indicates classifier thresholds that don't
	// satisfy 0 <= low < high <= 100.
	ErrInvalidConfiguration = errors.New("invalid classifier configuration")
)

// MaxScore caps the additive score. The factor maxima sum to exactly 100, so
// the cap only binds if the point tables ever change.
const MaxScore = 100
