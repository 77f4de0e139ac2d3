package scoring

import (
	"fmt"

	"github.com/mkusuma/riskscope/internal/customer"
)

// Breakdown holds the per-factor points behind a score. The dashboard's
// individual-lookup view surfaces it so analysts can see what drove a score.
type Breakdown struct {
	Utilization    int `json:"utilization"`
	LatePayments   int `json:"latePayments"`
	Income         int `json:"income"`
	PaymentStatus  int `json:"paymentStatus"`
	MissedPayments int `json:"missedPayments"`
	Total          int `json:"total"`
}

// Score computes the risk score for a single customer. Pure and total over
// cleaned records: identical input always yields identical output, with no
// ordering dependency across records.
//
// Records must be cleaned first (income imputed, utilization clamped to
// [0,100]); otherwise Score fails with ErrMissingField or ErrOutOfRange.
func Score(c *customer.Customer) (int, error) {
	b, err := ScoreBreakdown(c)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

// ScoreBreakdown computes the score along with its per-factor points.
func ScoreBreakdown(c *customer.Customer) (*Breakdown, error) {
	if err := validate(c); err != nil {
		return nil, err
	}

	b := &Breakdown{
		Utilization:    utilizationPoints(c.CreditUtilization),
		LatePayments:   latePaymentPoints(c.LatePaymentCount),
		Income:         incomePoints(*c.Income),
		PaymentStatus:  paymentStatusPoints(c.PaymentStatus),
		MissedPayments: missedPaymentPoints(c.MissedPayment6M),
	}

	total := b.Utilization + b.LatePayments + b.Income + b.PaymentStatus + b.MissedPayments
	if total > MaxScore {
		total = MaxScore
	}
	b.Total = total
	return b, nil
}

// validate rejects records the decision tables have no defined answer for.
func validate(c *customer.Customer) error {
	if c.Income == nil {
		return fmt.Errorf("%w: income", ErrMissingField)
	}
	if !c.PaymentStatus.Valid() {
		return fmt.Errorf("%w: payment status", ErrMissingField)
	}
	if c.CreditUtilization < 0 || c.CreditUtilization > 100 {
		return fmt.Errorf("%w: credit utilization %.2f", ErrOutOfRange, c.CreditUtilization)
	}
	if *c.Income < 0 {
		return fmt.Errorf("%w: income %.2f", ErrOutOfRange, *c.Income)
	}
	if c.LatePaymentCount < 0 {
		return fmt.Errorf("%w: late payment count %d", ErrOutOfRange, c.LatePaymentCount)
	}
	if c.MissedPayment6M < 0 {
		return fmt.Errorf("%w: missed payments %d", ErrOutOfRange, c.MissedPayment6M)
	}
	return nil
}

// utilizationPoints: weight 25%. Exactly 30 lands in the middle bucket,
// exactly 60 in the high bucket.
func utilizationPoints(utilization float64) int {
	switch {
	case utilization < 30:
		return 5
	case utilization < 60:
		return 15
	default:
		return 25
	}
}

// latePaymentPoints: weight 30%. A count of exactly 2 is the middle bucket.
func latePaymentPoints(count int) int {
	switch {
	case count == 0:
		return 5
	case count <= 2:
		return 20
	default:
		return 30
	}
}

// incomePoints: weight 15%. Higher income scores fewer points; exactly 10M
// takes the low-points bucket, exactly 5M the middle one.
func incomePoints(income float64) int {
	switch {
	case income >= 10_000_000:
		return 3
	case income >= 5_000_000:
		return 10
	default:
		return 15
	}
}

// paymentStatusPoints: weight 20%.
func paymentStatusPoints(status customer.PaymentStatus) int {
	switch status {
	case customer.PaymentCurrent:
		return 5
	case customer.PaymentLate:
		return 15
	default: // delinquent
		return 20
	}
}

// missedPaymentPoints: weight 10%. A count of exactly 2 is the middle bucket.
func missedPaymentPoints(count int) int {
	switch {
	case count == 0:
		return 2
	case count <= 2:
		return 7
	default:
		return 10
	}
}
