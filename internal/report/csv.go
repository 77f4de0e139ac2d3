// Package report renders scored datasets into batch artifacts: a CSV export
// of every record and a plain-text portfolio summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mkusuma/riskscope/internal/customer"
)

// csvHeader is the fixed export layout. Downstream consumers parse by
// position, so the order never changes.
var csvHeader = []string{
	"customer_id",
	"age",
	"income",
	"employment_status",
	"dependents",
	"credit_limit",
	"credit_utilization",
	"avg_monthly_spending",
	"late_payment_count",
	"account_age_months",
	"payment_status",
	"missed_payment_6m",
	"full_payment_ratio",
	"debt_to_income",
	"credit_limit_to_income",
	"risk_score",
	"risk_category",
}

// WriteCSV writes the scored dataset as CSV in the fixed column layout.
func WriteCSV(w io.Writer, records []customer.ScoredRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range records {
		r := &records[i]
		income := 0.0
		if r.Income != nil {
			income = *r.Income
		}
		limitToIncome := 0.0
		if income > 0 {
			limitToIncome = r.CreditLimit / income
		}
		row := []string{
			r.ID,
			strconv.Itoa(r.Age),
			strconv.FormatFloat(income, 'f', 2, 64),
			string(r.EmploymentStatus),
			strconv.Itoa(r.Dependents),
			strconv.FormatFloat(r.CreditLimit, 'f', 2, 64),
			strconv.FormatFloat(r.CreditUtilization, 'f', 2, 64),
			strconv.FormatFloat(r.AvgMonthlySpending(), 'f', 2, 64),
			strconv.Itoa(r.LatePaymentCount),
			strconv.Itoa(r.AccountAgeMonths),
			string(r.PaymentStatus),
			strconv.Itoa(r.MissedPayment6M),
			strconv.FormatFloat(r.FullPaymentRatio, 'f', 2, 64),
			strconv.FormatFloat(r.DebtToIncome(), 'f', 2, 64),
			strconv.FormatFloat(limitToIncome, 'f', 2, 64),
			strconv.Itoa(r.RiskScore),
			string(r.RiskCategory),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
