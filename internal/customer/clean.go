package customer

import "sort"

// CleanReport summarizes what the cleaning pass changed.
type CleanReport struct {
	ImputedIncomes   int     `json:"imputedIncomes"`
	MedianIncome     float64 `json:"medianIncome"`
	ClampedOutliers  int     `json:"clampedOutliers"`
	NegativesRaised  int     `json:"negativesRaised"`
}

// Clean prepares raw customers for scoring, in place:
//
//   - missing incomes are filled with the median of the known incomes
//   - credit utilization above 100% is capped at 100 (a known upstream
//     data-quality condition), and below 0% raised to 0
//
// The scorer rejects records that skip this step, so callers feeding it
// upstream data must clean first.
func Clean(customers []Customer) CleanReport {
	var report CleanReport

	report.MedianIncome = medianIncome(customers)
	for i := range customers {
		if customers[i].Income == nil {
			income := report.MedianIncome
			customers[i].Income = &income
			report.ImputedIncomes++
		}
		if customers[i].CreditUtilization > 100 {
			customers[i].CreditUtilization = 100
			report.ClampedOutliers++
		}
		if customers[i].CreditUtilization < 0 {
			customers[i].CreditUtilization = 0
			report.NegativesRaised++
		}
	}
	return report
}

// medianIncome computes the median over customers with a known income.
func medianIncome(customers []Customer) float64 {
	known := make([]float64, 0, len(customers))
	for i := range customers {
		if customers[i].Income != nil {
			known = append(known, *customers[i].Income)
		}
	}
	if len(known) == 0 {
		return 0
	}
	sort.Float64s(known)
	mid := len(known) / 2
	if len(known)%2 == 0 {
		return (known[mid-1] + known[mid]) / 2
	}
	return known[mid]
}
