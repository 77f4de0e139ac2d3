package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mkusuma/riskscope/internal/customer"
	"github.com/mkusuma/riskscope/internal/portfolio"
)

var categoryLabels = map[customer.Category]string{
	customer.CategoryLow:    "Low Risk",
	customer.CategoryMedium: "Medium Risk",
	customer.CategoryHigh:   "High Risk",
}

var statusOrder = []customer.PaymentStatus{
	customer.PaymentCurrent,
	customer.PaymentLate,
	customer.PaymentDelinquent,
}

// WriteText renders the portfolio summary as a plain-text report: KPI block,
// category distribution and means, the payment-status crosstab, the feature
// correlation matrix, and the standing recommendations per segment.
func WriteText(w io.Writer, s *portfolio.Summary) error {
	bar := strings.Repeat("=", 78)
	thin := strings.Repeat("-", 78)

	fmt.Fprintln(w, bar)
	fmt.Fprintln(w, "CUSTOMER RISK SCORING REPORT - CREDIT CARD PORTFOLIO")
	fmt.Fprintln(w, bar)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PORTFOLIO OVERVIEW")
	fmt.Fprintln(w, thin)
	fmt.Fprintf(w, "  Total Customers:    %d\n", s.Total)
	fmt.Fprintf(w, "  Mean Risk Score:    %.2f\n", s.MeanScore)
	fmt.Fprintf(w, "  Median Risk Score:  %.2f\n", s.MedianScore)
	fmt.Fprintf(w, "  Score Range:        %d - %d\n", s.MinScore, s.MaxScore)
	fmt.Fprintf(w, "  Mean Utilization:   %.2f%%\n", s.AvgUtilization)
	fmt.Fprintf(w, "  High Risk Share:    %.2f%%\n", s.HighRiskPercent)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "RISK CATEGORY DISTRIBUTION")
	fmt.Fprintln(w, thin)
	for _, cat := range customer.Categories {
		cs := s.Categories[cat]
		fmt.Fprintf(w, "  %-12s: %5d customers (%6.2f%%)\n", categoryLabels[cat], cs.Count, cs.Percentage)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "AVERAGE METRICS BY RISK CATEGORY")
	fmt.Fprintln(w, thin)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Category\tAvg Age\tAvg Income\tAvg Utilization %\tAvg Late Payments\tAvg Monthly Spending\tAvg Risk Score")
	for _, cat := range customer.Categories {
		cs := s.Categories[cat]
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			categoryLabels[cat], cs.AvgAge, cs.AvgIncome, cs.AvgUtilization,
			cs.AvgLatePayments, cs.AvgMonthlySpending, cs.AvgRiskScore)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PAYMENT STATUS vs RISK CATEGORY")
	fmt.Fprintln(w, thin)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "Status")
	for _, cat := range customer.Categories {
		fmt.Fprintf(tw, "\t%s", categoryLabels[cat])
	}
	fmt.Fprintln(tw)
	for _, status := range statusOrder {
		fmt.Fprint(tw, string(status))
		for _, cat := range customer.Categories {
			fmt.Fprintf(tw, "\t%d", s.CrossTab[status][cat])
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FEATURE CORRELATION MATRIX")
	fmt.Fprintln(w, thin)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "feature")
	for _, f := range s.Correlation.Features {
		fmt.Fprintf(tw, "\t%s", f)
	}
	fmt.Fprintln(tw)
	for i, f := range s.Correlation.Features {
		fmt.Fprint(tw, f)
		for j := range s.Correlation.Features {
			fmt.Fprintf(tw, "\t%.2f", s.Correlation.Matrix[i][j])
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "RECOMMENDATIONS")
	fmt.Fprintln(w, thin)
	for _, cat := range customer.Categories {
		fmt.Fprintf(w, "  %s:\n", categoryLabels[cat])
		for _, rec := range Recommendations(cat) {
			fmt.Fprintf(w, "    - %s\n", rec)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, bar)
	return nil
}

// Recommendations returns the standing action list for a risk tier. The
// dashboard's individual lookup and the text report both use it.
func Recommendations(cat customer.Category) []string {
	switch cat {
	case customer.CategoryLow:
		return []string{
			"Continue monitoring regular payment behavior",
			"Consider for credit limit increase",
			"Eligible for premium product offerings",
			"Reward loyalty with benefits program",
		}
	case customer.CategoryMedium:
		return []string{
			"Send payment reminders before due dates",
			"Monitor credit utilization closely",
			"Offer financial literacy resources",
			"Consider payment plan options if needed",
		}
	case customer.CategoryHigh:
		return []string{
			"Immediate collections team review required",
			"Freeze or reduce credit limit",
			"Require collateral for new transactions",
			"Implement strict payment monitoring",
			"Consider account suspension if delinquent",
		}
	}
	return nil
}
