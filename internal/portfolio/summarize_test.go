package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkusuma/riskscope/internal/customer"
)

func record(id string, score int, cat customer.Category, fn func(*customer.Customer)) customer.ScoredRecord {
	income := 8_000_000.0
	c := customer.Customer{
		ID:                id,
		Age:               40,
		Income:            &income,
		EmploymentStatus:  customer.Employed,
		CreditLimit:       10_000_000,
		CreditUtilization: 50,
		LatePaymentCount:  1,
		AccountAgeMonths:  24,
		PaymentStatus:     customer.PaymentCurrent,
		FullPaymentRatio:  80,
	}
	if fn != nil {
		fn(&c)
	}
	return customer.ScoredRecord{Customer: c, RiskScore: score, RiskCategory: cat}
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(nil)
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Nil(t, s)

	s, err = Summarize([]customer.ScoredRecord{})
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Nil(t, s)
}

func TestSummarizeDistribution(t *testing.T) {
	records := []customer.ScoredRecord{
		record("CUST00001", 20, customer.CategoryLow, nil),
		record("CUST00002", 30, customer.CategoryLow, nil),
		record("CUST00003", 50, customer.CategoryMedium, nil),
		record("CUST00004", 80, customer.CategoryHigh, nil),
	}

	s, err := Summarize(records)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Categories[customer.CategoryLow].Count)
	assert.Equal(t, 1, s.Categories[customer.CategoryMedium].Count)
	assert.Equal(t, 1, s.Categories[customer.CategoryHigh].Count)
	assert.InDelta(t, 50.0, s.Categories[customer.CategoryLow].Percentage, 1e-9)
	assert.InDelta(t, 25.0, s.Categories[customer.CategoryMedium].Percentage, 1e-9)
	assert.InDelta(t, 25.0, s.Categories[customer.CategoryHigh].Percentage, 1e-9)
	assert.InDelta(t, 25.0, s.HighRiskPercent, 1e-9)

	// Percentages over all tiers always account for every record.
	var pct float64
	var count int
	for _, cs := range s.Categories {
		pct += cs.Percentage
		count += cs.Count
	}
	assert.InDelta(t, 100.0, pct, 0.05)
	assert.Equal(t, s.Total, count)

	assert.Equal(t, 20, s.MinScore)
	assert.Equal(t, 80, s.MaxScore)
	assert.InDelta(t, 45.0, s.MeanScore, 1e-9)
	assert.InDelta(t, 40.0, s.MedianScore, 1e-9) // even count: midpoint of 30 and 50
}

func TestSummarizeCategoryMeans(t *testing.T) {
	records := []customer.ScoredRecord{
		record("CUST00001", 70, customer.CategoryHigh, func(c *customer.Customer) {
			c.Age = 30
			income := 4_000_000.0
			c.Income = &income
			c.CreditUtilization = 80
			c.LatePaymentCount = 3
		}),
		record("CUST00002", 90, customer.CategoryHigh, func(c *customer.Customer) {
			c.Age = 50
			income := 6_000_000.0
			c.Income = &income
			c.CreditUtilization = 90
			c.LatePaymentCount = 5
		}),
		record("CUST00003", 10, customer.CategoryLow, nil),
	}

	s, err := Summarize(records)
	require.NoError(t, err)

	high := s.Categories[customer.CategoryHigh]
	assert.Equal(t, 2, high.Count)
	assert.InDelta(t, 40.0, high.AvgAge, 1e-9)
	assert.InDelta(t, 5_000_000.0, high.AvgIncome, 1e-9)
	assert.InDelta(t, 85.0, high.AvgUtilization, 1e-9)
	assert.InDelta(t, 4.0, high.AvgLatePayments, 1e-9)
	assert.InDelta(t, 80.0, high.AvgRiskScore, 1e-9)
	// spending = limit * utilization / 100: (8M + 9M) / 2
	assert.InDelta(t, 8_500_000.0, high.AvgMonthlySpending, 1e-9)

	// Empty tiers still present, zero-valued.
	medium := s.Categories[customer.CategoryMedium]
	assert.Equal(t, 0, medium.Count)
	assert.Zero(t, medium.AvgRiskScore)
}

func TestSummarizeCrossTab(t *testing.T) {
	records := []customer.ScoredRecord{
		record("CUST00001", 20, customer.CategoryLow, nil),
		record("CUST00002", 50, customer.CategoryMedium, func(c *customer.Customer) {
			c.PaymentStatus = customer.PaymentLate
		}),
		record("CUST00003", 55, customer.CategoryMedium, func(c *customer.Customer) {
			c.PaymentStatus = customer.PaymentLate
		}),
		record("CUST00004", 90, customer.CategoryHigh, func(c *customer.Customer) {
			c.PaymentStatus = customer.PaymentDelinquent
		}),
	}

	s, err := Summarize(records)
	require.NoError(t, err)

	assert.Equal(t, 1, s.CrossTab[customer.PaymentCurrent][customer.CategoryLow])
	assert.Equal(t, 2, s.CrossTab[customer.PaymentLate][customer.CategoryMedium])
	assert.Equal(t, 1, s.CrossTab[customer.PaymentDelinquent][customer.CategoryHigh])

	var total int
	for _, row := range s.CrossTab {
		for _, n := range row {
			total += n
		}
	}
	assert.Equal(t, s.Total, total)
}

func TestSummarizeCorrelation(t *testing.T) {
	// Utilization and late payments rise together across these records, so
	// their correlation must come out strongly positive; score tracks both.
	records := []customer.ScoredRecord{
		record("CUST00001", 20, customer.CategoryLow, func(c *customer.Customer) {
			c.CreditUtilization = 10
			c.LatePaymentCount = 0
		}),
		record("CUST00002", 45, customer.CategoryMedium, func(c *customer.Customer) {
			c.CreditUtilization = 45
			c.LatePaymentCount = 2
		}),
		record("CUST00003", 90, customer.CategoryHigh, func(c *customer.Customer) {
			c.CreditUtilization = 95
			c.LatePaymentCount = 6
		}),
	}

	s, err := Summarize(records)
	require.NoError(t, err)

	m := s.Correlation.Matrix
	require.Len(t, m, len(Features))
	for i := range m {
		require.Len(t, m[i], len(Features))
		assert.Equal(t, 1.0, m[i][i], "diagonal is 1 at %d", i)
		for j := range m[i] {
			assert.Equal(t, m[i][j], m[j][i], "matrix symmetric at (%d,%d)", i, j)
			assert.LessOrEqual(t, m[i][j], 1.0)
			assert.GreaterOrEqual(t, m[i][j], -1.0)
		}
	}

	util, late := featureIndex(t, "credit_utilization"), featureIndex(t, "late_payment_count")
	assert.Greater(t, m[util][late], 0.9)

	// Age is constant here, so its off-diagonal correlations are defined as 0.
	age := featureIndex(t, "age")
	assert.Zero(t, m[age][util])
}

func TestSummarizeDeterministic(t *testing.T) {
	records := make([]customer.ScoredRecord, 0, 300)
	for i := 0; i < 300; i++ {
		cat := customer.Categories[i%3]
		records = append(records, record("CUST00000", (i*7)%101, cat, func(c *customer.Customer) {
			c.Age = 21 + i%40
			c.CreditUtilization = float64(i % 101)
			c.LatePaymentCount = i % 5
		}))
	}

	first, err := Summarize(records)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Summarize(records)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func featureIndex(t *testing.T, name string) int {
	t.Helper()
	for i, f := range Features {
		if f == name {
			return i
		}
	}
	t.Fatalf("unknown feature %q", name)
	return -1
}
