package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkusuma/riskscope/internal/customer"
	"github.com/mkusuma/riskscope/internal/generator"
	"github.com/mkusuma/riskscope/internal/portfolio"
	"github.com/mkusuma/riskscope/internal/scoring"
)

func scoredDataset(t *testing.T, size int) []customer.ScoredRecord {
	t.Helper()
	customers := generator.New(generator.Config{Size: size, Seed: 3}).Generate()
	customer.Clean(customers)
	records, err := scoring.ScoreAll(context.Background(), scoring.DefaultClassifier(), customers)
	require.NoError(t, err)
	return records
}

func TestWriteCSVLayout(t *testing.T) {
	records := scoredDataset(t, 50)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 51) // header + records

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "customer_id", rows[0][0])
	assert.Equal(t, "risk_category", rows[0][len(rows[0])-1])

	for i, row := range rows[1:] {
		require.Len(t, row, len(csvHeader), "row %d", i)
		assert.Equal(t, records[i].ID, row[0], "order preserved at %d", i)
		assert.Equal(t, string(records[i].RiskCategory), row[len(row)-1])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

func TestWriteTextSections(t *testing.T) {
	records := scoredDataset(t, 200)
	summary, err := portfolio.Summarize(records)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, summary))
	out := buf.String()

	for _, section := range []string{
		"PORTFOLIO OVERVIEW",
		"RISK CATEGORY DISTRIBUTION",
		"AVERAGE METRICS BY RISK CATEGORY",
		"PAYMENT STATUS vs RISK CATEGORY",
		"FEATURE CORRELATION MATRIX",
		"RECOMMENDATIONS",
	} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "Total Customers:    200")
	for _, label := range []string{"Low Risk", "Medium Risk", "High Risk"} {
		assert.Contains(t, out, label)
	}
	for _, feature := range portfolio.Features {
		assert.Contains(t, out, feature)
	}
}

func TestRecommendationsPerTier(t *testing.T) {
	for _, cat := range customer.Categories {
		recs := Recommendations(cat)
		assert.NotEmpty(t, recs, "category %s", cat)
	}
	assert.Nil(t, Recommendations("unknown"))

	// High risk gets the strictest playbook.
	high := strings.Join(Recommendations(customer.CategoryHigh), " ")
	assert.Contains(t, high, "collections")
}
