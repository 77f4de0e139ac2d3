// Command report generates a scored customer dataset offline and writes the
// per-customer CSV plus a plain-text portfolio report, without running the API.
//
// Usage:
//
//	go run ./cmd/report -count 1000 -seed 42 -csv customer_risk_scores.csv -out report.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mkusuma/riskscope/internal/customer"
	"github.com/mkusuma/riskscope/internal/generator"
	"github.com/mkusuma/riskscope/internal/logging"
	"github.com/mkusuma/riskscope/internal/portfolio"
	"github.com/mkusuma/riskscope/internal/report"
	"github.com/mkusuma/riskscope/internal/scoring"
)

func main() {
	count := flag.Int("count", generator.DefaultSize, "number of customers to generate")
	seed := flag.Int64("seed", 42, "random seed for the synthetic generator")
	low := flag.Int("low", scoring.DefaultLowThreshold, "low/medium classifier threshold")
	high := flag.Int("high", scoring.DefaultHighThreshold, "medium/high classifier threshold")
	csvPath := flag.String("csv", "customer_risk_scores.csv", "path for the scored dataset CSV (empty to skip)")
	outPath := flag.String("out", "", "path for the text report (empty writes to stdout)")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.New(*logLevel, "text")

	if err := run(*count, *seed, *low, *high, *csvPath, *outPath); err != nil {
		logger.Error("report generation failed", "error", err)
		os.Exit(1)
	}
}

func run(count int, seed int64, low, high int, csvPath, outPath string) error {
	classifier, err := scoring.NewClassifier(low, high)
	if err != nil {
		return err
	}

	customers := generator.New(generator.Config{Size: count, Seed: seed}).Generate()
	cleanReport := customer.Clean(customers)

	records, err := scoring.ScoreAll(context.Background(), classifier, customers)
	if err != nil {
		return fmt.Errorf("score customers: %w", err)
	}

	summary, err := portfolio.Summarize(records)
	if err != nil {
		return fmt.Errorf("summarize portfolio: %w", err)
	}

	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		if err := report.WriteCSV(f, records); err != nil {
			f.Close()
			return fmt.Errorf("write csv: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.WriteText(out, summary); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Fprintf(os.Stderr, "scored %d customers (imputed %d incomes, clamped %d outliers)\n",
		len(records), cleanReport.ImputedIncomes, cleanReport.ClampedOutliers)
	return nil
}
