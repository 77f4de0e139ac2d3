// Package generator produces synthetic credit-card customer datasets for the
// demo deployment and for load-shaped testing. The draws mirror the
// distributions observed in the production book: utilization and full-payment
// ratio are Beta-shaped, delinquency counts are Poisson, income and limits
// come from a weighted tier table.
//
// Generation is deterministic per seed, so a dataset can be regenerated
// exactly for a bug report.
package generator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mkusuma/riskscope/internal/customer"
)

// Defaults applied by New for zero-valued Config fields.
const (
	DefaultSize              = 1000
	DefaultMissingIncomeRate = 0.05
	DefaultOutlierCount      = 10
)

var (
	incomeTiers   = []float64{3_000_000, 5_000_000, 7_500_000, 10_000_000, 15_000_000, 20_000_000}
	incomeWeights = []float64{0.20, 0.25, 0.20, 0.15, 0.12, 0.08}

	creditLimits     = []float64{5_000_000, 10_000_000, 15_000_000, 25_000_000, 50_000_000}
	creditLimitProbs = []float64{0.30, 0.30, 0.20, 0.15, 0.05}

	employmentStatuses = []customer.EmploymentStatus{customer.Employed, customer.SelfEmployed, customer.Unemployed}
	employmentWeights  = []float64{0.70, 0.25, 0.05}

	paymentStatuses = []customer.PaymentStatus{customer.PaymentCurrent, customer.PaymentLate, customer.PaymentDelinquent}
	paymentWeights  = []float64{0.75, 0.20, 0.05}
)

// Config controls dataset shape. Zero values fall back to defaults; Seed 0 is
// a valid (and reproducible) seed.
type Config struct {
	// Size is the number of customers to generate.
	Size int
	// Seed drives the random source.
	Seed int64
	// MissingIncomeRate is the fraction of records generated without income,
	// exercising the cleaning step's imputation.
	MissingIncomeRate float64
	// OutlierCount is how many records get a utilization above 100%,
	// exercising the cleaning step's clamping.
	OutlierCount int
}

// Generator produces synthetic customer datasets.
type Generator struct {
	cfg Config
}

// New creates a Generator, applying defaults for zero-valued fields.
func New(cfg Config) *Generator {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.MissingIncomeRate <= 0 {
		cfg.MissingIncomeRate = DefaultMissingIncomeRate
	}
	if cfg.OutlierCount <= 0 {
		cfg.OutlierCount = DefaultOutlierCount
	}
	return &Generator{cfg: cfg}
}

// Generate draws a fresh dataset. Customer IDs are sequential (CUST00001...),
// and the same Config always yields the same dataset.
func (g *Generator) Generate() []customer.Customer {
	rng := rand.New(rand.NewSource(g.cfg.Seed))
	customers := make([]customer.Customer, g.cfg.Size)

	for i := range customers {
		c := &customers[i]
		c.ID = fmt.Sprintf("CUST%05d", i+1)
		c.Age = 21 + rng.Intn(44) // 21..64
		if rng.Float64() >= g.cfg.MissingIncomeRate {
			income := incomeTiers[weightedChoice(rng, incomeWeights)]
			c.Income = &income
		}
		c.EmploymentStatus = employmentStatuses[weightedChoice(rng, employmentWeights)]
		c.Dependents = rng.Intn(5) // 0..4
		c.CreditLimit = creditLimits[weightedChoice(rng, creditLimitProbs)]
		c.CreditUtilization = beta(rng, 2, 5) * 100
		c.LatePaymentCount = poisson(rng, 0.5)
		c.AccountAgeMonths = 6 + rng.Intn(114) // 6..119
		c.PaymentStatus = paymentStatuses[weightedChoice(rng, paymentWeights)]
		c.MissedPayment6M = poisson(rng, 0.3)
		c.FullPaymentRatio = beta(rng, 5, 2) * 100
	}

	// Inject utilization outliers at random positions; the cleaning step is
	// expected to clamp these back to 100.
	outliers := g.cfg.OutlierCount
	if outliers > len(customers) {
		outliers = len(customers)
	}
	for _, i := range rng.Perm(len(customers))[:outliers] {
		customers[i].CreditUtilization = 150 + rng.Float64()*50
	}

	return customers
}

// weightedChoice returns an index drawn with the given weights. Weights need
// not sum exactly to 1; the last index absorbs rounding slack.
func weightedChoice(rng *rand.Rand, weights []float64) int {
	u := rng.Float64()
	var cum float64
	for i, w := range weights {
		cum += w
		if u < cum {
			return i
		}
	}
	return len(weights) - 1
}

// poisson draws from Poisson(lambda) by Knuth's product method. Fine for the
// small lambdas used here.
func poisson(rng *rand.Rand, lambda float64) int {
	threshold := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= threshold {
			return k
		}
		k++
	}
}

// beta draws from Beta(a, b) as Ga/(Ga+Gb) with gamma variates.
func beta(rng *rand.Rand, a, b float64) float64 {
	x := gamma(rng, a)
	y := gamma(rng, b)
	return x / (x + y)
}

// gamma draws from Gamma(shape, 1) with the Marsaglia-Tsang method.
// Shapes below 1 are boosted via Gamma(a) = Gamma(a+1) * U^(1/a).
func gamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		return gamma(rng, shape+1) * math.Pow(rng.Float64(), 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
