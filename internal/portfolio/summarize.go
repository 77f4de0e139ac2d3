package portfolio

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/mkusuma/riskscope/internal/customer"
)

// featureVec holds one record's values for the correlated features, in
// Features order.
type featureVec [6]float64

func features(r *customer.ScoredRecord) featureVec {
	income := 0.0
	if r.Income != nil {
		income = *r.Income
	}
	return featureVec{
		float64(r.Age),
		income,
		r.CreditUtilization,
		float64(r.LatePaymentCount),
		r.AvgMonthlySpending(),
		float64(r.RiskScore),
	}
}

// catAccum accumulates sums for one risk tier. Means are derived after the
// final merge, never averaged across partials.
type catAccum struct {
	count        int
	age          float64
	income       float64
	utilization  float64
	latePayments float64
	spending     float64
	score        float64
}

func (a *catAccum) add(r *customer.ScoredRecord) {
	a.count++
	a.age += float64(r.Age)
	if r.Income != nil {
		a.income += *r.Income
	}
	a.utilization += r.CreditUtilization
	a.latePayments += float64(r.LatePaymentCount)
	a.spending += r.AvgMonthlySpending()
	a.score += float64(r.RiskScore)
}

func (a *catAccum) merge(b *catAccum) {
	a.count += b.count
	a.age += b.age
	a.income += b.income
	a.utilization += b.utilization
	a.latePayments += b.latePayments
	a.spending += b.spending
	a.score += b.score
}

// partial is one worker's reduction over a contiguous chunk of records.
type partial struct {
	n        int
	scoreSum float64
	utilSum  float64

	byCategory map[customer.Category]*catAccum
	crossTab   map[customer.PaymentStatus]map[customer.Category]int

	// Pairwise moment sums for Pearson correlation: sums[i] accumulates
	// feature i, prods[i][j] accumulates feature i * feature j.
	sums  featureVec
	prods [6][6]float64
}

func newPartial() *partial {
	return &partial{
		byCategory: make(map[customer.Category]*catAccum),
		crossTab:   make(map[customer.PaymentStatus]map[customer.Category]int),
	}
}

func (p *partial) add(r *customer.ScoredRecord) {
	p.n++
	p.scoreSum += float64(r.RiskScore)
	p.utilSum += r.CreditUtilization

	acc, ok := p.byCategory[r.RiskCategory]
	if !ok {
		acc = &catAccum{}
		p.byCategory[r.RiskCategory] = acc
	}
	acc.add(r)

	row, ok := p.crossTab[r.PaymentStatus]
	if !ok {
		row = make(map[customer.Category]int)
		p.crossTab[r.PaymentStatus] = row
	}
	row[r.RiskCategory]++

	v := features(r)
	for i := 0; i < len(v); i++ {
		p.sums[i] += v[i]
		for j := i; j < len(v); j++ {
			p.prods[i][j] += v[i] * v[j]
		}
	}
}

func (p *partial) merge(q *partial) {
	p.n += q.n
	p.scoreSum += q.scoreSum
	p.utilSum += q.utilSum

	for cat, acc := range q.byCategory {
		if have, ok := p.byCategory[cat]; ok {
			have.merge(acc)
		} else {
			p.byCategory[cat] = acc
		}
	}
	for status, row := range q.crossTab {
		have, ok := p.crossTab[status]
		if !ok {
			have = make(map[customer.Category]int)
			p.crossTab[status] = have
		}
		for cat, n := range row {
			have[cat] += n
		}
	}
	for i := 0; i < len(p.sums); i++ {
		p.sums[i] += q.sums[i]
		for j := i; j < len(p.sums); j++ {
			p.prods[i][j] += q.prods[i][j]
		}
	}
}

// Summarize aggregates scored records into a portfolio Summary. Records are
// reduced in parallel chunks whose partial sums merge into one accumulator,
// so the result is independent of chunking. Empty input fails with
// ErrInsufficientData.
func Summarize(records []customer.ScoredRecord) (*Summary, error) {
	if len(records) == 0 {
		return nil, ErrInsufficientData
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(records) {
		workers = len(records)
	}
	chunk := (len(records) + workers - 1) / workers

	partials := make([]*partial, 0, workers)
	var wg sync.WaitGroup
	for start := 0; start < len(records); start += chunk {
		end := start + chunk
		if end > len(records) {
			end = len(records)
		}
		p := newPartial()
		partials = append(partials, p)
		wg.Add(1)
		go func(recs []customer.ScoredRecord) {
			defer wg.Done()
			for i := range recs {
				p.add(&recs[i])
			}
		}(records[start:end])
	}
	wg.Wait()

	total := partials[0]
	for _, p := range partials[1:] {
		total.merge(p)
	}

	return finalize(total, records), nil
}

// finalize derives the Summary from merged sums.
func finalize(p *partial, records []customer.ScoredRecord) *Summary {
	n := float64(p.n)

	s := &Summary{
		Total:          p.n,
		MeanScore:      round2(p.scoreSum / n),
		AvgUtilization: round2(p.utilSum / n),
		MinScore:       records[0].RiskScore,
		MaxScore:       records[0].RiskScore,
		Categories:     make(map[customer.Category]CategoryStats, len(customer.Categories)),
		CrossTab:       p.crossTab,
	}

	scores := make([]int, len(records))
	for i := range records {
		scores[i] = records[i].RiskScore
		if scores[i] < s.MinScore {
			s.MinScore = scores[i]
		}
		if scores[i] > s.MaxScore {
			s.MaxScore = scores[i]
		}
	}
	sort.Ints(scores)
	mid := len(scores) / 2
	if len(scores)%2 == 0 {
		s.MedianScore = round2(float64(scores[mid-1]+scores[mid]) / 2)
	} else {
		s.MedianScore = float64(scores[mid])
	}

	// Every tier appears in the output, zero-valued when empty, so report
	// tables and dashboard charts keep a stable shape.
	for _, cat := range customer.Categories {
		acc, ok := p.byCategory[cat]
		if !ok {
			s.Categories[cat] = CategoryStats{}
			continue
		}
		cn := float64(acc.count)
		s.Categories[cat] = CategoryStats{
			Count:              acc.count,
			Percentage:         round2(cn / n * 100),
			AvgAge:             round2(acc.age / cn),
			AvgIncome:          round2(acc.income / cn),
			AvgUtilization:     round2(acc.utilization / cn),
			AvgLatePayments:    round2(acc.latePayments / cn),
			AvgMonthlySpending: round2(acc.spending / cn),
			AvgRiskScore:       round2(acc.score / cn),
		}
	}

	if high, ok := p.byCategory[customer.CategoryHigh]; ok {
		s.HighRiskPercent = round2(float64(high.count) / n * 100)
	}

	s.Correlation = correlation(p)
	return s
}

// correlation derives the Pearson matrix from accumulated moment sums:
// r = (n*Sxy - Sx*Sy) / sqrt((n*Sxx - Sx^2)(n*Syy - Sy^2)).
func correlation(p *partial) Correlation {
	n := float64(p.n)
	k := len(Features)
	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
		matrix[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			num := n*p.prods[i][j] - p.sums[i]*p.sums[j]
			di := n*p.prods[i][i] - p.sums[i]*p.sums[i]
			dj := n*p.prods[j][j] - p.sums[j]*p.sums[j]
			r := 0.0
			if di > 0 && dj > 0 {
				r = num / math.Sqrt(di*dj)
				// Guard rounding drift past the mathematical bounds.
				if r > 1 {
					r = 1
				} else if r < -1 {
					r = -1
				}
				r = round4(r)
			}
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return Correlation{Features: Features, Matrix: matrix}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
