package scoring

import (
	"context"
	"runtime"
	"sync"

	"github.com/mkusuma/riskscope/internal/customer"
)

// ScoreAll scores and classifies a collection with a bounded worker pool.
// Scoring is independent per record, so workers share nothing; results land
// at their input index, preserving order. The first error cancels remaining
// work and is returned.
func ScoreAll(ctx context.Context, classifier *Classifier, customers []customer.Customer) ([]customer.ScoredRecord, error) {
	if len(customers) == 0 {
		return []customer.ScoredRecord{}, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(customers) {
		workers = len(customers)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make([]customer.ScoredRecord, len(customers))
	indices := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				score, err := Score(&customers[i])
				if err != nil {
					fail(err)
					return
				}
				records[i] = customer.ScoredRecord{
					Customer:     customers[i],
					RiskScore:    score,
					RiskCategory: classifier.Classify(score),
				}
			}
		}()
	}

feed:
	for i := range customers {
		select {
		case indices <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indices)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Reclassify rebuilds records with a new classifier without rescoring.
// Scores are pure functions of the customer, so only the category changes.
func Reclassify(classifier *Classifier, records []customer.ScoredRecord) []customer.ScoredRecord {
	out := make([]customer.ScoredRecord, len(records))
	for i := range records {
		out[i] = records[i]
		out[i].RiskCategory = classifier.Classify(records[i].RiskScore)
	}
	return out
}
