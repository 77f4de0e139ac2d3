// Package dataset owns the currently loaded scored dataset.
//
// The service runs the full pipeline (generate, clean, score, classify,
// summarize), keeps the result cached behind a lock for the dashboard, and
// persists each snapshot to a Store as a best effort. Threshold changes
// reclassify the cached scores in place without regenerating data.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkusuma/riskscope/internal/customer"
	"github.com/mkusuma/riskscope/internal/generator"
	"github.com/mkusuma/riskscope/internal/idgen"
	"github.com/mkusuma/riskscope/internal/metrics"
	"github.com/mkusuma/riskscope/internal/portfolio"
	"github.com/mkusuma/riskscope/internal/retry"
	"github.com/mkusuma/riskscope/internal/scoring"
	"github.com/mkusuma/riskscope/internal/traces"
)

// ErrNoDataset is returned by read accessors before the first Regenerate.
var ErrNoDataset = errors.New("no dataset loaded")

// Broadcaster pushes dataset lifecycle events to subscribed clients.
// The realtime hub implements it; a nil broadcaster disables events.
type Broadcaster interface {
	BroadcastDatasetRegenerated(data interface{})
	BroadcastThresholdsUpdated(data interface{})
}

// Snapshot describes one loaded dataset version.
type Snapshot struct {
	Version     string               `json:"version"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Seed        int64                `json:"seed"`
	Total       int                  `json:"total"`
	Clean       customer.CleanReport `json:"clean"`
}

// Config wires the service's collaborators. Store and Broadcaster are
// optional; Logger defaults to slog.Default.
type Config struct {
	Generator   generator.Config
	Classifier  *scoring.Classifier
	Store       customer.Store
	Broadcaster Broadcaster
	Logger      *slog.Logger
}

// Service holds the current scored dataset and its summary.
type Service struct {
	mu         sync.RWMutex
	records    []customer.ScoredRecord
	byID       map[string]int
	summary    *portfolio.Summary
	snapshot   Snapshot
	classifier *scoring.Classifier
	genCfg     generator.Config

	store       customer.Store
	broadcaster Broadcaster
	logger      *slog.Logger
}

// New creates a dataset service. No dataset is loaded until Regenerate runs.
func New(cfg Config) *Service {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = scoring.DefaultClassifier()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		byID:        make(map[string]int),
		classifier:  classifier,
		genCfg:      cfg.Generator,
		store:       cfg.Store,
		broadcaster: cfg.Broadcaster,
		logger:      logger,
	}
}

// RegenerateOptions override the configured generator shape for one run.
// Nil fields keep the current values.
type RegenerateOptions struct {
	Size *int   `json:"size"`
	Seed *int64 `json:"seed"`
}

// Regenerate runs the full pipeline and swaps the cached dataset. The new
// shape (size/seed) sticks for subsequent runs.
func (s *Service) Regenerate(ctx context.Context, opts RegenerateOptions) (*Snapshot, error) {
	s.mu.Lock()
	genCfg := s.genCfg
	if opts.Size != nil {
		genCfg.Size = *opts.Size
	}
	if opts.Seed != nil {
		genCfg.Seed = *opts.Seed
	}
	s.genCfg = genCfg
	classifier := s.classifier
	s.mu.Unlock()

	ctx, span := traces.StartSpan(ctx, "dataset.regenerate",
		traces.DatasetSize(genCfg.Size), traces.DatasetSeed(genCfg.Seed))
	defer span.End()

	start := time.Now()
	snapshot, err := s.rebuild(ctx, classifier, genCfg)
	if err != nil {
		metrics.DatasetRegenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.DatasetRegenerationsTotal.WithLabelValues("ok").Inc()
	metrics.DatasetGenerationDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("dataset regenerated",
		"version", snapshot.Version,
		"size", snapshot.Total,
		"seed", snapshot.Seed,
		"imputed_incomes", snapshot.Clean.ImputedIncomes,
		"clamped_outliers", snapshot.Clean.ClampedOutliers,
		"duration", time.Since(start))

	if s.broadcaster != nil {
		s.mu.RLock()
		summary := s.summary
		s.mu.RUnlock()
		s.broadcaster.BroadcastDatasetRegenerated(map[string]interface{}{
			"version":         snapshot.Version,
			"total":           snapshot.Total,
			"seed":            snapshot.Seed,
			"highRiskPercent": summary.HighRiskPercent,
		})
	}
	return snapshot, nil
}

// rebuild runs generate -> clean -> score -> summarize, then swaps the cache
// and persists best-effort.
func (s *Service) rebuild(ctx context.Context, classifier *scoring.Classifier, genCfg generator.Config) (*Snapshot, error) {
	_, genSpan := traces.StartSpan(ctx, "dataset.generate")
	customers := generator.New(genCfg).Generate()
	genSpan.End()

	_, cleanSpan := traces.StartSpan(ctx, "dataset.clean")
	cleanReport := customer.Clean(customers)
	cleanSpan.End()

	scoreCtx, scoreSpan := traces.StartSpan(ctx, "dataset.score")
	records, err := scoring.ScoreAll(scoreCtx, classifier, customers)
	scoreSpan.End()
	if err != nil {
		return nil, fmt.Errorf("score dataset: %w", err)
	}
	metrics.RecordsScoredTotal.Add(float64(len(records)))

	_, sumSpan := traces.StartSpan(ctx, "dataset.summarize")
	summary, err := portfolio.Summarize(records)
	sumSpan.End()
	if err != nil {
		return nil, fmt.Errorf("summarize dataset: %w", err)
	}

	snapshot := Snapshot{
		Version:     idgen.WithPrefix("ds_"),
		GeneratedAt: time.Now().UTC(),
		Seed:        genCfg.Seed,
		Total:       len(records),
		Clean:       cleanReport,
	}

	s.mu.Lock()
	s.records = records
	s.byID = make(map[string]int, len(records))
	for i := range records {
		s.byID[records[i].ID] = i
	}
	s.summary = summary
	s.snapshot = snapshot
	s.mu.Unlock()

	s.publishCategoryGauges(summary)
	s.persist(ctx, records)

	return &snapshot, nil
}

// SetThresholds reconfigures the classifier and reclassifies the cached
// dataset without rescoring. Fails with scoring.ErrInvalidConfiguration.
func (s *Service) SetThresholds(ctx context.Context, low, high int) (*portfolio.Summary, error) {
	classifier, err := scoring.NewClassifier(low, high)
	if err != nil {
		return nil, err
	}

	ctx, span := traces.StartSpan(ctx, "dataset.set_thresholds", traces.Thresholds(low, high))
	defer span.End()

	s.mu.Lock()
	s.classifier = classifier
	var summary *portfolio.Summary
	if len(s.records) > 0 {
		records := scoring.Reclassify(classifier, s.records)
		summary, err = portfolio.Summarize(records)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.records = records
		s.summary = summary
	}
	records := s.records
	s.mu.Unlock()

	metrics.ThresholdUpdatesTotal.Inc()
	if summary != nil {
		s.publishCategoryGauges(summary)
		s.persist(ctx, records)
	}

	s.logger.Info("classifier thresholds updated", "low", low, "high", high)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastThresholdsUpdated(map[string]interface{}{
			"low":  low,
			"high": high,
		})
	}
	return summary, nil
}

// persist saves the dataset to the store, retrying transient failures.
// Persistent failures degrade to in-memory only.
func (s *Service) persist(ctx context.Context, records []customer.ScoredRecord) {
	if s.store == nil {
		return
	}
	err := retry.Do(ctx, 3, 200*time.Millisecond, func() error {
		return s.store.ReplaceAll(ctx, records)
	})
	if err != nil {
		s.logger.Warn("dataset persistence failed, serving from memory", "error", err)
	}
}

func (s *Service) publishCategoryGauges(summary *portfolio.Summary) {
	for _, cat := range customer.Categories {
		metrics.CustomersByCategory.WithLabelValues(string(cat)).
			Set(float64(summary.Categories[cat].Count))
	}
}

// Summary returns the cached portfolio summary.
func (s *Service) Summary() (*portfolio.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return nil, ErrNoDataset
	}
	return s.summary, nil
}

// Snapshot returns metadata about the loaded dataset version.
func (s *Service) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return nil, ErrNoDataset
	}
	snap := s.snapshot
	return &snap, nil
}

// Thresholds returns the active classifier cut points.
func (s *Service) Thresholds() (low, high int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classifier.Thresholds()
}

// ClassifyScore maps a score through the active classifier.
func (s *Service) ClassifyScore(score int) customer.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classifier.Classify(score)
}

// Records returns cached records, optionally filtered by category. A zero
// category means no filter; limit <= 0 means no limit.
func (s *Service) Records(category customer.Category, limit int) ([]customer.ScoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return nil, ErrNoDataset
	}

	result := make([]customer.ScoredRecord, 0)
	for i := range s.records {
		if category != "" && s.records[i].RiskCategory != category {
			continue
		}
		result = append(result, s.records[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Record returns one cached record by customer ID.
func (s *Service) Record(id string) (*customer.ScoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return nil, ErrNoDataset
	}
	i, ok := s.byID[id]
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	cp := s.records[i]
	return &cp, nil
}

// TopRisky returns the n highest-scored records in a category (all
// categories when zero), ordered by descending score.
func (s *Service) TopRisky(category customer.Category, n int) ([]customer.ScoredRecord, error) {
	records, err := s.Records(category, 0)
	if err != nil {
		return nil, err
	}
	// Insertion-sort the top n; datasets are small enough that a full sort
	// would also do, but this keeps the cache order untouched.
	top := make([]customer.ScoredRecord, 0, n)
	for _, r := range records {
		pos := len(top)
		for pos > 0 && top[pos-1].RiskScore < r.RiskScore {
			pos--
		}
		if pos < n {
			if len(top) < n {
				top = append(top, customer.ScoredRecord{})
			}
			copy(top[pos+1:], top[pos:])
			top[pos] = r
		}
	}
	return top, nil
}
