package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/themobileprof/helpdesk-intent/internal/circuitbreaker"
	"github.com/themobileprof/helpdesk-intent/internal/classifier"
	"github.com/themobileprof/helpdesk-intent/internal/intent"
	"github.com/themobileprof/helpdesk-intent/internal/nlp"
	"github.com/themobileprof/helpdesk-intent/internal/privacy"
	"github.com/themobileprof/helpdesk-intent/internal/routing"
)

// DefaultModelPath is where the trained model is cached
const DefaultModelPath = "intent_model.json"

// ExampleStore persists examples added through retraining
type ExampleStore interface {
	ListExamples(ctx context.Context) ([]intent.Example, error)
	SaveExamples(ctx context.Context, examples []intent.Example) error
}

// Config configures an Engine
type Config struct {
	ModelPath  string
	Corpus     *intent.Corpus  // default: intent.DefaultCorpus()
	Normalizer *nlp.Normalizer // default: lowercase only
	Store      ExampleStore    // optional
	Logger     *zap.Logger     // default: no-op
}

// Result is the outcome of classifying one message
type Result struct {
	Intent            intent.Intent
	RawIntent         intent.Intent
	Confidence        float64
	ShouldRouteToTech bool
	ProcessedText     string
	Probabilities     map[intent.Intent]float64
}

// SkippedExample is a retrain example that was not added to the corpus
type SkippedExample struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// RetrainSummary reports what a retrain did
type RetrainSummary struct {
	ExamplesCount int
	Added         int
	Skipped       []SkippedExample
}

// HealthStatus reports service readiness
type HealthStatus struct {
	OK          bool
	ModelLoaded bool
	TrainedAt   time.Time
}

// Engine owns the corpus and the current model. Classify is lock-free; the
// model pointer is swapped only after a new model is fully trained.
type Engine struct {
	mu         sync.Mutex // serializes retrains and guards corpus
	corpus     *intent.Corpus
	model      atomic.Pointer[classifier.Model]
	normalizer *nlp.Normalizer
	modelPath  string
	store      ExampleStore
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

// New creates an engine. Call Bootstrap before serving requests.
func New(cfg Config) *Engine {
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
	if cfg.Corpus == nil {
		cfg.Corpus = intent.DefaultCorpus()
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = nlp.NewNormalizer(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	logger := cfg.Logger.Named("engine")
	return &Engine{
		corpus:     cfg.Corpus.Clone(),
		normalizer: cfg.Normalizer,
		modelPath:  cfg.ModelPath,
		store:      cfg.Store,
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:         "example-store",
			MaxFailures:  3,
			ResetTimeout: 30 * time.Second,
			Logger:       logger,
		}),
		logger: logger,
	}
}

// Bootstrap merges stored examples into the corpus, then loads the cached
// model or trains a fresh one. A bad or missing artifact is never fatal.
func (e *Engine) Bootstrap(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	restored := e.restoreStoredExamples(ctx)
	if restored == 0 {
		m, err := classifier.Load(e.modelPath)
		switch {
		case err == nil:
			e.model.Store(m)
			e.logger.Info("model loaded from file",
				zap.String("path", e.modelPath),
				zap.Int("examples", m.ExamplesCount),
			)
			return nil
		case errors.Is(err, fs.ErrNotExist):
			e.logger.Info("no cached model, training", zap.String("path", e.modelPath))
		default:
			e.logger.Warn("failed to load model, training new one",
				zap.String("path", e.modelPath),
				zap.Error(err),
			)
		}
	}

	return e.trainLocked(e.corpus)
}

// restoreStoredExamples adds persisted examples to the corpus and returns
// how many were restored. Store failures are logged and ignored.
func (e *Engine) restoreStoredExamples(ctx context.Context) int {
	if e.store == nil {
		return 0
	}

	var stored []intent.Example
	err := e.breaker.Call(func() error {
		var err error
		stored, err = e.store.ListExamples(ctx)
		return err
	})
	if err != nil {
		e.logger.Warn("failed to load stored examples", zap.Error(err))
		return 0
	}

	restored := 0
	for _, ex := range stored {
		if err := e.corpus.Add(ex.Text, ex.Intent); err != nil {
			e.logger.Warn("ignoring stored example", zap.Error(err))
			continue
		}
		restored++
	}
	if restored > 0 {
		e.logger.Info("restored stored examples", zap.Int("count", restored))
	}
	return restored
}

// trainLocked fits a model on corpus, publishes it and writes the artifact.
// Caller must hold e.mu.
func (e *Engine) trainLocked(corpus *intent.Corpus) error {
	m, err := classifier.Train(corpus)
	if err != nil {
		return fmt.Errorf("failed to train classifier: %w", err)
	}
	e.model.Store(m)
	e.logger.Info("classifier trained", zap.Int("examples", m.ExamplesCount))

	if err := classifier.Save(e.modelPath, m); err != nil {
		e.logger.Warn("failed to save model", zap.String("path", e.modelPath), zap.Error(err))
		return nil
	}
	e.logger.Info("model saved", zap.String("path", e.modelPath))
	return nil
}

// Classify predicts the intent of text and applies the routing rules
func (e *Engine) Classify(ctx context.Context, text string, hasActiveTicket bool) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("%w: text is required", intent.ErrInvalidInput)
	}

	m := e.model.Load()
	if m == nil {
		return Result{}, intent.ErrModelUnavailable
	}

	processed := e.normalizer.Normalize(text)
	pred, err := m.Predict(processed)
	if err != nil {
		return Result{}, err
	}

	decision := routing.Route(pred.Intent, pred.Confidence, hasActiveTicket)

	e.logger.Info("classified",
		zap.String("text", privacy.SanitizeForLogging(text)),
		zap.String("intent", string(decision.Intent)),
		zap.String("raw_intent", string(pred.Intent)),
		zap.Float64("confidence", pred.Confidence),
		zap.Bool("has_active_ticket", hasActiveTicket),
		zap.Bool("route_to_tech", decision.RouteToTech),
	)

	return Result{
		Intent:            decision.Intent,
		RawIntent:         pred.Intent,
		Confidence:        pred.Confidence,
		ShouldRouteToTech: decision.RouteToTech,
		ProcessedText:     processed,
		Probabilities:     pred.Probabilities,
	}, nil
}

// Retrain adds valid examples to the corpus and replaces the model.
// Examples with an unknown intent or no text are skipped and reported.
// On error the corpus and current model are left unchanged.
func (e *Engine) Retrain(ctx context.Context, examples []intent.Example) (RetrainSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.corpus.Clone()
	var accepted []intent.Example
	var summary RetrainSummary

	for i, ex := range examples {
		text := strings.TrimSpace(ex.Text)
		if err := next.Add(text, ex.Intent); err != nil {
			summary.Skipped = append(summary.Skipped, SkippedExample{Index: i, Reason: err.Error()})
			continue
		}
		accepted = append(accepted, intent.Example{Text: text, Intent: ex.Intent})
	}

	m, err := classifier.Train(next)
	if err != nil {
		return RetrainSummary{}, fmt.Errorf("failed to train classifier: %w", err)
	}

	if e.store != nil && len(accepted) > 0 {
		err := e.breaker.Call(func() error {
			return e.store.SaveExamples(ctx, accepted)
		})
		if err != nil {
			return RetrainSummary{}, fmt.Errorf("failed to persist examples: %w", err)
		}
	}

	e.corpus = next
	e.model.Store(m)
	if err := classifier.Save(e.modelPath, m); err != nil {
		e.logger.Warn("failed to save model", zap.String("path", e.modelPath), zap.Error(err))
	}

	summary.Added = len(accepted)
	summary.ExamplesCount = next.Len()
	e.logger.Info("classifier retrained",
		zap.Int("examples", summary.ExamplesCount),
		zap.Int("added", summary.Added),
		zap.Int("skipped", len(summary.Skipped)),
	)
	return summary, nil
}

// Health reports whether a model is loaded. It never fails.
func (e *Engine) Health() HealthStatus {
	status := HealthStatus{OK: true}
	if m := e.model.Load(); m != nil {
		status.ModelLoaded = true
		status.TrainedAt = m.TrainedAt
	}
	return status
}

// ExamplesCount returns the size of the current corpus
func (e *Engine) ExamplesCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.corpus.Len()
}
