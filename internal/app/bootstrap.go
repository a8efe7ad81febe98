// Package app assembles the service from configuration. Both binaries share it.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rgdevment/scam-registry/internal/classifier"
	"github.com/rgdevment/scam-registry/internal/config"
	cache "github.com/rgdevment/scam-registry/internal/platform/cache/redis"
	"github.com/rgdevment/scam-registry/internal/platform/storage/scylla"
	"github.com/rgdevment/scam-registry/internal/platform/storage/sqlite"
	"github.com/rgdevment/scam-registry/internal/risk"
	"github.com/rgdevment/scam-registry/internal/service"
)

// App is a wired service plus everything that must be closed on exit.
type App struct {
	Service service.Service
	// ClassifierState is "disabled" without AI, otherwise the circuit
	// breaker state guarding the classifier.
	ClassifierState func() string
	closers         []func() error
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New builds the service described by cfg. withAI=false skips the classifier
// entirely, which the worker uses since re-scoring never calls it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, withAI bool) (*App, error) {
	a := &App{ClassifierState: func() string { return "disabled" }}

	repo, err := a.openRepository(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	scorer, err := NewScorer(cfg.ScoringPolicyPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("Scoring policy loaded", zap.String("version", scorer.PolicyVersion()))

	var ai classifier.Classifier = classifier.Disabled{}
	if withAI {
		ai = a.newClassifier(ctx, cfg, logger)
	}

	var opts []service.Option
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("Redis unavailable, lookup cache disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, client.Close)
			opts = append(opts, service.WithLookupCache(cache.NewLookupCache(client), cfg.LookupCacheTTL))
			logger.Info("Lookup cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	a.Service = service.NewReportService(repo, scorer, ai, logger, opts...)
	return a, nil
}

func (a *App) openRepository(cfg *config.Config, logger *zap.Logger) (service.Repository, error) {
	switch cfg.StoreDriver {
	case config.StoreScylla:
		session, err := scylla.Connect(logger, cfg.ScyllaKeyspace, cfg.ScyllaHost)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { session.Close(); return nil })
		return scylla.NewScyllaRepository(session, logger), nil

	default:
		if dir := filepath.Dir(cfg.SQLitePath); cfg.SQLitePath != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return sqlite.NewSQLiteRepository(db, logger), nil
	}
}

// newClassifier never fails: without a key, or when the client cannot be
// built, scoring runs on rules alone.
func (a *App) newClassifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) classifier.Classifier {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, AI analysis disabled")
		return classifier.Disabled{}
	}

	gemini, err := classifier.NewGeminiClient(ctx, classifier.GeminiConfig{
		APIKey:     cfg.GeminiAPIKey,
		ModelName:  cfg.GeminiModel,
		MaxRetries: cfg.AIMaxRetries,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Gemini, AI analysis disabled", zap.Error(err))
		return classifier.Disabled{}
	}
	a.closers = append(a.closers, gemini.Close)

	guarded := classifier.NewGuarded(gemini, classifier.GuardConfig{
		Name:    "gemini",
		Timeout: cfg.AITimeout,
	}, logger)
	a.ClassifierState = guarded.State
	return guarded
}

// NewScorer loads the policy file at path, or the built-in policy when path
// is empty.
func NewScorer(path string) (*risk.Scorer, error) {
	policy := risk.DefaultPolicy()
	if path != "" {
		p, err := risk.LoadPolicy(path)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	return risk.NewScorer(policy)
}
