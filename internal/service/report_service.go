package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rgdevment/scam-registry/internal/classifier"
	"github.com/rgdevment/scam-registry/internal/domain"
	"github.com/rgdevment/scam-registry/internal/platform/metrics"
	"github.com/rgdevment/scam-registry/internal/risk"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// reportService is the concrete implementation of the Service interface.
// It is unexported to force usage of the Interface.
type reportService struct {
	repo       Repository
	scorer     *risk.Scorer
	classifier classifier.Classifier
	cache      LookupCache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// Option customizes the service.
type Option func(*reportService)

// WithLookupCache enables caching of identifier lookups.
func WithLookupCache(cache LookupCache, ttl time.Duration) Option {
	return func(s *reportService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// NewReportService wires the scorer to its collaborators.
func NewReportService(repo Repository, scorer *risk.Scorer, ai classifier.Classifier, logger *zap.Logger, opts ...Option) Service {
	if ai == nil {
		ai = classifier.Disabled{}
	}

	s := &reportService{
		repo:       repo,
		scorer:     scorer,
		classifier: ai,
		cache:      NoopCache{},
		cacheTTL:   5 * time.Minute,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitReport scores and persists one report. The prior-report count is read
// before the append; concurrent submissions for the same identifier may both
// see the same count, which is accepted since scores are advisory.
func (s *reportService) SubmitReport(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	idType, err := domain.ParseIdentifierType(in.IdentifierType)
	if err != nil {
		return nil, err
	}

	value := domain.NormalizeIdentifier(idType, in.IdentifierValue)
	if value == "" {
		return nil, fmt.Errorf("%w: identifier value is empty", domain.ErrInvalidInput)
	}

	candidate := domain.ReportCandidate{
		IdentifierType:  idType,
		IdentifierValue: value,
		Description:     strings.TrimSpace(in.Description),
	}

	count, err := s.repo.CountPriorReports(ctx, value)
	if err != nil {
		return nil, storeError("count", err)
	}

	confidence, analysis := s.classify(ctx, classifier.Request{
		Text:            candidate.Description,
		IdentifierType:  idType,
		IdentifierValue: value,
	})

	assessment, err := s.scorer.Score(candidate, count, confidence)
	if err != nil {
		return nil, err
	}

	report := domain.NewReport(candidate, in.ReporterName, categoryFor(analysis), assessment, s.scorer.PolicyVersion(), analysis)
	if err := s.repo.Append(ctx, report); err != nil {
		return nil, storeError("append", err)
	}

	if err := s.cache.Invalidate(ctx, value); err != nil {
		s.logger.Warn("Failed to invalidate lookup cache", zap.String("identifier", value), zap.Error(err))
	}

	metrics.ObserveReport(string(assessment.Level), assessment.Score)

	s.logger.Info("Report submitted",
		zap.String("id", report.ID.String()),
		zap.String("identifier_type", string(idType)),
		zap.Int("prior_reports", count),
		zap.Int("score", assessment.Score),
		zap.String("level", string(assessment.Level)))

	return &SubmitResult{
		ReportID:   report.ID.String(),
		Risk:       assessment,
		AIAnalysis: analysis,
	}, nil
}

// classify resolves the AI layer. Unavailability is absorbed here and only
// shows up as an absent confidence.
func (s *reportService) classify(ctx context.Context, req classifier.Request) (risk.Confidence, domain.AIAnalysis) {
	res, err := s.classifier.Classify(ctx, req)
	if err != nil {
		metrics.ObserveClassifier(false)
		if !errors.Is(err, domain.ErrClassifierUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrClassifierUnavailable, err)
		}
		return risk.NoConfidence(), classifier.UnavailableAnalysis(err)
	}

	metrics.ObserveClassifier(true)
	return risk.ConfidenceOf(res.ScamProbability()), res.Analysis()
}

func categoryFor(a domain.AIAnalysis) string {
	if a.ScamType != "" && a.ScamType != "unknown" {
		return a.ScamType
	}
	if a.IsScam {
		return "suspected_scam"
	}
	return "unknown"
}

// Analyze runs the classifier alone. An unavailable classifier is not an error.
func (s *reportService) Analyze(ctx context.Context, in AnalyzeInput) (*domain.AIAnalysis, error) {
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}

	req := classifier.Request{Text: text}
	if in.IdentifierType != "" && in.IdentifierValue != "" {
		if t, err := domain.ParseIdentifierType(in.IdentifierType); err == nil {
			req.IdentifierType = t
			req.IdentifierValue = domain.NormalizeIdentifier(t, in.IdentifierValue)
		}
	}

	_, analysis := s.classify(ctx, req)
	return &analysis, nil
}

func (s *reportService) ListReports(ctx context.Context, limit, offset int) ([]*domain.Report, error) {
	if limit < 1 || limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidInput, MaxListLimit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidInput)
	}

	reports, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, storeError("list", err)
	}
	return reports, nil
}

// Lookup returns every report for an identifier and a risk assessment
// recomputed from the most recent one, without AI.
func (s *reportService) Lookup(ctx context.Context, identifier, identifierType string) (*domain.LookupResult, error) {
	return s.lookup(ctx, identifier, identifierType, false)
}

// Rescore drops any cached result for the identifier and scores it again from
// the stored reports.
func (s *reportService) Rescore(ctx context.Context, identifier, identifierType string) (*domain.LookupResult, error) {
	return s.lookup(ctx, identifier, identifierType, true)
}

func (s *reportService) lookup(ctx context.Context, identifier, identifierType string, fresh bool) (*domain.LookupResult, error) {
	var idType domain.IdentifierType
	if identifierType == "" {
		idType = domain.InferIdentifierType(identifier)
	} else {
		t, err := domain.ParseIdentifierType(identifierType)
		if err != nil {
			return nil, err
		}
		idType = t
	}

	value := domain.NormalizeIdentifier(idType, identifier)
	if value == "" {
		return nil, fmt.Errorf("%w: identifier is empty", domain.ErrInvalidInput)
	}

	if fresh {
		if err := s.cache.Invalidate(ctx, value); err != nil {
			s.logger.Warn("Failed to invalidate lookup cache", zap.String("identifier", value), zap.Error(err))
		}
	} else if cached, ok, err := s.cache.Get(ctx, value); err != nil {
		s.logger.Warn("Lookup cache read failed", zap.String("identifier", value), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	reports, err := s.repo.FindByIdentifier(ctx, value)
	if err != nil {
		return nil, storeError("find", err)
	}

	result := &domain.LookupResult{
		Identifier:  value,
		ReportCount: len(reports),
		Reports:     reports,
	}
	if result.Reports == nil {
		result.Reports = []*domain.Report{}
	}

	if len(reports) > 0 {
		latest := reports[0]
		assessment, err := s.scorer.Score(latest.Candidate(), len(reports), risk.NoConfidence())
		if err != nil {
			return nil, err
		}
		result.Risk = &assessment
	}

	if err := s.cache.Set(ctx, value, result, s.cacheTTL); err != nil {
		s.logger.Warn("Lookup cache write failed", zap.String("identifier", value), zap.Error(err))
	}

	return result, nil
}

func (s *reportService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, storeError("stats", err)
	}
	return stats, nil
}

func storeError(op string, err error) error {
	metrics.ObserveStoreError(op)
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
