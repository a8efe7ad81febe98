package service

import (
	"context"

	"github.com/rgdevment/scam-registry/internal/domain"
)

// SubmitInput is a raw report as received from a client.
type SubmitInput struct {
	IdentifierType  string
	IdentifierValue string
	Description     string
	ReporterName    string
}

// SubmitResult is returned after a report was persisted.
type SubmitResult struct {
	ReportID   string
	Risk       domain.RiskAssessment
	AIAnalysis domain.AIAnalysis
}

// AnalyzeInput is a one-off AI analysis request; nothing is stored.
type AnalyzeInput struct {
	Message         string
	IdentifierType  string
	IdentifierValue string
}

type Service interface {
	SubmitReport(ctx context.Context, in SubmitInput) (*SubmitResult, error)

	Analyze(ctx context.Context, in AnalyzeInput) (*domain.AIAnalysis, error)

	ListReports(ctx context.Context, limit, offset int) ([]*domain.Report, error)

	Lookup(ctx context.Context, identifier, identifierType string) (*domain.LookupResult, error)

	// Rescore is Lookup without the cache: the result is always recomputed.
	Rescore(ctx context.Context, identifier, identifierType string) (*domain.LookupResult, error)

	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
}
