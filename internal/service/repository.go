package service

import (
	"context"
	"time"

	"github.com/rgdevment/scam-registry/internal/domain"
)

// Repository is the report store. Reports are append-only: there is no update
// or delete. Identifier values passed in are already normalized.
type Repository interface {
	CountPriorReports(ctx context.Context, identifierValue string) (int, error)

	Append(ctx context.Context, r *domain.Report) error

	FindByIdentifier(ctx context.Context, identifierValue string) ([]*domain.Report, error)

	List(ctx context.Context, limit, offset int) ([]*domain.Report, error)

	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

// LookupCache memoizes identifier lookups between submissions.
type LookupCache interface {
	Get(ctx context.Context, identifierValue string) (*domain.LookupResult, bool, error)

	Set(ctx context.Context, identifierValue string, result *domain.LookupResult, ttl time.Duration) error

	Invalidate(ctx context.Context, identifierValue string) error
}

// NoopCache is used when no cache backend is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*domain.LookupResult, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(context.Context, string, *domain.LookupResult, time.Duration) error {
	return nil
}

func (NoopCache) Invalidate(context.Context, string) error {
	return nil
}
