// Package sqlite is the default report store. It keeps every report in a
// single fraud_reports table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/rgdevment/scam-registry/internal/domain"
	"github.com/rgdevment/scam-registry/internal/service"
)

// timeLayout sorts lexically; reported_at is always stored in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recentReportsLimit = 10

type sqliteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory store.
func Open(path string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to ":memory:" is a different database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("SQLite report store initialized", zap.String("db_path", path))
	return db, nil
}

func NewSQLiteRepository(db *sql.DB, logger *zap.Logger) service.Repository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

func migrate(db *sql.DB) error {
	schema := `
	PRAGMA journal_mode=WAL;
	PRAGMA busy_timeout=5000;

	CREATE TABLE IF NOT EXISTS fraud_reports (
		id TEXT PRIMARY KEY,
		identifier_type TEXT NOT NULL,
		identifier_value TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'unknown',
		reporter_name TEXT NOT NULL DEFAULT 'Anonymous',
		risk_score INTEGER NOT NULL DEFAULT 0,
		risk_level TEXT NOT NULL DEFAULT 'LOW',
		risk_factors TEXT NOT NULL DEFAULT '[]',
		policy_version TEXT NOT NULL DEFAULT '',
		ai_analysis TEXT NOT NULL DEFAULT '{}',
		reported_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_identifier_value ON fraud_reports(identifier_value);
	CREATE INDEX IF NOT EXISTS idx_reported_at ON fraud_reports(reported_at);
	CREATE INDEX IF NOT EXISTS idx_category ON fraud_reports(category);
	`

	_, err := db.Exec(schema)
	return err
}

const reportColumns = `id, identifier_type, identifier_value, description, category, reporter_name,
	risk_score, risk_level, risk_factors, policy_version, ai_analysis, reported_at`

func (r *sqliteRepository) CountPriorReports(ctx context.Context, identifierValue string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fraud_reports WHERE identifier_value = ?`, identifierValue,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to count reports: %w", err)
	}
	return count, nil
}

func (r *sqliteRepository) Append(ctx context.Context, report *domain.Report) error {
	factors, err := json.Marshal(report.Risk.Factors)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode risk factors: %w", err)
	}
	analysis, err := json.Marshal(report.AIAnalysis)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode ai analysis: %w", err)
	}

	query := `INSERT INTO fraud_reports (` + reportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		report.ID.String(),
		string(report.IdentifierType),
		report.IdentifierValue,
		report.Description,
		report.Category,
		report.ReporterName,
		report.Risk.Score,
		string(report.Risk.Level),
		string(factors),
		report.PolicyVersion,
		string(analysis),
		report.ReportedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save report: %w", err)
	}
	return nil
}

func (r *sqliteRepository) FindByIdentifier(ctx context.Context, identifierValue string) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM fraud_reports
		WHERE identifier_value = ?
		ORDER BY reported_at DESC, rowid DESC`

	return r.queryReports(ctx, query, identifierValue)
}

func (r *sqliteRepository) List(ctx context.Context, limit, offset int) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM fraud_reports
		ORDER BY reported_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	return r.queryReports(ctx, query, limit, offset)
}

func (r *sqliteRepository) queryReports(ctx context.Context, query string, args ...any) ([]*domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []*domain.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate reports: %w", err)
	}
	return reports, nil
}

func scanReport(rows *sql.Rows) (*domain.Report, error) {
	var report domain.Report
	var id, idType, level, factorsJSON, analysisJSON, reportedAt string

	err := rows.Scan(
		&id,
		&idType,
		&report.IdentifierValue,
		&report.Description,
		&report.Category,
		&report.ReporterName,
		&report.Risk.Score,
		&level,
		&factorsJSON,
		&report.PolicyVersion,
		&analysisJSON,
		&reportedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to scan report: %w", err)
	}

	if report.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("sqlite: corrupt report id %q: %w", id, err)
	}
	if report.ReportedAt, err = time.Parse(timeLayout, reportedAt); err != nil {
		return nil, fmt.Errorf("sqlite: corrupt reported_at %q: %w", reportedAt, err)
	}

	report.IdentifierType = domain.IdentifierType(idType)
	report.Risk.Level = domain.RiskLevel(level)

	report.Risk.Factors = []string{}
	if err := json.Unmarshal([]byte(factorsJSON), &report.Risk.Factors); err != nil {
		return nil, fmt.Errorf("sqlite: corrupt risk factors for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(analysisJSON), &report.AIAnalysis); err != nil {
		return nil, fmt.Errorf("sqlite: corrupt ai analysis for %s: %w", id, err)
	}

	return &report, nil
}

func (r *sqliteRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT identifier_value),
		       COALESCE(SUM(CASE WHEN risk_level IN ('HIGH', 'CRITICAL') THEN 1 ELSE 0 END), 0)
		FROM fraud_reports`,
	).Scan(&stats.TotalReports, &stats.UniqueIdentifiers, &stats.HighRiskCount)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to count totals: %w", err)
	}

	if stats.ByCategory, err = r.groupCount(ctx,
		`SELECT category, COUNT(*) AS n FROM fraud_reports GROUP BY category ORDER BY n DESC, category LIMIT 10`); err != nil {
		return nil, err
	}
	if stats.ByType, err = r.groupCount(ctx,
		`SELECT identifier_type, COUNT(*) AS n FROM fraud_reports GROUP BY identifier_type ORDER BY n DESC, identifier_type`); err != nil {
		return nil, err
	}
	if stats.RiskDistribution, err = r.groupCount(ctx,
		`SELECT risk_level, COUNT(*) AS n FROM fraud_reports GROUP BY risk_level ORDER BY risk_level`); err != nil {
		return nil, err
	}

	recent, err := r.List(ctx, recentReportsLimit, 0)
	if err != nil {
		return nil, err
	}
	stats.RecentReports = make([]domain.ReportSummary, 0, len(recent))
	for _, report := range recent {
		stats.RecentReports = append(stats.RecentReports, report.Summary())
	}

	return stats, nil
}

func (r *sqliteRepository) groupCount(ctx context.Context, query string) ([]domain.CountByKey, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to aggregate reports: %w", err)
	}
	defer rows.Close()

	counts := []domain.CountByKey{}
	for rows.Next() {
		var c domain.CountByKey
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			r.logger.Error("Failed to scan aggregate row", zap.Error(err))
			continue
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
