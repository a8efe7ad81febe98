package scylla

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rgdevment/scam-registry/internal/domain"
	"github.com/rgdevment/scam-registry/internal/service"
)

// Schema is the CQL for the reports table. Reports are partitioned by
// identifier so counting and lookups stay single-partition reads.
const Schema = `
CREATE TABLE IF NOT EXISTS reports_by_identifier (
    identifier_value text,
    reported_at timestamp,
    id uuid,
    identifier_type text,
    description text,
    category text,
    reporter_name text,
    risk_score int,
    risk_level text,
    risk_factors list<text>,
    policy_version text,
    ai_analysis text,
    PRIMARY KEY ((identifier_value), reported_at, id)
) WITH CLUSTERING ORDER BY (reported_at DESC, id DESC)`

const recentReportsLimit = 10

type scyllaRepository struct {
	session *gocql.Session
	logger  *zap.Logger
}

func NewScyllaRepository(session *gocql.Session, logger *zap.Logger) service.Repository {
	return &scyllaRepository{
		session: session,
		logger:  logger,
	}
}

func Connect(logger *zap.Logger, keyspace string, hosts ...string) (*gocql.Session, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.ProtoVersion = 4
	cluster.Timeout = 5 * time.Second
	cluster.ConnectTimeout = 5 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to scylla: %w", err)
	}

	if err := session.Query(Schema).Exec(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to create reports table: %w", err)
	}

	logger.Info("Connected to ScyllaDB", zap.Strings("hosts", hosts), zap.String("keyspace", keyspace))
	return session, nil
}

const reportColumns = `identifier_value, reported_at, id, identifier_type, description, category,
	reporter_name, risk_score, risk_level, risk_factors, policy_version, ai_analysis`

func (r *scyllaRepository) CountPriorReports(ctx context.Context, identifierValue string) (int, error) {
	var count int
	err := r.session.Query(`SELECT COUNT(*) FROM reports_by_identifier WHERE identifier_value = ?`,
		identifierValue).WithContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("scylla: failed to count reports: %w", err)
	}
	return count, nil
}

func (r *scyllaRepository) Append(ctx context.Context, report *domain.Report) error {
	analysis, err := json.Marshal(report.AIAnalysis)
	if err != nil {
		return fmt.Errorf("scylla: failed to encode ai analysis: %w", err)
	}

	query := `INSERT INTO reports_by_identifier (` + reportColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err = r.session.Query(query,
		report.IdentifierValue,
		report.ReportedAt,
		gocql.UUID(report.ID),
		string(report.IdentifierType),
		report.Description,
		report.Category,
		report.ReporterName,
		report.Risk.Score,
		string(report.Risk.Level),
		report.Risk.Factors,
		report.PolicyVersion,
		string(analysis),
	).WithContext(ctx).Exec()

	if err != nil {
		return fmt.Errorf("scylla: failed to save report: %w", err)
	}
	return nil
}

func (r *scyllaRepository) FindByIdentifier(ctx context.Context, identifierValue string) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports_by_identifier WHERE identifier_value = ?`
	return r.scanAll(r.session.Query(query, identifierValue).WithContext(ctx).Iter())
}

// List pages over a full scan sorted in process. Fine for the volumes a
// community registry sees; a time-bucketed table would be the next step.
func (r *scyllaRepository) List(ctx context.Context, limit, offset int) ([]*domain.Report, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []*domain.Report{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (r *scyllaRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate(all), nil
}

func (r *scyllaRepository) all(ctx context.Context) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports_by_identifier`
	reports, err := r.scanAll(r.session.Query(query).WithContext(ctx).Iter())
	if err != nil {
		return nil, err
	}
	sortNewestFirst(reports)
	return reports, nil
}

func (r *scyllaRepository) scanAll(iter *gocql.Iter) ([]*domain.Report, error) {
	reports := []*domain.Report{}

	var id gocql.UUID
	var value, idType, description, category, reporter, level, policy, analysis string
	var score int
	var factors []string
	var reportedAt time.Time

	for iter.Scan(&value, &reportedAt, &id, &idType, &description, &category,
		&reporter, &score, &level, &factors, &policy, &analysis) {
		report := &domain.Report{
			ID:              uuid.UUID(id),
			IdentifierType:  domain.IdentifierType(idType),
			IdentifierValue: value,
			Description:     description,
			Category:        category,
			ReporterName:    reporter,
			Risk: domain.RiskAssessment{
				Score:   score,
				Level:   domain.RiskLevel(level),
				Factors: append([]string{}, factors...),
			},
			PolicyVersion: policy,
			ReportedAt:    reportedAt.UTC(),
		}
		if err := json.Unmarshal([]byte(analysis), &report.AIAnalysis); err != nil {
			r.logger.Warn("Skipping corrupt ai analysis", zap.String("id", report.ID.String()), zap.Error(err))
		}
		reports = append(reports, report)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("scylla: failed to iterate reports: %w", err)
	}
	return reports, nil
}

func sortNewestFirst(reports []*domain.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].ReportedAt.After(reports[j].ReportedAt)
	})
}

// aggregate computes dashboard stats from reports sorted newest first.
func aggregate(reports []*domain.Report) *domain.DashboardStats {
	stats := &domain.DashboardStats{TotalReports: len(reports)}

	identifiers := make(map[string]struct{})
	byCategory := make(map[string]int)
	byType := make(map[string]int)
	byLevel := make(map[string]int)

	for _, report := range reports {
		identifiers[report.IdentifierValue] = struct{}{}
		byCategory[report.Category]++
		byType[string(report.IdentifierType)]++
		byLevel[string(report.Risk.Level)]++
		if report.Risk.Level == domain.LevelHigh || report.Risk.Level == domain.LevelCritical {
			stats.HighRiskCount++
		}
	}

	stats.UniqueIdentifiers = len(identifiers)
	stats.ByCategory = topCounts(byCategory, 10)
	stats.ByType = topCounts(byType, 0)
	stats.RiskDistribution = topCounts(byLevel, 0)
	sort.Slice(stats.RiskDistribution, func(i, j int) bool {
		return stats.RiskDistribution[i].Key < stats.RiskDistribution[j].Key
	})

	stats.RecentReports = make([]domain.ReportSummary, 0, recentReportsLimit)
	for _, report := range reports[:min(recentReportsLimit, len(reports))] {
		stats.RecentReports = append(stats.RecentReports, report.Summary())
	}

	return stats
}

// topCounts orders by count descending, then key. limit <= 0 keeps all.
func topCounts(counts map[string]int, limit int) []domain.CountByKey {
	out := make([]domain.CountByKey, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.CountByKey{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
