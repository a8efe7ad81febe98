package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentifierType is the kind of identifier a report is filed against.
// Using a custom type prevents string typos in the business logic.
type IdentifierType string

// RiskLevel is the banded summary of a numeric risk score.
type RiskLevel string

const (
	IdentifierPhone   IdentifierType = "phone"
	IdentifierUPI     IdentifierType = "upi"
	IdentifierWebsite IdentifierType = "website"
	IdentifierEmail   IdentifierType = "email"
	IdentifierOther   IdentifierType = "other"
)

const (
	LevelLow      RiskLevel = "LOW"      // Score 0-30
	LevelMedium   RiskLevel = "MEDIUM"   // Score 31-60
	LevelHigh     RiskLevel = "HIGH"     // Score 61-80
	LevelCritical RiskLevel = "CRITICAL" // Score 81-100
)

// AnonymousReporter is stored when the reporter leaves the name blank.
const AnonymousReporter = "Anonymous"

// IdentifierTypes lists every accepted identifier type in display order.
var IdentifierTypes = []IdentifierType{
	IdentifierPhone, IdentifierUPI, IdentifierWebsite, IdentifierEmail, IdentifierOther,
}

// ParseIdentifierType maps a raw string onto a known IdentifierType.
func ParseIdentifierType(s string) (IdentifierType, error) {
	t := IdentifierType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range IdentifierTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown identifier type %q", ErrInvalidInput, s)
}

// LevelForScore derives the risk level from a 0-100 score.
// Boundary values belong to the lower band.
func LevelForScore(score int) RiskLevel {
	switch {
	case score <= 30:
		return LevelLow
	case score <= 60:
		return LevelMedium
	case score <= 80:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// ReportCandidate is a report that has not been persisted yet.
// IdentifierValue is expected to be normalized already.
type ReportCandidate struct {
	IdentifierType  IdentifierType
	IdentifierValue string
	Description     string
}

// RiskAssessment is the scorer output embedded in every Report.
type RiskAssessment struct {
	Score   int       `json:"score"`
	Level   RiskLevel `json:"level"`
	Factors []string  `json:"factors"`
}

// AIAnalysis is the classifier verdict as shown to users and stored
// alongside the report. Error is set when the classifier was unavailable.
type AIAnalysis struct {
	IsScam      bool    `json:"is_scam"`
	Confidence  float64 `json:"confidence"`
	ScamType    string  `json:"scam_type"`
	Explanation string  `json:"explanation"`
	Advice      string  `json:"advice"`
	Error       *string `json:"error"`
}

// Report is the persisted, write-once fraud report.
type Report struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	IdentifierType  IdentifierType `json:"identifier_type" db:"identifier_type"`
	IdentifierValue string         `json:"identifier_value" db:"identifier_value"`
	Description     string         `json:"description" db:"description"`
	Category        string         `json:"category" db:"category"`
	ReporterName    string         `json:"reporter_name" db:"reporter_name"`

	Risk RiskAssessment `json:"risk"`

	// PolicyVersion records which scoring policy produced Risk so that
	// score changes across policy revisions stay auditable.
	PolicyVersion string `json:"policy_version" db:"policy_version"`

	AIAnalysis AIAnalysis `json:"ai_analysis"`
	ReportedAt time.Time  `json:"reported_at" db:"reported_at"`
}

// NewReport is a factory to create a clean report instance.
// Note: it expects the identifier to be normalized and the risk to be computed by the caller.
func NewReport(candidate ReportCandidate, reporterName, category string, risk RiskAssessment, policyVersion string, ai AIAnalysis) *Report {
	reporterName = strings.TrimSpace(reporterName)
	if reporterName == "" {
		reporterName = AnonymousReporter
	}
	if category == "" {
		category = "unknown"
	}

	return &Report{
		ID:              uuid.New(),
		IdentifierType:  candidate.IdentifierType,
		IdentifierValue: candidate.IdentifierValue,
		Description:     candidate.Description,
		Category:        category,
		ReporterName:    reporterName,
		Risk:            risk,
		PolicyVersion:   policyVersion,
		AIAnalysis:      ai,
		ReportedAt:      time.Now().UTC(),
	}
}

// Candidate returns the scoring input the report was built from.
func (r *Report) Candidate() ReportCandidate {
	return ReportCandidate{
		IdentifierType:  r.IdentifierType,
		IdentifierValue: r.IdentifierValue,
		Description:     r.Description,
	}
}

// CountByKey is one row of a grouped count.
type CountByKey struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ReportSummary is the short form of a report shown on the dashboard.
type ReportSummary struct {
	ID              uuid.UUID      `json:"id"`
	IdentifierType  IdentifierType `json:"identifier_type"`
	IdentifierValue string         `json:"identifier_value"`
	Category        string         `json:"category"`
	RiskScore       int            `json:"risk_score"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	ReportedAt      time.Time      `json:"reported_at"`
}

// Summary returns the dashboard form of the report.
func (r *Report) Summary() ReportSummary {
	return ReportSummary{
		ID:              r.ID,
		IdentifierType:  r.IdentifierType,
		IdentifierValue: r.IdentifierValue,
		Category:        r.Category,
		RiskScore:       r.Risk.Score,
		RiskLevel:       r.Risk.Level,
		ReportedAt:      r.ReportedAt,
	}
}

// DashboardStats aggregates the report store for the dashboard.
type DashboardStats struct {
	TotalReports      int             `json:"total_reports"`
	UniqueIdentifiers int             `json:"unique_identifiers"`
	HighRiskCount     int             `json:"high_risk_count"`
	ByCategory        []CountByKey    `json:"by_category"`
	ByType            []CountByKey    `json:"by_type"`
	RiskDistribution  []CountByKey    `json:"risk_distribution"`
	RecentReports     []ReportSummary `json:"recent_reports"`
}

// LookupResult is everything known about one identifier.
type LookupResult struct {
	Identifier  string          `json:"identifier"`
	ReportCount int             `json:"report_count"`
	Risk        *RiskAssessment `json:"risk"`
	Reports     []*Report       `json:"reports"`
}
