package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rgdevment/scam-registry/internal/app"
	"github.com/rgdevment/scam-registry/internal/config"
	"github.com/rgdevment/scam-registry/internal/risk"
	"github.com/rgdevment/scam-registry/internal/service"
)

func TestNew_InMemorySQLite(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.StoreSQLite, SQLitePath: ":memory:"}

	a, err := app.New(context.Background(), cfg, zap.NewNop(), true)
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	res, err := a.Service.SubmitReport(ctx, service.SubmitInput{
		IdentifierType:  "website",
		IdentifierValue: "https://sbi-kyc-update.xyz/",
		Description:     "SMS said my KYC will expire today",
	})
	require.NoError(t, err)
	require.NotNil(t, res.AIAnalysis.Error)

	lookup, err := a.Service.Lookup(ctx, "sbi-kyc-update.xyz", "")
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.ReportCount)
	require.NotNil(t, lookup.Risk)

	stats, err := a.Service.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalReports)
	assert.Equal(t, "disabled", a.ClassifierState())
}

func TestNewScorer(t *testing.T) {
	s, err := app.NewScorer("")
	require.NoError(t, err)
	assert.Equal(t, risk.DefaultPolicyVersion, s.PolicyVersion())

	s, err = app.NewScorer("../../configs/scoring_policy.yml")
	require.NoError(t, err)
	assert.Equal(t, risk.DefaultPolicyVersion, s.PolicyVersion())

	_, err = app.NewScorer("does-not-exist.yml")
	assert.Error(t, err)
}
