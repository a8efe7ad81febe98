package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rgdevment/scam-registry/internal/domain"
	httpHandler "github.com/rgdevment/scam-registry/internal/platform/http"
	"github.com/rgdevment/scam-registry/internal/service"
)

type MockService struct {
	submitted  []service.SubmitInput
	submitErr  error
	lookupArgs [2]string
	listArgs   [2]int
	listErr    error
}

func (m *MockService) SubmitReport(ctx context.Context, in service.SubmitInput) (*service.SubmitResult, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.submitted = append(m.submitted, in)
	return &service.SubmitResult{
		ReportID: "4f7c1f36-1f0e-4a43-9b8e-0d7a4fd0e9a1",
		Risk:     domain.RiskAssessment{Score: 69, Level: domain.LevelHigh, Factors: []string{"OTP keyword detected"}},
	}, nil
}

func (m *MockService) Analyze(ctx context.Context, in service.AnalyzeInput) (*domain.AIAnalysis, error) {
	return &domain.AIAnalysis{IsScam: true, Confidence: 0.9, ScamType: "KYC fraud"}, nil
}

func (m *MockService) ListReports(ctx context.Context, limit, offset int) ([]*domain.Report, error) {
	m.listArgs = [2]int{limit, offset}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []*domain.Report{}, nil
}

func (m *MockService) Lookup(ctx context.Context, identifier, identifierType string) (*domain.LookupResult, error) {
	m.lookupArgs = [2]string{identifier, identifierType}
	return &domain.LookupResult{Identifier: identifier, Reports: []*domain.Report{}}, nil
}

func (m *MockService) Rescore(ctx context.Context, identifier, identifierType string) (*domain.LookupResult, error) {
	return m.Lookup(ctx, identifier, identifierType)
}

func (m *MockService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{TotalReports: 7}, nil
}

func newRouter(svc service.Service, apiKey string) http.Handler {
	r := chi.NewRouter()
	httpHandler.NewHandler(svc, zap.NewNop(), apiKey).RegisterRoutes(r)
	return r
}

func do(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validReport = `{"identifier_type":"phone","identifier_value":"1401234567","description":"Caller asked for my OTP"}`

func TestCreateReport(t *testing.T) {
	svc := &MockService{}
	rec := do(newRouter(svc, ""), http.MethodPost, "/api/reports", validReport, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Report submitted successfully", body["message"])
	assert.Equal(t, float64(69), body["risk"].(map[string]any)["score"])

	require.Len(t, svc.submitted, 1)
	assert.Equal(t, "phone", svc.submitted[0].IdentifierType)
}

func TestCreateReport_Validation(t *testing.T) {
	cases := map[string]string{
		"bad json":          `{"identifier_type":`,
		"unknown type":      `{"identifier_type":"fax","identifier_value":"12345","description":"Caller asked for my OTP"}`,
		"short value":       `{"identifier_type":"phone","identifier_value":"1","description":"Caller asked for my OTP"}`,
		"short description": `{"identifier_type":"phone","identifier_value":"12345","description":"OTP"}`,
		"long reporter":     fmt.Sprintf(`{"identifier_type":"phone","identifier_value":"12345","description":"Caller asked for my OTP","reporter_name":%q}`, strings.Repeat("a", 101)),
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &MockService{}
			rec := do(newRouter(svc, ""), http.MethodPost, "/api/reports", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.submitted)
		})
	}
}

func TestCreateReport_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: identifier value is empty", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: append: disk full", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		svc := &MockService{submitErr: tc.err}
		rec := do(newRouter(svc, ""), http.MethodPost, "/api/reports", validReport, nil)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestCreateReport_APIKey(t *testing.T) {
	svc := &MockService{}
	router := newRouter(svc, "s3cret")

	rec := do(router, http.MethodPost, "/api/reports", validReport, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodPost, "/api/reports", validReport, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodPost, "/api/reports", validReport, map[string]string{"X-API-Key": "s3cret"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// reads stay public
	rec = do(router, http.MethodGet, "/api/dashboard/stats", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListReports_Query(t *testing.T) {
	svc := &MockService{}
	router := newRouter(svc, "")

	rec := do(router, http.MethodGet, "/api/reports", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]int{service.DefaultListLimit, 0}, svc.listArgs)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/reports?limit=10&offset=20", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]int{10, 20}, svc.listArgs)

	rec = do(router, http.MethodGet, "/api/reports?limit=ten", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.listErr = fmt.Errorf("%w: limit must be between 1 and 200", domain.ErrInvalidInput)
	rec = do(router, http.MethodGet, "/api/reports?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLookup(t *testing.T) {
	svc := &MockService{}
	rec := do(newRouter(svc, ""), http.MethodGet, "/api/reports/lookup/%2B911401234567?type=phone", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{"+911401234567", "phone"}, svc.lookupArgs)

	rec = do(newRouter(svc, ""), http.MethodGet, "/api/reports/lookup/100%25off?type=other", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{"100%off", "other"}, svc.lookupArgs)

	rec = do(newRouter(svc, ""), http.MethodGet, "/api/reports/lookup/win%2Fprize%2520now?type=other", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{"win/prize%20now", "other"}, svc.lookupArgs)
}

func TestAnalyze(t *testing.T) {
	router := newRouter(&MockService{}, "")

	rec := do(router, http.MethodPost, "/api/analysis", `{"message":"Your KYC expires today, click here"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scam_type":"KYC fraud"`)

	rec = do(router, http.MethodPost, "/api/analysis", `{"message":"hi"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := do(newRouter(&MockService{}, ""), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	r := chi.NewRouter()
	httpHandler.NewHandler(&MockService{}, zap.NewNop(), "", httpHandler.WithClassifierState(func() string { return "open" })).RegisterRoutes(r)
	rec = do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","classifier":"open"}`, rec.Body.String())
}
