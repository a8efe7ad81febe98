package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rgdevment/scam-registry/internal/domain"
	"github.com/rgdevment/scam-registry/internal/platform/http/middleware"
	"github.com/rgdevment/scam-registry/internal/service"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	service         service.Service
	logger          *zap.Logger
	apiKey          string
	classifierState func() string
}

type Option func(*Handler)

// WithClassifierState reports the classifier's availability on /health.
func WithClassifierState(state func() string) Option {
	return func(h *Handler) {
		h.classifierState = state
	}
}

// NewHandler builds the API handler. apiKey guards the write endpoints;
// leave it empty to disable the check.
func NewHandler(s service.Service, logger *zap.Logger, apiKey string, opts ...Option) *Handler {
	h := &Handler{
		service: s,
		logger:  logger,
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.APIKeyAuth(h.apiKey)).Post("/reports", h.CreateReport)
		r.Get("/reports", h.ListReports)
		r.Get("/reports/lookup/{identifier}", h.Lookup)
		r.With(middleware.APIKeyAuth(h.apiKey)).Post("/analysis", h.Analyze)
		r.Get("/dashboard/stats", h.DashboardStats)
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if h.classifierState != nil {
		body["classifier"] = h.classifierState()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.service.SubmitReport(r.Context(), service.SubmitInput{
		IdentifierType:  req.IdentifierType,
		IdentifierValue: req.IdentifierValue,
		Description:     req.Description,
		ReporterName:    req.ReporterName,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateReportResponse{
		ID:         res.ReportID,
		Message:    "Report submitted successfully",
		Risk:       res.Risk,
		AIAnalysis: res.AIAnalysis,
	})
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", service.DefaultListLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}

	reports, err := h.service.ListReports(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	// chi routes on RawPath when the request carried one, and the param is
	// still escaped only in that case.
	identifier := chi.URLParam(r, "identifier")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(identifier)
		if err != nil {
			h.writeError(w, &ValidationError{Fields: map[string]string{"identifier": "identifier is not a valid path segment"}})
			return
		}
		identifier = unescaped
	}

	result, err := h.service.Lookup(r.Context(), identifier, r.URL.Query().Get("type"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), service.AnalyzeInput{
		Message:         req.Message,
		IdentifierType:  req.IdentifierType,
		IdentifierValue: req.IdentifierValue,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON format"})
		return false
	}
	return true
}

// writeError maps service errors onto status codes. Internal details are
// logged, never returned.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: verr.Fields})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.Error("Report store unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Report store temporarily unavailable"})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
	}
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Fields: map[string]string{key: key + " must be an integer"}}
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
