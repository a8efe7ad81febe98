package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scamreg_reports_submitted_total",
		Help: "Reports persisted, by risk level",
	}, []string{"level"})

	riskScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scamreg_risk_score",
		Help:    "Distribution of computed risk scores",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	classifierCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scamreg_classifier_calls_total",
		Help: "AI classifier calls by outcome (ok, unavailable)",
	}, []string{"outcome"})

	storeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scamreg_store_errors_total",
		Help: "Report store failures by operation",
	}, []string{"op"})
)

// ObserveReport records a persisted report.
func ObserveReport(level string, score int) {
	reportsSubmitted.WithLabelValues(level).Inc()
	riskScores.Observe(float64(score))
}

// ObserveClassifier records one classifier outcome.
func ObserveClassifier(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "unavailable"
	}
	classifierCalls.WithLabelValues(outcome).Inc()
}

// ObserveStoreError records a failed store operation.
func ObserveStoreError(op string) {
	storeErrors.WithLabelValues(op).Inc()
}
