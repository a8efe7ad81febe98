// Package classifier talks to the external AI scam classifier. Every failure
// mode (no key, transport error, timeout, malformed answer) ends up as
// domain.ErrClassifierUnavailable so callers can fall back to rule scoring.
package classifier

import (
	"context"
	"errors"

	"github.com/rgdevment/scam-registry/internal/domain"
)

// ErrUnavailable is returned by classifiers that cannot answer at all.
var ErrUnavailable = domain.ErrClassifierUnavailable

// Request is the text to classify plus optional identifier context.
type Request struct {
	Text            string
	IdentifierType  domain.IdentifierType
	IdentifierValue string
}

// Result is a classifier verdict.
type Result struct {
	IsScam      bool    `json:"is_scam"`
	Confidence  float64 `json:"confidence"`
	ScamType    string  `json:"scam_type"`
	Explanation string  `json:"explanation"`
	Advice      string  `json:"advice"`
}

// Classifier is any AI backend able to judge a piece of text.
type Classifier interface {
	Classify(ctx context.Context, req Request) (*Result, error)
}

// ScamProbability turns the verdict into the probability that the text is a
// scam: a confident "not a scam" is a low probability, not a missing one.
func (r *Result) ScamProbability() float64 {
	if r.IsScam {
		return r.Confidence
	}
	return 1 - r.Confidence
}

// Analysis converts the verdict to its stored form.
func (r *Result) Analysis() domain.AIAnalysis {
	scamType := r.ScamType
	if scamType == "" {
		scamType = "unknown"
	}
	return domain.AIAnalysis{
		IsScam:      r.IsScam,
		Confidence:  r.Confidence,
		ScamType:    scamType,
		Explanation: r.Explanation,
		Advice:      r.Advice,
	}
}

// UnavailableAnalysis is what users see when the classifier could not answer.
func UnavailableAnalysis(err error) domain.AIAnalysis {
	reason := "AI classifier unavailable"
	if err != nil {
		reason = err.Error()
	}

	explanation := "AI analysis failed."
	advice := "The AI service is temporarily unavailable. Risk score is based on pattern matching only."
	if errors.Is(err, errNoAPIKey) {
		explanation = "AI analysis unavailable: no API key configured."
		advice = "Set the GEMINI_API_KEY environment variable to enable AI analysis."
	}

	return domain.AIAnalysis{
		ScamType:    "unknown",
		Explanation: explanation,
		Advice:      advice,
		Error:       &reason,
	}
}
