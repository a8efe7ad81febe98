package risk

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/rgdevment/scam-registry/internal/domain"
)

// Scorer computes a RiskAssessment from a candidate, its report history and
// an optional AI confidence. It has no mutable state and performs no I/O, so
// a single instance is safe for concurrent use.
type Scorer struct {
	policy   Policy
	keywords []keywordMatcher
}

type keywordMatcher struct {
	label string
	re    *regexp.Regexp
}

// NewScorer validates the policy and compiles its keyword matchers.
func NewScorer(p Policy) (*Scorer, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring policy: %w", err)
	}

	matchers := make([]keywordMatcher, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		re, err := regexp.Compile(keywordPattern(k.Term))
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", k.Term, err)
		}
		matchers = append(matchers, keywordMatcher{label: k.Label, re: re})
	}

	return &Scorer{policy: p, keywords: matchers}, nil
}

// keywordPattern matches term case-insensitively. Terms starting with an
// ASCII word character are anchored at a word start so "pin" does not fire
// inside "shipping". \b is ASCII-only in RE2, so terms like "+91", "₹" or
// non-Latin words match anywhere.
func keywordPattern(term string) string {
	term = strings.TrimSpace(term)
	if term != "" && isASCIIWordByte(term[0]) {
		return `(?i)\b` + regexp.QuoteMeta(term)
	}
	return `(?i)` + regexp.QuoteMeta(term)
}

func isASCIIWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// PolicyVersion returns the version of the policy in use.
func (s *Scorer) PolicyVersion() string {
	return s.policy.Version
}

// Score returns the composite 0-100 score, its level and the triggered
// factors in layer order: keyword, pattern, frequency, AI.
func (s *Scorer) Score(c domain.ReportCandidate, historicalCount int, ai Confidence) (domain.RiskAssessment, error) {
	if historicalCount < 0 {
		return domain.RiskAssessment{}, fmt.Errorf("%w: historical count %d is negative", domain.ErrInvalidInput, historicalCount)
	}
	if strings.TrimSpace(c.IdentifierValue) == "" {
		return domain.RiskAssessment{}, fmt.Errorf("%w: identifier value is empty", domain.ErrInvalidInput)
	}
	aiValue, aiOK := ai.Value()
	if aiOK && (math.IsNaN(aiValue) || aiValue < 0 || aiValue > 1) {
		return domain.RiskAssessment{}, fmt.Errorf("%w: ai confidence %v outside [0,1]", domain.ErrInvalidInput, aiValue)
	}

	factors := newFactorList()

	kwScore, kwFactors := s.keywordScore(c.Description)
	factors.add(kwFactors...)

	patScore, patFactors := s.patternScore(c.IdentifierType, c.IdentifierValue)
	factors.add(patFactors...)

	freqScore, freqFactors := s.frequencyScore(historicalCount)
	factors.add(freqFactors...)

	aiScore, aiFactors := s.aiScore(aiValue, aiOK)
	factors.add(aiFactors...)

	w := s.policy.Weights.Redistribute(aiOK)
	total := w.Keyword*float64(kwScore) +
		w.Pattern*float64(patScore) +
		w.Frequency*float64(freqScore) +
		w.AI*float64(aiScore)

	score := int(math.Round(math.Min(math.Max(total, 0), 100)))

	return domain.RiskAssessment{
		Score:   score,
		Level:   domain.LevelForScore(score),
		Factors: factors.items,
	}, nil
}

// keywordScore counts distinct keyword labels, ordered by first appearance.
func (s *Scorer) keywordScore(description string) (int, []string) {
	if strings.TrimSpace(description) == "" {
		return 0, nil
	}

	type hit struct {
		pos   int
		label string
	}

	var hits []hit
	index := make(map[string]int)
	for _, k := range s.keywords {
		loc := k.re.FindStringIndex(description)
		if loc == nil {
			continue
		}
		if i, seen := index[k.label]; seen {
			hits[i].pos = min(hits[i].pos, loc[0])
			continue
		}
		index[k.label] = len(hits)
		hits = append(hits, hit{pos: loc[0], label: k.label})
	}

	if len(hits) == 0 {
		return 0, nil
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	factors := make([]string, 0, len(hits))
	for _, h := range hits {
		factors = append(factors, h.label+" keyword detected")
	}

	score := min(100, 100*len(hits)/s.policy.KeywordSaturation)
	return score, factors
}

func (s *Scorer) frequencyScore(count int) (int, []string) {
	if count == 0 {
		return 0, nil
	}

	// saturate before multiplying so huge counts cannot overflow
	inc := s.policy.FrequencyIncrement
	score := 100
	if count < (100+inc-1)/inc {
		score = count * inc
	}
	if count == 1 {
		return score, []string{"Reported 1 time before"}
	}
	return score, []string{fmt.Sprintf("Reported %d times before", count)}
}

func (s *Scorer) aiScore(p float64, ok bool) (int, []string) {
	if !ok {
		return 0, nil
	}

	score := int(math.Round(p * 100))
	if p < s.policy.AINotableThreshold {
		return score, nil
	}
	return score, []string{fmt.Sprintf("AI classifier rates this a likely scam (%d%% confidence)", score)}
}

// factorList keeps insertion order and drops duplicates.
type factorList struct {
	items []string
	seen  map[string]struct{}
}

func newFactorList() *factorList {
	return &factorList{items: []string{}, seen: make(map[string]struct{})}
}

func (f *factorList) add(factors ...string) {
	for _, factor := range factors {
		if _, dup := f.seen[factor]; dup {
			continue
		}
		f.seen[factor] = struct{}{}
		f.items = append(f.items, factor)
	}
}
