package risk

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy holds every constant that influences a score. A Policy is never
// mutated after NewScorer receives it; changing a weight or a list means
// shipping a new Version.
type Policy struct {
	Version string  `yaml:"version"`
	Weights Weights `yaml:"weights"`

	Keywords []Keyword `yaml:"keywords"`
	// KeywordSaturation is the number of distinct keyword hits that yields a
	// keyword sub-score of 100.
	KeywordSaturation int `yaml:"keyword_saturation"`

	// FrequencyIncrement is added per prior report, capped at 100.
	FrequencyIncrement int `yaml:"frequency_increment"`

	// AINotableThreshold is the lowest confidence that earns an AI factor.
	AINotableThreshold float64 `yaml:"ai_notable_threshold"`

	Phone   PhoneRules   `yaml:"phone"`
	UPI     UPIRules     `yaml:"upi"`
	Website WebsiteRules `yaml:"website"`
	Email   EmailRules   `yaml:"email"`
}

// Weights are the layer weights of the composite score.
type Weights struct {
	Keyword   float64 `yaml:"keyword"`
	Pattern   float64 `yaml:"pattern"`
	Frequency float64 `yaml:"frequency"`
	AI        float64 `yaml:"ai"`
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.Keyword + w.Pattern + w.Frequency + w.AI
}

// Redistribute returns the weights to use for one computation. Without an AI
// signal the AI weight is spread over the other layers in proportion to their
// own weights, so the result still sums to 1.
func (w Weights) Redistribute(aiAvailable bool) Weights {
	if aiAvailable {
		return w
	}

	rest := w.Keyword + w.Pattern + w.Frequency
	return Weights{
		Keyword:   w.Keyword / rest,
		Pattern:   w.Pattern / rest,
		Frequency: w.Frequency / rest,
	}
}

// Keyword is a scam-indicator term. Label is what the factor string shows;
// several spellings may share one label and then count as one hit.
type Keyword struct {
	Term  string `yaml:"term"`
	Label string `yaml:"label"`
}

// PhoneRules scores phone numbers.
type PhoneRules struct {
	SpamPrefixes     []string `yaml:"spam_prefixes"`
	SpamPrefixPoints int      `yaml:"spam_prefix_points"`
	HomeCountryCode  int      `yaml:"home_country_code"`
	ForeignPoints    int      `yaml:"foreign_points"`
}

// UPIRules scores UPI handles (local@provider).
type UPIRules struct {
	ImpersonationTerms    []string `yaml:"impersonation_terms"`
	ImpersonationPoints   int      `yaml:"impersonation_points"`
	NumericOnlyPoints     int      `yaml:"numeric_only_points"`
	RandomHandleMinLength int      `yaml:"random_handle_min_length"`
	RandomHandlePoints    int      `yaml:"random_handle_points"`
	KnownProviders        []string `yaml:"known_providers"`
	UnknownProviderPoints int      `yaml:"unknown_provider_points"`
	MalformedPoints       int      `yaml:"malformed_points"`
}

// BrandDomain lists the only hosts allowed to carry a brand name.
type BrandDomain struct {
	Brand    string   `yaml:"brand"`
	Official []string `yaml:"official"`
}

// WebsiteRules scores websites and URLs.
type WebsiteRules struct {
	SuspiciousTLDs           []string      `yaml:"suspicious_tlds"`
	SuspiciousTLDPoints      int           `yaml:"suspicious_tld_points"`
	Shorteners               []string      `yaml:"shorteners"`
	ShortenerPoints          int           `yaml:"shortener_points"`
	IPHostPoints             int           `yaml:"ip_host_points"`
	PunycodePoints           int           `yaml:"punycode_points"`
	Brands                   []BrandDomain `yaml:"brands"`
	BrandImpersonationPoints int           `yaml:"brand_impersonation_points"`
}

// EmailRules scores email addresses.
type EmailRules struct {
	DisposableDomains    []string `yaml:"disposable_domains"`
	DisposablePoints     int      `yaml:"disposable_points"`
	FreeProviders        []string `yaml:"free_providers"`
	OfficialTerms        []string `yaml:"official_terms"`
	OfficialOnFreePoints int      `yaml:"official_on_free_points"`
	SuspiciousTLDPoints  int      `yaml:"suspicious_tld_points"`
	MalformedPoints      int      `yaml:"malformed_points"`
}

// LoadPolicy reads a policy from a YAML file and validates it.
func LoadPolicy(path string) (Policy, error) {
	var p Policy

	file, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("failed to open scoring policy: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return p, fmt.Errorf("failed to decode scoring policy: %w", err)
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("scoring policy %s: %w", path, err)
	}

	return p, nil
}

// Validate checks the invariants the scorer relies on.
func (p Policy) Validate() error {
	if p.Version == "" {
		return errors.New("version is required")
	}

	w := p.Weights
	if w.Keyword < 0 || w.Pattern < 0 || w.Frequency < 0 || w.AI < 0 {
		return errors.New("weights must not be negative")
	}
	if math.Abs(w.Sum()-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %.4f", w.Sum())
	}
	if w.Keyword+w.Pattern+w.Frequency <= 0 {
		return errors.New("non-AI weights must be positive")
	}

	if len(p.Keywords) == 0 {
		return errors.New("keyword list is empty")
	}
	for i, k := range p.Keywords {
		if strings.TrimSpace(k.Term) == "" || k.Label == "" {
			return fmt.Errorf("keyword %d needs both term and label", i)
		}
	}

	if p.KeywordSaturation <= 0 {
		return errors.New("keyword_saturation must be positive")
	}
	if p.FrequencyIncrement <= 0 {
		return errors.New("frequency_increment must be positive")
	}
	if p.AINotableThreshold < 0 || p.AINotableThreshold > 1 {
		return errors.New("ai_notable_threshold must be within [0,1]")
	}

	if p.UPI.RandomHandleMinLength <= 0 {
		return errors.New("upi.random_handle_min_length must be positive")
	}

	points := map[string]int{
		"phone.spam_prefix_points":           p.Phone.SpamPrefixPoints,
		"phone.foreign_points":               p.Phone.ForeignPoints,
		"upi.impersonation_points":           p.UPI.ImpersonationPoints,
		"upi.numeric_only_points":            p.UPI.NumericOnlyPoints,
		"upi.random_handle_points":           p.UPI.RandomHandlePoints,
		"upi.unknown_provider_points":        p.UPI.UnknownProviderPoints,
		"upi.malformed_points":               p.UPI.MalformedPoints,
		"website.suspicious_tld_points":      p.Website.SuspiciousTLDPoints,
		"website.shortener_points":           p.Website.ShortenerPoints,
		"website.ip_host_points":             p.Website.IPHostPoints,
		"website.punycode_points":            p.Website.PunycodePoints,
		"website.brand_impersonation_points": p.Website.BrandImpersonationPoints,
		"email.disposable_points":            p.Email.DisposablePoints,
		"email.official_on_free_points":      p.Email.OfficialOnFreePoints,
		"email.suspicious_tld_points":        p.Email.SuspiciousTLDPoints,
		"email.malformed_points":             p.Email.MalformedPoints,
	}
	for name, v := range points {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}

	return nil
}
