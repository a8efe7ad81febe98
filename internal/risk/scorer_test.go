package risk_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgdevment/scam-registry/internal/domain"
	"github.com/rgdevment/scam-registry/internal/risk"
)

func newScorer(t *testing.T) *risk.Scorer {
	t.Helper()
	s, err := risk.NewScorer(risk.DefaultPolicy())
	require.NoError(t, err)
	return s
}

func candidate(typ domain.IdentifierType, value, description string) domain.ReportCandidate {
	return domain.ReportCandidate{IdentifierType: typ, IdentifierValue: value, Description: description}
}

func TestScore_NothingTriggers(t *testing.T) {
	s := newScorer(t)

	got, err := s.Score(candidate(domain.IdentifierOther, "unknown caller", ""), 0, risk.NoConfidence())
	require.NoError(t, err)

	assert.Equal(t, 0, got.Score)
	assert.Equal(t, domain.LevelLow, got.Level)
	assert.Empty(t, got.Factors)
	assert.NotNil(t, got.Factors)
}

func TestScore_AllLayersTrigger(t *testing.T) {
	s := newScorer(t)

	c := candidate(domain.IdentifierPhone, "+911401234567", "Caller asked me to share the OTP and KYC for my bank")
	got, err := s.Score(c, 3, risk.ConfidenceOf(0.95))
	require.NoError(t, err)

	// 0.30*60 + 0.25*60 + 0.20*60 + 0.25*95 = 68.75
	assert.Equal(t, 69, got.Score)
	assert.Equal(t, domain.LevelHigh, got.Level)
	assert.Equal(t, []string{
		"OTP keyword detected",
		"KYC keyword detected",
		"Bank keyword detected",
		"Phone number uses known spam prefix 140",
		"Reported 3 times before",
		"AI classifier rates this a likely scam (95% confidence)",
	}, got.Factors)
}

func TestScore_FrequencySaturates(t *testing.T) {
	s := newScorer(t)
	c := candidate(domain.IdentifierOther, "someone", "")

	got, err := s.Score(c, 10, risk.ConfidenceOf(0))
	require.NoError(t, err)
	assert.Equal(t, 20, got.Score)
	assert.Equal(t, domain.LevelLow, got.Level)
	assert.Equal(t, []string{"Reported 10 times before"}, got.Factors)

	// Without AI the frequency weight grows to 0.20/0.75.
	got, err = s.Score(c, 10, risk.NoConfidence())
	require.NoError(t, err)
	assert.Equal(t, 27, got.Score)
	assert.Equal(t, domain.LevelLow, got.Level)
}

func TestScore_SingularFrequencyFactor(t *testing.T) {
	s := newScorer(t)

	got, err := s.Score(candidate(domain.IdentifierOther, "someone", ""), 1, risk.NoConfidence())
	require.NoError(t, err)
	assert.Equal(t, []string{"Reported 1 time before"}, got.Factors)
}

func TestScore_InvalidInput(t *testing.T) {
	s := newScorer(t)
	c := candidate(domain.IdentifierPhone, "+911401234567", "OTP")

	_, err := s.Score(c, -1, risk.NoConfidence())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Score(candidate(domain.IdentifierPhone, "  ", "OTP"), 0, risk.NoConfidence())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Score(c, 0, risk.ConfidenceOf(1.5))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Score(c, 0, risk.ConfidenceOf(math.NaN()))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScore_AIBelowNotableThresholdHasNoFactor(t *testing.T) {
	s := newScorer(t)

	got, err := s.Score(candidate(domain.IdentifierOther, "someone", ""), 0, risk.ConfidenceOf(0.4))
	require.NoError(t, err)
	assert.Equal(t, 10, got.Score)
	assert.Empty(t, got.Factors)
}

func TestScore_Monotonic(t *testing.T) {
	s := newScorer(t)
	c := candidate(domain.IdentifierUPI, "lucky.winner@okpay", "You won a lottery, pay the processing fee")

	prev := -1
	for count := 0; count <= 12; count++ {
		got, err := s.Score(c, count, risk.ConfidenceOf(0.3))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Score, prev, "count %d", count)
		prev = got.Score
	}

	huge, err := s.Score(c, math.MaxInt64/10, risk.ConfidenceOf(0.3))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, huge.Score, prev, "huge count")

	got, err := s.Score(candidate(domain.IdentifierOther, "someone", ""), math.MaxInt64/10, risk.NoConfidence())
	require.NoError(t, err)
	assert.Equal(t, 27, got.Score)

	prev = -1
	for i := 0; i <= 20; i++ {
		got, err := s.Score(c, 2, risk.ConfidenceOf(float64(i)/20))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Score, prev, "confidence step %d", i)
		prev = got.Score
	}
}

func TestScore_Idempotent(t *testing.T) {
	s := newScorer(t)
	c := candidate(domain.IdentifierWebsite, "sbi-kyc-update.top/login", "Urgent: verify your KYC or account will be blocked")

	first, err := s.Score(c, 4, risk.ConfidenceOf(0.8))
	require.NoError(t, err)
	second, err := s.Score(c, 4, risk.ConfidenceOf(0.8))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScore_BoundsAndLevels(t *testing.T) {
	s := newScorer(t)
	descriptions := []string{
		"",
		"OTP",
		"Congratulations winner! Lottery prize of 5 crore, share OTP, PIN and CVV urgently, police arrest warrant otherwise",
	}
	values := map[domain.IdentifierType]string{
		domain.IdentifierPhone:   "+911401234567",
		domain.IdentifierUPI:     "refund9x8y7z6w@fastpay",
		domain.IdentifierWebsite: "xn--sbi-login.xyz",
		domain.IdentifierEmail:   "rbi.govt.refund@gmail.com",
		domain.IdentifierOther:   "someone",
	}

	for typ, value := range values {
		for _, d := range descriptions {
			for _, count := range []int{0, 1, 5, 50} {
				for _, ai := range []risk.Confidence{risk.NoConfidence(), risk.ConfidenceOf(0), risk.ConfidenceOf(1)} {
					got, err := s.Score(candidate(typ, value, d), count, ai)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, got.Score, 0)
					assert.LessOrEqual(t, got.Score, 100)
					assert.Equal(t, domain.LevelForScore(got.Score), got.Level)

					seen := make(map[string]bool)
					for _, f := range got.Factors {
						assert.False(t, seen[f], "duplicate factor %q", f)
						seen[f] = true
					}
					if got.Score > 0 {
						if _, ok := ai.Value(); !ok || got.Score > 25 {
							assert.NotEmpty(t, got.Factors)
						}
					}
				}
			}
		}
	}
}

func TestWeights_Redistribute(t *testing.T) {
	w := risk.DefaultPolicy().Weights

	assert.InDelta(t, 1.0, w.Redistribute(true).Sum(), 1e-9)

	r := w.Redistribute(false)
	assert.InDelta(t, 1.0, r.Sum(), 1e-9)
	assert.Zero(t, r.AI)
	assert.InDelta(t, 0.40, r.Keyword, 1e-9)
	assert.InDelta(t, 1.0/3.0, r.Pattern, 1e-9)
	assert.InDelta(t, 0.20/0.75, r.Frequency, 1e-9)
}

func TestScore_RedistributionMatchesAverageAI(t *testing.T) {
	s := newScorer(t)
	// keyword 60, pattern 60, frequency 60.
	c := candidate(domain.IdentifierPhone, "+911401234567", "OTP and KYC for my bank")

	without, err := s.Score(c, 3, risk.NoConfidence())
	require.NoError(t, err)
	withAverage, err := s.Score(c, 3, risk.ConfidenceOf(0.6))
	require.NoError(t, err)

	assert.Equal(t, 60, without.Score)
	assert.Equal(t, without.Score, withAverage.Score)
}

func TestScore_Keywords(t *testing.T) {
	s := newScorer(t)
	noAI := risk.ConfidenceOf(0)

	cases := []struct {
		name        string
		description string
		score       int
		factors     []string
	}{
		{"factors follow text order", "Your parcel is held by customs", 12, []string{"Parcel keyword detected", "Customs keyword detected"}},
		{"spellings share a label", "Update aadhaar now, aadhar link expires", 12, []string{"Aadhaar keyword detected", "Expire keyword detected"}},
		{"case-insensitive", "send otp", 6, []string{"OTP keyword detected"}},
		{"word start anchored", "shipping update", 0, []string{}},
		{"saturates at five", "OTP KYC lottery prize winner bank police", 30, []string{
			"OTP keyword detected", "KYC keyword detected", "Lottery keyword detected", "Prize keyword detected",
			"Winner keyword detected", "Bank keyword detected", "Police keyword detected",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Score(candidate(domain.IdentifierOther, "someone", tc.description), 0, noAI)
			require.NoError(t, err)
			assert.Equal(t, tc.score, got.Score)
			assert.Equal(t, tc.factors, got.Factors)
		})
	}
}

func TestScore_IdentifierPatterns(t *testing.T) {
	s := newScorer(t)
	noAI := risk.ConfidenceOf(0)

	cases := []struct {
		name    string
		typ     domain.IdentifierType
		value   string
		score   int
		factors []string
	}{
		{"phone spam prefix", domain.IdentifierPhone, "+911401234567", 15, []string{"Phone number uses known spam prefix 140"}},
		{"phone foreign", domain.IdentifierPhone, "+14155550123", 8, []string{"International number from country code +1"}},
		{"phone clean", domain.IdentifierPhone, "+919876543210", 0, []string{}},
		{"upi impersonation", domain.IdentifierUPI, "paytm.refund@ybl", 13, []string{"UPI handle impersonates paytm"}},
		{"upi numeric", domain.IdentifierUPI, "9876543210@ybl", 6, []string{"UPI handle is numeric-only"}},
		{"upi random unknown provider", domain.IdentifierUPI, "a8f3k2m9x1q@okpay", 11, []string{
			"UPI handle appears randomly generated", "UPI handle uses unrecognised provider @okpay",
		}},
		{"upi malformed", domain.IdentifierUPI, "noatsign", 8, []string{"UPI handle is malformed"}},
		{"website tld", domain.IdentifierWebsite, "free-prize.xyz", 10, []string{"Website uses suspicious domain extension .xyz"}},
		{"website tld and brand", domain.IdentifierWebsite, "sbi-kyc-update.top/login", 20, []string{
			"Website uses suspicious domain extension .top", "Website imitates brand sbi",
		}},
		{"website shortener", domain.IdentifierWebsite, "bit.ly/xyz", 8, []string{"Website uses URL shortener bit.ly"}},
		{"website raw ip", domain.IdentifierWebsite, "http://192.168.10.5/pay", 10, []string{"Website uses a raw IP address"}},
		{"website official brand", domain.IdentifierWebsite, "onlinesbi.sbi", 0, []string{}},
		{"email official on free provider", domain.IdentifierEmail, "sbi.alerts@gmail.com", 15, []string{"Official-sounding address on free provider gmail.com"}},
		{"email disposable", domain.IdentifierEmail, "winner@mailinator.com", 13, []string{"Email uses disposable domain mailinator.com"}},
		{"email suspicious tld", domain.IdentifierEmail, "info@prize.xyz", 8, []string{"Email domain uses suspicious extension .xyz"}},
		{"other never scores", domain.IdentifierOther, "sbi-kyc.top", 0, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Score(candidate(tc.typ, tc.value, ""), 0, noAI)
			require.NoError(t, err)
			assert.Equal(t, tc.score, got.Score)
			assert.Equal(t, tc.factors, got.Factors)
		})
	}
}

func TestNewScorer_InjectedPolicy(t *testing.T) {
	p := risk.DefaultPolicy()
	p.Version = "fixture"
	p.Keywords = []risk.Keyword{{Term: "gift card", Label: "Gift card"}}
	p.KeywordSaturation = 1

	s, err := risk.NewScorer(p)
	require.NoError(t, err)
	assert.Equal(t, "fixture", s.PolicyVersion())

	got, err := s.Score(candidate(domain.IdentifierOther, "someone", "Pay with a Gift Card, it is about your OTP"), 0, risk.NoConfidence())
	require.NoError(t, err)
	assert.Equal(t, 40, got.Score)
	assert.Equal(t, []string{"Gift card keyword detected"}, got.Factors)

	p.Keywords = []risk.Keyword{{Term: "+91", Label: "Indian code"}, {Term: "₹", Label: "Rupee"}}
	p.KeywordSaturation = 2
	s, err = risk.NewScorer(p)
	require.NoError(t, err)

	got, err = s.Score(candidate(domain.IdentifierOther, "someone", "call +91 now pay ₹500"), 0, risk.NoConfidence())
	require.NoError(t, err)
	assert.Equal(t, 40, got.Score)
	assert.Equal(t, []string{"Indian code keyword detected", "Rupee keyword detected"}, got.Factors)
}

func TestNewScorer_RejectsBadPolicy(t *testing.T) {
	p := risk.DefaultPolicy()
	p.Weights.AI = 0.5

	_, err := risk.NewScorer(p)
	assert.Error(t, err)

	p = risk.DefaultPolicy()
	p.KeywordSaturation = 0
	_, err = risk.NewScorer(p)
	assert.Error(t, err)

	p = risk.DefaultPolicy()
	p.Website.ShortenerPoints = -5
	_, err = risk.NewScorer(p)
	assert.ErrorContains(t, err, "website.shortener_points")

	p = risk.DefaultPolicy()
	p.Email.MalformedPoints = -1
	_, err = risk.NewScorer(p)
	assert.Error(t, err)

	p = risk.DefaultPolicy()
	p.UPI.RandomHandleMinLength = 0
	_, err = risk.NewScorer(p)
	assert.ErrorContains(t, err, "random_handle_min_length")
}

func TestLoadPolicy_ShippedAsset(t *testing.T) {
	p, err := risk.LoadPolicy(filepath.Join("..", "..", "configs", "scoring_policy.yml"))
	require.NoError(t, err)

	def := risk.DefaultPolicy()
	assert.Equal(t, def.Version, p.Version)
	assert.Equal(t, def.Weights, p.Weights)
	assert.Equal(t, def.KeywordSaturation, p.KeywordSaturation)
	assert.Equal(t, def.FrequencyIncrement, p.FrequencyIncrement)
	assert.Len(t, p.Keywords, len(def.Keywords))
}

func TestLoadPolicy_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: x\nweigths: {}\n"), 0o600))

	_, err := risk.LoadPolicy(path)
	assert.Error(t, err)
}
