package risk

// Confidence is the optional AI scam probability. The zero value is "absent",
// which is a normal state: the classifier may be switched off or down.
type Confidence struct {
	p  float64
	ok bool
}

// NoConfidence is the absent AI signal.
func NoConfidence() Confidence {
	return Confidence{}
}

// ConfidenceOf wraps a probability in [0,1]. Out-of-range values are rejected
// by Scorer.Score, not here.
func ConfidenceOf(p float64) Confidence {
	return Confidence{p: p, ok: true}
}

// Value returns the probability and whether it is present.
func (c Confidence) Value() (float64, bool) {
	return c.p, c.ok
}
