package domain

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used to parse phone numbers written without a country code.
const DefaultRegion = "IN"

var (
	dialableRe  = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
	phoneNoise  = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	schemeStrip = regexp.MustCompile(`^(?i)[a-z][a-z0-9+.-]*://`)
)

// NormalizeIdentifier returns the canonical stored form of an identifier.
// Counting and lookups must always go through this function so they agree
// with the values that were persisted.
func NormalizeIdentifier(t IdentifierType, value string) string {
	value = strings.TrimSpace(value)

	switch t {
	case IdentifierPhone:
		return normalizePhone(value)
	case IdentifierUPI:
		return value
	case IdentifierEmail:
		return strings.ToLower(value)
	case IdentifierWebsite:
		v := schemeStrip.ReplaceAllString(value, "")
		v = strings.TrimRight(v, "/")
		return strings.ToLower(v)
	default:
		return value
	}
}

func normalizePhone(value string) string {
	if value == "" {
		return value
	}

	num, err := phonenumbers.Parse(value, DefaultRegion)
	if err != nil {
		return value
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}

// InferIdentifierType guesses the type of an untyped identifier, as typed into
// the lookup box.
func InferIdentifierType(value string) IdentifierType {
	v := strings.TrimSpace(value)
	if v == "" {
		return IdentifierOther
	}

	if at := strings.LastIndex(v, "@"); at >= 0 {
		if strings.Contains(v[at+1:], ".") {
			return IdentifierEmail
		}
		return IdentifierUPI
	}

	if dialableRe.MatchString(phoneNoise.Replace(v)) {
		return IdentifierPhone
	}

	if strings.Contains(v, ".") && !strings.ContainsAny(v, " \t") {
		return IdentifierWebsite
	}

	return IdentifierOther
}
