package risk

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/rgdevment/scam-registry/internal/domain"
)

// patternHits accumulates rule hits for one identifier.
type patternHits struct {
	points  int
	factors []string
}

func (h *patternHits) add(points int, factor string) {
	h.points += points
	h.factors = append(h.factors, factor)
}

// patternScore dispatches to the rule set of the identifier type.
func (s *Scorer) patternScore(t domain.IdentifierType, value string) (int, []string) {
	var hits patternHits

	switch t {
	case domain.IdentifierPhone:
		s.phoneRules(value, &hits)
	case domain.IdentifierUPI:
		s.upiRules(value, &hits)
	case domain.IdentifierWebsite:
		s.websiteRules(value, &hits)
	case domain.IdentifierEmail:
		s.emailRules(value, &hits)
	case domain.IdentifierOther:
	}

	return min(hits.points, 100), hits.factors
}

func (s *Scorer) phoneRules(value string, hits *patternHits) {
	rules := s.policy.Phone

	countryCode, national := splitPhone(value, rules.HomeCountryCode)

	if countryCode == rules.HomeCountryCode {
		for _, prefix := range rules.SpamPrefixes {
			if strings.HasPrefix(national, prefix) {
				hits.add(rules.SpamPrefixPoints, "Phone number uses known spam prefix "+prefix)
				break
			}
		}
	}

	if countryCode != 0 && countryCode != rules.HomeCountryCode {
		hits.add(rules.ForeignPoints, fmt.Sprintf("International number from country code +%d", countryCode))
	}
}

// splitPhone returns the country code and national significant number.
// Unparseable input falls back to its digits under the home country code.
func splitPhone(value string, home int) (int, string) {
	num, err := phonenumbers.Parse(value, domain.DefaultRegion)
	if err == nil {
		return int(num.GetCountryCode()), strconv.FormatUint(num.GetNationalNumber(), 10)
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
	if digits == "" {
		return 0, ""
	}

	return home, strings.TrimLeft(digits, "0")
}

func (s *Scorer) upiRules(value string, hits *patternHits) {
	rules := s.policy.UPI

	local, provider, ok := splitAt(strings.ToLower(value))
	if !ok {
		hits.add(rules.MalformedPoints, "UPI handle is malformed")
		return
	}

	for _, term := range rules.ImpersonationTerms {
		if strings.Contains(local, term) {
			hits.add(rules.ImpersonationPoints, "UPI handle impersonates "+term)
			break
		}
	}

	switch {
	case isDigits(local):
		hits.add(rules.NumericOnlyPoints, "UPI handle is numeric-only")
	case len(local) >= rules.RandomHandleMinLength && looksRandom(local):
		hits.add(rules.RandomHandlePoints, "UPI handle appears randomly generated")
	}

	if !slices.Contains(rules.KnownProviders, provider) {
		hits.add(rules.UnknownProviderPoints, "UPI handle uses unrecognised provider @"+provider)
	}
}

func (s *Scorer) websiteRules(value string, hits *patternHits) {
	rules := s.policy.Website

	host := websiteHost(value)
	if host == "" {
		return
	}

	if net.ParseIP(host) != nil {
		hits.add(rules.IPHostPoints, "Website uses a raw IP address")
	}

	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			hits.add(rules.PunycodePoints, "Website uses a punycode look-alike domain")
			break
		}
	}

	for _, shortener := range rules.Shorteners {
		if hostMatches(host, shortener) {
			hits.add(rules.ShortenerPoints, "Website uses URL shortener "+shortener)
			break
		}
	}

	if tld, ok := suspiciousTLD(host, rules.SuspiciousTLDs); ok {
		hits.add(rules.SuspiciousTLDPoints, "Website uses suspicious domain extension "+tld)
	}

	for _, brand := range rules.Brands {
		if !strings.Contains(host, brand.Brand) {
			continue
		}
		official := false
		for _, d := range brand.Official {
			if hostMatches(host, d) {
				official = true
				break
			}
		}
		if !official {
			hits.add(rules.BrandImpersonationPoints, "Website imitates brand "+brand.Brand)
			break
		}
	}
}

func (s *Scorer) emailRules(value string, hits *patternHits) {
	rules := s.policy.Email

	local, mailDomain, ok := splitAt(strings.ToLower(value))
	if !ok || !strings.Contains(mailDomain, ".") {
		hits.add(rules.MalformedPoints, "Email address is malformed")
		return
	}

	if slices.Contains(rules.DisposableDomains, mailDomain) {
		hits.add(rules.DisposablePoints, "Email uses disposable domain "+mailDomain)
	}

	if slices.Contains(rules.FreeProviders, mailDomain) {
		for _, term := range rules.OfficialTerms {
			if strings.Contains(local, term) {
				hits.add(rules.OfficialOnFreePoints, "Official-sounding address on free provider "+mailDomain)
				break
			}
		}
	}

	if tld, ok := suspiciousTLD(mailDomain, s.policy.Website.SuspiciousTLDs); ok {
		hits.add(rules.SuspiciousTLDPoints, "Email domain uses suspicious extension "+tld)
	}
}

func websiteHost(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if !strings.Contains(v, "://") {
		v = "http://" + v
	}

	u, err := url.Parse(v)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Hostname(), ".")
}

func hostMatches(host, d string) bool {
	return host == d || strings.HasSuffix(host, "."+d)
}

func suspiciousTLD(host string, tlds []string) (string, bool) {
	for _, tld := range tlds {
		if strings.HasSuffix(host, tld) {
			return tld, true
		}
	}
	return "", false
}

func splitAt(v string) (string, string, bool) {
	at := strings.LastIndex(v, "@")
	if at <= 0 || at == len(v)-1 {
		return "", "", false
	}
	return v[:at], v[at+1:], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// looksRandom reports an alphanumeric string mixing letters and digits.
func looksRandom(s string) bool {
	var letters, digits bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			letters = true
		case r >= '0' && r <= '9':
			digits = true
		default:
			return false
		}
	}
	return letters && digits
}
