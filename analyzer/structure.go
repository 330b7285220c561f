package analyzer

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const (
	// ipLiteralScore is assigned when the host is a bare IP address
	ipLiteralScore = 20
	// punycodeScore is assigned when any label carries the ACE prefix
	punycodeScore = 15
	// deepSubdomainScore is added when the label count exceeds deepSubdomainLabels
	deepSubdomainScore  = 10
	deepSubdomainLabels = 4
	// hyphenScore is added when the registrable label carries hyphenThreshold or more hyphens
	hyphenScore     = 10
	hyphenThreshold = 3

	componentCap = 100
)

// scoreStructure evaluates hostname shape: IP-literal hosts, subdomain depth,
// hyphen density, and internationalized labels. Additive within the component,
// capped before folding into the breakdown.
func scoreStructure(nh NormalizedHost) (int, []string) {
	host := nh.Host
	if host == "" {
		return 0, nil
	}

	score := 0
	var reasons []string

	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		return ipLiteralScore, []string{"host is a raw IP address instead of a domain name"}
	}

	if nh.WasPunycode {
		score += punycodeScore
		reasons = append(reasons, "internationalized (Punycode) domain name")
	}

	if labels := strings.Split(host, "."); len(labels) > deepSubdomainLabels {
		score += deepSubdomainScore
		reasons = append(reasons, "unusually deep subdomain nesting")
	}

	if strings.Count(displayLabel(registrableLabel(host)), "-") >= hyphenThreshold {
		score += hyphenScore
		reasons = append(reasons, "excessive hyphens in domain name")
	}

	if score > componentCap {
		score = componentCap
	}

	return score, reasons
}

// displayLabel decodes an ACE label so hyphen counting sees what the user
// sees; the xn-- prefix and the encoded-suffix hyphen are artifacts of the
// encoding, not of the registered name.
func displayLabel(label string) string {
	if !strings.HasPrefix(label, acePrefix) {
		return label
	}

	if decoded, err := idna.Lookup.ToUnicode(label); err == nil && decoded != "" {
		return decoded
	}

	return strings.TrimPrefix(label, acePrefix)
}

// registrableLabel returns the leftmost label of the registrable domain, e.g.
// "bca-login-verify" for "m.bca-login-verify.xyz". Falls back to the first
// host label when the public suffix list cannot place the host.
func registrableLabel(host string) string {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		parts := strings.Split(host, ".")
		return parts[0]
	}

	suffix, _ := publicsuffix.PublicSuffix(etld1)

	return strings.TrimSuffix(etld1, "."+suffix)
}
