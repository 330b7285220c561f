package analyzer

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	// brandBaseScore is assigned to any brand impersonation match
	brandBaseScore = 40
	// brandReducedScore replaces the base score when the host otherwise looks clean
	brandReducedScore = brandBaseScore / 2

	// standaloneNameLength is the brand-name length at or below which a match
	// must appear as a standalone host token rather than a substring
	standaloneNameLength = 3

	// cleanHostMaxHyphens and cleanHostMaxLabels bound the "clean structure"
	// test used for the context-aware score reduction
	cleanHostMaxHyphens = 1
	cleanHostMaxLabels  = 3
)

// defaultBrands is the curated set of brands the matcher protects. Official
// domains act as a false-positive guard: hosts on or under them never score.
var defaultBrands = []KnownBrand{
	{Name: "google", OfficialDomains: []string{"google.com", "google.co.id", "goo.gl"}},
	{Name: "facebook", OfficialDomains: []string{"facebook.com", "fb.com", "fb.me"}},
	{Name: "instagram", OfficialDomains: []string{"instagram.com"}},
	{Name: "whatsapp", OfficialDomains: []string{"whatsapp.com", "wa.me"}},
	{Name: "paypal", OfficialDomains: []string{"paypal.com", "paypal.me"}},
	{Name: "amazon", OfficialDomains: []string{"amazon.com", "amzn.to"}},
	{Name: "apple", OfficialDomains: []string{"apple.com", "icloud.com"}},
	{Name: "microsoft", OfficialDomains: []string{"microsoft.com", "live.com", "outlook.com"}},
	{Name: "netflix", OfficialDomains: []string{"netflix.com"}},
	{Name: "telegram", OfficialDomains: []string{"telegram.org", "t.me"}},
	{Name: "tokopedia", OfficialDomains: []string{"tokopedia.com"}},
	{Name: "shopee", OfficialDomains: []string{"shopee.co.id", "shopee.com"}},
	{Name: "gojek", OfficialDomains: []string{"gojek.com", "gojek.co.id"}},
	{Name: "dana", OfficialDomains: []string{"dana.id"}},
	{Name: "ovo", OfficialDomains: []string{"ovo.id"}},
	{Name: "bca", OfficialDomains: []string{"bca.co.id", "klikbca.com"}},
	{Name: "bni", OfficialDomains: []string{"bni.co.id"}},
	{Name: "bri", OfficialDomains: []string{"bri.co.id"}},
	{Name: "mandiri", OfficialDomains: []string{"bankmandiri.co.id"}},
}

// scoreBrand checks the host against every known brand and returns the single
// highest impersonation score with its reasons. Multiple brand matches never
// sum; only the strongest one counts.
func (a *Analyzer) scoreBrand(nh NormalizedHost) (int, []string) {
	best := 0
	var bestReason string

	for _, brand := range a.brands {
		if isOfficialDomain(nh.Host, brand) {
			// The real thing, or a subdomain of it. Stop before any fuzzy
			// logic gets a chance to misfire.
			continue
		}

		matched, how := matchBrand(nh, brand)
		if !matched {
			continue
		}

		score := brandBaseScore
		if a.hasCleanContext(nh.Host) {
			score = brandReducedScore
		}

		if score > best {
			best = score
			bestReason = fmt.Sprintf("hostname %s brand %q", how, brand.Name)
		}
	}

	if best == 0 {
		return 0, nil
	}

	return best, []string{bestReason}
}

// isOfficialDomain reports whether the host is one of the brand's official
// domains or a subdomain of one.
func isOfficialDomain(host string, brand KnownBrand) bool {
	for _, d := range brand.OfficialDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// matchBrand applies the three detection rules in order: standalone-token for
// short names, substring for longer names, then bounded edit distance on the
// confusable-folded labels.
func matchBrand(nh NormalizedHost, brand KnownBrand) (bool, string) {
	name := brand.Name

	if len(name) <= standaloneNameLength {
		// Short names only match as a whole token, so "abcadef.com" does not
		// trip on "bca" while "bca-promo.xyz" does.
		for _, tok := range hostTokens(nh.Host) {
			if tok == name {
				return true, "contains"
			}
		}
		for _, tok := range hostTokens(nh.ASCIIForm) {
			if tok == name {
				return true, "imitates"
			}
		}
		return false, ""
	}

	if strings.Contains(nh.Host, name) {
		return true, "contains"
	}
	if strings.Contains(nh.ASCIIForm, name) {
		return true, "imitates"
	}

	threshold := editThreshold(name)
	for _, label := range strings.Split(nh.ASCIIForm, ".") {
		if label == "" || absInt(len(label)-len(name)) > threshold {
			continue
		}
		if levenshtein.ComputeDistance(label, name) <= threshold {
			return true, "resembles"
		}
	}

	return false, ""
}

// editThreshold scales the allowed Levenshtein distance with brand-name length.
func editThreshold(name string) int {
	if len(name) >= 6 {
		return 2
	}
	return 1
}

// hasCleanContext reports whether the host structure is unremarkable enough to
// halve a brand match: low-abuse TLD, at most one hyphen, shallow label depth.
func (a *Analyzer) hasCleanContext(host string) bool {
	if isRiskyTLD(host) {
		return false
	}
	if strings.Count(host, "-") > cleanHostMaxHyphens {
		return false
	}
	return len(strings.Split(host, ".")) <= cleanHostMaxLabels
}

// hostTokens splits a hostname into tokens on both dots and hyphens.
func hostTokens(host string) []string {
	return strings.FieldsFunc(host, func(r rune) bool {
		return r == '.' || r == '-'
	})
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
