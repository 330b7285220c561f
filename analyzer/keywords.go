package analyzer

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	highKeywordWeight = 10
	highKeywordCap    = 20
	lowKeywordWeight  = 5
	lowKeywordCap     = 10
	keywordOverallCap = 25

	// minDistinctKeywords is the number of distinct keyword hits required
	// before the component scores at all. A single "login" anywhere is too
	// common to act on.
	minDistinctKeywords = 2
)

// highRiskKeywords are credential-harvesting terms.
var highRiskKeywords = map[string]struct{}{
	"login":    {},
	"signin":   {},
	"verify":   {},
	"secure":   {},
	"account":  {},
	"password": {},
	"banking":  {},
	"confirm":  {},
	"update":   {},
	"reset":    {},
	"auth":     {},
	"wallet":   {},
}

// lowRiskKeywords are softer social-engineering terms.
var lowRiskKeywords = map[string]struct{}{
	"support":  {},
	"service":  {},
	"help":     {},
	"customer": {},
	"center":   {},
	"online":   {},
	"portal":   {},
	"official": {},
	"bonus":    {},
	"promo":    {},
}

// scoreKeywords matches tokens from the host labels and path segments against
// the two keyword tiers. Query-string content is deliberately excluded so that
// legitimate tracking parameters never contribute.
func scoreKeywords(nh NormalizedHost, u *url.URL) (int, []string) {
	tokens := hostTokens(nh.Host)
	if u != nil {
		tokens = append(tokens, pathTokens(u)...)
	}

	highHits := make(map[string]struct{})
	lowHits := make(map[string]struct{})

	for _, tok := range tokens {
		if _, ok := highRiskKeywords[tok]; ok {
			highHits[tok] = struct{}{}
			continue
		}
		if _, ok := lowRiskKeywords[tok]; ok {
			lowHits[tok] = struct{}{}
		}
	}

	if len(highHits)+len(lowHits) < minDistinctKeywords {
		return 0, nil
	}

	high := len(highHits) * highKeywordWeight
	if high > highKeywordCap {
		high = highKeywordCap
	}

	low := len(lowHits) * lowKeywordWeight
	if low > lowKeywordCap {
		low = lowKeywordCap
	}

	score := high + low
	if score > keywordOverallCap {
		score = keywordOverallCap
	}

	n := len(highHits) + len(lowHits)

	return score, []string{fmt.Sprintf("%d suspicious keywords in domain or path", n)}
}

// pathTokens splits the URL path into lowercase alphanumeric tokens. The query
// string is not consulted.
func pathTokens(u *url.URL) []string {
	return strings.FieldsFunc(strings.ToLower(u.Path), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}
