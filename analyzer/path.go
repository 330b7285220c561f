package analyzer

import (
	"net/url"
	"path"
	"strings"
)

const (
	executablePayloadScore = 25
	embeddedCredsScore     = 15
	encodedPathScore       = 10
	pathAnalysisCap        = 30

	encodedRuneThreshold = 3
)

// executableExtensions are payload types that have no business behind a tapped
// link on a phone.
var executableExtensions = map[string]struct{}{
	".apk": {},
	".exe": {},
	".msi": {},
	".scr": {},
	".bat": {},
	".cmd": {},
	".jar": {},
}

// scorePath inspects the URL beyond the hostname: direct executable payloads,
// userinfo tricks ("https://bank.com@evil.xyz"), and heavy percent-encoding.
func scorePath(u *url.URL) (int, []string) {
	if u == nil {
		return 0, nil
	}

	score := 0
	var reasons []string

	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
		if _, ok := executableExtensions[ext]; ok {
			score += executablePayloadScore
			reasons = append(reasons, "link delivers an executable file ("+ext+")")
		}
	}

	if u.User != nil {
		score += embeddedCredsScore
		reasons = append(reasons, "URL embeds credentials before the hostname")
	}

	if strings.Count(u.EscapedPath(), "%") >= encodedRuneThreshold {
		score += encodedPathScore
		reasons = append(reasons, "heavily encoded URL path")
	}

	if score > pathAnalysisCap {
		score = pathAnalysisCap
	}

	return score, reasons
}

// HasExecutablePayload reports whether the URL path ends in a known executable
// extension. The interception pipeline uses it for its malware-pattern check.
func HasExecutablePayload(rawURL string) bool {
	_, u := Normalize(rawURL)
	if u == nil {
		return false
	}

	_, ok := executableExtensions[strings.ToLower(path.Ext(u.Path))]

	return ok
}
