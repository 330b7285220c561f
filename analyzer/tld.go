package analyzer

import (
	"fmt"
	"strings"
)

// riskyTLDScore is assigned when the host ends in a high-abuse TLD.
const riskyTLDScore = 20

// riskyTLDs is the fixed set of top-level domains with a documented history of
// abuse. General-purpose TLDs with large legitimate populations (.info, .net,
// .org) are deliberately absent; that exclusion is covered by tests.
var riskyTLDs = map[string]struct{}{
	"xyz":   {},
	"top":   {},
	"click": {},
	"win":   {},
	"loan":  {},
	"buzz":  {},
	"icu":   {},
	"cam":   {},
	"rest":  {},
	"tk":    {},
	"ml":    {},
	"ga":    {},
	"cf":    {},
	"gq":    {},
}

// scoreTLD flags hosts under a high-abuse top-level domain.
func scoreTLD(nh NormalizedHost) (int, []string) {
	if !isRiskyTLD(nh.Host) {
		return 0, nil
	}

	tld := lastLabel(nh.Host)

	return riskyTLDScore, []string{fmt.Sprintf("domain uses high-abuse TLD .%s", tld)}
}

func isRiskyTLD(host string) bool {
	_, ok := riskyTLDs[lastLabel(host)]
	return ok
}

func lastLabel(host string) string {
	if idx := strings.LastIndex(host, "."); idx >= 0 {
		return host[idx+1:]
	}
	return host
}
