package analyzer

// ThreatLevel is the verdict category assigned to an analyzed URL.
type ThreatLevel string

const (
	// ThreatSafe means the URL showed no meaningful risk signals
	ThreatSafe ThreatLevel = "safe"
	// ThreatWarning means the URL accumulated enough signals to warrant a confirmation step
	ThreatWarning ThreatLevel = "warning"
	// ThreatDanger means the URL is very likely malicious
	ThreatDanger ThreatLevel = "danger"
	// ThreatBlocked is reserved for deterministic denylist or malware-pattern matches
	// and is never produced by the score thresholds alone
	ThreatBlocked ThreatLevel = "blocked"
)

// ScoreBreakdown records how much each heuristic contributed to the total score.
// Every field is non-negative and individually capped by its scorer.
type ScoreBreakdown struct {
	BrandImpersonationScore int `json:"brand_impersonation_score"`
	TLDScore                int `json:"tld_score"`
	StructureScore          int `json:"structure_score"`
	KeywordScore            int `json:"keyword_score"`
	PathAnalysisScore       int `json:"path_analysis_score"`
}

// Total sums the breakdown fields without clamping.
func (b ScoreBreakdown) Total() int {
	return b.BrandImpersonationScore + b.TLDScore + b.StructureScore + b.KeywordScore + b.PathAnalysisScore
}

// Result is the outcome of analyzing a single URL. Reasons are ordered by the
// sequence the checks ran in; the order matters for display, not for scoring.
type Result struct {
	URL          string         `json:"url"`
	Score        int            `json:"score"`
	ThreatLevel  ThreatLevel    `json:"threat_level"`
	IsSuspicious bool           `json:"is_suspicious"`
	Details      ScoreBreakdown `json:"details"`
	Reasons      []string       `json:"reasons,omitempty"`
}

// NormalizedHost is the derived view of a hostname used by the scorers. It is
// recomputed per request and never persisted.
type NormalizedHost struct {
	// Raw is the input string after trimming and lowercasing
	Raw string `json:"raw"`
	// Host is the display hostname with any leading www. label removed
	Host string `json:"host"`
	// ASCIIForm is the confusable-folded comparison form used only for brand matching
	ASCIIForm string `json:"ascii_form"`
	// WasPunycode reports whether any label carried the xn-- ACE prefix
	WasPunycode bool `json:"was_punycode"`
	// WasNonASCII reports whether the decoded hostname contained non-ASCII runes
	WasNonASCII bool `json:"was_non_ascii"`
}

// KnownBrand describes a brand the matcher protects against impersonation.
type KnownBrand struct {
	// Name is the lowercase brand token looked for in hostnames
	Name string
	// OfficialDomains are the brand's legitimate registrable domains; a host equal
	// to or under one of these never scores as impersonation
	OfficialDomains []string
}
