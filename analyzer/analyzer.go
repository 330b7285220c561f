// Package analyzer implements the local URL risk-scoring engine: hostname
// normalization with confusable folding, brand impersonation matching,
// structural and TLD heuristics, and tiered keyword scoring, combined into a
// bounded 0-100 score with a threat-level verdict.
//
// Analysis is a pure function of the input URL: no network calls are made and
// the same input always produces the same result.
package analyzer

import (
	"io"

	"github.com/rs/zerolog"
)

// Score thresholds mapping the aggregate score to a threat level.
const (
	warningThreshold = 35
	dangerThreshold  = 50

	maxScore = 100
)

// Analyzer scores URLs against the local heuristics. Safe for concurrent use;
// all state is read-only after construction.
type Analyzer struct {
	brands []KnownBrand
	logger zerolog.Logger
}

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithBrands replaces the curated brand set, mainly for tests.
func WithBrands(brands []KnownBrand) Option {
	return func(a *Analyzer) {
		if len(brands) > 0 {
			a.brands = brands
		}
	}
}

// WithLogger sets the logger used for internal failure reporting.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer with the default brand set.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		brands: defaultBrands,
		logger: zerolog.New(io.Discard),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze scores a single URL. Malformed input never fails: unparseable
// strings degrade to a best-effort normalized form and proceed through
// scoring. An internal panic is caught at this boundary and mapped to a
// conservative safe result so a plumbing bug can never fabricate a verdict.
func (a *Analyzer) Analyze(rawURL string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Interface("panic", r).Str("url", rawURL).Msg("analyzer panic recovered")
			result = Result{
				URL:         rawURL,
				Score:       0,
				ThreatLevel: ThreatSafe,
				Reasons:     []string{"analysis failed internally; defaulting to safe"},
			}
		}
	}()

	nh, parsed := Normalize(rawURL)

	var breakdown ScoreBreakdown
	var reasons []string

	collect := func(score int, rs []string) int {
		reasons = append(reasons, rs...)
		return score
	}

	breakdown.BrandImpersonationScore = collect(a.scoreBrand(nh))
	breakdown.TLDScore = collect(scoreTLD(nh))
	breakdown.StructureScore = collect(scoreStructure(nh))
	breakdown.KeywordScore = collect(scoreKeywords(nh, parsed))
	breakdown.PathAnalysisScore = collect(scorePath(parsed))

	score := clampScore(breakdown.Total())
	level := ClassifyScore(score)

	return Result{
		URL:          rawURL,
		Score:        score,
		ThreatLevel:  level,
		IsSuspicious: level != ThreatSafe,
		Details:      breakdown,
		Reasons:      reasons,
	}
}

// ClassifyScore maps an aggregate score to its threat level. The blocked level
// is never produced here; it is a separate deterministic override owned by the
// decision pipeline.
func ClassifyScore(score int) ThreatLevel {
	switch {
	case score >= dangerThreshold:
		return ThreatDanger
	case score >= warningThreshold:
		return ThreatWarning
	default:
		return ThreatSafe
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
