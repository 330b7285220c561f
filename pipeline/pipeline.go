// Package pipeline orchestrates the final verdict for an intercepted URL. It
// combines the local heuristic analyzer with the denylist, the redirect chain
// resolver, and the advisory external lookups, evaluated as a strict-order
// state machine where the first matching rule wins.
package pipeline

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/net/publicsuffix"

	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/analyzer"
	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/denylist"
	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/domainage"
	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/intelclient"
	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/redirect"
)

const (
	// confirmedThreatFloor is the minimum score once an external source
	// confirms the URL as a known threat
	confirmedThreatFloor = 80
	// redirectPenalty is added when the redirect chain itself looks abusive
	redirectPenalty = 15

	maxScore = 100

	defaultLookupTimeout = 5 * time.Second
)

// bypassSafeExtensions are payload types the heuristic fast path will still
// open without analysis. Anything else on a trusted domain drops through to
// the full pipeline.
var bypassSafeExtensions = map[string]struct{}{
	".html": {}, ".htm": {}, ".php": {}, ".asp": {}, ".aspx": {},
	".pdf": {}, ".txt": {}, ".jpg": {}, ".jpeg": {}, ".png": {},
	".gif": {}, ".webp": {}, ".svg": {}, ".mp3": {}, ".mp4": {},
}

// invitationTokens are the social-engineering hooks observed on APK-dropper
// campaigns: wedding invitations, prizes, and courier notices.
var invitationTokens = []string{
	"undangan", "invitation", "wedding", "nikah", "pernikahan",
	"resepsi", "hadiah", "prize", "gift", "paket", "kurir", "resi",
}

// URLAnalyzer scores a single URL. *analyzer.Analyzer satisfies it.
type URLAnalyzer interface {
	Analyze(rawURL string) analyzer.Result
}

// ChainResolver follows a redirect chain. *redirect.Resolver satisfies it.
type ChainResolver interface {
	Resolve(ctx context.Context, rawURL string) redirect.ChainResult
}

// DenyLookup checks a host against the current denylist snapshot.
// *denylist.Store satisfies it.
type DenyLookup interface {
	Lookup(host string) (denylist.Match, bool)
}

// IntelLookup queries the third-party threat feed. *intelclient.Client
// satisfies it.
type IntelLookup interface {
	Lookup(ctx context.Context, rawURL string) (intelclient.Signal, error)
}

// AgeLookup queries domain registration age. *domainage.Client satisfies it.
type AgeLookup interface {
	Lookup(ctx context.Context, domain string) (domainage.Age, error)
}

// Pipeline is the interception decision engine. All collaborators are
// injected; nil advisory collaborators are simply skipped.
type Pipeline struct {
	analyzer  URLAnalyzer
	resolver  ChainResolver
	deny      DenyLookup
	intel     IntelLookup
	age       AgeLookup
	whitelist *Whitelist
	history   *History

	enabled       atomic.Bool
	lookupTimeout time.Duration
	now           func() time.Time
	logger        zerolog.Logger
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithResolver sets the redirect chain resolver.
func WithResolver(r ChainResolver) Option {
	return func(p *Pipeline) {
		p.resolver = r
	}
}

// WithDenylist sets the denylist store consulted for the blocked override.
func WithDenylist(d DenyLookup) Option {
	return func(p *Pipeline) {
		p.deny = d
	}
}

// WithIntel sets the advisory threat-intel client.
func WithIntel(i IntelLookup) Option {
	return func(p *Pipeline) {
		p.intel = i
	}
}

// WithDomainAge sets the advisory registration-age client.
func WithDomainAge(a AgeLookup) Option {
	return func(p *Pipeline) {
		p.age = a
	}
}

// WithWhitelist sets the whitelist consulted for the passthrough fast paths.
func WithWhitelist(w *Whitelist) Option {
	return func(p *Pipeline) {
		p.whitelist = w
	}
}

// WithHistory sets the interception history log.
func WithHistory(h *History) Option {
	return func(p *Pipeline) {
		p.history = h
	}
}

// WithLookupTimeout bounds each advisory external lookup independently.
func WithLookupTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.lookupTimeout = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the logger used for lookup failures and decisions.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New builds a Pipeline around the given analyzer. Protection starts enabled.
func New(a URLAnalyzer, opts ...Option) *Pipeline {
	p := &Pipeline{
		analyzer:      a,
		lookupTimeout: defaultLookupTimeout,
		now:           time.Now,
		logger:        zerolog.Nop(),
	}

	if p.analyzer == nil {
		p.analyzer = analyzer.New()
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.whitelist == nil {
		p.whitelist, _ = NewWhitelist(nil)
	}

	if p.history == nil {
		p.history, _ = NewHistory(0, nil)
	}

	p.enabled.Store(true)

	return p
}

// SetEnabled toggles the global protection switch. While disabled every URL
// passes through unconditionally.
func (p *Pipeline) SetEnabled(on bool) {
	p.enabled.Store(on)
}

// Enabled reports whether protection is active.
func (p *Pipeline) Enabled() bool {
	return p.enabled.Load()
}

// Whitelist returns the whitelist the pipeline consults.
func (p *Pipeline) Whitelist() *Whitelist {
	return p.whitelist
}

// History returns the interception log.
func (p *Pipeline) History() *History {
	return p.history
}

// Intercept decides what to do with one intercepted URL. The rules run in
// strict order and the first match wins: disabled passthrough, user
// whitelist, the heuristic fast path, then full analysis with advisory
// lookups and the non-bypassable blocked override.
func (p *Pipeline) Intercept(ctx context.Context, rawURL, source string) (decision Decision, err error) {
	// Internal failures never produce a restrictive verdict on their own: the
	// fallback is allow, with the panic surfaced through the log.
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Str("url", rawURL).Msg("pipeline recovered")

			decision = Decision{Action: ActionAllow}
			err = nil
		}
	}()

	if strings.TrimSpace(rawURL) == "" {
		return Decision{}, ErrEmptyURL
	}

	if !p.enabled.Load() {
		return Decision{Action: ActionAllow, Bypassed: true, BypassReason: "protection disabled"}, nil
	}

	nh, u := analyzer.Normalize(rawURL)

	if p.whitelist.IsUserTrusted(nh.Host) {
		return Decision{Action: ActionAllow, Bypassed: true, BypassReason: "user whitelist"}, nil
	}

	if p.heuristicBypass(nh.Host, u) {
		return Decision{Action: ActionAllow, Bypassed: true, BypassReason: "trusted domain fast path"}, nil
	}

	chain := p.resolveChain(ctx, rawURL)
	finalURL := chain.FinalURL

	analysis, signals := p.gather(ctx, finalURL)

	score := analysis.Score
	reasons := analysis.Reasons

	if signals.ThreatIntel != nil && signals.ThreatIntel.IsThreat {
		if score < confirmedThreatFloor {
			score = confirmedThreatFloor
		}

		reasons = append(reasons, "flagged by threat intelligence: "+threatLabel(signals.ThreatIntel))
	}

	if signals.DomainAge != nil {
		if weight, reason := signals.DomainAge.Grade(); weight > 0 {
			score += weight

			reasons = append(reasons, reason)
		}
	}

	if chain.IsSuspiciousRedirect {
		score += redirectPenalty

		reasons = append(reasons, "suspicious redirect chain")
	}

	if score > maxScore {
		score = maxScore
	}

	level := analyzer.ClassifyScore(score)
	flags := RiskFlags{}

	finalHost := hostOf(finalURL)
	if finalHost == "" {
		finalHost = nh.Host
	}

	if p.deny != nil {
		match, ok := p.deny.Lookup(finalHost)
		if !ok && finalHost != nh.Host {
			match, ok = p.deny.Lookup(nh.Host)
		}

		if ok {
			signals.Denylist = &match
			level = analyzer.ThreatBlocked
			score = maxScore
			flags = flagsForCategory(match.Category)
			reasons = append(reasons, "domain is on the blocklist ("+string(match.Category)+")")
		}
	}

	if level != analyzer.ThreatBlocked && p.malwareDeliveryPattern(rawURL, finalURL) {
		level = analyzer.ThreatBlocked
		score = maxScore
		flags.IsMalware = true
		reasons = append(reasons, "executable payload disguised as an invitation")
	}

	analysis.Score = score
	analysis.ThreatLevel = level
	analysis.IsSuspicious = level != analyzer.ThreatSafe
	analysis.Reasons = reasons

	link := InterceptedLink{
		ID:           uuid.New(),
		OriginalURL:  rawURL,
		FinalURL:     finalURL,
		Source:       source,
		Timestamp:    p.now(),
		Analysis:     analysis,
		RedirectInfo: &chain,
		Signals:      &signals,
	}

	if appendErr := p.history.Append(link); appendErr != nil {
		p.logger.Warn().Err(appendErr).Msg("failed to persist interception record")
	}

	action := actionForLevel(level)

	p.logger.Info().
		Str("url", rawURL).
		Str("final_url", finalURL).
		Int("score", score).
		Str("threat_level", string(level)).
		Str("action", string(action)).
		Msg("interception decided")

	return Decision{Action: action, Flags: flags, Link: link}, nil
}

// heuristicBypass is the cheap "obviously safe" check: HTTPS, a system
// trusted domain, a benign payload type, and no denylist hit.
func (p *Pipeline) heuristicBypass(host string, u *url.URL) bool {
	if u == nil || u.Scheme != "https" {
		return false
	}

	if !p.whitelist.IsSystemTrusted(host) {
		return false
	}

	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
		if _, ok := bypassSafeExtensions[ext]; !ok {
			return false
		}
	}

	if p.deny != nil {
		if _, ok := p.deny.Lookup(host); ok {
			return false
		}
	}

	return true
}

func (p *Pipeline) resolveChain(ctx context.Context, rawURL string) redirect.ChainResult {
	if p.resolver == nil {
		return redirect.ChainResult{FinalURL: rawURL, Failed: true}
	}

	return p.resolver.Resolve(ctx, rawURL)
}

// gather runs the local scorer and the advisory lookups concurrently. Each
// external lookup gets its own timeout; failures are logged and dropped, so
// a dead network cannot block or bias the verdict.
func (p *Pipeline) gather(ctx context.Context, finalURL string) (analyzer.Result, ExternalSignals) {
	var (
		wg       sync.WaitGroup
		analysis analyzer.Result
		signals  ExternalSignals
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		// A scorer failure degrades to the safe zero result rather than a
		// restrictive verdict; the panic itself goes to the log.
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error().Interface("panic", r).Str("url", finalURL).Msg("scorer panicked")

				analysis = analyzer.Result{URL: finalURL, ThreatLevel: analyzer.ThreatSafe}
			}
		}()

		analysis = p.analyzer.Analyze(finalURL)
	}()

	if p.intel != nil {
		wg.Add(1)

		go func() {
			defer wg.Done()

			lctx, cancel := context.WithTimeout(ctx, p.lookupTimeout)
			defer cancel()

			sig, err := p.intel.Lookup(lctx, finalURL)
			if err != nil {
				p.logger.Debug().Err(err).Msg("threat intel lookup skipped")

				return
			}

			signals.ThreatIntel = &sig
		}()
	}

	if p.age != nil {
		if domain := registrableDomain(hostOf(finalURL)); domain != "" {
			wg.Add(1)

			go func() {
				defer wg.Done()

				lctx, cancel := context.WithTimeout(ctx, p.lookupTimeout)
				defer cancel()

				age, err := p.age.Lookup(lctx, domain)
				if err != nil {
					p.logger.Debug().Err(err).Msg("domain age lookup skipped")

					return
				}

				signals.DomainAge = &age
			}()
		}
	}

	wg.Wait()

	return analysis, signals
}

// malwareDeliveryPattern detects the APK-dropper campaign shape: an
// executable payload delivered behind invitation-style wording anywhere in
// the original or resolved URL.
func (p *Pipeline) malwareDeliveryPattern(rawURL, finalURL string) bool {
	if !analyzer.HasExecutablePayload(rawURL) && !analyzer.HasExecutablePayload(finalURL) {
		return false
	}

	haystack := strings.ToLower(rawURL + " " + finalURL)

	return lo.SomeBy(invitationTokens, func(token string) bool {
		return strings.Contains(haystack, token)
	})
}

func actionForLevel(level analyzer.ThreatLevel) Action {
	switch level {
	case analyzer.ThreatBlocked:
		return ActionBlock
	case analyzer.ThreatWarning, analyzer.ThreatDanger:
		return ActionConfirm
	default:
		return ActionAllow
	}
}

func flagsForCategory(category denylist.Category) RiskFlags {
	switch category {
	case denylist.CategoryPhishing:
		return RiskFlags{IsPhishing: true}
	case denylist.CategoryMalware:
		return RiskFlags{IsMalware: true}
	case denylist.CategoryScam, denylist.CategorySpam, denylist.CategoryGambling:
		return RiskFlags{IsScam: true}
	default:
		return RiskFlags{}
	}
}

func threatLabel(sig *intelclient.Signal) string {
	if sig.ThreatType != "" {
		return sig.ThreatType
	}

	return "confirmed threat"
}

func hostOf(rawURL string) string {
	nh, _ := analyzer.Normalize(rawURL)

	return nh.Host
}

func registrableDomain(host string) string {
	if host == "" {
		return ""
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}

	return domain
}
