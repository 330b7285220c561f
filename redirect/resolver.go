// Package redirect follows HTTP redirect chains hop by hop, recording every
// intermediate URL and flagging chains that bounce across domains. Resolution
// is strictly best-effort: any failure degrades to a chain containing only the
// original URL so the caller can still score what the user actually tapped.
package redirect

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultMaxHops = 8
	defaultTimeout = 10 * time.Second

	// suspiciousCrossDomainHops flags chains that change registrable domain
	// at least this many times
	suspiciousCrossDomainHops = 2
	// suspiciousTotalRedirects flags chains at least this long regardless of domains
	suspiciousTotalRedirects = 4
)

// HopType marks a hop's position in the chain.
type HopType string

const (
	HopOrigin   HopType = "origin"
	HopRedirect HopType = "redirect"
	HopFinal    HopType = "final"
)

// Hop is one step in a resolved redirect chain.
type Hop struct {
	URL    string  `json:"url"`
	Domain string  `json:"domain"`
	Type   HopType `json:"hop_type"`
}

// ChainResult describes a fully resolved chain.
type ChainResult struct {
	FinalURL             string `json:"final_url"`
	Chain                []Hop  `json:"chain"`
	TotalRedirects       int    `json:"total_redirects"`
	CrossDomainHops      int    `json:"cross_domain_hops"`
	IsSuspiciousRedirect bool   `json:"is_suspicious_redirect"`
	// Failed reports that resolution could not follow the chain and the result
	// degraded to the original URL
	Failed bool `json:"failed,omitempty"`
}

// Resolver follows redirect chains with bounded hops and wall-clock time.
type Resolver struct {
	client  *http.Client
	maxHops int
	timeout time.Duration
	logger  zerolog.Logger
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithHTTPClient supplies a custom HTTP client. Automatic redirect following
// is disabled on it so hops stay visible.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			client.CheckRedirect = noFollow
			r.client = client
		}
	}
}

// WithMaxHops bounds the number of redirects followed.
func WithMaxHops(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxHops = n
		}
	}
}

// WithTimeout bounds the wall-clock time for resolving one chain.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithLogger sets the logger for resolution failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func noFollow(_ *http.Request, _ []*http.Request) error {
	return http.ErrUseLastResponse
}

// NewResolver creates a Resolver with bounded defaults.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		client: &http.Client{
			Timeout:       defaultTimeout,
			CheckRedirect: noFollow,
		},
		maxHops: defaultMaxHops,
		timeout: defaultTimeout,
		logger:  zerolog.New(io.Discard),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve follows the chain starting at rawURL. It never returns an error:
// failures produce a degraded single-URL chain with Failed set, because the
// caller scores the original URL regardless and a broken network must not
// block the user.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) ChainResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	origin, err := url.Parse(rawURL)
	if err != nil || origin.Host == "" {
		return fallbackChain(rawURL)
	}

	chain := []Hop{{URL: rawURL, Domain: hostDomain(origin), Type: HopOrigin}}
	current := origin
	crossDomain := 0
	redirects := 0

	for hop := 0; hop < r.maxHops; hop++ {
		next, failed := r.nextLocation(ctx, current)
		if failed && redirects == 0 {
			return fallbackChain(rawURL)
		}
		if next == nil {
			break
		}

		redirects++
		if !sameRegistrableDomain(current, next) {
			crossDomain++
		}

		chain = append(chain, Hop{URL: next.String(), Domain: hostDomain(next), Type: HopRedirect})
		current = next
	}

	if redirects == 0 {
		// The URL answered directly with no chain to record.
		chain = append(chain, Hop{URL: rawURL, Domain: hostDomain(origin), Type: HopFinal})
		return resultFromChain(rawURL, chain, 0, 0)
	}

	chain[len(chain)-1].Type = HopFinal

	return resultFromChain(current.String(), chain, redirects, crossDomain)
}

// nextLocation performs one request. It returns the redirect target when the
// response is a 3xx with a usable Location, nil when the chain ends here, and
// failed true when the request itself could not complete.
func (r *Resolver) nextLocation(ctx context.Context, u *url.URL) (next *url.URL, failed bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, true
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug().Err(err).Str("url", u.String()).Msg("redirect hop request failed")
		return nil, true
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return nil, false
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil, false
	}

	parsed, err := url.Parse(loc)
	if err != nil {
		return nil, false
	}

	resolved := u.ResolveReference(parsed)
	if resolved.Host == "" {
		return nil, false
	}

	return resolved, false
}

func resultFromChain(finalURL string, chain []Hop, redirects, crossDomain int) ChainResult {
	return ChainResult{
		FinalURL:             finalURL,
		Chain:                chain,
		TotalRedirects:       redirects,
		CrossDomainHops:      crossDomain,
		IsSuspiciousRedirect: crossDomain >= suspiciousCrossDomainHops || redirects >= suspiciousTotalRedirects,
	}
}

// fallbackChain is the degraded result: the original URL stands in as both the
// origin and the final hop.
func fallbackChain(rawURL string) ChainResult {
	domain := ""
	if u, err := url.Parse(rawURL); err == nil {
		domain = hostDomain(u)
	}

	return ChainResult{
		FinalURL: rawURL,
		Chain: []Hop{
			{URL: rawURL, Domain: domain, Type: HopOrigin},
			{URL: rawURL, Domain: domain, Type: HopFinal},
		},
		Failed: true,
	}
}

func hostDomain(u *url.URL) string {
	return strings.ToLower(u.Hostname())
}

// sameRegistrableDomain compares two URLs at the eTLD+1 level so a hop from
// a.example.com to b.example.com does not count as cross-domain.
func sameRegistrableDomain(a, b *url.URL) bool {
	da, errA := publicsuffix.EffectiveTLDPlusOne(hostDomain(a))
	db, errB := publicsuffix.EffectiveTLDPlusOne(hostDomain(b))
	if errA != nil || errB != nil {
		return hostDomain(a) == hostDomain(b)
	}
	return da == db
}
