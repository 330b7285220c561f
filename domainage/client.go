// Package domainage estimates how recently a domain was registered using
// RDAP. Freshly registered domains are a strong phishing signal, but the
// lookup is advisory only: unavailability or an unknown age contributes
// nothing to a verdict.
package domainage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	rdaplib "github.com/openrdap/rdap"
)

const (
	defaultTimeout = 10 * time.Second

	hoursPerDay = 24

	// Domain age tiers in days
	tierDays7   = 7
	tierDays30  = 30
	tierDays90  = 90
	tierDays365 = 365

	// Advisory score weights per tier
	weightUnder7d   = 25
	weightUnder30d  = 20
	weightUnder90d  = 15
	weightUnder365d = 10
)

// Age is the result of a registration-age lookup.
type Age struct {
	// Domain is the queried domain
	Domain string `json:"domain"`
	// Known reports whether RDAP returned a usable registration date
	Known bool `json:"known"`
	// RegistrationDate is when the domain was first registered, when known
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
	// AgeDays is the number of days since registration, when known
	AgeDays int `json:"age_days"`
	// Registrar is the registrar name when the RDAP record exposes one
	Registrar string `json:"registrar,omitempty"`
}

// Grade converts the age into an advisory score weight and a display reason.
// Domains older than a year, or of unknown age, contribute nothing.
func (a Age) Grade() (int, string) {
	if !a.Known {
		return 0, ""
	}

	var weight int
	switch {
	case a.AgeDays < tierDays7:
		weight = weightUnder7d
	case a.AgeDays < tierDays30:
		weight = weightUnder30d
	case a.AgeDays < tierDays90:
		weight = weightUnder90d
	case a.AgeDays < tierDays365:
		weight = weightUnder365d
	default:
		return 0, ""
	}

	return weight, fmt.Sprintf("domain registered only %d days ago", a.AgeDays)
}

// Client performs RDAP registration lookups with a bounded timeout.
type Client struct {
	rdapClient *rdaplib.Client
	timeout    time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for RDAP queries.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.rdapClient.HTTP = httpClient
		}
	}
}

// WithTimeout overrides the per-query timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates an RDAP-backed age lookup client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		rdapClient: &rdaplib.Client{},
		timeout:    defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup queries RDAP for the domain's registration events. A domain whose
// record carries no registration date returns Known=false with a nil error;
// transport and protocol failures return an error the caller treats as an
// absent signal.
func (c *Client) Lookup(ctx context.Context, domain string) (Age, error) {
	domain = strings.TrimSpace(strings.ToLower(domain))
	if domain == "" {
		return Age{}, ErrEmptyDomain
	}

	req := &rdaplib.Request{
		Type:    rdaplib.DomainRequest,
		Query:   domain,
		Timeout: c.timeout,
	}
	req = req.WithContext(ctx)

	resp, err := c.rdapClient.Do(req)
	if err != nil {
		return Age{}, fmt.Errorf("rdap query for %s: %w", domain, err)
	}

	domainObj, ok := resp.Object.(*rdaplib.Domain)
	if !ok || domainObj == nil {
		return Age{}, fmt.Errorf("rdap query for %s: %w", domain, ErrUnexpectedResponse)
	}

	return buildAge(domain, domainObj), nil
}

// buildAge extracts the registration event and registrar from an RDAP domain
// record.
func buildAge(domain string, d *rdaplib.Domain) Age {
	age := Age{Domain: domain}

	for _, event := range d.Events {
		if !strings.EqualFold(event.Action, "registration") {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, event.Date)
		if err != nil {
			continue
		}
		t := parsed
		age.RegistrationDate = &t
		age.Known = true
		age.AgeDays = int(time.Since(t).Hours() / hoursPerDay)
		break
	}

	for _, entity := range d.Entities {
		for _, role := range entity.Roles {
			if strings.EqualFold(role, "registrar") {
				if entity.VCard != nil {
					age.Registrar = entity.VCard.Name()
				} else if entity.Handle != "" {
					age.Registrar = entity.Handle
				}
				break
			}
		}
	}

	return age
}
