package pipeline

import (
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// WhitelistStore persists the user-managed whitelist between sessions.
type WhitelistStore interface {
	Whitelist() ([]string, error)
	AddWhitelistDomain(domain string) error
	RemoveWhitelistDomain(domain string) error
}

// systemTrustedDomains are pre-trusted and cannot be removed by the user.
// They are also the anchor set for the heuristic fast path.
var systemTrustedDomains = []string{
	"google.com",
	"youtube.com",
	"facebook.com",
	"instagram.com",
	"whatsapp.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"wikipedia.org",
	"github.com",
	"apple.com",
	"microsoft.com",
	"amazon.com",
	"netflix.com",
	"telegram.org",
	"tokopedia.com",
	"shopee.co.id",
	"gojek.com",
	"bca.co.id",
	"klikbca.com",
	"bni.co.id",
	"bri.co.id",
	"bankmandiri.co.id",
}

// Whitelist holds the system trusted set plus the user-managed set. The two
// sets stay disjoint: adding a system domain to the user set is a no-op.
type Whitelist struct {
	mu     sync.RWMutex
	system map[string]struct{}
	user   map[string]struct{}
	store  WhitelistStore
}

// NewWhitelist builds a whitelist seeded with the system trusted domains and,
// when store is non-nil, the persisted user entries.
func NewWhitelist(store WhitelistStore) (*Whitelist, error) {
	w := &Whitelist{
		system: make(map[string]struct{}, len(systemTrustedDomains)),
		user:   make(map[string]struct{}),
		store:  store,
	}

	for _, d := range systemTrustedDomains {
		w.system[d] = struct{}{}
	}

	if store != nil {
		domains, err := store.Whitelist()
		if err != nil {
			return nil, err
		}

		for _, d := range domains {
			d = canonicalDomain(d)
			if _, ok := w.system[d]; ok {
				continue
			}

			w.user[d] = struct{}{}
		}
	}

	return w, nil
}

// Contains reports whether host is covered by either set. A whitelisted
// domain covers itself and every subdomain.
func (w *Whitelist) Contains(host string) bool {
	host = canonicalDomain(host)
	if host == "" {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	return coveredBy(host, w.system) || coveredBy(host, w.user)
}

// IsSystemTrusted reports whether host is covered by the built-in set alone.
func (w *Whitelist) IsSystemTrusted(host string) bool {
	host = canonicalDomain(host)
	if host == "" {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	return coveredBy(host, w.system)
}

// IsUserTrusted reports whether host is covered by the user-managed set alone.
func (w *Whitelist) IsUserTrusted(host string) bool {
	host = canonicalDomain(host)
	if host == "" {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	return coveredBy(host, w.user)
}

// Add inserts a domain into the user set and persists it. Adding a domain
// already covered by the system set is a no-op.
func (w *Whitelist) Add(domain string) error {
	domain = canonicalDomain(domain)
	if domain == "" {
		return ErrEmptyDomain
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.system[domain]; ok {
		return nil
	}

	if _, ok := w.user[domain]; ok {
		return nil
	}

	if w.store != nil {
		if err := w.store.AddWhitelistDomain(domain); err != nil {
			return err
		}
	}

	w.user[domain] = struct{}{}

	return nil
}

// Remove deletes a domain from the user set. System trusted domains cannot
// be removed.
func (w *Whitelist) Remove(domain string) error {
	domain = canonicalDomain(domain)
	if domain == "" {
		return ErrEmptyDomain
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.system[domain]; ok {
		return ErrSystemDomain
	}

	if _, ok := w.user[domain]; !ok {
		return nil
	}

	if w.store != nil {
		if err := w.store.RemoveWhitelistDomain(domain); err != nil {
			return err
		}
	}

	delete(w.user, domain)

	return nil
}

// UserDomains returns the user-managed entries sorted for stable display.
func (w *Whitelist) UserDomains() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := lo.Keys(w.user)
	sort.Strings(out)

	return out
}

func coveredBy(host string, set map[string]struct{}) bool {
	if _, ok := set[host]; ok {
		return true
	}

	for d := range set {
		if strings.HasSuffix(host, "."+d) {
			return true
		}
	}

	return false
}

func canonicalDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "www.")

	return strings.TrimSuffix(d, ".")
}
