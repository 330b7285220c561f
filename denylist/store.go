// Package denylist maintains the known-bad domain set: a bundled baseline
// merged with a periodically synced remote snapshot. Lookups run against an
// immutable in-memory index that is replaced wholesale on each successful
// sync, so a sync in progress can never invalidate a read.
package denylist

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Store holds the current denylist index. Read-many/write-rarely: readers take
// a snapshot pointer under RLock and the sync path swaps in a fully built
// replacement under the write lock.
type Store struct {
	mu       sync.RWMutex
	index    map[string]Entry
	version  string
	loadedAt time.Time
}

// NewStore creates a store seeded with the bundled baseline list.
func NewStore() *Store {
	s := &Store{}
	s.Replace(Snapshot{Version: "baseline"})
	return s
}

// Replace merges the bundled baseline with the supplied snapshot and swaps the
// resulting index in atomically. Entries in the snapshot win over baseline
// entries for the same domain.
func (s *Store) Replace(snap Snapshot) {
	index := make(map[string]Entry, len(baselineEntries)+len(snap.Domains))

	for _, e := range baselineEntries {
		addEntry(index, e)
	}
	for _, e := range snap.Domains {
		addEntry(index, e)
	}

	s.mu.Lock()
	s.index = index
	s.version = snap.Version
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()
}

func addEntry(index map[string]Entry, e Entry) {
	domain := strings.ToLower(strings.TrimSpace(e.Domain))
	domain = strings.TrimPrefix(domain, "www.")
	if domain == "" {
		return
	}

	index[domain] = Entry{
		Domain:      domain,
		Category:    normalizeCategory(e.Category),
		Description: e.Description,
	}
}

// Lookup checks the host and every registrable ancestor of it against the
// index. A match on any ancestor down to the eTLD+1 counts: if evil.com is
// listed, login.evil.com matches too.
func (s *Store) Lookup(host string) (Match, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return Match{}, false
	}

	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()

	for _, candidate := range ancestorDomains(host) {
		if e, ok := index[candidate]; ok {
			return Match{Domain: e.Domain, Category: e.Category, Description: e.Description}, true
		}
	}

	return Match{}, false
}

// Version returns the version marker of the currently loaded snapshot.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Size returns the number of indexed domains.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// ancestorDomains lists the host and each parent domain worth checking,
// stopping at the registrable domain. For hosts the public suffix list cannot
// place (IP literals, single labels) only the host itself is checked.
func ancestorDomains(host string) []string {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return []string{host}
	}

	candidates := []string{host}
	for host != etld1 {
		idx := strings.Index(host, ".")
		if idx < 0 {
			break
		}
		host = host[idx+1:]
		candidates = append(candidates, host)
	}

	return candidates
}
