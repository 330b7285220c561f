package denylist

import "time"

// Category classifies why a domain is on the denylist.
type Category string

const (
	CategoryPhishing Category = "phishing"
	CategoryMalware  Category = "malware"
	CategoryScam     Category = "scam"
	CategorySpam     Category = "spam"
	CategoryGambling Category = "gambling"
	CategoryUnknown  Category = "unknown"
)

// Entry is a single denylisted domain in a snapshot document.
type Entry struct {
	Domain      string   `json:"domain"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
}

// Snapshot is the remote denylist document format.
type Snapshot struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Domains     []Entry `json:"domains"`
}

// Match is the result of a successful lookup.
type Match struct {
	// Domain is the denylist entry that matched, which may be a registrable
	// ancestor of the queried host
	Domain      string   `json:"domain"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
}

// SyncSummary records the outcome of one sync attempt.
type SyncSummary struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Version     string    `json:"version"`
	Domains     int       `json:"domains"`
	Error       string    `json:"error,omitempty"`
}

// normalizeCategory keeps unrecognized categories readable instead of empty.
func normalizeCategory(c Category) Category {
	switch c {
	case CategoryPhishing, CategoryMalware, CategoryScam, CategorySpam, CategoryGambling:
		return c
	default:
		return CategoryUnknown
	}
}
