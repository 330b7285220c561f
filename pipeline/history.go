package pipeline

import (
	"encoding/json"
	"sync"
	"time"
)

const defaultHistoryLimit = 100

// HistoryStore persists interception records between sessions.
type HistoryStore interface {
	AppendHistory(id string, createdAt time.Time, record []byte, cap int) error
	History(limit int) ([][]byte, error)
}

// History is the bounded, most-recent-first log of intercepted links.
type History struct {
	mu    sync.RWMutex
	links []InterceptedLink
	limit int
	store HistoryStore
}

// NewHistory builds a history bounded at limit entries, loading any persisted
// records when store is non-nil. Records that fail to decode are skipped.
func NewHistory(limit int, store HistoryStore) (*History, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	h := &History{limit: limit, store: store}

	if store != nil {
		records, err := store.History(limit)
		if err != nil {
			return nil, err
		}

		for _, rec := range records {
			var link InterceptedLink
			if err := json.Unmarshal(rec, &link); err != nil {
				continue
			}

			h.links = append(h.links, link)
		}
	}

	return h, nil
}

// Append records a new interception at the head of the log, evicting the
// oldest entry once the bound is reached. Persistence failures do not drop
// the in-memory entry.
func (h *History) Append(link InterceptedLink) error {
	h.mu.Lock()

	h.links = append([]InterceptedLink{link}, h.links...)
	if len(h.links) > h.limit {
		h.links = h.links[:h.limit]
	}

	h.mu.Unlock()

	if h.store == nil {
		return nil
	}

	record, err := json.Marshal(link)
	if err != nil {
		return err
	}

	return h.store.AppendHistory(link.ID.String(), link.Timestamp, record, h.limit)
}

// Recent returns up to n entries, most recent first. n <= 0 returns all.
func (h *History) Recent(n int) []InterceptedLink {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.links) {
		n = len(h.links)
	}

	out := make([]InterceptedLink, n)
	copy(out, h.links[:n])

	return out
}

// Len reports the number of entries currently retained.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.links)
}
