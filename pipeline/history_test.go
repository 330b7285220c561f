package pipeline

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/analyzer"
)

type memHistoryStore struct {
	records [][]byte
	loadErr error
	saveErr error
}

func (m *memHistoryStore) AppendHistory(_ string, _ time.Time, record []byte, cap int) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.records = append([][]byte{record}, m.records...)
	if len(m.records) > cap {
		m.records = m.records[:cap]
	}

	return nil
}

func (m *memHistoryStore) History(int) ([][]byte, error) {
	return m.records, m.loadErr
}

func testLink(rawURL string) InterceptedLink {
	return InterceptedLink{
		ID:          uuid.New(),
		OriginalURL: rawURL,
		Timestamp:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Analysis:    analyzer.Result{URL: rawURL, ThreatLevel: analyzer.ThreatSafe},
	}
}

func TestHistoryBoundedMostRecentFirst(t *testing.T) {
	h, err := NewHistory(3, nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Append(testLink(fmt.Sprintf("https://example.com/%d", i))))
	}

	assert.Equal(t, 3, h.Len())

	recent := h.Recent(0)
	require.Len(t, recent, 3)

	assert.Equal(t, "https://example.com/4", recent[0].OriginalURL)
	assert.Equal(t, "https://example.com/2", recent[2].OriginalURL)
}

func TestHistoryRecentSubset(t *testing.T) {
	h, err := NewHistory(10, nil)
	require.NoError(t, err)

	require.NoError(t, h.Append(testLink("https://a.example.com")))
	require.NoError(t, h.Append(testLink("https://b.example.com")))

	recent := h.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "https://b.example.com", recent[0].OriginalURL)

	// Asking for more than exists returns everything.
	assert.Len(t, h.Recent(50), 2)
}

func TestHistoryPersistsAndReloads(t *testing.T) {
	store := &memHistoryStore{}

	h, err := NewHistory(5, store)
	require.NoError(t, err)
	require.NoError(t, h.Append(testLink("https://persisted.example.com")))
	require.Len(t, store.records, 1)

	reloaded, err := NewHistory(5, store)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len())

	assert.Equal(t, "https://persisted.example.com", reloaded.Recent(1)[0].OriginalURL)
}

func TestHistorySkipsUndecodableRecords(t *testing.T) {
	good, err := json.Marshal(testLink("https://ok.example.com"))
	require.NoError(t, err)

	store := &memHistoryStore{records: [][]byte{[]byte("not json"), good}}

	h, err := NewHistory(5, store)
	require.NoError(t, err)

	assert.Equal(t, 1, h.Len())
}

func TestHistoryKeepsEntryWhenPersistFails(t *testing.T) {
	store := &memHistoryStore{saveErr: assert.AnError}

	h, err := NewHistory(5, store)
	require.NoError(t, err)

	err = h.Append(testLink("https://example.com"))
	assert.Error(t, err)
	assert.Equal(t, 1, h.Len())
}
