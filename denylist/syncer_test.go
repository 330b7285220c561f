package denylist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncOnceReplacesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"version": "remote-1",
			"lastUpdated": "2024-06-01T00:00:00Z",
			"domains": [{"domain": "synced-evil.com", "category": "phishing"}]
		}`))
	}))
	defer srv.Close()

	store := NewStore()
	syncer := NewSyncer(store, srv.URL)

	summary, err := syncer.SyncOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "remote-1", summary.Version)
	assert.Equal(t, 1, summary.Domains)
	assert.Equal(t, "remote-1", store.Version())

	_, ok := store.Lookup("synced-evil.com")
	assert.True(t, ok)
}

func TestSyncFailureKeepsCurrentSnapshot(t *testing.T) {
	store := NewStore()
	store.Replace(testSnapshot())
	before := store.Version()

	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"version": "x", "domains": [`))
			},
		},
		{
			name: "empty domain list",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"version": "x", "domains": []}`))
			},
		},
		{
			name: "missing version",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"domains": [{"domain": "a.com", "category": "spam"}]}`))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			syncer := NewSyncer(store, srv.URL)

			_, err := syncer.SyncOnce(context.Background())
			require.Error(t, err)
			assert.Equal(t, before, store.Version(), "failed sync must not touch the loaded snapshot")
		})
	}
}

func TestSyncOnceWithoutURL(t *testing.T) {
	syncer := NewSyncer(NewStore(), "")

	_, err := syncer.SyncOnce(context.Background())
	assert.ErrorIs(t, err, ErrNoSyncURL)
}
