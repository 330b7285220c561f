package intelclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupThreat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://evil.example/login", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isThreat": true, "threatType": "phishing", "threatDescription": "credential harvesting"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	signal, err := c.Lookup(context.Background(), "https://evil.example/login")
	require.NoError(t, err)

	assert.True(t, signal.IsThreat)
	assert.Equal(t, "phishing", signal.ThreatType)
}

func TestLookupClean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"isThreat": false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	signal, err := c.Lookup(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.False(t, signal.IsThreat)
}

func TestLookupFailuresReturnNoSignal(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"garbage body", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("not json")) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c := NewClient(srv.URL)

			signal, err := c.Lookup(context.Background(), "https://example.com")
			require.Error(t, err)
			assert.False(t, signal.IsThreat, "a failed lookup must never report a threat")
		})
	}
}

func TestLookupTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"isThreat": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))

	_, err := c.Lookup(context.Background(), "https://example.com")
	assert.Error(t, err)
}

func TestLookupUnconfigured(t *testing.T) {
	c := NewClient("")

	_, err := c.Lookup(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
