package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/pinlock"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "linkshield.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestWhitelistRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddWhitelistDomain("example.com"))
	require.NoError(t, s.AddWhitelistDomain("bca.co.id"))
	require.NoError(t, s.AddWhitelistDomain("example.com")) // duplicate is a no-op

	domains, err := s.Whitelist()
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "bca.co.id"}, domains)

	require.NoError(t, s.RemoveWhitelistDomain("example.com"))

	domains, err = s.Whitelist()
	require.NoError(t, err)
	assert.Equal(t, []string{"bca.co.id"}, domains)
}

func TestWhitelistRejectsEmptyDomain(t *testing.T) {
	s := openTestStore(t)
	assert.ErrorIs(t, s.AddWhitelistDomain(""), ErrEmptyDomain)
}

func TestHistoryBoundedMostRecentFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("rec-%d", i)
		payload := []byte(fmt.Sprintf(`{"n":%d}`, i))
		require.NoError(t, s.AppendHistory(id, base.Add(time.Duration(i)*time.Second), payload, 3))
	}

	records, err := s.History(10)
	require.NoError(t, err)
	require.Len(t, records, 3, "history must evict past the cap")

	assert.JSONEq(t, `{"n":4}`, string(records[0]))
	assert.JSONEq(t, `{"n":3}`, string(records[1]))
	assert.JSONEq(t, `{"n":2}`, string(records[2]))
}

func TestPinStateRoundTrip(t *testing.T) {
	s := openTestStore(t)

	// Missing row reads as the zero state.
	state, err := s.LoadPinState()
	require.NoError(t, err)
	assert.Equal(t, pinlock.State{}, state)

	want := pinlock.State{
		Failures:    2,
		Lockouts:    1,
		LastFailure: time.Unix(1700000000, 0).UTC(),
		LockedUntil: time.Unix(1700000300, 0).UTC(),
	}
	require.NoError(t, s.SavePinState(want))

	got, err := s.LoadPinState()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Upsert overwrites in place.
	require.NoError(t, s.SavePinState(pinlock.State{}))
	got, err = s.LoadPinState()
	require.NoError(t, err)
	assert.Equal(t, pinlock.State{}, got)
}

func TestStoreSatisfiesPinlockStore(t *testing.T) {
	var _ pinlock.Store = (*Store)(nil)
}
