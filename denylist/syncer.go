package denylist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/theopenlane/httpsling"
)

const (
	defaultSyncInterval = 6 * time.Hour
	defaultSyncTimeout  = 30 * time.Second
)

// Syncer periodically refreshes a Store from a remote snapshot endpoint. Any
// failure, including a malformed document, leaves the current snapshot
// untouched; the denylist is advisory infrastructure and never degrades the
// store it feeds.
type Syncer struct {
	store      *Store
	url        string
	httpClient *http.Client
	interval   time.Duration
	timeout    time.Duration
	logger     zerolog.Logger
}

// SyncerOption configures the Syncer.
type SyncerOption func(*Syncer)

// WithHTTPClient supplies a custom HTTP client for snapshot downloads.
func WithHTTPClient(client *http.Client) SyncerOption {
	return func(s *Syncer) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithInterval overrides the periodic sync interval.
func WithInterval(interval time.Duration) SyncerOption {
	return func(s *Syncer) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithTimeout bounds a single snapshot download.
func WithTimeout(timeout time.Duration) SyncerOption {
	return func(s *Syncer) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger sets the logger used for sync outcomes.
func WithLogger(logger zerolog.Logger) SyncerOption {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// NewSyncer creates a syncer for the given store and snapshot URL.
func NewSyncer(store *Store, url string, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		store:      store,
		url:        url,
		httpClient: &http.Client{Timeout: defaultSyncTimeout},
		interval:   defaultSyncInterval,
		timeout:    defaultSyncTimeout,
		logger:     zerolog.New(io.Discard),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run syncs once immediately and then on every interval tick until the context
// is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	if _, err := s.SyncOnce(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial denylist sync failed, keeping current snapshot")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SyncOnce(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("denylist sync failed, keeping current snapshot")
			}
		}
	}
}

// SyncOnce downloads and validates one snapshot and, on success, swaps it into
// the store.
func (s *Syncer) SyncOnce(ctx context.Context) (SyncSummary, error) {
	summary := SyncSummary{StartedAt: time.Now().UTC()}

	if s.url == "" {
		summary.Error = ErrNoSyncURL.Error()
		return summary, ErrNoSyncURL
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.fetchSnapshot(ctx)
	if err != nil {
		summary.Error = err.Error()
		summary.CompletedAt = time.Now().UTC()
		return summary, err
	}

	s.store.Replace(snap)

	summary.CompletedAt = time.Now().UTC()
	summary.Version = snap.Version
	summary.Domains = len(snap.Domains)

	s.logger.Info().
		Str("version", snap.Version).
		Int("domains", len(snap.Domains)).
		Msg("denylist snapshot updated")

	return summary, nil
}

func (s *Syncer) fetchSnapshot(ctx context.Context) (Snapshot, error) {
	requester := httpsling.MustNew(
		httpsling.URL(s.url),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(s.httpClient),
	)

	var buf bytes.Buffer

	resp, _, err := requester.ReceiveTo(ctx, &buf)
	if err != nil {
		return Snapshot{}, fmt.Errorf("download snapshot: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var snap Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	if err := validateSnapshot(snap); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

// validateSnapshot rejects documents that would wipe the denylist if applied.
func validateSnapshot(snap Snapshot) error {
	if snap.Version == "" {
		return ErrMissingVersion
	}
	if len(snap.Domains) == 0 {
		return ErrEmptySnapshot
	}
	return nil
}
