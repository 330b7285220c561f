package denylist

import "errors"

var (
	// ErrEmptySnapshot is returned when a synced snapshot contains no domains
	ErrEmptySnapshot = errors.New("denylist snapshot contains no domains")
	// ErrMissingVersion is returned when a synced snapshot carries no version marker
	ErrMissingVersion = errors.New("denylist snapshot has no version")
	// ErrNoSyncURL is returned when a syncer is started without a remote URL
	ErrNoSyncURL = errors.New("no denylist sync URL configured")
	// ErrUnexpectedStatus is returned when the snapshot endpoint answers with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected snapshot response status")
)
