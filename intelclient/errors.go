package intelclient

import "errors"

var (
	// ErrNotConfigured is returned when no service base URL was provided
	ErrNotConfigured = errors.New("threat-intel client not configured")
	// ErrUnexpectedStatus is returned on a non-200 response
	ErrUnexpectedStatus = errors.New("unexpected threat-intel response status")
)
