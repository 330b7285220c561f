package pipeline

import "errors"

var (
	// ErrEmptyDomain is returned when a whitelist operation receives a blank domain
	ErrEmptyDomain = errors.New("domain must not be empty")
	// ErrSystemDomain is returned when a caller tries to remove a built-in trusted domain
	ErrSystemDomain = errors.New("system trusted domains cannot be removed")
	// ErrEmptyURL is returned when Intercept receives a blank URL
	ErrEmptyURL = errors.New("url must not be empty")
)
