package domainage

import "errors"

var (
	// ErrEmptyDomain is returned when a lookup is attempted with no domain
	ErrEmptyDomain = errors.New("domain cannot be empty")
	// ErrUnexpectedResponse is returned when RDAP answers with something other than a domain record
	ErrUnexpectedResponse = errors.New("unexpected rdap response type")
)
