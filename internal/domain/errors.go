package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced flight, airport, rental or cart does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a create would violate a uniqueness invariant,
	// e.g. a second cart for the same user.
	ErrConflict = errors.New("already exists")
)

// ValidationError describes a malformed record, typically in an upstream
// import payload. The record is skipped, the import continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GatewayError is any non-success outcome from the external flight-quote
// service: transport failure, timeout, non-2xx status or malformed body.
// Status is 0 when no HTTP response was received.
type GatewayError struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func (e *GatewayError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("gateway request failed: %s", e.Body)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Body)
}

// Temporary reports whether the failure is worth retrying: transport
// errors and 5xx responses are, 4xx rejections are not.
func (e *GatewayError) Temporary() bool {
	return e.Status == 0 || e.Status >= 500
}
