package common

import "errors"

var (
	// Remote store classification. Every transport/DB failure the remote
	// client reports maps onto exactly one of these, so the orchestrator
	// can branch without inspecting raw messages.
	ErrNotProvisioned   = errors.New("event table does not exist")
	ErrPermissionDenied = errors.New("access policy misconfigured")
	ErrNetwork          = errors.New("network failure")
	ErrTimeout          = errors.New("operation timed out")
	ErrUnknown          = errors.New("unknown remote error")

	// Envelope errors.
	ErrEmptyPassword   = errors.New("empty password")
	ErrWrongPassword   = errors.New("incorrect password")
	ErrMalformedBundle = errors.New("malformed encrypted bundle")

	// ErrPasswordRequired is returned when a row is tagged as encrypted but
	// no password has been configured.
	ErrPasswordRequired = errors.New("password required")

	// ErrNotConfigured is returned by operations that need a configured
	// remote store connection.
	ErrNotConfigured = errors.New("remote store not configured")
)
