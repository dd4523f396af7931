package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrSessionLimit     = fmt.Errorf("search session limit reached")

	// API and workflow errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSessionNotFound    = fmt.Errorf("session not found")
	ErrNoSession          = fmt.Errorf("no active workflow session")
	ErrStreamClosed       = fmt.Errorf("progress stream closed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrNoSelection     = fmt.Errorf("no candidate selected")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
