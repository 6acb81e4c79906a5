package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrNetworkFailure     = fmt.Errorf("network failure")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPostNotFound       = fmt.Errorf("post not found")

	// Content and gallery errors
	ErrParseFailure    = fmt.Errorf("failed to parse")
	ErrValidation      = fmt.Errorf("validation failed")
	ErrIndexOutOfRange = fmt.Errorf("index out of range")
	ErrEmptyGallery    = fmt.Errorf("no images in gallery")
	ErrBusy            = fmt.Errorf("operation in progress")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
