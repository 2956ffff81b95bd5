package credentials

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken is returned when an exchange is attempted with a
	// missing or whitespace-only identity token. No network call is made.
	ErrInvalidToken = errors.New("identity token is empty")

	// ErrIncompleteCredential is returned when the provider answered
	// successfully but the credential is missing its session token. Fatal
	// for that call; not retried automatically.
	ErrIncompleteCredential = errors.New("temporary credential is missing a session token")
)

// ExchangeError wraps a network or provider-side rejection during the
// credential exchange, carrying the provider diagnostics when available so
// callers can decide between prompting a re-login and retrying.
type ExchangeError struct {
	Name       string // provider error code, e.g. "NotAuthorizedException"
	Message    string
	StatusCode int // HTTP status when known, 0 otherwise
	Err        error
}

func (e *ExchangeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("credential exchange failed: %s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("credential exchange failed: %v", e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// Denied reports whether the provider rejected the identity outright, as
// opposed to a transient failure worth retrying.
func (e *ExchangeError) Denied() bool {
	switch e.Name {
	case "NotAuthorizedException", "AccessDeniedException", "ResourceNotFoundException", "InvalidParameterException":
		return true
	}
	switch e.StatusCode {
	case 400, 401, 403:
		return true
	}
	return false
}
