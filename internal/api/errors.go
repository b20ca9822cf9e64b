package api

import (
	"errors"
	"fmt"
)

// AuthError is a credential rejection on an unauthenticated call (bad
// login). Recovered locally; shown inline.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "authentication failed"
	}
	return e.Detail
}

// SessionExpiredError is a 401 on a call that carried a token. The gateway
// fires the forced-logout listeners before returning it; the caller still
// receives the error and must abandon whatever it was doing.
type SessionExpiredError struct {
	Detail string
}

func (e *SessionExpiredError) Error() string {
	if e.Detail == "" {
		return "session expired"
	}
	return e.Detail
}

// ForbiddenError is a 403: the session is valid but the role is not allowed.
// Views render it as an access-denied placeholder, never a crash.
type ForbiddenError struct {
	Detail string
}

func (e *ForbiddenError) Error() string {
	if e.Detail == "" {
		return "access denied"
	}
	return e.Detail
}

// ValidationError is a 400/422 rejection of the request body
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "invalid request"
	}
	return e.Detail
}

// NetworkError wraps a timeout or transport failure. Distinct from
// application errors so callers show a generic retry message instead of
// misreading it as a validation problem.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is any other non-2xx response
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.Code)
	}
	return e.Detail
}

// Detail extracts the server-provided human-readable message from any
// gateway error, or returns the fallback
func Detail(err error, fallback string) string {
	var (
		authErr      *AuthError
		expiredErr   *SessionExpiredError
		forbiddenErr *ForbiddenError
		validErr     *ValidationError
		statusErr    *StatusError
	)
	switch {
	case errors.As(err, &authErr) && authErr.Detail != "":
		return authErr.Detail
	case errors.As(err, &expiredErr) && expiredErr.Detail != "":
		return expiredErr.Detail
	case errors.As(err, &forbiddenErr) && forbiddenErr.Detail != "":
		return forbiddenErr.Detail
	case errors.As(err, &validErr) && validErr.Detail != "":
		return validErr.Detail
	case errors.As(err, &statusErr) && statusErr.Detail != "":
		return statusErr.Detail
	}
	return fallback
}

// IsForbidden reports whether err is an authorization failure
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

// IsSessionExpired reports whether err is an expired-session failure
func IsSessionExpired(err error) bool {
	var se *SessionExpiredError
	return errors.As(err, &se)
}

// IsNetwork reports whether err is a timeout or transport failure
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
