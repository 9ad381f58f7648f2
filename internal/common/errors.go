package common

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., username already exists
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")
)

// ValidationError means client-supplied data broke a field rule.
// It is produced before anything reaches storage.
type ValidationError struct {
	Summary string
}

func NewValidationError(summary string) *ValidationError {
	return &ValidationError{Summary: summary}
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Summary
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type AuthErrorKind int

const (
	// AuthUnauthorized covers a missing bearer token or an identity mismatch.
	AuthUnauthorized AuthErrorKind = iota
	// AuthInvalidToken never says which signature/format/expiry check failed.
	AuthInvalidToken
	AuthUserNotFound
	AuthBadCredentials
	AuthTooManyAttempts
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthInvalidToken:
		return "invalid token"
	case AuthUserNotFound:
		return "username does not exist"
	case AuthBadCredentials:
		return "wrong password"
	case AuthTooManyAttempts:
		return "too many failed login attempts"
	default:
		return "unauthorized"
	}
}

// AuthError is any authentication or identity-binding failure. All kinds map to 401.
type AuthError struct {
	Kind AuthErrorKind
}

func NewAuthError(kind AuthErrorKind) *AuthError {
	return &AuthError{Kind: kind}
}

func (e *AuthError) Error() string {
	return e.Kind.String()
}

func (e *AuthError) Is(target error) bool {
	if target == ErrUnauthorized {
		return true
	}
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// IsAuthKind reports whether err is an AuthError of the given kind.
func IsAuthKind(err error, kind AuthErrorKind) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == kind
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
// Storage conflicts are reported as 500 like every other persistence failure.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
