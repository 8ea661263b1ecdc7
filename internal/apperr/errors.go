// Package apperr holds the sentinel errors the API maps to HTTP
// statuses. Lower layers return (or wrap) these; the translation to a
// status code and response body happens once, at the HTTP boundary.
package apperr

import "errors"

// Auth errors
var (
	ErrUnauthorized = errors.New("unauthorized")                // 401
	ErrForbidden    = errors.New("forbidden")                   // 403
	ErrAuthFailed   = errors.New("incorrect email or password") // 401
	ErrTokenExpired = errors.New("token has expired")           // 401
	ErrTokenInvalid = errors.New("token is invalid")            // 401
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")                      // 404
	ErrUserAlreadyExists = errors.New("user with this email already exists") // 400
)

// Request errors
var (
	ErrUnprocessable = errors.New("unprocessable entity") // 422
)
