package common

import "errors"

var (
	// repository errors
	ErrorNotFound     = errors.New("not found")
	ErrorConflict     = errors.New("already exists")
	ErrorMultipleRows = errors.New("multiple rows returned")

	// service errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	ErrInvalidToken = errors.New("invalid token")

	// token lifecycle
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
