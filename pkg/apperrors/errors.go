package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrSchemaNotFound     = errors.New("schema not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrTokenExpired       = errors.New("backend token expired")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendQuery       = errors.New("backend query failed")
)
