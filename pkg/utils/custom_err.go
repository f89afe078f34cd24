package utils

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountForbidden   = errors.New("account forbidden")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidValidCode   = errors.New("invalid or expired verification code")

	ErrProductNotFound      = errors.New("product not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrRoleNotAllowed       = errors.New("role not allowed")
	ErrRoleProtected        = errors.New("built-in role cannot be removed")
	ErrProviderNotSupported = errors.New("payment provider not supported")
	ErrProviderInfoMissing  = errors.New("provider info missing on product")
	ErrProviderUnavailable  = errors.New("payment provider unavailable")

	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrDatabaseError   = errors.New("database error")
)
