package user

import "errors"

var (
	ErrInvalidRole             = errors.New("invalid role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrEmployeeNotLinked       = errors.New("no employee record is linked to this account")
	ErrScopeMissing            = errors.New("caller scope is missing from request context")
	ErrInvalidToken            = errors.New("invalid or expired access token")
)
