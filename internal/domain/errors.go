package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserInactive         = errors.New("user is inactive")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrProviderNotFound     = errors.New("social provider not found")
	ErrSocialAccountTaken   = errors.New("social account is connected to another user")
	ErrPendingLoginNotFound = errors.New("pending social login not found or expired")
	ErrSignupClosed         = errors.New("signup is closed")
)
