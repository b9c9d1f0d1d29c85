package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrIdentityRequired = errors.New("user id or token is required")
	ErrConfigRequired   = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrNoPhotoIDs     = errors.New("no photo ids provided")
	ErrEmptyPhotoID   = errors.New("photo id is required")
	ErrEmptyPath      = errors.New("path is required")
	ErrNotRegularFile = errors.New("not a regular file")
)
