package auth

import "errors"

// Authentication failures (mapped to HTTP 401).
var (
	// ErrNoToken is returned when the Authorization header carries no bearer token.
	ErrNoToken = errors.New("No token provided")

	// ErrTokenExpired is returned when the token signature is valid but the token has expired.
	ErrTokenExpired = errors.New("Token has expired")

	// ErrInvalidToken is returned when the token fails signature or format verification.
	ErrInvalidToken = errors.New("Invalid token")

	// ErrInvalidUserID is returned when the verified claims carry no usable integer user id.
	ErrInvalidUserID = errors.New("Invalid user ID in token")

	// ErrUserNotFound is returned when the token's user does not exist or is inactive.
	ErrUserNotFound = errors.New("User not found or inactive")
)

// Authorization failures (mapped to HTTP 403).
var (
	// ErrNoGroup is returned when the user has no group assigned.
	ErrNoGroup = errors.New("Access denied: No group assigned")

	// ErrGroupDenied is returned when the user's group is not in the allowed set.
	ErrGroupDenied = errors.New("Access denied: Insufficient group permissions")

	// ErrNoStores is returned when store membership is required but the user has none.
	ErrNoStores = errors.New("Access denied: No store permissions")

	// ErrStoreDenied is returned when the requested store is not in the permitted list.
	ErrStoreDenied = errors.New("Access denied: Store not in permitted stores list")
)

// ErrStoreIDRequired is returned when a store-scoped guard finds no store id (HTTP 400).
var ErrStoreIDRequired = errors.New("Store ID is required")
