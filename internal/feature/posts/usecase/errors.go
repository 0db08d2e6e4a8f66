// Package usecase implements the business logic for the posts feature.
package usecase

import "errors"

var (
	// ErrPostNotFound is returned when a post does not exist or belongs to someone else.
	// Callers cannot tell the two cases apart.
	ErrPostNotFound = errors.New("post not found")

	// ErrPayloadTooLarge is returned when a post body exceeds entity.MaxTextBytes.
	ErrPayloadTooLarge = errors.New("post text too large")

	// ErrUnauthorized is returned when a verified token names a user that no longer exists.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput is returned for an empty post body.
	ErrInvalidInput = errors.New("invalid input")
)
