package service

import "errors"

// Shared failure taxonomy. Handlers map these onto HTTP statuses; the
// services themselves never touch the transport.
var (
	// ErrPermissionDenied means the acting user lacks brand or role
	// access for the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidState means the operation is not valid for the entity's
	// current status, e.g. approving an already processed request.
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrNotFoundOrExpired covers every way a public token can be
	// unusable. Callers must not be able to tell missing, expired and
	// consumed apart.
	ErrNotFoundOrExpired = errors.New("not found or expired")

	// ErrResourceMismatch means a referenced entity belongs to a
	// different owner than the operation targets.
	ErrResourceMismatch = errors.New("resource does not belong to target")

	// ErrCommentRequired is returned when a request-changes decision
	// arrives without feedback.
	ErrCommentRequired = errors.New("comment is required")
)
