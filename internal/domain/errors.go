package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, negative price).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidPlan is returned when installment plan parameters are rejected:
// non-positive price, a count outside the allowed set, a non-positive
// installment amount, or a frequency outside [1, 11] months.
var ErrInvalidPlan = errors.New("invalid plan")

// ErrAlreadyAssigned is returned when an owner is assigned to a boat that
// already has one.
var ErrAlreadyAssigned = errors.New("boat already has an owner")

// ErrAlreadySettled is returned when a payment that is already PAID is
// settled again, or when a settled obligation would be edited.
var ErrAlreadySettled = errors.New("payment already settled")

// ErrMissingReceipt is returned when settlement is attempted without a
// receipt file.
var ErrMissingReceipt = errors.New("receipt is required")

// ErrConflict is returned when a unique field (email, username) is taken.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized covers bad credentials, inactive accounts and invalid tokens.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an authenticated caller lacks access.
var ErrForbidden = errors.New("forbidden")
