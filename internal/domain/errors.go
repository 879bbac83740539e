package domain

import "errors"

var (
	// ErrValidation signals a missing or malformed request field.
	ErrValidation = errors.New("validation failed")
	// ErrOfficeNotFound signals a missing office.
	ErrOfficeNotFound = errors.New("office not found")
	// ErrVisitorNotFound signals a missing visitor record.
	ErrVisitorNotFound = errors.New("visitor not found")
	// ErrOfficeExists signals a duplicate office name.
	ErrOfficeExists = errors.New("office already exists")
	// ErrNotCreator signals that the caller does not own the office.
	ErrNotCreator = errors.New("only the office creator may do this")
	// ErrStoreUnavailable signals a record store transport failure.
	// Non-retryable within the same request; no index mutation may
	// follow it.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
