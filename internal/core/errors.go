package core

import "errors"

var (
	ErrInvalidFilterMode  = errors.New("invalid filter mode")
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrSignMismatch       = errors.New("amount sign does not match transaction type")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrMissingOwner       = errors.New("missing owner")
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrNotFound is also returned when a record exists but belongs to a
	// different owner.
	ErrNotFound = errors.New("transaction not found")
)
