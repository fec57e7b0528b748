package service

import (
	"errors"
)

// Failure taxonomy surfaced to callers. Every failure aborts only the
// requested operation; nothing is retried.
var (
	// ErrNotFound: a referenced account or transaction does not exist
	ErrNotFound = errors.New("invalid transfer route")

	// ErrAccessRestricted: sender status bars outgoing transfers
	ErrAccessRestricted = errors.New("financial access restricted")

	// ErrInvalidAmount: non-positive transfer amount
	ErrInvalidAmount = errors.New("non-positive value transfer rejected")

	// ErrInsufficientFunds: balance cannot cover the total deduction or
	// the refund amount
	ErrInsufficientFunds = errors.New("insufficient cleared funds (incl. double fee)")

	// ErrInvalidTransaction: refund target missing or already reverted
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrSecondaryAuthRejected: admin secondary password mismatch
	ErrSecondaryAuthRejected = errors.New("secondary commission authentication rejected")

	// ErrAccountExists: registration id collision
	ErrAccountExists = errors.New("id already exists in registry")

	// ErrUnknownCredentials: login id not in the registry
	ErrUnknownCredentials = errors.New("unknown credentials")

	// ErrAccessForbidden: login refused because the account is blocked
	ErrAccessForbidden = errors.New("access forbidden: account blocked")

	// ErrTooManyAttempts: login refused and account locked after too many
	// failed attempts
	ErrTooManyAttempts = errors.New("excessive login attempts: account locked")

	// ErrAccessDenied: wrong password; wrapped with the attempt count
	ErrAccessDenied = errors.New("access denied")
)
