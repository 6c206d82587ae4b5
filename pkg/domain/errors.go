// Package domain holds the error taxonomy shared by every core component.
package domain

import "errors"

// Common domain errors. Handlers map these onto HTTP problem responses;
// services wrap them with context via fmt.Errorf("...: %w", err).
var (
	// ErrValidation is returned when input validation fails
	// (missing fields, non-positive amount, split-sum mismatch).
	ErrValidation = errors.New("validation error")
	// ErrDomainRule is returned when a business rule rejects an otherwise
	// well-formed request (insufficient funds, income on a debt account).
	ErrDomainRule = errors.New("domain rule violation")
	// ErrNotFound is returned when a requested resource is not found
	// or has been soft-deleted.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is returned when an idempotency-key replay is detected
	// with a payload that does not match the original request.
	ErrConflict = errors.New("conflict")
)

// Specific rule violations. Each wraps its category sentinel so callers can
// match either the broad class or the precise rule with errors.Is.
var (
	// ErrInsufficientFunds rejects an expense or outgoing transfer that
	// exceeds the current balance of a non-debt account.
	ErrInsufficientFunds = errors.Join(ErrDomainRule, errors.New("insufficient funds"))
	// ErrIncomeOnDebtAccount rejects income posted directly to a
	// credit-card or loan account; money reaches those via transfers.
	ErrIncomeOnDebtAccount = errors.Join(ErrDomainRule,
		errors.New("income cannot be posted to a debt account, use a transfer instead"))
	// ErrSelfTransfer rejects a transfer whose source and destination are
	// the same account.
	ErrSelfTransfer = errors.Join(ErrDomainRule, errors.New("cannot transfer to the same account"))
	// ErrSplitSumMismatch rejects category splits that do not sum to the
	// transaction amount.
	ErrSplitSumMismatch = errors.Join(ErrValidation,
		errors.New("category splits must sum to the transaction amount"))
	// ErrAmountExceedsMax rejects amounts above the configured maximum.
	ErrAmountExceedsMax = errors.Join(ErrValidation, errors.New("amount exceeds maximum"))
	// ErrTransferImmutable rejects amount/kind/account edits on transfer
	// legs; transfers change by delete-and-recreate through the coordinator.
	ErrTransferImmutable = errors.Join(ErrDomainRule,
		errors.New("transfer legs cannot be modified, delete and recreate the transfer"))
)
