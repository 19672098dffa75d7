// Package error defines domain-specific errors for the wallet ledger.
package error

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of these so callers can
// classify failures with errors.Is regardless of the concrete error.
var (
	// ErrValidation marks malformed input. Nothing is persisted.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced wallet or transaction that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientBalance marks an expense that would drive a wallet negative.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrIrreversibleDelete marks a delete whose reversal would drive a wallet negative.
	ErrIrreversibleDelete = errors.New("irreversible delete")

	// ErrImageUploadFailed marks a rejected or failed upload to the asset host.
	ErrImageUploadFailed = errors.New("image upload failed")

	// ErrPersistence marks a failure of the underlying store.
	ErrPersistence = errors.New("persistence error")

	// ErrNotAuthorized marks an attempt to modify a record owned by another user.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrWalletBusy marks a wallet lock that could not be acquired in time.
	ErrWalletBusy = errors.New("wallet busy")
)

// Persistence wraps a store error so it classifies as ErrPersistence.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// CodedError is implemented by domain errors that carry an API error code.
type CodedError interface {
	error
	ErrorCode() string
}

// CodeOf returns the API error code carried by err, or an empty string.
func CodeOf(err error) string {
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}

// MessageOf returns the human-readable message of a domain error, falling back to err.Error().
func MessageOf(err error) string {
	var txnErr *TransactionError
	if errors.As(err, &txnErr) {
		return txnErr.Message
	}
	var walletErr *WalletError
	if errors.As(err, &walletErr) {
		return walletErr.Message
	}
	var statsErr *StatisticsError
	if errors.As(err, &statsErr) {
		return statsErr.Message
	}
	return err.Error()
}
