// Package error defines domain-specific errors for the wallet ledger.
package error

import "fmt"

// Transaction domain errors.
var (
	// ErrTransactionNotFound is returned when a transaction is not found in the system.
	ErrTransactionNotFound = fmt.Errorf("%w: transaction not found", ErrNotFound)

	// ErrNotAuthorizedToModifyTransaction is returned when user is not authorized to modify a transaction.
	ErrNotAuthorizedToModifyTransaction = fmt.Errorf("%w: not authorized to modify transaction", ErrNotAuthorized)

	// ErrInvalidTransactionType is returned when the transaction type is invalid.
	ErrInvalidTransactionType = fmt.Errorf("%w: invalid transaction type", ErrValidation)

	// ErrInvalidTransactionDate is returned when the transaction date cannot be parsed.
	ErrInvalidTransactionDate = fmt.Errorf("%w: invalid transaction date", ErrValidation)

	// ErrInvalidTransactionAmount is returned when the transaction amount is not positive.
	ErrInvalidTransactionAmount = fmt.Errorf("%w: invalid transaction amount", ErrValidation)

	// ErrMissingTransactionWallet is returned when no wallet is referenced.
	ErrMissingTransactionWallet = fmt.Errorf("%w: wallet is required", ErrValidation)

	// ErrMissingExpenseCategory is returned when an expense has no category.
	ErrMissingExpenseCategory = fmt.Errorf("%w: category is required for expenses", ErrValidation)

	// ErrInvalidAmountScale is returned when the amount has more than two decimal places.
	ErrInvalidAmountScale = fmt.Errorf("%w: amount has too many decimal places", ErrValidation)

	// ErrCategoryTooLong is returned when the transaction category exceeds the maximum length.
	ErrCategoryTooLong = fmt.Errorf("%w: category too long", ErrValidation)

	// ErrDescriptionTooLong is returned when the transaction description exceeds the maximum length.
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long", ErrValidation)

	// ErrTransactionWalletMismatch is returned when the referenced wallet is not the transaction's wallet.
	ErrTransactionWalletMismatch = fmt.Errorf("%w: transaction does not belong to wallet", ErrValidation)

	// ErrTransactionInsufficientBalance is returned when the wallet cannot cover an expense.
	ErrTransactionInsufficientBalance = fmt.Errorf("%w: the selected wallet does not have enough balance", ErrInsufficientBalance)

	// ErrTransactionIrreversible is returned when removing a transaction would leave its wallet negative.
	ErrTransactionIrreversible = fmt.Errorf("%w: you can not delete this transaction", ErrIrreversibleDelete)

	// ErrReceiptUploadFailed is returned when the receipt image could not be stored.
	ErrReceiptUploadFailed = fmt.Errorf("%w: failed to upload receipt", ErrImageUploadFailed)
)

// TransactionErrorCode defines error codes for transaction errors.
// Format: TXN-XXYYYY where XX is category and YYYY is specific error.
type TransactionErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidTransactionType    TransactionErrorCode = "TXN-010001"
	ErrCodeInvalidTransactionDate    TransactionErrorCode = "TXN-010002"
	ErrCodeInvalidTransactionAmount  TransactionErrorCode = "TXN-010003"
	ErrCodeMissingTransactionWallet  TransactionErrorCode = "TXN-010004"
	ErrCodeMissingExpenseCategory    TransactionErrorCode = "TXN-010005"
	ErrCodeDescriptionTooLong        TransactionErrorCode = "TXN-010006"
	ErrCodeTransactionWalletMismatch TransactionErrorCode = "TXN-010007"
	ErrCodeInvalidAmountScale        TransactionErrorCode = "TXN-010008"
	ErrCodeCategoryTooLong           TransactionErrorCode = "TXN-010009"

	// Lookup and ownership errors (02XXXX)
	ErrCodeTransactionNotFound      TransactionErrorCode = "TXN-020001"
	ErrCodeTxnWalletNotFound        TransactionErrorCode = "TXN-020002"
	ErrCodeNotAuthorizedTransaction TransactionErrorCode = "TXN-020003"

	// Balance errors (03XXXX)
	ErrCodeInsufficientBalance TransactionErrorCode = "TXN-030001"
	ErrCodeIrreversibleDelete  TransactionErrorCode = "TXN-030002"
	ErrCodeTxnWalletBusy       TransactionErrorCode = "TXN-030003"

	// Collaborator errors (04XXXX)
	ErrCodeReceiptUploadFailed TransactionErrorCode = "TXN-040001"

	// Internal errors (99XXXX)
	ErrCodeTxnPersistence TransactionErrorCode = "TXN-990001"
)

// TransactionError represents a transaction error with code and message.
type TransactionError struct {
	Code    TransactionErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *TransactionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the API error code.
func (e *TransactionError) ErrorCode() string {
	return string(e.Code)
}

// NewTransactionError creates a new TransactionError with the given code and message.
func NewTransactionError(code TransactionErrorCode, message string, err error) *TransactionError {
	return &TransactionError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
