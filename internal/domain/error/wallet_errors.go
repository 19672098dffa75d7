package error

import "fmt"

// Wallet domain errors.
var (
	// ErrWalletNotFound is returned when a wallet is not found in the system.
	ErrWalletNotFound = fmt.Errorf("%w: wallet not found", ErrNotFound)

	// ErrNotAuthorizedToModifyWallet is returned when the wallet belongs to another user.
	ErrNotAuthorizedToModifyWallet = fmt.Errorf("%w: not authorized to modify wallet", ErrNotAuthorized)

	// ErrMissingWalletName is returned when a wallet is created without a name.
	ErrMissingWalletName = fmt.Errorf("%w: wallet name is required", ErrValidation)

	// ErrWalletNameTooLong is returned when the wallet name exceeds the maximum length.
	ErrWalletNameTooLong = fmt.Errorf("%w: wallet name too long", ErrValidation)

	// ErrWalletIconUploadFailed is returned when the wallet icon could not be stored.
	ErrWalletIconUploadFailed = fmt.Errorf("%w: failed to upload wallet icon", ErrImageUploadFailed)

	// ErrWalletLocked is returned when another operation holds the wallet lock for too long.
	ErrWalletLocked = fmt.Errorf("%w: wallet is being updated, try again", ErrWalletBusy)
)

// WalletErrorCode defines error codes for wallet errors.
// Format: WLT-XXYYYY where XX is category and YYYY is specific error.
type WalletErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeMissingWalletName WalletErrorCode = "WLT-010001"
	ErrCodeWalletNameTooLong WalletErrorCode = "WLT-010002"
	ErrCodeInvalidWalletID   WalletErrorCode = "WLT-010003"

	// Lookup and ownership errors (02XXXX)
	ErrCodeWalletNotFound      WalletErrorCode = "WLT-020001"
	ErrCodeNotAuthorizedWallet WalletErrorCode = "WLT-020002"

	// Concurrency errors (03XXXX)
	ErrCodeWalletBusy WalletErrorCode = "WLT-030001"

	// Collaborator errors (04XXXX)
	ErrCodeIconUploadFailed WalletErrorCode = "WLT-040001"

	// Internal errors (99XXXX)
	ErrCodeWalletPersistence WalletErrorCode = "WLT-990001"
)

// WalletError represents a wallet error with code and message.
type WalletError struct {
	Code    WalletErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *WalletError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *WalletError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the API error code.
func (e *WalletError) ErrorCode() string {
	return string(e.Code)
}

// NewWalletError creates a new WalletError with the given code and message.
func NewWalletError(code WalletErrorCode, message string, err error) *WalletError {
	return &WalletError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
