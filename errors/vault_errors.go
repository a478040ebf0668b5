package errors

import (
	goerrors "errors"

	"provault/jsonx"
)

// VaultErrorCode represents standardized error codes for ledger operations
type VaultErrorCode string

const (
	// General errors
	ErrCodeInternal VaultErrorCode = "internal_error"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeInvalidSignature = "invalid_signature"
	ErrCodeInvalidAddress   = "invalid_address"
	ErrCodeInvalidAmount    = "invalid_amount"
	ErrCodeInvalidNonce     = "invalid_nonce"

	// Custody core errors
	ErrCodeUnauthorized             = "unauthorized"
	ErrCodeNotEnoughBalance         = "not_enough_balance"
	ErrCodeTokenAccountCreated      = "token_account_already_created"
	ErrCodeMathUnderflowOrOverflow  = "math_underflow_or_overflow"
	ErrCodeMasterNotInitialized     = "master_not_initialized"
	ErrCodeMasterAlreadyInitialized = "master_already_initialized"
	ErrCodeTokenAccountNotBound     = "token_account_not_initialized"

	// Sub-ledger errors
	ErrCodeAccountNotFound   = "account_not_found"
	ErrCodeAccountExisted    = "account_existed"
	ErrCodeInsufficientFunds = "insufficient_funds"
	ErrCodeMintNotFound      = "mint_not_found"
)

// VaultError represents a standardized ledger error
type VaultError struct {
	Code    VaultErrorCode `json:"code"`
	Message string         `json:"message"`
}

// Error implements the error interface
func (e *VaultError) Error() string {
	err, _ := jsonx.Marshal(VaultError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgUnauthorized             = "Caller is not authorized for this operation"
	ErrMsgNotEnoughBalance         = "Vault balance would breach the reserved floor"
	ErrMsgTokenAccountCreated      = "Vault token account has already been created"
	ErrMsgMathUnderflowOrOverflow  = "Arithmetic overflow or underflow"
	ErrMsgMasterNotInitialized     = "Master record has not been initialized"
	ErrMsgMasterAlreadyInitialized = "Master record already exists"
	ErrMsgTokenAccountNotBound     = "Vault token account has not been created"
	ErrMsgAccountNotFound          = "Account does not exist"
	ErrMsgAccountExisted           = "Account already exists"
	ErrMsgInsufficientFunds        = "Not enough balance in your account"
	ErrMsgMintNotFound             = "Token mint is not registered"
	ErrMsgInvalidSignature         = "Request signature is invalid"
	ErrMsgInvalidAddress           = "Address is invalid"
	ErrMsgInvalidAmount            = "Amount is invalid or zero"
	ErrMsgInvalidNonce             = "Request nonce is invalid"
	ErrMsgInternal                 = "Server error, please try again"
)

// NewError creates a new VaultError and returns it as error interface
func NewError(code VaultErrorCode, message string) error {
	return &VaultError{
		Code:    code,
		Message: message,
	}
}

// Code extracts the VaultErrorCode from an error chain, or ErrCodeInternal
// when the error does not carry one.
func Code(err error) VaultErrorCode {
	var ve *VaultError
	if goerrors.As(err, &ve) {
		return ve.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code VaultErrorCode) bool {
	var ve *VaultError
	return goerrors.As(err, &ve) && ve.Code == code
}
