package errors

import (
	stderrors "errors"

	"github.com/mezonai/multisig/jsonx"
)

// ErrorCode identifies why the multisig program rejected a call.
type ErrorCode string

const (
	// Envelope errors
	ErrCodeMalformedCall ErrorCode = "malformed_call"

	// Authorization errors
	ErrCodeMissingSignature ErrorCode = "missing_signature"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"
	ErrCodeIdentityMismatch ErrorCode = "identity_mismatch"
	ErrCodeNotEligible      ErrorCode = "not_eligible"

	// State errors
	ErrCodeAlreadyInitialized ErrorCode = "already_initialized"
	ErrCodeInvalidState       ErrorCode = "invalid_state"
	ErrCodeTooEarly           ErrorCode = "too_early"
	ErrCodeExpired            ErrorCode = "expired"
	ErrCodeAlreadyVoted       ErrorCode = "already_voted"

	// Value errors
	ErrCodeInvalidValue ErrorCode = "invalid_value"
)

// ProgramError is the single error kind a rejected call reports.
type ProgramError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *ProgramError) Error() string {
	out, _ := jsonx.Marshal(ProgramError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(out)
}

// Is matches on the code only, so errors.Is(err, ErrExpired) holds for any
// Expired error regardless of its message.
func (e *ProgramError) Is(target error) bool {
	t, ok := target.(*ProgramError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrMalformedCall      = &ProgramError{Code: ErrCodeMalformedCall, Message: ErrMsgMalformedCall}
	ErrMissingSignature   = &ProgramError{Code: ErrCodeMissingSignature, Message: ErrMsgMissingSignature}
	ErrUnauthorized       = &ProgramError{Code: ErrCodeUnauthorized, Message: ErrMsgUnauthorized}
	ErrIdentityMismatch   = &ProgramError{Code: ErrCodeIdentityMismatch, Message: ErrMsgIdentityMismatch}
	ErrNotEligible        = &ProgramError{Code: ErrCodeNotEligible, Message: ErrMsgNotEligible}
	ErrAlreadyInitialized = &ProgramError{Code: ErrCodeAlreadyInitialized, Message: ErrMsgAlreadyInitialized}
	ErrInvalidState       = &ProgramError{Code: ErrCodeInvalidState, Message: ErrMsgInvalidState}
	ErrTooEarly           = &ProgramError{Code: ErrCodeTooEarly, Message: ErrMsgTooEarly}
	ErrExpired            = &ProgramError{Code: ErrCodeExpired, Message: ErrMsgExpired}
	ErrAlreadyVoted       = &ProgramError{Code: ErrCodeAlreadyVoted, Message: ErrMsgAlreadyVoted}
	ErrInvalidValue       = &ProgramError{Code: ErrCodeInvalidValue, Message: ErrMsgInvalidValue}
)

// Error message constants
const (
	ErrMsgMalformedCall      = "Call data or account list is malformed"
	ErrMsgMissingSignature   = "A required signature is missing"
	ErrMsgUnauthorized       = "Caller is not allowed to perform this action"
	ErrMsgIdentityMismatch   = "Supplied account does not match its derived address"
	ErrMsgNotEligible        = "Caller is not an eligible voter for this proposal"
	ErrMsgAlreadyInitialized = "Account is already initialized"
	ErrMsgInvalidState       = "Proposal is not in the required status"
	ErrMsgTooEarly           = "Proposal cannot be tallied before quorum or expiry"
	ErrMsgExpired            = "Voting period has ended"
	ErrMsgAlreadyVoted       = "Member has already voted on this proposal"
	ErrMsgInvalidValue       = "Value is out of range"
)

// NewError creates a new ProgramError and returns it as error interface
func NewError(code ErrorCode, message string) error {
	return &ProgramError{
		Code:    code,
		Message: message,
	}
}

// CodeOf returns the program error code carried by err, or "" when err is not
// (and does not wrap) a ProgramError.
func CodeOf(err error) ErrorCode {
	var pe *ProgramError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
