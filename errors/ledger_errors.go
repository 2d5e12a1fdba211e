package errors

import (
	"fmt"

	"github.com/mezonai/pohledger/jsonx"
)

// LedgerErrorCode identifies the failure kind of an admission or replay operation.
type LedgerErrorCode string

const (
	// Admission errors
	ErrCodeMalformedInput     LedgerErrorCode = "malformed_input"
	ErrCodeStaleRecentHash    LedgerErrorCode = "stale_recent_hash"
	ErrCodeDuplicateSignature LedgerErrorCode = "duplicate_signature"
	ErrCodeBadSignature       LedgerErrorCode = "bad_signature"
	ErrCodeInsufficientFunds  LedgerErrorCode = "insufficient_funds"

	// Replay errors
	ErrCodePoHMismatch          LedgerErrorCode = "poh_mismatch"
	ErrCodeUnknownSystemEvent   LedgerErrorCode = "unknown_system_event"
	ErrCodeBadSignatureInReplay LedgerErrorCode = "bad_signature_in_replay"
	ErrCodeSlotOutOfOrder       LedgerErrorCode = "slot_out_of_order"

	// Node errors
	ErrCodeWrongRole LedgerErrorCode = "wrong_role"
	ErrCodeInternal  LedgerErrorCode = "internal_error"
)

// Error message constants
const (
	ErrMsgMalformedInput       = "Request field is malformed"
	ErrMsgStaleRecentHash      = "recent_hash is not in the recency window"
	ErrMsgDuplicateSignature   = "Signature was already accepted"
	ErrMsgBadSignature         = "Transaction signature is invalid"
	ErrMsgInsufficientFunds    = "Not enough balance in sender account"
	ErrMsgPoHMismatch          = "PoH digest does not match the declared one"
	ErrMsgUnknownSystemEvent   = "Unknown system event type"
	ErrMsgBadSignatureInReplay = "Transaction signature is invalid in replay"
	ErrMsgSlotOutOfOrder       = "Slot does not follow the last ingested slot"
	ErrMsgWrongRole            = "Operation is not available for this node role"
)

// Sentinels usable as errors.Is targets; only the code is compared.
var (
	ErrMalformedInput       = &LedgerError{Code: ErrCodeMalformedInput, Message: ErrMsgMalformedInput}
	ErrStaleRecentHash      = &LedgerError{Code: ErrCodeStaleRecentHash, Message: ErrMsgStaleRecentHash}
	ErrDuplicateSignature   = &LedgerError{Code: ErrCodeDuplicateSignature, Message: ErrMsgDuplicateSignature}
	ErrBadSignature         = &LedgerError{Code: ErrCodeBadSignature, Message: ErrMsgBadSignature}
	ErrInsufficientFunds    = &LedgerError{Code: ErrCodeInsufficientFunds, Message: ErrMsgInsufficientFunds}
	ErrPoHMismatch          = &LedgerError{Code: ErrCodePoHMismatch, Message: ErrMsgPoHMismatch}
	ErrUnknownSystemEvent   = &LedgerError{Code: ErrCodeUnknownSystemEvent, Message: ErrMsgUnknownSystemEvent}
	ErrBadSignatureInReplay = &LedgerError{Code: ErrCodeBadSignatureInReplay, Message: ErrMsgBadSignatureInReplay}
	ErrSlotOutOfOrder       = &LedgerError{Code: ErrCodeSlotOutOfOrder, Message: ErrMsgSlotOutOfOrder}
	ErrWrongRole            = &LedgerError{Code: ErrCodeWrongRole, Message: ErrMsgWrongRole}
)

// LedgerError is the single error type returned by admission and replay.
// Slot and Entry are set for replay failures that point at a ledger position.
type LedgerError struct {
	Code    LedgerErrorCode `json:"code"`
	Message string          `json:"message"`
	Slot    *uint64         `json:"slot,omitempty"`
	Entry   *int            `json:"entry_index,omitempty"`
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	b, _ := jsonx.Marshal(e)
	return string(b)
}

// Is matches any LedgerError carrying the same code.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new LedgerError and returns it as error interface
func NewError(code LedgerErrorCode, message string) error {
	return &LedgerError{
		Code:    code,
		Message: message,
	}
}

// Newf is NewError with a formatted message.
func Newf(code LedgerErrorCode, format string, args ...interface{}) error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// AtEntry builds a replay error bound to a slot and entry index.
func AtEntry(code LedgerErrorCode, slot uint64, entry int, message string) error {
	return &LedgerError{
		Code:    code,
		Message: message,
		Slot:    &slot,
		Entry:   &entry,
	}
}

// CodeOf unwraps err down to a LedgerError and returns its code,
// or ErrCodeInternal when err carries none.
func CodeOf(err error) LedgerErrorCode {
	for err != nil {
		if le, ok := err.(*LedgerError); ok {
			return le.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrCodeInternal
}

// As returns the LedgerError wrapped in err, if any.
func As(err error) (*LedgerError, bool) {
	for err != nil {
		if le, ok := err.(*LedgerError); ok {
			return le, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}
