package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectivity is returned when the chain node cannot be reached
	ErrConnectivity = errors.New("chain connectivity failure")

	// ErrUnknownEvent is returned when a requested event name is not part of the contract ABI
	ErrUnknownEvent = errors.New("unknown contract event")

	// ErrLotNotFound is returned when a lot is not found
	ErrLotNotFound = errors.New("lot not found")

	// ErrDocumentNotFound is returned when pinned content is not found on the gateway
	ErrDocumentNotFound = errors.New("document not found")
)

// DecodeError is returned when a log cannot be decoded into a domain event.
// The log is malformed or carries values outside the contract's enums, so
// retrying the same block range would fail identically.
type DecodeError struct {
	Field  string
	Reason string
	Code   uint64
	TxHash string
}

func (e *DecodeError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("decode %s: %s (code=%d, tx=%s)", e.Field, e.Reason, e.Code, e.TxHash)
	}
	return fmt.Sprintf("decode %s: %s (code=%d)", e.Field, e.Reason, e.Code)
}

// IsDecodeError reports whether err is a DecodeError
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
