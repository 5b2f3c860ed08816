// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-ring.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
//
// Transaction errors are non-blocking by design: ErrAgain and ErrNoSpace are
// transient and safe to retry; ErrTxBusy and ErrNoTx signal caller misuse.
var (
	// ErrTxBusy indicates this producer/consumer instance already has an
	// open transaction.
	ErrTxBusy = fmt.Errorf("transaction already open on this instance")

	// ErrAgain indicates the ring's transaction lock is held by another
	// instance. Transient; the caller owns the retry policy.
	ErrAgain = fmt.Errorf("transaction lock held, try again")

	// ErrNoTx indicates an in-transaction operation was called with no
	// transaction open.
	ErrNoTx = fmt.Errorf("no transaction open")

	// ErrNoSpace indicates a strict write requested more bytes than the
	// ring currently has free. The transaction stays open.
	ErrNoSpace = fmt.Errorf("insufficient space in ring")

	// ErrNoData indicates a strict read requested more bytes than the
	// ring currently holds. The transaction stays open.
	ErrNoData = fmt.Errorf("insufficient data in ring")

	// ErrBacklogFull indicates a channel writer's spill queue reached its
	// configured bound.
	ErrBacklogFull = fmt.Errorf("writer backlog full")

	// ErrNotSupported indicates the operation is not available on this
	// platform (e.g. shared-memory segments off Linux).
	ErrNotSupported = fmt.Errorf("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeTxBusy
	ErrCodeAgain
	ErrCodeNoTx
	ErrCodeNoSpace
	ErrCodeNoData
	ErrCodeBacklogFull
	ErrCodeNotSupported
	ErrCodeInternal
)

// Code maps a library error to its ErrorCode. Structured errors report
// their own code; sentinels (including wrapped ones) map to their enum
// value; any other non-nil error is ErrCodeInternal.
func Code(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	switch {
	case errors.Is(err, ErrTxBusy):
		return ErrCodeTxBusy
	case errors.Is(err, ErrAgain):
		return ErrCodeAgain
	case errors.Is(err, ErrNoTx):
		return ErrCodeNoTx
	case errors.Is(err, ErrNoSpace):
		return ErrCodeNoSpace
	case errors.Is(err, ErrNoData):
		return ErrCodeNoData
	case errors.Is(err, ErrBacklogFull):
		return ErrCodeBacklogFull
	case errors.Is(err, ErrNotSupported):
		return ErrCodeNotSupported
	}
	return ErrCodeInternal
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
