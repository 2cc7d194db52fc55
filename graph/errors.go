package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies graph errors.
type ErrorCode string

// Setup error codes, reported eagerly at construction time.
const (
	ErrDuplicateNode   ErrorCode = "DUPLICATE_NODE"
	ErrDanglingEdge    ErrorCode = "DANGLING_EDGE"
	ErrInvalidOutcomes ErrorCode = "INVALID_OUTCOMES"
)

// Runtime error codes. These are defensive checks: correct construction-time
// validation makes them unreachable when node declarations are accurate.
const (
	ErrNodeNotRegistered ErrorCode = "NODE_NOT_REGISTERED"
	ErrMalformedOutcome  ErrorCode = "MALFORMED_OUTCOME"
)

// SetupError reports a construction-time validation failure.
type SetupError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// RuntimeError reports an execution-time invariant violation.
type RuntimeError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// IsSetupError reports whether err is a construction-time validation failure.
func IsSetupError(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}

// IsRuntimeError reports whether err is an execution-time invariant
// violation.
func IsRuntimeError(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}

func setupErrorf(code ErrorCode, format string, args ...any) *SetupError {
	return &SetupError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func runtimeErrorf(code ErrorCode, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// commaAnd joins items as `a, b and c`.
func commaAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
