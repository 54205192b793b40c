package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// CodeUnresolved marks a reference that could not be resolved: missing
	// definition, file, export, or member. Always non-fatal.
	CodeUnresolved ErrorCode = "UNRESOLVED"

	// CodeInvalidInput marks a malformed semantic index, a producer-side bug.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeCycle marks a detected re-export or inheritance cycle. Treated as
	// a normal unresolved outcome, never as a hard failure.
	CodeCycle ErrorCode = "CYCLE"

	CodeNotFound ErrorCode = "NOT_FOUND"
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

const (
	CtxPath      = "path"
	CtxSymbol    = "symbol"
	CtxScope     = "scope"
	CtxLanguage  = "language"
	CtxOperation = "operation"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

func (e *DomainError) WithContext(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// IsCode checks if an error carries a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
